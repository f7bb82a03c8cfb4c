package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	log, closeFn, err := New(Options{File: path, Debug: true})
	require.NoError(t, err)
	log.Debug().Str("model", "llama3").Msg("config loaded")
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"model":"llama3"`)
	assert.Contains(t, string(data), `"message":"config loaded"`)
}

func TestNewFallbackRespectsLevel(t *testing.T) {
	var buf bytes.Buffer

	log, _, err := New(Options{Fallback: &buf})
	require.NoError(t, err)
	log.Debug().Msg("hidden")
	log.Info().Msg("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestNewWithoutOutputDiscards(t *testing.T) {
	log, closeFn, err := New(Options{})
	require.NoError(t, err)
	log.Error().Msg("nowhere")
	assert.NoError(t, closeFn())
}

func TestNewBadFile(t *testing.T) {
	_, _, err := New(Options{File: filepath.Join(t.TempDir(), "missing", "app.log")})
	assert.Error(t, err)
}
