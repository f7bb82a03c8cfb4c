package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"OLLAMA_HOST", "MODELINSPECT_TIMEOUT", "MODELINSPECT_LISTEN", "MODELINSPECT_LOG_FILE", "MODELINSPECT_DEBUG"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, &Config{
		OllamaHost: "http://127.0.0.1:11434",
		Listen:     "127.0.0.1:8090",
	}, cfg)

	u, err := cfg.OllamaURL()
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:11434", u)
}

func TestLoadEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("OLLAMA_HOST", "10.0.0.5")
	t.Setenv("MODELINSPECT_TIMEOUT", "30s")
	t.Setenv("MODELINSPECT_DEBUG", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.True(t, cfg.Debug)

	u, err := cfg.OllamaURL()
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.5:11434", u)
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("OLLAMA_HOST=http://gpu-box:9000\nMODELINSPECT_LISTEN=:9999\n"), 0644))
	t.Cleanup(func() {
		os.Unsetenv("OLLAMA_HOST")
		os.Unsetenv("MODELINSPECT_LISTEN")
	})

	cfg, err := Load(path, filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "http://gpu-box:9000", cfg.OllamaHost)
	assert.Equal(t, ":9999", cfg.Listen)
}

func TestLoadRejectsNegativeTimeout(t *testing.T) {
	clearEnv(t)
	t.Setenv("MODELINSPECT_TIMEOUT", "-1s")

	_, err := Load()
	assert.Error(t, err)
}

func TestNormalizeHost(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "http://127.0.0.1:11434"},
		{"localhost", "http://localhost:11434"},
		{"localhost:8080", "http://localhost:8080"},
		{"https://ollama.example.com", "https://ollama.example.com:11434"},
		{"http://127.0.0.1:11434/", "http://127.0.0.1:11434"},
		{"[::1]", "http://[::1]:11434"},
	}
	for _, tt := range tests {
		got, err := NormalizeHost(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestNormalizeHostInvalid(t *testing.T) {
	_, err := NormalizeHost("http://")
	assert.Error(t, err)
}
