package format

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ThatCatDev/modelinspect/internal/record"
)

func TestConfigLayout(t *testing.T) {
	details := record.New().
		Set("family", "llama").
		Set("families", []any{"llama"})
	rec := record.New().
		Set("system", "You are helpful.").
		Set("details", details).
		Set("parameters", record.Number("4096")).
		Set("capabilities", []any{}).
		Set("model_info", record.New()).
		Set("license", nil).
		Set("vision", false)

	got, err := Config(rec)
	require.NoError(t, err)

	want := `{
  "system": "You are helpful.",
  "details": {
    "family": "llama",
    "families": [
      "llama"
    ]
  },
  "parameters": 4096,
  "capabilities": [],
  "model_info": {},
  "license": null,
  "vision": false
}`
	assert.Equal(t, want, got)
}

func TestConfigDeterministic(t *testing.T) {
	build := func() *record.Record {
		return record.New().
			Set("b", "x").
			Set("a", 1.25).
			Set("c", []any{int64(3), record.New().Set("k", "v")})
	}

	first, err := Config(build())
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := Config(build())
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestConfigTimestampISO8601(t *testing.T) {
	ts := time.Date(2024, 5, 1, 12, 0, 0, 500000000, time.FixedZone("PDT", -7*3600))
	rec := record.New().Set("modified_at", ts)

	got, err := Config(rec)
	require.NoError(t, err)
	assert.Contains(t, got, `"modified_at": "2024-05-01T12:00:00.5-07:00"`)
	assert.NotContains(t, got, ts.String())
}

func TestConfigDoesNotEscapeHTML(t *testing.T) {
	rec := record.New().Set("template", "<|im_start|>{{ .System }} & more")

	got, err := Config(rec)
	require.NoError(t, err)
	assert.Contains(t, got, `"template": "<|im_start|>{{ .System }} & more"`)
}

func TestConfigEscapesControlCharacters(t *testing.T) {
	rec := record.New().Set("modelfile", "FROM llama\nSYSTEM \"hi\"")

	got, err := Config(rec)
	require.NoError(t, err)
	assert.Contains(t, got, `"modelfile": "FROM llama\nSYSTEM \"hi\""`)
}

func TestConfigUnsupportedType(t *testing.T) {
	rec := record.New().
		Set("ok", "fine").
		Set("nested", record.New().Set("bad", make(chan int)))

	_, err := Config(rec)
	require.Error(t, err)

	var typeErr *UnsupportedTypeError
	require.True(t, errors.As(err, &typeErr))
	assert.Equal(t, "chan int", typeErr.Type)
	assert.Equal(t, "bad", typeErr.Key)
	assert.True(t, strings.HasPrefix(err.Error(), "Object of type chan int is not JSON serializable"))
}

func TestConfigRejectsNaN(t *testing.T) {
	_, err := Config(record.New().Set("x", []any{nanValue()}))
	var typeErr *UnsupportedTypeError
	assert.ErrorAs(t, err, &typeErr)
}

func TestConfigEmptyRecord(t *testing.T) {
	got, err := Config(record.New())
	require.NoError(t, err)
	assert.Equal(t, "{}", got)
}

func TestHighlightKeepsText(t *testing.T) {
	text := "{\n  \"system\": \"You are helpful.\"\n}"
	out := Highlight(text)
	assert.Contains(t, out, "system")
	assert.Contains(t, out, "You are helpful.")
}

func nanValue() float64 {
	zero := 0.0
	return zero / zero
}
