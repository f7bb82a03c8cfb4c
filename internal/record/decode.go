package record

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/buger/jsonparser"
)

// ErrNotObject is returned when the daemon's reply is valid JSON but not an object.
var ErrNotObject = errors.New("record: top-level value is not an object")

// Decode parses a JSON object into a Record, keeping the key order of the
// document. String values under keys ending in "_at" that parse as RFC 3339
// become time.Time.
func Decode(data []byte) (*Record, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("record: empty document")
	}
	if trimmed[0] != '{' {
		return nil, ErrNotObject
	}
	if !json.Valid(trimmed) {
		return nil, fmt.Errorf("record: malformed document")
	}
	return decodeObject(trimmed)
}

func decodeObject(data []byte) (*Record, error) {
	rec := New()
	err := jsonparser.ObjectEach(data, func(key, value []byte, dataType jsonparser.ValueType, _ int) error {
		// ObjectEach hands over keys already unescaped.
		k := string(key)
		v, err := decodeValue(k, value, dataType)
		if err != nil {
			return err
		}
		rec.Set(k, v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func decodeArray(key string, data []byte) ([]any, error) {
	items := []any{}
	var firstErr error
	_, err := jsonparser.ArrayEach(data, func(value []byte, dataType jsonparser.ValueType, _ int, err error) {
		if firstErr != nil {
			return
		}
		if err != nil {
			firstErr = err
			return
		}
		v, err := decodeValue(key, value, dataType)
		if err != nil {
			firstErr = err
			return
		}
		items = append(items, v)
	})
	if err != nil {
		return nil, fmt.Errorf("record: %s: %w", key, err)
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return items, nil
}

func decodeValue(key string, value []byte, dataType jsonparser.ValueType) (any, error) {
	switch dataType {
	case jsonparser.String:
		s, err := jsonparser.ParseString(value)
		if err != nil {
			return nil, fmt.Errorf("record: %s: %w", key, err)
		}
		if t, ok := parseTimestamp(key, s); ok {
			return t, nil
		}
		return s, nil
	case jsonparser.Number:
		return Number(value), nil
	case jsonparser.Boolean:
		b, err := jsonparser.ParseBoolean(value)
		if err != nil {
			return nil, fmt.Errorf("record: %s: %w", key, err)
		}
		return b, nil
	case jsonparser.Null:
		return nil, nil
	case jsonparser.Object:
		return decodeObject(value)
	case jsonparser.Array:
		return decodeArray(key, value)
	default:
		return nil, fmt.Errorf("record: %s: unexpected value %q", key, value)
	}
}

func parseTimestamp(key, s string) (time.Time, bool) {
	if !strings.HasSuffix(key, "_at") {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
