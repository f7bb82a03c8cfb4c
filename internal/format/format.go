// Package format renders model configuration records as indented JSON text
// for display.
package format

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/ThatCatDev/modelinspect/internal/record"
)

const indent = "  "

// UnsupportedTypeError reports a record value that has no JSON rendering.
type UnsupportedTypeError struct {
	Key  string
	Type string
}

func (e *UnsupportedTypeError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("Object of type %s is not JSON serializable", e.Type)
	}
	return fmt.Sprintf("Object of type %s is not JSON serializable (key %q)", e.Type, e.Key)
}

// Config renders rec as two-space indented JSON with keys in record order.
// Timestamps are written as RFC 3339 strings.
func Config(rec *record.Record) (string, error) {
	var b strings.Builder
	if err := writeRecord(&b, rec, 0); err != nil {
		return "", err
	}
	return b.String(), nil
}

func writeRecord(b *strings.Builder, rec *record.Record, depth int) error {
	if rec.Len() == 0 {
		b.WriteString("{}")
		return nil
	}
	b.WriteString("{\n")
	first := true
	var err error
	rec.Each(func(key string, v any) bool {
		if !first {
			b.WriteString(",\n")
		}
		first = false
		writeIndent(b, depth+1)
		writeString(b, key)
		b.WriteString(": ")
		if err = writeValue(b, key, v, depth+1); err != nil {
			return false
		}
		return true
	})
	if err != nil {
		return err
	}
	b.WriteString("\n")
	writeIndent(b, depth)
	b.WriteString("}")
	return nil
}

func writeList(b *strings.Builder, key string, items []any, depth int) error {
	if len(items) == 0 {
		b.WriteString("[]")
		return nil
	}
	b.WriteString("[\n")
	for i, item := range items {
		if i > 0 {
			b.WriteString(",\n")
		}
		writeIndent(b, depth+1)
		if err := writeValue(b, key, item, depth+1); err != nil {
			return err
		}
	}
	b.WriteString("\n")
	writeIndent(b, depth)
	b.WriteString("]")
	return nil
}

func writeValue(b *strings.Builder, key string, v any, depth int) error {
	switch val := v.(type) {
	case nil:
		b.WriteString("null")
	case string:
		writeString(b, val)
	case bool:
		b.WriteString(strconv.FormatBool(val))
	case record.Number:
		b.WriteString(string(val))
	case int:
		b.WriteString(strconv.Itoa(val))
	case int64:
		b.WriteString(strconv.FormatInt(val, 10))
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return &UnsupportedTypeError{Key: key, Type: "float64"}
		}
		b.WriteString(strconv.FormatFloat(val, 'g', -1, 64))
	case time.Time:
		writeString(b, val.Format(time.RFC3339Nano))
	case *record.Record:
		return writeRecord(b, val, depth)
	case []any:
		return writeList(b, key, val, depth)
	default:
		return &UnsupportedTypeError{Key: key, Type: fmt.Sprintf("%T", v)}
	}
	return nil
}

// writeString writes s as a JSON string literal without HTML escaping; prompt
// templates are full of angle brackets.
func writeString(b *strings.Builder, s string) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	b.Write(bytes.TrimRight(buf.Bytes(), "\n"))
}

func writeIndent(b *strings.Builder, depth int) {
	for i := 0; i < depth; i++ {
		b.WriteString(indent)
	}
}
