package record

import (
	"time"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Number is a JSON number kept as the literal text the daemon sent, so that
// integers and floats round-trip without reformatting.
type Number string

// Record is a model configuration record: a mapping from string keys to values
// that keeps keys in insertion order.
//
// Values are limited to string, Number, bool, nil, *Record, []any and
// time.Time. Plain Go int, int64 and float64 are accepted as well for records
// built in code.
type Record struct {
	fields *orderedmap.OrderedMap[string, any]
}

// New returns an empty Record.
func New() *Record {
	return &Record{fields: orderedmap.New[string, any]()}
}

// Set stores v under key. An existing key keeps its position.
func (r *Record) Set(key string, v any) *Record {
	r.fields.Set(key, v)
	return r
}

// Get returns the value stored under key.
func (r *Record) Get(key string) (any, bool) {
	if r == nil {
		return nil, false
	}
	return r.fields.Get(key)
}

// String returns the value under key if it is a string.
func (r *Record) String(key string) (string, bool) {
	v, ok := r.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Time returns the value under key if it is a timestamp.
func (r *Record) Time(key string) (time.Time, bool) {
	v, ok := r.Get(key)
	if !ok {
		return time.Time{}, false
	}
	t, ok := v.(time.Time)
	return t, ok
}

// Len returns the number of keys.
func (r *Record) Len() int {
	if r == nil {
		return 0
	}
	return r.fields.Len()
}

// Keys returns the keys in order.
func (r *Record) Keys() []string {
	keys := make([]string, 0, r.Len())
	r.Each(func(key string, _ any) bool {
		keys = append(keys, key)
		return true
	})
	return keys
}

// Each calls fn for every key/value pair in order until fn returns false.
func (r *Record) Each(fn func(key string, v any) bool) {
	if r == nil {
		return
	}
	for pair := r.fields.Oldest(); pair != nil; pair = pair.Next() {
		if !fn(pair.Key, pair.Value) {
			return
		}
	}
}
