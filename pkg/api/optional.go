package api

import (
	"bytes"
	"encoding/json"
)

// Optional is a tri-state JSON field: absent, present with a value, or present as null.
// The zero value is absent.
type Optional[T any] struct {
	Value T
	Set   bool // key present in the request
	Null  bool // key present with a null value
}

// Some returns a present Optional holding v
func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Set: true}
}

// Null returns a present Optional explicitly set to null
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true, Null: true}
}

// Present reports whether the field carries a non-null value
func (o Optional[T]) Present() bool {
	return o.Set && !o.Null
}

// UnmarshalJSON is only called when the key exists in the object,
// so reaching it marks the field as set.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		var zero T
		o.Value = zero
		o.Null = true
		return nil
	}
	o.Null = false
	return json.Unmarshal(data, &o.Value)
}

// MarshalJSON writes null for absent and null fields
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Present() {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}
