// Package optional models request fields whose presence matters. A JSON
// field that is absent leaves Value unset; a field that is present, even as
// null, is marked Set so "clear this" and "leave it alone" stay distinct.
package optional

import (
	"bytes"
	"encoding/json"
)

// Value is a field that may or may not have been supplied.
type Value[T any] struct {
	Set   bool
	Null  bool
	Value T
}

// Of returns a Value that is set to v.
func Of[T any](v T) Value[T] {
	return Value[T]{Set: true, Value: v}
}

// Null returns a Value that was supplied as an explicit null.
func Null[T any]() Value[T] {
	return Value[T]{Set: true, Null: true}
}

// Get returns the value and whether it was supplied.
func (v Value[T]) Get() (T, bool) {
	return v.Value, v.Set
}

// UnmarshalJSON is only invoked by encoding/json when the key is present.
func (v *Value[T]) UnmarshalJSON(data []byte) error {
	v.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		v.Null = true
		var zero T
		v.Value = zero
		return nil
	}
	v.Null = false
	return json.Unmarshal(data, &v.Value)
}

// MarshalJSON writes null for unset or null values.
func (v Value[T]) MarshalJSON() ([]byte, error) {
	if !v.Set || v.Null {
		return []byte("null"), nil
	}
	return json.Marshal(v.Value)
}
