// Package optional provides a JSON field that distinguishes an absent key
// from an explicit null, which partial updates depend on.
package optional

import (
	"bytes"
	"encoding/json"
)

// Value holds a field of a partial update.
//
// Set is false when the key was absent from the payload. When Set is true a
// nil V means the client sent null.
type Value[T any] struct {
	Set bool
	V   *T
}

// Of returns a set, non-null value
func Of[T any](v T) Value[T] {
	return Value[T]{Set: true, V: &v}
}

// Null returns a set value holding null
func Null[T any]() Value[T] {
	return Value[T]{Set: true}
}

// IsNull reports whether the field was explicitly set to null
func (o Value[T]) IsNull() bool {
	return o.Set && o.V == nil
}

// UnmarshalJSON is only invoked when the key is present
func (o *Value[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.V = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.V = &v
	return nil
}

// MarshalJSON renders null for absent or null values; pair with omitempty-free
// structs only when the distinction does not matter on the way out.
func (o Value[T]) MarshalJSON() ([]byte, error) {
	if o.V == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*o.V)
}
