package util

import (
	"bytes"
	"encoding/json"

	"github.com/pkg/errors"
)

var jsonNull = []byte("null")

// Optional is a JSON field that distinguishes an absent key, an explicit null
// and a value. The zero Optional is absent.
type Optional[T any] struct {
	value T
	set   bool
	null  bool
}

// Some returns an Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, set: true}
}

// Null returns an Optional that was sent as an explicit null.
func Null[T any]() Optional[T] {
	return Optional[T]{set: true, null: true}
}

// IsSet reports whether the key was present, null or not.
func (o Optional[T]) IsSet() bool {
	return o.set
}

// IsNull reports whether the key was present with a null value.
func (o Optional[T]) IsNull() bool {
	return o.set && o.null
}

// Value returns the held value and whether there is one.
func (o Optional[T]) Value() (T, bool) {
	if !o.set || o.null {
		var zero T

		return zero, false
	}

	return o.value, true
}

// Ptr returns a pointer to the held value, or nil when absent or null.
func (o Optional[T]) Ptr() *T {
	if !o.set || o.null {
		return nil
	}
	v := o.value

	return &v
}

// ValidationValue exposes the held value to go-playground/validator.
// Absent and null both validate as a nil pointer, so omitempty skips them.
func (o Optional[T]) ValidationValue() any {
	return o.Ptr()
}

// UnmarshalJSON is only invoked by encoding/json when the key is present.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.set = true
	if bytes.Equal(bytes.TrimSpace(data), jsonNull) {
		var zero T
		o.value = zero
		o.null = true

		return nil
	}

	o.null = false
	if err := json.Unmarshal(data, &o.value); err != nil {
		return errors.Wrap(err, "decode optional value")
	}

	return nil
}

// MarshalJSON writes null for absent and null values.
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.set || o.null {
		return jsonNull, nil
	}

	return json.Marshal(o.value)
}
