package metadata

import (
	"bytes"
	"encoding/json"

	"github.com/pkg/errors"
)

// Field is one entry of a patch. The zero value is absent, meaning the
// source has no opinion. A present field either carries a value or is
// explicitly null, which clears the target field.
type Field[T any] struct {
	present bool
	null    bool
	value   T
}

func Value[T any](v T) Field[T] {
	return Field[T]{present: true, value: v}
}

func Null[T any]() Field[T] {
	return Field[T]{present: true, null: true}
}

func Absent[T any]() Field[T] {
	return Field[T]{}
}

func (f Field[T]) IsPresent() bool {
	return f.present
}

func (f Field[T]) IsNull() bool {
	return f.present && f.null
}

// Get returns the carried value. ok is false for absent and null fields.
func (f Field[T]) Get() (v T, ok bool) {
	if !f.present || f.null {
		return v, false
	}
	return f.value, true
}

// IsZero lets encoding/json drop absent fields tagged omitzero.
func (f Field[T]) IsZero() bool {
	return !f.present
}

// UnmarshalJSON is only invoked for keys that exist in the document, so a
// missing key stays absent while a literal null becomes Null.
func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.present = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		f.null = true
		var zero T
		f.value = zero
		return nil
	}
	f.null = false
	return errors.WithStack(json.Unmarshal(data, &f.value))
}

func (f Field[T]) MarshalJSON() ([]byte, error) {
	if !f.present || f.null {
		return []byte("null"), nil
	}
	return json.Marshal(f.value)
}

// apply resolves a patch field against the current value of a non-nullable
// record field. Null clears the field to its zero value.
func apply[T any](f Field[T], locked bool, current T) T {
	if !f.present || locked {
		return current
	}
	if f.null {
		var zero T
		return zero
	}
	return f.value
}

// applyNullable resolves a patch field against a nullable record field.
func applyNullable[T any](f Field[T], locked bool, current *T) *T {
	if !f.present || locked {
		return current
	}
	if f.null {
		return nil
	}
	v := f.value
	return &v
}
