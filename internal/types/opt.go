package types

import (
	"bytes"
	"encoding/json"
)

// Opt is an optional patch field that distinguishes "absent from the
// request" from "explicitly set to null". encoding/json only calls
// UnmarshalJSON for keys present in the payload, so Set doubles as a
// presence flag.
type Opt[T any] struct {
	Value T
	Set   bool
	Null  bool
}

// OptOf returns a present, non-null Opt holding v.
func OptOf[T any](v T) Opt[T] {
	return Opt[T]{Value: v, Set: true}
}

// OptNull returns a present Opt carrying an explicit null.
func OptNull[T any]() Opt[T] {
	return Opt[T]{Set: true, Null: true}
}

// Ptr returns the patch value as a nullable pointer: nil when the field
// was an explicit null. Callers must check Set first.
func (o Opt[T]) Ptr() *T {
	if o.Null {
		return nil
	}
	v := o.Value
	return &v
}

var jsonNull = []byte("null")

// UnmarshalJSON implements json.Unmarshaler.
func (o *Opt[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(data, jsonNull) {
		o.Null = true
		var zero T
		o.Value = zero
		return nil
	}
	o.Null = false
	return json.Unmarshal(data, &o.Value)
}

// MarshalJSON implements json.Marshaler. Absent fields marshal as null;
// patches are request-side types so this is only exercised in tests.
func (o Opt[T]) MarshalJSON() ([]byte, error) {
	if !o.Set || o.Null {
		return jsonNull, nil
	}
	return json.Marshal(o.Value)
}
