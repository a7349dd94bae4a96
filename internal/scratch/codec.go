package scratch

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"reflect"
)

// Codec serializes values of one type into scratch records.
//
// Decode(Encode(v)) must equal v. Decode must not retain data, which is
// reused for the next record.
type Codec[T any] interface {
	Encode(v T) ([]byte, error)
	Decode(data []byte) (T, error)
}

// CanonicalCodec is implemented by codecs that can report whether their
// encoding is canonical for T: a == b exactly when Encode(a) and Encode(b)
// are the same bytes. Structures that key values by their encoded bytes
// accept only canonical codecs.
type CanonicalCodec interface {
	Canonical() bool
}

// IsCanonical reports whether codec declares a canonical encoding.
func IsCanonical[T any](codec Codec[T]) bool {
	c, ok := codec.(CanonicalCodec)
	return ok && c.Canonical()
}

// StringCodec stores strings as raw bytes.
type StringCodec struct{}

func (StringCodec) Encode(v string) ([]byte, error) { return []byte(v), nil }

func (StringCodec) Decode(data []byte) (string, error) { return string(data), nil }

// Canonical is true: strings compare byte by byte.
func (StringCodec) Canonical() bool { return true }

// Int64Codec stores integers as zig-zag varints.
type Int64Codec struct{}

// Canonical is true: every int64 has exactly one varint form.
func (Int64Codec) Canonical() bool { return true }

func (Int64Codec) Encode(v int64) ([]byte, error) {
	return binary.AppendVarint(nil, v), nil
}

func (Int64Codec) Decode(data []byte) (int64, error) {
	v, n := binary.Varint(data)
	if n <= 0 || n != len(data) {
		return 0, fmt.Errorf("decode int64: malformed varint (%d bytes)", len(data))
	}
	return v, nil
}

// JSONCodec stores values with encoding/json. Strings in T must be valid
// UTF-8, since json.Marshal replaces invalid bytes with U+FFFD.
//
// JSONCodec is never canonical: 0.0 and -0.0 are equal but marshal to "0"
// and "-0", and field tags can hide fields from the encoding.
type JSONCodec[T any] struct{}

func (JSONCodec[T]) Canonical() bool { return false }

func (JSONCodec[T]) Encode(v T) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode json: %w", err)
	}
	return data, nil
}

func (JSONCodec[T]) Decode(data []byte) (T, error) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return v, fmt.Errorf("decode json: %w", err)
	}
	return v, nil
}

// GobCodec stores values with encoding/gob. Every record carries its own
// type description so records can be decoded independently.
type GobCodec[T any] struct{}

// Canonical reports whether T is built only from booleans, integers,
// strings, arrays and structs with exported fields. Floats (0.0 == -0.0,
// NaN != NaN), pointers, interfaces and unexported fields break the match
// between == and the encoded bytes.
func (GobCodec[T]) Canonical() bool {
	return gobCanonical(reflect.TypeOf((*T)(nil)).Elem())
}

func gobCanonical(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	case reflect.Array:
		return gobCanonical(t.Elem())
	case reflect.Struct:
		if t.NumField() == 0 {
			return false
		}
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if !f.IsExported() || !gobCanonical(f.Type) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func (GobCodec[T]) Encode(v T) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, fmt.Errorf("encode gob: %w", err)
	}
	return buf.Bytes(), nil
}

func (GobCodec[T]) Decode(data []byte) (T, error) {
	var v T
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&v); err != nil {
		return v, fmt.Errorf("decode gob: %w", err)
	}
	return v, nil
}
