// Package source provides pull-based input sequences for the duplicate finder.
//
// A Source is consumed exactly once. It follows the database/sql.Rows shape:
// Next advances, Value returns the current element, and Err reports why
// iteration stopped (nil after a clean end).
package source

import (
	"reflect"
)

// Source is a single-consumption sequence of values.
type Source[T any] interface {
	Next() bool
	Value() T
	Err() error
}

// IsNil reports whether src is nil, including a nil pointer (or other nil
// reference) stored in a non-nil interface.
func IsNil[T any](src Source[T]) bool {
	if src == nil {
		return true
	}
	v := reflect.ValueOf(src)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return v.IsNil()
	}
	return false
}

// Slice returns a Source over vals.
func Slice[T any](vals ...T) Source[T] {
	return &sliceSource[T]{vals: vals, pos: -1}
}

type sliceSource[T any] struct {
	vals []T
	pos  int
}

func (s *sliceSource[T]) Next() bool {
	if s.pos+1 >= len(s.vals) {
		s.pos = len(s.vals)
		return false
	}
	s.pos++
	return true
}

func (s *sliceSource[T]) Value() T {
	if s.pos < 0 || s.pos >= len(s.vals) {
		var zero T
		return zero
	}
	return s.vals[s.pos]
}

func (s *sliceSource[T]) Err() error { return nil }

// Map converts every value of src with fn. The first conversion error stops
// the sequence and is reported by Err.
func Map[S, T any](src Source[S], fn func(S) (T, error)) Source[T] {
	return &mapSource[S, T]{src: src, fn: fn}
}

type mapSource[S, T any] struct {
	src  Source[S]
	fn   func(S) (T, error)
	cur  T
	err  error
	done bool
}

func (m *mapSource[S, T]) Next() bool {
	if m.done || !m.src.Next() {
		m.done = true
		return false
	}
	v, err := m.fn(m.src.Value())
	if err != nil {
		m.err = err
		m.done = true
		return false
	}
	m.cur = v
	return true
}

func (m *mapSource[S, T]) Value() T { return m.cur }

func (m *mapSource[S, T]) Err() error {
	if m.err != nil {
		return m.err
	}
	return m.src.Err()
}

// Collect drains src into a slice.
func Collect[T any](src Source[T]) ([]T, error) {
	var out []T
	for src.Next() {
		out = append(out, src.Value())
	}
	return out, src.Err()
}

// Sample returns the built-in demonstration input.
func Sample() []string {
	return []string{"b", "a", "c", "c", "e", "a", "c", "d", "c", "d"}
}
