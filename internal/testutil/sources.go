// Package testutil holds helpers shared by tests across packages.
package testutil

// FailingSource yields Vals and then stops with Err, simulating an input
// stream that breaks partway through.
//
// Thread-safety: not safe for concurrent use, like every Source.
type FailingSource[T any] struct {
	Vals []T
	Fail error

	pos int
}

// NewFailingSource returns a source that yields vals and then fails with err.
func NewFailingSource[T any](err error, vals ...T) *FailingSource[T] {
	return &FailingSource[T]{Vals: vals, Fail: err, pos: -1}
}

func (s *FailingSource[T]) Next() bool {
	if s.pos+1 >= len(s.Vals) {
		s.pos = len(s.Vals)
		return false
	}
	s.pos++
	return true
}

func (s *FailingSource[T]) Value() T {
	if s.pos < 0 || s.pos >= len(s.Vals) {
		var zero T
		return zero
	}
	return s.Vals[s.pos]
}

func (s *FailingSource[T]) Err() error {
	if s.pos >= len(s.Vals) {
		return s.Fail
	}
	return nil
}

// CountingSource wraps values and records how many times Next was called.
// Used to verify that single-consumption inputs are read exactly once.
type CountingSource[T any] struct {
	vals  []T
	pos   int
	Calls int
	Reads int
}

// NewCountingSource creates a CountingSource over vals.
func NewCountingSource[T any](vals ...T) *CountingSource[T] {
	return &CountingSource[T]{vals: vals, pos: -1}
}

func (s *CountingSource[T]) Next() bool {
	s.Calls++
	if s.pos+1 >= len(s.vals) {
		s.pos = len(s.vals)
		return false
	}
	s.pos++
	s.Reads++
	return true
}

func (s *CountingSource[T]) Value() T {
	return s.vals[s.pos]
}

func (s *CountingSource[T]) Err() error { return nil }

// Exhausted reports whether the source has been fully drained.
func (s *CountingSource[T]) Exhausted() bool {
	return s.pos >= len(s.vals)
}
