package scratch

import (
	"errors"
	"io"
	"os"
)

// Log is a typed view over a File: values go in through a Codec and come
// back out, in append order, through a Scanner.
type Log[T any] struct {
	file  *File
	codec Codec[T]
}

// NewLog wraps f with codec.
func NewLog[T any](f *File, codec Codec[T]) *Log[T] {
	return &Log[T]{file: f, codec: codec}
}

// File returns the underlying record file.
func (l *Log[T]) File() *File {
	return l.file
}

// Len returns the number of values appended.
func (l *Log[T]) Len() int64 {
	return l.file.Len()
}

// Append serializes v and appends it as one record.
func (l *Log[T]) Append(v T) error {
	data, err := l.codec.Encode(v)
	if err != nil {
		return err
	}
	return l.file.Append(data)
}

// Scan starts a fresh forward read from the first record. Every call is
// independent of earlier scans. Failures to open the file are reported by
// the returned Scanner's Err.
func (l *Log[T]) Scan() *Scanner[T] {
	r, rr, err := l.file.open()
	if err != nil {
		return &Scanner[T]{err: err, done: true}
	}
	return &Scanner[T]{f: r, rr: rr, codec: l.codec}
}

// Scanner pulls values from a scratch log one at a time.
//
//	sc := log.Scan()
//	defer sc.Close()
//	for sc.Next() {
//		v := sc.Value()
//	}
//	if err := sc.Err(); err != nil { ... }
//
// Next returns false once the log is exhausted or a read fails; Err
// distinguishes the two. Reaching the end closes the underlying file.
type Scanner[T any] struct {
	f     *os.File
	rr    *recordReader
	codec Codec[T]
	cur   T
	err   error
	done  bool
}

// Next advances to the next value.
func (s *Scanner[T]) Next() bool {
	if s.done {
		return false
	}
	rec, err := s.rr.next()
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = nil
		}
		s.finish(err)
		return false
	}
	v, err := s.codec.Decode(rec)
	if err != nil {
		s.finish(err)
		return false
	}
	s.cur = v
	return true
}

// Value returns the value read by the last successful Next.
func (s *Scanner[T]) Value() T {
	return s.cur
}

// Err returns the first error hit while scanning, or nil after a clean end.
func (s *Scanner[T]) Err() error {
	return s.err
}

// Close releases the read handle. Safe to call more than once.
func (s *Scanner[T]) Close() error {
	if s.done && s.f == nil {
		return nil
	}
	s.finish(nil)
	return nil
}

func (s *Scanner[T]) finish(err error) {
	s.done = true
	if s.err == nil {
		s.err = err
	}
	if s.f != nil {
		s.f.Close()
		s.f = nil
	}
	var zero T
	s.cur = zero
}
