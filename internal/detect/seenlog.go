package detect

import (
	"context"
	"fmt"

	"github.com/roach88/dupfind/internal/scratch"
)

// SeenLog records the distinct values observed so far during pass 1.
type SeenLog[T comparable] interface {
	// Contains reports whether v was added before.
	Contains(ctx context.Context, v T) (bool, error)

	// Add records v. Callers only add values that Contains rejected.
	Add(ctx context.Context, v T) error

	// Len returns the number of values added.
	Len() int64

	// Close releases handles. Deleting the backing file is the owner's job.
	Close() error
}

// FileSeenLog is a SeenLog over an append-only scratch log. Every lookup
// scans the log from the start and compares decoded values with ==.
type FileSeenLog[T comparable] struct {
	log *scratch.Log[T]
}

// NewFileSeenLog wraps an empty scratch log.
func NewFileSeenLog[T comparable](log *scratch.Log[T]) *FileSeenLog[T] {
	return &FileSeenLog[T]{log: log}
}

func (s *FileSeenLog[T]) Contains(_ context.Context, v T) (bool, error) {
	if s.log.Len() == 0 {
		return false, nil
	}

	sc := s.log.Scan()
	defer sc.Close()
	for sc.Next() {
		if sc.Value() == v {
			return true, nil
		}
	}
	if err := sc.Err(); err != nil {
		return false, fmt.Errorf("scan seen-log: %w", err)
	}
	return false, nil
}

func (s *FileSeenLog[T]) Add(_ context.Context, v T) error {
	if err := s.log.Append(v); err != nil {
		return fmt.Errorf("append seen-log: %w", err)
	}
	return nil
}

func (s *FileSeenLog[T]) Len() int64 {
	return s.log.Len()
}

func (s *FileSeenLog[T]) Close() error {
	return nil
}
