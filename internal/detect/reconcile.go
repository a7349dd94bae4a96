package detect

import (
	"context"
	"fmt"

	"github.com/roach88/dupfind/internal/source"
)

// Reconcile returns the members of recurring in the order of their first
// occurrence in src. Each member appears exactly once.
func Reconcile[T comparable](ctx context.Context, src source.Source[T], recurring map[T]struct{}) ([]T, error) {
	if len(recurring) == 0 {
		return []T{}, nil
	}
	emitted := newOrderedSet[T](len(recurring))

	for src.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		v := src.Value()
		if _, ok := recurring[v]; !ok {
			continue
		}
		emitted.Add(v)
		if emitted.Len() == len(recurring) {
			// Every recurring value has been placed; the rest cannot reorder them.
			break
		}
	}
	if err := src.Err(); err != nil {
		return nil, fmt.Errorf("read replay: %w", err)
	}

	return emitted.Values(), nil
}

// orderedSet is an insertion-ordered collection of unique values.
type orderedSet[T comparable] struct {
	index map[T]struct{}
	items []T
}

func newOrderedSet[T comparable](capacity int) *orderedSet[T] {
	return &orderedSet[T]{
		index: make(map[T]struct{}, capacity),
		items: make([]T, 0, capacity),
	}
}

// Add appends v unless it is already present.
func (s *orderedSet[T]) Add(v T) bool {
	if _, ok := s.index[v]; ok {
		return false
	}
	s.index[v] = struct{}{}
	s.items = append(s.items, v)
	return true
}

func (s *orderedSet[T]) Has(v T) bool {
	_, ok := s.index[v]
	return ok
}

func (s *orderedSet[T]) Len() int {
	return len(s.items)
}

func (s *orderedSet[T]) Values() []T {
	out := make([]T, len(s.items))
	copy(out, s.items)
	return out
}
