package finder

import (
	"context"

	"github.com/roach88/dupfind/internal/source"
)

// PassMemory names the single pass of FindInMemory in errors.
const PassMemory = "memory"

// FindInMemory is the in-memory alternative to Finder.Find for inputs whose
// distinct values fit in memory. It keeps every distinct value with a
// "seen twice" flag in first-occurrence order and needs no scratch files.
// Results and error kinds match Find.
func FindInMemory[T comparable](ctx context.Context, src source.Source[T]) ([]T, error) {
	if source.IsNil(src) {
		return nil, &Error{Kind: KindInvalidArgument, Err: ErrNilSource}
	}

	repeated := make(map[T]bool)
	var order []T
	for src.Next() {
		if err := ctx.Err(); err != nil {
			return nil, passError(PassMemory, err)
		}
		v := src.Value()
		if _, ok := repeated[v]; ok {
			repeated[v] = true
			continue
		}
		repeated[v] = false
		order = append(order, v)
	}
	if err := src.Err(); err != nil {
		return nil, passError(PassMemory, err)
	}

	dups := make([]T, 0)
	for _, v := range order {
		if repeated[v] {
			dups = append(dups, v)
		}
	}
	return dups, nil
}
