package detect

import (
	"context"
	"fmt"

	"github.com/roach88/dupfind/internal/source"
)

// Stats describes one recurrence pass.
type Stats struct {
	Records   int64 // values read from the replay
	Distinct  int64 // values appended to the seen-log
	Recurring int   // distinct values seen at least twice
}

// Recurring returns the set of values that occur at least twice in src.
//
// Each value is looked up in seen: a hit adds it to the result, a miss
// appends it to seen. The result is the only in-memory state that grows with
// the input, and it grows only with values proven to recur.
func Recurring[T comparable](ctx context.Context, src source.Source[T], seen SeenLog[T]) (map[T]struct{}, Stats, error) {
	recurring := make(map[T]struct{})
	var stats Stats

	for src.Next() {
		if err := ctx.Err(); err != nil {
			return nil, stats, err
		}
		v := src.Value()
		stats.Records++

		if _, ok := recurring[v]; ok {
			// Already proven; the seen-log cannot change the answer.
			continue
		}

		found, err := seen.Contains(ctx, v)
		if err != nil {
			return nil, stats, fmt.Errorf("record %d: %w", stats.Records-1, err)
		}
		if found {
			recurring[v] = struct{}{}
			continue
		}
		if err := seen.Add(ctx, v); err != nil {
			return nil, stats, fmt.Errorf("record %d: %w", stats.Records-1, err)
		}
	}
	if err := src.Err(); err != nil {
		return nil, stats, fmt.Errorf("read replay: %w", err)
	}

	stats.Distinct = seen.Len()
	stats.Recurring = len(recurring)
	return recurring, stats, nil
}
