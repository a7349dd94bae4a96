// Package replay turns a single-consumption input sequence into a
// replayable one by materializing it into a scratch file.
//
// The input is drained exactly once, in order. Afterwards the returned log
// can be scanned any number of times; every scan yields the same values in
// the same order as the original input.
package replay

import (
	"context"
	"fmt"

	"github.com/roach88/dupfind/internal/scratch"
	"github.com/roach88/dupfind/internal/source"
)

// Stats describes one buffering pass.
type Stats struct {
	Records int64
}

// Buffer drains src into a new scratch file owned by scope.
//
// The file is registered with scope before the first append, so a buffer
// left half-written by a failure is still deleted when the scope closes.
// On failure the partially written log is returned alongside the error
// whenever the file was created.
func Buffer[T any](ctx context.Context, scope *scratch.Scope, codec scratch.Codec[T], src source.Source[T]) (*scratch.Log[T], Stats, error) {
	f, err := scope.Create("buffer")
	if err != nil {
		return nil, Stats{}, fmt.Errorf("buffer input: %w", err)
	}
	log := scratch.NewLog(f, codec)

	var stats Stats
	for src.Next() {
		if err := ctx.Err(); err != nil {
			return log, stats, err
		}
		if err := log.Append(src.Value()); err != nil {
			return log, stats, fmt.Errorf("buffer input: record %d: %w", stats.Records, err)
		}
		stats.Records++
	}
	if err := src.Err(); err != nil {
		return log, stats, fmt.Errorf("buffer input: read source: %w", err)
	}

	if err := f.Flush(); err != nil {
		return log, stats, fmt.Errorf("buffer input: %w", err)
	}
	return log, stats, nil
}
