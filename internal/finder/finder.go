// Package finder detects duplicate values in a single-pass input stream and
// reports them in first-occurrence order, keeping memory bounded by the
// number of recurring values.
//
// Find runs three strictly sequential passes:
//
//  1. replay: drain the input once into a scratch buffer file
//  2. recurrence: scan the buffer, classifying recurring values against an
//     on-disk seen-log
//  3. reconcile: scan the buffer again, emitting each recurring value at its
//     first occurrence
//
// Every scratch file of a call is owned by a per-call scratch.Scope and
// deleted on every exit path. Cleanup failures are logged and reported to
// Options.OnOrphan; they never change the call's result or error.
package finder

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/roach88/dupfind/internal/detect"
	"github.com/roach88/dupfind/internal/replay"
	"github.com/roach88/dupfind/internal/scratch"
	"github.com/roach88/dupfind/internal/source"
)

// SeenLogKind selects the on-disk structure used by the recurrence pass.
type SeenLogKind string

const (
	// SeenLogFile is an append-only record file scanned linearly per lookup.
	SeenLogFile SeenLogKind = "file"

	// SeenLogSQLite is a scratch SQLite database with a B-tree index.
	SeenLogSQLite SeenLogKind = "sqlite"
)

// Options configures a Finder. The zero value is usable.
type Options struct {
	// Dir is the scratch directory. Empty means os.TempDir().
	Dir string

	// Prefix starts every scratch file name. Empty means scratch.DefaultPrefix.
	Prefix string

	// SeenLog selects the pass-1 seen-log. Empty means SeenLogFile.
	SeenLog SeenLogKind

	// SQLiteCacheKiB caps the SQLite page cache for SeenLogSQLite.
	SQLiteCacheKiB int

	// Logger receives pass boundaries (debug) and cleanup failures (warn).
	// Nil disables logging.
	Logger *zerolog.Logger

	// OnOrphan is called for each scratch file that could not be deleted.
	OnOrphan scratch.OrphanFunc
}

// Finder finds duplicates in sources of T.
// A Finder is safe for concurrent use; each call uses its own scratch files.
type Finder[T comparable] struct {
	codec scratch.Codec[T]
	opts  Options
	log   zerolog.Logger
}

// New creates a Finder that serializes values with codec.
func New[T comparable](codec scratch.Codec[T], opts Options) *Finder[T] {
	if opts.SeenLog == "" {
		opts.SeenLog = SeenLogFile
	}
	f := &Finder[T]{codec: codec, opts: opts, log: zerolog.Nop()}
	if opts.Logger != nil {
		f.log = *opts.Logger
	}
	return f
}

// Find returns the distinct values that occur more than once in src,
// ordered by first occurrence. src is consumed exactly once.
//
// Either the full result or an *Error is returned, never a partial result.
func (f *Finder[T]) Find(ctx context.Context, src source.Source[T]) ([]T, error) {
	if source.IsNil(src) {
		return nil, &Error{Kind: KindInvalidArgument, Err: ErrNilSource}
	}
	switch f.opts.SeenLog {
	case SeenLogFile:
	case SeenLogSQLite:
		if !scratch.IsCanonical(f.codec) {
			return nil, &Error{Kind: KindInvalidArgument, Err: fmt.Errorf("seen-log %q: %w", f.opts.SeenLog, detect.ErrNonCanonicalCodec)}
		}
	default:
		return nil, &Error{Kind: KindInvalidArgument, Err: fmt.Errorf("unknown seen-log kind %q", f.opts.SeenLog)}
	}

	log := f.log.With().Str("run_id", uuid.Must(uuid.NewV7()).String()).Logger()
	store := &scratch.Store{Dir: f.opts.Dir, Prefix: f.opts.Prefix}
	scope := scratch.NewScope(store, &log, f.opts.OnOrphan)
	defer scope.Close()

	// Pass 0: materialize the one-shot input.
	start := time.Now()
	buf, bstats, err := replay.Buffer(ctx, scope, f.codec, src)
	if err != nil {
		return nil, passError(PassReplay, err)
	}
	log.Debug().
		Int64("records", bstats.Records).
		Dur("elapsed", time.Since(start)).
		Msg("input buffered")

	// Pass 1: classify recurring values.
	start = time.Now()
	recurring, rstats, err := f.recurrence(ctx, scope, &log, buf)
	if err != nil {
		return nil, passError(PassRecurrence, err)
	}
	log.Debug().
		Str("seen_log", string(f.opts.SeenLog)).
		Int64("distinct", rstats.Distinct).
		Int("recurring", rstats.Recurring).
		Dur("elapsed", time.Since(start)).
		Msg("recurrence pass complete")

	// Pass 2: recover first-occurrence order.
	start = time.Now()
	sc := buf.Scan()
	defer sc.Close()
	dups, err := detect.Reconcile(ctx, sc, recurring)
	if err != nil {
		return nil, passError(PassReconcile, err)
	}
	log.Debug().
		Int("duplicates", len(dups)).
		Dur("elapsed", time.Since(start)).
		Msg("reconcile pass complete")

	return dups, nil
}

// recurrence runs pass 1 against a fresh seen-log, which is deleted as
// soon as the pass ends.
func (f *Finder[T]) recurrence(ctx context.Context, scope *scratch.Scope, log *zerolog.Logger, buf *scratch.Log[T]) (map[T]struct{}, detect.Stats, error) {
	seen, res, err := f.openSeenLog(ctx, scope)
	if err != nil {
		return nil, detect.Stats{}, err
	}
	defer func() {
		if err := seen.Close(); err != nil {
			log.Warn().Err(err).Str("path", res.Path()).Msg("failed to close seen-log")
		}
		scope.Release(res)
	}()

	sc := buf.Scan()
	defer sc.Close()
	return detect.Recurring(ctx, sc, seen)
}

func (f *Finder[T]) openSeenLog(ctx context.Context, scope *scratch.Scope) (detect.SeenLog[T], scratch.Resource, error) {
	if f.opts.SeenLog == SeenLogSQLite {
		res, err := scope.Reserve("seen", ".db", detect.SQLiteSidecars...)
		if err != nil {
			return nil, nil, err
		}
		seen, err := detect.OpenSQLiteSeenLog(ctx, res.Path(), f.codec, f.opts.SQLiteCacheKiB)
		if err != nil {
			scope.Release(res)
			return nil, nil, err
		}
		return seen, res, nil
	}

	file, err := scope.Create("seen")
	if err != nil {
		return nil, nil, err
	}
	return detect.NewFileSeenLog(scratch.NewLog(file, f.codec)), file, nil
}
