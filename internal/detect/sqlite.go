package detect

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/dupfind/internal/scratch"
)

// DefaultSQLiteCacheKiB caps the SQLite page cache of a seen-log.
const DefaultSQLiteCacheKiB = 2048

// SQLiteSidecars lists the files SQLite may create next to a database.
// Scratch reservations for a seen-log delete them together with it.
var SQLiteSidecars = []string{"-journal", "-wal", "-shm"}

const seenSchema = `
CREATE TABLE IF NOT EXISTS seen (
	key BLOB PRIMARY KEY
) WITHOUT ROWID`

// ErrNonCanonicalCodec is returned when a codec cannot key values by their
// encoded bytes. See scratch.IsCanonical.
var ErrNonCanonicalCodec = errors.New("codec encoding is not canonical")

// SQLiteSeenLog is a SeenLog backed by a scratch SQLite database.
// Values are keyed by their encoded bytes, so the codec must be canonical.
type SQLiteSeenLog[T comparable] struct {
	db       *sql.DB
	codec    scratch.Codec[T]
	contains *sql.Stmt
	insert   *sql.Stmt
	n        int64
}

// OpenSQLiteSeenLog opens a seen-log database at path, normally a path
// reserved through scratch.Scope.Reserve.
//
// The database is configured for transient data:
//   - journal_mode=OFF and synchronous=OFF: nothing needs to survive a crash
//   - cache_size capped at cacheKiB so memory stays bounded
//   - temp_store=FILE so sorting spills to disk instead of memory
func OpenSQLiteSeenLog[T comparable](ctx context.Context, path string, codec scratch.Codec[T], cacheKiB int) (*SQLiteSeenLog[T], error) {
	if !scratch.IsCanonical(codec) {
		return nil, ErrNonCanonicalCodec
	}
	if cacheKiB <= 0 {
		cacheKiB = DefaultSQLiteCacheKiB
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open seen-log database: %w", err)
	}

	// One connection: pragmas are per-connection and access is sequential.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to seen-log database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = OFF",
		"PRAGMA synchronous = OFF",
		"PRAGMA temp_store = FILE",
		fmt.Sprintf("PRAGMA cache_size = -%d", cacheKiB),
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	if _, err := db.ExecContext(ctx, seenSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply seen-log schema: %w", err)
	}

	contains, err := db.PrepareContext(ctx, `SELECT 1 FROM seen WHERE key = ?`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("prepare seen lookup: %w", err)
	}
	insert, err := db.PrepareContext(ctx, `INSERT INTO seen (key) VALUES (?) ON CONFLICT(key) DO NOTHING`)
	if err != nil {
		contains.Close()
		db.Close()
		return nil, fmt.Errorf("prepare seen insert: %w", err)
	}

	return &SQLiteSeenLog[T]{
		db:       db,
		codec:    codec,
		contains: contains,
		insert:   insert,
	}, nil
}

func (s *SQLiteSeenLog[T]) Contains(ctx context.Context, v T) (bool, error) {
	key, err := s.key(v)
	if err != nil {
		return false, err
	}
	var one int
	err = s.contains.QueryRowContext(ctx, key).Scan(&one)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("query seen-log: %w", err)
	}
	return true, nil
}

func (s *SQLiteSeenLog[T]) Add(ctx context.Context, v T) error {
	key, err := s.key(v)
	if err != nil {
		return err
	}
	if _, err := s.insert.ExecContext(ctx, key); err != nil {
		return fmt.Errorf("insert seen-log: %w", err)
	}
	s.n++
	return nil
}

// key encodes v. A nil slice would bind as NULL, so empty keys are
// normalized to a zero-length blob.
func (s *SQLiteSeenLog[T]) key(v T) ([]byte, error) {
	key, err := s.codec.Encode(v)
	if err != nil {
		return nil, err
	}
	if key == nil {
		key = []byte{}
	}
	return key, nil
}

func (s *SQLiteSeenLog[T]) Len() int64 {
	return s.n
}

// Close closes the database. Safe to call more than once.
func (s *SQLiteSeenLog[T]) Close() error {
	if s.db == nil {
		return nil
	}
	s.contains.Close()
	s.insert.Close()
	err := s.db.Close()
	s.db = nil
	return err
}
