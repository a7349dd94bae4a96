package scratch

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// DefaultPrefix is used when Store.Prefix is empty.
const DefaultPrefix = "dupfind"

// Store creates scratch files in a directory.
// The zero value creates files in os.TempDir() with DefaultPrefix.
type Store struct {
	Dir    string
	Prefix string
}

// Create makes a new, empty record file for the given kind ("buffer", "seen").
// The header is written and flushed before Create returns.
func (s *Store) Create(kind string) (*File, error) {
	path, f, err := s.open(kind, ".dat")
	if err != nil {
		return nil, err
	}

	bw := bufio.NewWriter(f)
	err = writeHeader(bw)
	if err == nil {
		err = bw.Flush()
	}
	if err != nil {
		f.Close()
		os.Remove(path)
		return nil, fmt.Errorf("create scratch file: write header: %w", err)
	}

	return &File{path: path, w: f, bw: bw}, nil
}

// Reserve creates an empty file at a unique path and returns the path.
// It is used for scratch data that is not a record stream (e.g., a SQLite
// database). Sidecar suffixes name additional files derived from the path
// that must be removed together with it.
func (s *Store) Reserve(kind, ext string, sidecars ...string) (*Reservation, error) {
	path, f, err := s.open(kind, ext)
	if err != nil {
		return nil, err
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("reserve scratch file: %w", err)
	}
	return &Reservation{path: path, sidecars: sidecars}, nil
}

func (s *Store) open(kind, ext string) (string, *os.File, error) {
	dir := s.Dir
	if dir == "" {
		dir = os.TempDir()
	}
	prefix := s.Prefix
	if prefix == "" {
		prefix = DefaultPrefix
	}

	id, err := uuid.NewV7()
	if err != nil {
		return "", nil, fmt.Errorf("create scratch file: generate name: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("%s-%s-%s%s", prefix, kind, id, ext))

	// O_EXCL: a name collision must fail instead of sharing a file.
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return "", nil, fmt.Errorf("create scratch file: %w", err)
	}
	return path, f, nil
}

// File is an append-only record stream on disk.
// A File is not safe for concurrent use.
type File struct {
	path    string
	w       *os.File
	bw      *bufio.Writer
	records int64
	deleted bool
}

// Path returns the file's location on disk.
func (f *File) Path() string {
	return f.path
}

// Len returns the number of records appended through this handle.
func (f *File) Len() int64 {
	return f.records
}

// Append writes one record after the existing ones.
func (f *File) Append(record []byte) error {
	if f.deleted {
		return ErrDeleted
	}
	if err := writeRecord(f.bw, record); err != nil {
		return fmt.Errorf("append %s: %w", filepath.Base(f.path), err)
	}
	f.records++
	return nil
}

// Flush pushes buffered records to the operating system.
func (f *File) Flush() error {
	if f.deleted {
		return ErrDeleted
	}
	if err := f.bw.Flush(); err != nil {
		return fmt.Errorf("flush %s: %w", filepath.Base(f.path), err)
	}
	return nil
}

// open returns a reader positioned after the header. Pending appends are
// flushed first so the reader sees every record appended so far.
func (f *File) open() (*os.File, *recordReader, error) {
	if err := f.Flush(); err != nil {
		return nil, nil, err
	}
	r, err := os.Open(f.path)
	if err != nil {
		return nil, nil, fmt.Errorf("open scratch file: %w", err)
	}
	rr := newRecordReader(r)
	if err := readHeader(rr.r); err != nil {
		r.Close()
		return nil, nil, fmt.Errorf("%s: %w", filepath.Base(f.path), err)
	}
	return r, rr, nil
}

// Delete closes the write handle and removes the file.
// Deleting an already-removed file is not an error.
func (f *File) Delete() error {
	var closeErr error
	if !f.deleted {
		f.deleted = true
		// Buffered bytes are discarded; the file is going away.
		closeErr = f.w.Close()
	}
	if err := removeIfExists(f.path); err != nil {
		return err
	}
	if closeErr != nil && !errors.Is(closeErr, os.ErrClosed) {
		return fmt.Errorf("close scratch file: %w", closeErr)
	}
	return nil
}

// Reservation is a unique scratch path owned by the caller.
type Reservation struct {
	path     string
	sidecars []string
}

// Path returns the reserved path.
func (r *Reservation) Path() string {
	return r.path
}

// Delete removes the reserved file and its sidecars. Idempotent.
func (r *Reservation) Delete() error {
	var errs []error
	if err := removeIfExists(r.path); err != nil {
		errs = append(errs, err)
	}
	for _, suffix := range r.sidecars {
		if err := removeIfExists(r.path + suffix); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove scratch file: %w", err)
	}
	return nil
}
