package scratch

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const (
	headerSize    = 8
	formatVersion = 1

	// MaxRecordSize bounds a single serialized value. Larger records are
	// rejected on append and treated as corruption on read.
	MaxRecordSize = 64 << 20
)

var magic = [4]byte{'D', 'U', 'P', 'F'}

var (
	// ErrCorrupt is returned when a scratch file has a bad header or ends
	// in the middle of a record.
	ErrCorrupt = errors.New("scratch: corrupt record stream")

	// ErrRecordTooLarge is returned when a serialized value exceeds MaxRecordSize.
	ErrRecordTooLarge = errors.New("scratch: record too large")

	// ErrDeleted is returned when appending to or scanning a deleted file.
	ErrDeleted = errors.New("scratch: file deleted")
)

func writeHeader(w io.Writer) error {
	var hdr [headerSize]byte
	copy(hdr[:], magic[:])
	hdr[4] = formatVersion
	_, err := w.Write(hdr[:])
	return err
}

func readHeader(r io.Reader) error {
	var hdr [headerSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return fmt.Errorf("%w: missing header", ErrCorrupt)
		}
		return fmt.Errorf("read header: %w", err)
	}
	if [4]byte(hdr[:4]) != magic {
		return fmt.Errorf("%w: bad magic %q", ErrCorrupt, hdr[:4])
	}
	if hdr[4] != formatVersion {
		return fmt.Errorf("%w: unsupported version %d", ErrCorrupt, hdr[4])
	}
	return nil
}

func writeRecord(w io.Writer, payload []byte) error {
	if len(payload) > MaxRecordSize {
		return fmt.Errorf("%w: %d bytes", ErrRecordTooLarge, len(payload))
	}
	var prefix [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(prefix[:], uint64(len(payload)))
	if _, err := w.Write(prefix[:n]); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}

// recordReader pulls length-prefixed records from a buffered stream.
// The slice returned by next is reused by the following call.
type recordReader struct {
	r   *bufio.Reader
	buf []byte
}

func newRecordReader(r io.Reader) *recordReader {
	return &recordReader{r: bufio.NewReader(r)}
}

// next returns io.EOF only at a clean record boundary.
func (rr *recordReader) next() ([]byte, error) {
	size, err := binary.ReadUvarint(rr.r)
	switch {
	case err == io.EOF:
		return nil, io.EOF
	case errors.Is(err, io.ErrUnexpectedEOF):
		return nil, fmt.Errorf("%w: truncated length prefix", ErrCorrupt)
	case err != nil:
		return nil, fmt.Errorf("read record length: %w", err)
	}
	if size > MaxRecordSize {
		return nil, fmt.Errorf("%w: record length %d", ErrCorrupt, size)
	}

	if uint64(cap(rr.buf)) < size {
		rr.buf = make([]byte, size)
	}
	rr.buf = rr.buf[:size]
	if _, err := io.ReadFull(rr.r, rr.buf); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: truncated record", ErrCorrupt)
		}
		return nil, fmt.Errorf("read record: %w", err)
	}
	return rr.buf, nil
}
