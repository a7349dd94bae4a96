// Package scratch provides transient on-disk record streams used by the
// duplicate finder to trade memory for disk I/O.
//
// A scratch file is an append-only sequence of serialized values:
//
//	header  := "DUPF" version(1 byte) reserved(3 bytes)
//	record  := uvarint(len(payload)) payload
//
// The header is written exactly once when the file is created. Appending a
// value is plain byte concatenation of one more record, so a file can be
// extended at any time without re-reading or re-framing what is already there.
//
// # Lifecycle
//
//   - Create: new empty file at a unique path (<prefix>-<kind>-<uuidv7>.dat)
//     opened with O_EXCL so two calls can never share a file
//   - Append: buffered writes; pending bytes are flushed before every scan
//   - Scan: independent forward reader from the start of the file
//   - Delete: idempotent removal
//
// Files are normally acquired through a Scope, which guarantees that every
// file it handed out is deleted when the scope is closed. Deletion failures
// are reported as warnings and never turned into errors for the caller.
package scratch
