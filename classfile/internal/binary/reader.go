package binary

import (
	"encoding/binary"
	"fmt"
)

// Reader is a seekable cursor over class-file bytes with big-endian
// fixed-width read methods and position tracking.
type Reader struct {
	data []byte
	pos  int
}

// NewReader creates a new Reader over the given byte slice.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Position returns the current byte position.
func (r *Reader) Position() int {
	return r.pos
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.data) - r.pos
}

// Reset seeks to the given position.
func (r *Reader) Reset(pos int) error {
	if pos < 0 || pos > len(r.data) {
		return fmt.Errorf("seek to %d out of range (size %d)", pos, len(r.data))
	}
	r.pos = pos
	return nil
}

// Skip advances the cursor by n bytes.
func (r *Reader) Skip(n int) error {
	if n < 0 || r.pos+n > len(r.data) {
		return r.eof("skip", n)
	}
	r.pos += n
	return nil
}

// ReadU8 reads a single byte.
func (r *Reader) ReadU8() (byte, error) {
	if r.pos >= len(r.data) {
		return 0, r.eof("u1", 1)
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

// ReadU16 reads a big-endian uint16.
func (r *Reader) ReadU16() (uint16, error) {
	if r.pos+2 > len(r.data) {
		return 0, r.eof("u2", 2)
	}
	v := binary.BigEndian.Uint16(r.data[r.pos:])
	r.pos += 2
	return v, nil
}

// ReadU32 reads a big-endian uint32.
func (r *Reader) ReadU32() (uint32, error) {
	if r.pos+4 > len(r.data) {
		return 0, r.eof("u4", 4)
	}
	v := binary.BigEndian.Uint32(r.data[r.pos:])
	r.pos += 4
	return v, nil
}

// ReadU64 reads a big-endian uint64.
func (r *Reader) ReadU64() (uint64, error) {
	if r.pos+8 > len(r.data) {
		return 0, r.eof("u8", 8)
	}
	v := binary.BigEndian.Uint64(r.data[r.pos:])
	r.pos += 8
	return v, nil
}

// ReadS16 reads a big-endian int16.
func (r *Reader) ReadS16() (int16, error) {
	v, err := r.ReadU16()
	return int16(v), err
}

// ReadS32 reads a big-endian int32.
func (r *Reader) ReadS32() (int32, error) {
	v, err := r.ReadU32()
	return int32(v), err
}

// ReadBytes reads exactly n bytes. The returned slice aliases the input;
// callers that retain it across the read must copy.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n < 0 || r.pos+n > len(r.data) {
		return nil, r.eof("byte array", n)
	}
	out := r.data[r.pos : r.pos+n : r.pos+n]
	r.pos += n
	return out, nil
}

func (r *Reader) eof(what string, n int) error {
	return &ParseError{
		Position: r.pos,
		Err:      fmt.Errorf("need %d byte(s) for %s, have %d", n, what, len(r.data)-r.pos),
	}
}

// ParseError represents an error during binary parsing with position information.
type ParseError struct {
	Err      error
	Position int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("classfile: at position %d: %v", e.Position, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
