package binary

import (
	"bytes"
	"encoding/binary"
)

// Writer provides buffered writing utilities for class-file binary encoding.
// All multi-byte values are big-endian.
type Writer struct {
	buf *bytes.Buffer
}

// NewWriter creates a new Writer.
func NewWriter() *Writer {
	return &Writer{buf: &bytes.Buffer{}}
}

// Bytes returns the written bytes.
func (w *Writer) Bytes() []byte {
	return w.buf.Bytes()
}

// Len returns the number of bytes written.
func (w *Writer) Len() int {
	return w.buf.Len()
}

// U8 writes a single byte.
func (w *Writer) U8(b byte) {
	w.buf.WriteByte(b)
}

// U16 writes a big-endian uint16.
func (w *Writer) U16(v uint16) {
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], v)
	w.buf.Write(buf[:])
}

// U32 writes a big-endian uint32.
func (w *Writer) U32(v uint32) {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], v)
	w.buf.Write(buf[:])
}

// U64 writes a big-endian uint64.
func (w *Writer) U64(v uint64) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	w.buf.Write(buf[:])
}

// S16 writes a big-endian int16.
func (w *Writer) S16(v int16) {
	w.U16(uint16(v))
}

// S32 writes a big-endian int32.
func (w *Writer) S32(v int32) {
	w.U32(uint32(v))
}

// WriteBytes writes a byte slice.
func (w *Writer) WriteBytes(data []byte) {
	w.buf.Write(data)
}

// Append appends another writer's bytes.
func (w *Writer) Append(other *Writer) {
	w.buf.Write(other.Bytes())
}

// PatchU16 overwrites the two bytes at pos with a big-endian uint16.
// pos must be within already-written bytes.
func (w *Writer) PatchU16(pos int, v uint16) {
	b := w.buf.Bytes()
	binary.BigEndian.PutUint16(b[pos:], v)
}

// PatchU32 overwrites the four bytes at pos with a big-endian uint32.
func (w *Writer) PatchU32(pos int, v uint32) {
	b := w.buf.Bytes()
	binary.BigEndian.PutUint32(b[pos:], v)
}
