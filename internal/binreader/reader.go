// Package binreader offers offset-tracked little-endian primitive reads
// over an immutable byte slice, for decoding CM93's binary cell records.
package binreader

import (
	"encoding/binary"
	"errors"
	"math"
)

// ErrShortRead is returned when a read would run past the end of the
// underlying buffer. Callers propagate it by early exit, never by panic.
var ErrShortRead = errors.New("binreader: short read")

// Reader carries a read cursor over a byte slice.
type Reader struct {
	data []byte
	pos  int
}

// New creates a Reader positioned at the start of data.
func New(data []byte) *Reader {
	return &Reader{data: data}
}

// NewAt creates a Reader positioned at offset pos within data.
func NewAt(data []byte, pos int) *Reader {
	return &Reader{data: data, pos: pos}
}

// Pos returns the current cursor offset.
func (r *Reader) Pos() int { return r.pos }

// Seek moves the cursor to an absolute offset.
func (r *Reader) Seek(pos int) { r.pos = pos }

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	n := len(r.data) - r.pos
	if n < 0 {
		return 0
	}
	return n
}

// ReadBytes returns the next n bytes and advances the cursor.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if r.pos+n > len(r.data) || n < 0 {
		return nil, ErrShortRead
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// ReadU8 reads an unsigned 8-bit value.
func (r *Reader) ReadU8() (uint8, error) {
	b, err := r.ReadBytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadU16LE reads a little-endian unsigned 16-bit value.
func (r *Reader) ReadU16LE() (uint16, error) {
	b, err := r.ReadBytes(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// ReadI16LE reads a little-endian signed 16-bit value.
func (r *Reader) ReadI16LE() (int16, error) {
	v, err := r.ReadU16LE()
	if err != nil {
		return 0, err
	}
	return int16(v), nil
}

// ReadU32LE reads a little-endian unsigned 32-bit value.
func (r *Reader) ReadU32LE() (uint32, error) {
	b, err := r.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// ReadF32LE reads a little-endian IEEE-754 single-precision float.
func (r *Reader) ReadF32LE() (float32, error) {
	v, err := r.ReadU32LE()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

// ReadF64LE reads a little-endian IEEE-754 double-precision float.
func (r *Reader) ReadF64LE() (float64, error) {
	b, err := r.ReadBytes(8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(b)), nil
}
