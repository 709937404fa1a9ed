package bin

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/meigma/pacx/internal/pactype"
)

// Reader decodes fixed-width values from a byte slice.
//
// Every read is bounds-checked; running off the end yields an error wrapping
// pactype.ErrCorrupt.
type Reader struct {
	data  []byte
	pos   int
	order binary.ByteOrder
}

// NewReader returns a reader positioned at the start of data.
func NewReader(data []byte, order binary.ByteOrder) *Reader {
	return &Reader{data: data, order: order}
}

// SetOrder changes the byte order for subsequent reads.
func (r *Reader) SetOrder(order binary.ByteOrder) { r.order = order }

// Pos returns the current read position.
func (r *Reader) Pos() int64 { return int64(r.pos) }

// Len returns the total number of bytes.
func (r *Reader) Len() int64 { return int64(len(r.data)) }

// Seek moves the read position to off.
func (r *Reader) Seek(off int64) error {
	if off < 0 || off > int64(len(r.data)) {
		return fmt.Errorf("%w: offset %d outside %d-byte stream", pactype.ErrCorrupt, off, len(r.data))
	}
	r.pos = int(off)
	return nil
}

// Skip advances the read position by n bytes.
func (r *Reader) Skip(n int) error {
	return r.Seek(int64(r.pos) + int64(n))
}

func (r *Reader) take(n int) ([]byte, error) {
	if n < 0 || len(r.data)-r.pos < n {
		return nil, fmt.Errorf("%w: need %d bytes at offset %d, have %d", pactype.ErrCorrupt, n, r.pos, len(r.data)-r.pos)
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// U8 reads one byte.
func (r *Reader) U8() (uint8, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// Bool reads one byte; any non-zero value is true.
func (r *Reader) Bool() (bool, error) {
	v, err := r.U8()
	return v != 0, err
}

// U16 reads a 16-bit unsigned integer in the active byte order.
func (r *Reader) U16() (uint16, error) {
	b, err := r.take(2)
	if err != nil {
		return 0, err
	}
	return r.order.Uint16(b), nil
}

// U32 reads a 32-bit unsigned integer in the active byte order.
func (r *Reader) U32() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return r.order.Uint32(b), nil
}

// I32 reads a 32-bit signed integer in the active byte order.
func (r *Reader) I32() (int32, error) {
	v, err := r.U32()
	return int32(v), err //nolint:gosec // two's complement reinterpretation
}

// U64 reads a 64-bit unsigned integer in the active byte order.
func (r *Reader) U64() (uint64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return r.order.Uint64(b), nil
}

// Fixed reads n bytes and returns them as a string.
func (r *Reader) Fixed(n int) (string, error) {
	b, err := r.take(n)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Bytes reads n bytes into a freshly allocated slice.
func (r *Reader) Bytes(n int) ([]byte, error) {
	b, err := r.take(n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b)
	return out, nil
}

// CStringAt reads a NUL-terminated string at off without moving the
// read position.
func (r *Reader) CStringAt(off int64) (string, error) {
	if off < 0 || off >= int64(len(r.data)) {
		return "", fmt.Errorf("%w: string offset %d outside %d-byte stream", pactype.ErrCorrupt, off, len(r.data))
	}
	rest := r.data[off:]
	end := bytes.IndexByte(rest, 0)
	if end < 0 {
		return "", fmt.Errorf("%w: unterminated string at offset %d", pactype.ErrCorrupt, off)
	}
	return string(rest[:end]), nil
}
