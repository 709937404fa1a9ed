package bin

import (
	"encoding/binary"
	"errors"
	"io"
)

// Writer is a seekable, growable byte buffer with fixed-width encoders.
//
// Writes at a position inside the buffer overwrite existing bytes; writes
// past the end extend it. The zero value is not usable; use NewWriter.
type Writer struct {
	buf   []byte
	pos   int
	order binary.ByteOrder
}

var _ io.WriteSeeker = (*Writer)(nil)

// NewWriter returns an empty writer using the given byte order.
func NewWriter(order binary.ByteOrder) *Writer {
	return &Writer{buf: make([]byte, 0, 4096), order: order}
}

// Pos returns the current write position.
func (w *Writer) Pos() int64 { return int64(w.pos) }

// Len returns the number of bytes in the buffer.
func (w *Writer) Len() int { return len(w.buf) }

// Bytes returns the buffer contents. The slice aliases the writer.
func (w *Writer) Bytes() []byte { return w.buf }

// Write implements io.Writer. It never fails.
func (w *Writer) Write(p []byte) (int, error) {
	end := w.pos + len(p)
	if end > len(w.buf) {
		if end > cap(w.buf) {
			grown := make([]byte, len(w.buf), max(end, 2*cap(w.buf)))
			copy(grown, w.buf)
			w.buf = grown
		}
		w.buf = w.buf[:end]
	}
	copy(w.buf[w.pos:], p)
	w.pos = end
	return len(p), nil
}

// Seek implements io.Seeker. Seeking past the end is allowed; the gap is
// zero-filled on the next write.
func (w *Writer) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = int64(w.pos) + offset
	case io.SeekEnd:
		abs = int64(len(w.buf)) + offset
	default:
		return 0, errors.New("bin: invalid whence")
	}
	if abs < 0 {
		return 0, errors.New("bin: negative position")
	}
	if abs > int64(len(w.buf)) {
		w.pos = len(w.buf)
		w.WriteZeros(int(abs) - len(w.buf))
	}
	w.pos = int(abs)
	return abs, nil
}

// SeekEnd moves the write position to the end of the buffer.
func (w *Writer) SeekEnd() { w.pos = len(w.buf) }

// WriteU8 writes one byte.
func (w *Writer) WriteU8(v uint8) {
	_, _ = w.Write([]byte{v})
}

// WriteBool writes 1 for true and 0 for false.
func (w *Writer) WriteBool(v bool) {
	if v {
		w.WriteU8(1)
		return
	}
	w.WriteU8(0)
}

// WriteU16 writes v in the writer's byte order.
func (w *Writer) WriteU16(v uint16) {
	var b [2]byte
	w.order.PutUint16(b[:], v)
	_, _ = w.Write(b[:])
}

// WriteU32 writes v in the writer's byte order.
func (w *Writer) WriteU32(v uint32) {
	var b [4]byte
	w.order.PutUint32(b[:], v)
	_, _ = w.Write(b[:])
}

// WriteI32 writes v as its two's complement bit pattern.
func (w *Writer) WriteI32(v int32) {
	w.WriteU32(uint32(v)) //nolint:gosec // two's complement reinterpretation
}

// WriteU64 writes v in the writer's byte order.
func (w *Writer) WriteU64(v uint64) {
	var b [8]byte
	w.order.PutUint64(b[:], v)
	_, _ = w.Write(b[:])
}

// WriteString writes s without a terminator.
func (w *Writer) WriteString(s string) {
	_, _ = w.Write([]byte(s))
}

// WriteCString writes s followed by a NUL byte.
func (w *Writer) WriteCString(s string) {
	w.WriteString(s)
	w.WriteU8(0)
}

// WriteZeros writes n zero bytes.
func (w *Writer) WriteZeros(n int) {
	if n <= 0 {
		return
	}
	_, _ = w.Write(make([]byte, n))
}

// Align pads with zeros until the position is a multiple of n.
func (w *Writer) Align(n int) {
	if rem := w.pos % n; rem != 0 {
		w.WriteZeros(n - rem)
	}
}

// PutU64 overwrites eight bytes at off without moving the write position.
func (w *Writer) PutU64(off int64, v uint64) {
	w.order.PutUint64(w.buf[off:off+8], v)
}
