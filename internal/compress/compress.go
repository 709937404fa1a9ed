// Package compress implements the two sub-archive compression schemes: a
// single Deflate stream per blob, and LZ4 in fixed-size independently
// compressed blocks described by a block directory.
package compress

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/flate"

	"github.com/meigma/pacx/internal/pactype"
)

// Deflate compresses src as one raw DEFLATE stream.
func Deflate(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	fw, err := flate.NewWriter(&buf, flate.DefaultCompression)
	if err != nil {
		return nil, fmt.Errorf("create deflate writer: %w", err)
	}
	if _, err := fw.Write(src); err != nil {
		fw.Close()
		return nil, fmt.Errorf("deflate: %w", err)
	}
	if err := fw.Close(); err != nil {
		return nil, fmt.Errorf("close deflate writer: %w", err)
	}
	return buf.Bytes(), nil
}

// Inflate decompresses a DEFLATE stream that must expand to exactly length
// bytes.
func Inflate(src []byte, length int) ([]byte, error) {
	fr := flate.NewReader(bytes.NewReader(src))
	defer fr.Close()

	out := make([]byte, length)
	if _, err := io.ReadFull(fr, out); err != nil {
		return nil, fmt.Errorf("%w: inflate: %w", pactype.ErrCorrupt, err)
	}
	var extra [1]byte
	if n, err := fr.Read(extra[:]); n != 0 || (err != nil && !errors.Is(err, io.EOF)) {
		return nil, fmt.Errorf("%w: inflated stream longer than %d bytes", pactype.ErrCorrupt, length)
	}
	return out, nil
}
