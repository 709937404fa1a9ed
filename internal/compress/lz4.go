package compress

import (
	"bytes"
	"fmt"
	"io"

	"github.com/pierrec/lz4/v4"

	"github.com/meigma/pacx/internal/pactype"
	"github.com/meigma/pacx/internal/sizing"
)

// BlockSize is the uncompressed size of every LZ4 block but the last.
const BlockSize = 64 * 1024

// BlockCount returns how many blocks a buffer of n bytes splits into.
func BlockCount(n int) int {
	return (n + BlockSize - 1) / BlockSize
}

// CompressBlocks compresses src in BlockSize chunks and returns the
// concatenated blocks with their directory.
func CompressBlocks(src []byte) ([]byte, []pactype.Block, error) {
	c := lz4.CompressorHC{Level: lz4.Level9}
	blocks := make([]pactype.Block, 0, BlockCount(len(src)))
	out := make([]byte, 0, len(src)/2)
	scratch := make([]byte, lz4.CompressBlockBound(BlockSize))

	for start := 0; start < len(src); start += BlockSize {
		chunk := src[start:min(start+BlockSize, len(src))]
		n, err := c.CompressBlock(chunk, scratch)
		if err != nil {
			return nil, nil, fmt.Errorf("lz4 compress block %d: %w", len(blocks), err)
		}
		if n == 0 {
			n = literalBlock(chunk, scratch)
		}
		compressed, err := sizing.U32(n, "lz4 block length")
		if err != nil {
			return nil, nil, err
		}
		out = append(out, scratch[:n]...)
		blocks = append(blocks, pactype.Block{
			CompressedLength: compressed,
			Length:           uint32(len(chunk)), //nolint:gosec // at most BlockSize
		})
	}
	return out, blocks, nil
}

// literalBlock encodes src into dst as a single literal-only LZ4 sequence.
// dst must hold at least CompressBlockBound(len(src)) bytes.
func literalBlock(src, dst []byte) int {
	n := len(src)
	i := 0
	if n < 15 {
		dst[i] = byte(n << 4)
		i++
	} else {
		dst[i] = 0xF0
		i++
		for rest := n - 15; ; rest -= 255 {
			if rest < 255 {
				dst[i] = byte(rest)
				i++
				break
			}
			dst[i] = 255
			i++
		}
	}
	return i + copy(dst[i:], src)
}

// DecompressBlocks expands src according to blocks.
func DecompressBlocks(src []byte, blocks []pactype.Block) ([]byte, error) {
	_, total := Totals(blocks)
	n, err := sizing.ToInt(total)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	br := NewBlockReader(bytes.NewReader(src), blocks)
	if _, err := io.ReadFull(br, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Totals sums the compressed and uncompressed lengths of a block directory.
func Totals(blocks []pactype.Block) (compressed, uncompressed uint64) {
	for _, b := range blocks {
		compressed += uint64(b.CompressedLength)
		uncompressed += uint64(b.Length)
	}
	return compressed, uncompressed
}

// BlockReader streams the decompressed contents of a block directory,
// holding at most one block in memory.
type BlockReader struct {
	r      io.Reader
	blocks []pactype.Block
	next   int
	src    []byte
	buf    []byte
	pos    int
	err    error
}

// NewBlockReader returns a reader that decompresses blocks from r in order.
func NewBlockReader(r io.Reader, blocks []pactype.Block) *BlockReader {
	return &BlockReader{r: r, blocks: blocks}
}

// Read implements io.Reader.
func (br *BlockReader) Read(p []byte) (int, error) {
	for br.pos == len(br.buf) {
		if br.err != nil {
			return 0, br.err
		}
		if br.next == len(br.blocks) {
			br.err = io.EOF
			return 0, io.EOF
		}
		if err := br.fill(); err != nil {
			br.err = err
			return 0, err
		}
	}
	n := copy(p, br.buf[br.pos:])
	br.pos += n
	return n, nil
}

func (br *BlockReader) fill() error {
	b := br.blocks[br.next]
	if cap(br.src) < int(b.CompressedLength) {
		br.src = make([]byte, b.CompressedLength)
	}
	br.src = br.src[:b.CompressedLength]
	if _, err := io.ReadFull(br.r, br.src); err != nil {
		return fmt.Errorf("%w: block %d: %w", pactype.ErrCorrupt, br.next, err)
	}
	if cap(br.buf) < int(b.Length) {
		br.buf = make([]byte, b.Length)
	}
	br.buf = br.buf[:b.Length]
	n, err := lz4.UncompressBlock(br.src, br.buf)
	if err != nil {
		return fmt.Errorf("%w: block %d: %w", pactype.ErrCorrupt, br.next, err)
	}
	if n != int(b.Length) {
		return fmt.Errorf("%w: block %d decompressed to %d bytes, want %d", pactype.ErrCorrupt, br.next, n, b.Length)
	}
	br.pos = 0
	br.next++
	return nil
}
