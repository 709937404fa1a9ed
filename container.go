package pacx

import (
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"

	"github.com/meigma/pacx/internal/bin"
	"github.com/meigma/pacx/internal/compress"
	"github.com/meigma/pacx/internal/header"
	"github.com/meigma/pacx/internal/ledger"
	"github.com/meigma/pacx/internal/pactype"
	"github.com/meigma/pacx/internal/sizing"
)

// sectionAlignment is the alignment of every top-level section in a container.
const sectionAlignment = 16

const dependenciesTag = "dependencies"

func padding(n int64) int64 {
	return (sectionAlignment - n%sectionAlignment) % sectionAlignment
}

// buildPrefix encodes the container header followed by the container region:
// dependency table, root block directory, string table and relocation
// directory, padded to 16 bytes.
//
// h.HasCompressedBlocks must be set beforehand since it decides the header
// length. Fields describing the root and the file size are written as they
// are in h; callers patch them with h.Write once known.
func buildPrefix(h *header.Container, deps []string, rootBlocks []pactype.Block) (*bin.Writer, error) {
	h.HasDependencies = len(deps) > 0

	w := bin.NewWriter(header.ByteOrder(h.BigEndian))
	w.WriteZeros(h.Length())
	l := ledger.New(w, int64(h.Length()))
	start := w.Pos()

	if len(deps) > 0 {
		w.WriteU64(uint64(len(deps)))
		if err := l.Reserve(dependenciesTag); err != nil {
			return nil, err
		}
		if err := l.Resolve(dependenciesTag, ledger.Absolute); err != nil {
			return nil, err
		}
		for _, dep := range deps {
			if err := l.Intern(dep); err != nil {
				return nil, err
			}
		}
	}
	depsEnd := w.Pos()

	for _, b := range rootBlocks {
		w.WriteU32(b.CompressedLength)
		w.WriteU32(b.Length)
	}
	blocksEnd := w.Pos()

	tables, err := l.Finalize()
	if err != nil {
		return nil, err
	}
	if h.DependencyTableLength, err = sizing.U32(depsEnd-start, "dependency table length"); err != nil {
		return nil, err
	}
	if h.BlockDirectoryLength, err = sizing.U32(blocksEnd-depsEnd, "block directory length"); err != nil {
		return nil, err
	}
	h.StringTableLength = tables.StringTableLength
	h.RelocationTableLength = tables.RelocationTableLength
	w.SeekEnd()
	w.Align(sectionAlignment)

	if _, err := w.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	h.Write(w)
	return w, nil
}

// prefix is the decoded container header and region.
type prefix struct {
	header     *header.Container
	deps       []string
	rootBlocks []pactype.Block
}

func readPrefix(r io.ReaderAt, size int64, logger *slog.Logger) (*prefix, error) {
	if size < 0 {
		return nil, fmt.Errorf("%w: negative size %d", ErrCorrupt, size)
	}
	head, err := readSection(r, size, 0, uint64(min(size, header.ContainerExtendedLength)))
	if err != nil {
		return nil, err
	}
	h, err := header.ReadContainer(bin.NewReader(head, binary.LittleEndian), logger)
	if err != nil {
		return nil, fmt.Errorf("read container header: %w", err)
	}
	p := &prefix{header: h}
	if !h.HasDependencies && !h.HasCompressedBlocks {
		return p, nil
	}

	regionEnd := uint64(h.Length()) +
		uint64(h.DependencyTableLength) +
		uint64(h.BlockDirectoryLength) +
		uint64(h.StringTableLength) +
		uint64(h.RelocationTableLength)
	region, err := readSection(r, size, 0, regionEnd)
	if err != nil {
		return nil, fmt.Errorf("read container region: %w", err)
	}
	br := bin.NewReader(region, header.ByteOrder(h.BigEndian))

	if h.HasDependencies {
		if p.deps, err = readDependencies(br, int64(h.Length())); err != nil {
			return nil, fmt.Errorf("read dependencies: %w", err)
		}
	}
	if h.HasCompressedBlocks {
		if err := br.Seek(int64(h.Length()) + int64(h.DependencyTableLength)); err != nil {
			return nil, err
		}
		p.rootBlocks = make([]pactype.Block, h.BlockDirectoryLength/8)
		for i := range p.rootBlocks {
			if p.rootBlocks[i].CompressedLength, err = br.U32(); err != nil {
				return nil, err
			}
			if p.rootBlocks[i].Length, err = br.U32(); err != nil {
				return nil, err
			}
		}
	}
	return p, nil
}

func readDependencies(r *bin.Reader, at int64) ([]string, error) {
	if err := r.Seek(at); err != nil {
		return nil, err
	}
	count, err := r.U64()
	if err != nil {
		return nil, err
	}
	if count*ledger.PointerSize > uint64(r.Len()) {
		return nil, fmt.Errorf("%w: implausible dependency count %d", ErrCorrupt, count)
	}
	offset, err := r.U64()
	if err != nil {
		return nil, err
	}
	if err := r.Seek(int64(offset)); err != nil { //nolint:gosec // Seek bounds-checks
		return nil, err
	}
	deps := make([]string, count)
	for i := range deps {
		nameOffset, err := r.U64()
		if err != nil {
			return nil, err
		}
		if deps[i], err = r.CStringAt(int64(nameOffset)); err != nil { //nolint:gosec // CStringAt bounds-checks
			return nil, err
		}
	}
	return deps, nil
}

// readSection reads n bytes at off, failing with ErrCorrupt when the range
// lies outside the archive.
func readSection(r io.ReaderAt, size int64, off, n uint64) ([]byte, error) {
	end, ok := sizing.AddUint64(off, n)
	if !ok || end > uint64(size) { //nolint:gosec // size checked non-negative by callers
		return nil, fmt.Errorf("%w: section [%d, +%d) outside %d-byte archive", ErrCorrupt, off, n, size)
	}
	length, err := sizing.ToInt(n)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, length)
	read, err := r.ReadAt(buf, int64(off)) //nolint:gosec // bounded by size
	if read == length {
		return buf, nil
	}
	if err == nil || err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return nil, fmt.Errorf("read section at %d: %w", off, err)
}

// expand undoes the compression of a stored sub-archive.
func expand(data []byte, c Compression, blocks []pactype.Block, length uint32) ([]byte, error) {
	var (
		out []byte
		err error
	)
	switch c {
	case CompressionLz4:
		compressed, _ := compress.Totals(blocks)
		if compressed != uint64(len(data)) {
			return nil, fmt.Errorf("%w: block directory covers %d bytes, sub-archive has %d", ErrCorrupt, compressed, len(data))
		}
		out, err = compress.DecompressBlocks(data, blocks)
	case CompressionDeflate:
		out, err = compress.Inflate(data, int(length))
	default:
		out = data
	}
	if err != nil {
		return nil, err
	}
	if uint64(len(out)) != uint64(length) {
		return nil, fmt.Errorf("%w: sub-archive expands to %d bytes, expected %d", ErrCorrupt, len(out), length)
	}
	return out, nil
}
