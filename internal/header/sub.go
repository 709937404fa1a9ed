package header

import (
	"fmt"

	"github.com/meigma/pacx/internal/bin"
	"github.com/meigma/pacx/internal/pactype"
)

// SubLength is the encoded length of a sub-archive header.
const SubLength = 0x30

const subConstant uint16 = 0x108

// Kind classifies a sub-archive.
type Kind uint16

const (
	kindRoot             Kind = 0x1
	kindSplit            Kind = 0x2
	kindHasSplits        Kind = 0x4
	kindCompressedBlocks Kind = 0x8
)

// Sub-archive kinds.
const (
	KindNoSplits                      = kindRoot
	KindIsSplit                       = kindSplit
	KindHasSplits                     = kindRoot | kindHasSplits
	KindHasSplitsWithCompressedBlocks = kindRoot | kindHasSplits | kindCompressedBlocks
)

// DeriveKind picks the kind tag for a sub-archive being written.
func DeriveKind(isSplit, hasSplits, compressedBlocks bool) Kind {
	switch {
	case isSplit:
		return KindIsSplit
	case hasSplits && compressedBlocks:
		return KindHasSplitsWithCompressedBlocks
	case hasSplits:
		return KindHasSplits
	default:
		return KindNoSplits
	}
}

// HasSplits reports whether the kind carries a split table.
func (k Kind) HasSplits() bool { return k&kindHasSplits != 0 }

// CompressedBlocks reports whether split entries carry block directories.
func (k Kind) CompressedBlocks() bool { return k&kindCompressedBlocks != 0 }

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindNoSplits:
		return "no-splits"
	case KindIsSplit:
		return "split"
	case KindHasSplits:
		return "has-splits"
	case KindHasSplitsWithCompressedBlocks:
		return "has-splits-with-compressed-blocks"
	default:
		return fmt.Sprintf("kind(%#x)", uint16(k))
	}
}

// Sub is the header at the start of every sub-archive.
type Sub struct {
	BigEndian bool
	ID        uint32
	FileSize  uint32

	NodeTreeLength        uint32
	SplitTableLength      uint32
	FileEntriesLength     uint32
	StringTableLength     uint32
	PayloadLength         uint32
	RelocationTableLength uint32

	Kind       Kind
	SplitCount uint32
}

// Write encodes the header at the writer's current position.
func (h *Sub) Write(w *bin.Writer) {
	writePreamble(w, SubVersion, h.BigEndian)
	w.WriteU32(h.ID)
	w.WriteU32(h.FileSize)
	w.WriteU32(h.NodeTreeLength)
	w.WriteU32(h.SplitTableLength)
	w.WriteU32(h.FileEntriesLength)
	w.WriteU32(h.StringTableLength)
	w.WriteU32(h.PayloadLength)
	w.WriteU32(h.RelocationTableLength)
	w.WriteU16(uint16(h.Kind))
	w.WriteU16(subConstant)
	w.WriteU32(h.SplitCount)
}

// ReadSub decodes a sub-archive header at the reader's current position.
func ReadSub(r *bin.Reader) (*Sub, error) {
	_, bigEndian, err := readPreamble(r)
	if err != nil {
		return nil, err
	}
	h := &Sub{BigEndian: bigEndian}
	fields := []*uint32{
		&h.ID, &h.FileSize,
		&h.NodeTreeLength, &h.SplitTableLength, &h.FileEntriesLength,
		&h.StringTableLength, &h.PayloadLength, &h.RelocationTableLength,
	}
	for _, f := range fields {
		if *f, err = r.U32(); err != nil {
			return nil, err
		}
	}
	kind, err := r.U16()
	if err != nil {
		return nil, err
	}
	h.Kind = Kind(kind)
	switch h.Kind {
	case KindNoSplits, KindIsSplit, KindHasSplits, KindHasSplitsWithCompressedBlocks:
	default:
		return nil, fmt.Errorf("%w: unknown sub-archive kind %#x", pactype.ErrCorrupt, kind)
	}
	if _, err = r.U16(); err != nil {
		return nil, err
	}
	if h.SplitCount, err = r.U32(); err != nil {
		return nil, err
	}
	if h.SplitCount != 0 && !h.Kind.HasSplits() {
		return nil, fmt.Errorf("%w: %s sub-archive declares %d splits", pactype.ErrCorrupt, h.Kind, h.SplitCount)
	}
	return h, nil
}
