package header

import (
	"log/slog"

	"github.com/meigma/pacx/internal/bin"
	"github.com/meigma/pacx/internal/pactype"
)

// Container header lengths.
const (
	ContainerLength         = 0x20
	ContainerExtendedLength = 0x30
)

// Container flag bits.
const (
	FlagCompressedBlocks uint16 = 0x1
	FlagDependencies     uint16 = 0x2
	FlagExtended         uint16 = 0x80
)

// Minor format constants.
const (
	MinorDeflate uint16 = 0x108
	MinorLz4     uint16 = 0x208
)

// Container is the top-level file header.
type Container struct {
	Version   uint16
	BigEndian bool
	ID        uint32
	FileSize  uint32

	RootOffset           uint32
	RootCompressedLength uint32
	RootLength           uint32

	HasDependencies     bool
	HasCompressedBlocks bool
	Minor               uint16

	// Section lengths; only encoded when Extended reports true.
	DependencyTableLength uint32
	BlockDirectoryLength  uint32
	StringTableLength     uint32
	RelocationTableLength uint32

	extended bool
}

// Extended reports whether the header carries the four section lengths.
func (h *Container) Extended() bool {
	return h.extended || h.HasDependencies || h.HasCompressedBlocks
}

// Length returns the encoded header length.
func (h *Container) Length() int {
	if h.Extended() {
		return ContainerExtendedLength
	}
	return ContainerLength
}

// Compression infers the root compression from the header. Deflate is
// recognized by the root's lengths; the minor constant is advisory only.
func (h *Container) Compression() pactype.Compression {
	if h.HasCompressedBlocks {
		return pactype.CompressionLz4
	}
	if h.RootCompressedLength != h.RootLength {
		return pactype.CompressionDeflate
	}
	return pactype.CompressionNone
}

// Write encodes the header at the writer's current position.
func (h *Container) Write(w *bin.Writer) {
	version := h.Version
	if version == 0 {
		version = ContainerVersion
	}
	writePreamble(w, version, h.BigEndian)
	w.WriteU32(h.ID)
	w.WriteU32(h.FileSize)
	w.WriteU32(h.RootOffset)
	w.WriteU32(h.RootCompressedLength)
	w.WriteU32(h.RootLength)

	var flags uint16
	if h.HasCompressedBlocks {
		flags |= FlagCompressedBlocks
	}
	if h.HasDependencies {
		flags |= FlagDependencies
	}
	if h.Extended() {
		flags |= FlagExtended
	}
	w.WriteU16(flags)
	minor := h.Minor
	if minor == 0 {
		minor = MinorDeflate
	}
	w.WriteU16(minor)

	if h.Extended() {
		w.WriteU32(h.DependencyTableLength)
		w.WriteU32(h.BlockDirectoryLength)
		w.WriteU32(h.StringTableLength)
		w.WriteU32(h.RelocationTableLength)
	}
}

// ReadContainer decodes a container header at the reader's current position.
// An unrecognized minor constant is logged and otherwise ignored.
func ReadContainer(r *bin.Reader, logger *slog.Logger) (*Container, error) {
	version, bigEndian, err := readPreamble(r)
	if err != nil {
		return nil, err
	}
	h := &Container{Version: version, BigEndian: bigEndian}
	if h.ID, err = r.U32(); err != nil {
		return nil, err
	}
	if h.FileSize, err = r.U32(); err != nil {
		return nil, err
	}
	if h.RootOffset, err = r.U32(); err != nil {
		return nil, err
	}
	if h.RootCompressedLength, err = r.U32(); err != nil {
		return nil, err
	}
	if h.RootLength, err = r.U32(); err != nil {
		return nil, err
	}
	flags, err := r.U16()
	if err != nil {
		return nil, err
	}
	h.HasDependencies = flags&FlagDependencies != 0
	h.HasCompressedBlocks = flags&FlagCompressedBlocks != 0
	h.extended = flags&FlagExtended != 0

	if h.Minor, err = r.U16(); err != nil {
		return nil, err
	}
	if h.Minor != MinorDeflate && h.Minor != MinorLz4 && logger != nil {
		logger.Warn("unrecognized container minor constant", "value", h.Minor)
	}

	if !h.extended {
		return h, nil
	}
	if h.DependencyTableLength, err = r.U32(); err != nil {
		return nil, err
	}
	if h.BlockDirectoryLength, err = r.U32(); err != nil {
		return nil, err
	}
	if h.StringTableLength, err = r.U32(); err != nil {
		return nil, err
	}
	if h.RelocationTableLength, err = r.U32(); err != nil {
		return nil, err
	}
	return h, nil
}
