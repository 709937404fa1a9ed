package pacx

import (
	"fmt"
	"io"

	"github.com/meigma/pacx/internal/compress"
	"github.com/meigma/pacx/internal/header"
	"github.com/meigma/pacx/internal/ledger"
	"github.com/meigma/pacx/internal/pac"
	"github.com/meigma/pacx/internal/pactype"
	"github.com/meigma/pacx/internal/sizing"
	"github.com/meigma/pacx/internal/split"
)

// rootIndex is the SubArchive value reported for the root sub-archive.
const rootIndex = -1

// SaveResult describes a written archive.
type SaveResult struct {
	// ContainerID is the identifier written into the container header.
	ContainerID uint32

	// SubArchiveID is the identifier shared by every sub-archive and entry.
	SubArchiveID uint32

	// Size is the total number of bytes written.
	Size int64

	Compression Compression

	// Splits lists the companion names of the split sub-archives in order.
	Splits []string

	// Skipped lists resources dropped for lacking a known extension.
	Skipped []string
}

// stored is a sub-archive as it will be written.
type stored struct {
	name   string
	data   []byte
	length uint32
	blocks []pactype.Block
}

type encoder struct {
	cfg  *saveConfig
	deps []string
	id   uint32
}

// Encode writes the archive to w.
//
// Every resource needs a non-empty, unique name with an extension known to
// the category table; unknown extensions are skipped and listed in the
// result.
func (a *Archive) Encode(w io.Writer, opts ...SaveOption) (*SaveResult, error) {
	return a.encode(w, newSaveConfig(opts))
}

func (a *Archive) encode(w io.Writer, cfg *saveConfig) (*SaveResult, error) {
	switch cfg.compression {
	case CompressionNone, CompressionDeflate, CompressionLz4:
	default:
		return nil, fmt.Errorf("%w: unknown compression %d", ErrMalformedInput, cfg.compression)
	}
	deps := a.Dependencies
	if cfg.dependenciesSet {
		deps = cfg.dependencies
	}

	plan, err := split.Make(a.Resources, cfg.splitThreshold, cfg.log())
	if err != nil {
		return nil, err
	}
	report(cfg.progress, ProgressEvent{Stage: StagePartitioning, SubArchive: rootIndex, Resources: len(plan.Root)})

	containerID, err := nonZeroID(cfg.ids)
	if err != nil {
		return nil, err
	}
	subID, err := nonZeroID(cfg.ids)
	if err != nil {
		return nil, err
	}
	e := &encoder{cfg: cfg, deps: deps, id: subID}

	splits := make([]*stored, len(plan.Splits))
	for i, items := range plan.Splits {
		members := make([]pac.Member, len(items))
		for j := range items {
			members[j] = member(&items[j], false)
		}
		s, err := e.pack(members, i, pac.Options{IsSplit: true})
		if err != nil {
			return nil, fmt.Errorf("split %d: %w", i, err)
		}
		s.name = fmt.Sprintf("%s.pac.%03d", cfg.shortName(), i)
		splits[i] = s
	}

	// Splits are laid out back to back after the container region; only
	// their position relative to its end is known here.
	refs := make([]pac.SplitRef, len(splits))
	var splitBytes int64
	for i, s := range splits {
		compressed, err := sizing.U32(len(s.data), "split length")
		if err != nil {
			return nil, err
		}
		refs[i] = pac.SplitRef{
			Name:             s.name,
			CompressedLength: compressed,
			Length:           s.length,
			Blocks:           s.blocks,
			Offset:           e.splitOffset(splitBytes),
		}
		splitBytes += int64(len(s.data)) + padding(int64(len(s.data)))
	}

	members := make([]pac.Member, len(plan.Root))
	for i := range plan.Root {
		members[i] = member(&plan.Root[i], !plan.InRoot(&plan.Root[i]))
	}
	root, err := e.pack(members, rootIndex, pac.Options{
		CompressedBlocks: cfg.compression == CompressionLz4,
		Splits:           refs,
	})
	if err != nil {
		return nil, fmt.Errorf("root: %w", err)
	}

	h := e.containerHeader(containerID)
	prefix, err := buildPrefix(h, deps, root.blocks)
	if err != nil {
		return nil, fmt.Errorf("container region: %w", err)
	}
	rootOffset := int64(prefix.Len()) + splitBytes
	fileSize := rootOffset + int64(len(root.data)) + padding(int64(len(root.data)))
	if h.RootOffset, err = sizing.U32(rootOffset, "root offset"); err != nil {
		return nil, err
	}
	if h.RootCompressedLength, err = sizing.U32(len(root.data), "root length"); err != nil {
		return nil, err
	}
	h.RootLength = root.length
	if h.FileSize, err = sizing.U32(fileSize, "archive length"); err != nil {
		return nil, err
	}
	if _, err := prefix.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	h.Write(prefix)

	report(cfg.progress, ProgressEvent{Stage: StageWriting, SubArchive: rootIndex, Bytes: uint64(fileSize)}) //nolint:gosec // non-negative
	if _, err := w.Write(prefix.Bytes()); err != nil {
		return nil, fmt.Errorf("write container header: %w", err)
	}
	for _, s := range splits {
		if err := writePadded(w, s.data); err != nil {
			return nil, fmt.Errorf("write %s: %w", s.name, err)
		}
	}
	if err := writePadded(w, root.data); err != nil {
		return nil, fmt.Errorf("write root: %w", err)
	}

	cfg.log().Debug("encoded archive",
		"size", fileSize,
		"resources", len(plan.Root),
		"splits", len(splits),
		"compression", cfg.compression)

	res := &SaveResult{
		ContainerID:  containerID,
		SubArchiveID: subID,
		Size:         fileSize,
		Compression:  cfg.compression,
		Skipped:      plan.Skipped,
	}
	for _, s := range splits {
		res.Splits = append(res.Splits, s.name)
	}
	return res, nil
}

func member(it *split.Item, notHere bool) pac.Member {
	return pac.Member{
		Base:     it.Base,
		Ext:      it.Ext,
		Category: it.Category,
		Data:     it.Resource.Data,
		NotHere:  notHere,
	}
}

func (e *encoder) containerHeader(id uint32) *header.Container {
	h := &header.Container{
		BigEndian:           e.cfg.bigEndian,
		ID:                  id,
		HasCompressedBlocks: e.cfg.compression == CompressionLz4,
		Minor:               header.MinorDeflate,
	}
	if h.HasCompressedBlocks {
		h.Minor = header.MinorLz4
	}
	return h
}

// splitOffset returns a resolver for the absolute offset of a split that
// starts rel bytes after the container region. The region holds the root's
// block directory, so its length is only known once the root is finalized.
func (e *encoder) splitOffset(rel int64) ledger.Resolver {
	return func(rootLen int64) (uint64, error) {
		var blocks []pactype.Block
		if e.cfg.compression == CompressionLz4 {
			blocks = make([]pactype.Block, compress.BlockCount(int(rootLen)))
		}
		prefix, err := buildPrefix(e.containerHeader(0), e.deps, blocks)
		if err != nil {
			return 0, err
		}
		return uint64(int64(prefix.Len()) + rel), nil //nolint:gosec // both non-negative
	}
}

// pack builds one sub-archive and compresses it.
func (e *encoder) pack(members []pac.Member, index int, opts pac.Options) (*stored, error) {
	opts.ID = e.id
	opts.BigEndian = e.cfg.bigEndian
	blob, _, err := pac.Build(members, opts)
	if err != nil {
		return nil, err
	}
	report(e.cfg.progress, ProgressEvent{
		Stage:      StagePacking,
		SubArchive: index,
		Resources:  len(members),
		Bytes:      uint64(len(blob)),
	})

	s, err := e.compress(blob)
	if err != nil {
		return nil, err
	}
	report(e.cfg.progress, ProgressEvent{
		Stage:      StageCompressing,
		SubArchive: index,
		Resources:  len(members),
		Bytes:      uint64(len(s.data)),
	})
	e.cfg.log().Debug("packed sub-archive",
		"index", index,
		"resources", len(members),
		"length", len(blob),
		"stored", len(s.data))
	return s, nil
}

func (e *encoder) compress(blob []byte) (*stored, error) {
	length, err := sizing.U32(len(blob), "sub-archive length")
	if err != nil {
		return nil, err
	}
	s := &stored{data: blob, length: length}

	switch e.cfg.compression {
	case CompressionLz4:
		if s.data, s.blocks, err = compress.CompressBlocks(blob); err != nil {
			return nil, err
		}
	case CompressionDeflate:
		if uint64(len(blob)) < e.cfg.compressThreshold {
			return s, nil
		}
		deflated, err := compress.Deflate(blob)
		if err != nil {
			return nil, err
		}
		if len(deflated) >= len(blob) {
			e.cfg.log().Debug("stored sub-archive uncompressed", "length", len(blob), "deflated", len(deflated))
			return s, nil
		}
		s.data = deflated
	}
	return s, nil
}

var zeroPad [sectionAlignment]byte

func writePadded(w io.Writer, data []byte) error {
	if _, err := w.Write(data); err != nil {
		return err
	}
	_, err := w.Write(zeroPad[:padding(int64(len(data)))])
	return err
}
