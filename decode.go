package pacx

import (
	"fmt"
	"io"
	"os"

	"github.com/meigma/pacx/internal/entry"
	"github.com/meigma/pacx/internal/header"
	"github.com/meigma/pacx/internal/pac"
	"github.com/meigma/pacx/internal/pactype"
)

// subArchive is a decoded sub-archive and where it was found.
type subArchive struct {
	index            int
	name             string
	offset           uint64
	compressedLength uint32
	length           uint32
	blocks           int
	parsed           *pac.Parsed
}

// container is a fully decoded archive.
type container struct {
	prefix *prefix
	subs   []*subArchive
}

// Decode reads an archive of size bytes from r.
//
// Resources come back root first, then split by split. Entries the root
// records without bytes are filled in from their splits.
func Decode(r io.ReaderAt, size int64, opts ...DecodeOption) (*Archive, error) {
	c, err := readContainer(r, size, newDecodeConfig(opts))
	if err != nil {
		return nil, err
	}
	arc := &Archive{Dependencies: c.prefix.deps}
	for _, s := range c.subs {
		arc.Resources = append(arc.Resources, s.parsed.Resources()...)
	}
	return arc, nil
}

// Load reads the archive stored at path.
func Load(path string, opts ...DecodeOption) (*Archive, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	return Decode(f, info.Size(), opts...)
}

func readContainer(r io.ReaderAt, size int64, cfg *decodeConfig) (*container, error) {
	p, err := readPrefix(r, size, cfg.log())
	if err != nil {
		return nil, err
	}
	h := p.header
	c := &container{prefix: p}

	rootRef := &subArchive{
		index:            rootIndex,
		offset:           uint64(h.RootOffset),
		compressedLength: h.RootCompressedLength,
		length:           h.RootLength,
		blocks:           len(p.rootBlocks),
	}
	root, err := readSub(r, size, rootRef, h.Compression(), p.rootBlocks, cfg)
	if err != nil {
		return nil, fmt.Errorf("root: %w", err)
	}
	if root.parsed.Header.Kind == header.KindIsSplit {
		return nil, fmt.Errorf("%w: root sub-archive is tagged %s", ErrCorrupt, header.KindIsSplit)
	}
	c.subs = append(c.subs, root)

	for i, s := range root.parsed.Splits {
		ref := &subArchive{
			index:            i,
			name:             s.Name,
			offset:           s.Offset,
			compressedLength: s.CompressedLength,
			length:           s.Length,
			blocks:           len(s.Blocks),
		}
		comp := CompressionNone
		switch {
		case root.parsed.Header.Kind.CompressedBlocks():
			comp = CompressionLz4
		case s.CompressedLength != s.Length:
			comp = CompressionDeflate
		}
		sub, err := readSub(r, size, ref, comp, s.Blocks, cfg)
		if err != nil {
			return nil, fmt.Errorf("split %s: %w", s.Name, err)
		}
		if kind := sub.parsed.Header.Kind; kind != header.KindIsSplit {
			return nil, fmt.Errorf("%w: split %s is tagged %s", ErrCorrupt, s.Name, kind)
		}
		c.subs = append(c.subs, sub)
	}
	if err := checkSplitRecords(c.subs); err != nil {
		return nil, err
	}
	return c, nil
}

// checkSplitRecords verifies that every root record without bytes is stored,
// with the same length, in one of the splits.
func checkSplitRecords(subs []*subArchive) error {
	stored := make(map[string]uint64)
	for _, s := range subs[1:] {
		for _, rec := range s.parsed.Records {
			if rec.Tag != entry.NotHere {
				stored[rec.Name] = rec.Length
			}
		}
	}
	for _, rec := range subs[0].parsed.Records {
		if rec.Tag != entry.NotHere {
			continue
		}
		length, ok := stored[rec.Name]
		if !ok {
			return fmt.Errorf("%w: %s is not stored in any split", ErrCorrupt, rec.Name)
		}
		if length != rec.Length {
			return fmt.Errorf("%w: %s is %d bytes in its split, root records %d", ErrCorrupt, rec.Name, length, rec.Length)
		}
	}
	return nil
}

func readSub(r io.ReaderAt, size int64, ref *subArchive, comp Compression, blocks []pactype.Block, cfg *decodeConfig) (*subArchive, error) {
	data, err := readSection(r, size, ref.offset, uint64(ref.compressedLength))
	if err != nil {
		return nil, err
	}
	raw, err := expand(data, comp, blocks, ref.length)
	if err != nil {
		return nil, err
	}
	if ref.parsed, err = pac.Parse(raw); err != nil {
		return nil, err
	}
	report(cfg.progress, ProgressEvent{
		Stage:      StageReading,
		SubArchive: ref.index,
		Resources:  len(ref.parsed.Records),
		Bytes:      uint64(len(raw)),
	})
	cfg.log().Debug("decoded sub-archive",
		"index", ref.index,
		"kind", ref.parsed.Header.Kind,
		"entries", len(ref.parsed.Records),
		"compression", comp)
	return ref, nil
}
