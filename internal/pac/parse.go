package pac

import (
	"encoding/binary"
	"fmt"

	"github.com/meigma/pacx/internal/bin"
	"github.com/meigma/pacx/internal/entry"
	"github.com/meigma/pacx/internal/header"
	"github.com/meigma/pacx/internal/nodetree"
	"github.com/meigma/pacx/internal/pactype"
	"github.com/meigma/pacx/internal/sizing"
)

// Record describes one file entry as stored, including entries whose bytes
// live elsewhere.
type Record struct {
	Name     string
	Category string
	Tag      entry.Tag
	Length   uint64

	// Data is nil for NotHere records.
	Data []byte
}

// SplitInfo is one decoded split table entry.
type SplitInfo struct {
	Name             string
	CompressedLength uint32
	Length           uint32
	Offset           uint64
	Blocks           []pactype.Block
}

// Parsed is a decoded sub-archive.
type Parsed struct {
	Header  *header.Sub
	Records []Record
	Splits  []SplitInfo
}

// Resources returns the records that carry bytes in this sub-archive.
func (p *Parsed) Resources() []pactype.Resource {
	out := make([]pactype.Resource, 0, len(p.Records))
	for _, rec := range p.Records {
		if rec.Tag == entry.NotHere {
			continue
		}
		out = append(out, pactype.Resource{Name: rec.Name, Data: rec.Data})
	}
	return out
}

// Parse decodes an uncompressed sub-archive blob.
func Parse(data []byte) (*Parsed, error) {
	r := bin.NewReader(data, binary.LittleEndian)
	h, err := header.ReadSub(r)
	if err != nil {
		return nil, err
	}
	if uint64(h.FileSize) > uint64(len(data)) {
		return nil, fmt.Errorf("%w: sub-archive declares %d bytes, have %d", pactype.ErrCorrupt, h.FileSize, len(data))
	}

	types, err := nodetree.Read[struct{}](r)
	if err != nil {
		return nil, fmt.Errorf("type tree: %w", err)
	}

	p := &Parsed{Header: h}
	for _, ti := range types.DataNodes {
		category := types.FullName(ti)
		if err := r.Seek(types.Nodes[ti].DataOffset); err != nil {
			return nil, err
		}
		files, err := nodetree.Read[*entry.Entry](r)
		if err != nil {
			return nil, fmt.Errorf("%s file tree: %w", category, err)
		}
		for _, fi := range files.DataNodes {
			rec, err := readRecord(r, files, fi)
			if err != nil {
				return nil, err
			}
			rec.Category = category
			p.Records = append(p.Records, *rec)
		}
	}

	if h.SplitCount > 0 {
		if p.Splits, err = readSplitTable(r, h); err != nil {
			return nil, fmt.Errorf("split table: %w", err)
		}
	}
	return p, nil
}

func readRecord(r *bin.Reader, files *nodetree.Tree[*entry.Entry], node int) (*Record, error) {
	base := files.FullName(node)
	if err := r.Seek(files.Nodes[node].DataOffset); err != nil {
		return nil, err
	}
	e, err := entry.Read(r)
	if err != nil {
		return nil, fmt.Errorf("entry %q: %w", base, err)
	}
	if err := e.ReadData(r); err != nil {
		return nil, fmt.Errorf("entry %q: %w", base, err)
	}
	name := base
	if e.Extension != "" {
		name += "." + e.Extension
	}
	return &Record{Name: name, Tag: e.Tag, Length: e.Length, Data: e.Data}, nil
}

func readSplitTable(r *bin.Reader, h *header.Sub) ([]SplitInfo, error) {
	if err := r.Seek(header.SubLength + int64(h.NodeTreeLength)); err != nil {
		return nil, err
	}
	count, err := r.U64()
	if err != nil {
		return nil, err
	}
	if count != uint64(h.SplitCount) {
		return nil, fmt.Errorf("%w: table lists %d splits, header %d", pactype.ErrCorrupt, count, h.SplitCount)
	}
	entriesOffset, err := r.U64()
	if err != nil {
		return nil, err
	}
	if err := r.Seek(int64(entriesOffset)); err != nil { //nolint:gosec // Seek bounds-checks
		return nil, err
	}

	splits := make([]SplitInfo, count)
	for i := range splits {
		s := &splits[i]
		nameOffset, err := r.U64()
		if err != nil {
			return nil, err
		}
		if s.Name, err = r.CStringAt(int64(nameOffset)); err != nil { //nolint:gosec // CStringAt bounds-checks
			return nil, err
		}
		if s.CompressedLength, err = r.U32(); err != nil {
			return nil, err
		}
		if s.Length, err = r.U32(); err != nil {
			return nil, err
		}
		if s.Offset, err = r.U64(); err != nil {
			return nil, err
		}
		if !h.Kind.CompressedBlocks() {
			continue
		}
		blockCount, err := r.U64()
		if err != nil {
			return nil, err
		}
		blockOffset, err := r.U64()
		if err != nil {
			return nil, err
		}
		if s.Blocks, err = readBlocks(r, blockCount, header.SubLength+blockOffset); err != nil {
			return nil, fmt.Errorf("split %q: %w", s.Name, err)
		}
	}
	return splits, nil
}

// readBlocks decodes a block directory at off and restores the reader's
// position afterwards.
func readBlocks(r *bin.Reader, count, off uint64) ([]pactype.Block, error) {
	if count*8 > uint64(r.Len()) {
		return nil, fmt.Errorf("%w: implausible block count %d", pactype.ErrCorrupt, count)
	}
	n, err := sizing.ToInt(count)
	if err != nil {
		return nil, err
	}
	back := r.Pos()
	if err := r.Seek(int64(off)); err != nil { //nolint:gosec // Seek bounds-checks
		return nil, err
	}
	blocks := make([]pactype.Block, n)
	for i := range blocks {
		if blocks[i].CompressedLength, err = r.U32(); err != nil {
			return nil, err
		}
		if blocks[i].Length, err = r.U32(); err != nil {
			return nil, err
		}
	}
	return blocks, r.Seek(back)
}
