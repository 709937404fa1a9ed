package pac

import (
	"fmt"

	"github.com/meigma/pacx/internal/bin"
	"github.com/meigma/pacx/internal/entry"
	"github.com/meigma/pacx/internal/header"
	"github.com/meigma/pacx/internal/ledger"
	"github.com/meigma/pacx/internal/nodetree"
	"github.com/meigma/pacx/internal/pactype"
	"github.com/meigma/pacx/internal/sizing"
)

const typeTreePrefix = "types"

// Member is one resource recorded in a sub-archive.
type Member struct {
	// Base is the resource name without its extension.
	Base string

	// Ext is the extension including its leading dot.
	Ext string

	// Category is the type tree label for Ext.
	Category string

	Data []byte

	// NotHere records the name only; the bytes live in a split.
	NotHere bool
}

// SplitRef describes one split in a root sub-archive's split table.
type SplitRef struct {
	Name             string
	CompressedLength uint32
	Length           uint32

	// Blocks is the split's block directory; only encoded when the
	// sub-archive is built with CompressedBlocks.
	Blocks []pactype.Block

	// Offset yields the split's absolute position in the container. It runs
	// after the root blob is finalized.
	Offset ledger.Resolver
}

// Options controls how a sub-archive is built.
type Options struct {
	ID               uint32
	BigEndian        bool
	IsSplit          bool
	CompressedBlocks bool
	Splits           []SplitRef
}

type fileGroup struct {
	ext    string
	prefix string
	tree   *nodetree.Tree[*entry.Entry]
}

// Build serializes members into a sub-archive blob.
func Build(members []Member, opts Options) ([]byte, *header.Sub, error) {
	typeTree, err := packTypes(members)
	if err != nil {
		return nil, nil, err
	}

	w := bin.NewWriter(header.ByteOrder(opts.BigEndian))
	w.WriteZeros(header.SubLength)
	l := ledger.New(w, header.SubLength)

	if err := typeTree.Write(w, l, typeTreePrefix); err != nil {
		return nil, nil, err
	}
	groups := make([]*fileGroup, 0, len(typeTree.DataNodes))
	for i, di := range typeTree.DataNodes {
		g := typeTree.Nodes[di].Data
		g.prefix = fmt.Sprintf("files%d", i)
		if err := l.Resolve(nodetree.DataTag(typeTreePrefix, di), ledger.Absolute); err != nil {
			return nil, nil, err
		}
		if err := g.tree.Write(w, l, g.prefix); err != nil {
			return nil, nil, err
		}
		groups = append(groups, g)
	}

	if err := typeTree.WriteDataIndices(w, l, typeTreePrefix); err != nil {
		return nil, nil, err
	}
	for _, g := range groups {
		if err := g.tree.WriteDataIndices(w, l, g.prefix); err != nil {
			return nil, nil, err
		}
	}
	if err := typeTree.WriteChildIndices(w, l, typeTreePrefix); err != nil {
		return nil, nil, err
	}
	for _, g := range groups {
		if err := g.tree.WriteChildIndices(w, l, g.prefix); err != nil {
			return nil, nil, err
		}
	}
	nodeTreeEnd := w.Pos()

	if len(opts.Splits) > 0 {
		if err := writeSplitTable(w, l, opts); err != nil {
			return nil, nil, err
		}
	}
	entriesStart := w.Pos()

	for _, g := range groups {
		for _, di := range g.tree.DataNodes {
			if err := l.Resolve(nodetree.DataTag(g.prefix, di), ledger.Absolute); err != nil {
				return nil, nil, err
			}
			if err := g.tree.Nodes[di].Data.Write(w, l, entryKey(g.prefix, di), g.ext[1:], opts.ID); err != nil {
				return nil, nil, err
			}
		}
	}
	stringStart := w.Pos()

	stringLen, err := l.FlushStrings()
	if err != nil {
		return nil, nil, err
	}
	payloadStart := w.Pos()

	for _, g := range groups {
		for _, di := range g.tree.DataNodes {
			if err := g.tree.Nodes[di].Data.WriteData(w, l, entryKey(g.prefix, di)); err != nil {
				return nil, nil, err
			}
		}
	}
	w.Align(8)
	payloadEnd := w.Pos()

	tables, err := l.Finalize()
	if err != nil {
		return nil, nil, err
	}

	h := &header.Sub{
		BigEndian:             opts.BigEndian,
		ID:                    opts.ID,
		StringTableLength:     stringLen,
		RelocationTableLength: tables.RelocationTableLength,
		Kind:                  header.DeriveKind(opts.IsSplit, len(opts.Splits) > 0, opts.CompressedBlocks),
		SplitCount:            uint32(len(opts.Splits)), //nolint:gosec // bounded by split table size
	}
	lengths := []struct {
		dst  *uint32
		n    int64
		name string
	}{
		{&h.FileSize, int64(w.Len()), "sub-archive length"},
		{&h.NodeTreeLength, nodeTreeEnd - header.SubLength, "node tree length"},
		{&h.SplitTableLength, entriesStart - nodeTreeEnd, "split table length"},
		{&h.FileEntriesLength, stringStart - entriesStart, "file entries length"},
		{&h.PayloadLength, payloadEnd - payloadStart, "payload length"},
	}
	for _, f := range lengths {
		if *f.dst, err = sizing.U32(f.n, f.name); err != nil {
			return nil, nil, err
		}
	}

	if _, err := w.Seek(0, 0); err != nil {
		return nil, nil, err
	}
	h.Write(w)
	return w.Bytes(), h, nil
}

func entryKey(prefix string, node int) string {
	return fmt.Sprintf("%s/entry%d", prefix, node)
}

// packTypes groups members by extension, packs each group into a file tree
// and packs the category labels into the type tree.
func packTypes(members []Member) (*nodetree.Tree[*fileGroup], error) {
	byExt := make(map[string][]nodetree.Item[*entry.Entry])
	var order []string
	categories := make(map[string]string)
	for _, m := range members {
		if _, ok := byExt[m.Ext]; !ok {
			order = append(order, m.Ext)
			categories[m.Ext] = m.Category
		}
		byExt[m.Ext] = append(byExt[m.Ext], nodetree.Item[*entry.Entry]{
			Name: m.Base,
			Data: entry.New(m.Data, m.NotHere),
		})
	}

	types := make([]nodetree.Item[*fileGroup], 0, len(order))
	for _, ext := range order {
		tree, err := nodetree.Pack(byExt[ext])
		if err != nil {
			return nil, fmt.Errorf("pack %s resources: %w", ext, err)
		}
		types = append(types, nodetree.Item[*fileGroup]{
			Name: categories[ext],
			Data: &fileGroup{ext: ext, tree: tree},
		})
	}
	return nodetree.Pack(types)
}

func splitOffsetTag(i int) string { return fmt.Sprintf("splits/%d/offset", i) }
func splitBlocksTag(i int) string { return fmt.Sprintf("splits/%d/blocks", i) }

// writeSplitTable emits the split table. Split offsets are deferred to
// Finalize; block tables follow the entries and are addressed relative to
// the end of the sub-header.
func writeSplitTable(w *bin.Writer, l *ledger.Ledger, opts Options) error {
	w.WriteU64(uint64(len(opts.Splits)))
	if err := l.Reserve("splits"); err != nil {
		return err
	}
	if err := l.Resolve("splits", ledger.Absolute); err != nil {
		return err
	}

	for i, s := range opts.Splits {
		if err := l.Intern(s.Name); err != nil {
			return err
		}
		w.WriteU32(s.CompressedLength)
		w.WriteU32(s.Length)
		if err := l.Reserve(splitOffsetTag(i)); err != nil {
			return err
		}
		if err := l.Defer(splitOffsetTag(i), s.Offset); err != nil {
			return err
		}
		if opts.CompressedBlocks {
			w.WriteU64(uint64(len(s.Blocks)))
			if err := l.Reserve(splitBlocksTag(i)); err != nil {
				return err
			}
		}
	}

	if opts.CompressedBlocks {
		for i, s := range opts.Splits {
			if err := l.Resolve(splitBlocksTag(i), ledger.Relative); err != nil {
				return err
			}
			for _, b := range s.Blocks {
				w.WriteU32(b.CompressedLength)
				w.WriteU32(b.Length)
			}
		}
	}
	w.Align(8)
	return nil
}
