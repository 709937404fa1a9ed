package nodetree

import (
	"fmt"
	"math"

	"github.com/meigma/pacx/internal/bin"
	"github.com/meigma/pacx/internal/ledger"
	"github.com/meigma/pacx/internal/pactype"
)

const (
	// HeaderSize is the encoded size of a tree header.
	HeaderSize = 24

	// NodeSize is the encoded size of one node.
	NodeSize = 40

	// MaxPathLength is the largest prefix length a node may record.
	MaxPathLength = math.MaxUint8
)

// DataTag returns the ledger tag of node i's payload pointer.
func DataTag(prefix string, i int) string {
	return fmt.Sprintf("%s/node%d/data", prefix, i)
}

func childrenTag(prefix string, i int) string {
	return fmt.Sprintf("%s/node%d/children", prefix, i)
}

func dataIndicesTag(prefix string) string {
	return prefix + "/dataIndices"
}

// Write emits the tree header and its nodes at the current position.
//
// Payload pointers are left reserved under DataTag(prefix, i); the caller
// resolves them when it writes the payloads. Data index and child index
// tables are emitted separately by WriteDataIndices and WriteChildIndices.
func (t *Tree[T]) Write(w *bin.Writer, l *ledger.Ledger, prefix string) error {
	w.WriteU32(uint32(len(t.Nodes)))     //nolint:gosec // bounded by the 255-byte name limit
	w.WriteU32(uint32(len(t.DataNodes))) //nolint:gosec // see above
	nodesTag := prefix + "/nodes"
	if err := l.Reserve(nodesTag); err != nil {
		return err
	}
	if err := l.Reserve(dataIndicesTag(prefix)); err != nil {
		return err
	}
	if err := l.Resolve(nodesTag, ledger.Absolute); err != nil {
		return err
	}

	for i := range t.Nodes {
		if err := t.writeNode(w, l, prefix, i); err != nil {
			return err
		}
	}
	return nil
}

func (t *Tree[T]) writeNode(w *bin.Writer, l *ledger.Ledger, prefix string, i int) error {
	n := &t.Nodes[i]

	if n.Name != "" {
		if err := l.Intern(n.Name); err != nil {
			return err
		}
	} else {
		w.WriteU64(0)
	}

	if n.HasData {
		if err := l.Reserve(DataTag(prefix, i)); err != nil {
			return err
		}
	} else {
		w.WriteU64(0)
	}

	if len(n.Children) > 0 {
		if err := l.Reserve(childrenTag(prefix, i)); err != nil {
			return err
		}
	} else {
		w.WriteU64(0)
	}

	if len(n.Children) > math.MaxUint16 {
		return fmt.Errorf("%w: node %d has %d children", pactype.ErrSizeOverflow, i, len(n.Children))
	}

	w.WriteI32(int32(n.Parent))    //nolint:gosec // node counts stay far below 2^31
	w.WriteI32(int32(n.Index))     //nolint:gosec // see above
	w.WriteI32(int32(n.DataIndex)) //nolint:gosec // see above
	w.WriteU16(uint16(len(n.Children)))
	w.WriteBool(n.HasData)

	pathLen := t.PathLength(i)
	if pathLen > MaxPathLength {
		return fmt.Errorf("%w: %q is %d bytes", pactype.ErrNameTooLong, t.FullName(i), pathLen)
	}
	w.WriteU8(uint8(pathLen))
	return nil
}

// WriteDataIndices emits the data node index table and resolves the header
// pointer to it.
func (t *Tree[T]) WriteDataIndices(w *bin.Writer, l *ledger.Ledger, prefix string) error {
	if err := l.Resolve(dataIndicesTag(prefix), ledger.Absolute); err != nil {
		return err
	}
	for _, idx := range t.DataNodes {
		w.WriteI32(int32(idx)) //nolint:gosec // node counts stay far below 2^31
	}
	w.Align(8)
	return nil
}

// WriteChildIndices emits one child index table per node with children.
func (t *Tree[T]) WriteChildIndices(w *bin.Writer, l *ledger.Ledger, prefix string) error {
	for i := range t.Nodes {
		n := &t.Nodes[i]
		if len(n.Children) == 0 {
			continue
		}
		if err := l.Resolve(childrenTag(prefix, i), ledger.Absolute); err != nil {
			return err
		}
		for _, c := range n.Children {
			w.WriteI32(int32(c)) //nolint:gosec // node counts stay far below 2^31
		}
		w.Align(8)
	}
	return nil
}

// Read decodes a tree whose header starts at the reader's current position.
// Payloads are not decoded; each data node's DataOffset records where its
// payload lives.
func Read[T any](r *bin.Reader) (*Tree[T], error) {
	nodeCount, err := r.U32()
	if err != nil {
		return nil, err
	}
	dataCount, err := r.U32()
	if err != nil {
		return nil, err
	}
	nodesOffset, err := r.U64()
	if err != nil {
		return nil, err
	}
	dataIndicesOffset, err := r.U64()
	if err != nil {
		return nil, err
	}
	if nodeCount == 0 || uint64(nodeCount)*NodeSize > uint64(r.Len()) {
		return nil, fmt.Errorf("%w: implausible node count %d", pactype.ErrCorrupt, nodeCount)
	}
	if dataCount > nodeCount {
		return nil, fmt.Errorf("%w: %d data nodes in a %d-node tree", pactype.ErrCorrupt, dataCount, nodeCount)
	}

	t := &Tree[T]{
		Nodes:     make([]Node[T], nodeCount),
		DataNodes: make([]int, dataCount),
	}
	if err := r.Seek(int64(nodesOffset)); err != nil { //nolint:gosec // Seek bounds-checks
		return nil, err
	}
	for i := range t.Nodes {
		if err := t.readNode(r, i); err != nil {
			return nil, fmt.Errorf("node %d: %w", i, err)
		}
	}

	if err := r.Seek(int64(dataIndicesOffset)); err != nil { //nolint:gosec // Seek bounds-checks
		return nil, err
	}
	for i := range t.DataNodes {
		idx, err := r.I32()
		if err != nil {
			return nil, err
		}
		if idx <= 0 || int(idx) >= len(t.Nodes) || !t.Nodes[idx].HasData {
			return nil, fmt.Errorf("%w: data index %d does not name a data node", pactype.ErrCorrupt, idx)
		}
		t.DataNodes[i] = int(idx)
	}
	return t, nil
}

func (t *Tree[T]) readNode(r *bin.Reader, i int) error {
	nameOffset, err := r.U64()
	if err != nil {
		return err
	}
	dataOffset, err := r.U64()
	if err != nil {
		return err
	}
	childrenOffset, err := r.U64()
	if err != nil {
		return err
	}
	parent, err := r.I32()
	if err != nil {
		return err
	}
	index, err := r.I32()
	if err != nil {
		return err
	}
	dataIndex, err := r.I32()
	if err != nil {
		return err
	}
	childCount, err := r.U16()
	if err != nil {
		return err
	}
	hasData, err := r.Bool()
	if err != nil {
		return err
	}
	if _, err := r.U8(); err != nil { // path length, derivable
		return err
	}

	// Parents always precede their children, which keeps name walks finite.
	if int(index) != i || (i == 0 && parent != -1) || (i > 0 && (parent < 0 || int(parent) >= i)) {
		return fmt.Errorf("%w: inconsistent indices (index %d, parent %d)", pactype.ErrCorrupt, index, parent)
	}

	n := &t.Nodes[i]
	n.Index = i
	n.Parent = int(parent)
	n.DataIndex = int(dataIndex)
	n.HasData = hasData
	if nameOffset != 0 {
		if n.Name, err = r.CStringAt(int64(nameOffset)); err != nil { //nolint:gosec // CStringAt bounds-checks
			return err
		}
	}
	if hasData {
		n.DataOffset = int64(dataOffset) //nolint:gosec // validated when the payload is read
	}
	if childCount == 0 {
		return nil
	}

	resume := r.Pos()
	if err := r.Seek(int64(childrenOffset)); err != nil { //nolint:gosec // Seek bounds-checks
		return err
	}
	n.Children = make([]int, childCount)
	for c := range n.Children {
		idx, err := r.I32()
		if err != nil {
			return err
		}
		n.Children[c] = int(idx)
	}
	return r.Seek(resume)
}
