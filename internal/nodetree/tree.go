// Package nodetree implements the prefix-sharing name trees used by PACx
// sub-archives.
//
// A Tree is an index-addressed arena: nodes live in one slice and refer to
// their parent and children by index. Index 0 is always the root. Concatenating
// the name fragments from the root down to a data node reproduces the full
// name the payload was packed under.
package nodetree

import "strings"

// Node is one element of a Tree.
type Node[T any] struct {
	// Name is the name fragment contributed by this node; empty for the root
	// and for payload-carrying leaves.
	Name string

	// Data is the attached payload when HasData is set.
	Data T

	// HasData reports whether the node carries a payload.
	HasData bool

	// DataOffset is the absolute offset of the payload when the tree was
	// decoded from a stream.
	DataOffset int64

	Parent    int
	Index     int
	DataIndex int
	Children  []int
}

// Tree is an arena of nodes plus the ordered indices of data nodes.
type Tree[T any] struct {
	Nodes     []Node[T]
	DataNodes []int
}

// New returns a tree holding only the root node.
func New[T any]() *Tree[T] {
	return &Tree[T]{
		Nodes: []Node[T]{{Parent: -1, Index: 0, DataIndex: -1}},
	}
}

// MakeChild appends a child under parent and returns its index.
func (t *Tree[T]) MakeChild(parent int, name string, data T, hasData bool) int {
	idx := len(t.Nodes)
	n := Node[T]{
		Name:      name,
		Data:      data,
		HasData:   hasData,
		Parent:    parent,
		Index:     idx,
		DataIndex: -1,
	}
	if hasData {
		n.DataIndex = len(t.DataNodes)
		t.DataNodes = append(t.DataNodes, idx)
	}
	t.Nodes = append(t.Nodes, n)
	t.Nodes[parent].Children = append(t.Nodes[parent].Children, idx)
	return idx
}

// AddLeaf attaches data under parent as a named node with a nameless payload
// child, and returns the index of the payload child.
func (t *Tree[T]) AddLeaf(parent int, name string, data T) int {
	var zero T
	named := t.MakeChild(parent, name, zero, false)
	return t.MakeChild(named, "", data, true)
}

// FullName concatenates the name fragments from the root down to node i.
func (t *Tree[T]) FullName(i int) string {
	var parts []string
	for ; i >= 0; i = t.Nodes[i].Parent {
		if name := t.Nodes[i].Name; name != "" {
			parts = append(parts, name)
		}
	}
	var b strings.Builder
	for j := len(parts) - 1; j >= 0; j-- {
		b.WriteString(parts[j])
	}
	return b.String()
}

// PathLength returns the summed length of the name fragments above node i,
// not counting node i itself.
func (t *Tree[T]) PathLength(i int) int {
	total := 0
	for p := t.Nodes[i].Parent; p > 0; p = t.Nodes[p].Parent {
		total += len(t.Nodes[p].Name)
	}
	return total
}

// Flatten returns every payload with its reconstructed name, in data node
// order.
func (t *Tree[T]) Flatten() []Item[T] {
	items := make([]Item[T], 0, len(t.DataNodes))
	for _, i := range t.DataNodes {
		items = append(items, Item[T]{Name: t.FullName(i), Data: t.Nodes[i].Data})
	}
	return items
}
