package nodetree

import (
	"fmt"
	"slices"
	"strings"

	"github.com/meigma/pacx/internal/pactype"
)

// Item is a named payload handed to Pack.
type Item[T any] struct {
	Name string
	Data T
}

// Pack builds a tree whose data nodes hold items, grouping names that share
// leading bytes under common prefix nodes.
//
// Names must be non-empty and unique; otherwise Pack fails with
// pactype.ErrMalformedInput before building anything. The tree shape depends
// on input order only through sort stability; flattening always returns the
// input multiset.
func Pack[T any](items []Item[T]) (*Tree[T], error) {
	seen := make(map[string]struct{}, len(items))
	for i, it := range items {
		if it.Name == "" {
			return nil, fmt.Errorf("%w: empty name at index %d", pactype.ErrMalformedInput, i)
		}
		if _, dup := seen[it.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate name %q", pactype.ErrMalformedInput, it.Name)
		}
		seen[it.Name] = struct{}{}
	}

	t := New[T]()
	t.pack(0, slices.Clone(items))
	return t, nil
}

func (t *Tree[T]) pack(root int, items []Item[T]) {
	switch len(items) {
	case 0:
		return
	case 1:
		t.AddLeaf(root, items[0].Name, items[0].Data)
		return
	}

	if !packable(items) {
		for _, it := range items {
			t.AddLeaf(root, it.Name, it.Data)
		}
		return
	}

	slices.SortStableFunc(items, func(a, b Item[T]) int {
		return strings.Compare(a.Name, b.Name)
	})

	ref := items[0].Name
	minLength := len(ref)
	var matches, noMatches []Item[T]
	for _, it := range items {
		limit := min(minLength, len(it.Name))
		matched := 0
		for matched < limit && it.Name[matched] == ref[matched] {
			matched++
		}
		if matched == 0 {
			noMatches = append(noMatches, it)
			continue
		}
		matches = append(matches, it)
		minLength = min(minLength, matched)
	}

	// matches[0] is always the reference itself.
	var parent int
	if minLength == len(ref) {
		leaf := t.AddLeaf(root, ref, matches[0].Data)
		parent = t.Nodes[leaf].Parent
		matches = matches[1:]
	} else {
		var zero T
		parent = t.MakeChild(root, ref[:minLength], zero, false)
	}
	for i := range matches {
		matches[i].Name = matches[i].Name[minLength:]
	}
	t.pack(parent, matches)
	t.pack(root, noMatches)
}

// packable reports whether at least two names share a first byte.
func packable[T any](items []Item[T]) bool {
	var seen [256]bool
	for _, it := range items {
		c := it.Name[0]
		if seen[c] {
			return true
		}
		seen[c] = true
	}
	return false
}
