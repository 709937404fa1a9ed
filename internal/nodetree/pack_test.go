package nodetree

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/pacx/internal/pactype"
)

func items(names ...string) []Item[int] {
	out := make([]Item[int], len(names))
	for i, n := range names {
		out[i] = Item[int]{Name: n, Data: i}
	}
	return out
}

func sortedItems(in []Item[int]) []Item[int] {
	out := slices.Clone(in)
	slices.SortFunc(out, func(a, b Item[int]) int { return strings.Compare(a.Name, b.Name) })
	return out
}

// checkPrefixInvariant verifies every data node is a nameless leaf whose
// ancestor fragments spell the original name.
func checkPrefixInvariant(t *testing.T, tree *Tree[int], in []Item[int]) {
	t.Helper()
	assert.Equal(t, sortedItems(in), sortedItems(tree.Flatten()))
	for di, idx := range tree.DataNodes {
		n := tree.Nodes[idx]
		assert.Empty(t, n.Name, "data node %d carries a name", idx)
		assert.Empty(t, n.Children, "data node %d has children", idx)
		assert.Equal(t, di, n.DataIndex)
	}
	for i, n := range tree.Nodes {
		assert.Equal(t, i, n.Index)
		for _, c := range n.Children {
			assert.Equal(t, i, tree.Nodes[c].Parent)
			assert.Greater(t, c, i, "children come after their parent")
		}
	}
}

func TestPackNoSharedFirstByte(t *testing.T) {
	t.Parallel()

	tree, err := Pack(items("a.model", "z.model"))
	require.NoError(t, err)

	root := tree.Nodes[0]
	require.Len(t, root.Children, 2)
	for _, c := range root.Children {
		named := tree.Nodes[c]
		assert.Contains(t, []string{"a.model", "z.model"}, named.Name)
		require.Len(t, named.Children, 1)
		leaf := tree.Nodes[named.Children[0]]
		assert.True(t, leaf.HasData)
		assert.Empty(t, leaf.Name)
	}
	assert.Len(t, tree.Nodes, 5, "no shared intermediate node")
	checkPrefixInvariant(t, tree, items("a.model", "z.model"))
}

func TestPackFullReferenceMatch(t *testing.T) {
	t.Parallel()

	in := items("ab", "a")
	tree, err := Pack(in)
	require.NoError(t, err)
	checkPrefixInvariant(t, tree, in)

	// "a" is the reference; "b" hangs under its name node.
	root := tree.Nodes[0]
	require.Len(t, root.Children, 1)
	a := tree.Nodes[root.Children[0]]
	assert.Equal(t, "a", a.Name)
	var fragments []string
	for _, c := range a.Children {
		fragments = append(fragments, tree.Nodes[c].Name)
	}
	assert.ElementsMatch(t, []string{"", "b"}, fragments)
}

func TestPackSharedPrefixNode(t *testing.T) {
	t.Parallel()

	in := items("chr_player", "chr_enemy", "stg_01")
	tree, err := Pack(in)
	require.NoError(t, err)
	checkPrefixInvariant(t, tree, in)

	var prefixes []string
	for _, c := range tree.Nodes[0].Children {
		prefixes = append(prefixes, tree.Nodes[c].Name)
	}
	assert.ElementsMatch(t, []string{"chr_", "stg_01"}, prefixes)
}

func TestPackEdgeCases(t *testing.T) {
	t.Parallel()

	tree, err := Pack[int](nil)
	require.NoError(t, err)
	assert.Len(t, tree.Nodes, 1)
	assert.Empty(t, tree.DataNodes)

	tree, err = Pack(items("only"))
	require.NoError(t, err)
	assert.Len(t, tree.Nodes, 3)
	checkPrefixInvariant(t, tree, items("only"))

	_, err = Pack(items("a", ""))
	require.ErrorIs(t, err, pactype.ErrMalformedInput)

	_, err = Pack(items("a", "b", "a"))
	require.ErrorIs(t, err, pactype.ErrMalformedInput)
}

func TestPackRandomPrefixInvariant(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(1, 2))
	for round := range 50 {
		t.Run(fmt.Sprint(round), func(t *testing.T) {
			n := 1 + rng.IntN(60)
			seen := make(map[string]struct{})
			var names []string
			for len(names) < n {
				var b strings.Builder
				for range 1 + rng.IntN(8) {
					b.WriteByte("ab_."[rng.IntN(4)])
				}
				if _, ok := seen[b.String()]; ok {
					continue
				}
				seen[b.String()] = struct{}{}
				names = append(names, b.String())
			}
			in := items(names...)
			tree, err := Pack(in)
			require.NoError(t, err)
			checkPrefixInvariant(t, tree, in)
		})
	}
}

func TestPackDoesNotMutateInput(t *testing.T) {
	t.Parallel()

	in := items("b", "ab", "aa")
	_, err := Pack(in)
	require.NoError(t, err)
	assert.Equal(t, items("b", "ab", "aa"), in)
}
