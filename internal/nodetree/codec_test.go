package nodetree

import (
	"encoding/binary"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/pacx/internal/bin"
	"github.com/meigma/pacx/internal/ledger"
	"github.com/meigma/pacx/internal/pactype"
)

// encode writes tree followed by one u32 payload per data node and returns
// the finalized buffer plus the payload offsets by data node index.
func encode(t *testing.T, tree *Tree[int], order binary.ByteOrder) ([]byte, map[int]int64) {
	t.Helper()
	w := bin.NewWriter(order)
	l := ledger.New(w, 0)
	require.NoError(t, tree.Write(w, l, "t"))
	require.NoError(t, tree.WriteDataIndices(w, l, "t"))
	require.NoError(t, tree.WriteChildIndices(w, l, "t"))

	offsets := make(map[int]int64)
	for _, di := range tree.DataNodes {
		offsets[di] = w.Pos()
		require.NoError(t, l.Resolve(DataTag("t", di), ledger.Absolute))
		w.WriteU32(uint32(tree.Nodes[di].Data))
	}
	_, err := l.Finalize()
	require.NoError(t, err)
	return w.Bytes(), offsets
}

func TestCodecRoundTrip(t *testing.T) {
	t.Parallel()

	for _, order := range []binary.ByteOrder{binary.LittleEndian, binary.BigEndian} {
		t.Run(order.String(), func(t *testing.T) {
			t.Parallel()

			in := items("chr_player", "chr_enemy", "chr_", "stg_01", "z")
			tree, err := Pack(in)
			require.NoError(t, err)

			data, offsets := encode(t, tree, order)
			got, err := Read[int](bin.NewReader(data, order))
			require.NoError(t, err)

			require.Len(t, got.Nodes, len(tree.Nodes))
			assert.Equal(t, tree.DataNodes, got.DataNodes)
			for i := range tree.Nodes {
				want, have := tree.Nodes[i], got.Nodes[i]
				assert.Equal(t, want.Name, have.Name, "node %d", i)
				assert.Equal(t, want.Parent, have.Parent, "node %d", i)
				assert.Equal(t, want.DataIndex, have.DataIndex, "node %d", i)
				assert.Equal(t, want.HasData, have.HasData, "node %d", i)
				assert.Equal(t, want.Children, have.Children, "node %d", i)
			}
			for di, off := range offsets {
				assert.Equal(t, off, got.Nodes[di].DataOffset)
				assert.Equal(t, tree.FullName(di), got.FullName(di))
			}
		})
	}
}

func TestCodecNodeLayout(t *testing.T) {
	t.Parallel()

	tree, err := Pack(items("ab", "ac"))
	require.NoError(t, err)
	data, _ := encode(t, tree, binary.LittleEndian)

	le := binary.LittleEndian
	assert.Equal(t, uint32(len(tree.Nodes)), le.Uint32(data[0:]))
	assert.Equal(t, uint32(2), le.Uint32(data[4:]))
	assert.Equal(t, uint64(HeaderSize), le.Uint64(data[8:]), "nodes follow the header")

	// Node 0 is the root: parent -1, no data.
	root := data[HeaderSize:]
	assert.Equal(t, int32(-1), int32(le.Uint32(root[24:])))
	assert.Equal(t, int32(0), int32(le.Uint32(root[28:])))
	assert.Equal(t, int32(-1), int32(le.Uint32(root[32:])))
	assert.Equal(t, uint16(1), le.Uint16(root[36:]))
	assert.Equal(t, byte(0), root[38])

	// Every data node records the length of the prefix above it.
	for _, di := range tree.DataNodes {
		node := data[HeaderSize+di*NodeSize:]
		assert.Equal(t, byte(1), node[38])
		assert.Equal(t, byte(len(tree.FullName(di))), node[39])
	}
}

func TestWriteNameTooLong(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("x", MaxPathLength+1)
	tree, err := Pack(items(long))
	require.NoError(t, err)

	w := bin.NewWriter(binary.LittleEndian)
	err = tree.Write(w, ledger.New(w, 0), "t")
	require.ErrorIs(t, err, pactype.ErrNameTooLong)
}

func TestWriteMaxPathLength(t *testing.T) {
	t.Parallel()

	tree, err := Pack(items(strings.Repeat("x", MaxPathLength)))
	require.NoError(t, err)
	w := bin.NewWriter(binary.LittleEndian)
	require.NoError(t, tree.Write(w, ledger.New(w, 0), "t"))
}

func TestReadCorrupt(t *testing.T) {
	t.Parallel()

	tree, err := Pack(items("ab", "ac", "b"))
	require.NoError(t, err)
	data, _ := encode(t, tree, binary.LittleEndian)

	tests := []struct {
		name   string
		mutate func([]byte)
	}{
		{"zero nodes", func(b []byte) { binary.LittleEndian.PutUint32(b[0:], 0) }},
		{"too many nodes", func(b []byte) { binary.LittleEndian.PutUint32(b[0:], 1<<30) }},
		{"more data than nodes", func(b []byte) { binary.LittleEndian.PutUint32(b[4:], 1000) }},
		{"nodes outside stream", func(b []byte) { binary.LittleEndian.PutUint64(b[8:], 1<<40) }},
		{"root with parent", func(b []byte) { binary.LittleEndian.PutUint32(b[HeaderSize+24:], 0) }},
		{"parent after child", func(b []byte) { binary.LittleEndian.PutUint32(b[HeaderSize+NodeSize+24:], 5) }},
		{"wrong index", func(b []byte) { binary.LittleEndian.PutUint32(b[HeaderSize+NodeSize+28:], 7) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			buf := append([]byte(nil), data...)
			tt.mutate(buf)
			_, err := Read[int](bin.NewReader(buf, binary.LittleEndian))
			require.ErrorIs(t, err, pactype.ErrCorrupt)
		})
	}
}
