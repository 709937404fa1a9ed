package split

import (
	"bytes"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/pacx/internal/pactype"
)

var discard = slog.New(slog.DiscardHandler)

func res(name string, size int) pactype.Resource {
	return pactype.Resource{Name: name, Data: bytes.Repeat([]byte{'x'}, size)}
}

func names(items []Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Resource.Name
	}
	return out
}

func TestMakeThresholdPartition(t *testing.T) {
	t.Parallel()

	var in []pactype.Resource
	for i := range 9 {
		in = append(in, res(fmt.Sprintf("tex%02d.dds", i), 30))
	}

	p, err := Make(in, 91, discard)
	require.NoError(t, err)
	require.Len(t, p.Splits, 3)
	for i, s := range p.Splits {
		assert.Len(t, s, 3, "split %d", i)
	}
	assert.Equal(t, []string{"tex00.dds", "tex01.dds", "tex02.dds"}, names(p.Splits[0]))
	assert.Len(t, p.Root, 9)
	assert.True(t, p.HasSplits())
}

func TestMakeSplitStaysBelowThreshold(t *testing.T) {
	t.Parallel()

	in := []pactype.Resource{res("a.dds", 50), res("b.dds", 50), res("c.dds", 50)}
	p, err := Make(in, 100, discard)
	require.NoError(t, err)
	require.Len(t, p.Splits, 3, "50+50 reaches the threshold and must not share a split")
}

func TestMakeOversizedResource(t *testing.T) {
	t.Parallel()

	in := []pactype.Resource{res("small.dds", 10), res("huge.dds", 500), res("tail.dds", 10)}
	p, err := Make(in, 100, discard)
	require.NoError(t, err)
	require.Len(t, p.Splits, 3)
	assert.Equal(t, []string{"huge.dds"}, names(p.Splits[1]))
	for _, s := range p.Splits {
		assert.NotEmpty(t, s)
	}
}

func TestMakeRootExclusive(t *testing.T) {
	t.Parallel()

	in := []pactype.Resource{
		res("chr.model", 40),
		res("chr.asm", 40),
		res("chr.dds", 40),
		res("world.gedit", 40),
	}
	p, err := Make(in, 60, discard)
	require.NoError(t, err)

	assert.Equal(t, []string{"chr.model", "chr.asm", "chr.dds", "world.gedit"}, names(p.Root))
	var split []string
	for _, s := range p.Splits {
		split = append(split, names(s)...)
	}
	assert.Equal(t, []string{"chr.model", "chr.dds"}, split)

	for i := range p.Root {
		it := &p.Root[i]
		assert.Equal(t, it.RootExclusive, p.InRoot(it), it.Resource.Name)
	}
}

func TestMakeZeroThresholdDisablesSplitting(t *testing.T) {
	t.Parallel()

	in := []pactype.Resource{res("a.model", 10), res("ab.model", 10)}
	p, err := Make(in, 0, discard)
	require.NoError(t, err)
	assert.False(t, p.HasSplits())
	for i := range p.Root {
		assert.True(t, p.InRoot(&p.Root[i]))
	}
}

func TestMakeOnlyRootExclusive(t *testing.T) {
	t.Parallel()

	p, err := Make([]pactype.Resource{res("a.asm", 10)}, 1, discard)
	require.NoError(t, err)
	assert.False(t, p.HasSplits())
}

func TestMakeSkipsUnknownExtensions(t *testing.T) {
	t.Parallel()

	in := []pactype.Resource{
		res("readme.txt", 5),
		res("noext", 5),
		res("ok.dds", 5),
	}
	p, err := Make(in, DefaultThreshold, discard)
	require.NoError(t, err)
	assert.Equal(t, []string{"readme.txt", "noext"}, p.Skipped)
	assert.Equal(t, []string{"ok.dds"}, names(p.Root))
	assert.Equal(t, "ResTexture", p.Root[0].Category)
	assert.Equal(t, "ok", p.Root[0].Base)
	assert.Equal(t, ".dds", p.Root[0].Ext)
}

func TestMakeEmptyName(t *testing.T) {
	t.Parallel()

	_, err := Make([]pactype.Resource{{Name: ""}}, DefaultThreshold, discard)
	require.ErrorIs(t, err, pactype.ErrMalformedInput)
}

func TestMakeEmpty(t *testing.T) {
	t.Parallel()

	p, err := Make(nil, DefaultThreshold, discard)
	require.NoError(t, err)
	assert.Empty(t, p.Root)
	assert.False(t, p.HasSplits())
}
