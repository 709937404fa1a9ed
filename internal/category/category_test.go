package category

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		wantBase string
		wantExt  string
		wantOK   bool
	}{
		{"chr_sonic.model", "chr_sonic", ".model", true},
		{"w1r03_grass.grass.bin", "w1r03_grass", ".grass.bin", true},
		{"noext", "noext", "", false},
		{".dds", "", ".dds", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			base, ext, ok := Split(tt.name)
			assert.Equal(t, tt.wantBase, base)
			assert.Equal(t, tt.wantExt, ext)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestLookup(t *testing.T) {
	t.Parallel()

	c, ok := Lookup(".dds")
	assert.True(t, ok)
	assert.Equal(t, "ResTexture", c)

	c, ok = Lookup(".grass.bin")
	assert.True(t, ok)
	assert.Equal(t, "ResTerrainGrassInfo", c)

	_, ok = Lookup(".DDS")
	assert.False(t, ok, "lookup is case sensitive")
	_, ok = Lookup(".txt")
	assert.False(t, ok)
}

func TestRootExclusive(t *testing.T) {
	t.Parallel()

	assert.True(t, RootExclusive(".asm"))
	assert.True(t, RootExclusive(".pss"))
	assert.False(t, RootExclusive(".dds"))
	assert.False(t, RootExclusive(".model"))
	assert.False(t, RootExclusive(".txt"))
}

func TestRootExclusiveExtensionsHaveCategories(t *testing.T) {
	t.Parallel()

	for ext := range rootExclusive {
		_, ok := categories[ext]
		assert.True(t, ok, "root-exclusive extension %q has no category", ext)
	}
}
