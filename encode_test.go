package pacx

import (
	"bytes"
	"encoding/binary"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/pacx/internal/header"
	"github.com/meigma/pacx/internal/testutil"
)

func encodeBytes(t *testing.T, arc *Archive, opts ...SaveOption) ([]byte, *SaveResult) {
	t.Helper()
	var buf bytes.Buffer
	res, err := arc.Encode(&buf, opts...)
	require.NoError(t, err)
	require.EqualValues(t, buf.Len(), res.Size)
	return buf.Bytes(), res
}

func decodeBytes(t *testing.T, data []byte, opts ...DecodeOption) *Archive {
	t.Helper()
	arc, err := Decode(bytes.NewReader(data), int64(len(data)), opts...)
	require.NoError(t, err)
	return arc
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(1, 2))
	resources := testutil.RandomResources(rng, 40, []string{".dds", ".model", ".asm", ".material", ".grass.bin"}, 300)

	compressions := []Compression{CompressionNone, CompressionDeflate, CompressionLz4}
	for _, comp := range compressions {
		for _, bigEndian := range []bool{false, true} {
			for _, threshold := range []uint64{0, 1000} {
				t.Run(comp.String(), func(t *testing.T) {
					t.Parallel()
					data, res := encodeBytes(t, &Archive{Resources: resources},
						SaveWithCompression(comp),
						SaveWithBigEndian(bigEndian),
						SaveWithSplitThreshold(threshold),
						SaveWithCompressThreshold(0),
					)
					assert.Equal(t, comp, res.Compression)
					assert.Empty(t, res.Skipped)
					if threshold == 0 {
						assert.Empty(t, res.Splits)
					} else {
						assert.NotEmpty(t, res.Splits)
					}

					got := decodeBytes(t, data)
					assert.Equal(t, testutil.Sorted(resources), testutil.Sorted(got.Resources))
					assert.Empty(t, got.Dependencies)
				})
			}
		}
	}
}

func TestEncodeSharedPrefixNames(t *testing.T) {
	t.Parallel()

	arc := &Archive{Resources: []Resource{
		{Name: "a.model", Data: []byte("first")},
		{Name: "ab.model", Data: []byte("second")},
	}}
	data, res := encodeBytes(t, arc, SaveWithSplitThreshold(0), SaveWithCompression(CompressionNone))
	assert.Empty(t, res.Splits)

	got := decodeBytes(t, data)
	assert.Equal(t, testutil.Sorted(arc.Resources), testutil.Sorted(got.Resources))
}

func TestEncodeEmpty(t *testing.T) {
	t.Parallel()

	for _, comp := range []Compression{CompressionNone, CompressionDeflate, CompressionLz4} {
		data, res := encodeBytes(t, &Archive{}, SaveWithCompression(comp))
		assert.Empty(t, res.Splits)

		got := decodeBytes(t, data)
		assert.Empty(t, got.Resources)
		assert.Empty(t, got.Dependencies)
	}
}

func TestEncodeDependencies(t *testing.T) {
	t.Parallel()

	arc := &Archive{
		Resources:    []Resource{testutil.Resource("title.dds", 64, 7)},
		Dependencies: []string{`ui\ui_common`, `ui\ui_font`},
	}

	data, _ := encodeBytes(t, arc, SaveWithCompression(CompressionNone))
	flags := binary.LittleEndian.Uint16(data[0x1C:])
	assert.NotZero(t, flags&header.FlagDependencies)
	assert.NotZero(t, flags&header.FlagExtended)
	assert.Equal(t, arc.Dependencies, decodeBytes(t, data).Dependencies)

	data, _ = encodeBytes(t, arc, SaveWithDependencies("override"))
	assert.Equal(t, []string{"override"}, decodeBytes(t, data).Dependencies)

	data, _ = encodeBytes(t, arc, SaveWithDependencies(), SaveWithCompression(CompressionNone))
	flags = binary.LittleEndian.Uint16(data[0x1C:])
	assert.Zero(t, flags&header.FlagExtended, "no dependencies and no blocks use the short header")
	assert.Empty(t, decodeBytes(t, data).Dependencies)
}

func TestEncodeDeterministicWithFixedIDs(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(3, 4))
	resources := testutil.RandomResources(rng, 25, []string{".dds", ".asm"}, 500)
	arc := &Archive{Resources: resources, Dependencies: []string{"common"}}
	opts := func() []SaveOption {
		return []SaveOption{
			SaveWithIDSource(testutil.NewSequenceIDs(0x11111111, 0x22222222)),
			SaveWithSplitThreshold(2000),
			SaveWithName("stage.pac"),
		}
	}

	a, resA := encodeBytes(t, arc, opts()...)
	b, _ := encodeBytes(t, arc, opts()...)
	assert.Equal(t, a, b)

	assert.Equal(t, uint32(0x11111111), resA.ContainerID)
	assert.Equal(t, uint32(0x22222222), resA.SubArchiveID)
	assert.Equal(t, uint32(0x11111111), binary.LittleEndian.Uint32(a[8:]))
	rootOffset := binary.LittleEndian.Uint32(a[0x10:])
	assert.Equal(t, uint32(0x22222222), binary.LittleEndian.Uint32(a[rootOffset+8:]))
	assert.Zero(t, rootOffset%16)
	assert.Zero(t, len(a)%16)
}

func TestEncodeSkipsZeroIDs(t *testing.T) {
	t.Parallel()

	_, res := encodeBytes(t, &Archive{}, SaveWithIDSource(testutil.NewSequenceIDs(0, 0, 5, 0, 6)))
	assert.Equal(t, uint32(5), res.ContainerID)
	assert.Equal(t, uint32(6), res.SubArchiveID)

	var buf bytes.Buffer
	_, err := (&Archive{}).Encode(&buf, SaveWithIDSource(testutil.NewSequenceIDs(0)))
	require.ErrorIs(t, err, ErrMalformedInput)
}

func TestEncodeSplitNames(t *testing.T) {
	t.Parallel()

	arc := &Archive{Resources: []Resource{
		testutil.Resource("a.dds", 100, 1),
		testutil.Resource("b.dds", 100, 2),
		testutil.Resource("c.asm", 100, 3),
	}}

	_, res := encodeBytes(t, arc, SaveWithSplitThreshold(150), SaveWithName("w1r03.pac"))
	assert.Equal(t, []string{"w1r03.pac.000", "w1r03.pac.001"}, res.Splits)

	_, res = encodeBytes(t, arc, SaveWithSplitThreshold(150))
	assert.Equal(t, []string{"archive.pac.000", "archive.pac.001"}, res.Splits)
}

func TestDecodeOrderRootFirst(t *testing.T) {
	t.Parallel()

	arc := &Archive{Resources: []Resource{
		testutil.Resource("a.dds", 100, 1),
		testutil.Resource("b.dds", 100, 2),
		testutil.Resource("c.asm", 100, 3),
	}}
	data, _ := encodeBytes(t, arc, SaveWithSplitThreshold(150))
	got := decodeBytes(t, data)
	assert.Equal(t, []string{"c.asm", "a.dds", "b.dds"}, testutil.Names(got.Resources))
}

func TestEncodeSkipsUnknownExtensions(t *testing.T) {
	t.Parallel()

	arc := &Archive{Resources: []Resource{
		testutil.Resource("notes.txt", 4, 0),
		testutil.Resource("icon.dds", 4, 0),
	}}
	data, res := encodeBytes(t, arc)
	assert.Equal(t, []string{"notes.txt"}, res.Skipped)
	assert.Equal(t, []string{"icon.dds"}, testutil.Names(decodeBytes(t, data).Resources))
}

func TestEncodeMalformedInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		resources []Resource
	}{
		{"empty name", []Resource{{Name: ""}}},
		{"duplicate name", []Resource{testutil.Resource("a.dds", 1, 0), testutil.Resource("a.dds", 2, 0)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			_, err := (&Archive{Resources: tt.resources}).Encode(&buf)
			require.ErrorIs(t, err, ErrMalformedInput)
			assert.Zero(t, buf.Len(), "nothing is written on failure")
		})
	}
}

func TestEncodeNameTooLong(t *testing.T) {
	t.Parallel()

	long := string(bytes.Repeat([]byte{'n'}, 300)) + ".dds"
	var buf bytes.Buffer
	_, err := (&Archive{Resources: []Resource{{Name: long, Data: []byte{1}}}}).Encode(&buf)
	require.ErrorIs(t, err, ErrNameTooLong)
}

func TestDeflateBelowThresholdIsStored(t *testing.T) {
	t.Parallel()

	arc := &Archive{Resources: []Resource{testutil.Resource("a.dds", 256, 9)}}

	data, _ := encodeBytes(t, arc, SaveWithCompression(CompressionDeflate))
	assert.Equal(t, binary.LittleEndian.Uint32(data[0x14:]), binary.LittleEndian.Uint32(data[0x18:]),
		"small roots are stored uncompressed")

	data, _ = encodeBytes(t, arc, SaveWithCompression(CompressionDeflate), SaveWithCompressThreshold(0))
	assert.Less(t, binary.LittleEndian.Uint32(data[0x14:]), binary.LittleEndian.Uint32(data[0x18:]))
	assert.Equal(t, testutil.Sorted(arc.Resources), testutil.Sorted(decodeBytes(t, data).Resources))
}

func TestEncodeProgress(t *testing.T) {
	t.Parallel()

	arc := &Archive{Resources: []Resource{
		testutil.Resource("a.dds", 100, 1),
		testutil.Resource("b.dds", 100, 2),
		testutil.Resource("c.asm", 100, 3),
	}}
	var events []ProgressEvent
	data, _ := encodeBytes(t, arc,
		SaveWithSplitThreshold(150),
		SaveWithProgress(func(ev ProgressEvent) { events = append(events, ev) }),
	)

	require.NotEmpty(t, events)
	assert.Equal(t, StagePartitioning, events[0].Stage)
	assert.Equal(t, StageWriting, events[len(events)-1].Stage)
	assert.EqualValues(t, len(data), events[len(events)-1].Bytes)

	var packed []int
	for _, ev := range events {
		if ev.Stage == StagePacking {
			packed = append(packed, ev.SubArchive)
		}
	}
	assert.Equal(t, []int{0, 1, rootIndex}, packed)

	var read []int
	decodeBytes(t, data, DecodeWithProgress(func(ev ProgressEvent) {
		assert.Equal(t, StageReading, ev.Stage)
		read = append(read, ev.SubArchive)
	}))
	assert.Equal(t, []int{rootIndex, 0, 1}, read)
}

func TestDecodeCorrupt(t *testing.T) {
	t.Parallel()

	arc := &Archive{Resources: []Resource{
		testutil.Resource("a.dds", 300, 1),
		testutil.Resource("b.asm", 300, 2),
	}}
	good, _ := encodeBytes(t, arc, SaveWithSplitThreshold(100))

	t.Run("bad signature", func(t *testing.T) {
		t.Parallel()
		data := bytes.Clone(good)
		copy(data, "PACy")
		_, err := Decode(bytes.NewReader(data), int64(len(data)))
		require.ErrorIs(t, err, ErrSignature)
	})

	t.Run("truncated", func(t *testing.T) {
		t.Parallel()
		data := good[:len(good)-32]
		_, err := Decode(bytes.NewReader(data), int64(len(data)))
		require.ErrorIs(t, err, ErrCorrupt)
	})

	t.Run("too short for a header", func(t *testing.T) {
		t.Parallel()
		_, err := Decode(bytes.NewReader(good[:10]), 10)
		require.ErrorIs(t, err, ErrCorrupt)
	})

	t.Run("root offset out of range", func(t *testing.T) {
		t.Parallel()
		data := bytes.Clone(good)
		binary.LittleEndian.PutUint32(data[0x10:], uint32(len(data)))
		_, err := Decode(bytes.NewReader(data), int64(len(data)))
		require.ErrorIs(t, err, ErrCorrupt)
	})

	t.Run("mangled lz4 block", func(t *testing.T) {
		t.Parallel()
		data := bytes.Clone(good)
		rootOffset := binary.LittleEndian.Uint32(data[0x10:])
		for i := rootOffset; i < rootOffset+16; i++ {
			data[i] = 0xFF
		}
		_, err := Decode(bytes.NewReader(data), int64(len(data)))
		require.Error(t, err)
	})
}

func TestDecodeFromReaderAtReturningEOF(t *testing.T) {
	t.Parallel()

	arc := &Archive{Resources: []Resource{testutil.Resource("a.dds", 40, 1)}}
	data, _ := encodeBytes(t, arc, SaveWithCompression(CompressionNone))

	src := testutil.NewMockByteSource(data)
	got, err := Decode(src, src.Size())
	require.NoError(t, err)
	assert.Equal(t, arc.Resources, got.Resources)
}

func TestDecodeRejectsMissingSplitRecords(t *testing.T) {
	t.Parallel()

	arc := &Archive{Resources: []Resource{
		testutil.Resource("a.dds", 64, 1),
		testutil.Resource("c.asm", 64, 2),
	}}
	good, res := encodeBytes(t, arc, SaveWithCompression(CompressionNone), SaveWithSplitThreshold(10))
	require.Len(t, res.Splits, 1)
	rootOffset := binary.LittleEndian.Uint32(good[0x10:])

	t.Run("split table dropped", func(t *testing.T) {
		t.Parallel()
		data := bytes.Clone(good)
		binary.LittleEndian.PutUint32(data[rootOffset+0x2C:], 0)
		_, err := Decode(bytes.NewReader(data), int64(len(data)))
		require.ErrorIs(t, err, ErrCorrupt)
		assert.Contains(t, err.Error(), "a.dds")
	})

	t.Run("split not tagged as split", func(t *testing.T) {
		t.Parallel()
		data := bytes.Clone(good)
		splitOffset := header.ContainerLength
		binary.LittleEndian.PutUint16(data[splitOffset+0x28:], uint16(header.KindNoSplits))
		_, err := Decode(bytes.NewReader(data), int64(len(data)))
		require.ErrorIs(t, err, ErrCorrupt)
	})
}

func TestDecodeRejectsRootTaggedAsSplit(t *testing.T) {
	t.Parallel()

	arc := &Archive{Resources: []Resource{testutil.Resource("a.dds", 16, 1)}}
	data, _ := encodeBytes(t, arc, SaveWithCompression(CompressionNone))
	rootOffset := binary.LittleEndian.Uint32(data[0x10:])
	binary.LittleEndian.PutUint16(data[rootOffset+0x28:], uint16(header.KindIsSplit))

	_, err := Decode(bytes.NewReader(data), int64(len(data)))
	require.ErrorIs(t, err, ErrCorrupt)
}
