package pacx

import (
	"io"
	"sync"

	"github.com/opencontainers/go-digest"

	"github.com/meigma/pacx/internal/entry"
)

// InspectResult describes an archive's layout and contents without keeping
// resource bytes.
type InspectResult struct {
	Version     uint16
	BigEndian   bool
	ID          uint32
	FileSize    uint32
	Compression Compression

	// Minor is the container's minor format constant.
	Minor uint16

	Dependencies []string

	// SubArchives lists the root first, then the splits in table order.
	SubArchives []SubArchiveInfo

	// Resources lists every file entry of every sub-archive, including the
	// root's records of resources stored in splits.
	Resources []ResourceInfo

	// Lazy computed stats
	statsOnce    sync.Once
	totalLength  uint64
	storedLength uint64
	packedLength uint64
}

// SubArchiveInfo describes one sub-archive.
type SubArchiveInfo struct {
	// Index is -1 for the root.
	Index int

	// Name is the split's companion name; empty for the root.
	Name string

	Kind             string
	ID               uint32
	Offset           uint64
	CompressedLength uint32
	Length           uint32
	Blocks           int
	Entries          int
}

// ResourceInfo describes one file entry.
type ResourceInfo struct {
	Name     string
	Category string

	// SubArchive is the index of the sub-archive holding the entry; -1 for
	// the root.
	SubArchive int

	// Tag is "regular", "not-here" or "bina".
	Tag    string
	Length uint64

	// Digest is the sha256 of the resource bytes. Empty for entries whose
	// bytes live in another sub-archive.
	Digest digest.Digest
}

// Stored reports whether the entry carries its bytes.
func (r *ResourceInfo) Stored() bool {
	return r.Digest != ""
}

// Inspect decodes the archive structure and digests every stored resource.
func Inspect(r io.ReaderAt, size int64, opts ...DecodeOption) (*InspectResult, error) {
	c, err := readContainer(r, size, newDecodeConfig(opts))
	if err != nil {
		return nil, err
	}
	h := c.prefix.header
	res := &InspectResult{
		Version:      h.Version,
		BigEndian:    h.BigEndian,
		ID:           h.ID,
		FileSize:     h.FileSize,
		Compression:  h.Compression(),
		Minor:        h.Minor,
		Dependencies: c.prefix.deps,
	}
	for _, s := range c.subs {
		res.SubArchives = append(res.SubArchives, SubArchiveInfo{
			Index:            s.index,
			Name:             s.name,
			Kind:             s.parsed.Header.Kind.String(),
			ID:               s.parsed.Header.ID,
			Offset:           s.offset,
			CompressedLength: s.compressedLength,
			Length:           s.length,
			Blocks:           s.blocks,
			Entries:          len(s.parsed.Records),
		})
		for _, rec := range s.parsed.Records {
			info := ResourceInfo{
				Name:       rec.Name,
				Category:   rec.Category,
				SubArchive: s.index,
				Tag:        rec.Tag.String(),
				Length:     rec.Length,
			}
			if rec.Tag != entry.NotHere {
				info.Digest = digest.FromBytes(rec.Data)
			}
			res.Resources = append(res.Resources, info)
		}
	}
	return res, nil
}

// TotalLength returns the sum of the lengths of all stored resources.
// This requires iterating all entries on first call; the result is cached.
func (r *InspectResult) TotalLength() uint64 {
	r.computeStats()
	return r.totalLength
}

// CompressionRatio returns stored sub-archive bytes divided by their
// uncompressed length. Returns 1.0 for an archive with no sub-archive bytes.
func (r *InspectResult) CompressionRatio() float64 {
	r.computeStats()
	if r.packedLength == 0 {
		return 1.0
	}
	return float64(r.storedLength) / float64(r.packedLength)
}

func (r *InspectResult) computeStats() {
	r.statsOnce.Do(func() {
		for i := range r.Resources {
			if r.Resources[i].Stored() {
				r.totalLength += r.Resources[i].Length
			}
		}
		for _, s := range r.SubArchives {
			r.storedLength += uint64(s.CompressedLength)
			r.packedLength += uint64(s.Length)
		}
	})
}
