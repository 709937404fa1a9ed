// Package testutil holds helpers shared by pacx tests.
package testutil

import (
	"io"
	"math/rand/v2"
	"slices"
	"strings"
	"sync"

	"github.com/meigma/pacx/internal/pactype"
)

// MockByteSource implements a simple in-memory byte source for tests.
type MockByteSource struct {
	data []byte
}

// NewMockByteSource returns a byte source backed by the provided data.
func NewMockByteSource(data []byte) *MockByteSource {
	return &MockByteSource{data: data}
}

// ReadAt implements io.ReaderAt semantics over the backing slice.
func (m *MockByteSource) ReadAt(p []byte, off int64) (int, error) {
	if off >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n := copy(p, m.data[off:])
	if off+int64(n) >= int64(len(m.data)) {
		return n, io.EOF
	}
	return n, nil
}

// Size returns the total size of the backing data.
func (m *MockByteSource) Size() int64 {
	return int64(len(m.data))
}

// SequenceIDs hands out identifiers from a fixed list, cycling when it runs
// out. It is safe for concurrent use.
type SequenceIDs struct {
	mu  sync.Mutex
	ids []uint32
	pos int
}

// NewSequenceIDs returns a source yielding ids in order.
func NewSequenceIDs(ids ...uint32) *SequenceIDs {
	return &SequenceIDs{ids: ids}
}

// Uint32 returns the next identifier.
func (s *SequenceIDs) Uint32() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.ids[s.pos%len(s.ids)]
	s.pos++
	return id
}

// Resource builds a resource whose bytes are size copies of fill.
func Resource(name string, size int, fill byte) pactype.Resource {
	data := make([]byte, size)
	for i := range data {
		data[i] = fill
	}
	return pactype.Resource{Name: name, Data: data}
}

// RandomResources returns n resources with unique names drawn from a small
// alphabet so that names share prefixes, one of exts as extension, and up to
// maxLen random bytes.
func RandomResources(rng *rand.Rand, n int, exts []string, maxLen int) []pactype.Resource {
	const alphabet = "abc_"
	seen := make(map[string]struct{}, n)
	out := make([]pactype.Resource, 0, n)
	for len(out) < n {
		var b strings.Builder
		for range 1 + rng.IntN(12) {
			b.WriteByte(alphabet[rng.IntN(len(alphabet))])
		}
		name := b.String() + exts[rng.IntN(len(exts))]
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}

		data := make([]byte, rng.IntN(maxLen+1))
		for i := range data {
			data[i] = byte(rng.UintN(256))
		}
		out = append(out, pactype.Resource{Name: name, Data: data})
	}
	return out
}

// Sorted returns a copy of resources ordered by name, for comparing
// resource sets regardless of order.
func Sorted(resources []pactype.Resource) []pactype.Resource {
	out := slices.Clone(resources)
	slices.SortFunc(out, func(a, b pactype.Resource) int {
		return strings.Compare(a.Name, b.Name)
	})
	return out
}

// Names returns the resource names in order.
func Names(resources []pactype.Resource) []string {
	names := make([]string, len(resources))
	for i, r := range resources {
		names[i] = r.Name
	}
	return names
}
