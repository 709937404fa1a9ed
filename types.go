package pacx

import "github.com/meigma/pacx/internal/pactype"

// Resource is a named blob of bytes. The name includes its extension,
// which starts at the first '.'.
type Resource = pactype.Resource

// Compression identifies how sub-archives are compressed.
type Compression = pactype.Compression

// Compression constants.
const (
	CompressionNone    = pactype.CompressionNone
	CompressionDeflate = pactype.CompressionDeflate
	CompressionLz4     = pactype.CompressionLz4
)

// ParseCompression maps "none", "deflate" or "lz4" to a Compression.
func ParseCompression(s string) (Compression, bool) {
	return pactype.ParseCompression(s)
}

// Archive is an in-memory resource set plus the names of the archives it
// depends on.
type Archive struct {
	Resources    []Resource
	Dependencies []string
}
