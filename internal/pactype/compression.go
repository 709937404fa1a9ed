package pactype

// Compression identifies how sub-archives are compressed.
type Compression uint8

const (
	CompressionNone Compression = iota
	CompressionDeflate
	CompressionLz4
)

// String returns the human-readable name of the compression format.
func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionDeflate:
		return "deflate"
	case CompressionLz4:
		return "lz4"
	default:
		return "unknown"
	}
}

// ParseCompression maps a case-sensitive lower-case name to a Compression.
func ParseCompression(s string) (Compression, bool) {
	switch s {
	case "none":
		return CompressionNone, true
	case "deflate":
		return CompressionDeflate, true
	case "lz4":
		return CompressionLz4, true
	default:
		return CompressionNone, false
	}
}
