package pactype

// Resource is a named payload stored in an archive.
type Resource struct {
	// Name is the full resource name including its extension
	// (e.g., "ui_menu_title.dds").
	Name string

	// Data is the opaque payload.
	Data []byte
}

// Block records the lengths of one independently compressed chunk.
type Block struct {
	CompressedLength uint32
	Length           uint32
}
