// Package pac builds and parses individual PACx sub-archives.
//
// A sub-archive is laid out as:
//
//	sub-header (0x30 bytes)
//	type tree, file trees, data index tables, child index tables
//	split table (root sub-archives with splits only)
//	file entries
//	string table (padded to 8 bytes)
//	payloads (each aligned to 16 bytes, section padded to 8)
//	relocation directory
//
// The type tree groups resources by category; each of its data nodes points
// at a file tree whose data nodes point at file entries.
package pac
