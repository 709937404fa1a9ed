// Package entry encodes the per-resource metadata records of a sub-archive
// and the payload bytes they point at.
package entry

import (
	"bytes"
	"fmt"

	"github.com/meigma/pacx/internal/bin"
	"github.com/meigma/pacx/internal/ledger"
	"github.com/meigma/pacx/internal/pactype"
	"github.com/meigma/pacx/internal/sizing"
)

// Size is the encoded size of one entry record.
const Size = 48

// PayloadAlignment is the boundary every payload starts on.
const PayloadAlignment = 16

// Tag describes where an entry's bytes live and what they contain.
type Tag uint64

const (
	// Regular entries carry their payload in this sub-archive.
	Regular Tag = iota

	// NotHere entries name a resource whose bytes live in a split.
	NotHere

	// BINAFile entries carry a payload that starts with the BINA signature.
	BINAFile
)

// String returns the tag name.
func (t Tag) String() string {
	switch t {
	case Regular:
		return "regular"
	case NotHere:
		return "not-here"
	case BINAFile:
		return "bina"
	default:
		return fmt.Sprintf("tag(%d)", uint64(t))
	}
}

var binaSignature = []byte("BINA")

// DetectTag classifies a payload. Entries whose bytes live elsewhere are
// NotHere regardless of content.
func DetectTag(data []byte, notHere bool) Tag {
	if notHere {
		return NotHere
	}
	if bytes.HasPrefix(data, binaSignature) {
		return BINAFile
	}
	return Regular
}

// Entry is a decoded or pending entry record.
type Entry struct {
	ID              uint32
	Length          uint64
	DataOffset      int64
	ExtensionOffset int64
	Extension       string
	Tag             Tag

	// Data holds the payload; nil for NotHere entries.
	Data []byte
}

// New returns an entry for data.
func New(data []byte, notHere bool) *Entry {
	e := &Entry{
		Length: uint64(len(data)),
		Tag:    DetectTag(data, notHere),
	}
	if !notHere {
		e.Data = data
	}
	return e
}

func payloadTag(key string) string {
	return key + "/payload"
}

// Write emits the entry record. The payload pointer is reserved under key
// and resolved by WriteData.
func (e *Entry) Write(w *bin.Writer, l *ledger.Ledger, key, extension string, id uint32) error {
	w.WriteU32(id)
	w.WriteU64(e.Length)
	w.WriteU32(0)
	if e.Tag == NotHere {
		w.WriteU64(0)
	} else if err := l.Reserve(payloadTag(key)); err != nil {
		return err
	}
	w.WriteU64(0)
	if err := l.Intern(extension); err != nil {
		return err
	}
	w.WriteU64(uint64(e.Tag))
	return nil
}

// WriteData emits the payload, aligned to PayloadAlignment. NotHere entries
// write nothing.
func (e *Entry) WriteData(w *bin.Writer, l *ledger.Ledger, key string) error {
	if e.Tag == NotHere {
		return nil
	}
	w.Align(PayloadAlignment)
	if err := l.Resolve(payloadTag(key), ledger.Absolute); err != nil {
		return err
	}
	_, err := w.Write(e.Data)
	return err
}

// Read decodes an entry record at the reader's current position, including
// its extension string. The payload is left to ReadData.
func Read(r *bin.Reader) (*Entry, error) {
	var e Entry
	var err error
	if e.ID, err = r.U32(); err != nil {
		return nil, err
	}
	if e.Length, err = r.U64(); err != nil {
		return nil, err
	}
	if err = r.Skip(4); err != nil {
		return nil, err
	}
	dataOffset, err := r.U64()
	if err != nil {
		return nil, err
	}
	if err = r.Skip(8); err != nil {
		return nil, err
	}
	extOffset, err := r.U64()
	if err != nil {
		return nil, err
	}
	tag, err := r.U64()
	if err != nil {
		return nil, err
	}
	e.Tag = Tag(tag)
	if e.Tag > BINAFile {
		return nil, fmt.Errorf("%w: unknown entry tag %d", pactype.ErrCorrupt, tag)
	}
	e.DataOffset = int64(dataOffset)   //nolint:gosec // bounds-checked on use
	e.ExtensionOffset = int64(extOffset) //nolint:gosec // bounds-checked on use
	if e.Extension, err = r.CStringAt(e.ExtensionOffset); err != nil {
		return nil, err
	}
	return &e, nil
}

// ReadData loads the payload for entries that carry one.
func (e *Entry) ReadData(r *bin.Reader) error {
	if e.Tag == NotHere {
		return nil
	}
	n, err := sizing.ToInt(e.Length)
	if err != nil {
		return err
	}
	if err := r.Seek(e.DataOffset); err != nil {
		return err
	}
	data, err := r.Bytes(n)
	if err != nil {
		return fmt.Errorf("read payload: %w", err)
	}
	e.Data = data
	return nil
}
