// Package ledger implements the reserve-now, resolve-later offset bookkeeping
// used while a sub-archive is written in a single pass.
//
// A Ledger sits on top of a bin.Writer. Callers Reserve an 8-byte pointer
// slot under an opaque tag, keep writing, and later Resolve the tag to the
// position the pointer must refer to. Strings are interned into a
// deduplicated table, emitted by FlushStrings or else by Finalize, and every
// absolute pointer slot is recorded in a relocation directory emitted by
// Finalize.
package ledger

import (
	"errors"
	"fmt"
	"slices"

	"github.com/meigma/pacx/internal/bin"
	"github.com/meigma/pacx/internal/pactype"
	"github.com/meigma/pacx/internal/sizing"
)

// PointerSize is the width of every pointer slot.
const PointerSize = 8

// Base selects what a resolved offset is measured from.
type Base uint8

const (
	// Absolute offsets are measured from the start of the buffer and are
	// listed in the relocation directory.
	Absolute Base = iota

	// Relative offsets are measured from the ledger base and are not
	// relocated.
	Relative
)

// Resolver computes a deferred pointer value once the blob is complete.
// blobLen is the final length of the buffer after Finalize wrote its tables.
type Resolver func(blobLen int64) (uint64, error)

// Tables reports the lengths of the sections written by Finalize.
type Tables struct {
	StringTableLength     uint32
	RelocationTableLength uint32
}

// Ledger tracks pending pointer patches for one buffer.
type Ledger struct {
	w         *bin.Writer
	base      int64
	slots     map[string]int64
	order     []string
	deferred  []deferredPatch
	strs      []stringRef
	relocs    []int64
	flushed   bool
	strLen    uint32
	finalized bool
}

type deferredPatch struct {
	tag     string
	pos     int64
	resolve Resolver
}

type stringRef struct {
	pos  int64
	text string
}

// ErrFinalized is returned when a ledger is used after Finalize.
var ErrFinalized = errors.New("ledger: already finalized")

// ErrStringsFlushed is returned when a string is interned after FlushStrings.
var ErrStringsFlushed = errors.New("ledger: string table already written")

// New returns a ledger writing to w. Relative offsets are measured from base.
func New(w *bin.Writer, base int64) *Ledger {
	return &Ledger{
		w:     w,
		base:  base,
		slots: make(map[string]int64),
	}
}

// Reserve writes a zero placeholder at the current position and records it
// under tag.
func (l *Ledger) Reserve(tag string) error {
	if l.finalized {
		return ErrFinalized
	}
	if _, ok := l.slots[tag]; ok {
		return fmt.Errorf("ledger: tag %q reserved twice", tag)
	}
	l.slots[tag] = l.w.Pos()
	l.order = append(l.order, tag)
	l.w.WriteZeros(PointerSize)
	return nil
}

// Resolve patches tag with the current write position.
func (l *Ledger) Resolve(tag string, base Base) error {
	return l.ResolveAt(tag, l.w.Pos(), base)
}

// ResolveAt patches tag with target, measured according to base.
func (l *Ledger) ResolveAt(tag string, target int64, base Base) error {
	pos, err := l.take(tag)
	if err != nil {
		return err
	}
	value := target
	if base == Relative {
		value -= l.base
	}
	if value < 0 {
		return fmt.Errorf("ledger: tag %q resolves before its base (%d)", tag, value)
	}
	l.w.PutU64(pos, uint64(value))
	if base == Absolute {
		l.relocs = append(l.relocs, pos)
	}
	return nil
}

// Defer hands tag to Finalize, which patches it with the value fn returns
// once the final blob length is known.
func (l *Ledger) Defer(tag string, fn Resolver) error {
	pos, err := l.take(tag)
	if err != nil {
		return err
	}
	l.deferred = append(l.deferred, deferredPatch{tag: tag, pos: pos, resolve: fn})
	return nil
}

// Intern writes a placeholder pointing at text in the string table.
// Identical texts share one table slot.
func (l *Ledger) Intern(text string) error {
	if l.finalized {
		return ErrFinalized
	}
	if l.flushed {
		return ErrStringsFlushed
	}
	l.strs = append(l.strs, stringRef{pos: l.w.Pos(), text: text})
	l.w.WriteZeros(PointerSize)
	return nil
}

func (l *Ledger) take(tag string) (int64, error) {
	if l.finalized {
		return 0, ErrFinalized
	}
	pos, ok := l.slots[tag]
	if !ok {
		return 0, fmt.Errorf("ledger: tag %q was not reserved", tag)
	}
	delete(l.slots, tag)
	return pos, nil
}

// FlushStrings writes the string table at the current position, padded to 8
// bytes, and patches every interned pointer. It returns the table length
// including padding. Later calls to Intern fail.
func (l *Ledger) FlushStrings() (uint32, error) {
	if l.finalized {
		return 0, ErrFinalized
	}
	if l.flushed {
		return 0, ErrStringsFlushed
	}
	l.flushed = true

	start := l.w.Pos()
	offsets := make(map[string]int64, len(l.strs))
	for _, ref := range l.strs {
		off, ok := offsets[ref.text]
		if !ok {
			off = l.w.Pos()
			offsets[ref.text] = off
			l.w.WriteCString(ref.text)
		}
		l.w.PutU64(ref.pos, uint64(off)) //nolint:gosec // positions are non-negative
		l.relocs = append(l.relocs, ref.pos)
	}
	l.w.Align(8)
	n, err := sizing.U32(l.w.Pos()-start, "string table length")
	if err != nil {
		return 0, err
	}
	l.strLen = n
	return n, nil
}

// Finalize writes the string table unless FlushStrings already did, then the
// relocation directory at the current position, then runs deferred
// resolvers. Every reserved tag must be resolved or deferred beforehand.
func (l *Ledger) Finalize() (Tables, error) {
	if l.finalized {
		return Tables{}, ErrFinalized
	}
	for _, tag := range l.order {
		if _, ok := l.slots[tag]; ok {
			return Tables{}, fmt.Errorf("%w: %s", pactype.ErrUnresolvedOffset, tag)
		}
	}
	if !l.flushed {
		if _, err := l.FlushStrings(); err != nil {
			return Tables{}, err
		}
	}
	l.finalized = true

	tables := Tables{StringTableLength: l.strLen}
	relocStart := l.w.Pos()
	slices.Sort(l.relocs)
	for _, pos := range l.relocs {
		p, err := sizing.U32(pos, "relocation offset")
		if err != nil {
			return Tables{}, err
		}
		l.w.WriteU32(p)
	}
	l.w.Align(8)
	var err error
	if tables.RelocationTableLength, err = sizing.U32(l.w.Pos()-relocStart, "relocation table length"); err != nil {
		return Tables{}, err
	}

	blobLen := int64(l.w.Len())
	for _, d := range l.deferred {
		v, err := d.resolve(blobLen)
		if err != nil {
			return Tables{}, fmt.Errorf("resolve %s: %w", d.tag, err)
		}
		l.w.PutU64(d.pos, v)
	}
	return tables, nil
}
