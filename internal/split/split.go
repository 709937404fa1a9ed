// Package split decides which sub-archive every resource is stored in.
package split

import (
	"fmt"
	"log/slog"

	"github.com/meigma/pacx/internal/category"
	"github.com/meigma/pacx/internal/pactype"
)

// DefaultThreshold is the default split size limit in payload bytes.
const DefaultThreshold = 0x1E00000

// Item is a resource accepted for packing.
type Item struct {
	Resource      pactype.Resource
	Base          string
	Ext           string
	Category      string
	RootExclusive bool
}

// Plan assigns resources to the root and to splits.
type Plan struct {
	// Root lists every accepted resource in input order. When splits exist,
	// entries that are not root-exclusive are recorded in the root without
	// their bytes.
	Root []Item

	// Splits partitions the non-root-exclusive resources.
	Splits [][]Item

	// Skipped names resources dropped for lacking a known extension.
	Skipped []string
}

// HasSplits reports whether any split sub-archive will be written.
func (p *Plan) HasSplits() bool { return len(p.Splits) > 0 }

// InRoot reports whether the item's bytes are stored in the root sub-archive.
func (p *Plan) InRoot(it *Item) bool {
	return !p.HasSplits() || it.RootExclusive
}

// Make classifies resources and partitions the splittable ones so that each
// split holds less than threshold payload bytes, unless a single resource is
// larger on its own. A threshold of zero disables splitting.
func Make(resources []pactype.Resource, threshold uint64, logger *slog.Logger) (*Plan, error) {
	p := &Plan{Root: make([]Item, 0, len(resources))}
	var splittable []Item

	for i, res := range resources {
		if res.Name == "" {
			return nil, fmt.Errorf("%w: empty resource name at index %d", pactype.ErrMalformedInput, i)
		}
		base, ext, ok := category.Split(res.Name)
		if !ok {
			logger.Warn("skipped resource without extension", "name", res.Name)
			p.Skipped = append(p.Skipped, res.Name)
			continue
		}
		cat, ok := category.Lookup(ext)
		if !ok {
			logger.Warn("skipped resource with unsupported extension", "name", res.Name, "extension", ext)
			p.Skipped = append(p.Skipped, res.Name)
			continue
		}
		it := Item{
			Resource:      res,
			Base:          base,
			Ext:           ext,
			Category:      cat,
			RootExclusive: category.RootExclusive(ext),
		}
		p.Root = append(p.Root, it)
		if !it.RootExclusive {
			splittable = append(splittable, it)
		}
	}

	if threshold == 0 || len(splittable) == 0 {
		return p, nil
	}

	var current []Item
	var size uint64
	for _, it := range splittable {
		n := uint64(len(it.Resource.Data))
		if len(current) > 0 && size+n >= threshold {
			p.Splits = append(p.Splits, current)
			current, size = nil, 0
		}
		current = append(current, it)
		size += n
	}
	p.Splits = append(p.Splits, current)
	return p, nil
}
