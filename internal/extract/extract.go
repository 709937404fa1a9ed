// Package extract writes decoded resources to a destination concurrently.
package extract

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/meigma/pacx/internal/pactype"
)

// ErrUnsafeName is returned for resource names that would be written outside
// the destination directory.
var ErrUnsafeName = errors.New("extract: unsafe resource name")

// Sink receives resource content.
type Sink interface {
	// ShouldProcess returns false if the resource should be skipped.
	ShouldProcess(name string) bool

	// Writer returns a writer for the resource's content. The returned
	// Committer must have Commit called after a successful write, or Discard
	// on any error.
	Writer(name string) (Committer, error)
}

// Stats reports what Run did.
type Stats struct {
	Written int
	Skipped int
	Bytes   uint64
}

// Run writes every resource to sink using up to workers goroutines. Zero or
// negative workers uses GOMAXPROCS. Run stops at the first error.
func Run(ctx context.Context, resources []pactype.Resource, sink Sink, workers int) (Stats, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	var stats Stats
	todo := make([]pactype.Resource, 0, len(resources))
	for _, r := range resources {
		if sink.ShouldProcess(r.Name) {
			todo = append(todo, r)
		} else {
			stats.Skipped++
		}
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for _, r := range todo {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return put(sink, r)
		})
	}
	if err := eg.Wait(); err != nil {
		return stats, err
	}

	stats.Written = len(todo)
	for _, r := range todo {
		stats.Bytes += uint64(len(r.Data))
	}
	return stats, nil
}

func put(sink Sink, r pactype.Resource) error {
	w, err := sink.Writer(r.Name)
	if err != nil {
		return err
	}
	if _, err := w.Write(r.Data); err != nil {
		_ = w.Discard() //nolint:errcheck // write error takes precedence
		return fmt.Errorf("write %s: %w", r.Name, err)
	}
	return w.Commit()
}
