package index

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/ChrisMcGann/pepsearch/pkg/core"
)

// Partition splits candidates into at most n mass-range partitions of nearly
// equal size. Candidates are ordered by SortByMass first, so each partition
// covers a contiguous mass range and NaN-mass candidates land in the last one.
// The input slice is not modified.
func Partition(candidates []*core.CandidatePeptide, n int) [][]*core.CandidatePeptide {
	if n < 1 {
		n = 1
	}
	sorted := append([]*core.CandidatePeptide(nil), candidates...)
	SortByMass(sorted)
	if n > len(sorted) {
		n = max(len(sorted), 1)
	}

	parts := make([][]*core.CandidatePeptide, 0, n)
	for i := 0; i < n; i++ {
		lo := i * len(sorted) / n
		hi := (i + 1) * len(sorted) / n
		parts = append(parts, sorted[lo:hi])
	}
	return parts
}

// BuildAll builds one index per partition using up to threads goroutines.
// The first build error cancels the rest and is returned.
func BuildAll(ctx context.Context, partitions [][]*core.CandidatePeptide, opts Options, threads int) ([]*Index, error) {
	if threads < 1 {
		threads = 1
	}
	out := make([]*Index, len(partitions))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(threads)
	for i, part := range partitions {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			idx, err := Build(part, opts)
			if err != nil {
				return fmt.Errorf("partition %d: %w", i, err)
			}
			out[i] = idx
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// ReleaseAll releases every index.
func ReleaseAll(indexes []*Index) {
	for _, idx := range indexes {
		if idx != nil {
			idx.Release()
		}
	}
}
