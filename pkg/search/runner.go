package search

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"

	"golang.org/x/sync/errgroup"
)

// PartitionError reports the failure of one partition. Slots written by other
// partitions are unaffected.
type PartitionError struct {
	Partition int
	Err       error
}

func (e *PartitionError) Error() string {
	return fmt.Sprintf("partition %d: %v", e.Partition, e.Err)
}

func (e *PartitionError) Unwrap() error { return e.Err }

// runPartitions calls fn for every partition on at most threads goroutines.
// Every partition runs even if another fails; failures, including panics,
// are joined into the returned error.
func runPartitions(ctx context.Context, n, threads int, fn func(ctx context.Context, part int) error) error {
	errs := make([]error, n)

	var g errgroup.Group
	g.SetLimit(threads)
	for part := 0; part < n; part++ {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("panic: %v\n%s", r, debug.Stack())
				}
				if err != nil {
					errs[part] = &PartitionError{Partition: part, Err: err}
				}
			}()
			if err := ctx.Err(); err != nil {
				return err
			}
			return fn(ctx, part)
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}
