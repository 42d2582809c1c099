package search

import (
	"context"
	"time"

	"github.com/ChrisMcGann/pepsearch/pkg/core"
	"github.com/ChrisMcGann/pepsearch/pkg/index"
	"github.com/ChrisMcGann/pepsearch/pkg/psm"
)

// Result is the outcome of one search.
type Result struct {
	Engine     Engine
	Aggregator *psm.Aggregator
	Elapsed    time.Duration
}

// PSMs returns the best PSM per scan (nil where nothing matched).
func (r *Result) PSMs() []*psm.PSM { return r.Aggregator.PSMs() }

// All returns every non-empty (scan, notch) slot.
func (r *Result) All() []*psm.PSM { return r.Aggregator.All() }

// Search partitions the candidates by mass and runs the selected engine. For
// the modern engine it builds one index per partition and releases them
// afterwards. A non-nil Result accompanies partition failures.
func Search(ctx context.Context, engine Engine, candidates []*core.CandidatePeptide, scans []*core.Scan, params Params) (*Result, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	log := params.logger()
	start := time.Now()
	partitions := index.Partition(candidates, params.Partitions)

	var agg *psm.Aggregator
	var err error
	switch engine {
	case Modern:
		var indexes []*index.Index
		indexes, err = index.BuildAll(ctx, partitions, params.Index, params.Threads)
		if err != nil {
			return nil, err
		}
		log.Info("fragment index built", "partitions", len(indexes), "candidates", len(candidates),
			"elapsed", time.Since(start))
		defer index.ReleaseAll(indexes)
		agg, err = RunModern(ctx, indexes, scans, params)
	default:
		agg, err = RunClassic(ctx, partitions, scans, params)
	}
	if agg == nil {
		return nil, err
	}
	return &Result{Engine: engine, Aggregator: agg, Elapsed: time.Since(start)}, err
}
