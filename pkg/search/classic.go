package search

import (
	"context"
	"fmt"
	"time"

	"github.com/ChrisMcGann/pepsearch/pkg/core"
	"github.com/ChrisMcGann/pepsearch/pkg/psm"
)

// RunClassic scores every candidate against every scan whose precursor mass
// the acceptor allows. Partitions are searched in parallel into one shared
// aggregator. On partition failure the aggregator is still returned together
// with the joined *PartitionError values.
func RunClassic(ctx context.Context, partitions [][]*core.CandidatePeptide, scans []*core.Scan, params Params) (*psm.Aggregator, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	for part, cands := range partitions {
		for _, cand := range cands {
			if err := cand.Validate(); err != nil {
				return nil, fmt.Errorf("partition %d: candidate %d: %w", part, cand.ID, err)
			}
		}
	}
	table, err := newScanTable(scans)
	if err != nil {
		return nil, err
	}
	log := params.logger().With("engine", Classic.String())
	agg := psm.NewAggregator(scans, params.Acceptor.NumNotches())

	start := time.Now()
	err = runPartitions(ctx, len(partitions), params.Threads, func(ctx context.Context, part int) error {
		partStart := time.Now()
		scored := 0
		for _, cand := range partitions[part] {
			scored += classicCandidate(cand, table, agg, &params)
		}
		log.Debug("partition searched", "partition", part, "candidates", len(partitions[part]),
			"scored", scored, "elapsed", time.Since(partStart))
		return nil
	})
	log.Info("search finished", "scans", len(scans), "partitions", len(partitions),
		"psms", agg.Count(), "elapsed", time.Since(start))
	return agg, err
}

// classicCandidate scores one candidate against all acceptable scans and
// returns how many scans it was scored against.
func classicCandidate(cand *core.CandidatePeptide, table *scanTable, agg *psm.Aggregator, params *Params) int {
	scored := 0
	for _, iv := range params.Acceptor.AllowedIntervals(cand.Mass) {
		from, to := table.inRange(iv.Min, iv.Max)
		for k := from; k < to; k++ {
			i := table.order[k]
			scan := table.scans[i]
			// A scan near a boundary may fall in two widened intervals;
			// only the one carrying the accepted notch scores it.
			if params.Acceptor.Accepts(scan.PrecursorMass, cand.Mass) != iv.Notch {
				continue
			}
			scored++
			s, ions := params.Scorer.Score(scan, table.tic[i], cand)
			if s >= params.MinScore {
				agg.Offer(i, iv.Notch, s, cand.ID, ions)
			}
		}
	}
	return scored
}
