package search

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/ChrisMcGann/pepsearch/pkg/core"
	"github.com/ChrisMcGann/pepsearch/pkg/index"
	"github.com/ChrisMcGann/pepsearch/pkg/massdiff"
	"github.com/ChrisMcGann/pepsearch/pkg/psm"
)

// RunModern searches every scan against prebuilt fragment indexes, one per
// partition. Each peak votes for the candidates in its tolerance window; the
// vote is an upper bound on the exact score, so only candidates whose vote can
// still reach the best exact score seen for their notch are re-scored.
func RunModern(ctx context.Context, indexes []*index.Index, scans []*core.Scan, params Params) (*psm.Aggregator, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	for i, idx := range indexes {
		if idx.Released() {
			return nil, fmt.Errorf("partition %d: %w", i, index.ErrReleased)
		}
		if err := idx.CheckResolution(params.Index.BinsPerDalton); err != nil {
			return nil, fmt.Errorf("partition %d: %w", i, err)
		}
		if idx.Options().Terminus != params.Scorer.Terminus {
			return nil, &core.ConfigError{Field: "terminus", Message: fmt.Sprintf("partition %d indexed for %s", i, idx.Options().Terminus)}
		}
	}
	table, err := newScanTable(scans)
	if err != nil {
		return nil, err
	}
	log := params.logger().With("engine", Modern.String())
	agg := psm.NewAggregator(scans, params.Acceptor.NumNotches())

	start := time.Now()
	err = runPartitions(ctx, len(indexes), params.Threads, func(ctx context.Context, part int) error {
		partStart := time.Now()
		w := newModernWorker(indexes[part], table, agg, &params)
		for i := range table.scans {
			w.search(i)
		}
		log.Debug("partition searched", "partition", part, "candidates", indexes[part].Len(),
			"rescored", w.rescored, "elapsed", time.Since(partStart))
		return nil
	})
	log.Info("search finished", "scans", len(scans), "partitions", len(indexes),
		"psms", agg.Count(), "elapsed", time.Since(start))
	return agg, err
}

type vote struct {
	pos uint32
	acc float64
}

// modernWorker owns the per-partition accumulator.
type modernWorker struct {
	idx    *index.Index
	table  *scanTable
	agg    *psm.Aggregator
	params *Params

	acc      []float64
	touched  []uint32
	byNotch  [][]vote
	rescored int
}

func newModernWorker(idx *index.Index, table *scanTable, agg *psm.Aggregator, params *Params) *modernWorker {
	return &modernWorker{
		idx:     idx,
		table:   table,
		agg:     agg,
		params:  params,
		acc:     make([]float64, idx.Len()),
		byNotch: make([][]vote, params.Acceptor.NumNotches()),
	}
}

func (w *modernWorker) search(i int) {
	scan := w.table.scans[i]
	tic := w.table.tic[i]
	scorer := &w.params.Scorer
	tol := scorer.Tolerance
	compOffset := scan.PrecursorMass + scorer.ComplementaryShift

	for _, p := range scan.Peaks {
		weight := scorer.PeakWeight(p, tic)
		lo, hi := tol.Bounds(p.Mass)
		w.vote(lo, hi, weight)
		if scorer.Complementary {
			w.vote(compOffset-hi, compOffset-lo, weight)
		}
	}

	for _, pos := range w.touched {
		cand := w.idx.Candidate(pos)
		notch := w.params.Acceptor.Accepts(scan.PrecursorMass, cand.Mass)
		if notch == massdiff.Reject {
			continue
		}
		w.byNotch[notch] = append(w.byNotch[notch], vote{pos: pos, acc: w.acc[pos]})
	}

	for notch, votes := range w.byNotch {
		if len(votes) > 0 {
			w.rescore(i, scan, tic, notch, votes)
		}
		w.byNotch[notch] = votes[:0]
	}

	for _, pos := range w.touched {
		w.acc[pos] = 0
	}
	w.touched = w.touched[:0]
}

// vote adds weight to every candidate with a fragment in [lo, hi].
func (w *modernWorker) vote(lo, hi, weight float64) {
	first, last := w.idx.Window(lo, hi)
	for b := first; b <= last; b++ {
		for _, pos := range w.idx.Entries(b) {
			if w.acc[pos] == 0 {
				w.touched = append(w.touched, pos)
			}
			w.acc[pos] += weight
		}
	}
}

// rescore computes exact scores in descending vote order until no remaining
// vote can reach the best score for this (scan, notch).
func (w *modernWorker) rescore(i int, scan *core.Scan, tic float64, notch int, votes []vote) {
	sort.Slice(votes, func(a, b int) bool {
		if votes[a].acc != votes[b].acc {
			return votes[a].acc > votes[b].acc
		}
		return w.idx.Candidate(votes[a].pos).ID < w.idx.Candidate(votes[b].pos).ID
	})

	threshold := w.params.MinScore
	if best, ok := w.agg.BestScore(i, notch); ok && best > threshold {
		threshold = best
	}
	for _, v := range votes {
		// Vote and exact score sum the same weights in different order.
		if v.acc*(1+1e-9)+1e-9 < threshold {
			break
		}
		cand := w.idx.Candidate(v.pos)
		w.rescored++
		s, ions := w.params.Scorer.Score(scan, tic, cand)
		if s < w.params.MinScore {
			continue
		}
		w.agg.Offer(i, notch, s, cand.ID, ions)
		if s > threshold {
			threshold = s
		}
	}
}
