package search

import (
	"fmt"
	"math"
	"sort"

	"github.com/ChrisMcGann/pepsearch/pkg/core"
)

// scanTable is the read-only view of the scans shared by all workers.
type scanTable struct {
	scans  []*core.Scan
	tic    []float64
	order  []int     // scan indexes by ascending precursor mass
	masses []float64 // precursor masses in that order
}

func newScanTable(scans []*core.Scan) (*scanTable, error) {
	t := &scanTable{
		scans:  scans,
		tic:    make([]float64, len(scans)),
		order:  make([]int, len(scans)),
		masses: make([]float64, len(scans)),
	}
	for i, s := range scans {
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("scan %d: %w", i, err)
		}
		t.tic[i] = s.TotalIonCurrent()
		t.order[i] = i
	}
	sort.SliceStable(t.order, func(a, b int) bool {
		return scans[t.order[a]].PrecursorMass < scans[t.order[b]].PrecursorMass
	})
	for k, i := range t.order {
		t.masses[k] = scans[i].PrecursorMass
	}
	return t, nil
}

// inRange returns the positions in order whose precursor mass lies in
// [lo, hi], widened slightly so values at an interval edge are never missed.
// The acceptor makes the final decision.
func (t *scanTable) inRange(lo, hi float64) (from, to int) {
	lo -= slack(lo)
	hi += slack(hi)
	from = sort.SearchFloat64s(t.masses, lo)
	to = sort.Search(len(t.masses), func(i int) bool { return t.masses[i] > hi })
	return from, to
}

func slack(x float64) float64 {
	if math.IsInf(x, 0) {
		return 0
	}
	return math.Abs(x)*1e-12 + 1e-9
}
