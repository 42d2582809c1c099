package psm

import (
	"sync"

	"github.com/ChrisMcGann/pepsearch/pkg/core"
)

type slot struct {
	mu  sync.Mutex
	psm *PSM
}

// Aggregator holds one slot per (scan, notch). Offer may be called from any
// number of goroutines; each slot is updated under its own lock and the final
// contents do not depend on the order of offers.
type Aggregator struct {
	scans   []*core.Scan
	notches int
	slots   []slot
}

// NewAggregator sizes the slot array for the scans and the acceptor's notch
// count.
func NewAggregator(scans []*core.Scan, notches int) *Aggregator {
	if notches < 1 {
		notches = 1
	}
	return &Aggregator{
		scans:   scans,
		notches: notches,
		slots:   make([]slot, len(scans)*notches),
	}
}

// NumScans returns the number of scan slots.
func (a *Aggregator) NumScans() int { return len(a.scans) }

// NumNotches returns the number of notches per scan.
func (a *Aggregator) NumNotches() int { return a.notches }

// Offer merges a scored candidate into the (scan, notch) slot. The ion slice
// is owned by the aggregator afterwards.
func (a *Aggregator) Offer(scanIndex, notch int, score float64, id uint32, ions []core.MatchedIon) Outcome {
	s := &a.slots[scanIndex*a.notches+notch]
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.psm == nil {
		s.psm = newPSM(scanIndex, a.scans[scanIndex], notch, score, id, ions)
		return Created
	}
	return s.psm.ReplaceIfBetter(score, id, ions)
}

// BestScore returns the slot's current score, or false when it is empty.
func (a *Aggregator) BestScore(scanIndex, notch int) (float64, bool) {
	s := &a.slots[scanIndex*a.notches+notch]
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.psm == nil {
		return 0, false
	}
	return s.psm.Score, true
}

// Get returns the PSM in a slot, or nil.
func (a *Aggregator) Get(scanIndex, notch int) *PSM {
	s := &a.slots[scanIndex*a.notches+notch]
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.psm
}

// All returns every non-empty slot ordered by scan, then notch. Call it after
// the search has finished.
func (a *Aggregator) All() []*PSM {
	var out []*PSM
	for i := range a.slots {
		if p := a.Get(i/a.notches, i%a.notches); p != nil {
			out = append(out, p)
		}
	}
	return out
}

// PSMs returns one entry per scan: the best-scoring notch, with ties going to
// the lower notch. Scans without a match are nil.
func (a *Aggregator) PSMs() []*PSM {
	out := make([]*PSM, len(a.scans))
	for i := range a.scans {
		for n := 0; n < a.notches; n++ {
			p := a.Get(i, n)
			if p != nil && (out[i] == nil || p.Score > out[i].Score) {
				out[i] = p
			}
		}
	}
	return out
}

// Count returns the number of scans with at least one match.
func (a *Aggregator) Count() int {
	n := 0
	for _, p := range a.PSMs() {
		if p != nil {
			n++
		}
	}
	return n
}
