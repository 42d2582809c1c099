// Package psm collects peptide-spectrum matches: one slot per (scan, notch)
// holding the best score and every candidate that reached it.
package psm

import (
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/ChrisMcGann/pepsearch/pkg/core"
)

// PSM is the best match for one scan under one notch. Candidates tied at the
// best score form its ambiguity group; the matched-ion detail belongs to the
// lowest candidate ID in the group.
type PSM struct {
	ScanIndex   int
	Scan        *core.Scan
	Notch       int
	Score       float64
	BestID      uint32
	MatchedIons []core.MatchedIon

	candidates *roaring.Bitmap
}

func newPSM(scanIndex int, scan *core.Scan, notch int, score float64, id uint32, ions []core.MatchedIon) *PSM {
	return &PSM{
		ScanIndex:   scanIndex,
		Scan:        scan,
		Notch:       notch,
		Score:       score,
		BestID:      id,
		MatchedIons: ions,
		candidates:  roaring.BitmapOf(id),
	}
}

// Outcome describes what an offer did to a slot.
type Outcome int

const (
	Discarded Outcome = iota
	Created
	Replaced
	Tied
)

func (o Outcome) String() string {
	switch o {
	case Created:
		return "created"
	case Replaced:
		return "replaced"
	case Tied:
		return "tied"
	}
	return "discarded"
}

// ReplaceIfBetter applies the update rule to this PSM: a higher score
// replaces the group, an equal score joins it, a lower score is dropped.
func (p *PSM) ReplaceIfBetter(score float64, id uint32, ions []core.MatchedIon) Outcome {
	switch {
	case score > p.Score:
		p.Score = score
		p.BestID = id
		p.MatchedIons = ions
		p.candidates = roaring.BitmapOf(id)
		return Replaced
	case score == p.Score:
		if !p.candidates.CheckedAdd(id) {
			return Discarded
		}
		if id < p.BestID {
			p.BestID = id
			p.MatchedIons = ions
		}
		return Tied
	}
	return Discarded
}

// CandidateIDs returns the ambiguity group in ascending order.
func (p *PSM) CandidateIDs() []uint32 { return p.candidates.ToArray() }

// NumCandidates is the size of the ambiguity group.
func (p *PSM) NumCandidates() int { return int(p.candidates.GetCardinality()) }

// Contains reports whether id is in the ambiguity group.
func (p *PSM) Contains(id uint32) bool { return p.candidates.Contains(id) }

// IsAmbiguous reports whether more than one candidate shares the score.
func (p *PSM) IsAmbiguous() bool { return p.NumCandidates() > 1 }

func (p *PSM) String() string {
	return fmt.Sprintf("%s notch=%d score=%.4f candidates=%v", p.Scan.Name(), p.Notch, p.Score, p.CandidateIDs())
}
