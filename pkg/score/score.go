// Package score matches theoretical fragment masses against observed peaks and
// turns the matches into a score. Both search engines use the same Scorer.
package score

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/ChrisMcGann/pepsearch/pkg/core"
)

// Variant selects the per-ion score contribution.
type Variant int

const (
	// Count scores one point per matched theoretical ion.
	Count Variant = iota
	// Intensity scores 1 + intensity/TIC per matched ion.
	Intensity
)

func (v Variant) String() string {
	if v == Intensity {
		return "intensity"
	}
	return "count"
}

// ParseVariant parses "count" or "intensity".
func ParseVariant(s string) (Variant, error) {
	switch strings.ToLower(s) {
	case "", "count":
		return Count, nil
	case "intensity", "morpheus":
		return Intensity, nil
	}
	return Count, &core.ConfigError{Field: "scoring", Message: fmt.Sprintf("unknown scoring variant %q", s)}
}

// Scorer holds everything that determines a score besides the scan and the
// candidate. The zero value counts b/y matches on both termini.
type Scorer struct {
	Tolerance          core.Tolerance
	Variant            Variant
	Terminus           core.Terminus
	Complementary      bool
	ComplementaryShift float64
}

// PeakWeight is the contribution of one ion matched to a peak. It is also the
// largest amount any single ion can contribute through that peak.
func (s *Scorer) PeakWeight(p core.Peak, tic float64) float64 {
	if s.Variant == Intensity && tic > 0 {
		return 1 + p.Intensity/tic
	}
	return 1
}

// Score matches the candidate's fragments (and, when enabled, their
// complements relative to the scan's precursor) against the scan peaks. tic is
// the scan's total ion current. Matched ions are ordered N-terminal series,
// C-terminal series, then complements in the same order.
func (s *Scorer) Score(scan *core.Scan, tic float64, cand *core.CandidatePeptide) (float64, []core.MatchedIon) {
	nTerm, cTerm := cand.Fragments(s.Terminus)

	var ions []core.MatchedIon
	ions = s.appendMatches(ions, scan.Peaks, nTerm, core.NTerminal, false, 0)
	ions = s.appendMatches(ions, scan.Peaks, cTerm, core.CTerminal, false, 0)
	if s.Complementary {
		offset := scan.PrecursorMass + s.ComplementaryShift
		ions = s.appendMatches(ions, scan.Peaks, nTerm, core.NTerminal, true, offset)
		ions = s.appendMatches(ions, scan.Peaks, cTerm, core.CTerminal, true, offset)
	}

	var total float64
	for _, ion := range ions {
		total += s.PeakWeight(core.Peak{Mass: ion.ObservedMass, Intensity: ion.Intensity}, tic)
	}
	return total, ions
}

func (s *Scorer) appendMatches(ions []core.MatchedIon, peaks []core.Peak, fragments []float64, term core.Terminus, comp bool, offset float64) []core.MatchedIon {
	for i, f := range fragments {
		if math.IsNaN(f) {
			continue
		}
		theo := f
		if comp {
			theo = offset - f
		}
		j := ClosestPeak(peaks, theo, s.Tolerance)
		if j < 0 {
			continue
		}
		ions = append(ions, core.MatchedIon{
			Terminus:        term,
			Number:          i + 1,
			Complementary:   comp,
			TheoreticalMass: theo,
			ObservedMass:    peaks[j].Mass,
			Intensity:       peaks[j].Intensity,
		})
	}
	return ions
}

// ClosestPeak returns the index of the peak nearest to mass among those within
// tolerance, or -1. Peaks must be sorted by mass. Equidistant peaks resolve to
// the lower mass.
func ClosestPeak(peaks []core.Peak, mass float64, tol core.Tolerance) int {
	if math.IsNaN(mass) || len(peaks) == 0 {
		return -1
	}
	i := sort.Search(len(peaks), func(i int) bool { return peaks[i].Mass >= mass })

	best, bestDiff := -1, math.Inf(1)
	for _, j := range [2]int{i - 1, i} {
		if j < 0 || j >= len(peaks) || !tol.Within(peaks[j].Mass, mass) {
			continue
		}
		if d := math.Abs(peaks[j].Mass - mass); d < bestDiff {
			best, bestDiff = j, d
		}
	}
	return best
}

// CountMatches is the raw form of the baseline score: the number of
// theoretical masses with at least one peak within tolerance. NaN masses never
// match.
func CountMatches(peaks []core.Peak, theoretical []float64, tol core.Tolerance) int {
	n := 0
	for _, m := range theoretical {
		if ClosestPeak(peaks, m, tol) >= 0 {
			n++
		}
	}
	return n
}
