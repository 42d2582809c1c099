package core

import (
	"fmt"
	"math"
)

// Terminus selects which cumulative fragment series take part in matching.
type Terminus int

const (
	// Both uses N-terminal and C-terminal fragments.
	Both Terminus = iota
	// NTerminal uses b (or c) fragments only.
	NTerminal
	// CTerminal uses y (or z•) fragments only.
	CTerminal
)

func (t Terminus) String() string {
	switch t {
	case NTerminal:
		return "n"
	case CTerminal:
		return "c"
	default:
		return "both"
	}
}

// ParseTerminus parses "both", "n" or "c".
func ParseTerminus(s string) (Terminus, error) {
	switch s {
	case "", "both", "Both":
		return Both, nil
	case "n", "N":
		return NTerminal, nil
	case "c", "C":
		return CTerminal, nil
	}
	return Both, &ConfigError{Field: "terminus", Message: fmt.Sprintf("unknown fragmentation terminus %q", s)}
}

// CandidatePeptide is the compact form of one digestion product: its total
// mass and the two cumulative fragment-mass series. Mass is NaN when the
// sequence contains a residue of unknown mass.
type CandidatePeptide struct {
	ID    uint32
	Mass  float64
	NTerm []float64
	CTerm []float64

	// Labels carried through for reporting
	Sequence string
	Protein  string
	Decoy    bool
}

// Fragments returns the fragment series selected by the terminus.
func (c *CandidatePeptide) Fragments(t Terminus) (nTerm, cTerm []float64) {
	switch t {
	case NTerminal:
		return c.NTerm, nil
	case CTerminal:
		return nil, c.CTerm
	}
	return c.NTerm, c.CTerm
}

// Validate checks the fragment-ordering invariant: finite values ascending,
// NaN values only after the last finite one.
func (c *CandidatePeptide) Validate() error {
	for _, series := range []struct {
		name   string
		masses []float64
	}{{"NTerm", c.NTerm}, {"CTerm", c.CTerm}} {
		if err := checkFragmentSeries(series.masses); err != nil {
			return &ValidationError{
				Field:   fmt.Sprintf("candidate %d %s", c.ID, series.name),
				Message: err.Error(),
			}
		}
	}
	return nil
}

func checkFragmentSeries(masses []float64) error {
	sawNaN := false
	prev := math.Inf(-1)
	for i, m := range masses {
		if math.IsNaN(m) {
			sawNaN = true
			continue
		}
		if sawNaN {
			return fmt.Errorf("fragment %d follows an unknown-mass fragment", i)
		}
		if m < prev {
			return fmt.Errorf("fragment %d (%.6f) is below fragment %d (%.6f)", i, m, i-1, prev)
		}
		prev = m
	}
	return nil
}

// Name returns the label used in logs and reports.
func (c *CandidatePeptide) Name() string {
	if c.Sequence != "" {
		return c.Sequence
	}
	return fmt.Sprintf("#%d", c.ID)
}

// MatchedIon is one theoretical fragment that found an observed peak.
type MatchedIon struct {
	Terminus        Terminus // NTerminal or CTerminal series
	Number          int      // Fragment number, 1-based
	Complementary   bool     // Matched through the precursor complement
	TheoreticalMass float64
	ObservedMass    float64
	Intensity       float64
}

// Label returns an annotation like "b3", "y2" or "y2*" for complements.
func (m MatchedIon) Label() string {
	series := "b"
	if m.Terminus == CTerminal {
		series = "y"
	}
	label := fmt.Sprintf("%s%d", series, m.Number)
	if m.Complementary {
		label += "*"
	}
	return label
}
