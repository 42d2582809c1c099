package massdiff

import (
	"fmt"
	"math"
	"sort"

	"github.com/ChrisMcGann/pepsearch/pkg/core"
)

// Dot accepts when the observed mass lies within tolerance of candidate mass
// plus one of a fixed list of offsets (isotope errors, known deltas). The
// notch is the index of the offset in ascending order; when two offsets both
// match, the lower notch wins.
type Dot struct {
	name    string
	offsets []float64
	tol     core.Tolerance
}

// NewDot returns a Dot acceptor over the given offsets. Offsets are sorted and
// must be finite and distinct.
func NewDot(name string, offsets []float64, tol core.Tolerance) (*Dot, error) {
	if err := tol.Validate(); err != nil {
		return nil, err
	}
	if len(offsets) == 0 {
		return nil, &core.ConfigError{Field: "mass difference acceptor", Message: "dot acceptor needs at least one offset"}
	}
	sorted := append([]float64(nil), offsets...)
	sort.Float64s(sorted)
	for i, o := range sorted {
		if math.IsNaN(o) || math.IsInf(o, 0) {
			return nil, &core.ConfigError{Field: "mass difference acceptor", Message: fmt.Sprintf("offset %v is not finite", o)}
		}
		if i > 0 && o == sorted[i-1] {
			return nil, &core.ConfigError{Field: "mass difference acceptor", Message: fmt.Sprintf("duplicate offset %v", o)}
		}
	}
	return &Dot{name: name, offsets: sorted, tol: tol}, nil
}

// Offsets returns the sorted mass offsets.
func (d *Dot) Offsets() []float64 { return append([]float64(nil), d.offsets...) }

func (d *Dot) Accepts(observedMass, candidateMass float64) int {
	for i, o := range d.offsets {
		if d.tol.Within(observedMass, candidateMass+o) {
			return i
		}
	}
	return Reject
}

func (d *Dot) AllowedIntervals(candidateMass float64) []AllowedInterval {
	if math.IsNaN(candidateMass) {
		return nil
	}
	out := make([]AllowedInterval, len(d.offsets))
	for i, o := range d.offsets {
		lo, hi := d.tol.Bounds(candidateMass + o)
		out[i] = AllowedInterval{Min: lo, Max: hi, Notch: i}
	}
	return disjoint(out)
}

func (d *Dot) NumNotches() int { return len(d.offsets) }

func (d *Dot) String() string {
	if d.name != "" {
		return d.name
	}
	return fmt.Sprintf("dot%s_%s", d.tol, formatOffsets(d.offsets))
}
