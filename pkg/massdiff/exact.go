package massdiff

import (
	"math"
	"strconv"

	"github.com/ChrisMcGann/pepsearch/pkg/core"
)

// Exact accepts when observed and candidate masses agree within a single
// tolerance. It has one notch.
type Exact struct {
	tol core.Tolerance
}

// NewExact returns an Exact acceptor. The tolerance is validated.
func NewExact(tol core.Tolerance) (*Exact, error) {
	if err := tol.Validate(); err != nil {
		return nil, err
	}
	return &Exact{tol: tol}, nil
}

// Tolerance returns the configured tolerance.
func (e *Exact) Tolerance() core.Tolerance { return e.tol }

func (e *Exact) Accepts(observedMass, candidateMass float64) int {
	if e.tol.Within(observedMass, candidateMass) {
		return 0
	}
	return Reject
}

func (e *Exact) AllowedIntervals(candidateMass float64) []AllowedInterval {
	if math.IsNaN(candidateMass) {
		return nil
	}
	lo, hi := e.tol.Bounds(candidateMass)
	return []AllowedInterval{{Min: lo, Max: hi, Notch: 0}}
}

func (e *Exact) NumNotches() int { return 1 }

// String follows the "5ppmAroundZero" / "0.01daltonsAroundZero" naming.
func (e *Exact) String() string {
	v := strconv.FormatFloat(e.tol.Value, 'g', -1, 64)
	if e.tol.Unit == core.Absolute {
		return v + "daltonsAroundZero"
	}
	return v + "ppmAroundZero"
}
