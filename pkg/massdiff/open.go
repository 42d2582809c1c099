package massdiff

import "math"

// Open accepts every pair, including candidates of unknown (NaN) mass.
type Open struct{}

func (Open) Accepts(observedMass, candidateMass float64) int { return 0 }

func (Open) AllowedIntervals(candidateMass float64) []AllowedInterval {
	return []AllowedInterval{{Min: math.Inf(-1), Max: math.Inf(1), Notch: 0}}
}

func (Open) NumNotches() int { return 1 }

func (Open) String() string { return "OpenSearch" }
