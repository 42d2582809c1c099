// Package massdiff decides whether a candidate peptide mass is compatible with
// an observed precursor mass, and under which hypothesis ("notch").
package massdiff

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Reject is the notch returned when no hypothesis accepts a mass pair.
const Reject = -1

// Acceptor is the precursor-mass acceptance policy shared by both search
// engines. Accepts and AllowedIntervals must agree: for every observed mass m
// inside an interval returned for candidate c, Accepts(m, c) returns that
// interval's notch, and Accepts returns Reject outside all intervals.
type Acceptor interface {
	// Accepts returns the notch matched by the pair, or Reject.
	Accepts(observedMass, candidateMass float64) int
	// AllowedIntervals returns the disjoint observed-mass ranges that a
	// candidate of this mass can match, ordered by Min.
	AllowedIntervals(candidateMass float64) []AllowedInterval
	// NumNotches is the number of distinct hypotheses.
	NumNotches() int
	String() string
}

// AllowedInterval is a closed range of observed precursor masses tagged with
// the notch they satisfy.
type AllowedInterval struct {
	Min, Max float64
	Notch    int
}

// Contains reports whether m lies inside the closed interval.
func (iv AllowedInterval) Contains(m float64) bool {
	return m >= iv.Min && m <= iv.Max
}

func (iv AllowedInterval) String() string {
	return fmt.Sprintf("[%g, %g]#%d", iv.Min, iv.Max, iv.Notch)
}

// disjoint clips each interval against all intervals of earlier notches so
// the result never covers a mass twice. An interval may be split in two or
// vanish entirely. The output is sorted by Min.
func disjoint(in []AllowedInterval) []AllowedInterval {
	var taken []AllowedInterval
	for _, iv := range in {
		pieces := []AllowedInterval{iv}
		for _, t := range taken {
			var next []AllowedInterval
			for _, p := range pieces {
				next = append(next, subtract(p, t)...)
			}
			pieces = next
		}
		taken = append(taken, pieces...)
	}
	sort.Slice(taken, func(i, j int) bool {
		if taken[i].Min != taken[j].Min {
			return taken[i].Min < taken[j].Min
		}
		return taken[i].Notch < taken[j].Notch
	})
	return taken
}

// subtract removes t from p. Shared boundary points stay with t.
func subtract(p, t AllowedInterval) []AllowedInterval {
	if t.Max < p.Min || t.Min > p.Max {
		return []AllowedInterval{p}
	}
	var out []AllowedInterval
	if t.Min > p.Min {
		out = append(out, AllowedInterval{Min: p.Min, Max: math.Nextafter(t.Min, math.Inf(-1)), Notch: p.Notch})
	}
	if t.Max < p.Max {
		out = append(out, AllowedInterval{Min: math.Nextafter(t.Max, math.Inf(1)), Max: p.Max, Notch: p.Notch})
	}
	return out
}

func formatOffsets(offsets []float64) string {
	parts := make([]string, len(offsets))
	for i, o := range offsets {
		parts[i] = fmt.Sprintf("%g", o)
	}
	return strings.Join(parts, ",")
}
