package massdiff

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/ChrisMcGann/pepsearch/pkg/core"
)

// Range is a closed range of allowed (observed - candidate) mass differences.
type Range struct {
	Min, Max float64
}

// Interval accepts when observed minus candidate mass falls inside one of a set
// of ranges. Overlapping ranges are merged at construction, so the notch is the
// index of the merged range in ascending order.
type Interval struct {
	name   string
	ranges []Range
}

// NewInterval validates and merges ranges. Infinite bounds are allowed;
// inverted or NaN bounds are not.
func NewInterval(name string, ranges []Range) (*Interval, error) {
	if len(ranges) == 0 {
		return nil, &core.ConfigError{Field: "mass difference acceptor", Message: "interval acceptor needs at least one range"}
	}
	sorted := append([]Range(nil), ranges...)
	for _, r := range sorted {
		if math.IsNaN(r.Min) || math.IsNaN(r.Max) {
			return nil, &core.ConfigError{Field: "mass difference acceptor", Message: "interval bound is NaN"}
		}
		if r.Min > r.Max {
			return nil, &core.ConfigError{Field: "mass difference acceptor", Message: fmt.Sprintf("interval [%g;%g] has negative width", r.Min, r.Max)}
		}
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Min < sorted[j].Min })

	merged := []Range{sorted[0]}
	for _, r := range sorted[1:] {
		last := &merged[len(merged)-1]
		if r.Min <= last.Max {
			last.Max = math.Max(last.Max, r.Max)
			continue
		}
		merged = append(merged, r)
	}
	return &Interval{name: name, ranges: merged}, nil
}

// Ranges returns the merged ranges.
func (a *Interval) Ranges() []Range { return append([]Range(nil), a.ranges...) }

func (a *Interval) Accepts(observedMass, candidateMass float64) int {
	diff := observedMass - candidateMass
	for i, r := range a.ranges {
		if diff >= r.Min && diff <= r.Max {
			return i
		}
	}
	return Reject
}

func (a *Interval) AllowedIntervals(candidateMass float64) []AllowedInterval {
	if math.IsNaN(candidateMass) {
		return nil
	}
	out := make([]AllowedInterval, len(a.ranges))
	for i, r := range a.ranges {
		out[i] = AllowedInterval{Min: candidateMass + r.Min, Max: candidateMass + r.Max, Notch: i}
	}
	return out
}

func (a *Interval) NumNotches() int { return len(a.ranges) }

func (a *Interval) String() string {
	if a.name != "" {
		return a.name
	}
	parts := make([]string, len(a.ranges))
	for i, r := range a.ranges {
		parts[i] = fmt.Sprintf("[%g;%g]", r.Min, r.Max)
	}
	return "interval" + strings.Join(parts, ",")
}
