// Package filter provides peak preprocessing applied to scans before search
package filter

import (
	"fmt"
	"sort"

	"github.com/ChrisMcGann/pepsearch/pkg/core"
)

// Config holds filtering configuration
type Config struct {
	TopN            int     // Keep only top N most intense peaks (0 = no limit)
	IntensityCutoff float64 // Keep only peaks above this % of base peak (0 = no cutoff)
	MinMass         float64 // Drop peaks below this neutral mass (0 = keep all)
}

// Validate checks the configured ranges.
func (c *Config) Validate() error {
	if c.TopN < 0 {
		return &core.ConfigError{Field: "top_n", Message: fmt.Sprintf("must not be negative, got %d", c.TopN)}
	}
	if c.IntensityCutoff < 0 || c.IntensityCutoff > 100 {
		return &core.ConfigError{Field: "cutoff_percent", Message: fmt.Sprintf("must be within [0, 100], got %v", c.IntensityCutoff)}
	}
	if c.MinMass < 0 {
		return &core.ConfigError{Field: "min_mass", Message: fmt.Sprintf("must not be negative, got %v", c.MinMass)}
	}
	return nil
}

// Apply applies all configured filters to a scan
func (c *Config) Apply(scan *core.Scan) {
	// Zero-intensity peaks never carry information
	RemoveZeroIntensityPeaks(scan)

	if c.MinMass > 0 {
		c.filterByMass(scan)
	}

	// Apply intensity filters
	if c.IntensityCutoff > 0 {
		c.filterByIntensity(scan)
	}

	// Apply top-N filter
	if c.TopN > 0 {
		c.filterTopN(scan)
	}

	// Ensure peaks are sorted after all filtering
	scan.SortPeaks()
}

// ApplyAll filters every scan and returns how many peaks were removed.
func (c *Config) ApplyAll(scans []*core.Scan) int {
	removed := 0
	for _, s := range scans {
		before := len(s.Peaks)
		c.Apply(s)
		removed += before - len(s.Peaks)
	}
	return removed
}

// filterByMass removes peaks below the minimum mass
func (c *Config) filterByMass(scan *core.Scan) {
	var filtered []core.Peak
	for _, peak := range scan.Peaks {
		if peak.Mass >= c.MinMass {
			filtered = append(filtered, peak)
		}
	}
	scan.Peaks = filtered
}

// filterByIntensity removes peaks below the intensity cutoff percentage
func (c *Config) filterByIntensity(scan *core.Scan) {
	if len(scan.Peaks) == 0 {
		return
	}

	// Calculate threshold
	threshold := (c.IntensityCutoff / 100.0) * scan.MaxIntensity()

	// Filter peaks
	var filtered []core.Peak
	for _, peak := range scan.Peaks {
		if peak.Intensity >= threshold {
			filtered = append(filtered, peak)
		}
	}

	scan.Peaks = filtered
}

// filterTopN keeps only the N most intense peaks
func (c *Config) filterTopN(scan *core.Scan) {
	if len(scan.Peaks) <= c.TopN {
		return
	}

	// Create a copy and sort by intensity descending, ties to the lower mass
	peaks := make([]core.Peak, len(scan.Peaks))
	copy(peaks, scan.Peaks)

	sort.SliceStable(peaks, func(i, j int) bool {
		return peaks[i].Intensity > peaks[j].Intensity
	})

	// Keep only top N
	scan.Peaks = peaks[:c.TopN]
}

// RemoveZeroIntensityPeaks removes peaks with zero or negative intensity
func RemoveZeroIntensityPeaks(scan *core.Scan) {
	var filtered []core.Peak
	for _, peak := range scan.Peaks {
		if peak.Intensity > 0 {
			filtered = append(filtered, peak)
		}
	}
	scan.Peaks = filtered
}
