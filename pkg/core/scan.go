package core

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// Scan is one logical MS2 scan: a single precursor hypothesis plus the fragment
// peaks of the physical spectrum it was isolated in. Co-isolated precursors
// produce several Scans that share ID and OneBasedIndex.
type Scan struct {
	ID              string  // Native scan identifier (title)
	OneBasedIndex   int     // Position of the physical spectrum in its file
	PrecursorMass   float64 // Neutral monoisotopic precursor mass
	PrecursorCharge int     // 0 when unknown
	Peaks           []Peak  // Sorted ascending by Mass

	// Optional metadata
	RetentionTime float64
	SourceFile    string
}

// Peak is a deconvoluted fragment peak.
type Peak struct {
	Mass      float64 // Neutral mass
	Intensity float64
}

// ValidationError represents an error found during record validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error in %s: %s", e.Field, e.Message)
}

// Validate checks that a scan meets all requirements for searching.
func (s *Scan) Validate() error {
	var errs []string

	if math.IsNaN(s.PrecursorMass) || math.IsInf(s.PrecursorMass, 0) || s.PrecursorMass <= 0 {
		errs = append(errs, "precursor mass must be a positive number")
	}
	if s.PrecursorCharge < 0 {
		errs = append(errs, "precursor charge must not be negative")
	}
	if s.OneBasedIndex <= 0 {
		errs = append(errs, "one-based index must be positive")
	}

	for i, peak := range s.Peaks {
		if math.IsNaN(peak.Mass) || math.IsInf(peak.Mass, 0) {
			errs = append(errs, fmt.Sprintf("peak %d has invalid mass", i))
		}
		if math.IsNaN(peak.Intensity) || math.IsInf(peak.Intensity, 0) {
			errs = append(errs, fmt.Sprintf("peak %d has invalid intensity", i))
		}
		if peak.Intensity < 0 {
			errs = append(errs, fmt.Sprintf("peak %d intensity must be non-negative", i))
		}
	}

	if !s.ArePeaksSorted() {
		errs = append(errs, "peaks must be sorted by mass")
	}

	if len(errs) > 0 {
		return &ValidationError{
			Field:   "Scan " + s.Name(),
			Message: strings.Join(errs, "; "),
		}
	}

	return nil
}

// ArePeaksSorted checks if peaks are sorted by mass in ascending order.
func (s *Scan) ArePeaksSorted() bool {
	for i := 1; i < len(s.Peaks); i++ {
		if s.Peaks[i].Mass < s.Peaks[i-1].Mass {
			return false
		}
	}
	return true
}

// SortPeaks sorts peaks by mass in ascending order.
func (s *Scan) SortPeaks() {
	sort.SliceStable(s.Peaks, func(i, j int) bool {
		return s.Peaks[i].Mass < s.Peaks[j].Mass
	})
}

// TotalIonCurrent returns the summed peak intensity.
func (s *Scan) TotalIonCurrent() float64 {
	if len(s.Peaks) == 0 {
		return 0
	}
	return floats.Sum(s.intensities())
}

// MaxIntensity returns the base peak intensity, or 0 for an empty scan.
func (s *Scan) MaxIntensity() float64 {
	if len(s.Peaks) == 0 {
		return 0
	}
	return floats.Max(s.intensities())
}

func (s *Scan) intensities() []float64 {
	out := make([]float64, len(s.Peaks))
	for i, p := range s.Peaks {
		out[i] = p.Intensity
	}
	return out
}

// PeaksInRange returns the peaks whose mass lies in [lo, hi].
func (s *Scan) PeaksInRange(lo, hi float64) []Peak {
	i := sort.Search(len(s.Peaks), func(i int) bool { return s.Peaks[i].Mass >= lo })
	j := sort.Search(len(s.Peaks), func(i int) bool { return s.Peaks[i].Mass > hi })
	if i >= j {
		return nil
	}
	return s.Peaks[i:j]
}

// Name returns the scan name in format "ID/index"
func (s *Scan) Name() string {
	return fmt.Sprintf("%s/%d", s.ID, s.OneBasedIndex)
}

// NewScanFromMz builds a scan from singly charged fragment m/z values, the
// form in which centroided MS2 peaks are usually reported.
func NewScanFromMz(id string, oneBasedIndex int, precursorMass float64, charge int, mz, intensities []float64) *Scan {
	peaks := make([]Peak, len(mz))
	for i := range mz {
		peaks[i] = Peak{Mass: ToMass(mz[i], 1), Intensity: intensities[i]}
	}
	s := &Scan{
		ID:              id,
		OneBasedIndex:   oneBasedIndex,
		PrecursorMass:   precursorMass,
		PrecursorCharge: charge,
		Peaks:           peaks,
	}
	s.SortPeaks()
	return s
}
