package core

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ToleranceUnit selects how a Tolerance value is interpreted.
type ToleranceUnit int

const (
	// PPM is parts-per-million of the larger of the two compared masses.
	PPM ToleranceUnit = iota
	// Absolute is a fixed window in daltons.
	Absolute
)

func (u ToleranceUnit) String() string {
	if u == Absolute {
		return "Da"
	}
	return "ppm"
}

// Tolerance is a symmetric mass tolerance.
type Tolerance struct {
	Unit  ToleranceUnit
	Value float64
}

// ConfigError is a fatal configuration problem. It is returned as soon as the
// bad value is seen and is never clamped.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error in %s: %s", e.Field, e.Message)
}

// NewPPMTolerance returns a validated ppm tolerance.
func NewPPMTolerance(ppm float64) (Tolerance, error) {
	t := Tolerance{Unit: PPM, Value: ppm}
	return t, t.Validate()
}

// NewAbsoluteTolerance returns a validated dalton tolerance.
func NewAbsoluteTolerance(da float64) (Tolerance, error) {
	t := Tolerance{Unit: Absolute, Value: da}
	return t, t.Validate()
}

// Validate rejects negative, non-finite and over-wide tolerances. A ppm value of
// one million or more would give a lower bound at or below zero.
func (t Tolerance) Validate() error {
	if math.IsNaN(t.Value) || math.IsInf(t.Value, 0) {
		return &ConfigError{Field: "tolerance", Message: fmt.Sprintf("value %v is not finite", t.Value)}
	}
	if t.Value < 0 {
		return &ConfigError{Field: "tolerance", Message: fmt.Sprintf("value %v must not be negative", t.Value)}
	}
	if t.Unit == PPM && t.Value >= 1e6 {
		return &ConfigError{Field: "tolerance", Message: fmt.Sprintf("%v ppm gives a window of negative width", t.Value)}
	}
	if t.Unit != PPM && t.Unit != Absolute {
		return &ConfigError{Field: "tolerance", Message: fmt.Sprintf("unknown unit %d", t.Unit)}
	}
	return nil
}

// Within reports whether a and b agree within the tolerance. For ppm the window
// is taken relative to the larger magnitude, so Within(a, b) == Within(b, a).
func (t Tolerance) Within(a, b float64) bool {
	diff := math.Abs(a - b)
	if t.Unit == Absolute {
		return diff <= t.Value
	}
	return diff <= t.Value*1e-6*math.Max(math.Abs(a), math.Abs(b))
}

// Bounds returns the closed range of values x for which Within(x, m) holds.
func (t Tolerance) Bounds(m float64) (lo, hi float64) {
	if t.Unit == Absolute {
		return m - t.Value, m + t.Value
	}
	k := t.Value * 1e-6
	if m < 0 {
		return m / (1 - k), m * (1 - k)
	}
	return m * (1 - k), m / (1 - k)
}

func (t Tolerance) String() string {
	return strconv.FormatFloat(t.Value, 'g', -1, 64) + " " + t.Unit.String()
}

// ParseTolerance parses strings like "5 ppm", "10ppm", "0.01 Da" or "0.02da".
func ParseTolerance(s string) (Tolerance, error) {
	str := strings.ToLower(strings.TrimSpace(s))
	var unit ToleranceUnit
	switch {
	case strings.HasSuffix(str, "ppm"):
		unit = PPM
		str = strings.TrimSuffix(str, "ppm")
	case strings.HasSuffix(str, "da"):
		unit = Absolute
		str = strings.TrimSuffix(str, "da")
	default:
		return Tolerance{}, &ConfigError{Field: "tolerance", Message: fmt.Sprintf("missing unit (ppm or Da) in %q", s)}
	}

	value, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimPrefix(str, "±")), 64)
	if err != nil {
		return Tolerance{}, &ConfigError{Field: "tolerance", Message: fmt.Sprintf("invalid value in %q: %v", s, err)}
	}

	t := Tolerance{Unit: unit, Value: value}
	if err := t.Validate(); err != nil {
		return Tolerance{}, err
	}
	return t, nil
}
