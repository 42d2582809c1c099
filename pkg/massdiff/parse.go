package massdiff

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ChrisMcGann/pepsearch/pkg/core"
)

// Isotope spacing used by the missed-monoisotopic acceptors.
const (
	oneMM   = 1.0029
	twoMM   = 2.0052
	threeMM = 3.0077
)

// Kinds accepted by Parse.
const (
	KindExact   = "exact"
	KindOneMM   = "1mm"
	KindTwoMM   = "2mm"
	KindThreeMM = "3mm"
	KindPM3MM   = "pm3mm"
	KindOpen    = "open"
	KindModOpen = "modopen"
	KindCustom  = "custom"
)

// Parse builds an acceptor from a named kind. The precursor tolerance applies
// to exact and the missed-monoisotopic kinds; custom ignores it and reads the
// definition string instead.
func Parse(kind string, precursorTol core.Tolerance, custom string) (Acceptor, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case KindExact, "":
		return NewExact(precursorTol)
	case KindOneMM:
		return NewDot("1mm", []float64{0, oneMM}, precursorTol)
	case KindTwoMM:
		return NewDot("2mm", []float64{0, oneMM, twoMM}, precursorTol)
	case KindThreeMM:
		return NewDot("3mm", []float64{0, oneMM, twoMM, threeMM}, precursorTol)
	case KindPM3MM:
		return NewDot("pm3mm", []float64{-threeMM, -twoMM, -oneMM, 0, oneMM, twoMM, threeMM}, precursorTol)
	case KindOpen:
		return Open{}, nil
	case KindModOpen:
		return NewInterval("-187andUp", []Range{{Min: -187, Max: math.Inf(1)}})
	case KindCustom:
		return ParseCustom(custom)
	}
	return nil, &core.ConfigError{Field: "mass_diff_acceptor", Message: fmt.Sprintf("unknown kind %q", kind)}
}

// ParseCustom parses a custom acceptor definition of the form
//
//	<name> dot <tol> ppm|da <o1,o2,...>
//	<name> interval [a;b],[c;d]
//	<name> OpenSearch
//	<name> ppmAroundZero <v>
//	<name> daltonsAroundZero <v>
func ParseCustom(text string) (Acceptor, error) {
	fields := strings.Fields(text)
	if len(fields) < 2 {
		return nil, customErr(text, "expected '<name> <kind> ...'")
	}
	name := fields[0]

	switch fields[1] {
	case "dot":
		if len(fields) != 5 {
			return nil, customErr(text, "expected '<name> dot <tol> ppm|da <offsets>'")
		}
		tol, err := core.ParseTolerance(fields[2] + " " + fields[3])
		if err != nil {
			return nil, err
		}
		var offsets []float64
		for _, s := range strings.Split(fields[4], ",") {
			o, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return nil, customErr(text, fmt.Sprintf("invalid offset %q", s))
			}
			offsets = append(offsets, o)
		}
		return NewDot(name, offsets, tol)

	case "interval":
		if len(fields) != 3 {
			return nil, customErr(text, "expected '<name> interval [a;b],[c;d]'")
		}
		var ranges []Range
		for _, s := range strings.Split(fields[2], ",") {
			bounds := strings.Split(strings.Trim(s, "[]"), ";")
			if len(bounds) != 2 {
				return nil, customErr(text, fmt.Sprintf("invalid range %q", s))
			}
			lo, err1 := strconv.ParseFloat(strings.TrimSpace(bounds[0]), 64)
			hi, err2 := strconv.ParseFloat(strings.TrimSpace(bounds[1]), 64)
			if err1 != nil || err2 != nil {
				return nil, customErr(text, fmt.Sprintf("invalid range %q", s))
			}
			ranges = append(ranges, Range{Min: lo, Max: hi})
		}
		return NewInterval(name, ranges)

	case "OpenSearch":
		return Open{}, nil

	case "ppmAroundZero", "daltonsAroundZero":
		if len(fields) != 3 {
			return nil, customErr(text, fmt.Sprintf("expected '<name> %s <value>'", fields[1]))
		}
		v, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return nil, customErr(text, fmt.Sprintf("invalid value %q", fields[2]))
		}
		tol := core.Tolerance{Unit: core.PPM, Value: v}
		if fields[1] == "daltonsAroundZero" {
			tol.Unit = core.Absolute
		}
		return NewExact(tol)
	}
	return nil, customErr(text, fmt.Sprintf("unknown acceptor kind %q", fields[1]))
}

func customErr(text, msg string) error {
	return &core.ConfigError{Field: "custom_acceptor", Message: fmt.Sprintf("%s in %q", msg, text)}
}
