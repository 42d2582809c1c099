// Package mgf provides a streaming reader for Mascot Generic Format peak lists
package mgf

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ChrisMcGann/pepsearch/pkg/core"
)

// DefaultCharge is assumed for precursors that carry no CHARGE field.
const DefaultCharge = 2

// Reader provides streaming access to MGF files. Every BEGIN IONS block is one
// physical spectrum; it yields one Scan per precursor, so co-isolated
// precursors listed on a PRECURSORS line become several Scans that share ID
// and OneBasedIndex.
type Reader struct {
	scanner       *bufio.Scanner
	sourceFile    string
	defaultCharge int
	lineNum       int
	spectra       int
	pending       []*core.Scan
	currentScan   *core.Scan
	err           error
}

// NewReader creates a new MGF reader. sourceFile is recorded on every scan.
func NewReader(r io.Reader, sourceFile string) *Reader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	return &Reader{
		scanner:       scanner,
		sourceFile:    sourceFile,
		defaultCharge: DefaultCharge,
	}
}

// SetDefaultCharge changes the charge assumed when CHARGE is missing.
func (r *Reader) SetDefaultCharge(z int) {
	if z > 0 {
		r.defaultCharge = z
	}
}

// Next advances to the next logical scan. Returns false when no more scans or error.
func (r *Reader) Next() bool {
	r.currentScan = nil

	if len(r.pending) == 0 {
		scans, err := r.readSpectrum()
		if err != nil {
			if err != io.EOF {
				r.err = err
			}
			return false
		}
		r.pending = scans
	}

	r.currentScan = r.pending[0]
	r.pending = r.pending[1:]
	return true
}

// Scan returns the current scan
func (r *Reader) Scan() *core.Scan {
	return r.currentScan
}

// Err returns any error encountered during reading
func (r *Reader) Err() error {
	return r.err
}

// Spectra returns the number of physical spectra read so far.
func (r *Reader) Spectra() int {
	return r.spectra
}

type precursor struct {
	mz     float64
	charge int
}

// readSpectrum reads one BEGIN IONS ... END IONS block
func (r *Reader) readSpectrum() ([]*core.Scan, error) {
	inBlock := false
	var (
		title      string
		rt         float64
		charge     int
		precursors []precursor
		mz         []float64
		intensity  []float64
		fragCharge []int
	)

	for r.scanner.Scan() {
		r.lineNum++
		line := strings.TrimSpace(r.scanner.Text())

		// Skip comments and empty lines
		if line == "" || line[0] == '#' || line[0] == ';' || line[0] == '!' {
			continue
		}

		if !inBlock {
			if line == "BEGIN IONS" {
				inBlock = true
			}
			continue
		}

		if line == "END IONS" {
			r.spectra++
			return r.buildScans(title, rt, charge, precursors, mz, intensity, fragCharge)
		}

		if key, value, ok := strings.Cut(line, "="); ok && !isNumericStart(line) {
			switch strings.ToUpper(key) {
			case "TITLE":
				title = value
			case "PEPMASS":
				p, err := parsePrecursor(value)
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", r.lineNum, err)
				}
				if len(precursors) == 0 {
					precursors = append(precursors, p)
				}
			case "PRECURSORS":
				precursors = precursors[:0]
				for _, field := range strings.Fields(value) {
					p, err := parseCoIsolated(field)
					if err != nil {
						return nil, fmt.Errorf("line %d: %w", r.lineNum, err)
					}
					precursors = append(precursors, p)
				}
			case "CHARGE":
				z, err := parseCharge(value)
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", r.lineNum, err)
				}
				charge = z
			case "RTINSECONDS":
				if v, err := strconv.ParseFloat(value, 64); err == nil {
					rt = v / 60
				}
			}
			continue
		}

		// Parse peak line
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return nil, fmt.Errorf("line %d: invalid peak format, expected at least 2 fields", r.lineNum)
		}
		m, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid m/z value: %w", r.lineNum, err)
		}
		in, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid intensity value: %w", r.lineNum, err)
		}
		z := 1
		if len(fields) >= 3 {
			if z, err = parseCharge(fields[2]); err != nil {
				return nil, fmt.Errorf("line %d: %w", r.lineNum, err)
			}
		}
		mz = append(mz, m)
		intensity = append(intensity, in)
		fragCharge = append(fragCharge, z)
	}

	if err := r.scanner.Err(); err != nil {
		return nil, err
	}
	if inBlock {
		return nil, fmt.Errorf("line %d: unterminated BEGIN IONS block", r.lineNum)
	}
	return nil, io.EOF
}

func (r *Reader) buildScans(title string, rt float64, charge int, precursors []precursor, mz, intensity []float64, fragCharge []int) ([]*core.Scan, error) {
	if len(precursors) == 0 {
		return nil, fmt.Errorf("line %d: spectrum %q has no PEPMASS", r.lineNum, title)
	}
	if title == "" {
		title = fmt.Sprintf("index=%d", r.spectra)
	}

	peaks := make([]core.Peak, len(mz))
	for i := range mz {
		peaks[i] = core.Peak{Mass: core.ToMass(mz[i], max(fragCharge[i], 1)), Intensity: intensity[i]}
	}

	scans := make([]*core.Scan, 0, len(precursors))
	for _, p := range precursors {
		z := p.charge
		if z == 0 {
			z = charge
		}
		if z == 0 {
			z = r.defaultCharge
		}
		s := &core.Scan{
			ID:              title,
			OneBasedIndex:   r.spectra,
			PrecursorMass:   core.ToMass(p.mz, z),
			PrecursorCharge: z,
			Peaks:           append([]core.Peak(nil), peaks...),
			RetentionTime:   rt,
			SourceFile:      r.sourceFile,
		}
		s.SortPeaks()
		scans = append(scans, s)
	}
	return scans, nil
}

// parsePrecursor parses a PEPMASS value: "mz [intensity] [charge+]".
func parsePrecursor(value string) (precursor, error) {
	fields := strings.Fields(value)
	if len(fields) == 0 {
		return precursor{}, fmt.Errorf("empty precursor")
	}
	mz, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return precursor{}, fmt.Errorf("invalid precursor m/z %q: %w", fields[0], err)
	}
	p := precursor{mz: mz}
	for _, f := range fields[1:] {
		if strings.HasSuffix(f, "+") || strings.HasSuffix(f, "-") {
			if p.charge, err = parseCharge(f); err != nil {
				return precursor{}, err
			}
		}
	}
	return p, nil
}

// parseCoIsolated parses one PRECURSORS entry: "mz" or "mz:charge".
func parseCoIsolated(field string) (precursor, error) {
	mzStr, zStr, hasCharge := strings.Cut(field, ":")
	mz, err := strconv.ParseFloat(mzStr, 64)
	if err != nil {
		return precursor{}, fmt.Errorf("invalid precursor m/z %q: %w", mzStr, err)
	}
	p := precursor{mz: mz}
	if hasCharge {
		if p.charge, err = parseCharge(zStr); err != nil {
			return precursor{}, err
		}
	}
	return p, nil
}

// parseCharge parses "2", "2+" or "3+ and 4+" (first value wins).
// Negative-mode charges are rejected.
func parseCharge(s string) (int, error) {
	s = strings.TrimSpace(s)
	if first, _, ok := strings.Cut(s, " and "); ok {
		s = first
	}
	if f, _, ok := strings.Cut(s, ","); ok {
		s = f
	}
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, "-") || strings.HasPrefix(s, "-") {
		return 0, fmt.Errorf("negative-mode charge %q is not supported", s)
	}
	s = strings.TrimSuffix(s, "+")
	z, err := strconv.Atoi(s)
	if err != nil || z < 0 {
		return 0, fmt.Errorf("invalid charge %q", s)
	}
	return z, nil
}

func isNumericStart(line string) bool {
	c := line[0]
	return (c >= '0' && c <= '9') || c == '.' || c == '-'
}
