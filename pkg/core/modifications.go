package core

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Modification represents a peptide modification with position and mass shift.
type Modification struct {
	Mass     float64
	Position int    // 0-based residue position; terminal mods sit on the first or last residue
	Name     string // Modification name (e.g., "Carbamidomethyl", "Oxidation")
}

// FixedModification applies a mass shift to every occurrence of a residue.
// Residue '^' targets the peptide N-terminus and '$' the C-terminus.
type FixedModification struct {
	Name    string
	Residue rune
	Mass    float64
}

// ModDatabase stores modification definitions
type ModDatabase struct {
	mods map[string]float64 // name -> mass shift
}

// NewModDatabase creates an empty modification database
func NewModDatabase() *ModDatabase {
	return &ModDatabase{
		mods: make(map[string]float64),
	}
}

// LoadFromCSV loads modifications from a CSV file (format: mod,massshift,aa)
func (db *ModDatabase) LoadFromCSV(r io.Reader) error {
	scanner := bufio.NewScanner(r)

	// Skip header line
	if scanner.Scan() {
		// header line
	}

	lineNum := 1
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.Split(line, ",")
		if len(parts) < 2 {
			return fmt.Errorf("line %d: invalid format, expected at least 2 comma-separated fields", lineNum)
		}

		modName := strings.TrimSpace(parts[0])
		massStr := strings.TrimSpace(parts[1])

		mass, err := strconv.ParseFloat(massStr, 64)
		if err != nil {
			return fmt.Errorf("line %d: invalid mass value '%s': %w", lineNum, massStr, err)
		}

		db.mods[modName] = mass
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading CSV: %w", err)
	}

	return nil
}

// GetMass returns the mass shift for a modification name
func (db *ModDatabase) GetMass(name string) (float64, bool) {
	mass, ok := db.mods[name]
	return mass, ok
}

// Add adds or updates a modification
func (db *ModDatabase) Add(name string, mass float64) {
	db.mods[name] = mass
}

// ParseFixedMod parses "Name@R" (residue R), "Name@Nterm" or "Name@Cterm".
// Name may also be a literal mass such as "57.021464@C".
func (db *ModDatabase) ParseFixedMod(def string) (FixedModification, error) {
	name, residue, err := SplitFixedMod(def)
	if err != nil {
		return FixedModification{}, err
	}

	mass, err := strconv.ParseFloat(name, 64)
	if err != nil {
		var ok bool
		mass, ok = db.GetMass(name)
		if !ok {
			return FixedModification{}, &ConfigError{Field: "fixed modification", Message: fmt.Sprintf("unknown modification '%s'", name)}
		}
	}

	return FixedModification{Name: name, Residue: residue, Mass: mass}, nil
}

// SplitFixedMod checks the "name@residue" form and returns the name and the
// target residue without resolving the name to a mass.
func SplitFixedMod(def string) (name string, residue rune, err error) {
	atParts := strings.Split(strings.TrimSpace(def), "@")
	if len(atParts) != 2 || strings.TrimSpace(atParts[0]) == "" || strings.TrimSpace(atParts[1]) == "" {
		return "", 0, &ConfigError{Field: "fixed modification", Message: fmt.Sprintf("invalid format '%s', expected 'name@residue'", def)}
	}

	name = strings.TrimSpace(atParts[0])
	target := strings.TrimSpace(atParts[1])
	switch strings.ToLower(target) {
	case "nterm", "n-term":
		residue = '^'
	case "cterm", "c-term":
		residue = '$'
	default:
		if len(target) != 1 {
			return "", 0, &ConfigError{Field: "fixed modification", Message: fmt.Sprintf("invalid residue '%s'", target)}
		}
		residue = rune(target[0])
		if _, ok := AminoAcidMasses[residue]; !ok {
			return "", 0, &ConfigError{Field: "fixed modification", Message: fmt.Sprintf("unknown residue '%s'", target)}
		}
	}
	return name, residue, nil
}

// At places the modification on the residue at 0-based position pos.
func (f FixedModification) At(pos int) Modification {
	return Modification{Mass: f.Mass, Position: pos, Name: f.Name}
}

// DefaultModDatabase returns a ModDatabase pre-loaded with common modifications
func DefaultModDatabase() *ModDatabase {
	db := NewModDatabase()

	// Common modifications from unimod
	db.Add("Acetyl", 42.010565)
	db.Add("Amidated", -0.984016)
	db.Add("Biotin", 226.077598)
	db.Add("Carbamidomethyl", 57.021464)
	db.Add("Carbamyl", 43.005814)
	db.Add("Carboxymethyl", 58.005479)
	db.Add("Deamidated", 0.984016)
	db.Add("Met->Hse", -29.992806)
	db.Add("Met->Hsl", -48.003371)
	db.Add("NIPCAM", 99.068414)
	db.Add("Phospho", 79.966331)
	db.Add("Dehydrated", -18.010565)
	db.Add("Propionamide", 71.037114)
	db.Add("Pyro-carbamidomethyl", 39.994915)
	db.Add("Glu->pyro-Glu", -18.010565)
	db.Add("Gln->pyro-Glu", -17.026549)
	db.Add("Cation:Na", 21.981943)
	db.Add("Methyl", 14.01565)
	db.Add("Oxidation", 15.994915)
	db.Add("Dimethyl", 28.0313)
	db.Add("Trimethyl", 42.04695)
	db.Add("Methylthio", 45.987721)
	db.Add("Sulfo", 79.956815)
	db.Add("Hex", 162.052824)
	db.Add("Lipoyl", 188.032956)
	db.Add("HexNAc", 203.079373)
	db.Add("Farnesyl", 204.187801)
	db.Add("Myristoyl", 210.198366)
	db.Add("PyridoxalPhosphate", 229.014009)
	db.Add("Palmitoyl", 238.229666)
	db.Add("GeranylGeranyl", 272.250401)
	db.Add("Phosphopantetheine", 340.085794)
	db.Add("FAD", 783.141486)
	db.Add("Guanidinyl", 42.021798)
	db.Add("HNE", 156.11503)
	db.Add("Glucuronyl", 176.032088)
	db.Add("Glutathione", 305.068156)
	db.Add("Propionyl", 56.026215)
	db.Add("TMT", 229.162932)
	db.Add("TMTPro", 304.207146)
	db.Add("TMT6plex", 229.162932)
	db.Add("TMT10plex", 229.162932)
	db.Add("TMT11plex", 229.162932)
	db.Add("TMT16plex", 304.207146)
	db.Add("iTRAQ4plex", 144.102063)
	db.Add("iTRAQ8plex", 304.205360)

	return db
}
