package core

import (
	"fmt"
	"strings"
)

// Protein is one database entry.
type Protein struct {
	Accession   string
	Description string
	Sequence    string
	Decoy       bool
}

// Dissociation selects the fragment ion chemistry.
type Dissociation int

const (
	// HCD and CID produce b and y ions.
	HCD Dissociation = iota
	CID
	// ETD produces c and z• ions.
	ETD
)

func (d Dissociation) String() string {
	switch d {
	case CID:
		return "CID"
	case ETD:
		return "ETD"
	}
	return "HCD"
}

// ParseDissociation parses "HCD", "CID" or "ETD".
func ParseDissociation(s string) (Dissociation, error) {
	switch strings.ToUpper(s) {
	case "", "HCD":
		return HCD, nil
	case "CID":
		return CID, nil
	case "ETD":
		return ETD, nil
	}
	return HCD, &ConfigError{Field: "dissociation", Message: fmt.Sprintf("unknown dissociation type %q", s)}
}

// NTermShift is added to a b-ion mass to get this chemistry's N-terminal ion.
func (d Dissociation) NTermShift() float64 {
	if d == ETD {
		return AmmoniaMass
	}
	return 0
}

// CTermShift is added to a y-ion mass to get this chemistry's C-terminal ion.
func (d Dissociation) CTermShift() float64 {
	if d == ETD {
		return MassH - AmmoniaMass
	}
	return 0
}

// ComplementaryShift is the neutral mass added to the precursor when computing
// a complementary ion: b + y = precursor, c + z• = precursor + H.
func (d Dissociation) ComplementaryShift() float64 {
	return d.NTermShift() + d.CTermShift()
}
