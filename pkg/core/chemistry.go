// Package core provides chemistry calculations and the shared data model for
// peptide-spectrum matching.
package core

import "math"

// Atomic masses (monoisotopic)
const (
	MassH = 1.0078250321
	MassC = 12.0000000000
	MassN = 14.0030740052
	MassO = 15.9949146221
	MassS = 31.9720706900
	MassP = 30.9737615100

	// Proton mass for charge calculations
	ProtonMass = 1.00727646688

	// WaterMass is added once per peptide (N-terminal H, C-terminal OH)
	WaterMass = 2*MassH + MassO

	// AmmoniaMass separates b from c ions
	AmmoniaMass = 3*MassH + MassN
)

// AminoAcidComposition stores elemental composition
type AminoAcidComposition struct {
	C, H, N, O, S int
}

// Mass returns the monoisotopic mass of the composition.
func (c AminoAcidComposition) Mass() float64 {
	return float64(c.C)*MassC +
		float64(c.H)*MassH +
		float64(c.N)*MassN +
		float64(c.O)*MassO +
		float64(c.S)*MassS
}

// AminoAcidMasses maps amino acid one-letter codes to residue elemental composition
var AminoAcidMasses = map[rune]AminoAcidComposition{
	'A': {C: 3, H: 5, N: 1, O: 1, S: 0},
	'R': {C: 6, H: 12, N: 4, O: 1, S: 0},
	'N': {C: 4, H: 6, N: 2, O: 2, S: 0},
	'D': {C: 4, H: 5, N: 1, O: 3, S: 0},
	'C': {C: 3, H: 5, N: 1, O: 1, S: 1},
	'E': {C: 5, H: 7, N: 1, O: 3, S: 0},
	'Q': {C: 5, H: 8, N: 2, O: 2, S: 0},
	'G': {C: 2, H: 3, N: 1, O: 1, S: 0},
	'H': {C: 6, H: 7, N: 3, O: 1, S: 0},
	'I': {C: 6, H: 11, N: 1, O: 1, S: 0},
	'L': {C: 6, H: 11, N: 1, O: 1, S: 0},
	'K': {C: 6, H: 12, N: 2, O: 1, S: 0},
	'M': {C: 5, H: 9, N: 1, O: 1, S: 1},
	'F': {C: 9, H: 9, N: 1, O: 1, S: 0},
	'P': {C: 5, H: 7, N: 1, O: 1, S: 0},
	'S': {C: 3, H: 5, N: 1, O: 2, S: 0},
	'T': {C: 4, H: 7, N: 1, O: 2, S: 0},
	'W': {C: 11, H: 10, N: 2, O: 1, S: 0},
	'Y': {C: 9, H: 9, N: 1, O: 2, S: 0},
	'V': {C: 5, H: 9, N: 1, O: 1, S: 0},
}

// ResidueMass returns the monoisotopic residue mass of an amino acid.
// Unrecognized residues (X, B, Z, ...) have no defined mass and return NaN so
// that every quantity computed from them is NaN as well.
func ResidueMass(aa rune) float64 {
	comp, ok := AminoAcidMasses[aa]
	if !ok {
		return math.NaN()
	}
	return comp.Mass()
}

// CalculateNeutralMass computes the neutral monoisotopic mass of a peptide.
// The result is NaN when the sequence contains an unrecognized residue.
func CalculateNeutralMass(sequence string, modifications []Modification) float64 {
	mass := WaterMass
	for _, aa := range sequence {
		mass += ResidueMass(aa)
	}

	// Add modification masses
	for _, mod := range modifications {
		mass += mod.Mass
	}

	return mass
}

// ToMz converts a neutral mass to m/z: (mass + charge * proton) / charge
func ToMz(mass float64, charge int) float64 {
	return (mass + float64(charge)*ProtonMass) / float64(charge)
}

// ToMass converts an m/z at the given charge back to a neutral mass
func ToMass(mz float64, charge int) float64 {
	return mz*float64(charge) - float64(charge)*ProtonMass
}
