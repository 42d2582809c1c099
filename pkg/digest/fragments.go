package digest

import (
	"math"

	"github.com/ChrisMcGann/pepsearch/pkg/core"
)

type builder struct {
	fixed        []core.FixedModification
	residueShift map[byte]float64
	nTermShift   float64
	cTermShift   float64
	dissociation core.Dissociation
}

func newBuilder(opts Options) *builder {
	b := &builder{fixed: opts.FixedMods, residueShift: make(map[byte]float64), dissociation: opts.Dissociation}
	for _, mod := range opts.FixedMods {
		switch mod.Residue {
		case '^':
			b.nTermShift += mod.Mass
		case '$':
			b.cTermShift += mod.Mass
		default:
			b.residueShift[byte(mod.Residue)] += mod.Mass
		}
	}
	return b
}

func (b *builder) candidate(id uint32, seq, protein string, decoy bool) *core.CandidatePeptide {
	residues := b.residueMasses(seq)
	nTerm, cTerm := fragmentSeries(residues, b.dissociation)

	return &core.CandidatePeptide{
		ID:       id,
		Mass:     core.CalculateNeutralMass(seq, b.modifications(seq)),
		NTerm:    nTerm,
		CTerm:    cTerm,
		Sequence: seq,
		Protein:  protein,
		Decoy:    decoy,
	}
}

// modifications lists every fixed modification site in seq.
func (b *builder) modifications(seq string) []core.Modification {
	var mods []core.Modification
	if len(seq) == 0 {
		return nil
	}
	for _, fm := range b.fixed {
		switch fm.Residue {
		case '^':
			mods = append(mods, fm.At(0))
		case '$':
			mods = append(mods, fm.At(len(seq)-1))
		default:
			for i := 0; i < len(seq); i++ {
				if rune(seq[i]) == fm.Residue {
					mods = append(mods, fm.At(i))
				}
			}
		}
	}
	return mods
}

// residueMasses applies fixed modifications. Terminal modifications are folded
// into the first and last residue. Unknown residues are NaN.
func (b *builder) residueMasses(seq string) []float64 {
	out := make([]float64, len(seq))
	for i := 0; i < len(seq); i++ {
		out[i] = core.ResidueMass(rune(seq[i])) + b.residueShift[seq[i]]
	}
	if len(out) > 0 {
		out[0] += b.nTermShift
		out[len(out)-1] += b.cTermShift
	}
	return out
}

// Fragments computes the N- and C-terminal fragment series of a peptide
// under the given chemistry, without modifications.
func Fragments(seq string, d core.Dissociation) (nTerm, cTerm []float64) {
	b := &builder{dissociation: d}
	return fragmentSeries(b.residueMasses(seq), d)
}

// fragmentSeries returns the cumulative fragment masses 1..n-1 from each
// terminus. A NaN residue poisons every fragment that contains it.
func fragmentSeries(residues []float64, d core.Dissociation) (nTerm, cTerm []float64) {
	n := len(residues)
	if n < 2 {
		return nil, nil
	}
	nTerm = make([]float64, n-1)
	cTerm = make([]float64, n-1)

	sum := d.NTermShift()
	for i := 0; i < n-1; i++ {
		sum += residues[i]
		nTerm[i] = sum
	}
	sum = core.WaterMass + d.CTermShift()
	for i := 0; i < n-1; i++ {
		sum += residues[n-1-i]
		cTerm[i] = sum
	}
	return nTerm, cTerm
}

// HasUnknownResidue reports whether any residue lacks a defined mass.
func HasUnknownResidue(seq string) bool {
	for _, r := range seq {
		if math.IsNaN(core.ResidueMass(r)) {
			return true
		}
	}
	return false
}
