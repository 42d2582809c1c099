package digest

import (
	"fmt"
	"strings"

	"github.com/ChrisMcGann/pepsearch/pkg/core"
)

// InitiatorMethionine controls the protein N-terminal methionine.
type InitiatorMethionine int

const (
	Retain InitiatorMethionine = iota
	Cleave
	Variable
)

func (m InitiatorMethionine) String() string {
	switch m {
	case Cleave:
		return "cleave"
	case Variable:
		return "variable"
	}
	return "retain"
}

// ParseInitiatorMethionine parses "retain", "cleave" or "variable".
func ParseInitiatorMethionine(s string) (InitiatorMethionine, error) {
	switch strings.ToLower(s) {
	case "", "retain":
		return Retain, nil
	case "cleave":
		return Cleave, nil
	case "variable":
		return Variable, nil
	}
	return Retain, &core.ConfigError{Field: "initiator_methionine", Message: fmt.Sprintf("unknown option %q", s)}
}

// DecoyPrefix is prepended to the accession of decoy candidates.
const DecoyPrefix = "DECOY_"

// Options configures digestion.
type Options struct {
	Protease            Protease
	MissedCleavages     int
	MinLength           int
	MaxLength           int // 0 means unlimited
	InitiatorMethionine InitiatorMethionine
	FixedMods           []core.FixedModification
	Decoys              bool
	Dissociation        core.Dissociation
}

// DefaultOptions digests with trypsin, two missed cleavages and peptides of 7
// to 50 residues.
func DefaultOptions() Options {
	return Options{
		Protease:        proteases["trypsin"],
		MissedCleavages: 2,
		MinLength:       7,
		MaxLength:       50,
	}
}

// Validate checks option ranges.
func (o Options) Validate() error {
	if o.Protease.CleaveAfter == "" {
		return &core.ConfigError{Field: "protease", Message: "no cleavage residues"}
	}
	if o.MissedCleavages < 0 {
		return &core.ConfigError{Field: "missed_cleavages", Message: "must not be negative"}
	}
	if o.MinLength < 1 {
		return &core.ConfigError{Field: "min_length", Message: "must be at least 1"}
	}
	if o.MaxLength != 0 && o.MaxLength < o.MinLength {
		return &core.ConfigError{Field: "max_length", Message: fmt.Sprintf("%d is below min_length %d", o.MaxLength, o.MinLength)}
	}
	return nil
}

// Digest cleaves every protein and returns the candidate peptides with IDs
// assigned in order: proteins in input order, peptides by start then length,
// each decoy directly after its target.
func Digest(proteins []*core.Protein, opts Options) ([]*core.CandidatePeptide, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	b := newBuilder(opts)

	var out []*core.CandidatePeptide
	for _, prot := range proteins {
		for _, seq := range Peptides(prot.Sequence, opts) {
			out = append(out, b.candidate(uint32(len(out)), seq, prot.Accession, prot.Decoy))
			if opts.Decoys && !prot.Decoy {
				out = append(out, b.candidate(uint32(len(out)), Reverse(seq), DecoyPrefix+prot.Accession, true))
			}
		}
	}
	return out, nil
}

// Peptides returns the peptide sequences of one protein in start, then
// length, order.
func Peptides(seq string, opts Options) []string {
	seq = strings.ToUpper(seq)
	sites := opts.Protease.Sites(seq)

	// starts indexes into sites plus an optional extra start after Met.
	type start struct{ pos, next int }
	var starts []start
	metStart := len(seq) > 1 && seq[0] == 'M' && opts.InitiatorMethionine != Retain
	for i := 0; i < len(sites)-1; i++ {
		if i == 0 && metStart {
			if opts.InitiatorMethionine == Variable {
				starts = append(starts, start{pos: 0, next: 1})
			}
			starts = append(starts, start{pos: 1, next: 1})
			continue
		}
		starts = append(starts, start{pos: sites[i], next: i + 1})
	}

	var out []string
	for _, s := range starts {
		for m := 0; m <= opts.MissedCleavages && s.next+m < len(sites); m++ {
			end := sites[s.next+m]
			if end <= s.pos {
				continue
			}
			n := end - s.pos
			if n < opts.MinLength || (opts.MaxLength > 0 && n > opts.MaxLength) {
				continue
			}
			out = append(out, seq[s.pos:end])
		}
	}
	return out
}

// Reverse returns the decoy form of a peptide: every residue but the last in
// reverse order, so the cleavage residue stays C-terminal.
func Reverse(seq string) string {
	if len(seq) < 2 {
		return seq
	}
	r := []byte(seq)
	for i, j := 0, len(r)-2; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return string(r)
}
