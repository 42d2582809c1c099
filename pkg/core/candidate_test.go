package core

import (
	"math"
	"testing"
)

func TestCandidateValidate(t *testing.T) {
	nan := math.NaN()
	tests := []struct {
		name    string
		cand    CandidatePeptide
		wantErr bool
	}{
		{"ascending", CandidatePeptide{NTerm: []float64{1, 2, 3}, CTerm: []float64{4, 5}}, false},
		{"NaN suffix", CandidatePeptide{NTerm: []float64{1, nan, nan}, CTerm: []float64{2, nan}}, false},
		{"all NaN", CandidatePeptide{NTerm: []float64{nan}}, false},
		{"descending", CandidatePeptide{NTerm: []float64{3, 2}}, true},
		{"value after NaN", CandidatePeptide{CTerm: []float64{1, nan, 3}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cand.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCandidateFragments(t *testing.T) {
	c := &CandidatePeptide{NTerm: []float64{1}, CTerm: []float64{2}}

	n, cc := c.Fragments(NTerminal)
	if len(n) != 1 || cc != nil {
		t.Errorf("NTerminal: got %v %v", n, cc)
	}
	n, cc = c.Fragments(CTerminal)
	if n != nil || len(cc) != 1 {
		t.Errorf("CTerminal: got %v %v", n, cc)
	}
	n, cc = c.Fragments(Both)
	if len(n) != 1 || len(cc) != 1 {
		t.Errorf("Both: got %v %v", n, cc)
	}
}

func TestMatchedIonLabel(t *testing.T) {
	tests := []struct {
		ion  MatchedIon
		want string
	}{
		{MatchedIon{Terminus: NTerminal, Number: 3}, "b3"},
		{MatchedIon{Terminus: CTerminal, Number: 2}, "y2"},
		{MatchedIon{Terminus: CTerminal, Number: 1, Complementary: true}, "y1*"},
	}
	for _, tt := range tests {
		if got := tt.ion.Label(); got != tt.want {
			t.Errorf("Label() = %s, want %s", got, tt.want)
		}
	}
}
