package core

import (
	"math"
	"testing"
)

func TestParseDissociation(t *testing.T) {
	tests := []struct {
		in      string
		want    Dissociation
		wantErr bool
	}{
		{"HCD", HCD, false},
		{"", HCD, false},
		{"cid", CID, false},
		{"etd", ETD, false},
		{"EThcD", HCD, true},
	}
	for _, tt := range tests {
		got, err := ParseDissociation(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDissociation(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseDissociation(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestComplementaryShift(t *testing.T) {
	if HCD.ComplementaryShift() != 0 || CID.ComplementaryShift() != 0 {
		t.Errorf("b/y complement shift should be zero")
	}
	if math.Abs(ETD.ComplementaryShift()-MassH) > 1e-12 {
		t.Errorf("ETD complement shift = %v, want %v", ETD.ComplementaryShift(), MassH)
	}
}
