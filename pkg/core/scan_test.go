package core

import (
	"math"
	"testing"
)

func TestScanValidation(t *testing.T) {
	tests := []struct {
		name    string
		scan    *Scan
		wantErr bool
	}{
		{
			name: "valid scan",
			scan: &Scan{
				ID:            "scan=1",
				OneBasedIndex: 1,
				PrecursorMass: 800.4,
				Peaks: []Peak{
					{Mass: 100.0, Intensity: 1000.0},
					{Mass: 200.0, Intensity: 2000.0},
				},
			},
			wantErr: false,
		},
		{
			name: "no peaks is allowed",
			scan: &Scan{
				ID:            "scan=2",
				OneBasedIndex: 2,
				PrecursorMass: 800.4,
			},
			wantErr: false,
		},
		{
			name: "missing precursor mass",
			scan: &Scan{
				ID:            "scan=3",
				OneBasedIndex: 3,
				Peaks:         []Peak{{Mass: 100.0, Intensity: 1000.0}},
			},
			wantErr: true,
		},
		{
			name: "zero index",
			scan: &Scan{
				ID:            "scan=4",
				PrecursorMass: 800.4,
			},
			wantErr: true,
		},
		{
			name: "unsorted peaks",
			scan: &Scan{
				ID:            "scan=5",
				OneBasedIndex: 5,
				PrecursorMass: 800.4,
				Peaks: []Peak{
					{Mass: 200.0, Intensity: 2000.0},
					{Mass: 100.0, Intensity: 1000.0},
				},
			},
			wantErr: true,
		},
		{
			name: "NaN mass",
			scan: &Scan{
				ID:            "scan=6",
				OneBasedIndex: 6,
				PrecursorMass: 800.4,
				Peaks:         []Peak{{Mass: math.NaN(), Intensity: 1000.0}},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.scan.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSortPeaks(t *testing.T) {
	scan := &Scan{
		Peaks: []Peak{
			{Mass: 300.0, Intensity: 100.0},
			{Mass: 100.0, Intensity: 200.0},
			{Mass: 200.0, Intensity: 150.0},
		},
	}

	scan.SortPeaks()

	expected := []float64{100.0, 200.0, 300.0}
	for i, peak := range scan.Peaks {
		if peak.Mass != expected[i] {
			t.Errorf("Peak %d: expected mass %.1f, got %.1f", i, expected[i], peak.Mass)
		}
	}
}

func TestIntensitySummaries(t *testing.T) {
	scan := &Scan{
		Peaks: []Peak{
			{Mass: 100.0, Intensity: 10.0},
			{Mass: 200.0, Intensity: 30.0},
			{Mass: 300.0, Intensity: 60.0},
		},
	}

	if tic := scan.TotalIonCurrent(); tic != 100 {
		t.Errorf("TotalIonCurrent() = %v, want 100", tic)
	}
	if max := scan.MaxIntensity(); max != 60 {
		t.Errorf("MaxIntensity() = %v, want 60", max)
	}
	if got := (&Scan{}).TotalIonCurrent(); got != 0 {
		t.Errorf("empty TotalIonCurrent() = %v, want 0", got)
	}
}

func TestPeaksInRange(t *testing.T) {
	scan := &Scan{Peaks: []Peak{{Mass: 100}, {Mass: 150}, {Mass: 200}, {Mass: 250}}}

	got := scan.PeaksInRange(140, 200)
	if len(got) != 2 || got[0].Mass != 150 || got[1].Mass != 200 {
		t.Errorf("PeaksInRange(140, 200) = %v", got)
	}
	if got := scan.PeaksInRange(201, 249); got != nil {
		t.Errorf("PeaksInRange(201, 249) = %v, want nil", got)
	}
}

func TestNewScanFromMz(t *testing.T) {
	scan := NewScanFromMz("s", 2, 402.186, 2, []float64{257.1244, 147.0764}, []float64{1, 1})

	if !scan.ArePeaksSorted() {
		t.Fatal("peaks not sorted")
	}
	if math.Abs(scan.Peaks[0].Mass-(147.0764-ProtonMass)) > 1e-12 {
		t.Errorf("first peak mass = %v", scan.Peaks[0].Mass)
	}
	if scan.Name() != "s/2" {
		t.Errorf("Name() = %s", scan.Name())
	}
}
