package search

import (
	"context"
	"math"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ChrisMcGann/pepsearch/pkg/core"
	"github.com/ChrisMcGann/pepsearch/pkg/digest"
	"github.com/ChrisMcGann/pepsearch/pkg/massdiff"
	"github.com/ChrisMcGann/pepsearch/pkg/psm"
)

var engines = []Engine{Classic, Modern}

// afterK digests with a K-specific protease, no missed cleavages and no
// length floor.
func afterK(t *testing.T, proteins ...string) []*core.CandidatePeptide {
	t.Helper()
	opts := digest.DefaultOptions()
	var err error
	opts.Protease, err = digest.ParseProtease("after:K")
	require.NoError(t, err)
	opts.MissedCleavages = 0
	opts.MinLength = 1

	var prots []*core.Protein
	for i, seq := range proteins {
		prots = append(prots, &core.Protein{Accession: string(rune('A' + i)), Sequence: seq})
	}
	cands, err := digest.Digest(prots, opts)
	require.NoError(t, err)
	return cands
}

func testParams(t *testing.T, acceptor massdiff.Acceptor) Params {
	t.Helper()
	p := DefaultParams()
	p.Acceptor = acceptor
	p.Scorer.Tolerance = core.Tolerance{Unit: core.Absolute, Value: 0.01}
	p.Partitions = 2
	p.Threads = 2
	return p
}

func exact5ppm(t *testing.T) massdiff.Acceptor {
	t.Helper()
	a, err := massdiff.NewExact(core.Tolerance{Unit: core.PPM, Value: 5})
	require.NoError(t, err)
	return a
}

// fragmentScan builds a scan whose peaks are the given neutral masses.
func fragmentScan(id string, index int, precursor float64, masses ...float64) *core.Scan {
	sorted := append([]float64(nil), masses...)
	sort.Float64s(sorted)
	s := &core.Scan{ID: id, OneBasedIndex: index, PrecursorMass: precursor, PrecursorCharge: 2}
	for _, m := range sorted {
		if !math.IsNaN(m) {
			s.Peaks = append(s.Peaks, core.Peak{Mass: m, Intensity: 1})
		}
	}
	return s
}

func runSearch(t *testing.T, engine Engine, cands []*core.CandidatePeptide, scans []*core.Scan, params Params) *Result {
	t.Helper()
	res, err := Search(context.Background(), engine, cands, scans, params)
	require.NoError(t, err)
	require.NotNil(t, res)
	return res
}

func nonNil(psms []*psm.PSM) []*psm.PSM {
	var out []*psm.PSM
	for _, p := range psms {
		if p != nil {
			out = append(out, p)
		}
	}
	return out
}
