package search

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChrisMcGann/pepsearch/pkg/core"
	"github.com/ChrisMcGann/pepsearch/pkg/digest"
	"github.com/ChrisMcGann/pepsearch/pkg/index"
	"github.com/ChrisMcGann/pepsearch/pkg/massdiff"
)

func qqqScan() *core.Scan {
	return core.NewScanFromMz("scan=1", 1, 402.18629720155, 2,
		[]float64{50, 60, 70, 147.0764, 257.1244, 275.1350},
		[]float64{1, 1, 1, 1, 1, 1})
}

func TestFindsQQQ(t *testing.T) {
	cands := afterK(t, "MNNNKQQQ")
	require.Len(t, cands, 2)

	for _, engine := range engines {
		t.Run(engine.String(), func(t *testing.T) {
			res := runSearch(t, engine, cands, []*core.Scan{qqqScan()}, testParams(t, exact5ppm(t)))

			psms := nonNil(res.PSMs())
			require.Len(t, psms, 1)
			p := psms[0]
			assert.Greater(t, p.Score, 1.0)
			require.Equal(t, 1, p.NumCandidates())
			assert.Equal(t, "QQQ", cands[p.BestID].Sequence)
			assert.Len(t, p.MatchedIons, 3)
		})
	}
}

func TestComplementaryIonsDoubleMatches(t *testing.T) {
	cands := afterK(t, "MNNNKQQQ")

	for _, engine := range engines {
		t.Run(engine.String(), func(t *testing.T) {
			params := testParams(t, exact5ppm(t))
			plain := nonNil(runSearch(t, engine, cands, []*core.Scan{qqqScan()}, params).PSMs())

			params.Scorer.Complementary = true
			comp := nonNil(runSearch(t, engine, cands, []*core.Scan{qqqScan()}, params).PSMs())

			require.Len(t, plain, 1)
			require.Len(t, comp, 1)
			assert.Equal(t, plain[0].CandidateIDs(), comp[0].CandidateIDs())
			assert.Equal(t, plain[0].ScanIndex, comp[0].ScanIndex)
			assert.Len(t, comp[0].MatchedIons, 2*len(plain[0].MatchedIons))
			assert.InDelta(t, 2*plain[0].Score, comp[0].Score, 1e-9)
		})
	}
}

func TestCoIsolatedPrecursors(t *testing.T) {
	cands := afterK(t, "NNNKNDNK")
	require.Len(t, cands, 2)

	var peaks []float64
	for _, c := range cands {
		peaks = append(peaks, c.NTerm...)
		peaks = append(peaks, c.CTerm...)
	}
	// one physical spectrum, two precursor hypotheses
	scans := []*core.Scan{
		fragmentScan("scan=7", 1, cands[0].Mass, peaks...),
		fragmentScan("scan=7", 1, cands[1].Mass, peaks...),
	}

	for _, engine := range engines {
		t.Run(engine.String(), func(t *testing.T) {
			res := runSearch(t, engine, cands, scans, testParams(t, exact5ppm(t)))
			psms := nonNil(res.PSMs())
			require.Len(t, psms, 2)

			var seqs []string
			for _, p := range psms {
				assert.Equal(t, "scan=7", p.Scan.ID)
				require.Equal(t, 1, p.NumCandidates())
				seqs = append(seqs, cands[p.BestID].Sequence)
			}
			assert.ElementsMatch(t, []string{"NNNK", "NDNK"}, seqs)
		})
	}
}

func TestNonStandardResidue(t *testing.T) {
	cands := afterK(t, "PEPXIDEK")
	require.Len(t, cands, 1)
	require.True(t, math.IsNaN(cands[0].Mass))

	// b1..b3 are valid, y1..y4 are valid
	c := cands[0]
	masses := append(append([]float64{}, c.NTerm[:3]...), c.CTerm[:4]...)
	scan := fragmentScan("scan=3", 1, 900, masses...)

	for _, engine := range engines {
		t.Run(engine.String(), func(t *testing.T) {
			res := runSearch(t, engine, cands, []*core.Scan{scan}, testParams(t, massdiff.Open{}))
			psms := nonNil(res.PSMs())
			require.Len(t, psms, 1)
			assert.Equal(t, 7.0, psms[0].Score)
			for _, ion := range psms[0].MatchedIons {
				assert.False(t, math.IsNaN(ion.TheoreticalMass))
			}
		})
	}
}

func TestIsobaricCandidatesAreAmbiguous(t *testing.T) {
	// I and L have the same residue mass, so these digest to identical
	// fragment arrays.
	cands := afterK(t, "PEPTIDEK", "PEPTLDEK")
	require.Len(t, cands, 2)
	assert.Equal(t, cands[0].NTerm, cands[1].NTerm)

	scan := fragmentScan("scan=9", 1, cands[0].Mass, append(cands[0].NTerm, cands[0].CTerm...)...)

	for _, engine := range engines {
		t.Run(engine.String(), func(t *testing.T) {
			res := runSearch(t, engine, cands, []*core.Scan{scan}, testParams(t, exact5ppm(t)))
			psms := nonNil(res.PSMs())
			require.Len(t, psms, 1)
			assert.Equal(t, []uint32{0, 1}, psms[0].CandidateIDs())
			assert.Equal(t, uint32(0), psms[0].BestID)
		})
	}
}

func TestIsotopeNotches(t *testing.T) {
	cands := afterK(t, "PEPTIDEK")
	acc, err := massdiff.Parse("1mm", core.Tolerance{Unit: core.PPM, Value: 10}, "")
	require.NoError(t, err)

	c := cands[0]
	frags := append(append([]float64{}, c.NTerm...), c.CTerm...)
	scans := []*core.Scan{
		fragmentScan("a", 1, c.Mass, frags...),
		fragmentScan("b", 2, c.Mass+1.0029, frags...),
		fragmentScan("c", 3, c.Mass+0.5, frags...),
	}

	for _, engine := range engines {
		t.Run(engine.String(), func(t *testing.T) {
			res := runSearch(t, engine, cands, scans, testParams(t, acc))
			psms := res.PSMs()
			require.Len(t, psms, 3)
			require.NotNil(t, psms[0])
			require.NotNil(t, psms[1])
			assert.Nil(t, psms[2])
			assert.Equal(t, 0, psms[0].Notch)
			assert.Equal(t, 1, psms[1].Notch)
		})
	}
}

func TestNoMatchIsNotAnError(t *testing.T) {
	cands := afterK(t, "PEPTIDEK")
	scan := fragmentScan("empty", 1, 2000, 100, 200)
	for _, engine := range engines {
		res := runSearch(t, engine, cands, []*core.Scan{scan}, testParams(t, exact5ppm(t)))
		assert.Equal(t, 0, res.Aggregator.Count())
	}
}

func TestParamsValidation(t *testing.T) {
	p := testParams(t, exact5ppm(t))
	p.MinScore = 0
	var cfgErr *core.ConfigError
	assert.True(t, errors.As(p.Validate(), &cfgErr))

	p = testParams(t, nil)
	assert.True(t, errors.As(p.Validate(), &cfgErr))

	p = testParams(t, exact5ppm(t))
	p.Scorer.Terminus = core.CTerminal
	assert.True(t, errors.As(p.Validate(), &cfgErr))

	p = testParams(t, exact5ppm(t))
	p.Partitions, p.Threads = 0, 0
	require.NoError(t, p.Validate())
	assert.Positive(t, p.Threads)
	assert.Equal(t, p.Threads, p.Partitions)
}

func TestModernRejectsBadIndexes(t *testing.T) {
	cands := afterK(t, "MNNNKQQQ")
	params := testParams(t, exact5ppm(t))

	opts := index.DefaultOptions()
	opts.BinsPerDalton = 100
	idx, err := index.Build(cands, opts)
	require.NoError(t, err)
	_, err = RunModern(context.Background(), []*index.Index{idx}, []*core.Scan{qqqScan()}, params)
	assert.ErrorIs(t, err, index.ErrResolutionMismatch)

	idx, err = index.Build(cands, index.DefaultOptions())
	require.NoError(t, err)
	idx.Release()
	_, err = RunModern(context.Background(), []*index.Index{idx}, []*core.Scan{qqqScan()}, params)
	assert.ErrorIs(t, err, index.ErrReleased)
}

func TestInvalidScanRejected(t *testing.T) {
	cands := afterK(t, "MNNNKQQQ")
	bad := &core.Scan{ID: "bad", OneBasedIndex: 1, PrecursorMass: 400,
		Peaks: []core.Peak{{Mass: 200, Intensity: 1}, {Mass: 100, Intensity: 1}}}

	_, err := Search(context.Background(), Classic, cands, []*core.Scan{bad}, testParams(t, exact5ppm(t)))
	var ve *core.ValidationError
	assert.True(t, errors.As(err, &ve))
}

func TestInvalidCandidateRejectedByBothEngines(t *testing.T) {
	cands := afterK(t, "MNNNKQQQ")
	bad := *cands[len(cands)-1]
	bad.ID = uint32(len(cands))
	bad.NTerm = []float64{300, 200}
	cands = append(cands, &bad)

	for _, engine := range engines {
		t.Run(engine.String(), func(t *testing.T) {
			res, err := Search(context.Background(), engine, cands, []*core.Scan{qqqScan()}, testParams(t, exact5ppm(t)))
			assert.Nil(t, res)
			var ve *core.ValidationError
			assert.True(t, errors.As(err, &ve), "got %v", err)
		})
	}
}

func TestSearchLogs(t *testing.T) {
	var buf bytes.Buffer
	params := testParams(t, exact5ppm(t))
	params.Logger = slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	runSearch(t, Modern, afterK(t, "MNNNKQQQ"), []*core.Scan{qqqScan()}, params)

	out := buf.String()
	assert.Contains(t, out, "fragment index built")
	assert.Contains(t, out, "engine=modern")
	assert.Equal(t, 2, strings.Count(out, "partition searched"))
}

func TestParseEngine(t *testing.T) {
	e, err := ParseEngine("classic")
	require.NoError(t, err)
	assert.Equal(t, Classic, e)
	e, err = ParseEngine("")
	require.NoError(t, err)
	assert.Equal(t, Modern, e)
	_, err = ParseEngine("quantum")
	assert.Error(t, err)
}

func TestDigestFragmentsFeedScorer(t *testing.T) {
	// guards the chemistry shared between digestion and the QQQ scenario
	nTerm, cTerm := digest.Fragments("QQQ", core.HCD)
	scan := qqqScan()
	matched := 0
	for _, f := range append(nTerm, cTerm...) {
		if len(scan.PeaksInRange(f-0.01, f+0.01)) > 0 {
			matched++
		}
	}
	assert.Equal(t, 3, matched)
}
