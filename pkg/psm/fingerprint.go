package psm

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// Fingerprint hashes the (scan, notch, score, ambiguity group) content of a
// PSM list. Two searches agree exactly when their fingerprints agree.
func Fingerprint(psms []*PSM) uint64 {
	d := xxhash.New()
	var buf [8]byte
	put := func(v uint64) {
		binary.LittleEndian.PutUint64(buf[:], v)
		d.Write(buf[:])
	}
	for _, p := range psms {
		if p == nil {
			continue
		}
		put(uint64(p.ScanIndex))
		put(uint64(p.Notch))
		put(math.Float64bits(p.Score))
		put(uint64(p.NumCandidates()))
		for _, id := range p.CandidateIDs() {
			put(uint64(id))
		}
	}
	return d.Sum64()
}

// Summary is the comparable content of a PSM.
type Summary struct {
	ScanIndex  int
	ScanID     string
	Notch      int
	Score      float64
	Candidates []uint32
}

// Summarize reduces PSMs to their comparable content, skipping nil entries.
func Summarize(psms []*PSM) []Summary {
	var out []Summary
	for _, p := range psms {
		if p == nil {
			continue
		}
		out = append(out, Summary{
			ScanIndex:  p.ScanIndex,
			ScanID:     p.Scan.ID,
			Notch:      p.Notch,
			Score:      p.Score,
			Candidates: p.CandidateIDs(),
		})
	}
	return out
}

// ScoreEpsilon is the relative score difference Diff treats as equal.
const ScoreEpsilon = 1e-9

// Diff compares two PSM lists by content and returns a human-readable
// difference, or "" when they agree. Scores are compared within ScoreEpsilon.
func Diff(a, b []*PSM) string {
	return cmp.Diff(Summarize(a), Summarize(b), cmpopts.EquateApprox(ScoreEpsilon, 0))
}
