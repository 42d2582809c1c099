// Package index builds the fragment-mass index used by the modern search
// engine: per partition, an array of buckets keyed by quantized fragment mass,
// each listing the candidates that produce a fragment of that mass.
package index

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync/atomic"

	"github.com/ChrisMcGann/pepsearch/pkg/core"
)

const (
	DefaultBinsPerDalton   = 1000
	DefaultMaxFragmentMass = 30000.0
)

var (
	// ErrFragmentOutOfRange is wrapped by *BoundsError.
	ErrFragmentOutOfRange = errors.New("fragment mass outside index range")
	// ErrResolutionMismatch means an index is queried at a resolution other
	// than the one it was built with.
	ErrResolutionMismatch = errors.New("fragment index resolution mismatch")
	// ErrReleased is returned by operations on a discarded index.
	ErrReleased = errors.New("fragment index has been released")
)

// BoundsError reports the first fragment that does not fit the index.
type BoundsError struct {
	CandidateID  uint32
	Sequence     string
	FragmentMass float64
	MaxMass      float64
}

func (e *BoundsError) Error() string {
	name := fmt.Sprintf("candidate %d", e.CandidateID)
	if e.Sequence != "" {
		name += " (" + e.Sequence + ")"
	}
	return fmt.Sprintf("%s: fragment mass %.4f outside [0, %.1f]; raise max_fragment_mass or exclude the candidate",
		name, e.FragmentMass, e.MaxMass)
}

func (e *BoundsError) Unwrap() error { return ErrFragmentOutOfRange }

// Options fixes the index geometry. Resolution must be identical at build
// and query time.
type Options struct {
	BinsPerDalton   int
	MaxFragmentMass float64
	Terminus        core.Terminus
}

// DefaultOptions returns 1000 bins per dalton up to 30 kDa on both termini.
func DefaultOptions() Options {
	return Options{BinsPerDalton: DefaultBinsPerDalton, MaxFragmentMass: DefaultMaxFragmentMass}
}

// Validate rejects non-positive geometry.
func (o Options) Validate() error {
	if o.BinsPerDalton <= 0 {
		return &core.ConfigError{Field: "bins_per_dalton", Message: fmt.Sprintf("must be positive, got %d", o.BinsPerDalton)}
	}
	if !(o.MaxFragmentMass > 0) || math.IsInf(o.MaxFragmentMass, 0) {
		return &core.ConfigError{Field: "max_fragment_mass", Message: fmt.Sprintf("must be positive and finite, got %v", o.MaxFragmentMass)}
	}
	return nil
}

// Index is one partition's fragment index. Buckets are stored compactly: only
// the span between the lowest and highest occupied bucket is materialized, as
// offsets into one flat entry array. Entries are positions in the candidate
// table, ascending within each bucket.
//
// An Index is read-only after Build and may be shared by any number of
// goroutines until Release is called.
type Index struct {
	opts       Options
	candidates []*core.CandidatePeptide

	minBucket int
	offsets   []uint32
	entries   []uint32

	released atomic.Bool
}

// Build indexes the candidates of one partition. The candidate table is
// sorted by mass (NaN last, ties by ID). Fragments that are NaN are skipped;
// any other fragment outside [0, MaxFragmentMass] fails the build with a
// *BoundsError.
func Build(candidates []*core.CandidatePeptide, opts Options) (*Index, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	table := append([]*core.CandidatePeptide(nil), candidates...)
	SortByMass(table)

	idx := &Index{opts: opts, candidates: table}

	lo, hi := math.MaxInt, -1
	for _, c := range table {
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("indexing candidate %d: %w", c.ID, err)
		}
		nTerm, cTerm := c.Fragments(opts.Terminus)
		for _, series := range [2][]float64{nTerm, cTerm} {
			for _, f := range series {
				if math.IsNaN(f) {
					continue
				}
				if f < 0 || f > opts.MaxFragmentMass {
					return nil, &BoundsError{CandidateID: c.ID, Sequence: c.Sequence, FragmentMass: f, MaxMass: opts.MaxFragmentMass}
				}
				b := idx.BucketOf(f)
				lo = min(lo, b)
				hi = max(hi, b)
			}
		}
	}
	if hi < 0 {
		idx.offsets = []uint32{0}
		return idx, nil
	}

	idx.minBucket = lo
	counts := make([]uint32, hi-lo+2)
	idx.forEachFragment(func(pos uint32, b int) {
		counts[b-lo+1]++
	})
	for i := 1; i < len(counts); i++ {
		counts[i] += counts[i-1]
	}
	idx.offsets = counts
	idx.entries = make([]uint32, counts[len(counts)-1])

	next := append([]uint32(nil), counts[:len(counts)-1]...)
	idx.forEachFragment(func(pos uint32, b int) {
		k := b - lo
		idx.entries[next[k]] = pos
		next[k]++
	})
	return idx, nil
}

func (idx *Index) forEachFragment(fn func(pos uint32, bucket int)) {
	for pos, c := range idx.candidates {
		nTerm, cTerm := c.Fragments(idx.opts.Terminus)
		for _, series := range [2][]float64{nTerm, cTerm} {
			for _, f := range series {
				if !math.IsNaN(f) {
					fn(uint32(pos), idx.BucketOf(f))
				}
			}
		}
	}
}

// SortByMass orders candidates by mass with NaN masses last, ties by ID.
func SortByMass(cands []*core.CandidatePeptide) {
	sort.SliceStable(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		aNaN, bNaN := math.IsNaN(a.Mass), math.IsNaN(b.Mass)
		switch {
		case aNaN != bNaN:
			return bNaN
		case !aNaN && a.Mass != b.Mass:
			return a.Mass < b.Mass
		}
		return a.ID < b.ID
	})
}

// BucketOf quantizes a mass at the index resolution.
func (idx *Index) BucketOf(mass float64) int {
	return int(math.Round(mass * float64(idx.opts.BinsPerDalton)))
}

// Window returns the bucket range covering [lo, hi], widened by one bucket on
// each side.
func (idx *Index) Window(lo, hi float64) (first, last int) {
	return idx.BucketOf(lo) - 1, idx.BucketOf(hi) + 1
}

// Entries returns the candidate positions stored in a bucket. Buckets outside
// the occupied span are empty.
func (idx *Index) Entries(bucket int) []uint32 {
	k := bucket - idx.minBucket
	if k < 0 || k >= len(idx.offsets)-1 {
		return nil
	}
	return idx.entries[idx.offsets[k]:idx.offsets[k+1]]
}

// Query returns the IDs of candidates with a fragment within tol of mass,
// ascending and without duplicates. Matching is at bucket granularity.
func (idx *Index) Query(mass float64, tol core.Tolerance) ([]uint32, error) {
	if idx.Released() {
		return nil, ErrReleased
	}
	lo, hi := tol.Bounds(mass)
	first, last := idx.Window(lo, hi)

	seen := make(map[uint32]bool)
	var ids []uint32
	for b := first; b <= last; b++ {
		for _, pos := range idx.Entries(b) {
			id := idx.candidates[pos].ID
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// CheckResolution fails with ErrResolutionMismatch when binsPerDalton is not
// the resolution the index was built with.
func (idx *Index) CheckResolution(binsPerDalton int) error {
	if binsPerDalton != idx.opts.BinsPerDalton {
		return fmt.Errorf("%w: built with %d bins/Da, queried with %d", ErrResolutionMismatch, idx.opts.BinsPerDalton, binsPerDalton)
	}
	return nil
}

// Options returns the geometry the index was built with.
func (idx *Index) Options() Options { return idx.opts }

// Len is the number of candidates in the partition.
func (idx *Index) Len() int { return len(idx.candidates) }

// Candidate returns the candidate at a table position.
func (idx *Index) Candidate(pos uint32) *core.CandidatePeptide { return idx.candidates[pos] }

// Candidates returns the partition's candidate table in index order.
func (idx *Index) Candidates() []*core.CandidatePeptide { return idx.candidates }

// Release discards the buckets. The caller must ensure no search is still
// using the index.
func (idx *Index) Release() {
	if idx.released.Swap(true) {
		return
	}
	idx.offsets = nil
	idx.entries = nil
	idx.candidates = nil
}

// Released reports whether Release has been called.
func (idx *Index) Released() bool { return idx.released.Load() }

// Stats summarizes an index.
type Stats struct {
	Candidates      int
	Entries         int
	Buckets         int
	OccupiedBuckets int
	LargestBucket   int
	MinMass         float64
	MaxMass         float64
}

// Stats walks the bucket array.
func (idx *Index) Stats() Stats {
	s := Stats{Candidates: len(idx.candidates), Entries: len(idx.entries)}
	if len(idx.offsets) < 2 {
		return s
	}
	s.Buckets = len(idx.offsets) - 1
	for k := 0; k < s.Buckets; k++ {
		n := int(idx.offsets[k+1] - idx.offsets[k])
		if n > 0 {
			s.OccupiedBuckets++
		}
		s.LargestBucket = max(s.LargestBucket, n)
	}
	bins := float64(idx.opts.BinsPerDalton)
	s.MinMass = float64(idx.minBucket) / bins
	s.MaxMass = float64(idx.minBucket+s.Buckets-1) / bins
	return s
}
