package psm

import (
	"math/rand"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChrisMcGann/pepsearch/pkg/core"
)

func testScans(n int) []*core.Scan {
	scans := make([]*core.Scan, n)
	for i := range scans {
		scans[i] = &core.Scan{ID: "scan", OneBasedIndex: i + 1, PrecursorMass: 500 + float64(i)}
	}
	return scans
}

func ions(id uint32) []core.MatchedIon {
	return []core.MatchedIon{{Number: int(id) + 1}}
}

func TestUpdateRule(t *testing.T) {
	a := NewAggregator(testScans(1), 1)

	assert.Equal(t, Created, a.Offer(0, 0, 5, 10, ions(10)))
	assert.Equal(t, Discarded, a.Offer(0, 0, 4, 11, ions(11)))
	assert.Equal(t, Tied, a.Offer(0, 0, 5, 12, ions(12)))
	assert.Equal(t, Discarded, a.Offer(0, 0, 5, 12, ions(12)))

	p := a.Get(0, 0)
	require.NotNil(t, p)
	assert.Equal(t, []uint32{10, 12}, p.CandidateIDs())
	assert.True(t, p.IsAmbiguous())

	assert.Equal(t, Replaced, a.Offer(0, 0, 6, 13, ions(13)))
	assert.Equal(t, []uint32{13}, p.CandidateIDs())
	assert.Equal(t, 6.0, p.Score)
	assert.False(t, p.Contains(10))
}

func TestTieKeepsLowestIDIons(t *testing.T) {
	a := NewAggregator(testScans(1), 1)
	a.Offer(0, 0, 3, 8, ions(8))
	a.Offer(0, 0, 3, 2, ions(2))
	a.Offer(0, 0, 3, 5, ions(5))

	p := a.Get(0, 0)
	assert.Equal(t, uint32(2), p.BestID)
	assert.Equal(t, ions(2), p.MatchedIons)
}

func TestNotchesAreIndependent(t *testing.T) {
	a := NewAggregator(testScans(2), 3)
	a.Offer(1, 0, 2, 1, nil)
	a.Offer(1, 2, 4, 2, nil)
	a.Offer(0, 1, 1, 3, nil)

	all := a.All()
	require.Len(t, all, 3)
	assert.Equal(t, []int{0, 1, 1}, []int{all[0].ScanIndex, all[1].ScanIndex, all[2].ScanIndex})
	assert.Equal(t, []int{1, 0, 2}, []int{all[0].Notch, all[1].Notch, all[2].Notch})

	best := a.PSMs()
	require.Len(t, best, 2)
	assert.Equal(t, 2, best[1].Notch)
	assert.Equal(t, 2, a.Count())

	score, ok := a.BestScore(1, 0)
	assert.True(t, ok)
	assert.Equal(t, 2.0, score)
	_, ok = a.BestScore(0, 0)
	assert.False(t, ok)
}

func TestBestNotchTieGoesToLowerNotch(t *testing.T) {
	a := NewAggregator(testScans(1), 2)
	a.Offer(0, 1, 4, 1, nil)
	a.Offer(0, 0, 4, 2, nil)
	assert.Equal(t, 0, a.PSMs()[0].Notch)
}

type offer struct {
	scan, notch int
	score       float64
	id          uint32
}

// The same offers applied in any order and from any number of goroutines
// must leave identical slots behind.
func TestOrderIndependence(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	var offers []offer
	for i := 0; i < 2000; i++ {
		offers = append(offers, offer{
			scan:  rng.Intn(20),
			notch: rng.Intn(2),
			score: float64(rng.Intn(5)),
			id:    uint32(rng.Intn(300)),
		})
	}

	sequential := NewAggregator(testScans(20), 2)
	for _, o := range offers {
		sequential.Offer(o.scan, o.notch, o.score, o.id, ions(o.id))
	}
	want := Summarize(sequential.All())

	for trial := 0; trial < 5; trial++ {
		shuffled := append([]offer(nil), offers...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

		concurrent := NewAggregator(testScans(20), 2)
		var wg sync.WaitGroup
		const workers = 8
		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func(w int) {
				defer wg.Done()
				for i := w; i < len(shuffled); i += workers {
					o := shuffled[i]
					concurrent.Offer(o.scan, o.notch, o.score, o.id, ions(o.id))
				}
			}(w)
		}
		wg.Wait()

		got := concurrent.All()
		if diff := cmp.Diff(want, Summarize(got)); diff != "" {
			t.Fatalf("trial %d: slots differ (-sequential +concurrent):\n%s", trial, diff)
		}
		assert.Equal(t, Fingerprint(sequential.All()), Fingerprint(got))
		for _, p := range got {
			assert.Equal(t, ions(p.BestID), p.MatchedIons)
		}
	}
}

func TestFingerprintDetectsDifferences(t *testing.T) {
	a := NewAggregator(testScans(1), 1)
	a.Offer(0, 0, 3, 1, nil)
	before := Fingerprint(a.All())

	a.Offer(0, 0, 3, 2, nil)
	assert.NotEqual(t, before, Fingerprint(a.All()))
	assert.Equal(t, Fingerprint(nil), Fingerprint([]*PSM{nil}))
}

func TestDiffIgnoresRoundingOnly(t *testing.T) {
	scans := testScans(1)
	a := NewAggregator(scans, 1)
	b := NewAggregator(scans, 1)
	a.Offer(0, 0, 3.5, 1, nil)
	b.Offer(0, 0, 3.5*(1+1e-13), 1, nil)

	assert.NotEqual(t, Fingerprint(a.All()), Fingerprint(b.All()))
	assert.Empty(t, Diff(a.All(), b.All()))

	b.Offer(0, 0, 3.5*(1+1e-13), 2, nil)
	assert.NotEmpty(t, Diff(a.All(), b.All()))

	c := NewAggregator(scans, 1)
	c.Offer(0, 0, 3.6, 1, nil)
	assert.NotEmpty(t, Diff(a.All(), c.All()))
}
