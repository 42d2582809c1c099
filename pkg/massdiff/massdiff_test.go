package massdiff

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChrisMcGann/pepsearch/pkg/core"
)

func ppm(v float64) core.Tolerance { return core.Tolerance{Unit: core.PPM, Value: v} }
func da(v float64) core.Tolerance  { return core.Tolerance{Unit: core.Absolute, Value: v} }

func TestExactAccepts(t *testing.T) {
	a, err := NewExact(ppm(5))
	require.NoError(t, err)

	assert.Equal(t, 0, a.Accepts(1000.004, 1000))
	assert.Equal(t, Reject, a.Accepts(1000.006, 1000))
	assert.Equal(t, Reject, a.Accepts(1000, math.NaN()))
	assert.Nil(t, a.AllowedIntervals(math.NaN()))
	assert.Equal(t, "5ppmAroundZero", a.String())
	assert.Equal(t, 1, a.NumNotches())
}

func TestPPMAcceptanceIsSymmetric(t *testing.T) {
	acceptors := []Acceptor{}
	exact, err := NewExact(ppm(10))
	require.NoError(t, err)
	dot, err := NewDot("", []float64{0}, ppm(10))
	require.NoError(t, err)
	acceptors = append(acceptors, exact, dot)

	masses := []float64{500, 500.004, 500.005, 500.006, 1500, 1500.014, 1500.0151, 1500.016}
	for _, a := range acceptors {
		for _, x := range masses {
			for _, y := range masses {
				assert.Equal(t, a.Accepts(x, y), a.Accepts(y, x), "%s: accepts(%v,%v)", a, x, y)
			}
		}
	}
}

func TestNegativeToleranceRejected(t *testing.T) {
	_, err := NewExact(ppm(-1))
	var cfgErr *core.ConfigError
	require.True(t, errors.As(err, &cfgErr))

	_, err = NewDot("x", []float64{0, 1}, ppm(1e6))
	require.True(t, errors.As(err, &cfgErr))

	_, err = NewInterval("x", []Range{{Min: 3, Max: 1}})
	require.True(t, errors.As(err, &cfgErr))
}

func TestDotIntervalsAreDisjoint(t *testing.T) {
	// 0.6 Da around offsets 0 and 1 overlap in [0.4, 0.6].
	a, err := NewDot("", []float64{1, 0}, da(0.6))
	require.NoError(t, err)

	ivs := a.AllowedIntervals(100)
	require.NotEmpty(t, ivs)
	for i := 1; i < len(ivs); i++ {
		assert.Greater(t, ivs[i].Min, ivs[i-1].Max, "intervals %v and %v overlap", ivs[i-1], ivs[i])
	}
	// the overlap belongs to the lower notch (offset 0)
	assert.Equal(t, 0, a.Accepts(100.5, 100))
	assert.Equal(t, 1, a.Accepts(101.2, 100))
}

// Every observed mass inside an allowed interval must be accepted with that
// interval's notch, and masses outside all intervals must be rejected.
func TestIntervalsAgreeWithAccepts(t *testing.T) {
	dot, err := NewDot("", []float64{0, 1.0029, 2.0052}, ppm(500))
	require.NoError(t, err)
	exact, err := NewExact(da(0.02))
	require.NoError(t, err)
	iv, err := NewInterval("", []Range{{Min: -2, Max: -1}, {Min: 0, Max: 0.5}})
	require.NoError(t, err)

	const candidate = 1234.5678
	for _, a := range []Acceptor{dot, exact, iv, Open{}} {
		ivs := a.AllowedIntervals(candidate)
		for m := candidate - 3; m <= candidate+3; m += 0.0007 {
			want := Reject
			for _, interval := range ivs {
				if interval.Contains(m) {
					want = interval.Notch
					break
				}
			}
			assert.Equal(t, want, a.Accepts(m, candidate), "%s at %v", a, m)
		}
	}
}

func TestOpenAcceptsNaN(t *testing.T) {
	assert.Equal(t, 0, Open{}.Accepts(500, math.NaN()))
	ivs := Open{}.AllowedIntervals(math.NaN())
	require.Len(t, ivs, 1)
	assert.True(t, ivs[0].Contains(1e9))
}

func TestParseKinds(t *testing.T) {
	tests := []struct {
		kind    string
		name    string
		notches int
	}{
		{"exact", "5ppmAroundZero", 1},
		{"1mm", "1mm", 2},
		{"2mm", "2mm", 3},
		{"3mm", "3mm", 4},
		{"pm3mm", "pm3mm", 7},
		{"open", "OpenSearch", 1},
		{"modopen", "-187andUp", 1},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			a, err := Parse(tt.kind, ppm(5), "")
			require.NoError(t, err)
			assert.Equal(t, tt.name, a.String())
			assert.Equal(t, tt.notches, a.NumNotches())
		})
	}

	_, err := Parse("sideways", ppm(5), "")
	assert.Error(t, err)
}

func TestParseCustom(t *testing.T) {
	tests := []struct {
		text    string
		name    string
		notches int
	}{
		{"TestCustom dot 5 ppm 0,1.0029,2.0052", "TestCustom", 3},
		{"TestCustom dot 5 da 0,1.0029,2.0052", "TestCustom", 3},
		{"TestCustom interval [0;5],[0;5]", "TestCustom", 1},
		{"TestCustom interval [-1;1],[2;3]", "TestCustom", 2},
		{"TestCustom OpenSearch 5", "OpenSearch", 1},
		{"TestCustom daltonsAroundZero 5", "5daltonsAroundZero", 1},
		{"custom ppmAroundZero 4", "4ppmAroundZero", 1},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			a, err := Parse("custom", ppm(5), tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.name, a.String())
			assert.Equal(t, tt.notches, a.NumNotches())
		})
	}

	for _, bad := range []string{"TestCustom Test 5", "TestCustom", "x dot 5 ppm a,b", "x interval [5;1]", "x ppmAroundZero -3"} {
		_, err := ParseCustom(bad)
		assert.Error(t, err, bad)
	}
}

func TestModOpen(t *testing.T) {
	a, err := Parse("modopen", ppm(5), "")
	require.NoError(t, err)
	assert.Equal(t, 0, a.Accepts(1000, 1100))
	assert.Equal(t, Reject, a.Accepts(1000, 1200))
	assert.Equal(t, 0, a.Accepts(5000, 1200))
}
