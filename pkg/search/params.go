// Package search runs peptide-spectrum matching with either the classic
// (candidate-driven) engine or the modern (fragment-index) engine. Both
// engines produce the same PSMs for the same inputs.
package search

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"runtime"
	"strings"

	"github.com/ChrisMcGann/pepsearch/pkg/core"
	"github.com/ChrisMcGann/pepsearch/pkg/index"
	"github.com/ChrisMcGann/pepsearch/pkg/massdiff"
	"github.com/ChrisMcGann/pepsearch/pkg/score"
)

// Engine selects the search strategy.
type Engine int

const (
	Classic Engine = iota
	Modern
)

func (e Engine) String() string {
	if e == Modern {
		return "modern"
	}
	return "classic"
}

// ParseEngine parses "classic" or "modern".
func ParseEngine(s string) (Engine, error) {
	switch strings.ToLower(s) {
	case "classic":
		return Classic, nil
	case "", "modern", "indexed":
		return Modern, nil
	}
	return Classic, &core.ConfigError{Field: "engine", Message: fmt.Sprintf("unknown engine %q", s)}
}

// DefaultMinScore records any PSM with at least one matched ion.
const DefaultMinScore = 1.0

// Params configures a search.
type Params struct {
	Acceptor massdiff.Acceptor
	Scorer   score.Scorer
	Index    index.Options

	// MinScore is the lowest score recorded. It must be positive.
	MinScore   float64
	Partitions int
	Threads    int

	Logger *slog.Logger
}

// DefaultParams searches with a 5 ppm exact acceptor, 20 ppm product
// tolerance and one partition per CPU.
func DefaultParams() Params {
	acc, _ := massdiff.NewExact(core.Tolerance{Unit: core.PPM, Value: 5})
	return Params{
		Acceptor:   acc,
		Scorer:     score.Scorer{Tolerance: core.Tolerance{Unit: core.PPM, Value: 20}},
		Index:      index.DefaultOptions(),
		MinScore:   DefaultMinScore,
		Partitions: runtime.NumCPU(),
		Threads:    runtime.NumCPU(),
	}
}

// Validate checks the parameters and fills in zero-valued counts.
func (p *Params) Validate() error {
	if p.Acceptor == nil {
		return &core.ConfigError{Field: "mass_diff_acceptor", Message: "no acceptor configured"}
	}
	if err := p.Scorer.Tolerance.Validate(); err != nil {
		return fmt.Errorf("product tolerance: %w", err)
	}
	if !(p.MinScore > 0) || math.IsInf(p.MinScore, 0) {
		return &core.ConfigError{Field: "min_score", Message: fmt.Sprintf("must be positive and finite, got %v", p.MinScore)}
	}
	if err := p.Index.Validate(); err != nil {
		return err
	}
	if p.Index.Terminus != p.Scorer.Terminus {
		return &core.ConfigError{Field: "terminus", Message: fmt.Sprintf("index built for %s but scoring %s", p.Index.Terminus, p.Scorer.Terminus)}
	}
	if p.Partitions < 0 || p.Threads < 0 {
		return &core.ConfigError{Field: "partitions", Message: "partition and thread counts must not be negative"}
	}
	if p.Threads == 0 {
		p.Threads = runtime.NumCPU()
	}
	if p.Partitions == 0 {
		p.Partitions = p.Threads
	}
	return nil
}

func (p *Params) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
