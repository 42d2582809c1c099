// Package config loads search settings from TOML files and turns them into
// the option types of the search, digest and filter packages.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/ChrisMcGann/pepsearch/pkg/core"
	"github.com/ChrisMcGann/pepsearch/pkg/digest"
	"github.com/ChrisMcGann/pepsearch/pkg/filter"
	"github.com/ChrisMcGann/pepsearch/pkg/index"
	"github.com/ChrisMcGann/pepsearch/pkg/massdiff"
	"github.com/ChrisMcGann/pepsearch/pkg/score"
	"github.com/ChrisMcGann/pepsearch/pkg/search"
)

// Config is the decoded form of a search task file.
type Config struct {
	Search    Search    `toml:"search"`
	Index     Index     `toml:"index"`
	Digestion Digestion `toml:"digestion"`
	Peaks     Peaks     `toml:"peaks"`
}

// Search holds engine and scoring settings.
type Search struct {
	Engine             string  `toml:"engine"`
	Partitions         int     `toml:"partitions"`
	Threads            int     `toml:"threads"`
	MinScore           float64 `toml:"min_score"`
	ComplementaryIons  bool    `toml:"complementary_ions"`
	Scoring            string  `toml:"scoring"`
	Terminus           string  `toml:"terminus"`
	Dissociation       string  `toml:"dissociation"`
	ProductTolerance   string  `toml:"product_tolerance"`
	PrecursorTolerance string  `toml:"precursor_tolerance"`
	MassDiffAcceptor   string  `toml:"mass_diff_acceptor"`
	CustomAcceptor     string  `toml:"custom_acceptor"`
}

// Index holds fragment index settings.
type Index struct {
	BinsPerDalton   int     `toml:"bins_per_dalton"`
	MaxFragmentMass float64 `toml:"max_fragment_mass"`
}

// Digestion holds in-silico digestion settings.
type Digestion struct {
	Protease            string   `toml:"protease"`
	MissedCleavages     int      `toml:"missed_cleavages"`
	MinLength           int      `toml:"min_length"`
	MaxLength           int      `toml:"max_length"`
	InitiatorMethionine string   `toml:"initiator_methionine"`
	FixedModifications  []string `toml:"fixed_modifications"`
	Decoys              bool     `toml:"decoys"`
}

// Peaks holds scan preprocessing settings.
type Peaks struct {
	TopN          int     `toml:"top_n"`
	CutoffPercent float64 `toml:"cutoff_percent"`
	MinMass       float64 `toml:"min_mass"`
}

// Default returns the settings used when no file is given.
func Default() *Config {
	return &Config{
		Search: Search{
			Engine:             "modern",
			MinScore:           search.DefaultMinScore,
			Scoring:            "count",
			Terminus:           "both",
			Dissociation:       "hcd",
			ProductTolerance:   "20 ppm",
			PrecursorTolerance: "5 ppm",
			MassDiffAcceptor:   massdiff.KindExact,
		},
		Index: Index{
			BinsPerDalton:   index.DefaultBinsPerDalton,
			MaxFragmentMass: index.DefaultMaxFragmentMass,
		},
		Digestion: Digestion{
			Protease:            "trypsin",
			MissedCleavages:     2,
			MinLength:           7,
			MaxLength:           50,
			InitiatorMethionine: "variable",
			FixedModifications:  []string{"Carbamidomethyl@C"},
		},
	}
}

// Load reads a TOML file over the defaults. Keys missing from the file keep
// their default value; unknown keys are an error.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer f.Close()

	cfg := Default()
	dec := toml.NewDecoder(f).DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return nil, &core.ConfigError{Field: path, Message: strict.String()}
		}
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate parses every setting and reports the first bad one.
func (c *Config) Validate() error {
	if _, err := search.ParseEngine(c.Search.Engine); err != nil {
		return err
	}
	params, err := c.SearchParams(nil)
	if err != nil {
		return err
	}
	if err := params.Validate(); err != nil {
		return err
	}
	// Modification names are resolved later against the full database,
	// which may include names loaded from CSV.
	if _, err := c.digestOptions(nil); err != nil {
		return err
	}
	fc := c.FilterConfig()
	return fc.Validate()
}

// Engine returns the configured search engine.
func (c *Config) Engine() (search.Engine, error) {
	return search.ParseEngine(c.Search.Engine)
}

// SearchParams builds search parameters, including the mass-difference
// acceptor.
func (c *Config) SearchParams(logger *slog.Logger) (search.Params, error) {
	s := c.Search

	precursorTol, err := core.ParseTolerance(s.PrecursorTolerance)
	if err != nil {
		return search.Params{}, fmt.Errorf("precursor_tolerance: %w", err)
	}
	productTol, err := core.ParseTolerance(s.ProductTolerance)
	if err != nil {
		return search.Params{}, fmt.Errorf("product_tolerance: %w", err)
	}
	acceptor, err := massdiff.Parse(s.MassDiffAcceptor, precursorTol, s.CustomAcceptor)
	if err != nil {
		return search.Params{}, err
	}
	variant, err := score.ParseVariant(s.Scoring)
	if err != nil {
		return search.Params{}, err
	}
	terminus, err := core.ParseTerminus(s.Terminus)
	if err != nil {
		return search.Params{}, err
	}
	diss, err := core.ParseDissociation(s.Dissociation)
	if err != nil {
		return search.Params{}, err
	}

	return search.Params{
		Acceptor: acceptor,
		Scorer: score.Scorer{
			Tolerance:          productTol,
			Variant:            variant,
			Terminus:           terminus,
			Complementary:      s.ComplementaryIons,
			ComplementaryShift: diss.ComplementaryShift(),
		},
		Index: index.Options{
			BinsPerDalton:   c.Index.BinsPerDalton,
			MaxFragmentMass: c.Index.MaxFragmentMass,
			Terminus:        terminus,
		},
		MinScore:   s.MinScore,
		Partitions: s.Partitions,
		Threads:    s.Threads,
		Logger:     logger,
	}, nil
}

// DigestOptions builds digestion options. Fixed modification names are
// resolved against mods.
func (c *Config) DigestOptions(mods *core.ModDatabase) (digest.Options, error) {
	if mods == nil {
		mods = core.DefaultModDatabase()
	}
	return c.digestOptions(mods)
}

// digestOptions only checks the form of fixed modifications when mods is nil.
func (c *Config) digestOptions(mods *core.ModDatabase) (digest.Options, error) {
	d := c.Digestion

	protease, err := digest.ParseProtease(d.Protease)
	if err != nil {
		return digest.Options{}, err
	}
	met, err := digest.ParseInitiatorMethionine(d.InitiatorMethionine)
	if err != nil {
		return digest.Options{}, err
	}
	diss, err := core.ParseDissociation(c.Search.Dissociation)
	if err != nil {
		return digest.Options{}, err
	}

	var fixed []core.FixedModification
	for _, def := range d.FixedModifications {
		if mods == nil {
			if _, _, err := core.SplitFixedMod(def); err != nil {
				return digest.Options{}, err
			}
			continue
		}
		fm, err := mods.ParseFixedMod(def)
		if err != nil {
			return digest.Options{}, err
		}
		fixed = append(fixed, fm)
	}

	opts := digest.Options{
		Protease:            protease,
		MissedCleavages:     d.MissedCleavages,
		MinLength:           d.MinLength,
		MaxLength:           d.MaxLength,
		InitiatorMethionine: met,
		FixedMods:           fixed,
		Decoys:              d.Decoys,
		Dissociation:        diss,
	}
	return opts, opts.Validate()
}

// FilterConfig returns the scan preprocessing settings.
func (c *Config) FilterConfig() filter.Config {
	return filter.Config{
		TopN:            c.Peaks.TopN,
		IntensityCutoff: c.Peaks.CutoffPercent,
		MinMass:         c.Peaks.MinMass,
	}
}
