package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ChrisMcGann/pepsearch/pkg/config"
	"github.com/ChrisMcGann/pepsearch/pkg/core"
	"github.com/ChrisMcGann/pepsearch/pkg/digest"
	"github.com/ChrisMcGann/pepsearch/pkg/filter"
	"github.com/ChrisMcGann/pepsearch/pkg/reader/fasta"
	"github.com/ChrisMcGann/pepsearch/pkg/reader/mgf"
)

// loadConfig reads the config file, if any, and applies flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if configFile != "" {
		var err error
		cfg, err = config.Load(configFile)
		if err != nil {
			return nil, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("engine") {
		cfg.Search.Engine = engineName
	}
	if flags.Changed("threads") {
		cfg.Search.Threads = threads
	}
	if flags.Changed("partitions") {
		cfg.Search.Partitions = partitions
	}
	if flags.Changed("comp-ions") {
		cfg.Search.ComplementaryIons = compIons
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadModDatabase returns the built-in modifications plus any from --mods.
func loadModDatabase() (*core.ModDatabase, error) {
	modDB := core.DefaultModDatabase()
	if modsCSV == "" {
		return modDB, nil
	}
	f, err := os.Open(modsCSV)
	if err != nil {
		return nil, fmt.Errorf("failed to open modification CSV: %w", err)
	}
	defer f.Close()
	if err := modDB.LoadFromCSV(f); err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", modsCSV, err)
	}
	return modDB, nil
}

// loadCandidates reads the FASTA file and digests it.
func loadCandidates(cfg *config.Config) ([]*core.CandidatePeptide, error) {
	modDB, err := loadModDatabase()
	if err != nil {
		return nil, err
	}
	opts, err := cfg.DigestOptions(modDB)
	if err != nil {
		return nil, err
	}

	inFile, err := os.Open(fastaFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open FASTA file: %w", err)
	}
	defer inFile.Close()

	proteins, err := fasta.ReadAll(inFile, digest.DecoyPrefix)
	if err != nil {
		return nil, fmt.Errorf("error reading FASTA file: %w", err)
	}

	candidates, err := digest.Digest(proteins, opts)
	if err != nil {
		return nil, err
	}
	fmt.Printf("Proteins: %d, candidate peptides: %d\n", len(proteins), len(candidates))
	return candidates, nil
}

// loadScans reads the MGF file, filters peaks and drops scans that fail
// validation with a warning.
func loadScans(fc filter.Config) ([]*core.Scan, error) {
	inFile, err := os.Open(spectraFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open spectra file: %w", err)
	}
	defer inFile.Close()

	reader := mgf.NewReader(inFile, spectraFile)
	reader.SetDefaultCharge(defaultCharge)

	var scans []*core.Scan
	skipped := 0
	for reader.Next() {
		scan := reader.Scan()
		fc.Apply(scan)

		if err := scan.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: invalid scan %s: %v\n", scan.Name(), err)
			skipped++
			continue
		}
		scans = append(scans, scan)
	}

	if err := reader.Err(); err != nil {
		return nil, fmt.Errorf("error reading spectra file: %w", err)
	}

	fmt.Printf("Spectra: %d, scans: %d\n", reader.Spectra(), len(scans))
	if skipped > 0 {
		fmt.Printf("Skipped: %d scans (validation errors)\n", skipped)
	}
	return scans, nil
}
