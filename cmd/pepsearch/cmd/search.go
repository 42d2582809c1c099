package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ChrisMcGann/pepsearch/pkg/search"
	"github.com/ChrisMcGann/pepsearch/pkg/writer/sqlite"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search MS2 scans against a protein database",
	Long: `Digest a FASTA protein database, search every scan of an MGF peak list and
write the best peptide-spectrum matches to a SQLite database.

Examples:
  # Search with default settings (modern engine, 5 ppm exact acceptor)
  pepsearch search --fasta human.fasta --spectra run.mgf --out psms.db

  # Search with a task file and the classic engine
  pepsearch search --config task.toml --fasta human.fasta --spectra run.mgf --out psms.db --engine classic`,
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	// Check the output before spending time on the search
	if _, err := os.Stat(outputFile); err == nil {
		if !overwrite {
			return fmt.Errorf("output file exists: %s (use --overwrite to replace it)", outputFile)
		}
		if err := os.Remove(outputFile); err != nil {
			return fmt.Errorf("failed to remove existing output: %w", err)
		}
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	engine, err := cfg.Engine()
	if err != nil {
		return err
	}
	params, err := cfg.SearchParams(newLogger())
	if err != nil {
		return err
	}

	fmt.Printf("Searching %s against %s...\n", spectraFile, fastaFile)
	fmt.Printf("Engine: %s\n", engine)
	fmt.Printf("Mass difference acceptor: %s\n", params.Acceptor)

	candidates, err := loadCandidates(cfg)
	if err != nil {
		return err
	}
	scans, err := loadScans(cfg.FilterConfig())
	if err != nil {
		return err
	}

	result, searchErr := search.Search(cmd.Context(), engine, candidates, scans, params)
	if result == nil {
		return fmt.Errorf("search failed: %w", searchErr)
	}
	if searchErr != nil {
		// Partitions that finished still produced valid matches
		fmt.Fprintf(os.Stderr, "Warning: search incomplete: %v\n", searchErr)
	}

	writer, err := sqlite.NewWriter(outputFile, candidates, sqlite.Header{
		Engine:   engine.String(),
		Acceptor: params.Acceptor.String(),
	})
	if err != nil {
		return fmt.Errorf("failed to create output database: %w", err)
	}
	// Rolls back unless Finalize succeeded
	defer writer.Close()

	count, err := writer.WriteAll(result.PSMs())
	if err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}

	// Finalize database
	if err := writer.Finalize(); err != nil {
		return fmt.Errorf("failed to finalize database: %w", err)
	}

	fmt.Printf("\nSearch complete!\n")
	fmt.Printf("Matched: %d of %d scans\n", count, len(scans))
	fmt.Printf("Elapsed: %s\n", result.Elapsed)
	fmt.Printf("Output: %s\n", outputFile)

	if searchErr != nil {
		return fmt.Errorf("search incomplete: %w", searchErr)
	}
	return nil
}
