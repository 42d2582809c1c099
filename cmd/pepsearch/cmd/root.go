// Package cmd provides CLI command implementations
package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var (
	// Flags shared by the search commands
	configFile    string
	fastaFile     string
	spectraFile   string
	outputFile    string
	overwrite     bool
	engineName    string
	modsCSV       string
	threads       int
	partitions    int
	compIons      bool
	defaultCharge int
	verbose       bool
)

var rootCmd = &cobra.Command{
	Use:   "pepsearch",
	Short: "pepsearch - peptide-spectrum matching search engine",
	Long: `pepsearch matches MS2 scans against peptides digested from a protein
database and stores the best peptide-spectrum matches in a SQLite database.

Two interchangeable engines produce identical results:
- classic: scores every candidate in the precursor mass window
- modern: votes through a fragment-mass index and rescores the best candidates

Supports:
- Exact, missed-monoisotopic, open and custom precursor mass acceptors
- Count and intensity-weighted scoring, complementary ions
- HCD/CID (b/y) and ETD (c/z) fragmentation
- Reverse decoys and initiator methionine handling`,
	Version: "1.0.0",
}

// Execute runs the root command. An interrupt cancels any running search.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log engine progress to stderr")

	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(crosscheckCmd)
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(summarizeCmd)

	for _, c := range []*cobra.Command{searchCmd, crosscheckCmd} {
		c.Flags().StringVarP(&spectraFile, "spectra", "s", "", "MGF peak list (required)")
		c.Flags().StringVar(&engineName, "engine", "", "Search engine: classic or modern (default from config)")
		c.Flags().IntVar(&partitions, "partitions", 0, "Number of candidate partitions (0 = config or thread count)")
		c.Flags().BoolVar(&compIons, "comp-ions", false, "Also match complementary ions")
		c.Flags().IntVar(&defaultCharge, "default-charge", 0, "Precursor charge assumed when CHARGE is missing")
		c.MarkFlagRequired("spectra")
	}
	for _, c := range []*cobra.Command{searchCmd, crosscheckCmd, indexCmd} {
		c.Flags().StringVarP(&configFile, "config", "c", "", "TOML search configuration")
		c.Flags().StringVarP(&fastaFile, "fasta", "d", "", "FASTA protein database (required)")
		c.Flags().StringVar(&modsCSV, "mods", "", "CSV of additional modification names and masses")
		c.Flags().IntVar(&threads, "threads", 0, "Number of worker threads (0 = config or CPU count)")
		c.MarkFlagRequired("fasta")
	}
	searchCmd.Flags().StringVarP(&outputFile, "out", "o", "", "Output database file (required)")
	searchCmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing output database")
	searchCmd.MarkFlagRequired("out")
}

func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
