package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ChrisMcGann/pepsearch/pkg/index"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build the fragment index and print its statistics",
	Long: `Digest a FASTA protein database, partition the candidates by mass and build
one fragment index per partition, then report bucket occupancy.`,
	RunE: runIndex,
}

func runIndex(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	params, err := cfg.SearchParams(newLogger())
	if err != nil {
		return err
	}
	if err := params.Validate(); err != nil {
		return err
	}

	candidates, err := loadCandidates(cfg)
	if err != nil {
		return err
	}

	start := time.Now()
	parts := index.Partition(candidates, params.Partitions)
	indexes, err := index.BuildAll(cmd.Context(), parts, params.Index, params.Threads)
	if err != nil {
		return fmt.Errorf("failed to build index: %w", err)
	}
	defer index.ReleaseAll(indexes)

	fmt.Printf("Built %d partitions in %s (%d bins per dalton)\n\n", len(indexes), time.Since(start), params.Index.BinsPerDalton)
	fmt.Printf("%-9s %10s %12s %10s %10s %10s %22s\n", "Partition", "Candidates", "Entries", "Buckets", "Occupied", "Largest", "Fragment range (Da)")
	for i, idx := range indexes {
		s := idx.Stats()
		fmt.Printf("%-9d %10d %12d %10d %10d %10d %10.3f-%-11.3f\n",
			i, s.Candidates, s.Entries, s.Buckets, s.OccupiedBuckets, s.LargestBucket, s.MinMass, s.MaxMass)
	}
	return nil
}
