package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ChrisMcGann/pepsearch/pkg/psm"
	"github.com/ChrisMcGann/pepsearch/pkg/search"
)

var crosscheckCmd = &cobra.Command{
	Use:   "crosscheck",
	Short: "Run both engines and compare their matches",
	Long: `Run the classic and the modern engine on the same inputs and compare every
(scan, notch) result: score and the full set of tied candidates. Exits with an
error when the engines disagree.`,
	RunE: runCrosscheck,
}

func runCrosscheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	params, err := cfg.SearchParams(newLogger())
	if err != nil {
		return err
	}

	candidates, err := loadCandidates(cfg)
	if err != nil {
		return err
	}
	scans, err := loadScans(cfg.FilterConfig())
	if err != nil {
		return err
	}

	results := make(map[search.Engine][]*psm.PSM)
	for _, engine := range []search.Engine{search.Classic, search.Modern} {
		result, err := search.Search(cmd.Context(), engine, candidates, scans, params)
		if err != nil {
			return fmt.Errorf("%s search failed: %w", engine, err)
		}
		all := result.All()
		results[engine] = all
		fmt.Printf("%-8s %d matches, fingerprint %016x, %s\n", engine, len(all), psm.Fingerprint(all), result.Elapsed)
	}

	classic, modern := results[search.Classic], results[search.Modern]
	diff := psm.Diff(classic, modern)
	if diff == "" {
		if psm.Fingerprint(classic) != psm.Fingerprint(modern) {
			fmt.Printf("\nScores differ only by rounding\n")
		}
		fmt.Printf("\nEngines agree on %d matches\n", len(classic))
		return nil
	}

	fmt.Printf("\nEngines disagree (-classic +modern):\n%s\n", diff)
	return fmt.Errorf("classic and modern engines disagree")
}
