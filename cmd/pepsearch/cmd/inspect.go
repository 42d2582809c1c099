package cmd

import (
	"fmt"
	"math"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/ChrisMcGann/pepsearch/pkg/reader/mgf"
)

var validateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Validate an MGF peak list",
	Long:  `Validate that an MGF file is properly formatted and every scan can be searched.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		inFile, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open input file: %w", err)
		}
		defer inFile.Close()

		reader := mgf.NewReader(inFile, args[0])
		count, invalid := 0, 0
		for reader.Next() {
			count++
			scan := reader.Scan()
			if err := scan.Validate(); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
				invalid++
			}
		}
		if err := reader.Err(); err != nil {
			return fmt.Errorf("error reading input file: %w", err)
		}

		fmt.Printf("Scans: %d, invalid: %d\n", count, invalid)
		if invalid > 0 {
			return fmt.Errorf("%d of %d scans are invalid", invalid, count)
		}
		return nil
	},
}

var summarizeCmd = &cobra.Command{
	Use:   "summarize [file]",
	Short: "Summarize an MGF peak list",
	Long:  `Print summary statistics about an MGF file including spectrum and scan counts, precursor mass range and charge states.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		inFile, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open input file: %w", err)
		}
		defer inFile.Close()

		reader := mgf.NewReader(inFile, args[0])
		scans, peaks := 0, 0
		minMass, maxMass := math.Inf(1), math.Inf(-1)
		charges := make(map[int]int)
		for reader.Next() {
			scan := reader.Scan()
			scans++
			peaks += len(scan.Peaks)
			minMass = math.Min(minMass, scan.PrecursorMass)
			maxMass = math.Max(maxMass, scan.PrecursorMass)
			charges[scan.PrecursorCharge]++
		}
		if err := reader.Err(); err != nil {
			return fmt.Errorf("error reading input file: %w", err)
		}

		fmt.Printf("File: %s\n", args[0])
		fmt.Printf("Spectra: %d\n", reader.Spectra())
		fmt.Printf("Scans: %d\n", scans)
		if scans == 0 {
			return nil
		}
		fmt.Printf("Peaks: %d (%.1f per scan)\n", peaks, float64(peaks)/float64(scans))
		fmt.Printf("Precursor mass: %.4f - %.4f Da\n", minMass, maxMass)

		zs := make([]int, 0, len(charges))
		for z := range charges {
			zs = append(zs, z)
		}
		sort.Ints(zs)
		for _, z := range zs {
			fmt.Printf("Charge %d: %d scans\n", z, charges[z])
		}
		return nil
	},
}
