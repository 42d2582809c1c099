// pepsearch - peptide-spectrum matching search engine
package main

import (
	"fmt"
	"os"

	"github.com/ChrisMcGann/pepsearch/cmd/pepsearch/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
