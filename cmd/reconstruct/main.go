// Command reconstruct runs one of the two reconstructors (exact or
// annealing) against a plans/results input file and writes the
// resulting automaton model.
package main

import (
	"fmt"
	"os"

	"github.com/negainoido/icfpc2025/cmd/reconstruct/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
