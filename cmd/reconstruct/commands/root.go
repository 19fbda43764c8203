package commands

import (
	"github.com/spf13/cobra"
)

var paramsFile string

var rootCmd = &cobra.Command{
	Use:   "reconstruct",
	Short: "Rebuild an automaton model from plans and observations",
	Long: `reconstruct takes a JSON file of plans and observed room labels and
produces a candidate automaton model.

Two solvers are available as subcommands:

  exact    finite-domain CSP search, exact but limited to chalk-free plans
  anneal   simulated annealing, handles chalk but is not guaranteed exact

Examples:
  reconstruct exact -i probatio.json -o model.json
  reconstruct anneal -i primus.json -o model.json --n 6 --restarts 8 --seed 7`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&paramsFile, "params", "", "optional YAML file overriding reconstructor defaults")
	rootCmd.AddCommand(exactCmd, annealCmd)
}
