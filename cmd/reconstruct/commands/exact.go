package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/negainoido/icfpc2025/internal/config"
	"github.com/negainoido/icfpc2025/internal/reconstruct/exact"
)

var (
	exactInput  string
	exactOutput string
	exactN      int
	exactMinN   int
	exactMaxN   int
)

var exactCmd = &cobra.Command{
	Use:   "exact",
	Short: "Reconstruct a model with exact finite-domain search",
	Long: `exact encodes the plans/results as a finite-domain CSP and searches
for a model that reproduces every observation exactly.

Chalk-bearing plans are rejected: the exact solver only handles
chalk-free input. Use 'reconstruct anneal' for plans that write
labels.`,
	RunE: runExact,
}

func init() {
	exactCmd.Flags().StringVarP(&exactInput, "input", "i", "", "input JSON file (plans, results, startingRoom)")
	exactCmd.Flags().StringVarP(&exactOutput, "output", "o", "", "output JSON file (reconstructed automaton model)")
	exactCmd.Flags().IntVar(&exactN, "n", 0, "fixed room count; overrides min-n/max-n")
	exactCmd.Flags().IntVar(&exactMinN, "min-n", 0, "lower bound of the N sweep")
	exactCmd.Flags().IntVar(&exactMaxN, "max-n", 0, "upper bound of the N sweep")
	exactCmd.MarkFlagRequired("input")
	exactCmd.MarkFlagRequired("output")
}

func runExact(cmd *cobra.Command, args []string) error {
	params, err := config.LoadReconstructorParams(paramsFile)
	if err != nil {
		return err
	}

	in, plans, err := readInput(exactInput)
	if err != nil {
		return err
	}

	req := exact.Request{
		Plans:        plans,
		Results:      in.Results,
		StartingRoom: in.StartingRoom,
		N:            in.N,
		MinN:         firstNonZero(exactMinN, in.MinN, params.MinN),
		MaxN:         firstNonZero(exactMaxN, in.MaxN, params.MaxN),
	}
	if exactN != 0 {
		req.N = &exactN
	}

	res, err := exact.Reconstruct(context.Background(), req)
	if err != nil {
		return fmt.Errorf("reconstruct: %w", err)
	}

	model, err := buildModel(res.Labels, res.Inv, in.StartingRoom)
	if err != nil {
		return err
	}
	if err := writeOutput(exactOutput, model); err != nil {
		return err
	}
	fmt.Printf("reconstructed N=%d rooms, labels=%v\n", res.N, res.Labels)
	return nil
}

func firstNonZero(vals ...int) int {
	for _, v := range vals {
		if v != 0 {
			return v
		}
	}
	return 0
}
