package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/negainoido/icfpc2025/internal/config"
	"github.com/negainoido/icfpc2025/internal/reconstruct/anneal"
)

var (
	annealInput     string
	annealOutput    string
	annealN         int
	annealIters     int
	annealSeed      int64
	annealRestarts  int
	annealTimeLimit time.Duration
	annealLambdaBal float64
)

var annealCmd = &cobra.Command{
	Use:   "anneal",
	Short: "Reconstruct a model with simulated annealing",
	Long: `anneal searches for a model that minimises observation mismatch and
label-balance penalty via simulated annealing with multiple independent
restarts. Unlike 'exact', it tolerates chalk-bearing plans and always
returns a well-formed model even when it did not find a perfect fit.`,
	RunE: runAnneal,
}

func init() {
	annealCmd.Flags().StringVarP(&annealInput, "input", "i", "", "input JSON file (plans, results, startingRoom)")
	annealCmd.Flags().StringVarP(&annealOutput, "output", "o", "", "output JSON file (reconstructed automaton model)")
	annealCmd.Flags().IntVar(&annealN, "n", 0, "room count (required; annealing does not sweep N)")
	annealCmd.Flags().IntVar(&annealIters, "iters", 0, "iterations per restart")
	annealCmd.Flags().Int64Var(&annealSeed, "seed", 0, "PRNG seed")
	annealCmd.Flags().IntVar(&annealRestarts, "restarts", 0, "independent parallel restarts")
	annealCmd.Flags().DurationVar(&annealTimeLimit, "time-limit", 0, "wall-clock budget")
	annealCmd.Flags().Float64Var(&annealLambdaBal, "lambda-bal", 0, "balance-penalty weight")
	annealCmd.MarkFlagRequired("input")
	annealCmd.MarkFlagRequired("output")
	annealCmd.MarkFlagRequired("n")
}

func runAnneal(cmd *cobra.Command, args []string) error {
	fileParams, err := config.LoadReconstructorParams(paramsFile)
	if err != nil {
		return err
	}

	in, plans, err := readInput(annealInput)
	if err != nil {
		return err
	}

	params := anneal.Params{}.WithDefaults()
	if fileParams.Iters != 0 {
		params.Iters = fileParams.Iters
	}
	if fileParams.LambdaBal != 0 {
		params.LambdaBal = fileParams.LambdaBal
	}
	if fileParams.Seed != 0 {
		params.Seed = fileParams.Seed
	}
	if fileParams.TimeLimit != 0 {
		params.TimeLimit = fileParams.TimeLimit
	}
	if fileParams.T0 != 0 {
		params.T0 = fileParams.T0
	}
	if fileParams.Alpha != 0 {
		params.Alpha = fileParams.Alpha
	}
	if fileParams.TMin != 0 {
		params.TMin = fileParams.TMin
	}
	if fileParams.Restarts != 0 {
		params.Restarts = fileParams.Restarts
	}
	if fileParams.ReheatEvery != 0 {
		params.ReheatEvery = fileParams.ReheatEvery
	}
	if fileParams.ReheatTo != 0 {
		params.ReheatTo = fileParams.ReheatTo
	}

	if annealIters != 0 {
		params.Iters = annealIters
	}
	if annealSeed != 0 {
		params.Seed = annealSeed
	}
	if annealRestarts != 0 {
		params.Restarts = annealRestarts
	}
	if annealTimeLimit != 0 {
		params.TimeLimit = annealTimeLimit
	}
	if annealLambdaBal != 0 {
		params.LambdaBal = annealLambdaBal
	}

	req := anneal.Request{
		Plans:        plans,
		Results:      in.Results,
		StartingRoom: in.StartingRoom,
		N:            annealN,
		Params:       params,
	}

	res, err := anneal.Reconstruct(context.Background(), req)
	if err != nil {
		return fmt.Errorf("reconstruct: %w", err)
	}

	model, err := buildModel(res.Labels, res.Inv, in.StartingRoom)
	if err != nil {
		return err
	}
	if err := writeOutput(annealOutput, model); err != nil {
		return err
	}
	fmt.Printf("reconstructed N=%d rooms, EObs=%d EBal=%.3f energy=%.3f\n", annealN, res.EObs, res.EBal, res.Energy)
	return nil
}
