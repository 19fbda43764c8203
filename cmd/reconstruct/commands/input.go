package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/negainoido/icfpc2025/pkg/automaton"
)

// reconstructInput mirrors the reconstructor's input file shape.
type reconstructInput struct {
	Plans        []string                `json:"plans"`
	Results      []automaton.Observation `json:"results"`
	N            *int                    `json:"N"`
	StartingRoom int                     `json:"startingRoom"`
	MinN         int                     `json:"minN"`
	MaxN         int                     `json:"maxN"`
}

func readInput(path string) (reconstructInput, []automaton.Plan, error) {
	var in reconstructInput
	data, err := os.ReadFile(path)
	if err != nil {
		return in, nil, fmt.Errorf("reading input file %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &in); err != nil {
		return in, nil, fmt.Errorf("parsing input file %s: %w", path, err)
	}

	plans := make([]automaton.Plan, len(in.Plans))
	for i, raw := range in.Plans {
		p, err := automaton.ParsePlan(raw)
		if err != nil {
			return in, nil, fmt.Errorf("parsing plan %d (%q): %w", i, raw, err)
		}
		plans[i] = p
	}
	return in, plans, nil
}

// buildModel converts a reconstructor's raw (labels, involution) pair
// into the JSON-ready automaton.Model shape, failing closed if the
// involution it was handed is not actually an involution.
func buildModel(labels []int, inv automaton.Involution, startingRoom int) (automaton.Model, error) {
	model, err := automaton.NewModel(labels, inv, startingRoom)
	if err != nil {
		return automaton.Model{}, fmt.Errorf("building output model: %w", err)
	}
	return model, nil
}

// writeOutput marshals and writes an automaton.Model to path.
func writeOutput(path string, model automaton.Model) error {
	data, err := json.MarshalIndent(model, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling output model: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing output file %s: %w", path, err)
	}
	return nil
}
