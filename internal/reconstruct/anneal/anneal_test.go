package anneal

import (
	"context"
	"testing"
	"time"

	"github.com/negainoido/icfpc2025/pkg/automaton"
)

func TestReconstructProbatioReachesZeroEnergy(t *testing.T) {
	raw := []string{"0", "1", "2", "3", "00", "11"}
	results := []automaton.Observation{
		{0, 0}, {0, 1}, {0, 2}, {0, 1}, {0, 0, 0}, {0, 1, 0},
	}
	plans := make([]automaton.Plan, len(raw))
	for i, r := range raw {
		p, err := automaton.ParsePlan(r)
		if err != nil {
			t.Fatalf("ParsePlan(%q): %v", r, err)
		}
		plans[i] = p
	}

	req := Request{
		Plans:        plans,
		Results:      results,
		StartingRoom: 0,
		N:            3,
		Params: Params{
			Iters:     20000,
			Seed:      1,
			Restarts:  4,
			TimeLimit: 5 * time.Second,
		},
	}

	res, err := Reconstruct(context.Background(), req)
	if err != nil {
		t.Fatalf("Reconstruct: %v", err)
	}
	if res.EObs != 0 {
		t.Fatalf("expected a perfect fit (EObs=0), got EObs=%d (labels=%v)", res.EObs, res.Labels)
	}
	if err := res.Inv.Validate(); err != nil {
		t.Fatalf("expected a valid involution, got %v", err)
	}
}

func TestReconstructRejectsMismatchedResultLength(t *testing.T) {
	plan, _ := automaton.ParsePlan("01")
	req := Request{
		Plans:        []automaton.Plan{plan},
		Results:      []automaton.Observation{{0, 1}}, // want length 3 (1 + 2 moves), got 2
		StartingRoom: 0,
		N:            2,
	}
	if _, err := Reconstruct(context.Background(), req); err == nil {
		t.Fatal("expected an error for a result whose length doesn't match its plan")
	}
}

func TestReconstructNeverReturnsIllFormedModel(t *testing.T) {
	plan, _ := automaton.ParsePlan("012345")
	req := Request{
		Plans:        []automaton.Plan{plan},
		Results:      []automaton.Observation{{0, 1, 2, 3, 0, 1, 2}},
		StartingRoom: 0,
		N:            4,
		Params: Params{
			Iters:     500,
			Seed:      7,
			Restarts:  2,
			TimeLimit: time.Second,
		},
	}
	res, err := Reconstruct(context.Background(), req)
	if err != nil {
		t.Fatalf("Reconstruct: %v", err)
	}
	if err := res.Inv.Validate(); err != nil {
		t.Fatalf("expected a valid involution even without a perfect fit, got %v", err)
	}
	for _, l := range res.Labels {
		if l < 0 || l > 3 {
			t.Fatalf("label %d out of range", l)
		}
	}
}
