package exact

import (
	"context"
	"testing"

	"github.com/negainoido/icfpc2025/pkg/automaton"
)

func mustParse(t *testing.T, raw string) automaton.Plan {
	t.Helper()
	p, err := automaton.ParsePlan(raw)
	if err != nil {
		t.Fatalf("ParsePlan(%q): %v", raw, err)
	}
	return p
}

func TestReconstructSingleRoomAllSelfLoop(t *testing.T) {
	plan := mustParse(t, "000")
	req := Request{
		Plans:        []automaton.Plan{plan},
		Results:      []automaton.Observation{{2, 2, 2, 2}},
		StartingRoom: 0,
		N:            intPtr(1),
	}
	res, err := Reconstruct(context.Background(), req)
	if err != nil {
		t.Fatalf("Reconstruct: %v", err)
	}
	if len(res.Labels) != 1 || res.Labels[0] != 2 {
		t.Fatalf("expected rooms=[2], got %v", res.Labels)
	}
	// With only one room, any port matching is valid: every port maps back
	// to the same (only) room regardless of which door it resolves to.
	if err := res.Inv.Validate(); err != nil {
		t.Fatalf("expected a valid involution, got %v", err)
	}
}

func TestReconstructTwoRoomAlternator(t *testing.T) {
	plan := mustParse(t, "0000")
	req := Request{
		Plans:        []automaton.Plan{plan},
		Results:      []automaton.Observation{{0, 1, 0, 1, 0}},
		StartingRoom: 0,
		N:            intPtr(2),
	}
	res, err := Reconstruct(context.Background(), req)
	if err != nil {
		t.Fatalf("Reconstruct: %v", err)
	}
	if res.Labels[0] != 0 || res.Labels[1] != 1 {
		t.Fatalf("expected labels [0,1], got %v", res.Labels)
	}
	if res.Inv.Step(0, 0) != 1 {
		t.Fatalf("expected door 0 of room 0 to reach room 1")
	}
}

func TestReconstructSweepsToSmallestFeasibleN(t *testing.T) {
	plan := mustParse(t, "0000")
	req := Request{
		Plans:        []automaton.Plan{plan},
		Results:      []automaton.Observation{{0, 1, 0, 1, 0}},
		StartingRoom: 0,
		MinN:         1,
		MaxN:         4,
	}
	res, err := Reconstruct(context.Background(), req)
	if err != nil {
		t.Fatalf("Reconstruct: %v", err)
	}
	if res.N != 2 {
		t.Fatalf("expected smallest feasible N=2, got %d", res.N)
	}
}

func TestReconstructRejectsChalk(t *testing.T) {
	plan := mustParse(t, "[3]0")
	req := Request{
		Plans:        []automaton.Plan{plan},
		Results:      []automaton.Observation{{0, 3, 1}},
		StartingRoom: 0,
		N:            intPtr(2),
	}
	if _, err := Reconstruct(context.Background(), req); err != ErrChalkUnsupported {
		t.Fatalf("expected ErrChalkUnsupported, got %v", err)
	}
}

func intPtr(v int) *int { return &v }
