package fdsolve

import (
	"context"
	"testing"
)

func TestEqualPinsVariable(t *testing.T) {
	m := NewModel()
	v := m.NewVariable(FullDomain(4))
	m.AddConstraint(NewEqual(v, 2))

	solver := NewSolver(m)
	solutions, err := solver.Solve(context.Background(), 0)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if len(solutions) != 1 {
		t.Fatalf("expected 1 solution, got %d", len(solutions))
	}
	if solutions[0][v.ID()] != 2 {
		t.Fatalf("expected v=2, got %d", solutions[0][v.ID()])
	}
}

func TestNotEqualVarsExcludesMatching(t *testing.T) {
	m := NewModel()
	a := m.NewVariable(FullDomain(2))
	b := m.NewVariable(FullDomain(2))
	m.AddConstraint(NewEqual(a, 0))
	m.AddConstraint(NewNotEqualVars(a, b))

	solver := NewSolver(m)
	solutions, err := solver.Solve(context.Background(), 0)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if len(solutions) != 1 {
		t.Fatalf("expected 1 solution, got %d", len(solutions))
	}
	if solutions[0][b.ID()] != 1 {
		t.Fatalf("expected b=1, got %d", solutions[0][b.ID()])
	}
}

func TestAllDifferentOverThreeValues(t *testing.T) {
	m := NewModel()
	vars := m.NewVariables(3, FullDomain(3))
	m.AddConstraint(NewAllDifferent(vars))
	m.AddConstraint(NewEqual(vars[0], 0))

	solver := NewSolver(m)
	solutions, err := solver.Solve(context.Background(), 0)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if len(solutions) != 2 {
		t.Fatalf("expected 2 permutations fixing v0=0, got %d", len(solutions))
	}
	for _, sol := range solutions {
		seen := map[int]bool{}
		for _, v := range sol {
			if seen[v] {
				t.Fatalf("solution %v has a repeated value", sol)
			}
			seen[v] = true
		}
	}
}

func TestElementVarEnforcesInvolution(t *testing.T) {
	// Four ports, paired as (0,1) and (2,3): target[target[p]] = p, target[p] != p.
	m := NewModel()
	target := m.NewVariables(4, FullDomain(4))
	for p, v := range target {
		pinned := m.NewVariable(SingletonDomain(4, p))
		elem, err := NewElementVar(v, target, pinned)
		if err != nil {
			t.Fatalf("NewElementVar: %v", err)
		}
		m.AddConstraint(elem)
		m.AddConstraint(NewNotEqual(v, p))
	}
	m.AddConstraint(NewEqual(target[0], 1))

	solver := NewSolver(m)
	solutions, err := solver.Solve(context.Background(), 1)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if len(solutions) != 1 {
		t.Fatalf("expected a solution pairing port 0 with port 1, got %d solutions", len(solutions))
	}
	sol := solutions[0]
	if sol[target[0].ID()] != 1 || sol[target[1].ID()] != 0 {
		t.Fatalf("expected involution 0<->1, got target[0]=%d target[1]=%d", sol[target[0].ID()], sol[target[1].ID()])
	}
}
