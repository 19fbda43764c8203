// Package exact implements a SAT/SMT-style reconstructor: given plans and
// their observed label sequences, it encodes room labels and the port
// involution as a finite-domain model (pkg/fdsolve) and searches for the
// smallest feasible room count.
//
// Chalk steps are rejected here rather than unfolded into per-time label
// variables — restricting plans to chalk-free is an acceptable treatment,
// and that is the one this package takes; pkg/automaton.Simulate (used
// for output validation and by the annealer) fully supports chalk under
// the GLOBAL semantics decided in DESIGN.md.
package exact

import (
	"context"
	"errors"
	"fmt"

	"github.com/negainoido/icfpc2025/pkg/automaton"
	"github.com/negainoido/icfpc2025/pkg/fdsolve"
)

// ErrChalkUnsupported is returned when any plan contains a Chalk step.
var ErrChalkUnsupported = errors.New("exact: chalk steps are not supported by the exact reconstructor")

// ErrUnsatInRange is returned when no N in [minN, maxN] admits a feasible
// model.
var ErrUnsatInRange = errors.New("exact: no feasible reconstruction in range")

// errUnsatAtN signals that a specific N has no feasible model; the sweep
// in Reconstruct treats it as "try the next N" rather than a hard failure.
var errUnsatAtN = errors.New("exact: unsatisfiable at this N")

// Request is the exact reconstructor's input, already parsed.
type Request struct {
	Plans        []automaton.Plan
	Results      []automaton.Observation
	StartingRoom int
	// N fixes the room count; nil means sweep MinN..MaxN.
	N          *int
	MinN, MaxN int
}

// Result is a validated feasible model together with the N it was found
// at.
type Result struct {
	N      int
	Labels []int
	Inv    automaton.Involution
}

// Reconstruct sweeps N from MinN to MaxN (or solves the single fixed N,
// if req.N is set), returning the first (smallest-N) feasible model, or
// ErrUnsatInRange if none exists.
func Reconstruct(ctx context.Context, req Request) (*Result, error) {
	for _, p := range req.Plans {
		for _, s := range p.Steps {
			if s.Kind == automaton.Chalk {
				return nil, ErrChalkUnsupported
			}
		}
	}
	if len(req.Plans) != len(req.Results) {
		return nil, fmt.Errorf("exact: %d plans but %d results", len(req.Plans), len(req.Results))
	}
	for i, p := range req.Plans {
		if err := automaton.ValidateLength(req.Results[i], p); err != nil {
			return nil, err
		}
	}

	if req.N != nil {
		return solveForN(ctx, req, *req.N)
	}

	minN, maxN := req.MinN, req.MaxN
	if minN < 1 {
		minN = 1
	}
	for n := minN; n <= maxN; n++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		result, err := solveForN(ctx, req, n)
		if err == nil {
			return result, nil
		}
		if !errors.Is(err, errUnsatAtN) {
			return nil, err
		}
	}
	return nil, ErrUnsatInRange
}

func solveForN(ctx context.Context, req Request, n int) (*Result, error) {
	if n < 1 {
		return nil, fmt.Errorf("exact: N must be >= 1, got %d", n)
	}
	if req.StartingRoom < 0 || req.StartingRoom >= n {
		return nil, fmt.Errorf("exact: startingRoom %d out of range for N=%d", req.StartingRoom, n)
	}

	b := newBuilder(n)
	if err := b.postInvolutionConstraints(); err != nil {
		return nil, err
	}
	for k, plan := range req.Plans {
		if err := b.postPlanConstraints(plan, req.Results[k], req.StartingRoom); err != nil {
			return nil, err
		}
	}

	solver := fdsolve.NewSolver(b.model)
	solutions, err := solver.Solve(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(solutions) == 0 {
		return nil, errUnsatAtN
	}

	labels, inv := b.decode(solutions[0])
	result := &Result{N: n, Labels: labels, Inv: inv}
	if err := validate(result, req); err != nil {
		return nil, fmt.Errorf("exact: internal error, solution failed output validation: %w", err)
	}
	return result, nil
}

// validate re-simulates every plan against the decoded model and fails
// closed on any mismatch.
func validate(result *Result, req Request) error {
	m, err := automaton.NewModel(result.Labels, result.Inv, req.StartingRoom)
	if err != nil {
		return err
	}
	if err := m.Validate(); err != nil {
		return err
	}
	obs, _, err := automaton.SimulateAll(result.Labels, result.Inv, req.StartingRoom, req.Plans)
	if err != nil {
		return err
	}
	for k := range req.Plans {
		if len(obs[k]) != len(req.Results[k]) {
			return fmt.Errorf("plan %d: simulated observation length %d != expected %d", k, len(obs[k]), len(req.Results[k]))
		}
		for j := range obs[k] {
			if obs[k][j] != req.Results[k][j] {
				return fmt.Errorf("plan %d position %d: simulated %d != expected %d", k, j, obs[k][j], req.Results[k][j])
			}
		}
	}
	return nil
}
