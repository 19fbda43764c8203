package fdsolve

import (
	"context"
	"fmt"
)

// SolverState is a persistent, copy-on-write record of domain narrowings
// relative to a Model's initial domains. Each node records the single
// variable it modified and points at its parent; reading a variable's
// current domain walks the chain until that variable is found.
//
// This sparse representation makes branching O(1): trying the next value
// for a variable is "create one new state node", not "clone every domain".
type SolverState struct {
	parent         *SolverState
	modifiedVarID  int
	modifiedDomain Domain
}

// Solver performs propagation and backtracking search over a Model.
// A Solver is not safe for concurrent use; run independent Solvers, each
// over its own SolverState chain, to search a Model from multiple
// goroutines (the Model itself is read-only during solving).
type Solver struct {
	model     *Model
	config    *SolverConfig
	baseState *SolverState
}

// NewSolver creates a solver for model using the model's own configuration.
func NewSolver(model *Model) *Solver {
	return &Solver{model: model, config: model.Config()}
}

// NewSolverWithConfig creates a solver that overrides the model's config.
func NewSolverWithConfig(model *Model, config *SolverConfig) *Solver {
	if config == nil {
		config = model.Config()
	}
	return &Solver{model: model, config: config}
}

// GetDomain returns the current domain of varID under state, falling back
// to the model's initial domain if state never touched that variable. If
// state is nil, the solver's cached root-propagated state (if any) is
// consulted first, which lets callers inspect post-propagation domains
// without threading SolverState explicitly.
func (s *Solver) GetDomain(state *SolverState, varID int) Domain {
	for cur := state; cur != nil; cur = cur.parent {
		if cur.modifiedVarID == varID {
			return cur.modifiedDomain
		}
	}
	if state == nil {
		for cur := s.baseState; cur != nil; cur = cur.parent {
			if cur.modifiedVarID == varID {
				return cur.modifiedDomain
			}
		}
	}
	if v := s.model.GetVariable(varID); v != nil {
		return v.Domain()
	}
	return nil
}

// SetDomain returns a new state recording domain as varID's current domain.
// If domain already equals the variable's current domain under state, the
// original state is returned unchanged and changed is false.
func (s *Solver) SetDomain(state *SolverState, varID int, domain Domain) (next *SolverState, changed bool) {
	if s.GetDomain(state, varID).Equal(domain) {
		return state, false
	}
	return &SolverState{parent: state, modifiedVarID: varID, modifiedDomain: domain}, true
}

// propagate runs every constraint to a fixed point, returning ok=false if
// any constraint drives a domain empty.
func (s *Solver) propagate(state *SolverState) (*SolverState, bool) {
	constraints := s.model.Constraints()
	current := state
	const maxIterations = 10000
	for iter := 0; iter < maxIterations; iter++ {
		changed := false
		for _, c := range constraints {
			next, ok := c.Propagate(s, current)
			if !ok {
				return nil, false
			}
			if next != current {
				changed = true
				current = next
			}
		}
		if !changed {
			return current, true
		}
	}
	return nil, false
}

// Solve searches for up to maxSolutions satisfying assignments. maxSolutions
// <= 0 means find all solutions. Returns one []int per solution, indexed by
// variable id. The search honors ctx cancellation, checked between branch
// attempts.
func (s *Solver) Solve(ctx context.Context, maxSolutions int) ([][]int, error) {
	if err := s.model.Validate(); err != nil {
		return nil, fmt.Errorf("fdsolve: invalid model: %w", err)
	}

	root, ok := s.propagate(nil)
	if !ok {
		return [][]int{}, nil
	}
	s.baseState = root

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if s.isComplete(root) {
		return [][]int{s.extractSolution(root)}, nil
	}

	var solutions [][]int
	s.search(ctx, root, &solutions, maxSolutions)
	return solutions, ctx.Err()
}

type searchFrame struct {
	state      *SolverState
	varID      int
	values     []int
	valueIndex int
}

// search performs an iterative, stack-based backtracking search so deep
// CSPs (hundreds of rooms, thousands of port variables) don't blow the
// goroutine stack via recursion.
func (s *Solver) search(ctx context.Context, state *SolverState, solutions *[][]int, maxSolutions int) {
	varID, values := s.selectVariable(state)
	if varID == -1 {
		if s.isComplete(state) {
			*solutions = append(*solutions, s.extractSolution(state))
		}
		return
	}

	stack := []*searchFrame{{state: state, varID: varID, values: values}}
	nodes := 0

	for len(stack) > 0 {
		select {
		case <-ctx.Done():
			return
		default:
		}
		if s.config != nil && s.config.MaxNodes > 0 && nodes >= s.config.MaxNodes {
			return
		}

		frame := stack[len(stack)-1]
		if frame.valueIndex >= len(frame.values) {
			stack = stack[:len(stack)-1]
			continue
		}

		value := frame.values[frame.valueIndex]
		frame.valueIndex++
		nodes++

		assigned := SingletonDomain(domainSize(s.GetDomain(frame.state, frame.varID)), value)
		branchState, _ := s.SetDomain(frame.state, frame.varID, assigned)

		propagated, ok := s.propagate(branchState)
		if !ok {
			continue
		}

		if s.isComplete(propagated) {
			*solutions = append(*solutions, s.extractSolution(propagated))
			if maxSolutions > 0 && len(*solutions) >= maxSolutions {
				return
			}
			continue
		}

		nextVarID, nextValues := s.selectVariable(propagated)
		if nextVarID == -1 {
			continue
		}
		stack = append(stack, &searchFrame{state: propagated, varID: nextVarID, values: nextValues})
	}
}

func domainSize(d Domain) int {
	if bs, ok := d.(*BitSetDomain); ok {
		return bs.size
	}
	return d.Max() + 1
}

func (s *Solver) isComplete(state *SolverState) bool {
	for _, v := range s.model.Variables() {
		if !s.GetDomain(state, v.ID()).IsSingleton() {
			return false
		}
	}
	return true
}

func (s *Solver) extractSolution(state *SolverState) []int {
	vars := s.model.Variables()
	solution := make([]int, len(vars))
	for _, v := range vars {
		d := s.GetDomain(state, v.ID())
		if d.IsSingleton() {
			solution[v.ID()] = d.SingletonValue()
		}
	}
	return solution
}

// selectVariable implements minimum-remaining-values: the unbound variable
// with the smallest domain branches first, ties broken by variable id.
func (s *Solver) selectVariable(state *SolverState) (int, []int) {
	bestVar := -1
	bestCount := -1
	for _, v := range s.model.Variables() {
		d := s.GetDomain(state, v.ID())
		if d.IsSingleton() {
			continue
		}
		if bestVar == -1 || d.Count() < bestCount {
			bestVar = v.ID()
			bestCount = d.Count()
		}
	}
	if bestVar == -1 {
		return -1, nil
	}
	d := s.GetDomain(state, bestVar)
	values := make([]int, 0, d.Count())
	d.IterateValues(func(v int) { values = append(values, v) })
	return bestVar, values
}
