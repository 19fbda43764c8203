package fdsolve

import (
	"fmt"
	"sync"
)

// ModelConstraint restricts the values variables may take simultaneously.
// Implementations must be safe for concurrent read access once added to a
// Model, since a Solver may be asked to search from multiple goroutines
// against independent SolverStates over the same Model.
type ModelConstraint interface {
	// Variables returns every variable this constraint references.
	Variables() []*FDVariable

	// Type identifies the constraint kind, e.g. "Equal", "AllDifferent".
	Type() string

	// Propagate narrows domains to restore arc-consistency given the current
	// SolverState, returning a new state with any narrowed domains recorded.
	// ok is false if propagation made some domain empty.
	Propagate(s *Solver, state *SolverState) (*SolverState, bool)

	String() string
}

// SolverConfig controls search heuristics and limits. The zero value is
// the same as DefaultSolverConfig.
type SolverConfig struct {
	// MaxNodes bounds the number of search-tree nodes explored. Zero means
	// unbounded (still subject to ctx cancellation).
	MaxNodes int
}

// DefaultSolverConfig returns sane defaults: no node cap, relying on the
// caller's context for cancellation.
func DefaultSolverConfig() *SolverConfig {
	return &SolverConfig{MaxNodes: 0}
}

// Model declares a constraint satisfaction problem: variables, the
// constraints over them, and solving configuration. Models are built
// sequentially and then handed to a Solver; they are not mutated during
// solving, so a single Model can back multiple independent Solver runs.
type Model struct {
	mu            sync.RWMutex
	variables     []*FDVariable
	constraints   []ModelConstraint
	variableIndex map[int]*FDVariable
	config        *SolverConfig
}

// NewModel returns an empty model with default configuration.
func NewModel() *Model {
	return &Model{
		variableIndex: make(map[int]*FDVariable),
		config:        DefaultSolverConfig(),
	}
}

// NewVariable creates and registers a variable with the given domain.
func (m *Model) NewVariable(domain Domain) *FDVariable {
	return m.NewVariableWithName(domain, "")
}

// NewVariableWithName creates and registers a named variable.
func (m *Model) NewVariableWithName(domain Domain, name string) *FDVariable {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := len(m.variables)
	var v *FDVariable
	if name == "" {
		v = NewFDVariable(id, domain)
	} else {
		v = NewFDVariableWithName(id, domain, name)
	}
	m.variables = append(m.variables, v)
	m.variableIndex[id] = v
	return v
}

// NewVariables creates count variables sharing the same initial domain.
func (m *Model) NewVariables(count int, domain Domain) []*FDVariable {
	vars := make([]*FDVariable, count)
	for i := range vars {
		vars[i] = m.NewVariable(domain.Clone())
	}
	return vars
}

// GetVariable looks up a variable by id, or nil if unknown.
func (m *Model) GetVariable(id int) *FDVariable {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.variableIndex[id]
}

// Variables returns every variable in creation order. Callers must not
// mutate the returned slice.
func (m *Model) Variables() []*FDVariable {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.variables
}

// AddConstraint registers a constraint against the model.
func (m *Model) AddConstraint(c ModelConstraint) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.constraints = append(m.constraints, c)
}

// Constraints returns every constraint in registration order.
func (m *Model) Constraints() []ModelConstraint {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.constraints
}

// Config returns the solver configuration attached to this model.
func (m *Model) Config() *SolverConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// SetConfig replaces the solver configuration. Must be called before
// solving starts.
func (m *Model) SetConfig(c *SolverConfig) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c != nil {
		m.config = c
	}
}

// Validate reports whether the model is well-formed: no variable starts
// with an empty domain, and every constraint references known variables.
func (m *Model) Validate() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, v := range m.variables {
		if v.Domain().Count() == 0 {
			return fmt.Errorf("fdsolve: variable %s has empty domain", v.Name())
		}
	}
	for _, c := range m.constraints {
		for _, v := range c.Variables() {
			if m.variableIndex[v.ID()] == nil {
				return fmt.Errorf("fdsolve: constraint %s references unknown variable %d", c.Type(), v.ID())
			}
		}
	}
	return nil
}

func (m *Model) String() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return fmt.Sprintf("Model{variables: %d, constraints: %d}", len(m.variables), len(m.constraints))
}
