// Constraint types for fdsolve. Each implements ModelConstraint, narrowing
// domains in Propagate until a fixed point or an emptied domain is reached.
package fdsolve

import "fmt"

// Equal pins a variable to a fixed value.
type Equal struct {
	v     *FDVariable
	value int
}

// NewEqual constrains v to value.
func NewEqual(v *FDVariable, value int) *Equal { return &Equal{v: v, value: value} }

func (c *Equal) Variables() []*FDVariable { return []*FDVariable{c.v} }
func (c *Equal) Type() string             { return "Equal" }
func (c *Equal) String() string           { return fmt.Sprintf("Equal(%s=%d)", c.v.Name(), c.value) }

func (c *Equal) Propagate(s *Solver, state *SolverState) (*SolverState, bool) {
	dom := s.GetDomain(state, c.v.ID())
	if !dom.Has(c.value) {
		return nil, false
	}
	if dom.IsSingleton() {
		return state, true
	}
	pinned := SingletonDomain(domainSize(dom), c.value)
	next, _ := s.SetDomain(state, c.v.ID(), pinned)
	return next, true
}

// NotEqual forbids a variable from taking a fixed value.
type NotEqual struct {
	v     *FDVariable
	value int
}

// NewNotEqual constrains v to never equal value.
func NewNotEqual(v *FDVariable, value int) *NotEqual { return &NotEqual{v: v, value: value} }

func (c *NotEqual) Variables() []*FDVariable { return []*FDVariable{c.v} }
func (c *NotEqual) Type() string             { return "NotEqual" }
func (c *NotEqual) String() string {
	return fmt.Sprintf("NotEqual(%s!=%d)", c.v.Name(), c.value)
}

func (c *NotEqual) Propagate(s *Solver, state *SolverState) (*SolverState, bool) {
	dom := s.GetDomain(state, c.v.ID())
	if !dom.Has(c.value) {
		return state, true
	}
	next := dom.Remove(c.value)
	if next.Count() == 0 {
		return nil, false
	}
	newState, _ := s.SetDomain(state, c.v.ID(), next)
	return newState, true
}

// EqualVars enforces a == b.
type EqualVars struct {
	a, b *FDVariable
}

// NewEqualVars constrains a and b to the same value.
func NewEqualVars(a, b *FDVariable) *EqualVars { return &EqualVars{a: a, b: b} }

func (c *EqualVars) Variables() []*FDVariable { return []*FDVariable{c.a, c.b} }
func (c *EqualVars) Type() string             { return "EqualVars" }
func (c *EqualVars) String() string {
	return fmt.Sprintf("EqualVars(%s=%s)", c.a.Name(), c.b.Name())
}

func (c *EqualVars) Propagate(s *Solver, state *SolverState) (*SolverState, bool) {
	da := s.GetDomain(state, c.a.ID())
	db := s.GetDomain(state, c.b.ID())
	shared := da.Intersect(db)
	if shared.Count() == 0 {
		return nil, false
	}
	cur := state
	changed := false
	if !shared.Equal(da) {
		cur, _ = s.SetDomain(cur, c.a.ID(), shared)
		changed = true
	}
	if !shared.Equal(db) {
		cur, _ = s.SetDomain(cur, c.b.ID(), shared)
		changed = true
	}
	_ = changed
	return cur, true
}

// NotEqualVars enforces a != b. Propagation only fires once one side is
// bound, since a bitset difference can't otherwise narrow either domain.
type NotEqualVars struct {
	a, b *FDVariable
}

// NewNotEqualVars constrains a and b to different values.
func NewNotEqualVars(a, b *FDVariable) *NotEqualVars { return &NotEqualVars{a: a, b: b} }

func (c *NotEqualVars) Variables() []*FDVariable { return []*FDVariable{c.a, c.b} }
func (c *NotEqualVars) Type() string             { return "NotEqualVars" }
func (c *NotEqualVars) String() string {
	return fmt.Sprintf("NotEqualVars(%s!=%s)", c.a.Name(), c.b.Name())
}

func (c *NotEqualVars) Propagate(s *Solver, state *SolverState) (*SolverState, bool) {
	da := s.GetDomain(state, c.a.ID())
	db := s.GetDomain(state, c.b.ID())
	cur := state
	if da.IsSingleton() {
		if db.Has(da.SingletonValue()) {
			next := db.Remove(da.SingletonValue())
			if next.Count() == 0 {
				return nil, false
			}
			cur, _ = s.SetDomain(cur, c.b.ID(), next)
		}
	}
	if db.IsSingleton() {
		da = s.GetDomain(cur, c.a.ID())
		if da.Has(db.SingletonValue()) {
			next := da.Remove(db.SingletonValue())
			if next.Count() == 0 {
				return nil, false
			}
			cur, _ = s.SetDomain(cur, c.a.ID(), next)
		}
	}
	return cur, true
}

// AllDifferent enforces pairwise distinctness across vars. This is a
// simplified propagator (not Régin's matching algorithm): it only
// propagates the singleton-vs-rest case. The exact automaton
// reconstructor does not post it.
type AllDifferent struct {
	vars []*FDVariable
}

// NewAllDifferent constrains every pair in vars to take different values.
func NewAllDifferent(vars []*FDVariable) *AllDifferent {
	return &AllDifferent{vars: append([]*FDVariable(nil), vars...)}
}

func (c *AllDifferent) Variables() []*FDVariable { return c.vars }
func (c *AllDifferent) Type() string             { return "AllDifferent" }
func (c *AllDifferent) String() string           { return fmt.Sprintf("AllDifferent(n=%d)", len(c.vars)) }

func (c *AllDifferent) Propagate(s *Solver, state *SolverState) (*SolverState, bool) {
	cur := state
	for i, vi := range c.vars {
		di := s.GetDomain(cur, vi.ID())
		if !di.IsSingleton() {
			continue
		}
		value := di.SingletonValue()
		for j, vj := range c.vars {
			if i == j {
				continue
			}
			dj := s.GetDomain(cur, vj.ID())
			if dj.IsSingleton() {
				if dj.SingletonValue() == value {
					return nil, false
				}
				continue
			}
			if dj.Has(value) {
				next := dj.Remove(value)
				if next.Count() == 0 {
					return nil, false
				}
				cur, _ = s.SetDomain(cur, vj.ID(), next)
			}
		}
	}
	return cur, true
}

// ElementVar enforces result = table[index], where table holds variables
// rather than constants. This is the constraint behind the involution's
// double indirection: encoding target[target[p]] = p means posting
// ElementVar(index=target[p], table=target, result=constant p).
type ElementVar struct {
	index  *FDVariable
	table  []*FDVariable
	result *FDVariable
}

// NewElementVar constructs result = table[index].
func NewElementVar(index *FDVariable, table []*FDVariable, result *FDVariable) (*ElementVar, error) {
	if index == nil || result == nil {
		return nil, fmt.Errorf("fdsolve: ElementVar requires non-nil index and result")
	}
	if len(table) == 0 {
		return nil, fmt.Errorf("fdsolve: ElementVar requires a non-empty table")
	}
	return &ElementVar{index: index, table: append([]*FDVariable(nil), table...), result: result}, nil
}

func (e *ElementVar) Variables() []*FDVariable {
	vars := make([]*FDVariable, 0, len(e.table)+2)
	vars = append(vars, e.index, e.result)
	vars = append(vars, e.table...)
	return vars
}

func (e *ElementVar) Type() string { return "ElementVar" }
func (e *ElementVar) String() string {
	return fmt.Sprintf("ElementVar(result=%s=table[%s], n=%d)", e.result.Name(), e.index.Name(), len(e.table))
}

func (e *ElementVar) Propagate(s *Solver, state *SolverState) (*SolverState, bool) {
	n := len(e.table)
	idxDom := s.GetDomain(state, e.index.ID())
	resDom := s.GetDomain(state, e.result.ID())
	cur := state

	// Clamp index to a valid table position.
	if idxDom.Min() < 0 || idxDom.Max() >= n {
		allowed := make([]int, 0, idxDom.Count())
		idxDom.IterateValues(func(i int) {
			if i >= 0 && i < n {
				allowed = append(allowed, i)
			}
		})
		if len(allowed) == 0 {
			return nil, false
		}
		newIdx := domainFromValues(domainSize(idxDom), allowed)
		if !newIdx.Equal(idxDom) {
			cur, _ = s.SetDomain(cur, e.index.ID(), newIdx)
			idxDom = newIdx
		}
	}

	// index -> result: result must be reachable via some admissible index.
	allowedRes := EmptyDomain(domainSize(resDom))
	var resAcc Domain = allowedRes
	idxDom.IterateValues(func(i int) {
		entryDom := s.GetDomain(cur, e.table[i].ID())
		resAcc = unionDomains(resAcc, entryDom)
	})
	resFiltered := resDom.Intersect(resAcc)
	if resFiltered.Count() == 0 {
		return nil, false
	}
	if !resFiltered.Equal(resDom) {
		cur, _ = s.SetDomain(cur, e.result.ID(), resFiltered)
		resDom = resFiltered
	}

	// result -> index: drop indices whose table entry can no longer reach resDom.
	keptIdx := make([]int, 0, idxDom.Count())
	idxDom.IterateValues(func(i int) {
		entryDom := s.GetDomain(cur, e.table[i].ID())
		if entryDom.Intersect(resDom).Count() > 0 {
			keptIdx = append(keptIdx, i)
		}
	})
	if len(keptIdx) == 0 {
		return nil, false
	}
	newIdx := domainFromValues(domainSize(idxDom), keptIdx)
	if !newIdx.Equal(idxDom) {
		cur, _ = s.SetDomain(cur, e.index.ID(), newIdx)
		idxDom = newIdx
	}

	// result/index -> table[i]: for each remaining candidate index, if it is
	// the ONLY admissible index, its table entry must equal resDom.
	if idxDom.IsSingleton() {
		i := idxDom.SingletonValue()
		entryDom := s.GetDomain(cur, e.table[i].ID())
		narrowed := entryDom.Intersect(resDom)
		if narrowed.Count() == 0 {
			return nil, false
		}
		if !narrowed.Equal(entryDom) {
			cur, _ = s.SetDomain(cur, e.table[i].ID(), narrowed)
		}
	}

	return cur, true
}

func domainFromValues(size int, values []int) Domain {
	d := EmptyDomain(size)
	for _, v := range values {
		d.set(v)
	}
	return d
}

func unionDomains(a, b Domain) Domain {
	ab, ok1 := a.(*BitSetDomain)
	bb, ok2 := b.(*BitSetDomain)
	if !ok1 || !ok2 || ab.size != bb.size {
		return a
	}
	words := make([]uint64, len(ab.words))
	for i := range words {
		words[i] = ab.words[i] | bb.words[i]
	}
	return &BitSetDomain{size: ab.size, words: words}
}
