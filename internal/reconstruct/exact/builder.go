package exact

import (
	"fmt"

	"github.com/negainoido/icfpc2025/pkg/automaton"
	"github.com/negainoido/icfpc2025/pkg/fdsolve"
)

// builder assembles the finite-domain model for a fixed room count N. The
// port involution is encoded with one combined "target" variable per port
// rather than separate δ/port arrays: targetVar[p] ranges over [0, 6N) and
// equals δ[q][d]*6+port[q][d] for p=(q,d), linked to explicit room/door
// variables via portIndex so output decoding can read rooms and doors back
// out directly. This is equivalent to tracking δ and port as a pair — a
// single combined index avoids needing a two-variable ("room AND door")
// table lookup, which fdsolve's ElementVar does not support directly.
type builder struct {
	n         int
	model     *fdsolve.Model
	roomVar   []*fdsolve.FDVariable // roomVar[p] = δ[q][d], for p = ToPort(q,d)
	doorVar   []*fdsolve.FDVariable // doorVar[p] = port[q][d]
	targetVar []*fdsolve.FDVariable // targetVar[p] = roomVar[p]*6 + doorVar[p]
	lblVar    []*fdsolve.FDVariable
}

func newBuilder(n int) *builder {
	m := fdsolve.NewModel()
	ports := n * automaton.DoorsPerRoom

	roomVar := make([]*fdsolve.FDVariable, ports)
	doorVar := make([]*fdsolve.FDVariable, ports)
	targetVar := make([]*fdsolve.FDVariable, ports)
	for p := 0; p < ports; p++ {
		roomVar[p] = m.NewVariableWithName(fdsolve.FullDomain(n), fmt.Sprintf("room[%d]", p))
		doorVar[p] = m.NewVariableWithName(fdsolve.FullDomain(automaton.DoorsPerRoom), fmt.Sprintf("door[%d]", p))
		targetVar[p] = m.NewVariableWithName(fdsolve.FullDomain(ports), fmt.Sprintf("target[%d]", p))
	}
	lblVar := make([]*fdsolve.FDVariable, n)
	for q := 0; q < n; q++ {
		lblVar[q] = m.NewVariableWithName(fdsolve.FullDomain(4), fmt.Sprintf("lbl[%d]", q))
	}

	return &builder{n: n, model: m, roomVar: roomVar, doorVar: doorVar, targetVar: targetVar, lblVar: lblVar}
}

// postInvolutionConstraints links room/door to the combined target index
// and posts target[target[p]] = p for every port, which is exactly
// δ[δ[q][d]][port[q][d]]=q and port[δ[q][d]][port[q][d]]=d taken together.
func (b *builder) postInvolutionConstraints() error {
	for p := range b.targetVar {
		b.model.AddConstraint(newPortIndex(b.roomVar[p], b.doorVar[p], b.targetVar[p]))

		pinned := b.model.NewVariableWithName(fdsolve.SingletonDomain(len(b.targetVar), p), fmt.Sprintf("portConst[%d]", p))
		elem, err := fdsolve.NewElementVar(b.targetVar[p], b.targetVar, pinned)
		if err != nil {
			return fmt.Errorf("exact: building involution constraint for port %d: %w", p, err)
		}
		b.model.AddConstraint(elem)
	}
	return nil
}

// postPlanConstraints threads a room-state variable through the plan's
// move steps and pins each observed label to the observation-consistency
// constraint (chalk-free, see package doc).
func (b *builder) postPlanConstraints(plan automaton.Plan, obs automaton.Observation, startingRoom int) error {
	state := b.model.NewVariableWithName(fdsolve.SingletonDomain(b.n, startingRoom), "state[0]")

	obsIdx := 0
	if err := b.pinObservation(state, obs[obsIdx]); err != nil {
		return err
	}
	obsIdx++

	for _, step := range plan.Steps {
		if step.Kind != automaton.Move {
			continue
		}
		column := b.roomColumn(step.Door)
		next := b.model.NewVariable(fdsolve.FullDomain(b.n))
		elem, err := fdsolve.NewElementVar(state, column, next)
		if err != nil {
			return fmt.Errorf("exact: building state transition: %w", err)
		}
		b.model.AddConstraint(elem)
		state = next

		if obsIdx >= len(obs) {
			return fmt.Errorf("exact: observation shorter than plan's move count")
		}
		if err := b.pinObservation(state, obs[obsIdx]); err != nil {
			return err
		}
		obsIdx++
	}
	return nil
}

// roomColumn returns, for a fixed door d, the slice {roomVar[ToPort(q,d)]}
// over all rooms q — the table a state-transition ElementVar indexes with
// the current room as the (variable) index.
func (b *builder) roomColumn(door int) []*fdsolve.FDVariable {
	col := make([]*fdsolve.FDVariable, b.n)
	for q := 0; q < b.n; q++ {
		col[q] = b.roomVar[automaton.ToPort(q, door)]
	}
	return col
}

func (b *builder) pinObservation(state *fdsolve.FDVariable, label int) error {
	if label < 0 || label > 3 {
		return fmt.Errorf("exact: observed label %d out of range", label)
	}
	pinned := b.model.NewVariableWithName(fdsolve.SingletonDomain(4, label), fmt.Sprintf("obsConst[%d]", label))
	elem, err := fdsolve.NewElementVar(state, b.lblVar, pinned)
	if err != nil {
		return fmt.Errorf("exact: building observation constraint: %w", err)
	}
	b.model.AddConstraint(elem)
	return nil
}

// decode extracts room labels and the port involution from a satisfying
// assignment, indexed by variable id exactly as the builder created them.
func (b *builder) decode(solution []int) ([]int, automaton.Involution) {
	labels := make([]int, b.n)
	for q, v := range b.lblVar {
		labels[q] = solution[v.ID()]
	}
	inv := make(automaton.Involution, len(b.targetVar))
	for p, v := range b.targetVar {
		inv[p] = solution[v.ID()]
	}
	return labels, inv
}
