package automaton

import "fmt"

// Simulate walks a single plan from startingRoom against inv, recording
// the label observed on entry to each room (including the start), per
// the length law |obs| = 1 + moves + chalkWrites. A chalk write is
// itself an observed position: the label is read immediately after it
// is written, in the room the walk currently occupies.
//
// Chalk semantics are GLOBAL: a Chalk step mutates labels[currentRoom] in
// place, and that mutation is visible to every later read — including
// reads made by other plans that simulate against the same labels slice
// afterwards. See DESIGN.md for why this choice was made over a
// per-plan-local alternative; SimulateAll below is what must be used
// whenever more than one plan runs against a session's evolving state.
func Simulate(labels []int, inv Involution, startingRoom int, plan Plan) (Observation, error) {
	if startingRoom < 0 || startingRoom >= inv.Rooms() {
		return nil, fmt.Errorf("automaton: startingRoom %d out of range [0,%d)", startingRoom, inv.Rooms())
	}
	obs := make(Observation, 0, plan.MoveCount()+plan.ChalkCount()+1)
	room := startingRoom
	obs = append(obs, labels[room])
	for _, step := range plan.Steps {
		switch step.Kind {
		case Chalk:
			if step.Label < 0 || step.Label > 3 {
				return nil, fmt.Errorf("automaton: chalk label %d out of range", step.Label)
			}
			labels[room] = step.Label
			obs = append(obs, labels[room])
		case Move:
			room = inv.Step(room, step.Door)
			obs = append(obs, labels[room])
		}
	}
	return obs, nil
}

// SimulateAll runs plans in order against a single copy of labels, so that
// chalk writes made while simulating an earlier plan are visible to later
// plans (the GLOBAL semantics Simulate documents). Each plan restarts at
// startingRoom; labels persist across plans. Returns one Observation per
// plan plus the final label state.
func SimulateAll(labels []int, inv Involution, startingRoom int, plans []Plan) ([]Observation, []int, error) {
	working := append([]int(nil), labels...)
	obs := make([]Observation, len(plans))
	for i, plan := range plans {
		o, err := Simulate(working, inv, startingRoom, plan)
		if err != nil {
			return nil, nil, fmt.Errorf("automaton: simulating plan %d: %w", i, err)
		}
		obs[i] = o
	}
	return obs, working, nil
}
