package automaton

import "fmt"

// Observation is the label sequence the oracle returns for a plan: the
// label observed on entry to each room along the walk, including the
// starting room.
type Observation []int

// ValidateLength enforces the length law:
// |obs| = 1 + moves(plan) + chalkWrites(plan).
func ValidateLength(obs Observation, plan Plan) error {
	want := plan.MoveCount() + plan.ChalkCount() + 1
	if len(obs) != want {
		return fmt.Errorf("automaton: observation length %d does not match plan (want %d = 1 + %d moves + %d chalk writes)",
			len(obs), want, plan.MoveCount(), plan.ChalkCount())
	}
	return nil
}
