package anneal

import (
	"math/rand"

	"github.com/negainoido/icfpc2025/pkg/automaton"
)

// initialSolution builds a starting (labels, μ): labels are shuffled to
// match the target balance distribution, plans are walked
// greedily pairing each move's door with the mirror door of a randomly
// chosen destination where possible (or another free door of it when the
// mirror is taken), and every remaining free port is closed by greedy
// pairing, falling back to self-loops. The destination choice does not
// look at the observed labels.
func initialSolution(req Request, params Params, rng *rand.Rand) ([]int, automaton.Involution) {
	n := req.N
	labels := balancedLabels(n, rng)
	inv := automaton.NewInvolution(n)
	free := freeDoorSets(n)

	for _, plan := range req.Plans {
		room := req.StartingRoom
		for _, step := range plan.Steps {
			if step.Kind != automaton.Move {
				continue
			}
			door := step.Door
			if !free[room][door] {
				// Door already committed by an earlier plan; follow the
				// existing pairing instead of re-deciding it.
				room = inv.Step(room, door)
				continue
			}
			mirror := (door + 3) % automaton.DoorsPerRoom
			dest := pickDestination(room, door, mirror, labels, free, rng)
			destDoor := mirror
			if !free[dest][destDoor] {
				// The mirror door is already paired; take any free door of dest.
				for d := 0; d < automaton.DoorsPerRoom; d++ {
					if free[dest][d] {
						destDoor = d
						break
					}
				}
			}
			inv.Pair(automaton.ToPort(room, door), automaton.ToPort(dest, destDoor))
			free[room][door] = false
			free[dest][destDoor] = false
			room = dest
		}
	}

	closeRemainingPorts(inv, free, rng)
	return labels, inv
}

// balancedLabels assigns n labels so label counts match the §4.4 target
// distribution (⌊n/4⌋, with the first n mod 4 labels getting one extra),
// then shuffles their room assignment.
func balancedLabels(n int, rng *rand.Rand) []int {
	labels := make([]int, 0, n)
	base, extra := n/4, n%4
	for l := 0; l < 4; l++ {
		count := base
		if l < extra {
			count++
		}
		for i := 0; i < count; i++ {
			labels = append(labels, l)
		}
	}
	rng.Shuffle(len(labels), func(i, j int) { labels[i], labels[j] = labels[j], labels[i] })
	return labels
}

func freeDoorSets(n int) []map[int]bool {
	free := make([]map[int]bool, n)
	for q := range free {
		free[q] = make(map[int]bool, automaton.DoorsPerRoom)
		for d := 0; d < automaton.DoorsPerRoom; d++ {
			free[q][d] = true
		}
	}
	return free
}

// pickDestination picks uniformly among the other rooms that still have
// the mirror door free; room labels are not consulted. If there is none,
// it returns the first room with any free door, and the caller then uses
// another free door of that room when the mirror door is taken.
func pickDestination(room, door, mirror int, labels []int, free []map[int]bool, rng *rand.Rand) int {
	// No specific "desired next label" signal is threaded through here: the
	// greedy walk doesn't know the destination's required label in advance
	// without re-deriving plan position, so it distributes evenly across
	// rooms that still have the mirror door free, deferring correctness to
	// the annealing loop's energy-guided moves.
	candidates := make([]int, 0, len(labels))
	for q := range labels {
		if q != room && free[q][mirror] {
			candidates = append(candidates, q)
		}
	}
	if len(candidates) > 0 {
		return candidates[rng.Intn(len(candidates))]
	}
	for q := range labels {
		for d := 0; d < automaton.DoorsPerRoom; d++ {
			if free[q][d] {
				return q
			}
		}
	}
	return room
}

// closeRemainingPorts pairs off every still-free port, falling back to
// self-loops for whatever is left once no two free ports remain.
func closeRemainingPorts(inv automaton.Involution, free []map[int]bool, rng *rand.Rand) {
	var dangling []int
	for q, doors := range free {
		for d, isFree := range doors {
			if isFree {
				dangling = append(dangling, automaton.ToPort(q, d))
			}
		}
	}
	rng.Shuffle(len(dangling), func(i, j int) { dangling[i], dangling[j] = dangling[j], dangling[i] })
	for len(dangling) >= 2 {
		a, b := dangling[0], dangling[1]
		inv.Pair(a, b)
		dangling = dangling[2:]
	}
	for _, p := range dangling {
		inv.Pair(p, p)
	}
}
