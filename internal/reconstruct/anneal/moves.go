package anneal

import (
	"math/rand"

	"github.com/negainoido/icfpc2025/pkg/automaton"
)

// applyMove returns a candidate (labels, μ) obtained from the current one
// by exactly one neighbourhood move chosen uniformly. The input is never
// mutated; candidates are independent copies so a rejected move can
// simply be discarded.
func applyMove(labels []int, inv automaton.Involution, rng *rand.Rand) ([]int, automaton.Involution) {
	candLabels := append([]int(nil), labels...)
	candInv := append(automaton.Involution(nil), inv...)

	switch rng.Intn(3) {
	case 0:
		twoOptSwap(candInv, rng)
	case 1:
		labelSwap(candLabels, rng)
	case 2:
		labelNudge(candLabels, rng)
	}
	return candLabels, candInv
}

// twoOptSwap picks two distinct pairs (a<->b), (c<->d) and replaces them
// with one of the two alternative pairings that preserves involutiveness.
func twoOptSwap(inv automaton.Involution, rng *rand.Rand) {
	if len(inv) < 4 {
		return
	}
	a := rng.Intn(len(inv))
	b := inv[a]
	if a == b {
		return // a is a self-loop; no second pair can combine with it
	}
	var c, d int
	for tries := 0; tries < 10; tries++ {
		c = rng.Intn(len(inv))
		if c == a || c == b {
			continue
		}
		d = inv[c]
		if d == c || d == a || d == b {
			continue
		}
		kind := rng.Intn(2)
		if err := inv.SwapEndpoints(a, b, c, d, kind); err == nil {
			return
		}
	}
}

// labelSwap exchanges the labels of two distinct rooms.
func labelSwap(labels []int, rng *rand.Rand) {
	if len(labels) < 2 {
		return
	}
	i := rng.Intn(len(labels))
	j := rng.Intn(len(labels))
	for j == i {
		j = rng.Intn(len(labels))
	}
	labels[i], labels[j] = labels[j], labels[i]
}

// labelNudge moves one room from the most-over-represented label class to
// the most-under-represented one.
func labelNudge(labels []int, rng *rand.Rand) {
	if len(labels) == 0 {
		return
	}
	var counts [4]int
	for _, l := range labels {
		counts[l]++
	}
	over, under := 0, 0
	for l := 1; l < 4; l++ {
		if counts[l] > counts[over] {
			over = l
		}
		if counts[l] < counts[under] {
			under = l
		}
	}
	if over == under {
		return
	}
	candidates := make([]int, 0, counts[over])
	for q, l := range labels {
		if l == over {
			candidates = append(candidates, q)
		}
	}
	if len(candidates) == 0 {
		return
	}
	labels[candidates[rng.Intn(len(candidates))]] = under
}
