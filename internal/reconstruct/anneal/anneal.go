// Package anneal implements a simulated-annealing reconstructor:
// randomised local search over (labels, matching) guided by an
// observation-mismatch energy, with geometric cooling, optional reheat,
// and multistart.
package anneal

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/negainoido/icfpc2025/internal/parallel"
	"github.com/negainoido/icfpc2025/pkg/automaton"
)

// Params configures a run. Zero-value fields fall back to the
// documented defaults via WithDefaults.
type Params struct {
	Iters       int
	LambdaBal   float64
	Seed        int64
	TimeLimit   time.Duration
	T0          float64
	Alpha       float64
	TMin        float64
	Restarts    int
	ReheatEvery int
	ReheatTo    float64
}

// WithDefaults fills unset fields with their documented defaults.
func (p Params) WithDefaults() Params {
	if p.Iters == 0 {
		p.Iters = 200000
	}
	if p.LambdaBal == 0 {
		p.LambdaBal = 0.5
	}
	if p.T0 == 0 {
		p.T0 = 1.0
	}
	if p.Alpha == 0 {
		p.Alpha = 0.999
	}
	if p.TMin == 0 {
		p.TMin = 1e-4
	}
	if p.Restarts == 0 {
		p.Restarts = 1
	}
	if p.ReheatTo == 0 {
		p.ReheatTo = 0.1 * p.T0
	}
	return p
}

// Request is the annealer's input, a parsed plans/results/startingRoom file.
type Request struct {
	Plans        []automaton.Plan
	Results      []automaton.Observation
	StartingRoom int
	N            int
	Params       Params
}

// Result is the best model found, together with its final energy. A
// EObs of zero means the model reproduces every observation exactly.
type Result struct {
	Labels []int
	Inv    automaton.Involution
	EObs   int
	EBal   float64
	Energy float64
}

// Reconstruct runs Params.Restarts independent searches in parallel (via
// internal/parallel's WorkerPool) and returns the lowest-energy result.
// It never returns an ill-formed model: labels stay in [0,3] and Inv
// remains a total involution at every point, including on early return
// via ctx cancellation or the time limit.
func Reconstruct(ctx context.Context, req Request) (*Result, error) {
	if len(req.Plans) != len(req.Results) {
		return nil, fmt.Errorf("anneal: %d plans but %d results", len(req.Plans), len(req.Results))
	}
	for i, p := range req.Plans {
		if err := automaton.ValidateLength(req.Results[i], p); err != nil {
			return nil, err
		}
	}

	params := req.Params.WithDefaults()
	deadline := time.Now().Add(params.TimeLimit)
	if params.TimeLimit <= 0 {
		deadline = time.Time{}
	}

	pool := parallel.NewWorkerPool(params.Restarts)
	defer pool.Shutdown()

	var (
		mu   sync.Mutex
		best *Result
		wg   sync.WaitGroup
	)

	for i := 0; i < params.Restarts; i++ {
		i := i
		wg.Add(1)
		task := func() {
			defer wg.Done()
			rng := rand.New(rand.NewSource(params.Seed + int64(i)))
			res := runOne(ctx, req, params, rng, deadline)
			mu.Lock()
			if best == nil || res.Energy < best.Energy {
				best = res
			}
			mu.Unlock()
		}
		if err := pool.Submit(ctx, task); err != nil {
			wg.Done()
			break
		}
	}
	wg.Wait()

	return best, ctx.Err()
}

func runOne(ctx context.Context, req Request, params Params, rng *rand.Rand, deadline time.Time) *Result {
	labels, inv := initialSolution(req, params, rng)
	energy := computeEnergy(labels, inv, req, params)

	bestLabels := append([]int(nil), labels...)
	bestInv := append(automaton.Involution(nil), inv...)
	bestEnergy := energy

	temp := params.T0
	stepsSinceImprovement := 0

	for k := 0; k < params.Iters; k++ {
		select {
		case <-ctx.Done():
			return finalize(bestLabels, bestInv, req, params)
		default:
		}
		if !deadline.IsZero() && time.Now().After(deadline) {
			break
		}
		if bestEnergy.total() == 0 {
			break
		}

		candLabels, candInv := applyMove(labels, inv, rng)
		candEnergy := computeEnergy(candLabels, candInv, req, params)

		delta := candEnergy.total() - energy.total()
		if delta <= 0 || rng.Float64() < math.Exp(-delta/temp) {
			labels, inv, energy = candLabels, candInv, candEnergy
			if energy.total() < bestEnergy.total() {
				bestLabels = append([]int(nil), labels...)
				bestInv = append(automaton.Involution(nil), inv...)
				bestEnergy = energy
				stepsSinceImprovement = 0
			} else {
				stepsSinceImprovement++
			}
		} else {
			stepsSinceImprovement++
		}

		temp = math.Max(params.TMin, temp*params.Alpha)
		if params.ReheatEvery > 0 && stepsSinceImprovement >= params.ReheatEvery {
			temp = params.ReheatTo
			stepsSinceImprovement = 0
		}
	}

	return finalize(bestLabels, bestInv, req, params)
}

func finalize(labels []int, inv automaton.Involution, req Request, params Params) *Result {
	e := computeEnergy(labels, inv, req, params)
	return &Result{
		Labels: labels,
		Inv:    inv,
		EObs:   e.obs,
		EBal:   e.bal,
		Energy: e.total(),
	}
}

type energy struct {
	obs       int
	bal       float64
	lambdaBal float64
}

func (e energy) total() float64 { return float64(e.obs) + e.lambdaBal*e.bal }

// computeEnergy recomputes E_obs + lambda*E_bal by full re-simulation.
// Incremental evaluation would be faster but is not required for
// correctness at this scale.
func computeEnergy(labels []int, inv automaton.Involution, req Request, params Params) energy {
	obsMismatch := 0
	simulated, _, err := automaton.SimulateAll(labels, inv, req.StartingRoom, req.Plans)
	if err != nil {
		// An ill-formed candidate should be unreachable (moves preserve the
		// involution and the label range); treat it as maximally bad so the
		// search steers away rather than panicking.
		return energy{obs: 1 << 30, lambdaBal: params.LambdaBal}
	}
	for k, obs := range simulated {
		for j := range obs {
			if j < len(req.Results[k]) && obs[j] != req.Results[k][j] {
				obsMismatch++
			}
		}
	}

	counts := make(map[int]int, 4)
	for _, l := range labels {
		counts[l]++
	}
	n := len(labels)
	target := make([]int, 4)
	base, extra := n/4, n%4
	for l := 0; l < 4; l++ {
		target[l] = base
		if l < extra {
			target[l]++
		}
	}
	bal := 0.0
	for l := 0; l < 4; l++ {
		d := float64(counts[l] - target[l])
		bal += d * d
	}

	return energy{obs: obsMismatch, bal: bal, lambdaBal: params.LambdaBal}
}
