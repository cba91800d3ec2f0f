package engine

import (
	"math"

	"golang.org/x/exp/rand"

	"github.com/hailam/chesszero/internal/board"
)

// greedyTemperature is the threshold at or below which SelectMove picks the
// most visited move instead of sampling.
const greedyTemperature = 1e-3

// SelectMove picks the move to play from a finished search. At temperature
// <= 1e-3 it returns the most visited child (earliest on ties). Otherwise it
// samples a child with probability proportional to visits^(1/temperature).
func SelectMove(res *SearchResult, temperature float64, rng *rand.Rand) board.Move {
	if res == nil || len(res.Children) == 0 {
		return board.NoMove
	}
	if temperature <= greedyTemperature || rng == nil {
		return res.Move
	}

	maxVisits := 0
	for _, c := range res.Children {
		maxVisits = max(maxVisits, c.Visits)
	}
	if maxVisits == 0 {
		return res.Move
	}

	// Weights are scaled by maxVisits^(-1/T) so small temperatures do not
	// overflow.
	weights := make([]float64, len(res.Children))
	var total float64
	for i, c := range res.Children {
		if c.Visits == 0 {
			continue
		}
		weights[i] = math.Exp(math.Log(float64(c.Visits)/float64(maxVisits)) / temperature)
		total += weights[i]
	}

	r := rng.Float64() * total
	for i, w := range weights {
		if w == 0 {
			continue
		}
		r -= w
		if r < 0 {
			return res.Children[i].Move
		}
	}
	for i := len(weights) - 1; i >= 0; i-- {
		if weights[i] > 0 {
			return res.Children[i].Move
		}
	}
	return res.Move
}
