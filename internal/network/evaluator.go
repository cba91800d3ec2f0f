package network

import (
	"sync"

	"golang.org/x/exp/rand"

	"github.com/hailam/chesszero/internal/board"
	"github.com/hailam/chesszero/internal/policy"
)

// Prediction is an evaluator's output: a probability for every action
// index and a value in [-1, 1] from the side to move's point of view.
type Prediction struct {
	Policy []float32
	Value  float32
}

// Evaluator scores positions. history holds the encoded positions of the
// game so far, oldest first and ending with the position to evaluate.
type Evaluator interface {
	Evaluate(history []Planes, stm board.Color) (Prediction, error)
}

// Uniform spreads probability evenly over the action space and always
// returns a draw value.
type Uniform struct{}

func (Uniform) Evaluate([]Planes, board.Color) (Prediction, error) {
	p := make([]float32, policy.ActionSpace)
	for i := range p {
		p[i] = 1.0 / policy.ActionSpace
	}
	return Prediction{Policy: p}, nil
}

// Random returns a random normalised policy and a random value. It is safe
// for concurrent use.
type Random struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandom returns a Random evaluator with a deterministic seed.
func NewRandom(seed uint64) *Random {
	return &Random{rng: rand.New(rand.NewSource(seed))}
}

func (r *Random) Evaluate([]Planes, board.Color) (Prediction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := make([]float32, policy.ActionSpace)
	var sum float32
	for i := range p {
		p[i] = r.rng.Float32() + 1e-6
		sum += p[i]
	}
	for i := range p {
		p[i] /= sum
	}
	return Prediction{Policy: p, Value: float32(r.rng.Float64()*2 - 1)}, nil
}
