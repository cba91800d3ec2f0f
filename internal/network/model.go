package network

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"

	"github.com/hailam/chesszero/internal/board"
	"github.com/hailam/chesszero/internal/policy"
)

// HiddenSize is the width of the shared hidden layer.
const HiddenSize = 256

// Model is a dense policy/value network:
//
//	input (InputSize) -> hidden (HiddenSize, ReLU) -> policy (softmax)
//	                                              \-> value (tanh)
//
// Weight matrices are stored row-major by output unit. A Model is
// read-only after loading and may be shared between goroutines.
type Model struct {
	HiddenWeights []float32 // HiddenSize x InputSize
	HiddenBias    []float32 // HiddenSize
	PolicyWeights []float32 // ActionSpace x HiddenSize
	PolicyBias    []float32 // ActionSpace
	ValueWeights  []float32 // HiddenSize
	ValueBias     float32
}

// NewModel returns a model with zero weights; load weights or call
// InitRandom before use.
func NewModel() *Model {
	return &Model{
		HiddenWeights: make([]float32, HiddenSize*InputSize),
		HiddenBias:    make([]float32, HiddenSize),
		PolicyWeights: make([]float32, policy.ActionSpace*HiddenSize),
		PolicyBias:    make([]float32, policy.ActionSpace),
		ValueWeights:  make([]float32, HiddenSize),
	}
}

// InitRandom fills the weights with small Gaussian values scaled by fan-in.
func (m *Model) InitRandom(seed uint64) {
	rng := rand.New(rand.NewSource(seed))
	fill := func(w []float32, fanIn int) {
		scale := 1 / math.Sqrt(float64(fanIn))
		for i := range w {
			w[i] = float32(rng.NormFloat64() * scale)
		}
	}
	fill(m.HiddenWeights, InputSize)
	fill(m.PolicyWeights, HiddenSize)
	fill(m.ValueWeights, HiddenSize)
	for i := range m.HiddenBias {
		m.HiddenBias[i] = 0
	}
	for i := range m.PolicyBias {
		m.PolicyBias[i] = 0
	}
	m.ValueBias = 0
}

// Evaluate runs a forward pass over the tensor built from history.
func (m *Model) Evaluate(history []Planes, stm board.Color) (Prediction, error) {
	if len(history) == 0 {
		return Prediction{}, fmt.Errorf("evaluate: empty history")
	}
	return m.Forward(Tensor(history, stm)), nil
}

// Forward computes the prediction for one flattened input.
func (m *Model) Forward(input []float32) Prediction {
	// The input is sparse and binary, so accumulate only the active columns.
	active := make([]int, 0, 64)
	for i, v := range input {
		if v != 0 {
			active = append(active, i)
		}
	}

	hidden := make([]float32, HiddenSize)
	for h := 0; h < HiddenSize; h++ {
		row := m.HiddenWeights[h*InputSize : (h+1)*InputSize]
		sum := m.HiddenBias[h]
		for _, i := range active {
			sum += row[i] * input[i]
		}
		if sum > 0 {
			hidden[h] = sum
		}
	}

	logits := make([]float32, policy.ActionSpace)
	maxLogit := float32(math.Inf(-1))
	for a := range logits {
		row := m.PolicyWeights[a*HiddenSize : (a+1)*HiddenSize]
		sum := m.PolicyBias[a]
		for h, x := range hidden {
			sum += row[h] * x
		}
		logits[a] = sum
		if sum > maxLogit {
			maxLogit = sum
		}
	}
	var total float64
	for a, l := range logits {
		e := math.Exp(float64(l - maxLogit))
		logits[a] = float32(e)
		total += e
	}
	for a := range logits {
		logits[a] = float32(float64(logits[a]) / total)
	}

	v := m.ValueBias
	for h, x := range hidden {
		v += m.ValueWeights[h] * x
	}

	return Prediction{Policy: logits, Value: float32(math.Tanh(float64(v)))}
}
