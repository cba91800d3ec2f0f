package engine

import (
	"fmt"
	"math"
	"time"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distmv"

	"github.com/hailam/chesszero/internal/board"
	"github.com/hailam/chesszero/internal/network"
	"github.com/hailam/chesszero/internal/policy"
)

// MoveStats summarises one root child after a search.
type MoveStats struct {
	Move   board.Move
	Visits int
	Prior  float32 // after noise
	Q      float64 // mean value from the root side to move
}

// SearchResult is the outcome of one root decision.
type SearchResult struct {
	// Move is the most visited root move, NoMove when the root is terminal.
	Move   board.Move
	Status board.Status // status of the root position

	Children    []MoveStats // in move-generation order
	Simulations int
	RootValue   float64 // mean backed-up value from the root side to move

	// Policy is the root visit distribution over the action space, the
	// training target for the policy head.
	Policy []float32

	Tree *Tree
}

// searcher runs the simulations of a single decision. It is not safe for
// concurrent use; the evaluator is called synchronously.
type searcher struct {
	tree      *Tree
	evaluator network.Evaluator
	history   []network.Planes // positions before the root, oldest first
	opts      SearchOptions
}

// Search runs opts.Simulations PUCT simulations from root. history holds
// the encodings of the positions that preceded root in the game, oldest
// first, and may be nil.
func Search(ev network.Evaluator, root *board.Position, history []network.Planes, opts SearchOptions) (*SearchResult, error) {
	return search(ev, root, history, opts, nil)
}

func search(ev network.Evaluator, root *board.Position, history []network.Planes, opts SearchOptions, onInfo func(SearchInfo)) (*SearchResult, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	s := &searcher{
		tree:      NewTree(root),
		evaluator: ev,
		history:   history,
		opts:      opts,
	}

	if status := root.Status(); status != board.Ongoing {
		value, _ := root.Result()
		return &SearchResult{
			Move:      board.NoMove,
			Status:    status,
			RootValue: value,
			Policy:    make([]float32, policy.ActionSpace),
			Tree:      s.tree,
		}, nil
	}

	// Expanding the root up front means every simulation lands in exactly
	// one root child.
	value, err := s.evaluateAndExpand(0)
	if err != nil {
		return nil, err
	}
	s.tree.backpropagate(0, value)

	if d := opts.Dirichlet; d != nil && d.Epsilon > 0 {
		s.addNoise(d, rand.NewSource(opts.Seed))
	}

	start := time.Now()
	for sim := 1; sim <= opts.Simulations; sim++ {
		if err := s.simulate(); err != nil {
			return nil, err
		}
		if onInfo != nil && (sim%100 == 0 || sim == opts.Simulations) {
			onInfo(s.info(sim, time.Since(start)))
		}
	}

	return s.result(), nil
}

// simulate performs one selection, expansion/evaluation and backup pass.
func (s *searcher) simulate() error {
	id := NodeID(0)
	for s.tree.Node(id).Expanded() {
		id = s.tree.selectChild(id, s.opts.CPuct)
	}

	node := s.tree.Node(id)
	if value, terminal := node.Position.Result(); terminal {
		s.tree.backpropagate(id, value)
		return nil
	}

	value, err := s.evaluateAndExpand(id)
	if err != nil {
		return err
	}
	s.tree.backpropagate(id, value)
	return nil
}

// evaluateAndExpand calls the evaluator on a non-terminal leaf, creates its
// children and returns the leaf value from its side to move.
func (s *searcher) evaluateAndExpand(id NodeID) (float64, error) {
	pos := &s.tree.Node(id).Position
	pred, err := s.evaluator.Evaluate(s.historyFor(id), pos.SideToMove)
	if err != nil {
		return 0, &EvaluationError{Err: err}
	}
	if err := checkPrediction(pred); err != nil {
		return 0, &EvaluationError{Err: err}
	}

	moves := pos.LegalMoves()
	priors := make([]float32, len(moves))
	var sum float32
	for i, m := range moves {
		p := s.opts.FallbackPrior
		if idx := policy.MoveToIndex(m); idx >= 0 {
			p = pred.Policy[idx]
		}
		priors[i] = p
		sum += p
	}
	for i := range priors {
		if sum > 0 {
			priors[i] /= sum
		} else {
			priors[i] = 1 / float32(len(priors))
		}
	}

	s.tree.expand(id, moves, priors)
	return float64(pred.Value), nil
}

func checkPrediction(p network.Prediction) error {
	if len(p.Policy) != policy.ActionSpace {
		return fmt.Errorf("policy has %d entries, want %d", len(p.Policy), policy.ActionSpace)
	}
	v := float64(p.Value)
	if math.IsNaN(v) || v < -1 || v > 1 {
		return fmt.Errorf("value %v outside [-1, 1]", p.Value)
	}
	for i, x := range p.Policy {
		if math.IsNaN(float64(x)) || math.IsInf(float64(x), 0) || x < 0 {
			return fmt.Errorf("policy entry %d is %v", i, x)
		}
	}
	return nil
}

// historyFor returns up to HistoryLength encodings ending at id, oldest
// first, continuing into the game history above the root.
func (s *searcher) historyFor(id NodeID) []network.Planes {
	rev := make([]network.Planes, 0, network.HistoryLength)
	for n := id; n != NoNode && len(rev) < network.HistoryLength; n = s.tree.Node(n).Parent {
		rev = append(rev, network.Encode(&s.tree.Node(n).Position))
	}
	for i := len(s.history) - 1; i >= 0 && len(rev) < network.HistoryLength; i-- {
		rev = append(rev, s.history[i])
	}
	for i, j := 0, len(rev)-1; i < j; i, j = i+1, j-1 {
		rev[i], rev[j] = rev[j], rev[i]
	}
	return rev
}

// addNoise mixes Dirichlet noise into the root priors.
func (s *searcher) addNoise(d *DirichletParams, src rand.Source) {
	children := s.tree.Children(0)
	if len(children) < 2 {
		return
	}
	alpha := make([]float64, len(children))
	for i := range alpha {
		alpha[i] = d.Alpha
	}
	noise := distmv.NewDirichlet(alpha, src).Rand(nil)
	for i, id := range children {
		c := s.tree.Node(id)
		c.Prior = float32((1-d.Epsilon)*float64(c.Prior) + d.Epsilon*noise[i])
	}
}

func (s *searcher) result() *SearchResult {
	root := s.tree.Root()
	res := &SearchResult{
		Move:        board.NoMove,
		Status:      board.Ongoing,
		Simulations: s.opts.Simulations,
		RootValue:   root.Q(),
		Policy:      make([]float32, policy.ActionSpace),
		Tree:        s.tree,
	}

	total := 0
	bestVisits := -1
	for _, id := range s.tree.Children(0) {
		c := s.tree.Node(id)
		res.Children = append(res.Children, MoveStats{
			Move:   c.Move,
			Visits: c.Visits,
			Prior:  c.Prior,
			Q:      -c.Q(),
		})
		total += c.Visits
		if c.Visits > bestVisits {
			bestVisits = c.Visits
			res.Move = c.Move
		}
	}
	if total > 0 {
		for _, c := range res.Children {
			if idx := policy.MoveToIndex(c.Move); idx >= 0 {
				res.Policy[idx] = float32(c.Visits) / float32(total)
			}
		}
	}
	return res
}

// SearchInfo is a progress report from a running search.
type SearchInfo struct {
	Simulations int
	Nodes       int
	RootValue   float64
	BestMove    board.Move
	BestVisits  int
	Time        time.Duration
}

func (s *searcher) info(sims int, elapsed time.Duration) SearchInfo {
	info := SearchInfo{
		Simulations: sims,
		Nodes:       s.tree.Len(),
		RootValue:   s.tree.Root().Q(),
		Time:        elapsed,
	}
	for _, id := range s.tree.Children(0) {
		if c := s.tree.Node(id); c.Visits > info.BestVisits {
			info.BestVisits = c.Visits
			info.BestMove = c.Move
		}
	}
	return info
}
