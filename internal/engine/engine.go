// Package engine implements the PUCT tree search and the caller-facing
// engine API on top of the board and network packages.
package engine

import (
	"github.com/hailam/chesszero/internal/board"
	"github.com/hailam/chesszero/internal/network"
)

// Engine couples an evaluator with default search settings. The evaluator
// is injected; the engine never chooses one itself.
type Engine struct {
	evaluator network.Evaluator
	Options   SearchOptions

	// OnInfo, if set, receives progress reports during Search.
	OnInfo func(SearchInfo)
}

// NewEngine returns an engine using ev and DefaultSearchOptions.
func NewEngine(ev network.Evaluator) *Engine {
	return &Engine{evaluator: ev, Options: DefaultSearchOptions()}
}

// SetEvaluator swaps the evaluator, for example after loading a model.
func (e *Engine) SetEvaluator(ev network.Evaluator) {
	e.evaluator = ev
}

// Evaluator returns the current evaluator.
func (e *Engine) Evaluator() network.Evaluator {
	return e.evaluator
}

// NewPositionFromRecord parses a FEN record.
func NewPositionFromRecord(record string) (*board.Position, error) {
	return board.ParseFEN(record)
}

// LegalMoves returns the legal moves of pos in generation order.
func LegalMoves(pos *board.Position) []board.Move {
	return pos.LegalMoves()
}

// Apply returns the position after m, or *board.IllegalMoveError.
func Apply(pos *board.Position, m board.Move) (*board.Position, error) {
	return pos.Apply(m)
}

// Perft counts leaf nodes of the legal move tree.
func Perft(pos *board.Position, depth int) uint64 {
	return board.Perft(pos, depth)
}

// SearchBestMove runs numSimulations simulations with exploration constant
// cPuct and optional root noise, and returns the most visited move. It
// returns board.NoMove and a nil error when pos is terminal.
func (e *Engine) SearchBestMove(pos *board.Position, numSimulations int, cPuct float64, dirichlet *DirichletParams) (board.Move, error) {
	opts := e.Options
	opts.Simulations = numSimulations
	opts.CPuct = cPuct
	opts.Dirichlet = dirichlet
	res, err := e.Search(pos, nil, opts)
	if err != nil {
		return board.NoMove, err
	}
	return res.Move, nil
}

// Search runs a full search with explicit options and game history.
func (e *Engine) Search(pos *board.Position, history []network.Planes, opts SearchOptions) (*SearchResult, error) {
	return search(e.evaluator, pos, history, opts, e.OnInfo)
}
