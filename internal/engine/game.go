package engine

import (
	"github.com/hailam/chesszero/internal/board"
	"github.com/hailam/chesszero/internal/network"
)

// Game is one session: a start position plus the moves played since. Every
// caller holds its own Game; there is no shared current board.
type Game struct {
	ID       string
	StartFEN string

	moves     []board.Move
	positions []board.Position // positions[i] is the position before moves[i]
}

// NewGame starts a session from a FEN record; an empty record means the
// standard start.
func NewGame(id, fen string) (*Game, error) {
	if fen == "" {
		fen = board.StartFEN
	}
	pos, err := board.ParseFEN(fen)
	if err != nil {
		return nil, err
	}
	return &Game{ID: id, StartFEN: fen, positions: []board.Position{*pos}}, nil
}

// Position returns a copy of the current position.
func (g *Game) Position() *board.Position {
	pos := g.positions[len(g.positions)-1]
	return &pos
}

// Moves returns the moves played so far.
func (g *Game) Moves() []board.Move {
	return append([]board.Move(nil), g.moves...)
}

// Ply is the number of moves played in this session.
func (g *Game) Ply() int {
	return len(g.moves)
}

// Apply plays m, failing with *board.IllegalMoveError if it is not legal.
func (g *Game) Apply(m board.Move) error {
	next, err := g.Position().Apply(m)
	if err != nil {
		return err
	}
	g.moves = append(g.moves, m)
	g.positions = append(g.positions, *next)
	return nil
}

// ApplyUCI plays a move given in coordinate notation.
func (g *Game) ApplyUCI(s string) error {
	m, err := g.Position().ParseMove(s)
	if err != nil {
		return err
	}
	return g.Apply(m)
}

// Undo takes back the last move. It reports false at the start position.
func (g *Game) Undo() bool {
	if len(g.moves) == 0 {
		return false
	}
	g.moves = g.moves[:len(g.moves)-1]
	g.positions = g.positions[:len(g.positions)-1]
	return true
}

// History returns the encodings of the positions before the current one,
// oldest first, as Search expects.
func (g *Game) History() []network.Planes {
	out := make([]network.Planes, 0, len(g.positions)-1)
	for i := 0; i < len(g.positions)-1; i++ {
		out = append(out, network.Encode(&g.positions[i]))
	}
	return out
}

// Status is the status of the current position.
func (g *Game) Status() board.Status {
	return g.Position().Status()
}

// Winner returns the side that delivered mate, or NoColor.
func (g *Game) Winner() board.Color {
	pos := g.Position()
	if pos.Status() == board.Checkmate {
		return pos.SideToMove.Other()
	}
	return board.NoColor
}

// Search runs the engine from the current position with this game's history.
func (g *Game) Search(e *Engine, opts SearchOptions) (*SearchResult, error) {
	return e.Search(g.Position(), g.History(), opts)
}
