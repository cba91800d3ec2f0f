// Package policy maps moves to indices of the fixed 8x8x73 action space used
// by the evaluator's policy output.
//
// Each origin square owns 73 planes:
//
//	0-55   queen-like moves, 8 directions x 7 distances
//	56-63  knight jumps
//	64-72  underpromotions to knight, bishop, rook x 3 file deltas
//
// The index of a move is from*73 + plane. Queen promotions use the
// queen-like planes. Boards are not mirrored for black.
package policy

import "github.com/hailam/chesszero/internal/board"

const (
	PlanesPerSquare = 73
	ActionSpace     = 64 * PlanesPerSquare // 4672

	queenPlanes      = 56
	knightPlaneStart = 56
	underPromoStart  = 64
)

// Compass directions as (rank delta, file delta), in plane order.
var directions = [8][2]int{
	{1, 0},   // N
	{1, 1},   // NE
	{0, 1},   // E
	{-1, 1},  // SE
	{-1, 0},  // S
	{-1, -1}, // SW
	{0, -1},  // W
	{1, -1},  // NW
}

// Knight jumps as (rank delta, file delta), in plane order.
var knightJumps = [8][2]int{
	{-2, -1}, {-2, 1}, {-1, -2}, {-1, 2},
	{1, -2}, {1, 2}, {2, -1}, {2, 1},
}

// MoveToIndex returns the action index of m, or -1 if its shape has no
// encoding (a non-move, or an underpromotion that does not advance one rank).
func MoveToIndex(m board.Move) int {
	plane := planeOf(m)
	if plane < 0 {
		return -1
	}
	return int(m.From())*PlanesPerSquare + plane
}

func planeOf(m board.Move) int {
	from, to := m.From(), m.To()
	dr := to.Rank() - from.Rank()
	df := to.File() - from.File()
	if dr == 0 && df == 0 {
		return -1
	}

	if promo := m.Promotion(); promo == board.Knight || promo == board.Bishop || promo == board.Rook {
		if abs(dr) != 1 || abs(df) > 1 {
			return -1
		}
		return underPromoStart + int(promo-board.Knight)*3 + (df + 1)
	}

	for i, j := range knightJumps {
		if dr == j[0] && df == j[1] {
			return knightPlaneStart + i
		}
	}

	if dr != 0 && df != 0 && abs(dr) != abs(df) {
		return -1
	}
	dist := max(abs(dr), abs(df))
	for i, d := range directions {
		if d[0] == sign(dr) && d[1] == sign(df) {
			return i*7 + dist - 1
		}
	}
	return -1
}

// Decoded is the geometry an action index describes.
type Decoded struct {
	From, To  board.Square
	Promotion board.PieceType // Knight, Bishop or Rook for underpromotions, else NoPieceType
}

// Decode inverts MoveToIndex as far as geometry goes. ok is false when the
// index is outside the action space or points off the board. Which move
// flag applies depends on a position; see MoveFromIndex.
func Decode(index int) (d Decoded, ok bool) {
	if index < 0 || index >= ActionSpace {
		return Decoded{}, false
	}
	from := board.Square(index / PlanesPerSquare)
	plane := index % PlanesPerSquare
	d = Decoded{From: from, Promotion: board.NoPieceType}

	var dr, df int
	switch {
	case plane < queenPlanes:
		dir := directions[plane/7]
		dist := plane%7 + 1
		dr, df = dir[0]*dist, dir[1]*dist
	case plane < underPromoStart:
		j := knightJumps[plane-knightPlaneStart]
		dr, df = j[0], j[1]
	default:
		p := plane - underPromoStart
		d.Promotion = board.Knight + board.PieceType(p/3)
		df = p%3 - 1
		// Underpromotions only happen from the seventh rank (white) or the
		// second rank (black).
		switch from.Rank() {
		case 6:
			dr = 1
		case 1:
			dr = -1
		default:
			return Decoded{}, false
		}
	}

	rank, file := from.Rank()+dr, from.File()+df
	if rank < 0 || rank > 7 || file < 0 || file > 7 {
		return Decoded{}, false
	}
	d.To = board.NewSquare(file, rank)
	return d, true
}

// MoveFromIndex returns the legal move of pos whose index is index.
func MoveFromIndex(pos *board.Position, index int) (board.Move, bool) {
	if index < 0 || index >= ActionSpace {
		return board.NoMove, false
	}
	for _, m := range pos.GenerateLegalMoves().Slice() {
		if MoveToIndex(m) == index {
			return m, true
		}
	}
	return board.NoMove, false
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func sign(x int) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}
