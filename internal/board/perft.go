package board

// Perft counts the leaf nodes of the legal move tree to depth. It works on
// a private copy, so concurrent calls on the same position are safe.
func Perft(pos *Position, depth int) uint64 {
	scratch := *pos
	return perft(&scratch, depth)
}

func perft(pos *Position, depth int) uint64 {
	if depth == 0 {
		return 1
	}
	moves := pos.GenerateLegalMoves()
	if depth == 1 {
		return uint64(moves.Len())
	}
	var nodes uint64
	for _, m := range moves.Slice() {
		undo := pos.MakeMove(m)
		nodes += perft(pos, depth-1)
		pos.UnmakeMove(m, undo)
	}
	return nodes
}

// PerftEntry is the subtree count below one root move.
type PerftEntry struct {
	Move  Move
	Nodes uint64
}

// PerftDivide returns Perft(depth-1) for each legal root move, in move order.
func PerftDivide(pos *Position, depth int) []PerftEntry {
	if depth < 1 {
		return nil
	}
	scratch := *pos
	moves := scratch.GenerateLegalMoves()
	out := make([]PerftEntry, 0, moves.Len())
	for _, m := range moves.Slice() {
		undo := scratch.MakeMove(m)
		out = append(out, PerftEntry{Move: m, Nodes: perft(&scratch, depth-1)})
		scratch.UnmakeMove(m, undo)
	}
	return out
}
