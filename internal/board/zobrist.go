package board

// Zobrist keys. The generator is seeded with a constant so hashes are stable
// across processes and can be stored.
var (
	zobristPiece      [12][64]uint64
	zobristEnPassant  [8]uint64
	zobristCastling   [16]uint64
	zobristSideToMove uint64
)

func init() {
	rng := magicRand(0x98F107A2BEEF1234)
	for p := WhitePawn; p < NoPiece; p++ {
		for sq := A1; sq <= H8; sq++ {
			zobristPiece[p][sq] = rng.next()
		}
	}
	for f := range zobristEnPassant {
		zobristEnPassant[f] = rng.next()
	}
	for i := range zobristCastling {
		zobristCastling[i] = rng.next()
	}
	zobristSideToMove = rng.next()
}

// ComputeHash recomputes the Zobrist hash from scratch. MakeMove keeps
// Position.Hash equal to this value incrementally.
func (p *Position) ComputeHash() uint64 {
	var h uint64
	for c := White; c <= Black; c++ {
		for pt := Pawn; pt <= King; pt++ {
			bb := p.Pieces[c][pt]
			piece := NewPiece(pt, c)
			for bb != 0 {
				h ^= zobristPiece[piece][bb.PopLSB()]
			}
		}
	}
	if p.EnPassant != NoSquare {
		h ^= zobristEnPassant[p.EnPassant.File()]
	}
	h ^= zobristCastling[p.CastlingRights]
	if p.SideToMove == Black {
		h ^= zobristSideToMove
	}
	return h
}
