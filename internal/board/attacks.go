package board

var (
	knightAttacks [64]Bitboard
	kingAttacks   [64]Bitboard
	pawnAttacks   [2][64]Bitboard
)

func init() {
	for sq := A1; sq <= H8; sq++ {
		bb := SquareBB(sq)

		kingAttacks[sq] = bb.North() | bb.South() | bb.East() | bb.West() |
			bb.NorthEast() | bb.NorthWest() | bb.SouthEast() | bb.SouthWest()

		n, s := bb.North(), bb.South()
		knightAttacks[sq] = n.North().East() | n.North().West() |
			s.South().East() | s.South().West() |
			n.East().East() | n.West().West() |
			s.East().East() | s.West().West()

		pawnAttacks[White][sq] = bb.NorthEast() | bb.NorthWest()
		pawnAttacks[Black][sq] = bb.SouthEast() | bb.SouthWest()
	}
	initMagics()
}

// KnightAttacks returns the squares a knight on sq attacks.
func KnightAttacks(sq Square) Bitboard {
	return knightAttacks[sq]
}

// KingAttacks returns the squares adjacent to sq.
func KingAttacks(sq Square) Bitboard {
	return kingAttacks[sq]
}

// PawnAttacks returns the squares a pawn of colour c on sq captures on.
func PawnAttacks(sq Square, c Color) Bitboard {
	return pawnAttacks[c][sq]
}

// BishopAttacks returns diagonal attacks from sq given the blockers in occupied.
func BishopAttacks(sq Square, occupied Bitboard) Bitboard {
	m := &bishopMagics[sq]
	return m.table[m.index(occupied)]
}

// RookAttacks returns orthogonal attacks from sq given the blockers in occupied.
func RookAttacks(sq Square, occupied Bitboard) Bitboard {
	m := &rookMagics[sq]
	return m.table[m.index(occupied)]
}

// QueenAttacks is the union of bishop and rook attacks.
func QueenAttacks(sq Square, occupied Bitboard) Bitboard {
	return BishopAttacks(sq, occupied) | RookAttacks(sq, occupied)
}

// AttackersByColor returns the pieces of colour c that attack sq, with
// sliders blocked by occupied.
func (p *Position) AttackersByColor(sq Square, c Color, occupied Bitboard) Bitboard {
	queens := p.Pieces[c][Queen]
	return (pawnAttacks[c.Other()][sq] & p.Pieces[c][Pawn]) |
		(knightAttacks[sq] & p.Pieces[c][Knight]) |
		(kingAttacks[sq] & p.Pieces[c][King]) |
		(BishopAttacks(sq, occupied) & (p.Pieces[c][Bishop] | queens)) |
		(RookAttacks(sq, occupied) & (p.Pieces[c][Rook] | queens))
}

// IsSquareAttacked reports whether any piece of byColor attacks sq.
func (p *Position) IsSquareAttacked(sq Square, byColor Color) bool {
	return p.AttackersByColor(sq, byColor, p.AllOccupied) != 0
}

// IsInCheck reports whether c's king is attacked. A side without a king is
// never in check.
func (p *Position) IsInCheck(c Color) bool {
	king := p.Pieces[c][King]
	if king == 0 {
		return false
	}
	return p.IsSquareAttacked(king.LSB(), c.Other())
}

// InCheck reports whether the side to move is in check.
func (p *Position) InCheck() bool {
	return p.IsInCheck(p.SideToMove)
}
