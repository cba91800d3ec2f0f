package board

import (
	"fmt"
	"slices"
)

// GenerateLegalMoves returns every legal move for the side to move, sorted
// by origin, destination and flag.
func (p *Position) GenerateLegalMoves() *MoveList {
	var pseudo MoveList
	p.generatePseudoLegal(&pseudo)

	legal := &MoveList{}
	us := p.SideToMove
	for _, m := range pseudo.Slice() {
		if p.leavesKingSafe(m, us) {
			legal.Add(m)
		}
	}
	slices.Sort(legal.Slice())
	return legal
}

// LegalMoves is GenerateLegalMoves as a slice.
func (p *Position) LegalMoves() []Move {
	ml := p.GenerateLegalMoves()
	return append([]Move(nil), ml.Slice()...)
}

// HasLegalMoves reports whether the side to move has any legal move.
func (p *Position) HasLegalMoves() bool {
	var pseudo MoveList
	p.generatePseudoLegal(&pseudo)
	for _, m := range pseudo.Slice() {
		if p.leavesKingSafe(m, p.SideToMove) {
			return true
		}
	}
	return false
}

// leavesKingSafe plays m on a scratch copy and reports whether the mover's
// king is then unattacked.
func (p *Position) leavesKingSafe(m Move, us Color) bool {
	scratch := *p
	scratch.MakeMove(m)
	return !scratch.IsInCheck(us)
}

func (p *Position) generatePseudoLegal(ml *MoveList) {
	us := p.SideToMove
	own := p.Occupied[us]
	enemies := p.Occupied[us.Other()]
	occupied := p.AllOccupied

	p.generatePawnMoves(ml, us, enemies, occupied)

	for pt := Knight; pt <= King; pt++ {
		pieces := p.Pieces[us][pt]
		for pieces != 0 {
			from := pieces.PopLSB()
			var targets Bitboard
			switch pt {
			case Knight:
				targets = KnightAttacks(from)
			case Bishop:
				targets = BishopAttacks(from, occupied)
			case Rook:
				targets = RookAttacks(from, occupied)
			case Queen:
				targets = QueenAttacks(from, occupied)
			case King:
				targets = KingAttacks(from)
			}
			addTargets(ml, from, targets&^own, enemies)
		}
	}

	p.generateCastlingMoves(ml, us)
}

func addTargets(ml *MoveList, from Square, targets, enemies Bitboard) {
	for targets != 0 {
		to := targets.PopLSB()
		if enemies.IsSet(to) {
			ml.Add(NewMove(from, to, FlagCapture))
		} else {
			ml.Add(NewMove(from, to, FlagQuiet))
		}
	}
}

func (p *Position) generatePawnMoves(ml *MoveList, us Color, enemies, occupied Bitboard) {
	pawns := p.Pieces[us][Pawn]
	empty := ^occupied

	var push1, push2, attackW, attackE, lastRank Bitboard
	var forward int
	if us == White {
		push1 = pawns.North() & empty
		push2 = (push1 & (Rank2 << 8)).North() & empty
		attackW = pawns.NorthWest() & enemies
		attackE = pawns.NorthEast() & enemies
		lastRank = Rank8
		forward = 8
	} else {
		push1 = pawns.South() & empty
		push2 = (push1 & (Rank7 >> 8)).South() & empty
		attackW = pawns.SouthWest() & enemies
		attackE = pawns.SouthEast() & enemies
		lastRank = Rank1
		forward = -8
	}

	for push1 != 0 {
		to := push1.PopLSB()
		from := Square(int(to) - forward)
		if lastRank.IsSet(to) {
			addPromotions(ml, from, to, false)
		} else {
			ml.Add(NewMove(from, to, FlagQuiet))
		}
	}
	for push2 != 0 {
		to := push2.PopLSB()
		ml.Add(NewMove(Square(int(to)-2*forward), to, FlagDoublePush))
	}
	for _, side := range [2]struct {
		targets Bitboard
		delta   int
	}{{attackW, forward - 1}, {attackE, forward + 1}} {
		targets := side.targets
		for targets != 0 {
			to := targets.PopLSB()
			from := Square(int(to) - side.delta)
			if lastRank.IsSet(to) {
				addPromotions(ml, from, to, true)
			} else {
				ml.Add(NewMove(from, to, FlagCapture))
			}
		}
	}

	if p.EnPassant != NoSquare {
		victim := Square(int(p.EnPassant) - forward)
		if p.Pieces[us.Other()][Pawn].IsSet(victim) && p.IsEmpty(p.EnPassant) {
			attackers := PawnAttacks(p.EnPassant, us.Other()) & pawns
			for attackers != 0 {
				ml.Add(NewMove(attackers.PopLSB(), p.EnPassant, FlagEnPassant))
			}
		}
	}
}

func addPromotions(ml *MoveList, from, to Square, capture bool) {
	for pt := Knight; pt <= Queen; pt++ {
		ml.Add(NewPromotion(from, to, pt, capture))
	}
}

// castlingPath describes one castling move: the right it needs, the squares
// that must be empty and the squares the king stands on or crosses.
type castlingPath struct {
	right      CastlingRights
	king, rook Square
	kingTo     Square
	flag       MoveFlag
	empty      Bitboard
	safe       [3]Square
}

var castlingPaths = [2][2]castlingPath{
	White: {
		{WhiteKingSideCastle, E1, H1, G1, FlagKingCastle, SquareBB(F1) | SquareBB(G1), [3]Square{E1, F1, G1}},
		{WhiteQueenSideCastle, E1, A1, C1, FlagQueenCastle, SquareBB(B1) | SquareBB(C1) | SquareBB(D1), [3]Square{E1, D1, C1}},
	},
	Black: {
		{BlackKingSideCastle, E8, H8, G8, FlagKingCastle, SquareBB(F8) | SquareBB(G8), [3]Square{E8, F8, G8}},
		{BlackQueenSideCastle, E8, A8, C8, FlagQueenCastle, SquareBB(B8) | SquareBB(C8) | SquareBB(D8), [3]Square{E8, D8, C8}},
	},
}

func (p *Position) generateCastlingMoves(ml *MoveList, us Color) {
	them := us.Other()
	for _, c := range castlingPaths[us] {
		if p.CastlingRights&c.right == 0 ||
			!p.Pieces[us][King].IsSet(c.king) ||
			!p.Pieces[us][Rook].IsSet(c.rook) ||
			p.AllOccupied&c.empty != 0 {
			continue
		}
		if p.IsSquareAttacked(c.safe[0], them) ||
			p.IsSquareAttacked(c.safe[1], them) ||
			p.IsSquareAttacked(c.safe[2], them) {
			continue
		}
		ml.Add(NewMove(c.king, c.kingTo, c.flag))
	}
}

// ParseMove resolves coordinate notation ("e2e4", "e7e8q") against the
// legal moves of the position.
func (p *Position) ParseMove(s string) (Move, error) {
	if len(s) != 4 && len(s) != 5 {
		return NoMove, fmt.Errorf("invalid move %q", s)
	}
	for _, m := range p.GenerateLegalMoves().Slice() {
		if m.String() == s {
			return m, nil
		}
	}
	return NoMove, fmt.Errorf("move %q is not legal in %s", s, p.ToFEN())
}
