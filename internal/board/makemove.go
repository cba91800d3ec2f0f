package board

// castlingClear[sq] holds the rights lost when a move starts or ends on sq.
var castlingClear [64]CastlingRights

func init() {
	castlingClear[E1] = WhiteKingSideCastle | WhiteQueenSideCastle
	castlingClear[H1] = WhiteKingSideCastle
	castlingClear[A1] = WhiteQueenSideCastle
	castlingClear[E8] = BlackKingSideCastle | BlackQueenSideCastle
	castlingClear[H8] = BlackKingSideCastle
	castlingClear[A8] = BlackQueenSideCastle
}

// castleRookSquares returns the rook's origin and destination for a castling
// move by the king to kingTo.
func castleRookSquares(kingTo Square) (Square, Square) {
	switch kingTo {
	case G1:
		return H1, F1
	case C1:
		return A1, D1
	case G8:
		return H8, F8
	default:
		return A8, D8
	}
}

// MakeMove plays m in place and returns what UnmakeMove needs to restore
// the exact prior state. m must be at least pseudo-legal for the side to
// move; use Apply for unchecked input.
func (p *Position) MakeMove(m Move) UndoInfo {
	undo := UndoInfo{
		Captured:       NoPiece,
		CastlingRights: p.CastlingRights,
		EnPassant:      p.EnPassant,
		HalfMoveClock:  p.HalfMoveClock,
		FullMoveNumber: p.FullMoveNumber,
		Hash:           p.Hash,
	}

	us := p.SideToMove
	from, to := m.From(), m.To()
	moved := p.PieceAt(from)

	p.Hash ^= zobristCastling[p.CastlingRights]
	if p.EnPassant != NoSquare {
		p.Hash ^= zobristEnPassant[p.EnPassant.File()]
	}
	p.EnPassant = NoSquare

	if m.IsEnPassant() {
		undo.Captured = p.removePiece(epVictim(to, us))
	} else {
		undo.Captured = p.removePiece(to)
	}

	p.movePiece(from, to)

	if m.IsPromotion() {
		p.removePiece(to)
		p.putPiece(to, NewPiece(m.Promotion(), us))
	}
	if m.IsCastle() {
		rookFrom, rookTo := castleRookSquares(to)
		p.movePiece(rookFrom, rookTo)
	}

	p.CastlingRights &^= castlingClear[from] | castlingClear[to]
	p.Hash ^= zobristCastling[p.CastlingRights]

	if m.IsDoublePush() {
		p.EnPassant = Square((int(from) + int(to)) / 2)
		p.Hash ^= zobristEnPassant[p.EnPassant.File()]
	}

	if moved.Type() == Pawn || undo.Captured != NoPiece {
		p.HalfMoveClock = 0
	} else {
		p.HalfMoveClock++
	}
	if us == Black {
		p.FullMoveNumber++
	}

	p.SideToMove = us.Other()
	p.Hash ^= zobristSideToMove
	return undo
}

// UnmakeMove reverses MakeMove(m) given the UndoInfo it returned.
func (p *Position) UnmakeMove(m Move, undo UndoInfo) {
	p.SideToMove = p.SideToMove.Other()
	us := p.SideToMove
	from, to := m.From(), m.To()

	if m.IsCastle() {
		rookFrom, rookTo := castleRookSquares(to)
		p.movePiece(rookTo, rookFrom)
	}
	if m.IsPromotion() {
		p.removePiece(to)
		p.putPiece(to, NewPiece(Pawn, us))
	}
	p.movePiece(to, from)

	if undo.Captured != NoPiece {
		if m.IsEnPassant() {
			p.putPiece(epVictim(to, us), undo.Captured)
		} else {
			p.putPiece(to, undo.Captured)
		}
	}

	p.CastlingRights = undo.CastlingRights
	p.EnPassant = undo.EnPassant
	p.HalfMoveClock = undo.HalfMoveClock
	p.FullMoveNumber = undo.FullMoveNumber
	p.Hash = undo.Hash
}

// epVictim is the square of the pawn taken by an en passant capture landing
// on to.
func epVictim(to Square, us Color) Square {
	if us == White {
		return to - 8
	}
	return to + 8
}

// Apply returns the position after m, leaving p untouched. It fails with
// *IllegalMoveError unless m is one of p's legal moves.
func (p *Position) Apply(m Move) (*Position, error) {
	if !p.GenerateLegalMoves().Contains(m) {
		return nil, &IllegalMoveError{Move: m, FEN: p.ToFEN()}
	}
	next := *p
	next.MakeMove(m)
	return &next, nil
}
