package board

// Status classifies a position as ongoing or as one of the game-ending
// conditions.
type Status uint8

const (
	Ongoing Status = iota
	Checkmate
	Stalemate
	FiftyMoveRule
	InsufficientMaterial
)

func (s Status) String() string {
	switch s {
	case Ongoing:
		return "ongoing"
	case Checkmate:
		return "checkmate"
	case Stalemate:
		return "stalemate"
	case FiftyMoveRule:
		return "fifty-move rule"
	case InsufficientMaterial:
		return "insufficient material"
	default:
		return "unknown"
	}
}

// Status recomputes the game state from scratch. A side without legal
// moves is mated or stalemated before the draw rules are considered.
func (p *Position) Status() Status {
	if !p.HasLegalMoves() {
		if p.InCheck() {
			return Checkmate
		}
		return Stalemate
	}
	if p.HalfMoveClock >= 100 {
		return FiftyMoveRule
	}
	if p.HasInsufficientMaterial() {
		return InsufficientMaterial
	}
	return Ongoing
}

// IsTerminal reports whether the game is over in this position.
func (p *Position) IsTerminal() bool {
	return p.Status() != Ongoing
}

// Result returns the outcome from the side to move's point of view: -1 when
// mated, 0 for any draw. ok is false while the game is still going.
func (p *Position) Result() (value float64, ok bool) {
	switch p.Status() {
	case Ongoing:
		return 0, false
	case Checkmate:
		return -1, true
	default:
		return 0, true
	}
}

// HasInsufficientMaterial reports dead positions: bare kings, a single minor
// piece against a bare king, or one bishop each on squares of the same
// colour.
func (p *Position) HasInsufficientMaterial() bool {
	for c := White; c <= Black; c++ {
		if p.Pieces[c][Pawn]|p.Pieces[c][Rook]|p.Pieces[c][Queen] != 0 {
			return false
		}
	}

	wn, wb := p.Pieces[White][Knight].PopCount(), p.Pieces[White][Bishop].PopCount()
	bn, bb := p.Pieces[Black][Knight].PopCount(), p.Pieces[Black][Bishop].PopCount()
	white, black := wn+wb, bn+bb

	switch {
	case white == 0 && black == 0:
		return true
	case white == 1 && black == 0, white == 0 && black == 1:
		return true
	case wb == 1 && bb == 1 && wn == 0 && bn == 0:
		light := p.Pieces[White][Bishop]&LightSquares != 0
		return light == (p.Pieces[Black][Bishop]&LightSquares != 0)
	}
	return false
}
