package board

import (
	"strconv"
	"strings"
)

// StartFEN is the standard starting position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// ParseFEN parses a position record. The clock fields are optional and
// default to 0 and 1. Any failure is a *ParseError and no position is
// returned.
func ParseFEN(fen string) (*Position, error) {
	parts := strings.Fields(fen)
	if len(parts) < 4 {
		return nil, &ParseError{Field: FieldPiecePlacement, Value: fen, Reason: "need at least 4 fields"}
	}
	if len(parts) > 6 {
		return nil, &ParseError{Field: FieldClocks, Value: strings.Join(parts[6:], " "), Reason: "unexpected trailing fields"}
	}

	pos := &Position{EnPassant: NoSquare, FullMoveNumber: 1}

	if err := parsePiecePlacement(pos, parts[0]); err != nil {
		return nil, err
	}

	switch parts[1] {
	case "w":
		pos.SideToMove = White
	case "b":
		pos.SideToMove = Black
	default:
		return nil, &ParseError{Field: FieldSideToMove, Value: parts[1], Reason: "expected w or b"}
	}

	if err := parseCastlingRights(pos, parts[2]); err != nil {
		return nil, err
	}

	if parts[3] != "-" {
		sq, err := ParseSquare(parts[3])
		if err != nil {
			return nil, &ParseError{Field: FieldEnPassant, Value: parts[3], Reason: "not a square"}
		}
		wantRank := 5
		if pos.SideToMove == Black {
			wantRank = 2
		}
		if sq.Rank() != wantRank {
			return nil, &ParseError{Field: FieldEnPassant, Value: parts[3], Reason: "target not on the square passed over by a double push"}
		}
		pos.EnPassant = sq
	}

	if len(parts) > 4 {
		hmc, err := strconv.Atoi(parts[4])
		if err != nil || hmc < 0 {
			return nil, &ParseError{Field: FieldClocks, Value: parts[4], Reason: "half-move clock must be a non-negative integer"}
		}
		pos.HalfMoveClock = hmc
	}
	if len(parts) > 5 {
		fmn, err := strconv.Atoi(parts[5])
		if err != nil || fmn < 1 {
			return nil, &ParseError{Field: FieldClocks, Value: parts[5], Reason: "full-move number must be a positive integer"}
		}
		pos.FullMoveNumber = fmn
	}

	if err := pos.Validate(); err != nil {
		return nil, &ParseError{Field: FieldPiecePlacement, Value: parts[0], Reason: err.Error()}
	}

	pos.Hash = pos.ComputeHash()
	return pos, nil
}

func parsePiecePlacement(pos *Position, placement string) error {
	ranks := strings.Split(placement, "/")
	if len(ranks) != 8 {
		return &ParseError{Field: FieldPiecePlacement, Value: placement, Reason: "need 8 ranks"}
	}

	for i, rankStr := range ranks {
		rank := 7 - i
		file := 0
		for j := 0; j < len(rankStr); j++ {
			c := rankStr[j]
			if c >= '1' && c <= '8' {
				file += int(c - '0')
			} else {
				piece := PieceFromChar(c)
				if piece == NoPiece {
					return &ParseError{Field: FieldPiecePlacement, Value: placement, Reason: "unknown piece " + strconv.QuoteRune(rune(c))}
				}
				if file < 8 {
					pos.putPiece(NewSquare(file, rank), piece)
				}
				file++
			}
			if file > 8 {
				break
			}
		}
		if file != 8 {
			return &ParseError{Field: FieldPiecePlacement, Value: placement, Reason: "rank " + strconv.Itoa(rank+1) + " does not have 8 squares"}
		}
	}
	return nil
}

func parseCastlingRights(pos *Position, castling string) error {
	if castling == "-" {
		return nil
	}
	for _, c := range castling {
		i := strings.IndexRune("KQkq", c)
		if i < 0 {
			return &ParseError{Field: FieldCastling, Value: castling, Reason: "unknown right " + strconv.QuoteRune(c)}
		}
		right := CastlingRights(1 << i)
		if pos.CastlingRights&right != 0 {
			return &ParseError{Field: FieldCastling, Value: castling, Reason: "duplicate right " + strconv.QuoteRune(c)}
		}
		pos.CastlingRights |= right
	}
	pos.CastlingRights &= pos.possibleCastlingRights()
	return nil
}

// possibleCastlingRights returns the rights whose king and rook stand on
// their home squares.
func (p *Position) possibleCastlingRights() CastlingRights {
	var cr CastlingRights
	for us, paths := range castlingPaths {
		for _, c := range paths {
			if p.Pieces[us][King].IsSet(c.king) && p.Pieces[us][Rook].IsSet(c.rook) {
				cr |= c.right
			}
		}
	}
	return cr
}

// ToFEN formats the position as a record.
func (p *Position) ToFEN() string {
	var sb strings.Builder
	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			piece := p.PieceAt(NewSquare(file, rank))
			if piece == NoPiece {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			sb.WriteString(piece.String())
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}

	if p.SideToMove == White {
		sb.WriteString(" w ")
	} else {
		sb.WriteString(" b ")
	}
	sb.WriteString(p.CastlingRights.String())
	sb.WriteByte(' ')
	sb.WriteString(p.EnPassant.String())
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(p.HalfMoveClock))
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(p.FullMoveNumber))
	return sb.String()
}
