package board

import (
	"fmt"
	"strings"
)

// CastlingRights is a nibble of the four castling permissions.
type CastlingRights uint8

const (
	WhiteKingSideCastle CastlingRights = 1 << iota
	WhiteQueenSideCastle
	BlackKingSideCastle
	BlackQueenSideCastle

	NoCastling  CastlingRights = 0
	AllCastling                = WhiteKingSideCastle | WhiteQueenSideCastle | BlackKingSideCastle | BlackQueenSideCastle
)

// String returns the record form, "-" when no rights remain.
func (cr CastlingRights) String() string {
	if cr == NoCastling {
		return "-"
	}
	var sb strings.Builder
	for i, ch := range "KQkq" {
		if cr&(1<<i) != 0 {
			sb.WriteRune(ch)
		}
	}
	return sb.String()
}

// Position is a complete game state. It holds only arrays and scalars, so
// assigning a Position copies it.
type Position struct {
	Pieces      [2][6]Bitboard
	Occupied    [2]Bitboard
	AllOccupied Bitboard

	SideToMove     Color
	CastlingRights CastlingRights
	EnPassant      Square // square passed over by the last double push, NoSquare otherwise
	HalfMoveClock  int
	FullMoveNumber int

	Hash uint64
}

// NewPosition returns the standard starting position.
func NewPosition() *Position {
	pos, err := ParseFEN(StartFEN)
	if err != nil {
		panic(err)
	}
	return pos
}

// EmptyPosition returns a board with no pieces, white to move.
func EmptyPosition() *Position {
	p := &Position{EnPassant: NoSquare, FullMoveNumber: 1}
	p.Hash = p.ComputeHash()
	return p
}

// Copy returns an independent copy.
func (p *Position) Copy() *Position {
	cp := *p
	return &cp
}

// PieceAt returns the piece on sq, or NoPiece.
func (p *Position) PieceAt(sq Square) Piece {
	bb := SquareBB(sq)
	if p.AllOccupied&bb == 0 {
		return NoPiece
	}
	c := White
	if p.Occupied[Black]&bb != 0 {
		c = Black
	}
	for pt := Pawn; pt <= King; pt++ {
		if p.Pieces[c][pt]&bb != 0 {
			return NewPiece(pt, c)
		}
	}
	return NoPiece
}

func (p *Position) IsEmpty(sq Square) bool {
	return p.AllOccupied&SquareBB(sq) == 0
}

// OccupiedBy returns every square holding a piece of colour c.
func (p *Position) OccupiedBy(c Color) Bitboard {
	return p.Occupied[c]
}

// SetPiece puts piece on sq, replacing whatever was there. Setting NoPiece
// clears the square.
func (p *Position) SetPiece(sq Square, piece Piece) {
	p.removePiece(sq)
	p.putPiece(sq, piece)
}

// ClearSquare empties sq.
func (p *Position) ClearSquare(sq Square) {
	p.removePiece(sq)
}

func (p *Position) putPiece(sq Square, piece Piece) {
	if piece >= NoPiece {
		return
	}
	bb := SquareBB(sq)
	p.Pieces[piece.Color()][piece.Type()] |= bb
	p.Occupied[piece.Color()] |= bb
	p.AllOccupied |= bb
	p.Hash ^= zobristPiece[piece][sq]
}

func (p *Position) removePiece(sq Square) Piece {
	piece := p.PieceAt(sq)
	if piece == NoPiece {
		return NoPiece
	}
	bb := SquareBB(sq)
	p.Pieces[piece.Color()][piece.Type()] &^= bb
	p.Occupied[piece.Color()] &^= bb
	p.AllOccupied &^= bb
	p.Hash ^= zobristPiece[piece][sq]
	return piece
}

func (p *Position) movePiece(from, to Square) {
	p.putPiece(to, p.removePiece(from))
}

// KingSquare returns the square of c's king, NoSquare if it has none.
func (p *Position) KingSquare(c Color) Square {
	return p.Pieces[c][King].LSB()
}

// Validate checks the structural rules a record must satisfy: one king
// each, no pawns on the back ranks and the side not to move not in check.
func (p *Position) Validate() error {
	if p.Pieces[White][King].PopCount() != 1 {
		return fmt.Errorf("white must have exactly one king")
	}
	if p.Pieces[Black][King].PopCount() != 1 {
		return fmt.Errorf("black must have exactly one king")
	}
	if (p.Pieces[White][Pawn]|p.Pieces[Black][Pawn])&(Rank1|Rank8) != 0 {
		return fmt.Errorf("pawns cannot stand on the first or eighth rank")
	}
	if p.IsInCheck(p.SideToMove.Other()) {
		return fmt.Errorf("side not to move is in check")
	}
	return nil
}

// Equal reports whether two positions have identical state.
func (p *Position) Equal(o *Position) bool {
	return *p == *o
}

// String returns a board diagram followed by the record.
func (p *Position) String() string {
	var sb strings.Builder
	for rank := 7; rank >= 0; rank-- {
		fmt.Fprintf(&sb, "%d  ", rank+1)
		for file := 0; file < 8; file++ {
			sb.WriteString(p.PieceAt(NewSquare(file, rank)).String())
			sb.WriteByte(' ')
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("\n   a b c d e f g h\n\n")
	fmt.Fprintf(&sb, "Fen: %s\nKey: %016X\n", p.ToFEN(), p.Hash)
	return sb.String()
}
