package board

// Move packs a move into 16 bits: from<<10 | to<<4 | flag. With this layout
// the numeric order of moves is origin, then destination, then flag.
type Move uint16

// MoveFlag distinguishes the kind of move.
type MoveFlag uint8

const (
	FlagQuiet       MoveFlag = 0
	FlagDoublePush  MoveFlag = 1
	FlagKingCastle  MoveFlag = 2
	FlagQueenCastle MoveFlag = 3
	FlagCapture     MoveFlag = 4
	FlagEnPassant   MoveFlag = 5

	// Promotion flags: bit 3 marks promotion, bit 2 marks capture and the
	// low two bits select knight, bishop, rook, queen.
	FlagPromoKnight        MoveFlag = 8
	FlagPromoBishop        MoveFlag = 9
	FlagPromoRook          MoveFlag = 10
	FlagPromoQueen         MoveFlag = 11
	FlagPromoCaptureKnight MoveFlag = 12
	FlagPromoCaptureBishop MoveFlag = 13
	FlagPromoCaptureRook   MoveFlag = 14
	FlagPromoCaptureQueen  MoveFlag = 15
)

// NoMove is the zero move (a1a1 quiet), never produced by the generator.
const NoMove Move = 0

// NewMove builds a move from its parts.
func NewMove(from, to Square, flag MoveFlag) Move {
	return Move(from)<<10 | Move(to)<<4 | Move(flag)
}

// NewPromotion builds a promotion to pt, with or without capture.
func NewPromotion(from, to Square, pt PieceType, capture bool) Move {
	flag := FlagPromoKnight + MoveFlag(pt-Knight)
	if capture {
		flag |= FlagCapture
	}
	return NewMove(from, to, flag)
}

func (m Move) From() Square   { return Square(m >> 10) }
func (m Move) To() Square     { return Square(m>>4) & 63 }
func (m Move) Flag() MoveFlag { return MoveFlag(m & 15) }

// IsCapture reports captures, including en passant and capturing promotions.
func (m Move) IsCapture() bool {
	return m.Flag()&FlagCapture != 0
}

func (m Move) IsPromotion() bool {
	return m.Flag()&8 != 0
}

func (m Move) IsEnPassant() bool {
	return m.Flag() == FlagEnPassant
}

func (m Move) IsCastle() bool {
	return m.Flag() == FlagKingCastle || m.Flag() == FlagQueenCastle
}

func (m Move) IsDoublePush() bool {
	return m.Flag() == FlagDoublePush
}

// Promotion returns the piece promoted to, NoPieceType for other moves.
func (m Move) Promotion() PieceType {
	if !m.IsPromotion() {
		return NoPieceType
	}
	return Knight + PieceType(m.Flag()&3)
}

// String returns coordinate notation such as "e2e4" or "e7e8q".
func (m Move) String() string {
	if m == NoMove {
		return "0000"
	}
	s := m.From().String() + m.To().String()
	if m.IsPromotion() {
		s += string("nbrq"[m.Promotion()-Knight])
	}
	return s
}

// MoveList is a fixed-capacity move buffer that avoids allocation during
// generation. 256 exceeds the maximum number of legal moves in any position.
type MoveList struct {
	moves [256]Move
	count int
}

func (ml *MoveList) Add(m Move) {
	ml.moves[ml.count] = m
	ml.count++
}

func (ml *MoveList) Len() int       { return ml.count }
func (ml *MoveList) Get(i int) Move { return ml.moves[i] }
func (ml *MoveList) Slice() []Move  { return ml.moves[:ml.count] }
func (ml *MoveList) Clear()         { ml.count = 0 }

// Contains reports whether m is in the list.
func (ml *MoveList) Contains(m Move) bool {
	for i := 0; i < ml.count; i++ {
		if ml.moves[i] == m {
			return true
		}
	}
	return false
}

// UndoInfo snapshots the state that MakeMove cannot recompute on unmake.
type UndoInfo struct {
	Captured       Piece
	CastlingRights CastlingRights
	EnPassant      Square
	HalfMoveClock  int
	FullMoveNumber int
	Hash           uint64
}
