package board

import "fmt"

// Record fields named by ParseError.
const (
	FieldPiecePlacement = "piece-placement"
	FieldSideToMove     = "side-to-move"
	FieldCastling       = "castling"
	FieldEnPassant      = "en-passant"
	FieldClocks         = "clocks"
)

// ParseError reports a malformed position record and the field at fault.
type ParseError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid fen %s %q: %s", e.Field, e.Value, e.Reason)
}

// IllegalMoveError is returned when a move is not among the legal moves of
// the position it is applied to.
type IllegalMoveError struct {
	Move Move
	FEN  string
}

func (e *IllegalMoveError) Error() string {
	return fmt.Sprintf("illegal move %s in %s", e.Move, e.FEN)
}
