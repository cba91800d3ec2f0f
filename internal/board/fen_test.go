package board

import (
	"errors"
	"strings"
	"testing"
)

func TestFENRoundTrip(t *testing.T) {
	for _, fen := range []string{
		StartFEN,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"rnbqkbnr/pp1ppppp/8/2p5/4P3/8/PPPP1PPP/RNBQKBNR w KQkq c6 0 2",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 12 40",
		"4k3/8/8/8/8/8/8/4K2R b K - 3 71",
	} {
		pos, err := ParseFEN(fen)
		if err != nil {
			t.Fatalf("ParseFEN(%q): %v", fen, err)
		}
		if got := pos.ToFEN(); got != fen {
			t.Errorf("round trip: got %q, want %q", got, fen)
		}
		if pos.Hash != pos.ComputeHash() {
			t.Errorf("%q: hash not initialised", fen)
		}
	}
}

func TestParseFENDefaultsClocks(t *testing.T) {
	pos, err := ParseFEN("4k3/8/8/8/8/8/8/4K3 w - -")
	if err != nil {
		t.Fatal(err)
	}
	if pos.HalfMoveClock != 0 || pos.FullMoveNumber != 1 {
		t.Errorf("clocks = %d/%d, want 0/1", pos.HalfMoveClock, pos.FullMoveNumber)
	}
}

func TestParseFENErrors(t *testing.T) {
	tests := []struct {
		name  string
		fen   string
		field string
	}{
		{"too few fields", "8/8/8/8/8/8/8/8 w", FieldPiecePlacement},
		{"seven ranks", "8/8/8/8/8/8/4k2K w - - 0 1", FieldPiecePlacement},
		{"long rank", "4k4/8/8/8/8/8/8/4K3 w - - 0 1", FieldPiecePlacement},
		{"short rank", "4k2/8/8/8/8/8/8/4K3 w - - 0 1", FieldPiecePlacement},
		{"bad piece", "4k3/8/8/8/8/8/8/4X3 w - - 0 1", FieldPiecePlacement},
		{"missing king", "8/8/8/8/8/8/8/4K3 w - - 0 1", FieldPiecePlacement},
		{"pawn on back rank", "4k2p/8/8/8/8/8/8/4K3 w - - 0 1", FieldPiecePlacement},
		{"opponent in check", "4k3/8/8/8/8/8/8/4R1K1 w - - 0 1", FieldPiecePlacement},
		{"side to move", "4k3/8/8/8/8/8/8/4K3 x - - 0 1", FieldSideToMove},
		{"castling", "4k3/8/8/8/8/8/8/4K3 w KX - 0 1", FieldCastling},
		{"duplicate castling right", "r3k3/8/8/8/8/8/8/4K2R w KKq - 0 1", FieldCastling},
		{"en passant square", "4k3/8/8/8/8/8/8/4K3 w - z9 0 1", FieldEnPassant},
		{"en passant rank", "4k3/8/8/8/8/8/8/4K3 w - e3 0 1", FieldEnPassant},
		{"half-move clock", "4k3/8/8/8/8/8/8/4K3 w - - x 1", FieldClocks},
		{"full-move number", "4k3/8/8/8/8/8/8/4K3 w - - 0 0", FieldClocks},
		{"trailing", "4k3/8/8/8/8/8/8/4K3 w - - 0 1 extra", FieldClocks},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pos, err := ParseFEN(tc.fen)
			if pos != nil {
				t.Error("partial position returned")
			}
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("got %v, want *ParseError", err)
			}
			if pe.Field != tc.field {
				t.Errorf("field = %q, want %q (%v)", pe.Field, tc.field, err)
			}
		})
	}
}

func TestCastlingRightsNeedHomePieces(t *testing.T) {
	tests := []struct {
		name string
		fen  string
		want CastlingRights
		out  string
	}{
		{"all valid", "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1", AllCastling, "KQkq"},
		{"rook moved", "r3k2r/8/8/8/8/8/8/R3K1R1 w KQkq - 0 1",
			WhiteQueenSideCastle | BlackKingSideCastle | BlackQueenSideCastle, "Qkq"},
		{"king moved", "r3k2r/8/8/8/8/8/8/R4K1R w KQkq - 0 1", BlackKingSideCastle | BlackQueenSideCastle, "kq"},
		{"no rooks", "4k3/8/8/8/8/8/8/4K3 w KQkq - 0 1", NoCastling, "-"},
		{"black rook on h1", "4k3/8/8/8/8/8/8/4K2r w K - 0 1", NoCastling, "-"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pos := mustParse(t, tc.fen)
			if pos.CastlingRights != tc.want {
				t.Errorf("rights = %s, want %s", pos.CastlingRights, tc.want)
			}
			if got := strings.Fields(pos.ToFEN())[2]; got != tc.out {
				t.Errorf("castling field %q, want %q", got, tc.out)
			}
			if pos.Hash != pos.ComputeHash() {
				t.Error("hash does not match the stripped rights")
			}
		})
	}
}

func TestSquareParse(t *testing.T) {
	for sq := A1; sq <= H8; sq++ {
		got, err := ParseSquare(sq.String())
		if err != nil || got != sq {
			t.Errorf("ParseSquare(%q) = %v, %v", sq.String(), got, err)
		}
	}
	if _, err := ParseSquare("i1"); err == nil {
		t.Error("i1 accepted")
	}
}
