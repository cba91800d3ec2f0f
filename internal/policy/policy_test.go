package policy

import (
	"math/rand"
	"testing"

	"github.com/hailam/chesszero/internal/board"
)

func TestMoveToIndex(t *testing.T) {
	tests := []struct {
		name string
		move board.Move
		want int
	}{
		{"e2e4", board.NewMove(board.E2, board.E4, board.FlagDoublePush), 12*73 + 1},
		{"a1h8", board.NewMove(board.A1, board.H8, board.FlagQuiet), 0*73 + 1*7 + 6},
		{"h1a1", board.NewMove(board.H1, board.A1, board.FlagQuiet), 7*73 + 6*7 + 6},
		{"g1f3", board.NewMove(board.G1, board.F3, board.FlagQuiet), 6*73 + 62},
		{"b8a6", board.NewMove(board.B8, board.A6, board.FlagQuiet), 57*73 + 56},
		{"e1g1 castle", board.NewMove(board.E1, board.G1, board.FlagKingCastle), 4*73 + 2*7 + 1},
		{"e7e8q", board.NewPromotion(board.E7, board.E8, board.Queen, false), 52 * 73},
		{"e7e8n", board.NewPromotion(board.E7, board.E8, board.Knight, false), 52*73 + 65},
		{"e7d8r", board.NewPromotion(board.E7, board.D8, board.Rook, true), 52*73 + 70},
		{"b2a1b", board.NewPromotion(board.B2, board.A1, board.Bishop, true), 9*73 + 67},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := MoveToIndex(tc.move); got != tc.want {
				t.Errorf("MoveToIndex(%s) = %d, want %d", tc.move, got, tc.want)
			}
		})
	}
}

func TestUnencodableMoves(t *testing.T) {
	for _, m := range []board.Move{
		board.NoMove,
		board.NewMove(board.A1, board.C4, board.FlagQuiet),
		board.NewPromotion(board.E7, board.E5, board.Knight, false),
	} {
		if got := MoveToIndex(m); got != -1 {
			t.Errorf("MoveToIndex(%s) = %d, want -1", m, got)
		}
	}
}

func TestIndicesDistinctAndDecodable(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	fixtures := []string{
		board.StartFEN,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1",
		"n1n5/PPPk4/8/8/8/8/4Kppp/5N1N b - - 0 1",
	}
	for _, fen := range fixtures {
		pos, err := board.ParseFEN(fen)
		if err != nil {
			t.Fatal(err)
		}
		for ply := 0; ply < 60; ply++ {
			moves := pos.LegalMoves()
			if len(moves) == 0 {
				break
			}
			seen := make(map[int]board.Move, len(moves))
			for _, m := range moves {
				idx := MoveToIndex(m)
				if idx < 0 || idx >= ActionSpace {
					t.Fatalf("%s in %s: index %d out of range", m, pos.ToFEN(), idx)
				}
				if prev, dup := seen[idx]; dup {
					t.Fatalf("%s and %s share index %d in %s", prev, m, idx, pos.ToFEN())
				}
				seen[idx] = m

				d, ok := Decode(idx)
				if !ok || d.From != m.From() || d.To != m.To() {
					t.Fatalf("Decode(%d) = %+v, %v for %s", idx, d, ok, m)
				}
				if p := m.Promotion(); p != board.Queen && d.Promotion != p {
					t.Fatalf("Decode(%d) promotion %v for %s", idx, d.Promotion, m)
				}
				if got, ok := MoveFromIndex(pos, idx); !ok || got != m {
					t.Fatalf("MoveFromIndex(%d) = %s, %v, want %s", idx, got, ok, m)
				}
			}
			pos.MakeMove(moves[rng.Intn(len(moves))])
		}
	}
}

func TestDecodeRejectsOffBoard(t *testing.T) {
	// North, distance 1, from h8.
	if _, ok := Decode(63 * PlanesPerSquare); ok {
		t.Error("move off the top edge decoded")
	}
	// Underpromotion plane from a square on the fourth rank.
	if _, ok := Decode(int(board.E4)*PlanesPerSquare + 65); ok {
		t.Error("underpromotion from e4 decoded")
	}
	if _, ok := Decode(ActionSpace); ok {
		t.Error("index past the action space decoded")
	}
}
