package board

import (
	"math/rand"
	"slices"
	"testing"

	"github.com/dylhunn/dragontoothmg"
)

// Cross-checks the generator against dragontoothmg along random games.

func oracleMoves(fen string) []string {
	b := dragontoothmg.ParseFen(fen)
	var out []string
	for _, m := range b.GenerateLegalMoves() {
		out = append(out, m.String())
	}
	slices.Sort(out)
	return out
}

func ourMoves(pos *Position) []string {
	var out []string
	for _, m := range pos.LegalMoves() {
		out = append(out, m.String())
	}
	slices.Sort(out)
	return out
}

func TestLegalMovesMatchOracle(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for _, fen := range []string{
		StartFEN,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
		"rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 1 8",
	} {
		for game := 0; game < 5; game++ {
			pos := mustParse(t, fen)
			for ply := 0; ply < 60; ply++ {
				record := pos.ToFEN()
				ours, theirs := ourMoves(pos), oracleMoves(record)
				if !slices.Equal(ours, theirs) {
					t.Fatalf("%s:\nours   %v\noracle %v", record, ours, theirs)
				}
				if len(ours) == 0 {
					break
				}
				m, err := pos.ParseMove(ours[rng.Intn(len(ours))])
				if err != nil {
					t.Fatal(err)
				}
				pos.MakeMove(m)
			}
		}
	}
}

func oraclePerft(b *dragontoothmg.Board, depth int) uint64 {
	if depth == 0 {
		return 1
	}
	moves := b.GenerateLegalMoves()
	if depth == 1 {
		return uint64(len(moves))
	}
	var n uint64
	for _, m := range moves {
		unapply := b.Apply(m)
		n += oraclePerft(b, depth-1)
		unapply()
	}
	return n
}

func TestPerftMatchesOracle(t *testing.T) {
	fen := "r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1"
	b := dragontoothmg.ParseFen(fen)
	if got, want := Perft(mustParse(t, fen), 3), oraclePerft(&b, 3); got != want {
		t.Errorf("perft(3) = %d, oracle %d", got, want)
	}
}
