package selfplay

import (
	"context"
	"testing"

	"github.com/hailam/chesszero/internal/board"
	"github.com/hailam/chesszero/internal/engine"
	"github.com/hailam/chesszero/internal/network"
	"github.com/hailam/chesszero/internal/policy"
	"github.com/hailam/chesszero/internal/storage"
)

func smallConfig() Config {
	cfg := DefaultConfig()
	cfg.Search.Simulations = 16
	cfg.MaxPlies = 6
	return cfg
}

func TestPlayGameRecordsEveryPly(t *testing.T) {
	res, err := PlayGame(context.Background(), network.Uniform{}, "g", smallConfig(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Samples) != res.Game.Ply() {
		t.Fatalf("%d samples for %d plies", len(res.Samples), res.Game.Ply())
	}

	replay, err := engine.NewGame("replay", "")
	if err != nil {
		t.Fatal(err)
	}
	for i, sm := range res.Samples {
		if sm.Ply != i || sm.FEN != replay.Position().ToFEN() {
			t.Errorf("sample %d: ply %d fen %s", i, sm.Ply, sm.FEN)
		}
		var sum float32
		for _, e := range sm.Policy {
			sum += e.Prob
		}
		if sum < 0.999 || sum > 1.001 {
			t.Errorf("sample %d policy sums to %v", i, sum)
		}
		if err := replay.Apply(res.Game.Moves()[i]); err != nil {
			t.Fatal(err)
		}
		wantSide := "w"
		if i%2 == 1 {
			wantSide = "b"
		}
		if sm.SideToMove != wantSide {
			t.Errorf("sample %d side %s", i, sm.SideToMove)
		}
	}
}

func TestPlayGameDeterministic(t *testing.T) {
	a, err := PlayGame(context.Background(), network.Uniform{}, "a", smallConfig(), 42)
	if err != nil {
		t.Fatal(err)
	}
	b, err := PlayGame(context.Background(), network.Uniform{}, "b", smallConfig(), 42)
	if err != nil {
		t.Fatal(err)
	}
	am, bm := a.Game.Moves(), b.Game.Moves()
	if len(am) != len(bm) {
		t.Fatalf("game lengths %d and %d", len(am), len(bm))
	}
	for i := range am {
		if am[i] != bm[i] {
			t.Fatalf("games diverge at ply %d: %s vs %s", i, am[i], bm[i])
		}
	}
}

func TestPlayGameMate(t *testing.T) {
	cfg := smallConfig()
	cfg.StartFEN = "6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1"
	cfg.Search.Simulations = 400
	cfg.Search.Dirichlet = nil
	cfg.Temperature = engine.TemperatureSchedule{}

	res, err := PlayGame(context.Background(), network.Uniform{}, "mate", cfg, 3)
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != board.Checkmate || res.Winner != board.White || res.Capped {
		t.Fatalf("status %s winner %s capped %v", res.Status, res.Winner, res.Capped)
	}
	if len(res.Samples) != 1 || res.Samples[0].Outcome != 1 {
		t.Errorf("samples %+v", res.Samples)
	}
	target := res.Samples[0].DensePolicy(policy.ActionSpace)
	mate := res.Game.Moves()[0]
	if mate.String() != "a1a8" || target[policy.MoveToIndex(mate)] < 0.5 {
		t.Errorf("mating move %s has target %v", mate, target[policy.MoveToIndex(mate)])
	}
}

func TestAssignOutcomes(t *testing.T) {
	tests := []struct {
		winner board.Color
		want   []float32
	}{
		{board.White, []float32{1, -1, 1}},
		{board.Black, []float32{-1, 1, -1}},
		{board.NoColor, []float32{0, 0, 0}},
	}
	for _, tc := range tests {
		t.Run(tc.winner.String(), func(t *testing.T) {
			samples := []storage.Sample{{SideToMove: "w"}, {SideToMove: "b"}, {SideToMove: "w"}}
			assignOutcomes(samples, tc.winner)
			for i, sm := range samples {
				if sm.Outcome != tc.want[i] {
					t.Errorf("sample %d outcome %v, want %v", i, sm.Outcome, tc.want[i])
				}
			}
		})
	}
}

func TestRunStoresGames(t *testing.T) {
	store, err := storage.OpenInMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	cfg := smallConfig()
	cfg.Games = 4
	cfg.Workers = 2
	stats, err := Run(context.Background(), network.NewRandom(9), store, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Games != 4 || stats.WhiteWins+stats.BlackWins+stats.Draws != 4 {
		t.Errorf("stats %+v", stats)
	}

	games, err := store.ListGames()
	if err != nil {
		t.Fatal(err)
	}
	if len(games) != 4 {
		t.Fatalf("stored %d games, want 4", len(games))
	}
	samples, err := store.Samples("")
	if err != nil {
		t.Fatal(err)
	}
	if len(samples) != stats.Samples {
		t.Errorf("stored %d samples, stats say %d", len(samples), stats.Samples)
	}
	for _, rec := range games {
		if len(rec.Moves) > cfg.MaxPlies {
			t.Errorf("game %s has %d plies", rec.ID, len(rec.Moves))
		}
	}

	stored, err := store.LoadStats()
	if err != nil {
		t.Fatal(err)
	}
	if *stored != *stats {
		t.Errorf("stored stats %+v, run stats %+v", *stored, *stats)
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cfg := smallConfig()
	cfg.Games = 3
	if _, err := Run(ctx, network.Uniform{}, nil, cfg); err == nil {
		t.Error("cancelled run reported success")
	}
}

func TestRunRejectsNoGames(t *testing.T) {
	cfg := smallConfig()
	cfg.Games = 0
	if _, err := Run(context.Background(), network.Uniform{}, nil, cfg); err == nil {
		t.Error("zero games accepted")
	}
}
