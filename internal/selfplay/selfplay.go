// Package selfplay plays engine-vs-engine games and turns every decision
// into a training sample.
package selfplay

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"

	"github.com/hailam/chesszero/internal/board"
	"github.com/hailam/chesszero/internal/engine"
	"github.com/hailam/chesszero/internal/network"
	"github.com/hailam/chesszero/internal/storage"
)

// Config controls a self-play run.
type Config struct {
	Games    int
	Workers  int
	MaxPlies int // games reaching this many plies are scored as draws

	Search      engine.SearchOptions
	Temperature engine.TemperatureSchedule

	StartFEN string // empty means the standard start
	IDPrefix string
	Seed     uint64
}

// DefaultConfig returns settings for a training run.
func DefaultConfig() Config {
	opts := engine.DefaultSearchOptions()
	opts.Dirichlet = engine.DefaultDirichlet()
	return Config{
		Games:       1,
		Workers:     1,
		MaxPlies:    512,
		Search:      opts,
		Temperature: engine.DefaultTemperature(),
		IDPrefix:    "selfplay-",
	}
}

// GameResult is one finished self-play game.
type GameResult struct {
	Game    *engine.Game
	Status  board.Status
	Winner  board.Color // NoColor for draws and capped games
	Capped  bool
	Samples []storage.Sample
}

// PlayGame plays a single game. seed drives both the root noise and the
// temperature sampling, so equal seeds give equal games for a
// deterministic evaluator.
func PlayGame(ctx context.Context, ev network.Evaluator, id string, cfg Config, seed uint64) (*GameResult, error) {
	game, err := engine.NewGame(id, cfg.StartFEN)
	if err != nil {
		return nil, err
	}
	eng := engine.NewEngine(ev)
	rng := rand.New(rand.NewSource(seed))

	var samples []storage.Sample
	for game.Status() == board.Ongoing && (cfg.MaxPlies <= 0 || game.Ply() < cfg.MaxPlies) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		opts := cfg.Search
		opts.Seed = rng.Uint64()
		res, err := game.Search(eng, opts)
		if err != nil {
			return nil, fmt.Errorf("selfplay: game %s ply %d: %w", id, game.Ply(), err)
		}

		pos := game.Position()
		samples = append(samples, storage.Sample{
			GameID:     id,
			Ply:        game.Ply(),
			FEN:        pos.ToFEN(),
			SideToMove: sideString(pos.SideToMove),
			Policy:     storage.SparsePolicy(res.Policy),
		})

		m := engine.SelectMove(res, cfg.Temperature.At(game.Ply()), rng)
		if err := game.Apply(m); err != nil {
			return nil, err
		}
	}

	result := &GameResult{
		Game:    game,
		Status:  game.Status(),
		Winner:  game.Winner(),
		Capped:  game.Status() == board.Ongoing,
		Samples: samples,
	}
	assignOutcomes(result.Samples, result.Winner)
	return result, nil
}

// assignOutcomes back-fills z from each sample's side to move.
func assignOutcomes(samples []storage.Sample, winner board.Color) {
	for i := range samples {
		switch {
		case winner == board.NoColor:
			samples[i].Outcome = 0
		case samples[i].SideToMove == sideString(winner):
			samples[i].Outcome = 1
		default:
			samples[i].Outcome = -1
		}
	}
}

func sideString(c board.Color) string {
	if c == board.White {
		return "w"
	}
	return "b"
}

// Run plays cfg.Games games on cfg.Workers goroutines. Each worker searches
// single-threaded; ev must be safe for concurrent use when Workers > 1.
// Finished games, their samples and the aggregate statistics go to store
// when it is non-nil.
func Run(ctx context.Context, ev network.Evaluator, store *storage.Storage, cfg Config) (*storage.Stats, error) {
	if cfg.Games < 1 {
		return nil, fmt.Errorf("selfplay: games must be positive, got %d", cfg.Games)
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}

	log.Println("selfplay started")
	defer log.Println("selfplay finished")

	g, ctx := errgroup.WithContext(ctx)

	var jobs = make(chan int)
	var results = make(chan *GameResult, cfg.Workers)

	g.Go(func() error {
		defer close(jobs)
		for i := 0; i < cfg.Games; i++ {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case jobs <- i:
			}
		}
		return nil
	})

	var wg = &sync.WaitGroup{}
	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		g.Go(func() error {
			defer wg.Done()
			for i := range jobs {
				id := fmt.Sprintf("%s%06d", cfg.IDPrefix, i)
				res, err := PlayGame(ctx, ev, id, cfg, cfg.Seed+uint64(i)*0x9E3779B97F4A7C15)
				if err != nil {
					return err
				}
				select {
				case <-ctx.Done():
					return ctx.Err()
				case results <- res:
				}
			}
			return nil
		})
	}

	g.Go(func() error {
		wg.Wait()
		close(results)
		return nil
	})

	stats := &storage.Stats{}
	start := time.Now()
	g.Go(func() error {
		for res := range results {
			if err := save(store, res); err != nil {
				return err
			}
			stats.Games++
			stats.Samples += len(res.Samples)
			switch res.Winner {
			case board.White:
				stats.WhiteWins++
			case board.Black:
				stats.BlackWins++
			default:
				stats.Draws++
			}
			log.Printf("game %s: %s after %d plies (%d/%d, %.1fs)",
				res.Game.ID, describe(res), res.Game.Ply(), stats.Games, cfg.Games, time.Since(start).Seconds())
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return stats, err
	}
	return stats, nil
}

func save(store *storage.Storage, res *GameResult) error {
	if store == nil {
		return nil
	}
	if err := store.SaveGame(res.Game); err != nil {
		return err
	}
	if err := store.AppendSamples(res.Samples); err != nil {
		return err
	}
	return store.RecordResult(res.Winner, len(res.Samples))
}

func describe(res *GameResult) string {
	switch {
	case res.Capped:
		return "ply cap"
	case res.Winner != board.NoColor:
		return fmt.Sprintf("%s by %s", res.Winner, res.Status)
	default:
		return res.Status.String()
	}
}
