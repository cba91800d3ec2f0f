package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"runtime"

	"github.com/hailam/chesszero/internal/network"
	"github.com/hailam/chesszero/internal/selfplay"
	"github.com/hailam/chesszero/internal/storage"
)

func main() {
	cfg := selfplay.DefaultConfig()

	var (
		modelFile = flag.String("model", "", "network weights; empty uses a randomly initialised network")
		dbDir     = flag.String("db", "", "database directory (default: the data directory)")
		noise     = flag.Bool("noise", true, "add Dirichlet noise at the root")
		initSeed  = flag.Uint64("initseed", 1, "seed for the random network when -model is empty")
	)
	flag.IntVar(&cfg.Search.Simulations, "sims", cfg.Search.Simulations, "simulations per move")
	flag.Float64Var(&cfg.Search.CPuct, "cpuct", cfg.Search.CPuct, "PUCT exploration constant")
	flag.IntVar(&cfg.Games, "games", 10, "number of games")
	flag.IntVar(&cfg.Workers, "workers", runtime.NumCPU(), "concurrent games")
	flag.IntVar(&cfg.MaxPlies, "maxplies", cfg.MaxPlies, "plies before a game is scored as a draw")
	flag.Uint64Var(&cfg.Seed, "seed", 0, "seed for noise and move sampling")
	flag.StringVar(&cfg.StartFEN, "fen", "", "start position (default: standard start)")
	flag.Float64Var(&cfg.Temperature.Initial, "temp", cfg.Temperature.Initial, "sampling temperature at the first ply")
	flag.IntVar(&cfg.Temperature.AnnealPlies, "tempplies", cfg.Temperature.AnnealPlies, "plies over which the temperature anneals to its floor")
	flag.StringVar(&cfg.IDPrefix, "prefix", cfg.IDPrefix, "game id prefix")
	flag.Parse()

	if !*noise {
		cfg.Search.Dirichlet = nil
	}

	ev, err := evaluator(*modelFile, *initSeed)
	if err != nil {
		log.Fatal(err)
	}

	store, err := openStorage(*dbDir)
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	stats, err := selfplay.Run(ctx, ev, store, cfg)
	if err != nil {
		log.Println(err)
	}
	if stats != nil {
		log.Printf("selfplay: %d games, %d white wins, %d black wins, %d draws, %d samples",
			stats.Games, stats.WhiteWins, stats.BlackWins, stats.Draws, stats.Samples)
	}

	if total, err := store.LoadStats(); err == nil {
		log.Printf("database totals: %d games, %.1f%% draws, %d samples",
			total.Games, total.DrawRate(), total.Samples)
	}
}

func evaluator(path string, seed uint64) (network.Evaluator, error) {
	if path != "" {
		return network.LoadModel(path)
	}
	m := network.NewModel()
	m.InitRandom(seed)
	return m, nil
}

func openStorage(dir string) (*storage.Storage, error) {
	if dir == "" {
		return storage.NewStorage()
	}
	return storage.Open(dir)
}
