package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime/pprof"

	"github.com/hailam/chesszero/internal/engine"
	"github.com/hailam/chesszero/internal/network"
	"github.com/hailam/chesszero/internal/storage"
	"github.com/hailam/chesszero/internal/uci"
)

var (
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
	modelFile  = flag.String("model", "", "network weights (default: latest.bin in the data directory)")
	sims       = flag.Int("sims", 800, "simulations per move")
	cpuct      = flag.Float64("cpuct", 1.5, "PUCT exploration constant")
)

func main() {
	flag.Parse()

	// Start CPU profiling if requested (via flag or environment variable)
	profilePath := *cpuprofile
	if profilePath == "" {
		profilePath = os.Getenv("CPUPROFILE")
	}
	if profilePath != "" {
		f, err := os.Create(profilePath)
		if err != nil {
			log.Fatal("could not create CPU profile: ", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal("could not start CPU profile: ", err)
		}
		defer pprof.StopCPUProfile()
		log.Printf("CPU profiling enabled, writing to %s", profilePath)
	}

	defaultModel, err := storage.DefaultModelFile()
	if err != nil {
		log.Printf("Warning: no data directory: %v", err)
	}
	ev, err := loadEvaluator(*modelFile, defaultModel)
	if err != nil {
		log.Fatal(err)
	}

	eng := engine.NewEngine(ev)
	eng.Options.Simulations = *sims
	eng.Options.CPuct = *cpuct

	// Create and run UCI protocol handler
	protocol := uci.New(eng, os.Stdin, os.Stdout)
	if err := protocol.Run(); err != nil {
		log.Fatal(err)
	}
}

// loadEvaluator loads the weights named by path. With no path it tries
// defaultFile and uses uniform priors only when that file does not exist.
// A file that exists but does not load is always an error.
func loadEvaluator(path, defaultFile string) (network.Evaluator, error) {
	if path == "" {
		if defaultFile == "" || !fileExists(defaultFile) {
			log.Printf("No model found (using uniform evaluator)")
			return network.Uniform{}, nil
		}
		path = defaultFile
	}

	m, err := network.LoadModel(path)
	if err != nil {
		return nil, fmt.Errorf("load model %s: %w", path, err)
	}
	log.Printf("Model loaded from %s", path)
	return m, nil
}

// fileExists checks if a file exists
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
