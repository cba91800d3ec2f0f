// Package uci exposes the engine over the Universal Chess Interface.
package uci

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"runtime/pprof"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hailam/chesszero/internal/board"
	"github.com/hailam/chesszero/internal/engine"
	"github.com/hailam/chesszero/internal/network"
)

// UCI implements the Universal Chess Interface protocol.
type UCI struct {
	engine *engine.Engine
	game   *engine.Game

	in  io.Reader
	out io.Writer
	mu  sync.Mutex // guards out

	// Search configuration, changed through setoption
	opts      engine.SearchOptions
	useNoise  bool
	dirichlet engine.DirichletParams

	// Search state
	searching  bool
	searchDone chan struct{}

	// CPU profiling
	profileFile *os.File
}

// New creates a new UCI protocol handler reading commands from in and
// writing responses to out.
func New(eng *engine.Engine, in io.Reader, out io.Writer) *UCI {
	game, _ := engine.NewGame("uci", "")
	return &UCI{
		engine:    eng,
		game:      game,
		in:        in,
		out:       out,
		opts:      eng.Options,
		dirichlet: *engine.DefaultDirichlet(),
	}
}

// Run processes commands until "quit" or end of input. "go" searches in
// the background; every later command except "uci" first waits for that
// search to report its move, so "stop" does not interrupt it.
func (u *UCI) Run() error {
	scanner := bufio.NewScanner(u.in)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.Fields(line)
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "uci":
			u.handleUCI()
		case "isready":
			u.waitSearch()
			u.send("readyok")
		case "ucinewgame":
			u.waitSearch()
			u.handleNewGame()
		case "position":
			u.waitSearch()
			u.handlePosition(args)
		case "go":
			u.waitSearch()
			u.handleGo(args)
		case "stop":
			// Searches run a fixed simulation budget and cannot be cut
			// short; stop blocks until the bestmove line is out.
			u.waitSearch()
		case "quit":
			u.handleQuit()
			return nil
		case "setoption":
			u.waitSearch()
			u.handleSetOption(args)
		// Debug commands
		case "d":
			u.waitSearch()
			u.send("%s", u.game.Position().String())
		case "perft":
			u.waitSearch()
			u.handlePerft(args)
		default:
			u.send("info string unknown command: %s", cmd)
		}
	}

	u.handleQuit()
	return scanner.Err()
}

func (u *UCI) send(format string, args ...any) {
	u.mu.Lock()
	defer u.mu.Unlock()
	fmt.Fprintf(u.out, format+"\n", args...)
}

// handleUCI responds to the "uci" command.
func (u *UCI) handleUCI() {
	u.send("id name ChessZero")
	u.send("id author ChessZero Team")
	u.send("")
	u.send("option name Simulations type spin default %d min 1 max 1000000", u.opts.Simulations)
	u.send("option name CPuct type string default %g", u.opts.CPuct)
	u.send("option name UseNoise type check default false")
	u.send("option name DirichletAlpha type string default %g", u.dirichlet.Alpha)
	u.send("option name DirichletEpsilon type string default %g", u.dirichlet.Epsilon)
	u.send("option name Seed type spin default 0 min 0 max 2147483647")
	u.send("option name ModelFile type string default <empty>")
	u.send("option name CPUProfile type string default <empty>")
	u.send("uciok")
}

// handleNewGame resets the session for a new game.
func (u *UCI) handleNewGame() {
	u.game, _ = engine.NewGame("uci", "")
}

// handlePosition parses and sets up a position.
// Formats:
//   - position startpos
//   - position startpos moves e2e4 e7e5
//   - position fen <fen>
//   - position fen <fen> moves e2e4
func (u *UCI) handlePosition(args []string) {
	if len(args) == 0 {
		return
	}

	movesAt := len(args)
	for i, arg := range args {
		if arg == "moves" {
			movesAt = i
			break
		}
	}

	var fen string
	switch args[0] {
	case "startpos":
		fen = board.StartFEN
	case "fen":
		fen = strings.Join(args[1:movesAt], " ")
	default:
		u.send("info string invalid position command")
		return
	}

	game, err := engine.NewGame("uci", fen)
	if err != nil {
		u.send("info string invalid FEN: %v", err)
		return
	}

	if movesAt < len(args) {
		movesAt++
	}
	for _, moveStr := range args[movesAt:] {
		if err := game.ApplyUCI(moveStr); err != nil {
			u.send("info string invalid move %s: %v", moveStr, err)
			return
		}
	}
	u.game = game
}

// GoOptions holds parsed "go" command options.
type GoOptions struct {
	Nodes int
}

// parseGoOptions parses "go" command arguments. Only a node budget is
// meaningful for a fixed-simulation search; time controls are ignored.
func parseGoOptions(args []string) GoOptions {
	opts := GoOptions{}

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "nodes":
			if i+1 < len(args) {
				opts.Nodes, _ = strconv.Atoi(args[i+1])
				i++
			}
		}
	}

	return opts
}

// handleGo starts a search with the given parameters.
func (u *UCI) handleGo(args []string) {
	goOpts := parseGoOptions(args)

	opts := u.opts
	if goOpts.Nodes > 0 {
		opts.Simulations = goOpts.Nodes
	}
	if u.useNoise {
		d := u.dirichlet
		opts.Dirichlet = &d
	}

	// Configure info callback
	u.engine.OnInfo = u.sendInfo

	u.searching = true
	u.searchDone = make(chan struct{})

	game := u.game
	go func() {
		defer close(u.searchDone)

		res, err := game.Search(u.engine, opts)
		if err != nil {
			u.send("info string search failed: %v", err)
			u.send("bestmove 0000")
			return
		}
		if res.Move == board.NoMove {
			u.send("info string %s", res.Status)
			u.send("bestmove 0000")
			return
		}

		if pv := principalVariation(res.Tree); len(pv) > 0 {
			u.send("info string pv %s", strings.Join(pv, " "))
		}
		u.send("bestmove %s", res.Move)
	}()
}

// waitSearch blocks until a running search has reported its move.
func (u *UCI) waitSearch() {
	if u.searching {
		<-u.searchDone
		u.searching = false
	}
}

// principalVariation follows the most visited child from the root.
func principalVariation(tree *engine.Tree) []string {
	var pv []string
	id := engine.NodeID(0)
	for {
		best, bestVisits := engine.NoNode, 0
		for _, c := range tree.Children(id) {
			if v := tree.Node(c).Visits; v > bestVisits {
				best, bestVisits = c, v
			}
		}
		if best == engine.NoNode {
			return pv
		}
		pv = append(pv, tree.Node(best).Move.String())
		id = best
	}
}

// centipawns maps a value in [-1, 1] to a centipawn-like score for GUIs.
func centipawns(q float64) int {
	q = math.Max(-0.999, math.Min(0.999, q))
	return int(math.Round(111.714640912 * math.Tan(1.5620688421*q)))
}

// sendInfo outputs search info in UCI format.
func (u *UCI) sendInfo(info engine.SearchInfo) {
	var parts []string

	parts = append(parts, fmt.Sprintf("nodes %d", info.Simulations))
	parts = append(parts, fmt.Sprintf("score cp %d", centipawns(info.RootValue)))
	parts = append(parts, fmt.Sprintf("time %d", info.Time.Milliseconds()))

	// NPS
	if info.Time > 0 {
		nps := uint64(float64(info.Simulations) / info.Time.Seconds())
		parts = append(parts, fmt.Sprintf("nps %d", nps))
	}

	if info.BestMove != board.NoMove {
		parts = append(parts, "pv "+info.BestMove.String())
	}

	u.send("info %s", strings.Join(parts, " "))
}

// handleQuit stops profiling and waits for the last search.
func (u *UCI) handleQuit() {
	u.waitSearch()
	// Stop profiling if active
	if u.profileFile != nil {
		pprof.StopCPUProfile()
		u.profileFile.Close()
		u.send("info string CPU profile saved")
		u.profileFile = nil
	}
}

// handleSetOption processes "setoption" commands.
func (u *UCI) handleSetOption(args []string) {
	// Format: setoption name <name> value <value>
	var name, value string
	readingName := false
	readingValue := false

	for _, arg := range args {
		switch arg {
		case "name":
			readingName = true
			readingValue = false
		case "value":
			readingName = false
			readingValue = true
		default:
			if readingName {
				if name != "" {
					name += " "
				}
				name += arg
			} else if readingValue {
				if value != "" {
					value += " "
				}
				value += arg
			}
		}
	}

	// Handle options
	switch strings.ToLower(name) {
	case "simulations":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			u.send("info string invalid Simulations: %s", value)
			return
		}
		u.opts.Simulations = n
	case "cpuct":
		c, err := strconv.ParseFloat(value, 64)
		if err != nil || c < 0 {
			u.send("info string invalid CPuct: %s", value)
			return
		}
		u.opts.CPuct = c
	case "usenoise":
		u.useNoise = strings.ToLower(value) == "true"
	case "dirichletalpha":
		a, err := strconv.ParseFloat(value, 64)
		if err != nil || a <= 0 {
			u.send("info string invalid DirichletAlpha: %s", value)
			return
		}
		u.dirichlet.Alpha = a
	case "dirichletepsilon":
		e, err := strconv.ParseFloat(value, 64)
		if err != nil || e < 0 || e > 1 {
			u.send("info string invalid DirichletEpsilon: %s", value)
			return
		}
		u.dirichlet.Epsilon = e
	case "seed":
		s, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			u.send("info string invalid Seed: %s", value)
			return
		}
		u.opts.Seed = s
	case "modelfile":
		u.loadModel(value)
	case "cpuprofile":
		// Stop existing profile if any
		if u.profileFile != nil {
			pprof.StopCPUProfile()
			u.profileFile.Close()
			u.send("info string CPU profile stopped")
			u.profileFile = nil
		}
		// Start new profile if path provided
		if value != "" && value != "<empty>" && value != "stop" {
			f, err := os.Create(value)
			if err != nil {
				u.send("info string failed to create profile: %v", err)
				return
			}
			if err := pprof.StartCPUProfile(f); err != nil {
				f.Close()
				u.send("info string failed to start profile: %v", err)
				return
			}
			u.profileFile = f
			u.send("info string CPU profiling to %s", value)
		}
	default:
		u.send("info string unknown option: %s", name)
	}
}

// loadModel swaps the evaluator for the weights in path.
func (u *UCI) loadModel(path string) {
	if path == "" || path == "<empty>" {
		return
	}
	m, err := network.LoadModel(path)
	if err != nil {
		u.send("info string failed to load model: %v", err)
		return
	}
	u.engine.SetEvaluator(m)
	u.send("info string model loaded from %s", path)
}

// handlePerft runs a perft test.
func (u *UCI) handlePerft(args []string) {
	depth := 5
	if len(args) > 0 {
		depth, _ = strconv.Atoi(args[0])
	}

	start := time.Now()
	entries := board.PerftDivide(u.game.Position(), depth)
	elapsed := time.Since(start)

	var nodes uint64
	for _, e := range entries {
		u.send("%s: %d", e.Move, e.Nodes)
		nodes += e.Nodes
	}
	if depth <= 0 {
		nodes = 1
	}

	u.send("")
	u.send("Nodes: %d", nodes)
	u.send("Time: %v", elapsed)
	if elapsed > 0 {
		nps := float64(nodes) / elapsed.Seconds()
		u.send("NPS: %.0f", nps)
	}
}
