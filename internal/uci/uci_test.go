package uci

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hailam/chesszero/internal/board"
	"github.com/hailam/chesszero/internal/engine"
	"github.com/hailam/chesszero/internal/network"
)

func run(t *testing.T, script string) (*UCI, []string) {
	t.Helper()
	var out bytes.Buffer
	u := New(engine.NewEngine(network.Uniform{}), strings.NewReader(script), &out)
	if err := u.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	return u, strings.Split(strings.TrimSpace(out.String()), "\n")
}

func lastWithPrefix(lines []string, prefix string) string {
	for i := len(lines) - 1; i >= 0; i-- {
		if strings.HasPrefix(lines[i], prefix) {
			return lines[i]
		}
	}
	return ""
}

func TestHandshake(t *testing.T) {
	_, lines := run(t, "uci\nisready\nquit\n")
	if lastWithPrefix(lines, "id name") == "" {
		t.Error("missing id line")
	}
	if lastWithPrefix(lines, "uciok") == "" || lines[len(lines)-1] != "readyok" {
		t.Errorf("unexpected output %q", lines)
	}
}

func TestPositionCommands(t *testing.T) {
	tests := []struct {
		name   string
		script string
		fen    string
	}{
		{"startpos", "position startpos", board.StartFEN},
		{"startpos moves", "position startpos moves e2e4 c7c5",
			"rnbqkbnr/pp1ppppp/8/2p5/4P3/8/PPPP1PPP/RNBQKBNR w KQkq c6 0 2"},
		{"fen", "position fen 4k3/8/8/8/8/8/8/4K2R w K - 0 1", "4k3/8/8/8/8/8/8/4K2R w K - 0 1"},
		{"fen moves", "position fen 4k3/8/8/8/8/8/8/4K2R w K - 0 1 moves e1g1",
			"4k3/8/8/8/8/8/8/5RK1 b - - 1 1"},
		{"bad move keeps previous", "position startpos moves e2e4\nposition startpos moves e2e5",
			"rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1"},
		{"bad fen keeps previous", "position startpos moves d2d4\nposition fen 8/8/8 w - - 0 1",
			"rnbqkbnr/pppppppp/8/8/3P4/8/PPP1PPPP/RNBQKBNR b KQkq d3 0 1"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			u, _ := run(t, tc.script+"\n")
			if got := u.game.Position().ToFEN(); got != tc.fen {
				t.Errorf("position %s, want %s", got, tc.fen)
			}
		})
	}
}

func TestGoReturnsLegalMove(t *testing.T) {
	_, lines := run(t, "position startpos moves e2e4\ngo nodes 120\n")
	best := lastWithPrefix(lines, "bestmove ")
	if best == "" {
		t.Fatalf("no bestmove in %q", lines)
	}
	pos, _ := board.ParseFEN("rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1")
	if _, err := pos.ParseMove(strings.TrimPrefix(best, "bestmove ")); err != nil {
		t.Errorf("%s is not legal: %v", best, err)
	}
	if lastWithPrefix(lines, "info nodes 120 ") == "" {
		t.Errorf("no final info line in %q", lines)
	}
}

func TestGoFindsMate(t *testing.T) {
	_, lines := run(t, "position fen 6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1\ngo nodes 400\nquit\n")
	if got := lastWithPrefix(lines, "bestmove "); got != "bestmove a1a8" {
		t.Errorf("got %q", got)
	}
	if pv := lastWithPrefix(lines, "info string pv "); !strings.HasPrefix(pv, "info string pv a1a8") {
		t.Errorf("pv line %q", pv)
	}
}

func TestGoOnFinishedGame(t *testing.T) {
	_, lines := run(t, "position startpos moves f2f3 e7e5 g2g4 d8h4\ngo nodes 10\n")
	if got := lastWithPrefix(lines, "bestmove "); got != "bestmove 0000" {
		t.Errorf("got %q", got)
	}
	if lastWithPrefix(lines, "info string checkmate") == "" {
		t.Errorf("status not reported: %q", lines)
	}
}

func TestSetOption(t *testing.T) {
	u, lines := run(t, strings.Join([]string{
		"setoption name Simulations value 64",
		"setoption name CPuct value 2.5",
		"setoption name UseNoise value true",
		"setoption name DirichletAlpha value 0.15",
		"setoption name DirichletEpsilon value 0.5",
		"setoption name Seed value 11",
		"setoption name Simulations value -3",
		"setoption name Bogus value 1",
	}, "\n")+"\n")

	if u.opts.Simulations != 64 || u.opts.CPuct != 2.5 || u.opts.Seed != 11 {
		t.Errorf("options %+v", u.opts)
	}
	if !u.useNoise || u.dirichlet.Alpha != 0.15 || u.dirichlet.Epsilon != 0.5 {
		t.Errorf("noise %v %+v", u.useNoise, u.dirichlet)
	}
	if lastWithPrefix(lines, "info string invalid Simulations") == "" {
		t.Error("bad Simulations value not reported")
	}
	if lastWithPrefix(lines, "info string unknown option") == "" {
		t.Error("unknown option not reported")
	}
}

func TestAdvertisedOptionsAccepted(t *testing.T) {
	_, lines := run(t, "uci\n")

	var script []string
	names := map[string]bool{}
	for _, line := range lines {
		fields := strings.Fields(line)
		if len(fields) < 6 || fields[0] != "option" || fields[1] != "name" {
			continue
		}
		name := fields[2]
		def := ""
		for i := 3; i+1 < len(fields); i++ {
			if fields[i] == "default" {
				def = fields[i+1]
				break
			}
		}
		names[name] = true
		script = append(script, "setoption name "+name+" value "+def)
	}
	if !names["CPUProfile"] || !names["ModelFile"] {
		t.Fatalf("options advertised: %v", names)
	}

	_, lines = run(t, strings.Join(script, "\n")+"\n")
	for _, line := range lines {
		if strings.HasPrefix(line, "info string unknown option") || strings.HasPrefix(line, "info string invalid") {
			t.Errorf("advertised default rejected: %q", line)
		}
	}
}

func TestModelFileOption(t *testing.T) {
	path := filepath.Join(t.TempDir(), "net.bin")
	m := network.NewModel()
	m.InitRandom(4)
	if err := m.Save(path); err != nil {
		t.Fatal(err)
	}

	u, lines := run(t, "setoption name ModelFile value "+path+"\ngo nodes 20\n")
	if _, ok := u.engine.Evaluator().(*network.Model); !ok {
		t.Errorf("evaluator is %T after loading a model", u.engine.Evaluator())
	}
	if lastWithPrefix(lines, "bestmove ") == "" {
		t.Error("no bestmove with loaded model")
	}

	u, lines = run(t, "setoption name ModelFile value "+filepath.Join(t.TempDir(), "missing.bin")+"\n")
	if _, ok := u.engine.Evaluator().(network.Uniform); !ok {
		t.Error("failed load replaced the evaluator")
	}
	if lastWithPrefix(lines, "info string failed to load model") == "" {
		t.Error("load failure not reported")
	}
}

func TestPerft(t *testing.T) {
	_, lines := run(t, "position startpos\nperft 3\n")
	if got := lastWithPrefix(lines, "Nodes: "); got != "Nodes: 8902" {
		t.Errorf("got %q", got)
	}
	if lastWithPrefix(lines, "e2e4: ") != "e2e4: 600" {
		t.Errorf("divide line for e2e4 = %q", lastWithPrefix(lines, "e2e4: "))
	}
}

func TestCentipawns(t *testing.T) {
	tests := []struct {
		q    float64
		want int
	}{
		{0, 0},
		{1, centipawns(0.999)},
		{-1, -centipawns(0.999)},
	}
	for _, tc := range tests {
		if got := centipawns(tc.q); got != tc.want {
			t.Errorf("centipawns(%v) = %d, want %d", tc.q, got, tc.want)
		}
	}
	if centipawns(0.5) <= 0 || centipawns(0.5) >= centipawns(0.9) {
		t.Error("centipawns not increasing")
	}
}
