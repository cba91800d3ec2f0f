package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/hailam/chesszero/internal/board"
	"github.com/hailam/chesszero/internal/engine"
)

// Storage keys
const (
	keyStats      = "stats"
	prefixSession = "session/"
	prefixSample  = "sample/"
)

// ErrNotFound is returned when a session does not exist.
var ErrNotFound = errors.New("storage: not found")

// GameRecord is the stored form of an engine.Game.
type GameRecord struct {
	ID        string    `json:"id"`
	StartFEN  string    `json:"start_fen"`
	Moves     []string  `json:"moves"`
	Status    string    `json:"status"`
	Winner    string    `json:"winner"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PolicyEntry is one non-zero entry of a policy target.
type PolicyEntry struct {
	Index int     `json:"i"`
	Prob  float32 `json:"p"`
}

// Sample is one training target produced by self-play.
type Sample struct {
	GameID     string        `json:"game_id"`
	Ply        int           `json:"ply"`
	FEN        string        `json:"fen"`
	SideToMove string        `json:"stm"`
	Policy     []PolicyEntry `json:"policy"`
	Outcome    float32       `json:"z"`
}

// SparsePolicy keeps the non-zero entries of a dense policy vector.
func SparsePolicy(dense []float32) []PolicyEntry {
	var out []PolicyEntry
	for i, p := range dense {
		if p != 0 {
			out = append(out, PolicyEntry{Index: i, Prob: p})
		}
	}
	return out
}

// DensePolicy expands the sample's policy into a vector of the given size.
func (s *Sample) DensePolicy(size int) []float32 {
	out := make([]float32, size)
	for _, e := range s.Policy {
		if e.Index >= 0 && e.Index < size {
			out[e.Index] = e.Prob
		}
	}
	return out
}

// Stats aggregates finished self-play games.
type Stats struct {
	Games     int `json:"games"`
	WhiteWins int `json:"white_wins"`
	BlackWins int `json:"black_wins"`
	Draws     int `json:"draws"`
	Samples   int `json:"samples"`
}

// DrawRate returns the share of drawn games as a percentage (0-100)
func (s *Stats) DrawRate() float64 {
	if s.Games == 0 {
		return 0
	}
	return float64(s.Draws) / float64(s.Games) * 100
}

// Storage wraps BadgerDB for persistent storage
type Storage struct {
	db *badger.DB

	statsMu sync.Mutex
}

// NewStorage opens the database in the platform data directory.
func NewStorage() (*Storage, error) {
	dbDir, err := GetDatabaseDir()
	if err != nil {
		return nil, err
	}
	return Open(dbDir)
}

// Open opens (or creates) a database in dir.
func Open(dir string) (*Storage, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil // Disable logging
	return open(opts)
}

// OpenInMemory returns a database that lives only as long as the process.
func OpenInMemory() (*Storage, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	return open(opts)
}

func open(opts badger.Options) (*Storage, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("storage: open: %w", err)
	}
	return &Storage{db: db}, nil
}

// Close closes the database
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func sessionKey(id string) []byte {
	return []byte(prefixSession + id)
}

// sampleKey zero-pads the ply so keys iterate in move order.
func sampleKey(gameID string, ply int) []byte {
	return []byte(fmt.Sprintf("%s%s/%06d", prefixSample, gameID, ply))
}

// NewRecord snapshots a game.
func NewRecord(g *engine.Game) *GameRecord {
	moves := g.Moves()
	rec := &GameRecord{
		ID:        g.ID,
		StartFEN:  g.StartFEN,
		Moves:     make([]string, len(moves)),
		Status:    g.Status().String(),
		UpdatedAt: time.Now(),
	}
	for i, m := range moves {
		rec.Moves[i] = m.String()
	}
	if w := g.Winner(); w != board.NoColor {
		rec.Winner = w.String()
	}
	return rec
}

// Replay rebuilds the game by playing the recorded moves from the start
// position.
func (r *GameRecord) Replay() (*engine.Game, error) {
	g, err := engine.NewGame(r.ID, r.StartFEN)
	if err != nil {
		return nil, fmt.Errorf("storage: session %q: %w", r.ID, err)
	}
	for i, m := range r.Moves {
		if err := g.ApplyUCI(m); err != nil {
			return nil, fmt.Errorf("storage: session %q move %d: %w", r.ID, i+1, err)
		}
	}
	return g, nil
}

// SaveGame stores the game under its ID, replacing any earlier version.
func (s *Storage) SaveGame(g *engine.Game) error {
	if g.ID == "" {
		return errors.New("storage: game has no id")
	}
	data, err := json.Marshal(NewRecord(g))
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(sessionKey(g.ID), data)
	})
}

// LoadRecord returns the stored record for id, or ErrNotFound.
func (s *Storage) LoadRecord(id string) (*GameRecord, error) {
	rec := &GameRecord{}

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(sessionKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, rec)
		})
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// LoadGame loads and replays the session with the given id.
func (s *Storage) LoadGame(id string) (*engine.Game, error) {
	rec, err := s.LoadRecord(id)
	if err != nil {
		return nil, err
	}
	return rec.Replay()
}

// ListGames returns every stored record ordered by id.
func (s *Storage) ListGames() ([]GameRecord, error) {
	var out []GameRecord

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefixSession)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var rec GameRecord
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); err != nil {
				return err
			}
			out = append(out, rec)
		}
		return nil
	})

	return out, err
}

// DeleteGame removes a session and its samples.
func (s *Storage) DeleteGame(id string) error {
	keys, err := s.keysWithPrefix(prefixSample + id + "/")
	if err != nil {
		return err
	}
	keys = append(keys, sessionKey(id))

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()
	for _, k := range keys {
		if err := wb.Delete(k); err != nil {
			return err
		}
	}
	return wb.Flush()
}

func (s *Storage) keysWithPrefix(prefix string) ([][]byte, error) {
	var keys [][]byte
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(prefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	return keys, err
}

// AppendSamples writes samples in one batch.
func (s *Storage) AppendSamples(samples []Sample) error {
	wb := s.db.NewWriteBatch()
	defer wb.Cancel()

	for i := range samples {
		sm := &samples[i]
		if sm.GameID == "" || strings.Contains(sm.GameID, "/") {
			return fmt.Errorf("storage: invalid sample game id %q", sm.GameID)
		}
		data, err := json.Marshal(sm)
		if err != nil {
			return err
		}
		if err := wb.Set(sampleKey(sm.GameID, sm.Ply), data); err != nil {
			return err
		}
	}
	return wb.Flush()
}

// Samples returns the samples of one game in ply order, or of every game
// when gameID is empty.
func (s *Storage) Samples(gameID string) ([]Sample, error) {
	prefix := prefixSample
	if gameID != "" {
		prefix += gameID + "/"
	}

	var out []Sample
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var sm Sample
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &sm)
			}); err != nil {
				return err
			}
			out = append(out, sm)
		}
		return nil
	})

	return out, err
}

// LoadStats loads game statistics, returns empty stats if not found
func (s *Storage) LoadStats() (*Stats, error) {
	stats := &Stats{}

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyStats))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil // Use empty stats
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, stats)
		})
	})

	return stats, err
}

// RecordResult adds a finished game to the statistics. winner is NoColor
// for a draw.
func (s *Storage) RecordResult(winner board.Color, samples int) error {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()

	stats, err := s.LoadStats()
	if err != nil {
		return err
	}

	stats.Games++
	stats.Samples += samples
	switch winner {
	case board.White:
		stats.WhiteWins++
	case board.Black:
		stats.BlackWins++
	default:
		stats.Draws++
	}

	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyStats), data)
	})
}
