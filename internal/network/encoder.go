// Package network defines the evaluator contract used by the search and its
// implementations: uniform and random baselines plus a learned
// policy/value model.
package network

import "github.com/hailam/chesszero/internal/board"

const (
	// PiecePlanes is the number of planes per encoded position: one per
	// (colour, piece type), white pawn first and black king last.
	PiecePlanes = 12
	// HistoryLength is how many positions, current first, the model sees.
	HistoryLength = 2
	// NumPlanes counts the history planes plus the side-to-move plane.
	NumPlanes = PiecePlanes*HistoryLength + 1
	// InputSize is the flattened length of a tensor.
	InputSize = NumPlanes * 64
)

// Planes is the encoding of a single position.
type Planes [PiecePlanes]board.Bitboard

// Encode returns the piece planes of pos. Squares are not mirrored for black.
func Encode(pos *board.Position) Planes {
	var p Planes
	for c := board.White; c <= board.Black; c++ {
		for pt := board.Pawn; pt <= board.King; pt++ {
			p[int(c)*6+int(pt)] = pos.Pieces[c][pt]
		}
	}
	return p
}

// Tensor flattens a history into the model input, channel-major with
// square index as the inner axis. history is ordered oldest to newest; the
// newest HistoryLength entries are used, most recent first, and missing
// entries are left zero. The final channel is all ones when white is to
// move.
func Tensor(history []Planes, stm board.Color) []float32 {
	out := make([]float32, InputSize)
	for k := 0; k < HistoryLength && k < len(history); k++ {
		planes := history[len(history)-1-k]
		for i, bb := range planes {
			base := (k*PiecePlanes + i) * 64
			for bb != 0 {
				out[base+int(bb.PopLSB())] = 1
			}
		}
	}
	if stm == board.White {
		colour := out[(NumPlanes-1)*64:]
		for i := range colour {
			colour[i] = 1
		}
	}
	return out
}
