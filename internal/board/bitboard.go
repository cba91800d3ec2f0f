package board

import (
	"math/bits"
	"strings"
)

// Bitboard is a set of squares, bit i set meaning square i is a member.
type Bitboard uint64

const (
	FileA Bitboard = 0x0101010101010101
	FileH Bitboard = FileA << 7

	Rank1 Bitboard = 0xFF
	Rank2 Bitboard = Rank1 << 8
	Rank4 Bitboard = Rank1 << 24
	Rank5 Bitboard = Rank1 << 32
	Rank7 Bitboard = Rank1 << 48
	Rank8 Bitboard = Rank1 << 56

	notFileA Bitboard = ^FileA
	notFileH Bitboard = ^FileH

	// LightSquares holds every light square (h1, a2, ...).
	LightSquares Bitboard = 0x55AA55AA55AA55AA
)

// FileMask and RankMask index the single-file and single-rank masks.
var (
	FileMask [8]Bitboard
	RankMask [8]Bitboard
)

func init() {
	for i := 0; i < 8; i++ {
		FileMask[i] = FileA << i
		RankMask[i] = Rank1 << (8 * i)
	}
}

// SquareBB returns the set containing only sq.
func SquareBB(sq Square) Bitboard {
	return 1 << sq
}

// IsSet reports whether sq is a member.
func (b Bitboard) IsSet(sq Square) bool {
	return b&(1<<sq) != 0
}

// PopCount returns the number of members.
func (b Bitboard) PopCount() int {
	return bits.OnesCount64(uint64(b))
}

// LSB returns the lowest member, or NoSquare for the empty set.
func (b Bitboard) LSB() Square {
	if b == 0 {
		return NoSquare
	}
	return Square(bits.TrailingZeros64(uint64(b)))
}

// PopLSB removes and returns the lowest member.
func (b *Bitboard) PopLSB() Square {
	sq := b.LSB()
	*b &= *b - 1
	return sq
}

// Squares lists the members in ascending order.
func (b Bitboard) Squares() []Square {
	out := make([]Square, 0, b.PopCount())
	for b != 0 {
		out = append(out, b.PopLSB())
	}
	return out
}

// Shifts by one step in a compass direction, dropping bits that would wrap
// around a board edge.

func (b Bitboard) North() Bitboard     { return b << 8 }
func (b Bitboard) South() Bitboard     { return b >> 8 }
func (b Bitboard) East() Bitboard      { return (b << 1) & notFileA }
func (b Bitboard) West() Bitboard      { return (b >> 1) & notFileH }
func (b Bitboard) NorthEast() Bitboard { return (b << 9) & notFileA }
func (b Bitboard) NorthWest() Bitboard { return (b << 7) & notFileH }
func (b Bitboard) SouthEast() Bitboard { return (b >> 7) & notFileA }
func (b Bitboard) SouthWest() Bitboard { return (b >> 9) & notFileH }

// String renders the set as an 8x8 grid, rank 8 first.
func (b Bitboard) String() string {
	var sb strings.Builder
	for rank := 7; rank >= 0; rank-- {
		for file := 0; file < 8; file++ {
			if b.IsSet(NewSquare(file, rank)) {
				sb.WriteByte('1')
			} else {
				sb.WriteByte('.')
			}
			if file < 7 {
				sb.WriteByte(' ')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
