package board

import (
	"fmt"
	"math/bits"
)

// Magic holds the fancy-magic lookup data for one square:
// attacks = table[((occupied & Mask) * Magic) >> Shift].
type Magic struct {
	Mask  Bitboard
	Magic uint64
	Shift uint8
	table []Bitboard
}

func (m *Magic) index(occupied Bitboard) uint64 {
	return (uint64(occupied&m.Mask) * m.Magic) >> m.Shift
}

var (
	bishopMagics [64]Magic
	rookMagics   [64]Magic

	// Backing storage shared by the per-square slices.
	bishopTable [5248]Bitboard
	rookTable   [102400]Bitboard
)

var (
	bishopDirs = [4][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
	rookDirs   = [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
)

// magicRand is the xorshift64* generator used for the magic search. Seeded
// with a constant so every process builds identical tables.
type magicRand uint64

func (r *magicRand) next() uint64 {
	x := uint64(*r)
	x ^= x >> 12
	x ^= x << 25
	x ^= x >> 27
	*r = magicRand(x)
	return x * 2685821657736338717
}

// sparse returns a candidate with few bits set; those make good magics.
func (r *magicRand) sparse() uint64 {
	return r.next() & r.next() & r.next()
}

func initMagics() {
	rng := magicRand(0x5DEECE66D1234567)
	initSliderMagics(&bishopMagics, bishopTable[:], bishopDirs, &rng)
	initSliderMagics(&rookMagics, rookTable[:], rookDirs, &rng)
}

// initSliderMagics finds, for every square, a multiplier that maps every
// subset of the relevant-occupancy mask to a slot holding the correct attack
// set. Slots may be shared only when the attack sets agree.
func initSliderMagics(magics *[64]Magic, storage []Bitboard, dirs [4][2]int, rng *magicRand) {
	offset := 0
	var occupancies, attacks [4096]Bitboard
	var epoch [4096]int
	attempt := 0

	for sq := A1; sq <= H8; sq++ {
		mask := relevantMask(sq, dirs)
		n := mask.PopCount()
		size := 1 << n

		for i := 0; i < size; i++ {
			occupancies[i] = occupancyFromIndex(i, mask)
			attacks[i] = slidingAttacks(sq, occupancies[i], dirs)
		}

		m := &magics[sq]
		m.Mask = mask
		m.Shift = uint8(64 - n)
		if offset+size > len(storage) {
			panic(fmt.Sprintf("board: magic table overflow at %s", sq))
		}
		m.table = storage[offset : offset+size]

		for {
			candidate := rng.sparse()
			if bits.OnesCount64((uint64(mask)*candidate)>>56) < 6 {
				continue
			}
			m.Magic = candidate
			attempt++

			ok := true
			for i := 0; i < size; i++ {
				idx := m.index(occupancies[i])
				if epoch[idx] != attempt {
					epoch[idx] = attempt
					m.table[idx] = attacks[i]
				} else if m.table[idx] != attacks[i] {
					ok = false
					break
				}
			}
			if ok {
				break
			}
		}
		offset += size
	}
}

// relevantMask is the set of squares whose occupancy can change the attacks
// from sq. Edge squares at the end of each ray never block anything further.
func relevantMask(sq Square, dirs [4][2]int) Bitboard {
	var mask Bitboard
	for _, d := range dirs {
		f, r := sq.File()+d[0], sq.Rank()+d[1]
		for f+d[0] >= 0 && f+d[0] <= 7 && r+d[1] >= 0 && r+d[1] <= 7 {
			mask |= SquareBB(NewSquare(f, r))
			f += d[0]
			r += d[1]
		}
	}
	return mask
}

// occupancyFromIndex spreads the bits of index over the members of mask.
func occupancyFromIndex(index int, mask Bitboard) Bitboard {
	var occ Bitboard
	for i := 0; mask != 0; i++ {
		sq := mask.PopLSB()
		if index&(1<<i) != 0 {
			occ |= SquareBB(sq)
		}
	}
	return occ
}

// slidingAttacks casts rays from sq, stopping at (and including) the first
// occupied square in each direction.
func slidingAttacks(sq Square, occupied Bitboard, dirs [4][2]int) Bitboard {
	var attacks Bitboard
	for _, d := range dirs {
		f, r := sq.File()+d[0], sq.Rank()+d[1]
		for f >= 0 && f <= 7 && r >= 0 && r <= 7 {
			s := NewSquare(f, r)
			attacks |= SquareBB(s)
			if occupied.IsSet(s) {
				break
			}
			f += d[0]
			r += d[1]
		}
	}
	return attacks
}

func bishopAttacksSlow(sq Square, occupied Bitboard) Bitboard {
	return slidingAttacks(sq, occupied, bishopDirs)
}

func rookAttacksSlow(sq Square, occupied Bitboard) Bitboard {
	return slidingAttacks(sq, occupied, rookDirs)
}
