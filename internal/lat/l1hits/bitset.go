package l1hits

import (
	"iter"
	"math/bits"
)

// MaxHits is the number of cluster slots a layer can hold.
const MaxHits = 32

// Set is a bitset over the cluster slots of one layer. Bit i set means
// slot i holds an unclaimed cluster. Indices outside [0, MaxHits) are
// ignored by every method.
type Set uint32

// Test reports whether slot i is set.
func (s Set) Test(i int) bool {
	return uint(i) < MaxHits && s&(1<<uint(i)) != 0
}

// Add sets slot i.
func (s *Set) Add(i int) {
	if uint(i) < MaxHits {
		*s |= 1 << uint(i)
	}
}

// Clear unsets slot i.
func (s *Set) Clear(i int) {
	if uint(i) < MaxHits {
		*s &^= 1 << uint(i)
	}
}

// Count returns the number of set slots.
func (s Set) Count() int {
	return bits.OnesCount32(uint32(s))
}

// IsEmpty reports whether no slot is set.
func (s Set) IsEmpty() bool {
	return s == 0
}

// First returns the lowest set slot.
func (s Set) First() (int, bool) {
	if s == 0 {
		return 0, false
	}
	return bits.TrailingZeros32(uint32(s)), true
}

// All iterates the set slots in ascending order.
func (s Set) All() iter.Seq[int] {
	return func(yield func(int) bool) {
		for w := uint32(s); w != 0; w &= w - 1 {
			if !yield(bits.TrailingZeros32(w)) {
				return
			}
		}
	}
}

// Uint32 returns the raw word.
func (s Set) Uint32() uint32 {
	return uint32(s)
}

// firstN returns a set with slots [0, n) set.
func firstN(n int) Set {
	if n >= MaxHits {
		return Set(^uint32(0))
	}
	if n <= 0 {
		return 0
	}
	return Set(uint32(1)<<uint(n) - 1)
}
