package cfg

import "math/bits"

// RegSet is a compact bitset over interned CFG-register indices, adapted
// from the teacher's backend/regalloc bitset idiom (reg.go) so that
// liveness union/equality are O(words) instead of walking a hashed
// collection.
type RegSet struct {
	words []uint64
}

func (s *RegSet) has(i int) bool {
	w := i / 64
	if w >= len(s.words) {
		return false
	}
	return s.words[w]&(1<<uint(i%64)) != 0
}

func (s *RegSet) set(i int) {
	w := i / 64
	if w >= len(s.words) {
		grown := make([]uint64, w+1)
		copy(grown, s.words)
		s.words = grown
	}
	s.words[w] |= 1 << uint(i%64)
}

// Clone returns an independent copy of s.
func (s *RegSet) Clone() *RegSet {
	c := &RegSet{words: make([]uint64, len(s.words))}
	copy(c.words, s.words)
	return c
}

// Union sets every bit of other into s, reporting whether s changed (the
// liveness fixed-point loop detects convergence with Equal instead).
func (s *RegSet) Union(other *RegSet) (changed bool) {
	if other == nil {
		return false
	}
	if len(other.words) > len(s.words) {
		grown := make([]uint64, len(other.words))
		copy(grown, s.words)
		s.words = grown
	}
	for i, w := range other.words {
		if s.words[i]|w != s.words[i] {
			s.words[i] |= w
			changed = true
		}
	}
	return changed
}

// Add sets bit i, reporting whether it was newly set.
func (s *RegSet) Add(i int) bool {
	if s.has(i) {
		return false
	}
	s.set(i)
	return true
}

// Remove clears bit i.
func (s *RegSet) Remove(i int) {
	w := i / 64
	if w >= len(s.words) {
		return
	}
	s.words[w] &^= 1 << uint(i%64)
}

// Contains reports whether i is a member.
func (s *RegSet) Contains(i int) bool { return s.has(i) }

// Equal reports semantic set equality (spec §4.3).
func (s *RegSet) Equal(other *RegSet) bool {
	n := len(s.words)
	if len(other.words) > n {
		n = len(other.words)
	}
	for i := 0; i < n; i++ {
		var a, b uint64
		if i < len(s.words) {
			a = s.words[i]
		}
		if i < len(other.words) {
			b = other.words[i]
		}
		if a != b {
			return false
		}
	}
	return true
}

// Each calls f for every member index in ascending order.
func (s *RegSet) Each(f func(i int)) {
	for wi, w := range s.words {
		for w != 0 {
			tz := bits.TrailingZeros64(w)
			f(wi*64 + tz)
			w &= w - 1
		}
	}
}

// Len returns the number of members.
func (s *RegSet) Len() int {
	n := 0
	for _, w := range s.words {
		n += bits.OnesCount64(w)
	}
	return n
}

// NewRegSet returns an empty RegSet.
func NewRegSet() *RegSet { return &RegSet{} }
