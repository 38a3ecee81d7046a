package token

import "math/bits"

// Set is a set of token types addressed by their vocabulary index. The zero
// value is an empty set. Sets from different vocabularies must not be mixed.
type Set struct {
	words []uint64
}

// NewSet returns a set holding the given types.
func NewSet(types ...*Type) Set {
	var s Set
	for _, t := range types {
		s.Add(t)
	}
	return s
}

// FullSet returns a set containing every index below n.
func FullSet(n int) Set {
	s := Set{words: make([]uint64, (n+63)/64)}
	for i := 0; i < n; i++ {
		s.words[i/64] |= 1 << (uint(i) % 64)
	}
	return s
}

func (s *Set) Add(t *Type) {
	if t == nil {
		return
	}
	s.addIndex(t.index)
}

func (s *Set) addIndex(i int) {
	w := i / 64
	for len(s.words) <= w {
		s.words = append(s.words, 0)
	}
	s.words[w] |= 1 << (uint(i) % 64)
}

func (s Set) Has(t *Type) bool {
	if t == nil {
		return false
	}
	w := t.index / 64
	if w >= len(s.words) {
		return false
	}
	return s.words[w]&(1<<(uint(t.index)%64)) != 0
}

// Union adds every member of o to s and reports whether s changed.
func (s *Set) Union(o Set) bool {
	changed := false
	for len(s.words) < len(o.words) {
		s.words = append(s.words, 0)
	}
	for i, w := range o.words {
		merged := s.words[i] | w
		if merged != s.words[i] {
			s.words[i] = merged
			changed = true
		}
	}
	return changed
}

// Intersect keeps only the members of s that are also in o and reports
// whether s changed.
func (s *Set) Intersect(o Set) bool {
	changed := false
	for i := range s.words {
		var w uint64
		if i < len(o.words) {
			w = o.words[i]
		}
		kept := s.words[i] & w
		if kept != s.words[i] {
			s.words[i] = kept
			changed = true
		}
	}
	return changed
}

func (s Set) Clone() Set {
	if len(s.words) == 0 {
		return Set{}
	}
	words := make([]uint64, len(s.words))
	copy(words, s.words)
	return Set{words: words}
}

func (s Set) Len() int {
	n := 0
	for _, w := range s.words {
		n += bits.OnesCount64(w)
	}
	return n
}

func (s Set) IsEmpty() bool {
	for _, w := range s.words {
		if w != 0 {
			return false
		}
	}
	return true
}

func (s Set) Equal(o Set) bool {
	n := len(s.words)
	if len(o.words) > n {
		n = len(o.words)
	}
	for i := 0; i < n; i++ {
		var a, b uint64
		if i < len(s.words) {
			a = s.words[i]
		}
		if i < len(o.words) {
			b = o.words[i]
		}
		if a != b {
			return false
		}
	}
	return true
}

// Indexes returns the member indexes in ascending order.
func (s Set) Indexes() []int {
	var out []int
	for wi, w := range s.words {
		for w != 0 {
			b := bits.TrailingZeros64(w)
			out = append(out, wi*64+b)
			w &^= 1 << uint(b)
		}
	}
	return out
}
