package alignment

import (
	"encoding/json"
	"sort"
)

// Ngram is a sorted set of token positions within one sentence.
type Ngram []int

// NewNgram builds a sorted, de-duplicated ngram.
func NewNgram(positions ...int) Ngram {
	out := make(Ngram, 0, len(positions))
	for _, p := range positions {
		out = out.Insert(p)
	}
	return out
}

// MarshalJSON renders a nil ngram as an empty array.
func (n Ngram) MarshalJSON() ([]byte, error) {
	if n == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]int(n))
}

// UnmarshalJSON sorts and de-duplicates the decoded positions.
func (n *Ngram) UnmarshalJSON(data []byte) error {
	var raw []int
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*n = NewNgram(raw...)
	return nil
}

// Len returns the number of positions.
func (n Ngram) Len() int {
	return len(n)
}

// IsEmpty reports whether the ngram has no positions.
func (n Ngram) IsEmpty() bool {
	return len(n) == 0
}

// Min returns the smallest position, or -1 when empty.
func (n Ngram) Min() int {
	if len(n) == 0 {
		return -1
	}
	return n[0]
}

// Contains reports whether p is in the ngram.
func (n Ngram) Contains(p int) bool {
	i := sort.SearchInts(n, p)
	return i < len(n) && n[i] == p
}

// Insert returns a new ngram with p added in order.
func (n Ngram) Insert(p int) Ngram {
	i := sort.SearchInts(n, p)
	if i < len(n) && n[i] == p {
		return n.Clone()
	}
	out := make(Ngram, 0, len(n)+1)
	out = append(out, n[:i]...)
	out = append(out, p)
	out = append(out, n[i:]...)
	return out
}

// Remove returns a new ngram without p.
func (n Ngram) Remove(p int) Ngram {
	out := make(Ngram, 0, len(n))
	for _, q := range n {
		if q != p {
			out = append(out, q)
		}
	}
	return out
}

// Union returns the sorted union of two ngrams.
func (n Ngram) Union(other Ngram) Ngram {
	out := n.Clone()
	for _, p := range other {
		out = out.Insert(p)
	}
	return out
}

// Difference returns the positions of n that are not in other.
func (n Ngram) Difference(other Ngram) Ngram {
	out := Ngram{}
	for _, p := range n {
		if !other.Contains(p) {
			out = append(out, p)
		}
	}
	return out
}

// Intersects reports whether the ngrams share a position.
func (n Ngram) Intersects(other Ngram) bool {
	for _, p := range n {
		if other.Contains(p) {
			return true
		}
	}
	return false
}

// SubsetOf reports whether every position of n is in other.
func (n Ngram) SubsetOf(other Ngram) bool {
	for _, p := range n {
		if !other.Contains(p) {
			return false
		}
	}
	return true
}

// Equal reports whether both ngrams hold the same positions.
func (n Ngram) Equal(other Ngram) bool {
	if len(n) != len(other) {
		return false
	}
	for i := range n {
		if n[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a non-nil copy.
func (n Ngram) Clone() Ngram {
	out := make(Ngram, len(n))
	copy(out, n)
	return out
}

// Alignment pairs a source ngram with a target ngram.
// An empty target ngram means the source tokens are unaligned.
type Alignment struct {
	SourceNgram Ngram `json:"sourceNgram"`
	TargetNgram Ngram `json:"targetNgram"`
}

// NewAlignment builds an alignment from raw positions.
func NewAlignment(source, target []int) Alignment {
	return Alignment{SourceNgram: NewNgram(source...), TargetNgram: NewNgram(target...)}
}

// IsAligned reports whether any target token is aligned.
func (a Alignment) IsAligned() bool {
	return !a.TargetNgram.IsEmpty()
}

// Clone returns a deep copy.
func (a Alignment) Clone() Alignment {
	return Alignment{SourceNgram: a.SourceNgram.Clone(), TargetNgram: a.TargetNgram.Clone()}
}

// Equal compares both ngrams.
func (a Alignment) Equal(other Alignment) bool {
	return a.SourceNgram.Equal(other.SourceNgram) && a.TargetNgram.Equal(other.TargetNgram)
}

func cloneAlignments(in []Alignment) []Alignment {
	out := make([]Alignment, len(in))
	for i, a := range in {
		out[i] = a.Clone()
	}
	return out
}

func alignmentsEqual(a, b []Alignment) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// sortAlignments orders alignments by ascending minimum source position.
func sortAlignments(alignments []Alignment) {
	sort.SliceStable(alignments, func(i, j int) bool {
		return alignments[i].SourceNgram.Min() < alignments[j].SourceNgram.Min()
	})
}

// indexOfSource returns the alignment whose source ngram holds p, or -1.
func indexOfSource(alignments []Alignment, p int) int {
	for i, a := range alignments {
		if a.SourceNgram.Contains(p) {
			return i
		}
	}
	return -1
}
