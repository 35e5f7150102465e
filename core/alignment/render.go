package alignment

import (
	"fmt"

	alerrors "github.com/FocuswithJustin/JuniperAligner/core/errors"
)

// RenderedAlignment is an alignment as displayed: a confirmed alignment,
// possibly overlaid with a suggestion. It is derived and never persisted.
type RenderedAlignment struct {
	// SourceNgram is the displayed source group.
	SourceNgram Ngram `json:"sourceNgram"`

	// TargetNgram is the displayed target group, including suggested tokens.
	TargetNgram Ngram `json:"targetNgram"`

	// Alignments are the indices of the confirmed alignments behind this entry.
	Alignments []int `json:"alignments"`

	// Suggestion is the index of the suggestion shown, if any.
	Suggestion *int `json:"suggestion,omitempty"`

	// SuggestedTargetTokens are the target positions proposed by the
	// suggestion and not yet confirmed.
	SuggestedTargetTokens Ngram `json:"suggestedTargetTokens,omitempty"`
}

// IsSuggestion reports whether the entry shows a suggestion.
func (r RenderedAlignment) IsSuggestion() bool {
	return r.Suggestion != nil
}

// ConfirmedTargetNgram returns the target positions that are confirmed.
func (r RenderedAlignment) ConfirmedTargetNgram() Ngram {
	return r.TargetNgram.Difference(r.SuggestedTargetTokens)
}

func confirmedEntry(index int, a Alignment) RenderedAlignment {
	return RenderedAlignment{
		SourceNgram: a.SourceNgram.Clone(),
		TargetNgram: a.TargetNgram.Clone(),
		Alignments:  []int{index},
	}
}

func suggestedEntry(alignments []int, suggestion int, source, target, suggested Ngram) RenderedAlignment {
	s := suggestion
	return RenderedAlignment{
		SourceNgram:           source.Clone(),
		TargetNgram:           target.Clone(),
		Alignments:            alignments,
		Suggestion:            &s,
		SuggestedTargetTokens: suggested.Clone(),
	}
}

// renderer holds the bookkeeping for one Render call.
type renderer struct {
	alignments  []Alignment
	suggestions []Alignment

	// owner maps a source position to the first suggestion that covers it.
	owner map[int]int

	// used holds every target position that is confirmed or already
	// offered by an earlier rendered suggestion.
	used map[int]bool
}

// Render overlays suggestions on the confirmed alignments.
//
// Confirmed alignments are authoritative. A suggestion is shown on an
// alignment when it has the same source ngram and proposes a superset of the
// confirmed target tokens; it merges consecutive unaligned alignments whose
// sources it spans exactly; and it splits an unaligned alignment when two or
// more suggestions partition its sources. Aligned alignments are never
// merged or split. A target token confirmed anywhere, or offered by an
// earlier entry, is never offered again.
//
// Suggestions that overlap each other inside one unaligned alignment leave
// it unsplit.
//
// A suggestion that partially overlaps an alignment's source ngram, or a
// set of suggestions that covers only part of an unaligned alignment, is
// rejected with an OverlayError.
func Render(alignments, suggestions []Alignment, sourceTokenCount int) ([]RenderedAlignment, error) {
	r := &renderer{
		alignments:  alignments,
		suggestions: suggestions,
		owner:       make(map[int]int),
		used:        make(map[int]bool),
	}

	for i, a := range alignments {
		for _, p := range a.SourceNgram {
			if p < 0 || p >= sourceTokenCount {
				return nil, &alerrors.OverlayError{Alignment: i, Suggestion: -1, Reason: fmt.Sprintf("source position %d out of range", p)}
			}
		}
		for _, p := range a.TargetNgram {
			r.used[p] = true
		}
	}
	for si, s := range suggestions {
		for _, p := range s.SourceNgram {
			if p < 0 || p >= sourceTokenCount {
				return nil, &alerrors.OverlayError{Alignment: -1, Suggestion: si, Reason: fmt.Sprintf("source position %d out of range", p)}
			}
			if _, taken := r.owner[p]; !taken {
				r.owner[p] = si
			}
		}
	}

	rendered := make([]RenderedAlignment, 0, len(alignments))
	for i := 0; i < len(alignments); i++ {
		entries, consumed, err := r.renderAlignment(i)
		if err != nil {
			return nil, err
		}
		rendered = append(rendered, entries...)
		i += consumed
	}
	return rendered, nil
}

// touching returns, in source order, the suggestions owning any source
// position of the alignment.
func (r *renderer) touching(a Alignment) []int {
	var out []int
	seen := make(map[int]bool)
	for _, p := range a.SourceNgram {
		si, ok := r.owner[p]
		if !ok || seen[si] {
			continue
		}
		seen[si] = true
		out = append(out, si)
	}
	return out
}

// claim marks the positions used if none of them is used yet, and reports
// whether it did.
func (r *renderer) claim(positions Ngram) bool {
	for _, p := range positions {
		if r.used[p] {
			return false
		}
	}
	for _, p := range positions {
		r.used[p] = true
	}
	return true
}

// renderAlignment renders alignment i and returns how many following
// alignments were merged into it.
func (r *renderer) renderAlignment(i int) ([]RenderedAlignment, int, error) {
	a := r.alignments[i]
	touching := r.touching(a)
	if len(touching) == 0 {
		return []RenderedAlignment{confirmedEntry(i, a)}, 0, nil
	}

	if len(touching) == 1 {
		si := touching[0]
		s := r.suggestions[si]
		switch {
		case s.SourceNgram.Equal(a.SourceNgram):
			return []RenderedAlignment{r.match(i, si)}, 0, nil
		case a.SourceNgram.SubsetOf(s.SourceNgram):
			return r.merge(i, si)
		case !s.SourceNgram.SubsetOf(a.SourceNgram):
			return nil, 0, &alerrors.OverlayError{Alignment: i, Suggestion: si, Reason: "suggestion partially overlaps the alignment"}
		}
	}

	return r.split(i, touching)
}

// match renders a suggestion with exactly the alignment's source ngram.
func (r *renderer) match(i, si int) RenderedAlignment {
	a := r.alignments[i]
	s := r.suggestions[si]
	if !a.TargetNgram.SubsetOf(s.TargetNgram) {
		return confirmedEntry(i, a)
	}
	suggested := s.TargetNgram.Difference(a.TargetNgram)
	if suggested.IsEmpty() || !r.claim(suggested) {
		return confirmedEntry(i, a)
	}
	return suggestedEntry([]int{i}, si, a.SourceNgram, s.TargetNgram, suggested)
}

// merge renders a suggestion spanning alignment i and the alignments
// after it.
func (r *renderer) merge(i, si int) ([]RenderedAlignment, int, error) {
	a := r.alignments[i]
	s := r.suggestions[si]

	covered := Ngram{}
	members := []int{}
	for j := i; j < len(r.alignments) && covered.Len() < s.SourceNgram.Len(); j++ {
		b := r.alignments[j]
		if !b.SourceNgram.Intersects(s.SourceNgram) {
			break
		}
		if !b.SourceNgram.SubsetOf(s.SourceNgram) {
			return nil, 0, &alerrors.OverlayError{Alignment: j, Suggestion: si, Reason: "suggestion partially overlaps the alignment"}
		}
		covered = covered.Union(b.SourceNgram)
		members = append(members, j)
	}

	mergeable := covered.Equal(s.SourceNgram)
	for _, j := range members {
		if r.alignments[j].IsAligned() {
			mergeable = false
		}
	}
	if !mergeable || s.TargetNgram.IsEmpty() || !r.claim(s.TargetNgram) {
		return []RenderedAlignment{confirmedEntry(i, a)}, 0, nil
	}
	return []RenderedAlignment{suggestedEntry(members, si, s.SourceNgram, s.TargetNgram, s.TargetNgram)}, len(members) - 1, nil
}

// split renders several suggestions that partition alignment i.
func (r *renderer) split(i int, touching []int) ([]RenderedAlignment, int, error) {
	a := r.alignments[i]
	covered := Ngram{}
	disjoint := true
	for _, si := range touching {
		s := r.suggestions[si]
		if !s.SourceNgram.SubsetOf(a.SourceNgram) {
			return nil, 0, &alerrors.OverlayError{Alignment: i, Suggestion: si, Reason: "suggestion partially overlaps the alignment"}
		}
		if s.SourceNgram.Intersects(covered) {
			disjoint = false
		}
		covered = covered.Union(s.SourceNgram)
	}
	if a.IsAligned() || !disjoint {
		return []RenderedAlignment{confirmedEntry(i, a)}, 0, nil
	}
	if !covered.Equal(a.SourceNgram) {
		return nil, 0, &alerrors.OverlayError{Alignment: i, Suggestion: -1, Reason: "suggestions cover only part of the alignment"}
	}

	entries := make([]RenderedAlignment, 0, len(touching))
	for _, si := range touching {
		s := r.suggestions[si]
		if s.TargetNgram.IsEmpty() || !r.claim(s.TargetNgram) {
			entries = append(entries, RenderedAlignment{
				SourceNgram: s.SourceNgram.Clone(),
				TargetNgram: Ngram{},
				Alignments:  []int{i},
			})
			continue
		}
		entries = append(entries, suggestedEntry([]int{i}, si, s.SourceNgram, s.TargetNgram, s.TargetNgram))
	}
	return entries, 0, nil
}
