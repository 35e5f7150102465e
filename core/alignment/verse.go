package alignment

import (
	"fmt"
	"sort"

	alerrors "github.com/FocuswithJustin/JuniperAligner/core/errors"
)

// Verse is the alignment data for one verse.
type Verse struct {
	// SourceTokens is the original-language sentence.
	SourceTokens Sentence `json:"sourceTokens"`

	// TargetTokens is the translation sentence.
	TargetTokens Sentence `json:"targetTokens"`

	// Alignments are the confirmed alignments.
	Alignments []Alignment `json:"alignments"`

	// Suggestions are unconfirmed machine alignments.
	Suggestions []Alignment `json:"suggestions"`
}

// NewVerse creates a verse with every source token in its own unaligned
// alignment.
func NewVerse(source, target Sentence) *Verse {
	v := &Verse{
		SourceTokens: source.Clone(),
		TargetTokens: target.Clone(),
		Suggestions:  []Alignment{},
	}
	v.Alignments = defaultAlignments(len(source))
	return v
}

func defaultAlignments(sourceCount int) []Alignment {
	out := make([]Alignment, sourceCount)
	for i := range out {
		out[i] = Alignment{SourceNgram: Ngram{i}, TargetNgram: Ngram{}}
	}
	return out
}

// Clone returns a deep copy of the verse.
func (v *Verse) Clone() *Verse {
	if v == nil {
		return nil
	}
	return &Verse{
		SourceTokens: v.SourceTokens.Clone(),
		TargetTokens: v.TargetTokens.Clone(),
		Alignments:   cloneAlignments(v.Alignments),
		Suggestions:  cloneAlignments(v.Suggestions),
	}
}

// WordBank returns the target tokens not aligned to anything, in sentence order.
func (v *Verse) WordBank() Sentence {
	used := make(map[int]bool)
	for _, a := range v.Alignments {
		for _, p := range a.TargetNgram {
			used[p] = true
		}
	}
	bank := Sentence{}
	for _, t := range v.TargetTokens {
		if !used[t.Position] {
			bank = append(bank, t)
		}
	}
	return bank
}

// Validate checks the alignment invariants of the verse.
func (v *Verse) Validate() error {
	sourceCount := len(v.SourceTokens)
	targetCount := len(v.TargetTokens)
	seenSource := make(map[int]int)
	seenTarget := make(map[int]int)
	lastMin := -1

	for i, a := range v.Alignments {
		if a.SourceNgram.IsEmpty() {
			return fmt.Errorf("alignment %d: %w", i, alerrors.NewValidation("sourceNgram", "must not be empty"))
		}
		if !sort.IntsAreSorted(a.SourceNgram) || !sort.IntsAreSorted(a.TargetNgram) {
			return fmt.Errorf("alignment %d: %w", i, alerrors.NewValidation("ngram", "must be sorted"))
		}
		if a.SourceNgram.Min() < lastMin {
			return fmt.Errorf("alignment %d: %w", i, alerrors.NewValidation("alignments", "not ordered by source position"))
		}
		lastMin = a.SourceNgram.Min()

		for _, p := range a.SourceNgram {
			if p < 0 || p >= sourceCount {
				return fmt.Errorf("alignment %d: %w", i, alerrors.NewValidation("sourceNgram", fmt.Sprintf("position %d out of range", p)))
			}
			if prev, dup := seenSource[p]; dup {
				return fmt.Errorf("alignment %d: %w", i, alerrors.NewValidation("sourceNgram", fmt.Sprintf("position %d already in alignment %d", p, prev)))
			}
			seenSource[p] = i
		}
		for _, p := range a.TargetNgram {
			if p < 0 || p >= targetCount {
				return fmt.Errorf("alignment %d: %w", i, alerrors.NewValidation("targetNgram", fmt.Sprintf("position %d out of range", p)))
			}
			if prev, dup := seenTarget[p]; dup {
				return fmt.Errorf("alignment %d: %w", i, alerrors.NewValidation("targetNgram", fmt.Sprintf("position %d already in alignment %d", p, prev)))
			}
			seenTarget[p] = i
		}
	}

	for p := 0; p < sourceCount; p++ {
		if _, ok := seenSource[p]; !ok {
			return alerrors.NewValidation("sourceNgram", fmt.Sprintf("source position %d is not covered", p))
		}
	}
	return nil
}

// alignment returns a pointer to the alignment at index, or a NotFoundError.
func (v *Verse) alignment(index int) (*Alignment, error) {
	if index < 0 || index >= len(v.Alignments) {
		return nil, alerrors.NewNotFound("alignment", fmt.Sprintf("%d", index))
	}
	return &v.Alignments[index], nil
}

// Chapter maps verse numbers to verse data.
type Chapter map[int]*Verse

// State maps chapter numbers to chapters.
//
// Transitions never mutate a State in place: the chapter and verse on the
// path of a change are copied, everything else is shared.
type State map[int]Chapter

// Verse returns the verse data, if loaded.
func (s State) Verse(chapter, verse int) (*Verse, bool) {
	ch, ok := s[chapter]
	if !ok {
		return nil, false
	}
	v, ok := ch[verse]
	return v, ok && v != nil
}

// withVerse returns a copy of s with one verse replaced.
func (s State) withVerse(chapter, verse int, v *Verse) State {
	next := make(State, len(s)+1)
	for k, ch := range s {
		next[k] = ch
	}
	ch := make(Chapter, len(s[chapter])+1)
	for k, existing := range s[chapter] {
		ch[k] = existing
	}
	ch[verse] = v
	next[chapter] = ch
	return next
}

// withChapter returns a copy of s with one chapter replaced.
func (s State) withChapter(chapter int, ch Chapter) State {
	next := make(State, len(s)+1)
	for k, existing := range s {
		next[k] = existing
	}
	next[chapter] = ch
	return next
}

// verseForUpdate returns a deep copy of the verse to modify.
func (s State) verseForUpdate(chapter, verse int) (*Verse, error) {
	v, ok := s.Verse(chapter, verse)
	if !ok {
		return nil, alerrors.NewNotFound("verse", fmt.Sprintf("%d:%d", chapter, verse))
	}
	return v.Clone(), nil
}
