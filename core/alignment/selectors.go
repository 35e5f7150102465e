package alignment

import (
	"sort"
	"strings"
)

// IsChapterLoaded reports whether data for the chapter is loaded.
func IsChapterLoaded(s State, chapter int) bool {
	_, ok := s[chapter]
	return ok
}

// TokenAlignment is an alignment expanded to the tokens it covers.
type TokenAlignment struct {
	SourceNgram []Token `json:"sourceNgram"`
	TargetNgram []Token `json:"targetNgram"`
}

func expand(s Sentence, n Ngram) []Token {
	out := make([]Token, 0, n.Len())
	for _, p := range n {
		if p >= 0 && p < len(s) {
			out = append(out, s[p])
		}
	}
	return out
}

// VerseAlignments returns the verse's alignments expanded to tokens, or nil
// if the verse is not loaded.
func VerseAlignments(s State, chapter, verse int) []TokenAlignment {
	v, ok := s.Verse(chapter, verse)
	if !ok {
		return nil
	}
	out := make([]TokenAlignment, 0, len(v.Alignments))
	for _, a := range v.Alignments {
		out = append(out, TokenAlignment{
			SourceNgram: expand(v.SourceTokens, a.SourceNgram),
			TargetNgram: expand(v.TargetTokens, a.TargetNgram),
		})
	}
	return out
}

// ChapterAlignments returns the token expanded alignments of every loaded
// verse in the chapter.
func ChapterAlignments(s State, chapter int) map[int][]TokenAlignment {
	ch, ok := s[chapter]
	if !ok {
		return nil
	}
	out := make(map[int][]TokenAlignment, len(ch))
	for n := range ch {
		if a := VerseAlignments(s, chapter, n); a != nil {
			out[n] = a
		}
	}
	return out
}

// VerseAlignedTargetTokens returns the target tokens that are aligned to
// anything, in sentence order.
func VerseAlignedTargetTokens(s State, chapter, verse int) Sentence {
	v, ok := s.Verse(chapter, verse)
	if !ok {
		return nil
	}
	aligned := Sentence{}
	for _, a := range v.Alignments {
		aligned = append(aligned, expand(v.TargetTokens, a.TargetNgram)...)
	}
	sort.SliceStable(aligned, func(i, j int) bool { return aligned[i].Position < aligned[j].Position })
	return aligned
}

// WordBank returns the unaligned target tokens of a verse.
func WordBank(s State, chapter, verse int) Sentence {
	v, ok := s.Verse(chapter, verse)
	if !ok {
		return nil
	}
	return v.WordBank()
}

// IsVerseAligned reports whether a verse is finished: every alignment has
// target tokens and the word bank is empty.
func IsVerseAligned(s State, chapter, verse int) bool {
	v, ok := s.Verse(chapter, verse)
	if !ok {
		return false
	}
	for _, a := range v.Alignments {
		if !a.IsAligned() {
			return false
		}
	}
	return len(v.WordBank()) == 0
}

// IsVerseValid reports whether the stored sentences render to the given
// freshly normalized texts. A mismatch means the verse needs repair.
func IsVerseValid(s State, chapter, verse int, sourceText, targetText string) bool {
	v, ok := s.Verse(chapter, verse)
	if !ok {
		return false
	}
	return v.SourceTokens.String() == normalizeSpace(sourceText) &&
		v.TargetTokens.String() == normalizeSpace(targetText)
}

func normalizeSpace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
