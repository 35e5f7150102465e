package alignment

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// words builds a sentence, assigning positions and occurrences.
func words(texts ...string) Sentence {
	return NewSentence(texts...)
}

func al(source []int, target []int) Alignment {
	return NewAlignment(source, target)
}

func ints(p ...int) []int { return append([]int{}, p...) }

// pairs flattens alignments to plain slices for comparison.
func pairs(alignments []Alignment) [][2][]int {
	out := make([][2][]int, len(alignments))
	for i, a := range alignments {
		out[i] = [2][]int{append([]int{}, a.SourceNgram...), append([]int{}, a.TargetNgram...)}
	}
	return out
}

func requireAlignments(t *testing.T, want, got []Alignment) {
	t.Helper()
	require.Equal(t, pairs(want), pairs(got))
}

func stateWith(chapter, verse int, v *Verse) State {
	return State{chapter: Chapter{verse: v}}
}

func mustVerse(t *testing.T, s State, chapter, verse int) *Verse {
	t.Helper()
	v, ok := s.Verse(chapter, verse)
	require.True(t, ok, "verse %d:%d not loaded", chapter, verse)
	return v
}

// titus is the opening of Titus 1:1 with two merged groups.
func titus() *Verse {
	source := Sentence{
		{Text: "Παῦλος", Position: 0, Occurrence: 1, Occurrences: 1, Strong: "G39720", Lemma: "Παῦλος", Morph: "Gr,N,,,,,NMS,"},
		{Text: "δοῦλος", Position: 1, Occurrence: 1, Occurrences: 1, Strong: "G14010", Lemma: "δοῦλος", Morph: "Gr,N,,,,,NMS,"},
		{Text: "Θεοῦ", Position: 2, Occurrence: 1, Occurrences: 2, Strong: "G23160", Lemma: "θεός", Morph: "Gr,N,,,,,GMS,"},
		{Text: "ἀπόστολος", Position: 3, Occurrence: 1, Occurrences: 1, Strong: "G06520", Lemma: "ἀπόστολος", Morph: "Gr,N,,,,,NMS,"},
		{Text: "δὲ", Position: 4, Occurrence: 1, Occurrences: 1, Strong: "G11610", Lemma: "δέ", Morph: "Gr,CC,,,,,,,,"},
	}
	return &Verse{
		SourceTokens: source,
		TargetTokens: Sentence{},
		Alignments:   []Alignment{al(ints(0, 1, 3, 4), nil), al(ints(2), nil)},
		Suggestions:  []Alignment{},
	}
}
