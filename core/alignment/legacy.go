package alignment

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	alerrors "github.com/FocuswithJustin/JuniperAligner/core/errors"
)

// TopWord is a source word in the legacy alignment file format.
type TopWord struct {
	Word        string `json:"word"`
	Strong      string `json:"strong"`
	Lemma       string `json:"lemma"`
	Morph       string `json:"morph"`
	Occurrence  int    `json:"occurrence"`
	Occurrences int    `json:"occurrences"`
}

// UnmarshalJSON accepts the older "strongs" key when "strong" is empty.
func (w *TopWord) UnmarshalJSON(data []byte) error {
	type plain TopWord
	var raw struct {
		plain
		Strongs string `json:"strongs"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*w = TopWord(raw.plain)
	if w.Strong == "" {
		w.Strong = raw.Strongs
	}
	return nil
}

// BottomWordType is the type tag carried by every legacy target word.
const BottomWordType = "bottomWord"

// BottomWord is a target word in the legacy alignment file format.
type BottomWord struct {
	Word        string `json:"word"`
	Occurrence  int    `json:"occurrence"`
	Occurrences int    `json:"occurrences"`
	Type        string `json:"type,omitempty"`
}

// LegacyAlignment pairs source and target words.
type LegacyAlignment struct {
	TopWords    []TopWord    `json:"topWords"`
	BottomWords []BottomWord `json:"bottomWords"`
}

// LegacyVerse is one verse of a legacy alignment file.
type LegacyVerse struct {
	Alignments []LegacyAlignment `json:"alignments"`
	WordBank   []BottomWord      `json:"wordBank"`
}

// LegacyChapter is a legacy alignment file, keyed by verse number.
type LegacyChapter map[string]LegacyVerse

// Baseline holds freshly tokenized sentences keyed by verse number.
type Baseline map[int]Sentence

// FormattedVerse is a legacy verse expanded to tokens but not yet
// positioned against a baseline.
type FormattedVerse struct {
	SourceTokens []Token
	TargetTokens []Token
	Alignments   []FormattedAlignment
}

// FormattedAlignment is an alignment expressed in tokens.
type FormattedAlignment struct {
	SourceNgram []Token
	TargetNgram []Token
}

func topWordToken(w TopWord) Token {
	return Token{
		Text:        w.Word,
		Strong:      w.Strong,
		Lemma:       w.Lemma,
		Morph:       w.Morph,
		Occurrence:  w.Occurrence,
		Occurrences: w.Occurrences,
	}
}

func bottomWordToken(w BottomWord) Token {
	return Token{Text: w.Word, Occurrence: w.Occurrence, Occurrences: w.Occurrences}
}

// FormatAlignmentData expands legacy verses into token form. Source tokens
// are collected from the alignments; target tokens from the alignments and
// then the word bank.
func FormatAlignmentData(data LegacyChapter) (map[int]FormattedVerse, error) {
	out := make(map[int]FormattedVerse, len(data))
	for key, lv := range data {
		n, err := strconv.Atoi(key)
		if err != nil {
			return nil, alerrors.NewParse("legacy chapter", "", fmt.Sprintf("invalid verse key %q", key))
		}
		fv := FormattedVerse{SourceTokens: []Token{}, TargetTokens: []Token{}, Alignments: []FormattedAlignment{}}
		for _, la := range lv.Alignments {
			fa := FormattedAlignment{SourceNgram: []Token{}, TargetNgram: []Token{}}
			for _, w := range la.TopWords {
				fa.SourceNgram = append(fa.SourceNgram, topWordToken(w))
			}
			for _, w := range la.BottomWords {
				fa.TargetNgram = append(fa.TargetNgram, bottomWordToken(w))
			}
			fv.SourceTokens = append(fv.SourceTokens, fa.SourceNgram...)
			fv.TargetTokens = append(fv.TargetTokens, fa.TargetNgram...)
			fv.Alignments = append(fv.Alignments, fa)
		}
		for _, w := range lv.WordBank {
			fv.TargetTokens = append(fv.TargetTokens, bottomWordToken(w))
		}
		out[n] = fv
	}
	return out, nil
}

// NormalizeAlignmentData positions formatted verses against the baselines
// and converts token ngrams to indices.
//
// Tokens are sorted by their baseline position and renumbered 0..n-1; ngram
// entries refer to that order. A token absent from the baseline, or an
// ngram token absent from the verse's tokens, is an AlignmentDataError.
func NormalizeAlignmentData(data map[int]FormattedVerse, source, target Baseline) (map[int]*Verse, error) {
	out := make(map[int]*Verse, len(data))
	for n, fv := range data {
		sourceTokens, err := positionTokens(fv.SourceTokens, source[n], alerrors.SideSource, n)
		if err != nil {
			return nil, err
		}
		targetTokens, err := positionTokens(fv.TargetTokens, target[n], alerrors.SideTarget, n)
		if err != nil {
			return nil, err
		}
		sourceIndex := sourceTokens.Index()
		targetIndex := targetTokens.Index()

		alignments := make([]Alignment, 0, len(fv.Alignments))
		for _, fa := range fv.Alignments {
			a := Alignment{SourceNgram: Ngram{}, TargetNgram: Ngram{}}
			for _, t := range fa.SourceNgram {
				pos, ok := sourceIndex.Lookup(t)
				if !ok {
					return nil, dataError(alerrors.SideSource, t, n, true)
				}
				a.SourceNgram = a.SourceNgram.Insert(pos)
			}
			for _, t := range fa.TargetNgram {
				pos, ok := targetIndex.Lookup(t)
				if !ok {
					return nil, dataError(alerrors.SideTarget, t, n, true)
				}
				a.TargetNgram = a.TargetNgram.Insert(pos)
			}
			alignments = append(alignments, a)
		}
		sortAlignments(alignments)

		out[n] = &Verse{
			SourceTokens: sourceTokens,
			TargetTokens: targetTokens,
			Alignments:   alignments,
			Suggestions:  []Alignment{},
		}
	}
	return out, nil
}

// MigrateChapterAlignments converts a legacy chapter to verses positioned
// against the tokenized baselines. Only the alignments are checked; callers
// should check the sentences with IsVerseValid afterwards.
func MigrateChapterAlignments(data LegacyChapter, source, target Baseline) (map[int]*Verse, error) {
	formatted, err := FormatAlignmentData(data)
	if err != nil {
		return nil, err
	}
	return NormalizeAlignmentData(formatted, source, target)
}

func positionTokens(tokens []Token, baseline Sentence, side alerrors.Side, verse int) (Sentence, error) {
	index := baseline.Index()
	out := make(Sentence, 0, len(tokens))
	for _, t := range tokens {
		pos, ok := index.Lookup(t)
		if !ok {
			return nil, dataError(side, t, verse, false)
		}
		t.Position = pos
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	for i := range out {
		out[i].Position = i
	}
	return out, nil
}

func dataError(side alerrors.Side, t Token, verse int, inAlignment bool) error {
	return &alerrors.AlignmentDataError{
		Side:        side,
		Text:        t.Text,
		Occurrence:  t.Occurrence,
		Occurrences: t.Occurrences,
		Verse:       verse,
		InAlignment: inAlignment,
	}
}

// LegacyVerseAlignments converts a verse to the legacy format. Every
// alignment lists its words; target tokens outside all alignments form the
// word bank.
func LegacyVerseAlignments(v *Verse) LegacyVerse {
	lv := LegacyVerse{Alignments: []LegacyAlignment{}, WordBank: []BottomWord{}}
	for _, a := range v.Alignments {
		la := LegacyAlignment{TopWords: []TopWord{}, BottomWords: []BottomWord{}}
		for _, p := range a.SourceNgram {
			if p < 0 || p >= len(v.SourceTokens) {
				continue
			}
			t := v.SourceTokens[p]
			la.TopWords = append(la.TopWords, TopWord{
				Word:        t.Text,
				Strong:      t.Strong,
				Lemma:       t.Lemma,
				Morph:       t.Morph,
				Occurrence:  t.Occurrence,
				Occurrences: t.Occurrences,
			})
		}
		for _, p := range a.TargetNgram {
			if p < 0 || p >= len(v.TargetTokens) {
				continue
			}
			la.BottomWords = append(la.BottomWords, legacyBottomWord(v.TargetTokens[p]))
		}
		lv.Alignments = append(lv.Alignments, la)
	}
	for _, t := range v.WordBank() {
		lv.WordBank = append(lv.WordBank, legacyBottomWord(t))
	}
	return lv
}

func legacyBottomWord(t Token) BottomWord {
	return BottomWord{Word: t.Text, Occurrence: t.Occurrence, Occurrences: t.Occurrences, Type: BottomWordType}
}

// LegacyChapterAlignments returns a loaded chapter in the legacy format.
func LegacyChapterAlignments(s State, chapter int) (LegacyChapter, error) {
	ch, ok := s[chapter]
	if !ok {
		return nil, alerrors.NewNotFound("chapter", strconv.Itoa(chapter))
	}
	out := make(LegacyChapter, len(ch))
	for n, v := range ch {
		if v == nil {
			continue
		}
		out[strconv.Itoa(n)] = LegacyVerseAlignments(v)
	}
	return out, nil
}
