package alignment

import (
	"fmt"

	alerrors "github.com/FocuswithJustin/JuniperAligner/core/errors"
)

// The functions below mutate a verse that the caller already cloned.

// alignTarget moves a target token into the alignment at index.
func alignTarget(v *Verse, index int, token Token) error {
	pos, err := resolve(v.TargetTokens, token, alerrors.SideTarget)
	if err != nil {
		return err
	}
	dest, err := v.alignment(index)
	if err != nil {
		return err
	}
	for i := range v.Alignments {
		if i != index {
			v.Alignments[i].TargetNgram = v.Alignments[i].TargetNgram.Remove(pos)
		}
	}
	dest.TargetNgram = dest.TargetNgram.Insert(pos)
	return nil
}

// unalignTarget returns a target token to the word bank.
func unalignTarget(v *Verse, index int, token Token) error {
	pos, err := resolve(v.TargetTokens, token, alerrors.SideTarget)
	if err != nil {
		return err
	}
	a, err := v.alignment(index)
	if err != nil {
		return err
	}
	a.TargetNgram = a.TargetNgram.Remove(pos)
	return nil
}

// alignSource merges a source token into the alignment at index. The
// token leaves its current alignment first; if that alignment is left
// without source tokens it is removed and its target tokens return to the
// word bank.
func alignSource(v *Verse, index int, token Token) error {
	pos, err := resolve(v.SourceTokens, token, alerrors.SideSource)
	if err != nil {
		return err
	}
	if _, err := v.alignment(index); err != nil {
		return err
	}

	origin := indexOfSource(v.Alignments, pos)
	if origin == index {
		return nil
	}
	if origin >= 0 {
		v.Alignments[origin].SourceNgram = v.Alignments[origin].SourceNgram.Remove(pos)
		if v.Alignments[origin].SourceNgram.IsEmpty() {
			v.Alignments = append(v.Alignments[:origin], v.Alignments[origin+1:]...)
			if origin < index {
				index--
			}
		}
	}

	v.Alignments[index].SourceNgram = v.Alignments[index].SourceNgram.Insert(pos)
	sortAlignments(v.Alignments)
	return nil
}

// unalignSource splits a source token out of a merged group into its own
// unaligned alignment. Target tokens stay with the rest of the group.
func unalignSource(v *Verse, index int, token Token) error {
	pos, err := resolve(v.SourceTokens, token, alerrors.SideSource)
	if err != nil {
		return err
	}
	a, err := v.alignment(index)
	if err != nil {
		return err
	}
	if !a.SourceNgram.Contains(pos) {
		return alerrors.NewValidation("token", fmt.Sprintf("source token %q is not in alignment %d", token.Text, index))
	}
	if a.SourceNgram.Len() == 1 {
		return nil
	}
	a.SourceNgram = a.SourceNgram.Remove(pos)
	v.Alignments = append(v.Alignments, Alignment{SourceNgram: Ngram{pos}, TargetNgram: Ngram{}})
	sortAlignments(v.Alignments)
	return nil
}

// detachSource removes a source token from its alignment without giving it
// a new one, dropping the alignment if it empties. It leaves the verse
// without full source coverage and must be followed by alignSource or
// insertAlignment.
func detachSource(v *Verse, index int, token Token) error {
	pos, err := resolve(v.SourceTokens, token, alerrors.SideSource)
	if err != nil {
		return err
	}
	a, err := v.alignment(index)
	if err != nil {
		return err
	}
	if !a.SourceNgram.Contains(pos) {
		return alerrors.NewValidation("token", fmt.Sprintf("source token %q is not in alignment %d", token.Text, index))
	}
	a.SourceNgram = a.SourceNgram.Remove(pos)
	if a.SourceNgram.IsEmpty() {
		v.Alignments = append(v.Alignments[:index], v.Alignments[index+1:]...)
	}
	return nil
}

// insertAlignment gives an uncovered source token its own alignment.
func insertAlignment(v *Verse, token Token) error {
	pos, err := resolve(v.SourceTokens, token, alerrors.SideSource)
	if err != nil {
		return err
	}
	if owner := indexOfSource(v.Alignments, pos); owner >= 0 {
		return alerrors.NewValidation("token", fmt.Sprintf("source token %q is already in alignment %d", token.Text, owner))
	}
	v.Alignments = append(v.Alignments, Alignment{SourceNgram: Ngram{pos}, TargetNgram: Ngram{}})
	sortAlignments(v.Alignments)
	return nil
}

// resetVerse collapses the verse to one unaligned alignment per source token.
func resetVerse(v *Verse) {
	v.Alignments = defaultAlignments(len(v.SourceTokens))
	v.Suggestions = []Alignment{}
}

// Prediction is a ranked candidate alignment from a predictor, expressed
// in tokens rather than positions.
type Prediction struct {
	Source     []Token `json:"source"`
	Target     []Token `json:"target"`
	Confidence float64 `json:"confidence"`
}

// translatePredictions converts predictions to position based suggestions.
// Every predicted token must exist in the verse's current sentences.
func translatePredictions(v *Verse, predictions []Prediction) ([]Alignment, error) {
	sourceIndex := v.SourceTokens.Index()
	targetIndex := v.TargetTokens.Index()

	suggestions := make([]Alignment, 0, len(predictions))
	for i, p := range predictions {
		if len(p.Source) == 0 {
			return nil, alerrors.NewValidation("prediction", fmt.Sprintf("prediction %d has no source tokens", i))
		}
		s := Alignment{SourceNgram: Ngram{}, TargetNgram: Ngram{}}
		for _, t := range p.Source {
			pos, ok := sourceIndex.Lookup(t)
			if !ok {
				return nil, &alerrors.AlignmentDataError{Side: alerrors.SideSource, Text: t.Text, Occurrence: t.Occurrence, Occurrences: t.Occurrences}
			}
			s.SourceNgram = s.SourceNgram.Insert(pos)
		}
		for _, t := range p.Target {
			pos, ok := targetIndex.Lookup(t)
			if !ok {
				return nil, &alerrors.AlignmentDataError{Side: alerrors.SideTarget, Text: t.Text, Occurrence: t.Occurrence, Occurrences: t.Occurrences}
			}
			s.TargetNgram = s.TargetNgram.Insert(pos)
		}
		suggestions = append(suggestions, s)
	}
	return suggestions, nil
}
