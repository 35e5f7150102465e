package alignment

import (
	"fmt"

	alerrors "github.com/FocuswithJustin/JuniperAligner/core/errors"
)

// RenderVerse renders the verse's suggestions over its alignments.
func RenderVerse(v *Verse) ([]RenderedAlignment, error) {
	return Render(v.Alignments, v.Suggestions, len(v.SourceTokens))
}

// materialize turns the rendered entry at index into a confirmed alignment
// and returns its position in the rewritten alignment list.
//
// With accept set the entry keeps the target tokens its suggestion offers;
// otherwise only the confirmed ones. Split siblings of the entry become
// alignments of their own. Every other entry keeps its confirmed form.
// Suggestions overlapping the entry's source tokens have their target
// tokens cleared.
func materialize(v *Verse, index int, accept bool) (int, error) {
	rendered, err := RenderVerse(v)
	if err != nil {
		return -1, err
	}
	if index < 0 || index >= len(rendered) {
		return -1, alerrors.NewNotFound("rendered alignment", fmt.Sprintf("%d", index))
	}
	acted := rendered[index]

	splitParent := -1
	if len(acted.Alignments) == 1 {
		splitParent = acted.Alignments[0]
	}

	out := make([]Alignment, 0, len(rendered))
	emitted := make(map[int]bool)
	var actedAlignment Alignment

	for j, entry := range rendered {
		switch {
		case j == index:
			target := entry.ConfirmedTargetNgram()
			if accept {
				target = entry.TargetNgram.Clone()
			}
			actedAlignment = Alignment{SourceNgram: entry.SourceNgram.Clone(), TargetNgram: target}
			out = append(out, actedAlignment)
			for _, ai := range entry.Alignments {
				emitted[ai] = true
			}
		case splitParent >= 0 && len(entry.Alignments) == 1 && entry.Alignments[0] == splitParent:
			out = append(out, Alignment{SourceNgram: entry.SourceNgram.Clone(), TargetNgram: entry.ConfirmedTargetNgram()})
		default:
			for _, ai := range entry.Alignments {
				if !emitted[ai] {
					out = append(out, v.Alignments[ai].Clone())
					emitted[ai] = true
				}
			}
		}
	}
	sortAlignments(out)
	v.Alignments = out

	for i := range v.Suggestions {
		if v.Suggestions[i].SourceNgram.Intersects(acted.SourceNgram) {
			v.Suggestions[i].TargetNgram = Ngram{}
		}
	}

	for i, a := range v.Alignments {
		if a.SourceNgram.Equal(actedAlignment.SourceNgram) {
			return i, nil
		}
	}
	return -1, alerrors.NewNotFound("rendered alignment", fmt.Sprintf("%d", index))
}

func alignRenderedTarget(v *Verse, index int, token Token) error {
	i, err := materialize(v, index, true)
	if err != nil {
		return err
	}
	return alignTarget(v, i, token)
}

func unalignRenderedTarget(v *Verse, index int, token Token) error {
	i, err := materialize(v, index, false)
	if err != nil {
		return err
	}
	return unalignTarget(v, i, token)
}

func alignRenderedSource(v *Verse, index int, token Token) error {
	i, err := materialize(v, index, true)
	if err != nil {
		return err
	}
	return alignSource(v, i, token)
}

func unalignRenderedSource(v *Verse, index int, token Token) error {
	i, err := materialize(v, index, false)
	if err != nil {
		return err
	}
	return detachSource(v, i, token)
}
