package alignment

import (
	"fmt"

	alerrors "github.com/FocuswithJustin/JuniperAligner/core/errors"
)

// MoveSourceToken plans moving a source token from the rendered alignment
// at current to the rendered alignment at next.
//
// The plan always unaligns first. When next differs from current the token
// is then aligned into next; if the unalign empties the origin and next
// lies after it, next shifts down by one. When next equals current the
// token is split out into a new alignment, unless it was already alone,
// in which case the plan is empty.
//
// The returned operations are meant to be applied together with ApplyAll.
func MoveSourceToken(s State, chapter, verse, next, current int, token Token) ([]Operation, error) {
	v, ok := s.Verse(chapter, verse)
	if !ok {
		return nil, alerrors.NewNotFound("verse", fmt.Sprintf("%d:%d", chapter, verse))
	}
	rendered, err := RenderVerse(v)
	if err != nil {
		return nil, err
	}
	if current < 0 || current >= len(rendered) {
		return nil, alerrors.NewNotFound("rendered alignment", fmt.Sprintf("%d", current))
	}
	if next < 0 || next >= len(rendered) {
		return nil, alerrors.NewNotFound("rendered alignment", fmt.Sprintf("%d", next))
	}

	single := rendered[current].SourceNgram.Len() == 1
	if next == current && single {
		return nil, nil
	}

	unalign := UnalignRenderedSourceToken{Chapter: chapter, Verse: verse, Index: current, Token: token}
	if next == current {
		return []Operation{unalign, InsertRenderedAlignment{Chapter: chapter, Verse: verse, Token: token}}, nil
	}

	dest := next
	if single && next > current {
		dest--
	}
	return []Operation{unalign, AlignRenderedSourceToken{Chapter: chapter, Verse: verse, Index: dest, Token: token}}, nil
}
