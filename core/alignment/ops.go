package alignment

import (
	alerrors "github.com/FocuswithJustin/JuniperAligner/core/errors"
)

// OpKind names an operation. The names match the action types persisted
// in operation journals.
type OpKind string

// Operation kinds.
const (
	KindSetChapterAlignments       OpKind = "SET_CHAPTER_ALIGNMENTS"
	KindSetSourceTokens            OpKind = "SET_SOURCE_TOKENS"
	KindSetTargetTokens            OpKind = "SET_TARGET_TOKENS"
	KindAlignTargetToken           OpKind = "ALIGN_TARGET_TOKEN"
	KindUnalignTargetToken         OpKind = "UNALIGN_TARGET_TOKEN"
	KindAlignSourceToken           OpKind = "ALIGN_SOURCE_TOKEN"
	KindUnalignSourceToken         OpKind = "UNALIGN_SOURCE_TOKEN"
	KindInsertAlignment            OpKind = "INSERT_ALIGNMENT"
	KindResetVerse                 OpKind = "RESET_VERSE_ALIGNMENTS"
	KindRepairVerse                OpKind = "REPAIR_VERSE_ALIGNMENTS"
	KindSetAlignmentSuggestions    OpKind = "SET_ALIGNMENT_SUGGESTIONS"
	KindResetVerseSuggestions      OpKind = "RESET_VERSE_ALIGNMENT_SUGGESTIONS"
	KindAlignRenderedTargetToken   OpKind = "ALIGN_RENDERED_TARGET_TOKEN"
	KindUnalignRenderedTargetToken OpKind = "UNALIGN_RENDERED_TARGET_TOKEN"
	KindAlignRenderedSourceToken   OpKind = "ALIGN_RENDERED_SOURCE_TOKEN"
	KindUnalignRenderedSourceToken OpKind = "UNALIGN_RENDERED_SOURCE_TOKEN"
	KindInsertRenderedAlignment    OpKind = "INSERT_RENDERED_ALIGNMENT"
	KindClearState                 OpKind = "CLEAR_STATE"
)

// Operation is a state transition descriptor.
type Operation interface {
	// Kind returns the operation name.
	Kind() OpKind

	apply(State) (State, error)
}

// Apply applies one operation and returns the new state. The input state
// is never modified; on error the returned state is the input.
func Apply(s State, op Operation) (State, error) {
	next, err := op.apply(s)
	if err != nil {
		return s, alerrors.Wrap(err, string(op.Kind()))
	}
	return next, nil
}

// ApplyAll applies operations in order. If any fails, the input state is
// returned with the error and none of the operations take effect.
func ApplyAll(s State, ops ...Operation) (State, error) {
	next := s
	for _, op := range ops {
		var err error
		if next, err = Apply(next, op); err != nil {
			return s, err
		}
	}
	return next, nil
}

// verseOp runs fn on a copy of one verse.
func verseOp(s State, chapter, verse int, fn func(*Verse) error) (State, error) {
	v, err := s.verseForUpdate(chapter, verse)
	if err != nil {
		return s, err
	}
	if err := fn(v); err != nil {
		return s, err
	}
	return s.withVerse(chapter, verse, v), nil
}

// SetChapterAlignments replaces a chapter's data. Verses without a
// suggestion list get an empty one.
type SetChapterAlignments struct {
	Chapter int
	Verses  map[int]*Verse
}

func (SetChapterAlignments) Kind() OpKind { return KindSetChapterAlignments }

func (op SetChapterAlignments) apply(s State) (State, error) {
	ch := make(Chapter, len(op.Verses))
	for n, v := range op.Verses {
		c := v.Clone()
		if c == nil {
			c = &Verse{}
		}
		if c.Suggestions == nil {
			c.Suggestions = []Alignment{}
		}
		if c.Alignments == nil {
			c.Alignments = []Alignment{}
		}
		ch[n] = c
	}
	return s.withChapter(op.Chapter, ch), nil
}

// SetSourceTokens replaces the source sentence of a verse, creating the
// verse if needed.
type SetSourceTokens struct {
	Chapter, Verse int
	Tokens         Sentence
}

func (SetSourceTokens) Kind() OpKind { return KindSetSourceTokens }

func (op SetSourceTokens) apply(s State) (State, error) {
	v, ok := s.Verse(op.Chapter, op.Verse)
	if !ok {
		v = &Verse{Alignments: []Alignment{}, Suggestions: []Alignment{}}
	}
	v = v.Clone()
	v.SourceTokens = op.Tokens.Clone()
	return s.withVerse(op.Chapter, op.Verse, v), nil
}

// SetTargetTokens replaces the target sentence of a verse, creating the
// verse if needed.
type SetTargetTokens struct {
	Chapter, Verse int
	Tokens         Sentence
}

func (SetTargetTokens) Kind() OpKind { return KindSetTargetTokens }

func (op SetTargetTokens) apply(s State) (State, error) {
	v, ok := s.Verse(op.Chapter, op.Verse)
	if !ok {
		v = &Verse{Alignments: []Alignment{}, Suggestions: []Alignment{}}
	}
	v = v.Clone()
	v.TargetTokens = op.Tokens.Clone()
	return s.withVerse(op.Chapter, op.Verse, v), nil
}

// AlignTargetToken moves a target token into the alignment at Index.
type AlignTargetToken struct {
	Chapter, Verse, Index int
	Token                 Token
}

func (AlignTargetToken) Kind() OpKind { return KindAlignTargetToken }

func (op AlignTargetToken) apply(s State) (State, error) {
	return verseOp(s, op.Chapter, op.Verse, func(v *Verse) error {
		return alignTarget(v, op.Index, op.Token)
	})
}

// UnalignTargetToken removes a target token from the alignment at Index.
type UnalignTargetToken struct {
	Chapter, Verse, Index int
	Token                 Token
}

func (UnalignTargetToken) Kind() OpKind { return KindUnalignTargetToken }

func (op UnalignTargetToken) apply(s State) (State, error) {
	return verseOp(s, op.Chapter, op.Verse, func(v *Verse) error {
		return unalignTarget(v, op.Index, op.Token)
	})
}

// AlignSourceToken merges a source token into the alignment at Index.
type AlignSourceToken struct {
	Chapter, Verse, Index int
	Token                 Token
}

func (AlignSourceToken) Kind() OpKind { return KindAlignSourceToken }

func (op AlignSourceToken) apply(s State) (State, error) {
	return verseOp(s, op.Chapter, op.Verse, func(v *Verse) error {
		return alignSource(v, op.Index, op.Token)
	})
}

// UnalignSourceToken splits a source token out of the alignment at Index.
type UnalignSourceToken struct {
	Chapter, Verse, Index int
	Token                 Token
}

func (UnalignSourceToken) Kind() OpKind { return KindUnalignSourceToken }

func (op UnalignSourceToken) apply(s State) (State, error) {
	return verseOp(s, op.Chapter, op.Verse, func(v *Verse) error {
		return unalignSource(v, op.Index, op.Token)
	})
}

// InsertAlignment creates an alignment for an uncovered source token.
type InsertAlignment struct {
	Chapter, Verse int
	Token          Token
}

func (InsertAlignment) Kind() OpKind { return KindInsertAlignment }

func (op InsertAlignment) apply(s State) (State, error) {
	return verseOp(s, op.Chapter, op.Verse, func(v *Verse) error {
		return insertAlignment(v, op.Token)
	})
}

// ResetVerse makes every source token an unaligned singleton.
type ResetVerse struct {
	Chapter, Verse int
}

func (ResetVerse) Kind() OpKind { return KindResetVerse }

func (op ResetVerse) apply(s State) (State, error) {
	return verseOp(s, op.Chapter, op.Verse, func(v *Verse) error {
		resetVerse(v)
		return nil
	})
}

// RepairVerse reconciles a verse against freshly tokenized sentences.
// A verse that is not loaded yet is created from the sentences.
type RepairVerse struct {
	Chapter, Verse int
	SourceTokens   Sentence
	TargetTokens   Sentence
}

func (RepairVerse) Kind() OpKind { return KindRepairVerse }

func (op RepairVerse) apply(s State) (State, error) {
	v, ok := s.Verse(op.Chapter, op.Verse)
	if !ok {
		return s.withVerse(op.Chapter, op.Verse, NewVerse(op.SourceTokens, op.TargetTokens)), nil
	}
	return s.withVerse(op.Chapter, op.Verse, Repair(v, op.SourceTokens, op.TargetTokens)), nil
}

// SetAlignmentSuggestions replaces the verse's suggestions with the
// given predictions.
type SetAlignmentSuggestions struct {
	Chapter, Verse int
	Predictions    []Prediction
}

func (SetAlignmentSuggestions) Kind() OpKind { return KindSetAlignmentSuggestions }

func (op SetAlignmentSuggestions) apply(s State) (State, error) {
	return verseOp(s, op.Chapter, op.Verse, func(v *Verse) error {
		suggestions, err := translatePredictions(v, op.Predictions)
		if err != nil {
			return err
		}
		v.Suggestions = suggestions
		return nil
	})
}

// ResetVerseSuggestions clears the verse's suggestions.
type ResetVerseSuggestions struct {
	Chapter, Verse int
}

func (ResetVerseSuggestions) Kind() OpKind { return KindResetVerseSuggestions }

func (op ResetVerseSuggestions) apply(s State) (State, error) {
	return verseOp(s, op.Chapter, op.Verse, func(v *Verse) error {
		v.Suggestions = []Alignment{}
		return nil
	})
}

// AlignRenderedTargetToken aligns a target token to the rendered alignment
// at Index, accepting what it suggests.
type AlignRenderedTargetToken struct {
	Chapter, Verse, Index int
	Token                 Token
}

func (AlignRenderedTargetToken) Kind() OpKind { return KindAlignRenderedTargetToken }

func (op AlignRenderedTargetToken) apply(s State) (State, error) {
	return verseOp(s, op.Chapter, op.Verse, func(v *Verse) error {
		return alignRenderedTarget(v, op.Index, op.Token)
	})
}

// UnalignRenderedTargetToken removes a target token from the rendered
// alignment at Index, rejecting what it suggests.
type UnalignRenderedTargetToken struct {
	Chapter, Verse, Index int
	Token                 Token
}

func (UnalignRenderedTargetToken) Kind() OpKind { return KindUnalignRenderedTargetToken }

func (op UnalignRenderedTargetToken) apply(s State) (State, error) {
	return verseOp(s, op.Chapter, op.Verse, func(v *Verse) error {
		return unalignRenderedTarget(v, op.Index, op.Token)
	})
}

// AlignRenderedSourceToken merges a source token into the rendered
// alignment at Index.
type AlignRenderedSourceToken struct {
	Chapter, Verse, Index int
	Token                 Token
}

func (AlignRenderedSourceToken) Kind() OpKind { return KindAlignRenderedSourceToken }

func (op AlignRenderedSourceToken) apply(s State) (State, error) {
	return verseOp(s, op.Chapter, op.Verse, func(v *Verse) error {
		return alignRenderedSource(v, op.Index, op.Token)
	})
}

// UnalignRenderedSourceToken detaches a source token from the rendered
// alignment at Index. It must be followed by AlignRenderedSourceToken or
// InsertRenderedAlignment; MoveSourceToken plans both steps.
type UnalignRenderedSourceToken struct {
	Chapter, Verse, Index int
	Token                 Token
}

func (UnalignRenderedSourceToken) Kind() OpKind { return KindUnalignRenderedSourceToken }

func (op UnalignRenderedSourceToken) apply(s State) (State, error) {
	return verseOp(s, op.Chapter, op.Verse, func(v *Verse) error {
		return unalignRenderedSource(v, op.Index, op.Token)
	})
}

// InsertRenderedAlignment gives a detached source token its own alignment.
type InsertRenderedAlignment struct {
	Chapter, Verse int
	Token          Token
}

func (InsertRenderedAlignment) Kind() OpKind { return KindInsertRenderedAlignment }

func (op InsertRenderedAlignment) apply(s State) (State, error) {
	return verseOp(s, op.Chapter, op.Verse, func(v *Verse) error {
		return insertAlignment(v, op.Token)
	})
}

// ClearState drops all loaded chapters.
type ClearState struct{}

func (ClearState) Kind() OpKind { return KindClearState }

func (ClearState) apply(State) (State, error) {
	return State{}, nil
}
