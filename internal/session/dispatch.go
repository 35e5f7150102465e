package session

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/FocuswithJustin/JuniperAligner/core/alignment"
	alerrors "github.com/FocuswithJustin/JuniperAligner/core/errors"
	"github.com/FocuswithJustin/JuniperAligner/core/ref"
	"github.com/FocuswithJustin/JuniperAligner/internal/logging"
	"github.com/FocuswithJustin/JuniperAligner/internal/persist"
)

// Dispatch applies ops to the state atomically, checks the active verse's
// invariants and writes the chapter back. Without an active verse it logs
// a warning and returns ErrNoContext.
func (s *Session) Dispatch(ctx context.Context, ops ...alignment.Operation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, err := s.requireContext(ctx, "dispatch")
	if err != nil {
		return err
	}
	return s.apply(ctx, r, ops...)
}

func (s *Session) apply(ctx context.Context, r *ref.Ref, ops ...alignment.Operation) error {
	if len(ops) == 0 {
		return nil
	}
	lctx := s.logCtx(ctx)
	next, err := alignment.ApplyAll(s.state, ops...)
	if err != nil {
		logging.OperationFailed(lctx, r.String(), string(ops[0].Kind()), err)
		return err
	}
	if v, ok := next.Verse(r.Chapter, r.Verse); ok {
		if err := v.Validate(); err != nil {
			corrupt := &alerrors.CorruptVerseError{
				Chapter: r.Chapter,
				Verse:   r.Verse,
				Reason:  fmt.Sprintf("invariant violated after %s", ops[0].Kind()),
				Err:     err,
			}
			logging.OperationFailed(lctx, r.String(), string(ops[0].Kind()), corrupt)
			return corrupt
		}
	}
	s.state = next

	for _, op := range ops {
		if err := s.journal(ctx, r, op); err != nil {
			return err
		}
		logging.OperationApplied(lctx, r.String(), string(op.Kind()))
	}
	return s.writeback(ctx, r)
}

func (s *Session) journal(ctx context.Context, r *ref.Ref, op alignment.Operation) error {
	payload, err := json.Marshal(op)
	if err != nil {
		return alerrors.Wrapf(err, "marshal %s", op.Kind())
	}
	e := Entry{
		ID:      uuid.NewString(),
		Ref:     r.String(),
		Kind:    op.Kind(),
		Payload: payload,
		At:      s.now(),
	}
	s.history = append(s.history, e)
	if limit := s.opts.HistoryLimit; limit > 0 && len(s.history) > limit {
		s.history = append([]Entry(nil), s.history[len(s.history)-limit:]...)
	}
	if s.opts.Store == nil {
		return nil
	}
	_, err = s.opts.Store.AppendJournal(ctx, persist.JournalEntry{
		ID:        e.ID,
		SessionID: s.id,
		Book:      r.BookID(),
		Chapter:   r.Chapter,
		Verse:     r.Verse,
		Kind:      string(e.Kind),
		Payload:   string(payload),
		CreatedAt: e.At,
	})
	return err
}

// writeback saves the chapter in the legacy format and snapshots it.
func (s *Session) writeback(ctx context.Context, r *ref.Ref) error {
	if !s.opts.Writeback || !alignment.IsChapterLoaded(s.state, r.Chapter) {
		return nil
	}
	data, err := alignment.LegacyChapterAlignments(s.state, r.Chapter)
	if err != nil {
		return err
	}
	if err := s.opts.Project.WriteChapter(r.BookID(), r.Chapter, data); err != nil {
		return err
	}
	if s.opts.Snapshots == nil {
		return nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	digest, err := s.opts.Snapshots.Put(raw)
	if err != nil {
		return err
	}
	if s.opts.Store != nil {
		return s.opts.Store.RecordSnapshot(ctx, r.BookID(), r.Chapter, digest)
	}
	return nil
}

// withVerse runs fn for the active verse under the lock.
func (s *Session) withVerse(ctx context.Context, action string, fn func(r *ref.Ref) []alignment.Operation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, err := s.requireContext(ctx, action)
	if err != nil {
		return err
	}
	return s.apply(ctx, r, fn(r)...)
}

// AlignTargetToken moves a target token into the alignment at index.
func (s *Session) AlignTargetToken(ctx context.Context, index int, token alignment.Token) error {
	return s.withVerse(ctx, "align_target", func(r *ref.Ref) []alignment.Operation {
		return []alignment.Operation{alignment.AlignTargetToken{Chapter: r.Chapter, Verse: r.Verse, Index: index, Token: token}}
	})
}

// UnalignTargetToken returns a target token to the word bank.
func (s *Session) UnalignTargetToken(ctx context.Context, index int, token alignment.Token) error {
	return s.withVerse(ctx, "unalign_target", func(r *ref.Ref) []alignment.Operation {
		return []alignment.Operation{alignment.UnalignTargetToken{Chapter: r.Chapter, Verse: r.Verse, Index: index, Token: token}}
	})
}

// MergeSourceToken merges a source token's alignment into the one at index.
func (s *Session) MergeSourceToken(ctx context.Context, index int, token alignment.Token) error {
	return s.withVerse(ctx, "merge_source", func(r *ref.Ref) []alignment.Operation {
		return []alignment.Operation{alignment.AlignSourceToken{Chapter: r.Chapter, Verse: r.Verse, Index: index, Token: token}}
	})
}

// SplitSourceToken splits a source token out of a merged alignment.
func (s *Session) SplitSourceToken(ctx context.Context, index int, token alignment.Token) error {
	return s.withVerse(ctx, "split_source", func(r *ref.Ref) []alignment.Operation {
		return []alignment.Operation{alignment.UnalignSourceToken{Chapter: r.Chapter, Verse: r.Verse, Index: index, Token: token}}
	})
}

// MoveSourceToken moves a source token between rendered alignments.
func (s *Session) MoveSourceToken(ctx context.Context, next, current int, token alignment.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, err := s.requireContext(ctx, "move_source")
	if err != nil {
		return err
	}
	ops, err := alignment.MoveSourceToken(s.state, r.Chapter, r.Verse, next, current, token)
	if err != nil {
		return err
	}
	return s.apply(ctx, r, ops...)
}

// AlignRenderedTargetToken aligns a target token to a rendered alignment,
// accepting its suggestion.
func (s *Session) AlignRenderedTargetToken(ctx context.Context, index int, token alignment.Token) error {
	return s.withVerse(ctx, "align_rendered_target", func(r *ref.Ref) []alignment.Operation {
		return []alignment.Operation{alignment.AlignRenderedTargetToken{Chapter: r.Chapter, Verse: r.Verse, Index: index, Token: token}}
	})
}

// UnalignRenderedTargetToken removes a target token from a rendered
// alignment, rejecting its suggestion.
func (s *Session) UnalignRenderedTargetToken(ctx context.Context, index int, token alignment.Token) error {
	return s.withVerse(ctx, "unalign_rendered_target", func(r *ref.Ref) []alignment.Operation {
		return []alignment.Operation{alignment.UnalignRenderedTargetToken{Chapter: r.Chapter, Verse: r.Verse, Index: index, Token: token}}
	})
}

// ResetVerse drops every alignment and suggestion of the active verse.
func (s *Session) ResetVerse(ctx context.Context) error {
	return s.withVerse(ctx, "reset", func(r *ref.Ref) []alignment.Operation {
		return []alignment.Operation{alignment.ResetVerse{Chapter: r.Chapter, Verse: r.Verse}}
	})
}

// Clear drops all loaded chapters.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state, _ = alignment.Apply(s.state, alignment.ClearState{})
	s.source, s.target, s.book = nil, nil, ""
}

// Rendered returns the active verse with suggestions overlaid.
func (s *Session) Rendered(ctx context.Context) ([]alignment.RenderedAlignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, err := s.requireContext(ctx, "render")
	if err != nil {
		return nil, err
	}
	v, ok := s.state.Verse(r.Chapter, r.Verse)
	if !ok {
		return nil, alerrors.NewNotFound("verse", r.String())
	}
	return alignment.RenderVerse(v)
}

// IsVerseFinished reports whether every token of a verse is aligned.
func (s *Session) IsVerseFinished(chapter, verse int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return alignment.IsVerseAligned(s.state, chapter, verse)
}
