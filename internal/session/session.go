// Package session hosts an alignment editing session for one project.
//
// A Session owns the alignment state, the active verse reference and the
// chapter baselines. It loads chapters from the project's legacy files,
// validates and repairs the active verse, applies operations, writes the
// chapter back after every change and journals what was applied. All
// methods are safe for concurrent use; dispatches are serialised.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/FocuswithJustin/JuniperAligner/core/alignment"
	"github.com/FocuswithJustin/JuniperAligner/core/cas"
	alerrors "github.com/FocuswithJustin/JuniperAligner/core/errors"
	"github.com/FocuswithJustin/JuniperAligner/core/ref"
	"github.com/FocuswithJustin/JuniperAligner/internal/logging"
	"github.com/FocuswithJustin/JuniperAligner/internal/persist"
)

// Notice kinds shown to the user once per verse.
const (
	NoticeAlignmentsReset   = "alignments_reset"
	NoticeAlignmentsCorrupt = "alignments_corrupt"
)

// Notice is a user-facing message raised while loading or validating.
type Notice struct {
	Ref     string
	Kind    string
	Message string
}

// Entry is one journaled operation.
type Entry struct {
	ID      string
	Ref     string
	Kind    alignment.OpKind
	Payload json.RawMessage
	At      time.Time
}

// Options configures a Session. Project is required.
type Options struct {
	Project *persist.Project
	// Store journals operations and remembers baselines and notices. Optional.
	Store *persist.Store
	// Snapshots receives a copy of every written chapter. Optional.
	Snapshots *cas.Store
	// Predictor supplies suggestions for Suggest. Optional.
	Predictor alignment.Predictor
	// HistoryLimit caps the in-memory journal; zero keeps everything.
	HistoryLimit int
	// Writeback saves the chapter file after every change.
	Writeback bool
	// KeepStaleSuggestions accepts predictions made for other verse text.
	KeepStaleSuggestions bool
}

// Session is an editing session.
type Session struct {
	mu sync.Mutex

	id    string
	opts  Options
	now   func() time.Time
	state alignment.State

	active *ref.Ref
	book   string
	source alignment.Baseline
	target alignment.Baseline

	history []Entry
	notices []Notice
	shown   map[string]bool
}

// New creates a session.
func New(opts Options) *Session {
	return &Session{
		id:    uuid.NewString(),
		opts:  opts,
		now:   func() time.Time { return time.Now().UTC() },
		state: alignment.State{},
		shown: make(map[string]bool),
	}
}

// ID returns the session ID used in logs and the journal.
func (s *Session) ID() string {
	return s.id
}

func (s *Session) logCtx(ctx context.Context) context.Context {
	return logging.WithSessionID(ctx, s.id)
}

// SetContext makes r the active verse. A nil r clears it.
func (s *Session) SetContext(r *ref.Ref) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = r
}

// Context returns the active verse, or nil.
func (s *Session) Context() *ref.Ref {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// State returns the current alignment state. Callers must not modify it.
func (s *Session) State() alignment.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// History returns a copy of the in-memory journal, oldest first.
func (s *Session) History() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Entry(nil), s.history...)
}

// Notices returns and clears the pending notices.
func (s *Session) Notices() []Notice {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.notices
	s.notices = nil
	return out
}

// requireContext returns the active verse or logs and returns ErrNoContext.
func (s *Session) requireContext(ctx context.Context, action string) (*ref.Ref, error) {
	if err := s.active.RequireVerse(); err != nil {
		logging.MissingContext(s.logCtx(ctx), action)
		return nil, err
	}
	return s.active, nil
}

// Load loads the active verse's chapter from the project and validates
// the active verse. source and target are the chapter's current
// sentences. Without an active verse Load logs a warning and does nothing.
//
// Verses whose stored data no longer resolves against the baselines are
// reset and raise an alignments_corrupt notice.
func (s *Session) Load(ctx context.Context, source, target alignment.Baseline) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := s.requireContext(ctx, "load")
	if err != nil {
		return nil
	}

	legacy, err := s.opts.Project.ReadChapter(r.BookID(), r.Chapter)
	if err != nil && !alerrors.Is(err, alerrors.ErrNotFound) {
		return err
	}

	verses := make(map[int]*alignment.Verse, len(source))
	for verse, tokens := range source {
		verses[verse] = alignment.NewVerse(tokens, target[verse])
	}
	for key, data := range legacy {
		migrated, err := alignment.MigrateChapterAlignments(alignment.LegacyChapter{key: data}, source, target)
		if err != nil {
			verse, convErr := strconv.Atoi(key)
			if convErr != nil {
				logging.CorruptionDetected(s.logCtx(ctx), r.String(), err)
				continue
			}
			verseRef := verseString(r, verse)
			logging.CorruptionDetected(s.logCtx(ctx), verseRef, &alerrors.CorruptVerseError{
				Chapter: r.Chapter,
				Verse:   verse,
				Reason:  "stored alignments do not match the verse text",
				Err:     err,
			})
			s.notify(ctx, r.BookID(), r.Chapter, verse, NoticeAlignmentsCorrupt, "The alignment data is corrupt and was reset.")
			continue
		}
		for verse, v := range migrated {
			verses[verse] = v
		}
	}

	next, err := alignment.Apply(s.state, alignment.SetChapterAlignments{Chapter: r.Chapter, Verses: verses})
	if err != nil {
		return err
	}
	s.state = next
	s.book = r.BookID()
	s.source = source
	s.target = target
	logging.InfoContext(s.logCtx(ctx), "chapter_loaded", "ref", r.String(), "verses", len(verses))

	return s.validate(ctx, r)
}

// Validate repairs the active verse if its stored sentences no longer
// match the baselines. An alignments_reset notice is raised when aligned
// target tokens existed.
func (s *Session) Validate(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, err := s.requireContext(ctx, "validate")
	if err != nil {
		return err
	}
	return s.validate(ctx, r)
}

func (s *Session) validate(ctx context.Context, r *ref.Ref) error {
	source, target, err := s.baselines(r)
	if err != nil {
		return err
	}
	if alignment.IsVerseValid(s.state, r.Chapter, r.Verse, source.String(), target.String()) {
		return s.saveBaseline(ctx, r, source, target)
	}

	v, ok := s.state.Verse(r.Chapter, r.Verse)
	changed := true
	if ok {
		_, changed = alignment.RepairAndInspect(v, source, target)
	}
	if len(alignment.VerseAlignedTargetTokens(s.state, r.Chapter, r.Verse)) > 0 {
		s.notify(ctx, r.BookID(), r.Chapter, r.Verse, NoticeAlignmentsReset, "The verse text changed and its alignments were repaired.")
	}
	op := alignment.RepairVerse{Chapter: r.Chapter, Verse: r.Verse, SourceTokens: source, TargetTokens: target}
	if err := s.apply(ctx, r, op); err != nil {
		return err
	}
	logging.RepairPerformed(s.logCtx(ctx), r.String(), changed)
	return s.saveBaseline(ctx, r, source, target)
}

func (s *Session) baselines(r *ref.Ref) (alignment.Sentence, alignment.Sentence, error) {
	if s.book != r.BookID() || s.source == nil {
		return nil, nil, alerrors.NewNotFound("chapter", fmt.Sprintf("%s.%d", r.Book, r.Chapter))
	}
	source, ok := s.source[r.Verse]
	if !ok {
		return nil, nil, alerrors.NewNotFound("verse", r.String())
	}
	return source, s.target[r.Verse], nil
}

// notify raises a notice unless it was already shown for the verse.
func (s *Session) notify(ctx context.Context, book string, chapter, verse int, kind, message string) {
	key := fmt.Sprintf("%s.%d.%d/%s", book, chapter, verse, kind)
	if s.shown[key] {
		return
	}
	s.shown[key] = true
	if s.opts.Store != nil {
		first, err := s.opts.Store.MarkNotice(ctx, book, chapter, verse, kind)
		if err != nil {
			logging.WarnContext(s.logCtx(ctx), "notice_not_recorded", "error", err.Error())
		} else if !first {
			return
		}
	}
	s.notices = append(s.notices, Notice{
		Ref:     fmt.Sprintf("%s.%d.%d", book, chapter, verse),
		Kind:    kind,
		Message: message,
	})
}

func (s *Session) saveBaseline(ctx context.Context, r *ref.Ref, source, target alignment.Sentence) error {
	if s.opts.Store == nil {
		return nil
	}
	return s.opts.Store.SaveBaseline(ctx, persist.BaselineRecord{
		Book:        r.BookID(),
		Chapter:     r.Chapter,
		Verse:       r.Verse,
		SourceText:  source.String(),
		TargetText:  target.String(),
		Fingerprint: Fingerprint(source, target),
	})
}

// Fingerprint identifies the text of a verse pair. Predictions carry the
// fingerprint of the text they were made for.
func Fingerprint(source, target alignment.Sentence) string {
	return cas.Fingerprint(source.String(), target.String())
}

func verseString(r *ref.Ref, verse int) string {
	return (&ref.Ref{Book: r.Book, Chapter: r.Chapter, Verse: verse}).String()
}
