package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/FocuswithJustin/JuniperAligner/core/alignment"
	alerrors "github.com/FocuswithJustin/JuniperAligner/core/errors"
	"github.com/FocuswithJustin/JuniperAligner/internal/session"
)

// VerseGroup contains verse editing operations.
type VerseGroup struct {
	Show     VerseShowCmd     `cmd:"" help:"Show a verse's alignments"`
	Validate VerseValidateCmd `cmd:"" help:"Report whether a verse is finished, without saving"`
	Repair   VerseRepairCmd   `cmd:"" help:"Repair a verse against its current texts and save it"`
	Align    VerseAlignCmd    `cmd:"" help:"Align a target token to an alignment"`
	Unalign  VerseUnalignCmd  `cmd:"" help:"Return a target token to the word bank"`
	Merge    VerseMergeCmd    `cmd:"" help:"Merge a source token into an alignment"`
	Split    VerseSplitCmd    `cmd:"" help:"Split a source token out of a merged alignment"`
	Move     VerseMoveCmd     `cmd:"" help:"Move a source token between alignments"`
	Reset    VerseResetCmd    `cmd:"" help:"Drop every alignment of a verse"`
}

// SuggestGroup contains suggestion operations. Suggestions are not stored
// with the alignment data, so each command reads them from a prediction file.
type SuggestGroup struct {
	Show   SuggestShowCmd   `cmd:"" help:"Show a verse with suggestions overlaid"`
	Accept SuggestAcceptCmd `cmd:"" help:"Accept a suggested target token"`
	Reject SuggestRejectCmd `cmd:"" help:"Reject a suggested target token"`
}

// verseView is the JSON form of a verse printed by the verse commands.
type verseView struct {
	Ref        string         `json:"ref"`
	Source     string         `json:"source"`
	Target     string         `json:"target"`
	Alignments []renderedView `json:"alignments"`
	WordBank   []string       `json:"word_bank"`
	Finished   bool           `json:"finished"`
}

type renderedView struct {
	Source    string `json:"source"`
	Target    string `json:"target"`
	Suggested string `json:"suggested,omitempty"`
}

func pick(s alignment.Sentence, n alignment.Ngram) string {
	words := make([]string, 0, len(n))
	for _, p := range n {
		if p >= 0 && p < len(s) {
			words = append(words, s[p].Text)
		}
	}
	return strings.Join(words, " ")
}

func activeVerse(s *session.Session) (*alignment.Verse, error) {
	r := s.Context()
	v, ok := s.State().Verse(r.Chapter, r.Verse)
	if !ok {
		return nil, alerrors.NewNotFound("verse", r.String())
	}
	return v, nil
}

func viewOf(ctx context.Context, s *session.Session) (verseView, error) {
	r := s.Context()
	v, err := activeVerse(s)
	if err != nil {
		return verseView{}, err
	}
	rendered, err := s.Rendered(ctx)
	if err != nil {
		return verseView{}, err
	}
	view := verseView{
		Ref:        r.String(),
		Source:     v.SourceTokens.String(),
		Target:     v.TargetTokens.String(),
		Alignments: make([]renderedView, len(rendered)),
		WordBank:   []string{},
		Finished:   s.IsVerseFinished(r.Chapter, r.Verse),
	}
	for i, ra := range rendered {
		view.Alignments[i] = renderedView{
			Source:    pick(v.SourceTokens, ra.SourceNgram),
			Target:    pick(v.TargetTokens, ra.ConfirmedTargetNgram()),
			Suggested: pick(v.TargetTokens, ra.SuggestedTargetTokens),
		}
	}
	for _, t := range v.WordBank() {
		view.WordBank = append(view.WordBank, t.Text)
	}
	return view, nil
}

// edit opens the verse, runs fn and prints the result.
func edit(g *Globals, f *VerseFlags, fn func(ctx context.Context, s *session.Session, v *alignment.Verse) error) error {
	return run(g, f, true, fn)
}

func run(g *Globals, f *VerseFlags, writeback bool, fn func(ctx context.Context, s *session.Session, v *alignment.Verse) error) error {
	ctx := context.Background()
	e, s, err := g.openVerse(ctx, f, writeback)
	if err != nil {
		return err
	}
	defer e.Close()

	v, err := activeVerse(s)
	if err != nil {
		return err
	}
	if err := fn(ctx, s, v); err != nil {
		return err
	}
	view, err := viewOf(ctx, s)
	if err != nil {
		return err
	}
	return writeJSON(g.stdout(), view)
}

// VerseShowCmd prints a verse.
type VerseShowCmd struct {
	VerseFlags `embed:""`
}

func (c *VerseShowCmd) Run(g *Globals) error {
	return run(g, &c.VerseFlags, false, func(context.Context, *session.Session, *alignment.Verse) error {
		return nil
	})
}

// VerseRepairCmd saves a verse after loading repaired it.
type VerseRepairCmd struct {
	VerseFlags `embed:""`
}

func (c *VerseRepairCmd) Run(g *Globals) error {
	return edit(g, &c.VerseFlags, func(ctx context.Context, s *session.Session, _ *alignment.Verse) error {
		return s.Validate(ctx)
	})
}

// VerseValidateCmd reports whether a verse is finished, repairing it in
// memory only.
type VerseValidateCmd struct {
	VerseFlags `embed:""`
}

func (c *VerseValidateCmd) Run(g *Globals) error {
	ctx := context.Background()
	e, s, err := g.openVerse(ctx, &c.VerseFlags, false)
	if err != nil {
		return err
	}
	defer e.Close()

	r := s.Context()
	status := "unfinished"
	if s.IsVerseFinished(r.Chapter, r.Verse) {
		status = "finished"
	}
	fmt.Fprintf(g.stdout(), "%s: %s\n", r, status)
	return nil
}

// VerseAlignCmd aligns a target token.
type VerseAlignCmd struct {
	VerseFlags `embed:""`
	Index      int    `required:"" help:"Alignment index"`
	Token      string `required:"" help:"Target token as text or text:occurrence"`
}

func (c *VerseAlignCmd) Run(g *Globals) error {
	return edit(g, &c.VerseFlags, func(ctx context.Context, s *session.Session, v *alignment.Verse) error {
		t, err := findToken(v.TargetTokens, c.Token)
		if err != nil {
			return err
		}
		return s.AlignTargetToken(ctx, c.Index, t)
	})
}

// VerseUnalignCmd unaligns a target token.
type VerseUnalignCmd struct {
	VerseFlags `embed:""`
	Index      int    `required:"" help:"Alignment index"`
	Token      string `required:"" help:"Target token as text or text:occurrence"`
}

func (c *VerseUnalignCmd) Run(g *Globals) error {
	return edit(g, &c.VerseFlags, func(ctx context.Context, s *session.Session, v *alignment.Verse) error {
		t, err := findToken(v.TargetTokens, c.Token)
		if err != nil {
			return err
		}
		return s.UnalignTargetToken(ctx, c.Index, t)
	})
}

// VerseMergeCmd merges a source token into an alignment.
type VerseMergeCmd struct {
	VerseFlags `embed:""`
	Index      int    `required:"" help:"Alignment index to merge into"`
	Token      string `required:"" help:"Source token as text or text:occurrence"`
}

func (c *VerseMergeCmd) Run(g *Globals) error {
	return edit(g, &c.VerseFlags, func(ctx context.Context, s *session.Session, v *alignment.Verse) error {
		t, err := findToken(v.SourceTokens, c.Token)
		if err != nil {
			return err
		}
		return s.MergeSourceToken(ctx, c.Index, t)
	})
}

// VerseSplitCmd splits a source token out of its alignment.
type VerseSplitCmd struct {
	VerseFlags `embed:""`
	Index      int    `required:"" help:"Alignment index holding the token"`
	Token      string `required:"" help:"Source token as text or text:occurrence"`
}

func (c *VerseSplitCmd) Run(g *Globals) error {
	return edit(g, &c.VerseFlags, func(ctx context.Context, s *session.Session, v *alignment.Verse) error {
		t, err := findToken(v.SourceTokens, c.Token)
		if err != nil {
			return err
		}
		return s.SplitSourceToken(ctx, c.Index, t)
	})
}

// VerseMoveCmd moves a source token between rendered alignments.
type VerseMoveCmd struct {
	VerseFlags `embed:""`
	From       int    `required:"" help:"Rendered alignment holding the token"`
	To         int    `required:"" help:"Rendered alignment to move the token to"`
	Token      string `required:"" help:"Source token as text or text:occurrence"`
}

func (c *VerseMoveCmd) Run(g *Globals) error {
	return edit(g, &c.VerseFlags, func(ctx context.Context, s *session.Session, v *alignment.Verse) error {
		t, err := findToken(v.SourceTokens, c.Token)
		if err != nil {
			return err
		}
		return s.MoveSourceToken(ctx, c.To, c.From, t)
	})
}

// VerseResetCmd resets a verse.
type VerseResetCmd struct {
	VerseFlags `embed:""`
}

func (c *VerseResetCmd) Run(g *Globals) error {
	return edit(g, &c.VerseFlags, func(ctx context.Context, s *session.Session, _ *alignment.Verse) error {
		return s.ResetVerse(ctx)
	})
}

// SuggestFlags name the prediction file for a suggestion command.
type SuggestFlags struct {
	Predictions string `required:"" help:"Prediction file (JSON)" type:"existingfile"`
}

func (f *SuggestFlags) apply(ctx context.Context, s *session.Session) error {
	set, err := session.ReadPredictionSet(f.Predictions)
	if err != nil {
		return err
	}
	r := s.Context()
	if set.Ref != "" && !strings.EqualFold(set.Ref, r.String()) {
		return alerrors.NewValidation("predictions", fmt.Sprintf("file is for %s, not %s", set.Ref, r))
	}
	applied, err := s.SetSuggestions(ctx, set)
	if err != nil {
		return err
	}
	if !applied {
		return alerrors.NewValidation("predictions", "predictions were made for different verse text")
	}
	return nil
}

// SuggestShowCmd prints a verse with suggestions.
type SuggestShowCmd struct {
	VerseFlags   `embed:""`
	SuggestFlags `embed:""`
}

func (c *SuggestShowCmd) Run(g *Globals) error {
	ctx := context.Background()
	e, s, err := g.openVerse(ctx, &c.VerseFlags, false)
	if err != nil {
		return err
	}
	defer e.Close()

	if err := c.SuggestFlags.apply(ctx, s); err != nil {
		return err
	}
	view, err := viewOf(ctx, s)
	if err != nil {
		return err
	}
	return writeJSON(g.stdout(), view)
}

// SuggestAcceptCmd accepts a suggestion by aligning one of its target tokens.
type SuggestAcceptCmd struct {
	VerseFlags   `embed:""`
	SuggestFlags `embed:""`
	Index        int    `required:"" help:"Rendered alignment index"`
	Token        string `required:"" help:"Target token as text or text:occurrence"`
}

func (c *SuggestAcceptCmd) Run(g *Globals) error {
	return edit(g, &c.VerseFlags, func(ctx context.Context, s *session.Session, v *alignment.Verse) error {
		if err := c.SuggestFlags.apply(ctx, s); err != nil {
			return err
		}
		t, err := findToken(v.TargetTokens, c.Token)
		if err != nil {
			return err
		}
		return s.AlignRenderedTargetToken(ctx, c.Index, t)
	})
}

// SuggestRejectCmd rejects a suggestion by removing one of its target tokens.
type SuggestRejectCmd struct {
	VerseFlags   `embed:""`
	SuggestFlags `embed:""`
	Index        int    `required:"" help:"Rendered alignment index"`
	Token        string `required:"" help:"Target token as text or text:occurrence"`
}

func (c *SuggestRejectCmd) Run(g *Globals) error {
	return edit(g, &c.VerseFlags, func(ctx context.Context, s *session.Session, v *alignment.Verse) error {
		if err := c.SuggestFlags.apply(ctx, s); err != nil {
			return err
		}
		t, err := findToken(v.TargetTokens, c.Token)
		if err != nil {
			return err
		}
		return s.UnalignRenderedTargetToken(ctx, c.Index, t)
	})
}
