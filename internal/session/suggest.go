package session

import (
	"context"
	"encoding/json"
	"os"

	"github.com/FocuswithJustin/JuniperAligner/core/alignment"
	alerrors "github.com/FocuswithJustin/JuniperAligner/core/errors"
	"github.com/FocuswithJustin/JuniperAligner/core/ref"
	"github.com/FocuswithJustin/JuniperAligner/internal/logging"
)

// PredictionSet is a batch of predictions for one verse. Fingerprint names
// the verse text the predictions were made for; empty means unknown.
type PredictionSet struct {
	Ref         string                 `json:"ref"`
	Fingerprint string                 `json:"fingerprint,omitempty"`
	Predictions []alignment.Prediction `json:"predictions"`
}

// ReadPredictionSet decodes a prediction file.
func ReadPredictionSet(path string) (PredictionSet, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return PredictionSet{}, alerrors.NewIO("read", path, err)
	}
	var set PredictionSet
	if err := json.Unmarshal(raw, &set); err != nil {
		return PredictionSet{}, &alerrors.ParseError{Format: "predictions", Path: path, Message: err.Error()}
	}
	return set, nil
}

// SetSuggestions stores predictions as the active verse's suggestions.
// Predictions made for different verse text are discarded and false is
// returned, unless the session keeps stale suggestions.
func (s *Session) SetSuggestions(ctx context.Context, set PredictionSet) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, err := s.requireContext(ctx, "suggest")
	if err != nil {
		return false, err
	}
	source, target, err := s.baselines(r)
	if err != nil {
		return false, err
	}
	if set.Fingerprint != "" && set.Fingerprint != Fingerprint(source, target) && !s.opts.KeepStaleSuggestions {
		logging.WarnContext(s.logCtx(ctx), "stale_predictions_discarded", "ref", r.String())
		return false, nil
	}
	op := alignment.SetAlignmentSuggestions{Chapter: r.Chapter, Verse: r.Verse, Predictions: set.Predictions}
	if err := s.apply(ctx, r, op); err != nil {
		return false, err
	}
	return true, nil
}

// Suggest asks the configured predictor for suggestions on the active verse.
func (s *Session) Suggest(ctx context.Context) (bool, error) {
	if s.opts.Predictor == nil {
		return false, alerrors.NewUnsupported("suggest", "no predictor configured")
	}

	s.mu.Lock()
	r, err := s.requireContext(ctx, "suggest")
	if err != nil {
		s.mu.Unlock()
		return false, err
	}
	source, target, err := s.baselines(r)
	s.mu.Unlock()
	if err != nil {
		return false, err
	}

	predictions, err := s.opts.Predictor.Predict(ctx, source, target)
	if err != nil {
		return false, err
	}
	return s.SetSuggestions(ctx, PredictionSet{
		Ref:         r.String(),
		Fingerprint: Fingerprint(source, target),
		Predictions: predictions,
	})
}

// ClearSuggestions drops the active verse's suggestions.
func (s *Session) ClearSuggestions(ctx context.Context) error {
	return s.withVerse(ctx, "clear_suggestions", func(r *ref.Ref) []alignment.Operation {
		return []alignment.Operation{alignment.ResetVerseSuggestions{Chapter: r.Chapter, Verse: r.Verse}}
	})
}
