package quizgen

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"quizwhiz-backend/internal/logger"
)

const (
	FallbackExplanation     = "Explication non disponible."
	FallbackStudySuggestion = "Suggestion d'étude non disponible."
	// FallbackUnreachable replaces an explanation when the call itself fails.
	FallbackUnreachable = "Impossible de récupérer l'explication pour le moment."
)

// FeedbackRequest describes one incorrectly answered question.
type FeedbackRequest struct {
	Question      string `json:"question"`
	UserAnswer    string `json:"userAnswer"`
	CorrectAnswer string `json:"correctAnswer"`
	Context       string `json:"context,omitempty"`
}

type Feedback struct {
	Explanation     string `json:"explanation"`
	StudySuggestion string `json:"studySuggestion"`
}

// FeedbackItem pairs a mistake with the feedback produced for it.
type FeedbackItem struct {
	Question      string `json:"question"`
	UserAnswer    string `json:"userAnswer"`
	CorrectAnswer string `json:"correctAnswer"`
	Feedback
	Failed bool `json:"failed,omitempty"`
}

// Feedback asks the model why an answer was wrong. Missing fields in the
// response are replaced with fixed fallback sentences.
func (g *Generator) Feedback(ctx context.Context, req FeedbackRequest) (*Feedback, error) {
	const op = "educational-feedback"

	if strings.TrimSpace(req.Question) == "" {
		return nil, &InvalidRequestError{Field: "question", Message: "is required"}
	}
	if strings.TrimSpace(req.CorrectAnswer) == "" {
		return nil, &InvalidRequestError{Field: "correctAnswer", Message: "is required"}
	}

	raw, err := g.completer.Complete(ctx, Completion{
		Name:   op,
		Prompt: buildFeedbackPrompt(req, g.opts.Language),
		Shape:  FeedbackShape,
	})
	if err != nil {
		return nil, &ServiceUnavailableError{Op: op, Err: err}
	}

	obj, _, err := parseOutput(raw)
	if err != nil {
		return nil, &ServiceUnavailableError{Op: op, Err: err}
	}

	fb := &Feedback{
		Explanation:     FallbackExplanation,
		StudySuggestion: FallbackStudySuggestion,
	}
	if s, ok := nonBlankString(obj["explanation"]); ok {
		fb.Explanation = s
	}
	if s, ok := nonBlankString(obj["studySuggestion"]); ok {
		fb.StudySuggestion = s
	}
	return fb, nil
}

// FeedbackForMistakes runs Feedback for every mistake with at most limit
// calls in flight. A failed call never fails the batch: its item carries the
// unreachable fallback instead. Items keep the order of mistakes.
func (g *Generator) FeedbackForMistakes(ctx context.Context, mistakes []FeedbackRequest, limit int) []FeedbackItem {
	items := make([]FeedbackItem, len(mistakes))
	if limit <= 0 {
		limit = 1
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(limit)

	for i, m := range mistakes {
		items[i] = FeedbackItem{
			Question:      m.Question,
			UserAnswer:    m.UserAnswer,
			CorrectAnswer: m.CorrectAnswer,
		}
		eg.Go(func() error {
			fb, err := g.Feedback(egCtx, m)
			if err != nil {
				logger.WithContext(ctx).WithFields(logrus.Fields{
					"index": i,
				}).WithError(err).Warn("feedback generation failed")
				items[i].Feedback = Feedback{
					Explanation:     FallbackUnreachable,
					StudySuggestion: FallbackStudySuggestion,
				}
				items[i].Failed = true
				return nil
			}
			items[i].Feedback = *fb
			return nil
		})
	}

	_ = eg.Wait()
	return items
}
