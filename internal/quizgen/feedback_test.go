package quizgen

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeedback(t *testing.T) {
	m := NewMockCompleter(MockResponse{Text: `{"explanation": "Rabat est la capitale.", "studySuggestion": "Revoir la géographie administrative."}`})
	g := newTestGenerator(m)

	fb, err := g.Feedback(context.Background(), FeedbackRequest{
		Question:      "Quelle est la capitale du Maroc ?",
		UserAnswer:    "Casablanca",
		CorrectAnswer: "Rabat",
		Context:       "Chapitre 2",
	})

	require.NoError(t, err)
	assert.Equal(t, "Rabat est la capitale.", fb.Explanation)
	assert.Equal(t, "Revoir la géographie administrative.", fb.StudySuggestion)

	prompt := m.Calls()[0].Prompt
	assert.Contains(t, prompt, "Casablanca")
	assert.Contains(t, prompt, "Chapitre 2")
}

func TestFeedback_Fallbacks(t *testing.T) {
	m := NewMockCompleter(MockResponse{Text: `{"explanation": "  "}`})
	g := newTestGenerator(m)

	fb, err := g.Feedback(context.Background(), FeedbackRequest{Question: "Q", UserAnswer: "a", CorrectAnswer: "b"})

	require.NoError(t, err)
	assert.Equal(t, FallbackExplanation, fb.Explanation)
	assert.Equal(t, FallbackStudySuggestion, fb.StudySuggestion)
}

func TestFeedback_Errors(t *testing.T) {
	m := NewMockCompleter(MockResponse{Err: errors.New("down")})
	g := newTestGenerator(m)

	_, err := g.Feedback(context.Background(), FeedbackRequest{Question: "", CorrectAnswer: "b"})
	assert.ErrorIs(t, err, ErrInvalidRequest)
	assert.Zero(t, m.CallCount())

	_, err = g.Feedback(context.Background(), FeedbackRequest{Question: "Q", CorrectAnswer: "b"})
	assert.ErrorIs(t, err, ErrServiceUnavailable)
}

func TestFeedbackForMistakes_PartialFailure(t *testing.T) {
	m := NewMockCompleter()
	m.Fallback = &MockResponse{Err: errors.New("timeout")}
	g := newTestGenerator(m)

	mistakes := []FeedbackRequest{
		{Question: "Q1", UserAnswer: "a", CorrectAnswer: "b"},
		{Question: "Q2", UserAnswer: "c", CorrectAnswer: "d"},
		{Question: "Q3", UserAnswer: "e", CorrectAnswer: "f"},
	}

	items := g.FeedbackForMistakes(context.Background(), mistakes, 2)

	require.Len(t, items, 3)
	for i, it := range items {
		assert.Equal(t, mistakes[i].Question, it.Question)
		assert.True(t, it.Failed)
		assert.Equal(t, FallbackUnreachable, it.Explanation)
	}
	assert.Equal(t, 3, m.CallCount())
}

func TestFeedbackForMistakes_Success(t *testing.T) {
	m := NewMockCompleter()
	m.Fallback = &MockResponse{Text: `{"explanation": "because", "studySuggestion": "chapter 1"}`}
	g := newTestGenerator(m)

	items := g.FeedbackForMistakes(context.Background(), []FeedbackRequest{
		{Question: "Q1", UserAnswer: "a", CorrectAnswer: "b"},
		{Question: "Q2", UserAnswer: "c", CorrectAnswer: "d"},
	}, 0)

	require.Len(t, items, 2)
	assert.Equal(t, "Q2", items[1].Question)
	assert.Equal(t, "because", items[1].Explanation)
	assert.False(t, items[0].Failed)
}
