package models

import (
	"time"

	"github.com/google/uuid"

	"quizwhiz-backend/internal/quizgen"
)

// ActiveQuiz is the quiz a user picked or just generated, before playing.
type ActiveQuiz struct {
	QuizID     uuid.UUID          `json:"quiz_id"`
	Title      string             `json:"title"`
	Source     string             `json:"source"`
	DocumentID *uuid.UUID         `json:"document_id,omitempty"`
	Questions  []quizgen.Question `json:"quiz"`
	FlashFacts []string           `json:"flashFacts,omitempty"`
	SetAt      time.Time          `json:"set_at"`
}

// QuizSession is a quiz being played. Answers is index-aligned with
// Questions; an empty string means unanswered.
type QuizSession struct {
	QuizID     uuid.UUID          `json:"quiz_id"`
	Title      string             `json:"title"`
	DocumentID *uuid.UUID         `json:"document_id,omitempty"`
	Questions  []quizgen.Question `json:"quiz"`
	Answers    []string           `json:"answers"`
	StartedAt  time.Time          `json:"started_at"`
}

// Unanswered returns the indexes of questions without an answer.
func (s *QuizSession) Unanswered() []int {
	var out []int
	for i := range s.Questions {
		if i >= len(s.Answers) || s.Answers[i] == "" {
			out = append(out, i)
		}
	}
	return out
}

type ResultItem struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	UserAnswer    string   `json:"userAnswer"`
	CorrectAnswer string   `json:"correctAnswer"`
	IsCorrect     bool     `json:"isCorrect"`
}

// AttemptResult is what the results page shows for the last submission.
type AttemptResult struct {
	AttemptID   uuid.UUID              `json:"attempt_id"`
	QuizID      uuid.UUID              `json:"quiz_id"`
	Title       string                 `json:"title"`
	DocumentID  *uuid.UUID             `json:"document_id,omitempty"`
	Score       int                    `json:"score"`
	Total       int                    `json:"total"`
	Percent     float64                `json:"percent"`
	Items       []ResultItem           `json:"items"`
	Feedback    []quizgen.FeedbackItem `json:"feedback,omitempty"`
	SubmittedAt time.Time              `json:"submitted_at"`
}

// Mistakes lists the wrongly answered items as feedback requests.
func (r *AttemptResult) Mistakes() []quizgen.FeedbackRequest {
	var out []quizgen.FeedbackRequest
	for _, it := range r.Items {
		if it.IsCorrect {
			continue
		}
		out = append(out, quizgen.FeedbackRequest{
			Question:      it.Question,
			UserAnswer:    it.UserAnswer,
			CorrectAnswer: it.CorrectAnswer,
		})
	}
	return out
}
