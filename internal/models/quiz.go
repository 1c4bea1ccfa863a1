package models

import (
	"time"

	"github.com/google/uuid"

	"quizwhiz-backend/internal/quizgen"
)

const (
	QuizSourceDocument = "document"
	QuizSourceTopic    = "topic"
)

// GeneratedQuiz is a persisted generation result.
type GeneratedQuiz struct {
	ID             uuid.UUID          `json:"id"`
	UserID         uuid.UUID          `json:"user_id"`
	DocumentID     *uuid.UUID         `json:"document_id"`
	Topic          *string            `json:"topic"`
	Source         string             `json:"source"`
	Title          string             `json:"title"`
	RequestedCount int                `json:"requested_count"`
	Questions      []quizgen.Question `json:"quiz"`
	FlashFacts     []string           `json:"flashFacts,omitempty"`
	Report         *quizgen.Report    `json:"report,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
}

// QuizAttempt is one scored submission.
type QuizAttempt struct {
	ID             uuid.UUID  `json:"id"`
	UserID         uuid.UUID  `json:"user_id"`
	QuizID         *uuid.UUID `json:"quiz_id"`
	QuizTitle      string     `json:"quiz_title"`
	Score          int        `json:"score"`
	TotalQuestions int        `json:"total_questions"`
	Answers        []string   `json:"answers,omitempty"`
	AttemptedAt    time.Time  `json:"attempted_at"`
}

type DocumentQuizRequest struct {
	Count int `json:"count"`
}

type TopicQuizRequest struct {
	Topic string `json:"topic"`
	Count int    `json:"count"`
}

type FlashFactsRequest struct {
	Topic string `json:"topic"`
	Count int    `json:"count"`
}

// FlashFactsResponse leaves flashFacts out entirely when no fact survived
// filtering.
type FlashFactsResponse struct {
	Title      string   `json:"title,omitempty"`
	FlashFacts []string `json:"flashFacts,omitempty"`
}

type SaveAnswerRequest struct {
	QuestionIndex int    `json:"question_index"`
	Answer        string `json:"answer"`
}

type TopicsResponse struct {
	Topics  []string `json:"topics"`
	Default string   `json:"default"`
}
