package services

import (
	"fmt"
	"time"

	"quizwhiz-backend/internal/models"
)

// UnansweredError lists the questions still missing an answer at submit.
type UnansweredError struct {
	Indexes []int
}

func (e *UnansweredError) Error() string {
	return fmt.Sprintf("%d question(s) not answered", len(e.Indexes))
}

// Score grades a finished session. An answer counts only when it equals the
// correct answer exactly.
func Score(sess *models.QuizSession, now time.Time) (*models.AttemptResult, error) {
	if missing := sess.Unanswered(); len(missing) > 0 {
		return nil, &UnansweredError{Indexes: missing}
	}

	res := &models.AttemptResult{
		QuizID:      sess.QuizID,
		Title:       sess.Title,
		DocumentID:  sess.DocumentID,
		Total:       len(sess.Questions),
		Items:       make([]models.ResultItem, len(sess.Questions)),
		SubmittedAt: now,
	}

	for i, q := range sess.Questions {
		correct := sess.Answers[i] == q.Answer
		if correct {
			res.Score++
		}
		options := make([]string, len(q.Options))
		copy(options, q.Options)
		res.Items[i] = models.ResultItem{
			Question:      q.Question,
			Options:       options,
			UserAnswer:    sess.Answers[i],
			CorrectAnswer: q.Answer,
			IsCorrect:     correct,
		}
	}

	if res.Total > 0 {
		res.Percent = float64(res.Score) * 100 / float64(res.Total)
	}
	return res, nil
}
