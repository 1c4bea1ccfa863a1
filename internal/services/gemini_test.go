package services

import (
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quizwhiz-backend/internal/quizgen"
)

func TestShapeToSchema_Quiz(t *testing.T) {
	sch := shapeToSchema(quizgen.QuizShape.Definition)

	require.NotNil(t, sch)
	assert.Equal(t, genai.TypeObject, sch.Type)
	assert.Empty(t, sch.Required)

	quiz := sch.Properties["quiz"]
	require.NotNil(t, quiz)
	assert.Equal(t, genai.TypeArray, quiz.Type)
	require.NotNil(t, quiz.Items)
	assert.Equal(t, genai.TypeObject, quiz.Items.Type)
	assert.Equal(t, genai.TypeArray, quiz.Items.Properties["options"].Type)
	assert.Equal(t, genai.TypeString, quiz.Items.Properties["options"].Items.Type)

	facts := sch.Properties["flashFacts"]
	require.NotNil(t, facts)
	assert.NotEmpty(t, facts.Description)
}

func TestShapeToSchema_Nil(t *testing.T) {
	assert.Nil(t, shapeToSchema(nil))
}

func TestExtractText(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []genai.Part{genai.Text(`{"quiz":`), genai.Text(`[]}`)}}},
			{Content: nil},
		},
	}
	assert.Equal(t, `{"quiz":[]}`, extractText(resp))
}
