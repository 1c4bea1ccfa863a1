package quizgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildDocumentQuizPrompt(t *testing.T) {
	p := buildDocumentQuizPrompt([]Document{{Name: "a.pdf"}, {}}, 12, "French")

	assert.Contains(t, p, "exactly 12")
	assert.Contains(t, p, "French")
	assert.Contains(t, p, "1. a.pdf")
	assert.Contains(t, p, "2. document-2")
	assert.Contains(t, p, "exactly 4 distinct")
}

func TestBuildDocumentQuizPrompt_NoDocuments(t *testing.T) {
	p := buildDocumentQuizPrompt(nil, 12, "")
	assert.Contains(t, p, "Do not generate anything")
	assert.NotContains(t, p, "exactly 12")
}

func TestBuildTopicQuizPrompt_TopicGuidance(t *testing.T) {
	assert.Contains(t, buildTopicQuizPrompt(MixedTopic, 10, "French"), "mixed topic")
	assert.Contains(t, buildTopicQuizPrompt("Économie Maroc", 10, "French"), "strictly on the Moroccan context")
	assert.Contains(t, buildTopicQuizPrompt("Sciences", 10, "French"), "broad general-knowledge")
}

func TestBuildFlashFactsPrompt(t *testing.T) {
	p := buildFlashFactsPrompt("ANCFCC", 4, "French")
	assert.Contains(t, p, "approximately 4")
	assert.Contains(t, p, "Topic: ANCFCC")
	assert.NotContains(t, p, "'quiz'")
}

func TestBuildFeedbackPrompt_OmitsEmptyContext(t *testing.T) {
	p := buildFeedbackPrompt(FeedbackRequest{Question: "Q", UserAnswer: "a", CorrectAnswer: "b"}, "French")
	assert.NotContains(t, p, "---CONTEXT---")
}
