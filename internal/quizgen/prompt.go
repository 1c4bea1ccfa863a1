package quizgen

import (
	"fmt"
	"strings"
)

// MixedTopic asks for a spread of general-knowledge themes.
const MixedTopic = "Mélange de sujets de culture générale (Maroc et International)"

// Topics is the catalogue of general-knowledge topics offered to users.
var Topics = []string{
	MixedTopic,
	"Football",
	"Actualité Marocaine",
	"Finance et Banque au Maroc",
	"ANCFCC",
	"Agriculture Maroc",
	"Économie Maroc",
	"Histoire",
	"Géographie",
	"Sciences",
}

var moroccanMarkers = []string{"maroc", "marocain", "marocaine", "ancfcc"}

func isMoroccanTopic(topic string) bool {
	lower := strings.ToLower(topic)
	for _, m := range moroccanMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

func writeLanguage(b *strings.Builder, language string) {
	if language == "" {
		return
	}
	b.WriteString(fmt.Sprintf("Language: ALL generated content (questions, options, answers, facts) MUST be written in %s.\n\n", language))
}

func writeQuizRules(b *strings.Builder, count int) {
	b.WriteString("Quiz ('quiz' field):\n")
	b.WriteString(fmt.Sprintf("- Generate exactly %d multiple-choice questions.\n", count))
	b.WriteString("- Every question MUST have exactly 4 distinct, non-empty answer options.\n")
	b.WriteString("- Exactly one option is correct. The 'answer' field MUST be copied verbatim from 'options'.\n")
	b.WriteString("- Every question MUST have all three fields: 'question', 'options', 'answer'. Never leave a field empty.\n")
	b.WriteString("- Each quiz must differ significantly from any previous quiz, even for the same source. Vary topics, phrasing and distractors.\n")
	b.WriteString("- Questions within the quiz must be distinct from one another.\n")
	b.WriteString("- If you cannot produce a question that follows every rule, leave it out. If you cannot produce any, return an empty 'quiz' array. Never return malformed entries.\n\n")
}

func writeFactRules(b *strings.Builder, field string, approx string) {
	b.WriteString(fmt.Sprintf("Flash facts ('%s' field):\n", field))
	b.WriteString(fmt.Sprintf("- Provide %s short, standalone sentences, each carrying one concrete fact useful for quick review.\n", approx))
	b.WriteString("- Flash facts must not repeat the quiz questions or answers.\n")
	b.WriteString("- If no useful fact can be extracted, return an empty array. Never return placeholder text such as \"no information available\".\n\n")
}

func writeTopicGuidance(b *strings.Builder, topic string) {
	switch {
	case topic == MixedTopic:
		b.WriteString("This is a mixed topic: cover several areas such as football (general and Moroccan), recent Moroccan news, finance and banking in Morocco, the ANCFCC (Agence Nationale de la Conservation Foncière, du Cadastre et de la Cartographie), agriculture in Morocco, the Moroccan economy and other general-knowledge themes. Keep a good balance and variety. Emphasise the Moroccan context where appropriate.\n\n")
	case isMoroccanTopic(topic):
		b.WriteString("This topic has an explicit Moroccan connotation: focus the content strictly on the Moroccan context.\n\n")
	default:
		b.WriteString("Keep a broad general-knowledge perspective on this topic. A Moroccan angle may be included when it fits naturally.\n\n")
	}
}

// buildDocumentQuizPrompt renders the prompt for a quiz over attached
// documents. The documents themselves travel as separate parts of the
// request; the prompt only refers to them.
func buildDocumentQuizPrompt(docs []Document, count int, language string) string {
	var b strings.Builder

	b.WriteString("You are an expert educational content generator. Analyse the content of ALL the attached documents carefully.\n")
	b.WriteString("Return ONLY a valid JSON object with two fields: 'quiz' and 'flashFacts'. No preamble, no markdown.\n\n")
	writeLanguage(&b, language)

	if len(docs) == 0 {
		b.WriteString("Error: no documents were provided, so no content is available. Do not generate anything. Return {\"quiz\": [], \"flashFacts\": []}.\n")
		return b.String()
	}

	writeQuizRules(&b, count)
	b.WriteString("- Cover a wide range of sections of the documents; do not concentrate on one part.\n")
	b.WriteString("- The correct answer must be directly verifiable from the document content.\n\n")
	writeFactRules(&b, "flashFacts", "3 to 8")

	b.WriteString("Attached documents:\n")
	for i, d := range docs {
		name := d.Name
		if name == "" {
			name = fmt.Sprintf("document-%d", i+1)
		}
		b.WriteString(fmt.Sprintf("%d. %s\n", i+1, name))
	}

	return b.String()
}

func buildTopicQuizPrompt(topic string, count int, language string) string {
	var b strings.Builder

	b.WriteString("You are an expert creator of educational quizzes.\n")
	b.WriteString("Return ONLY a valid JSON object with two fields: 'quiz' and 'flashFacts'. No preamble, no markdown.\n\n")
	writeLanguage(&b, language)

	if strings.TrimSpace(topic) == "" {
		b.WriteString("Error: no topic was provided, so no content is available. Do not generate anything. Return {\"quiz\": [], \"flashFacts\": []}.\n")
		return b.String()
	}

	b.WriteString(fmt.Sprintf("Topic: %s\n\n", topic))
	writeTopicGuidance(&b, topic)
	writeQuizRules(&b, count)
	b.WriteString("- Questions must be clear, original and relevant; avoid trivial or obscure questions.\n\n")
	writeFactRules(&b, "flashFacts", "2 to 3")

	return b.String()
}

func buildFlashFactsPrompt(topic string, count int, language string) string {
	var b strings.Builder

	b.WriteString("You are an expert at writing concise, relevant educational content.\n")
	b.WriteString("Return ONLY a valid JSON object with one field: 'flashFacts'. No preamble, no markdown.\n\n")
	writeLanguage(&b, language)

	if strings.TrimSpace(topic) == "" {
		b.WriteString("Error: no topic was provided, so no content is available. Do not generate anything. Return {\"flashFacts\": []}.\n")
		return b.String()
	}

	b.WriteString(fmt.Sprintf("Topic: %s\n\n", topic))
	writeTopicGuidance(&b, topic)
	writeFactRules(&b, "flashFacts", fmt.Sprintf("approximately %d", count))

	return b.String()
}

func buildFeedbackPrompt(req FeedbackRequest, language string) string {
	var b strings.Builder

	b.WriteString("You are an expert teacher giving feedback on a quiz question the user answered incorrectly.\n")
	b.WriteString("Return ONLY a valid JSON object with two fields: 'explanation' and 'studySuggestion'. No preamble, no markdown.\n\n")
	writeLanguage(&b, language)

	b.WriteString("1. 'explanation': explain clearly why the user's answer is incorrect and why the correct answer is correct.\n")
	b.WriteString("2. 'studySuggestion': name the key concept or section the user should review to understand this question.\n\n")
	b.WriteString("Use the context below to inform your answer. The context may be in another language.\n\n")

	b.WriteString(fmt.Sprintf("Question: %s\n", req.Question))
	b.WriteString(fmt.Sprintf("User answer: %s\n", req.UserAnswer))
	b.WriteString(fmt.Sprintf("Correct answer: %s\n", req.CorrectAnswer))
	if strings.TrimSpace(req.Context) != "" {
		b.WriteString("---CONTEXT---\n")
		b.WriteString(req.Context)
		b.WriteString("\n---END---\n")
	}

	return b.String()
}
