package quizgen

// Shape is the output structure declared to the model. It documents what we
// hope to receive; nothing here is enforced. Enforcement lives in
// ValidateQuestions and FilterFlashFacts.
type Shape struct {
	Name        string
	Description string
	Definition  map[string]any
}

func stringProp(desc string) map[string]any {
	return map[string]any{"type": "string", "description": desc}
}

func stringArrayProp(desc string) map[string]any {
	return map[string]any{
		"type":        "array",
		"description": desc,
		"items":       map[string]any{"type": "string"},
	}
}

var quizItemDefinition = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"question": stringProp("The quiz question."),
		"options":  stringArrayProp("Exactly 4 distinct answer options."),
		"answer":   stringProp("The correct answer, copied verbatim from options."),
	},
}

// QuizShape declares an object with an optional quiz array and an optional
// flashFacts array.
var QuizShape = &Shape{
	Name:        "quiz-with-flash-facts",
	Description: "A multiple-choice quiz plus short standalone flash facts.",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"quiz": map[string]any{
				"type":        "array",
				"description": "The generated quiz questions. Empty when nothing valid can be produced.",
				"items":       quizItemDefinition,
			},
			"flashFacts": stringArrayProp("Short standalone fact sentences. Empty when nothing useful can be extracted."),
		},
	},
}

// FlashFactsShape declares an object with an optional flashFacts array.
var FlashFactsShape = &Shape{
	Name:        "flash-facts",
	Description: "Short standalone fact sentences on a topic.",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"flashFacts": stringArrayProp("Short standalone fact sentences. Empty when nothing useful can be produced."),
		},
	},
}

// FeedbackShape declares the explanation returned for a wrong answer.
var FeedbackShape = &Shape{
	Name:        "educational-feedback",
	Description: "Why the user's answer was wrong and what to review.",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"explanation":     stringProp("Why the user's answer is wrong and why the correct answer is right."),
			"studySuggestion": stringProp("The concept or section the user should review."),
		},
	},
}
