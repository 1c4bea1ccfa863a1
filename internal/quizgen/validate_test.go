package quizgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func opts(vals ...string) []any {
	out := make([]any, len(vals))
	for i, v := range vals {
		out[i] = v
	}
	return out
}

func TestValidateQuestions_DropsEmptyQuestion(t *testing.T) {
	candidates := []Candidate{
		{Question: "Q1", Options: opts("A", "B", "C", "D"), Answer: "B"},
		{Question: "", Options: opts("A", "B", "C", "D"), Answer: "A"},
	}

	quiz, dropped := ValidateQuestions(candidates)

	require.Len(t, quiz, 1)
	assert.Equal(t, Question{Question: "Q1", Options: []string{"A", "B", "C", "D"}, Answer: "B"}, quiz[0])
	assert.Equal(t, 1, dropped)
}

func TestValidateQuestions_DropsThreeOptionItem(t *testing.T) {
	quiz, dropped := ValidateQuestions([]Candidate{
		{Question: "Q", Options: opts("A", "B", "C"), Answer: "A"},
	})

	assert.Empty(t, quiz)
	assert.NotNil(t, quiz)
	assert.Equal(t, 1, dropped)
}

func TestValidateQuestions_Rules(t *testing.T) {
	tests := []struct {
		name string
		c    Candidate
		keep bool
	}{
		{"valid", Candidate{"What?", opts("a", "b", "c", "d"), "c"}, true},
		{"string slice options", Candidate{"What?", []string{"a", "b", "c", "d"}, "a"}, true},
		{"blank question", Candidate{"   ", opts("a", "b", "c", "d"), "a"}, false},
		{"question not a string", Candidate{42.0, opts("a", "b", "c", "d"), "a"}, false},
		{"missing options", Candidate{"What?", nil, "a"}, false},
		{"five options", Candidate{"What?", opts("a", "b", "c", "d", "e"), "a"}, false},
		{"blank option", Candidate{"What?", opts("a", "", "c", "d"), "a"}, false},
		{"whitespace option", Candidate{"What?", opts("a", " ", "c", "d"), "a"}, false},
		{"non-string option", Candidate{"What?", []any{"a", 2.0, "c", "d"}, "a"}, false},
		{"duplicate options", Candidate{"What?", opts("a", "a", "c", "d"), "a"}, false},
		{"missing answer", Candidate{"What?", opts("a", "b", "c", "d"), nil}, false},
		{"blank answer", Candidate{"What?", opts("a", "b", "c", "d"), " "}, false},
		{"answer not in options", Candidate{"What?", opts("a", "b", "c", "d"), "e"}, false},
		{"answer differs in case", Candidate{"What?", opts("a", "b", "c", "d"), "A"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quiz, dropped := ValidateQuestions([]Candidate{tt.c})
			if tt.keep {
				assert.Len(t, quiz, 1)
				assert.Zero(t, dropped)
			} else {
				assert.Empty(t, quiz)
				assert.Equal(t, 1, dropped)
			}
		})
	}
}

func TestValidateQuestions_PreservesOrderAndValues(t *testing.T) {
	candidates := []Candidate{
		{Question: " First ", Options: opts("1", "2", "3", "4"), Answer: "1"},
		{Question: "bad", Options: opts("1"), Answer: "1"},
		{Question: "Second", Options: opts("w", "x", "y", "z"), Answer: "z"},
		{Question: "Third", Options: opts("p", "q", "r", "s"), Answer: "q"},
	}

	quiz, dropped := ValidateQuestions(candidates)

	require.Len(t, quiz, 3)
	assert.Equal(t, 1, dropped)
	assert.Equal(t, " First ", quiz[0].Question, "kept values are not trimmed")
	assert.Equal(t, "Second", quiz[1].Question)
	assert.Equal(t, "Third", quiz[2].Question)
}

func TestValidateQuestions_DoesNotAliasInput(t *testing.T) {
	src := []string{"a", "b", "c", "d"}
	quiz, _ := ValidateQuestions([]Candidate{{Question: "Q", Options: src, Answer: "a"}})
	require.Len(t, quiz, 1)

	quiz[0].Options[0] = "changed"
	assert.Equal(t, "a", src[0])
}

func TestFilterFlashFacts(t *testing.T) {
	facts := FilterFlashFacts(
		[]string{"", "Le Maroc a exporté 2M tonnes.", "Aucune information flash spécifique."},
		DefaultDenyList,
	)
	assert.Equal(t, []string{"Le Maroc a exporté 2M tonnes."}, facts)
}

func TestFilterFlashFacts_NilWhenNothingSurvives(t *testing.T) {
	facts := FilterFlashFacts([]string{"  ", "No specific flash information could be extracted from the PDF."}, DefaultDenyList)
	assert.Nil(t, facts)

	assert.Nil(t, FilterFlashFacts(nil, DefaultDenyList))
}

func TestFilterFlashFacts_CustomDenyList(t *testing.T) {
	facts := FilterFlashFacts([]string{"N/A", "Rabat is the capital."}, []string{"n/a", "  "})
	assert.Equal(t, []string{"Rabat is the capital."}, facts)
}
