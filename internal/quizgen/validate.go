package quizgen

import (
	"strings"
)

const optionsPerQuestion = 4

// ValidateQuestions keeps the candidates that satisfy every question
// invariant, in their original order, and reports how many were dropped.
// Kept values are copied verbatim; nothing is trimmed or repaired.
func ValidateQuestions(candidates []Candidate) ([]Question, int) {
	valid := make([]Question, 0, len(candidates))
	for _, c := range candidates {
		q, ok := toQuestion(c)
		if !ok {
			continue
		}
		valid = append(valid, q)
	}
	return valid, len(candidates) - len(valid)
}

func toQuestion(c Candidate) (Question, bool) {
	question, ok := nonBlankString(c.Question)
	if !ok {
		return Question{}, false
	}

	options, ok := stringOptions(c.Options)
	if !ok || len(options) != optionsPerQuestion {
		return Question{}, false
	}

	seen := make(map[string]struct{}, len(options))
	for _, opt := range options {
		if strings.TrimSpace(opt) == "" {
			return Question{}, false
		}
		if _, dup := seen[opt]; dup {
			return Question{}, false
		}
		seen[opt] = struct{}{}
	}

	answer, ok := nonBlankString(c.Answer)
	if !ok {
		return Question{}, false
	}
	if _, found := seen[answer]; !found {
		return Question{}, false
	}

	return Question{Question: question, Options: options, Answer: answer}, true
}

func nonBlankString(v any) (string, bool) {
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", false
	}
	return s, true
}

// stringOptions accepts the JSON-decoded []any form as well as []string and
// always returns a fresh slice.
func stringOptions(v any) ([]string, bool) {
	switch opts := v.(type) {
	case []string:
		out := make([]string, len(opts))
		copy(out, opts)
		return out, true
	case []any:
		out := make([]string, 0, len(opts))
		for _, o := range opts {
			s, ok := o.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	default:
		return nil, false
	}
}

// FilterFlashFacts drops blank facts and facts containing a deny-listed
// placeholder phrase (case-insensitive). It returns nil, not an empty slice,
// when nothing survives.
func FilterFlashFacts(candidates []string, denyList []string) []string {
	var kept []string
	for _, fact := range candidates {
		if strings.TrimSpace(fact) == "" {
			continue
		}
		if isBoilerplate(fact, denyList) {
			continue
		}
		kept = append(kept, fact)
	}
	return kept
}

func isBoilerplate(fact string, denyList []string) bool {
	lower := strings.ToLower(fact)
	for _, phrase := range denyList {
		p := strings.ToLower(strings.TrimSpace(phrase))
		if p != "" && strings.Contains(lower, p) {
			return true
		}
	}
	return false
}
