package quizgen

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Candidate is one quiz item exactly as the model returned it. Fields keep
// whatever JSON type arrived so that a wrong type drops the item instead of
// failing the whole decode.
type Candidate struct {
	Question any
	Options  any
	Answer   any
}

var errNotJSONObject = errors.New("response is not a JSON object")

// lenientSchema is the parse target: every field optional, arrays of any
// length. A violation is a diagnostic, never a failure.
var lenientSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"quiz": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"question": map[string]any{"type": "string"},
					"options":  map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
					"answer":   map[string]any{"type": "string"},
				},
			},
		},
		"flashFacts": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string"},
		},
	},
}

var (
	compileOnce     sync.Once
	compiledLenient *jsonschema.Schema
	compileErr      error
)

func lenientValidator() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		c := jsonschema.NewCompiler()
		const url = "schema://quizwhiz/lenient-output.json"
		if err := c.AddResource(url, lenientSchema); err != nil {
			compileErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiledLenient, compileErr = c.Compile(url)
	})
	return compiledLenient, compileErr
}

// stripFences removes a surrounding Markdown code block if present.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```JSON")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// parseOutput decodes raw model text into a JSON object. It fails only when
// no JSON object can be recovered; schema mismatches come back as
// violations.
func parseOutput(raw string) (map[string]any, []string, error) {
	text := stripFences(raw)

	var decoded any
	if err := json.Unmarshal([]byte(text), &decoded); err != nil {
		start := strings.Index(text, "{")
		end := strings.LastIndex(text, "}")
		if start < 0 || end <= start {
			return nil, nil, fmt.Errorf("%w: %v", errNotJSONObject, err)
		}
		if err := json.Unmarshal([]byte(text[start:end+1]), &decoded); err != nil {
			return nil, nil, fmt.Errorf("%w: %v", errNotJSONObject, err)
		}
	}

	obj, ok := decoded.(map[string]any)
	if !ok {
		return nil, nil, errNotJSONObject
	}

	var violations []string
	sch, err := lenientValidator()
	if err != nil {
		violations = append(violations, "lenient schema unavailable: "+err.Error())
	} else if err := sch.Validate(obj); err != nil {
		violations = append(violations, err.Error())
	}

	return obj, violations, nil
}

func quizCandidates(obj map[string]any) []Candidate {
	items, _ := obj["quiz"].([]any)
	out := make([]Candidate, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			out = append(out, Candidate{})
			continue
		}
		out = append(out, Candidate{
			Question: m["question"],
			Options:  m["options"],
			Answer:   m["answer"],
		})
	}
	return out
}

// factCandidates returns the raw flash facts. Older prompts produced a
// single flashInformation string; it is accepted when flashFacts is missing.
func factCandidates(obj map[string]any) []string {
	items, ok := obj["flashFacts"].([]any)
	if !ok {
		if info, ok := obj["flashInformation"].(string); ok {
			return []string{info}
		}
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, _ := item.(string)
		out = append(out, s)
	}
	return out
}
