package quizgen

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"quizwhiz-backend/internal/logger"
)

// Completion is a single request to the generative service.
type Completion struct {
	Name      string
	Prompt    string
	Documents []Document
	Shape     *Shape
}

// Completer sends a completion to a generative model and returns its raw
// text. Implementations must not cache: identical completions are expected
// to yield different output.
type Completer interface {
	Complete(ctx context.Context, c Completion) (string, error)
}

// Generator runs the guard, prompt, call, parse and filter steps. It holds
// no per-call state and is safe for concurrent use.
type Generator struct {
	completer Completer
	opts      Options
}

func NewGenerator(completer Completer, opts Options) *Generator {
	if opts.DenyList == nil {
		opts.DenyList = DefaultDenyList
	}
	if opts.EmptyPolicy == "" {
		opts.EmptyPolicy = PolicyFail
	}
	return &Generator{completer: completer, opts: opts}
}

// Options returns the configuration the generator was built with.
func (g *Generator) Options() Options {
	return g.opts
}

// CheckDocumentQuizCount applies the document quiz bounds without calling
// the model, so a queued job can be rejected up front.
func (g *Generator) CheckDocumentQuizCount(count int) error {
	return checkCount(count, g.opts.DocumentQuizBounds)
}

// Generate dispatches to QuizFromDocuments when any document carries data and
// to QuizFromTopic otherwise. Empty documents with no topic are still
// rejected as a missing documents field.
func (g *Generator) Generate(ctx context.Context, req Request) (*Result, *Report, error) {
	if hasDocumentData(req.Documents) || (len(req.Documents) > 0 && strings.TrimSpace(req.Topic) == "") {
		return g.QuizFromDocuments(ctx, req.Documents, req.Count)
	}
	return g.QuizFromTopic(ctx, req.Topic, req.Count)
}

// QuizFromDocuments generates a quiz and flash facts from the attached
// documents.
func (g *Generator) QuizFromDocuments(ctx context.Context, docs []Document, count int) (*Result, *Report, error) {
	if !hasDocumentData(docs) {
		return nil, nil, &InvalidRequestError{Field: "documents", Message: "no documents provided"}
	}
	if err := checkCount(count, g.opts.DocumentQuizBounds); err != nil {
		return nil, nil, err
	}

	return g.run(ctx, Completion{
		Name:      "document-quiz",
		Prompt:    buildDocumentQuizPrompt(docs, count, g.opts.Language),
		Documents: docs,
		Shape:     QuizShape,
	}, count, true)
}

// QuizFromTopic generates a general-knowledge quiz with optional flash facts.
func (g *Generator) QuizFromTopic(ctx context.Context, topic string, count int) (*Result, *Report, error) {
	if strings.TrimSpace(topic) == "" {
		return nil, nil, &InvalidRequestError{Field: "topic", Message: "no documents or topic provided"}
	}
	if err := checkCount(count, g.opts.TopicQuizBounds); err != nil {
		return nil, nil, err
	}

	return g.run(ctx, Completion{
		Name:   "topic-quiz",
		Prompt: buildTopicQuizPrompt(topic, count, g.opts.Language),
		Shape:  QuizShape,
	}, count, true)
}

// FlashFacts generates only flash facts on a topic. The returned Quiz is
// always empty.
func (g *Generator) FlashFacts(ctx context.Context, topic string, count int) (*Result, *Report, error) {
	if strings.TrimSpace(topic) == "" {
		return nil, nil, &InvalidRequestError{Field: "topic", Message: "topic is required"}
	}
	if err := checkCount(count, g.opts.FlashFactBounds); err != nil {
		return nil, nil, err
	}

	return g.run(ctx, Completion{
		Name:   "flash-facts",
		Prompt: buildFlashFactsPrompt(topic, count, g.opts.Language),
		Shape:  FlashFactsShape,
	}, count, false)
}

func hasDocumentData(docs []Document) bool {
	for _, d := range docs {
		if len(d.Data) > 0 {
			return true
		}
	}
	return false
}

func checkCount(count int, b Bounds) error {
	if !b.Contains(count) {
		return &InvalidRequestError{
			Field:   "count",
			Message: fmt.Sprintf("must be between %d and %d", b.Min, b.Max),
		}
	}
	return nil
}

func (g *Generator) run(ctx context.Context, c Completion, requested int, wantQuiz bool) (*Result, *Report, error) {
	log := logger.WithContext(ctx).WithFields(logrus.Fields{
		"op":        c.Name,
		"requested": requested,
		"documents": len(c.Documents),
	})

	raw, err := g.completer.Complete(ctx, c)
	if err != nil {
		log.WithError(err).Error("generation call failed")
		return nil, nil, &ServiceUnavailableError{Op: c.Name, Err: err}
	}

	obj, violations, err := parseOutput(raw)
	if err != nil {
		log.WithError(err).Error("generation output unparseable")
		return nil, nil, &ServiceUnavailableError{Op: c.Name, Err: err}
	}
	if len(violations) > 0 {
		log.WithField("violations", violations).Debug("output does not match the declared shape")
	}

	report := &Report{Requested: requested, SchemaViolations: violations}
	result := &Result{Quiz: []Question{}}

	if wantQuiz {
		candidates := quizCandidates(obj)
		quiz, dropped := ValidateQuestions(candidates)
		result.Quiz = quiz
		report.Candidates = len(candidates)
		report.Kept = len(quiz)
		report.Dropped = dropped
	}

	facts := factCandidates(obj)
	result.FlashFacts = FilterFlashFacts(facts, g.opts.DenyList)
	report.FactCandidates = len(facts)
	report.FactsKept = len(result.FlashFacts)

	produced := report.Kept
	if !wantQuiz {
		produced = report.FactsKept
	}
	if float64(produced) < float64(requested)*g.opts.WarnRatio {
		report.UnderGenerated = true
	}

	log = log.WithFields(logrus.Fields{
		"candidates": report.Candidates,
		"kept":       report.Kept,
		"dropped":    report.Dropped,
		"facts_kept": report.FactsKept,
	})
	if report.UnderGenerated {
		log.Warn("generation returned fewer usable items than requested")
	}

	if result.Empty() {
		if g.opts.EmptyPolicy == PolicyFail {
			log.Warn("no usable content generated")
			return nil, report, &NoUsableContentError{Op: c.Name, Report: *report}
		}
		log.Warn("no usable content generated, returning empty result")
	} else {
		log.Info("generation completed")
	}

	return result, report, nil
}
