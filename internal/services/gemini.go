package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"

	"quizwhiz-backend/internal/logger"
	"quizwhiz-backend/internal/quizgen"
)

// Documents above this combined size are sent through the File API instead
// of inline blobs; Gemini rejects inline requests near 20 MB.
const inlineDocumentLimit = 15 << 20

var errEmptyResponse = errors.New("Gemini returned empty text")

// GeminiService implements quizgen.Completer.
type GeminiService struct {
	client      *genai.Client
	modelName   string
	temperature float32
	rateChan    chan struct{} // Token bucket
	rateTimeout time.Duration
}

func NewGeminiService(ctx context.Context, apiKey, modelName string, temperature float64, concurrentReqs int) (*GeminiService, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	if concurrentReqs < 1 {
		concurrentReqs = 1
	}
	rateChan := make(chan struct{}, concurrentReqs)
	for i := 0; i < concurrentReqs; i++ {
		rateChan <- struct{}{}
	}

	return &GeminiService{
		client:      client,
		modelName:   modelName,
		temperature: float32(temperature),
		rateChan:    rateChan,
		rateTimeout: 5 * time.Minute,
	}, nil
}

func (s *GeminiService) Close() {
	s.client.Close()
}

// acquireRate blocks until a rate slot is available
func (s *GeminiService) acquireRate(ctx context.Context) error {
	select {
	case <-s.rateChan:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(s.rateTimeout):
		return fmt.Errorf("timeout waiting for Gemini rate slot")
	}
}

func (s *GeminiService) releaseRate() {
	s.rateChan <- struct{}{}
}

// Complete sends one prompt with its documents. A fresh model is built per
// call since GenerativeModel settings are not safe to share across goroutines.
func (s *GeminiService) Complete(ctx context.Context, c quizgen.Completion) (string, error) {
	if err := s.acquireRate(ctx); err != nil {
		return "", err
	}
	defer s.releaseRate()

	log := logger.WithContext(ctx).WithFields(logrus.Fields{
		"flow":  c.Name,
		"model": s.modelName,
	})

	model := s.client.GenerativeModel(s.modelName)
	model.SetTemperature(s.temperature)
	model.ResponseMIMEType = "application/json"
	if c.Shape != nil {
		model.ResponseSchema = shapeToSchema(c.Shape.Definition)
	}

	parts := []genai.Part{genai.Text(c.Prompt)}
	docParts, cleanup, err := s.documentParts(ctx, c.Documents)
	defer cleanup()
	if err != nil {
		return "", err
	}
	parts = append(parts, docParts...)

	start := time.Now()
	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}

	for i, cand := range resp.Candidates {
		if cand.FinishReason != genai.FinishReasonStop {
			log.WithFields(logrus.Fields{
				"candidate":     i,
				"finish_reason": cand.FinishReason.String(),
			}).Warn("Gemini stopped early")
		}
	}

	text := strings.TrimSpace(extractText(resp))
	log.WithField("elapsed_ms", time.Since(start).Milliseconds()).Debug("Gemini call finished")
	if text == "" {
		return "", errEmptyResponse
	}
	return text, nil
}

// documentParts turns documents into request parts. Small payloads travel
// inline; larger ones are uploaded and referenced by URI. The returned
// cleanup deletes uploaded files and is always safe to call.
func (s *GeminiService) documentParts(ctx context.Context, docs []quizgen.Document) ([]genai.Part, func(), error) {
	var uploaded []string
	cleanup := func() {
		for _, name := range uploaded {
			s.client.DeleteFile(context.Background(), name)
		}
	}

	total := 0
	for _, d := range docs {
		total += len(d.Data)
	}

	parts := make([]genai.Part, 0, len(docs))
	for _, d := range docs {
		if len(d.Data) == 0 {
			continue
		}
		mimeType := d.MIMEType
		if mimeType == "" {
			mimeType = "application/pdf"
		}

		if total <= inlineDocumentLimit {
			parts = append(parts, genai.Blob{MIMEType: mimeType, Data: d.Data})
			continue
		}

		file, err := s.uploadDocument(ctx, d.Name, mimeType, d.Data)
		if file != nil {
			uploaded = append(uploaded, file.Name)
		}
		if err != nil {
			return nil, cleanup, err
		}
		parts = append(parts, genai.FileData{MIMEType: mimeType, URI: file.URI})
	}

	return parts, cleanup, nil
}

func (s *GeminiService) uploadDocument(ctx context.Context, name, mimeType string, data []byte) (*genai.File, error) {
	file, err := s.client.UploadFile(ctx, "", bytes.NewReader(data), &genai.UploadFileOptions{
		DisplayName: name,
		MIMEType:    mimeType,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload %s to Gemini: %w", name, err)
	}

	// Wait until file is active
	for i := 0; i < 20; i++ {
		current, getErr := s.client.GetFile(ctx, file.Name)
		if getErr != nil {
			return file, fmt.Errorf("failed to get uploaded file status: %w", getErr)
		}

		if current.State == genai.FileStateActive {
			return current, nil
		}
		if current.State == genai.FileStateFailed {
			return file, fmt.Errorf("Gemini failed to process %s", name)
		}

		select {
		case <-ctx.Done():
			return file, ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}

	return file, fmt.Errorf("%s did not become active in time", name)
}

func extractText(resp *genai.GenerateContentResponse) string {
	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text.WriteString(string(t))
				}
			}
		}
	}
	return text.String()
}

// shapeToSchema converts a declared output shape into a Gemini response
// schema. Unknown keys are ignored; nothing is marked required.
func shapeToSchema(def map[string]any) *genai.Schema {
	if def == nil {
		return nil
	}

	sch := &genai.Schema{}
	switch def["type"] {
	case "object":
		sch.Type = genai.TypeObject
	case "array":
		sch.Type = genai.TypeArray
	case "string":
		sch.Type = genai.TypeString
	case "integer":
		sch.Type = genai.TypeInteger
	case "number":
		sch.Type = genai.TypeNumber
	case "boolean":
		sch.Type = genai.TypeBoolean
	}

	if desc, ok := def["description"].(string); ok {
		sch.Description = desc
	}
	if items, ok := def["items"].(map[string]any); ok {
		sch.Items = shapeToSchema(items)
	}
	if props, ok := def["properties"].(map[string]any); ok {
		sch.Properties = make(map[string]*genai.Schema, len(props))
		for name, p := range props {
			if pm, ok := p.(map[string]any); ok {
				sch.Properties[name] = shapeToSchema(pm)
			}
		}
	}
	return sch
}
