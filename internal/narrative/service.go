// Package narrative is thin glue around the text-generation API: it builds
// a single prompt, makes one pass-through call, and applies a small retry
// policy. No aggregation or ranking logic lives here.
package narrative

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"google.golang.org/genai"

	"smartlocations_backend/internal/search"
	"smartlocations_backend/platform/apperr"
	"smartlocations_backend/platform/logger"
)

const (
	// maxAttempts caps the calls per request: one try plus one retry,
	// and only when the model reports itself overloaded.
	maxAttempts  = 2
	retryBackoff = 2 * time.Second
)

// generator abstracts the single-shot text generation call so the retry
// policy can be tested without the real API.
type generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Service wraps the AI narrative collaborator.
type Service struct {
	gen generator
	log *logger.Logger
}

// NewService creates the narrative service over a Gemini API key. Returns
// an error when the underlying client cannot be constructed.
func NewService(ctx context.Context, apiKey, model string, log *logger.Logger) (*Service, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &Service{
		gen: &geminiGenerator{client: client, model: model},
		log: log,
	}, nil
}

// GenerateReport produces a visit-plan narrative for a set of places.
func (s *Service) GenerateReport(ctx context.Context, places []search.Place) (string, error) {
	payload, err := json.Marshal(places)
	if err != nil {
		return "", apperr.Wrap(apperr.KindBadRequest, "places payload not serializable", err)
	}

	prompt := fmt.Sprintf("Based on the data given %s, make a plan why these places should be visited. "+
		"Give a deep insight of the background of each notable place. Provide website links if possible.", payload)

	return s.generate(ctx, prompt)
}

// Ask forwards a free-text prompt unchanged.
func (s *Service) Ask(ctx context.Context, prompt string) (string, error) {
	return s.generate(ctx, prompt)
}

// generate applies the retry policy: up to maxAttempts calls, a fixed
// backoff between them, and a retry only when the model is overloaded.
// Client-request-rejected errors are never retried.
func (s *Service) generate(ctx context.Context, prompt string) (string, error) {
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		text, err := s.gen.Generate(ctx, prompt)
		if err == nil {
			if text == "" {
				return "", apperr.Unavailable("no response from text-generation service")
			}
			return text, nil
		}

		lastErr = err
		if s.log != nil {
			s.log.UpstreamError("genai", fmt.Sprintf("attempt %d", attempt), err)
		}

		code := statusCode(err)
		if code == http.StatusBadRequest {
			return "", apperr.Wrap(apperr.KindBadRequest, "text-generation request rejected", err)
		}
		if code != http.StatusServiceUnavailable || attempt == maxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(retryBackoff):
		}
	}

	return "", apperr.Wrap(apperr.KindUnavailable, "text-generation service unavailable", lastErr)
}

// statusCode extracts the HTTP status from a genai API error, or zero.
func statusCode(err error) int {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return 0
}

// geminiGenerator is the real single-shot Gemini call.
type geminiGenerator struct {
	client *genai.Client
	model  string
}

func (g *geminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				genai.NewPartFromText(prompt),
			},
		},
	}, nil)
	if err != nil {
		return "", err
	}

	return resp.Text(), nil
}
