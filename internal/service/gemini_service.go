package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/recruitdesk/candidate-intake/internal/apperr"
	"github.com/recruitdesk/candidate-intake/internal/config"
	"github.com/recruitdesk/candidate-intake/internal/model"
)

type AnalysisServiceInterface interface {
	Analyze(ctx context.Context, record *model.StoredCandidate, jobDescription string) (*model.AnalysisResult, error)
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

const analysisPrompt = `You are an experienced technical recruiter. Rate how well the candidate's skills and experience fit the job description below.

Return your answer STRICTLY in JSON format with this schema:
{
	"skill_match": <float with 2 decimal places, range 0-10>,
	"insights": "<one short paragraph on strengths and gaps>"
}

Job description:
%s

Candidate:
%s
`

const noJobDescription = "(no specific job description; rate general employability of the skill set)"

// GeminiService wraps the Gemini API with retries, exponential backoff with
// jitter, and a circuit breaker on consecutive failures.
type GeminiService struct {
	client         *genai.Client
	model          string
	logger         *zap.Logger
	maxRetries     int
	baseDelay      time.Duration
	maxDelay       time.Duration
	requestTimeout time.Duration

	// mu guards consecutiveErrors; one service instance is shared across
	// concurrent batches and handlers.
	mu                sync.Mutex
	consecutiveErrors int
	circuitBreakerMax int
}

// breakerOpen reports whether the circuit breaker rejects new requests, with
// the current failure count for the error message.
func (s *GeminiService) breakerOpen() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.consecutiveErrors, s.consecutiveErrors >= s.circuitBreakerMax
}

func (s *GeminiService) recordSuccess() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.consecutiveErrors = 0
}

func (s *GeminiService) recordFailure() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.consecutiveErrors++
}

func NewGeminiService(ctx context.Context, logger *zap.Logger) (*GeminiService, error) {
	geminiConfig := config.LoadGeminiConfig()
	if geminiConfig.APIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY not set")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  geminiConfig.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &GeminiService{
		client:            client,
		model:             geminiConfig.Model,
		logger:            logger,
		maxRetries:        3,
		baseDelay:         time.Second,
		maxDelay:          90 * time.Second,
		requestTimeout:    90 * time.Second,
		circuitBreakerMax: 5,
	}, nil
}

// Analyze asks the model for a skill-match score against the given job
// description. The score is treated as opaque by the scoring engine.
func (s *GeminiService) Analyze(ctx context.Context, record *model.StoredCandidate, jobDescription string) (*model.AnalysisResult, error) {
	if record == nil {
		return nil, apperr.Validation("candidate record is required for analysis")
	}

	candidate, err := json.Marshal(map[string]any{
		"name":       record.Name,
		"title":      record.Title,
		"summary":    record.Summary,
		"skills":     record.Skills,
		"experience": record.Experience,
		"education":  record.Education,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal candidate payload: %w", err)
	}

	if strings.TrimSpace(jobDescription) == "" {
		jobDescription = noJobDescription
	}

	text, err := s.generateContent(ctx, fmt.Sprintf(analysisPrompt, jobDescription, candidate))
	if err != nil {
		return nil, err
	}

	cleaned := extractJSON(text)
	skillMatch := gjson.Get(cleaned, "skill_match")
	if !skillMatch.Exists() {
		return nil, apperr.New(apperr.KindUnavailable, "analysis response missing skill_match")
	}

	return &model.AnalysisResult{
		SkillMatch: skillMatch.Float(),
		Insights:   gjson.Get(cleaned, "insights").String(),
	}, nil
}

func (s *GeminiService) generateContent(ctx context.Context, prompt string) (string, error) {
	if failures, open := s.breakerOpen(); open {
		return "", apperr.New(apperr.KindUnavailable,
			fmt.Sprintf("circuit breaker open: %d consecutive errors", failures))
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, s.requestTimeout)
	defer cancel()

	genConfig := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(0.1)),
	}

	var lastErr error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if attempt > 0 {
			delay := s.calculateBackoff(attempt)
			s.logger.Debug("retrying generate content",
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay),
			)
			select {
			case <-time.After(delay):
			case <-timeoutCtx.Done():
				return "", apperr.Wrap(apperr.KindUnavailable, "analysis timed out during retry", timeoutCtx.Err())
			}
		}

		result, err := s.client.Models.GenerateContent(timeoutCtx, s.model, genai.Text(prompt), genConfig)
		if err == nil {
			s.recordSuccess()
			if err := validateGenerateResponse(result); err != nil {
				return "", apperr.Wrap(apperr.KindUnavailable, "invalid analysis response", err)
			}
			return result.Text(), nil
		}

		lastErr = err
		if !isRetryableError(err) {
			s.recordFailure()
			return "", classifyGenaiError(err)
		}
		s.logger.Warn("retryable analysis error", zap.Int("attempt", attempt+1), zap.Error(err))
	}

	s.recordFailure()
	return "", apperr.Wrap(apperr.KindUnavailable,
		fmt.Sprintf("max retries (%d) exceeded for analysis", s.maxRetries), lastErr)
}

// GenerateEmbedding embeds text for job-description similarity search.
func (s *GeminiService) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, apperr.Validation("text for embedding cannot be empty")
	}
	if len(trimmed) > 10000 {
		trimmed = trimmed[:10000]
	}

	if failures, open := s.breakerOpen(); open {
		return nil, apperr.New(apperr.KindUnavailable,
			fmt.Sprintf("circuit breaker open: %d consecutive errors", failures))
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, s.requestTimeout)
	defer cancel()

	content := []*genai.Content{genai.NewContentFromText(trimmed, genai.RoleUser)}

	var lastErr error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(s.calculateBackoff(attempt)):
			case <-timeoutCtx.Done():
				return nil, apperr.Wrap(apperr.KindUnavailable, "embedding timed out during retry", timeoutCtx.Err())
			}
		}

		result, err := s.client.Models.EmbedContent(timeoutCtx, "gemini-embedding-001", content, nil)
		if err == nil {
			s.recordSuccess()
			return validateEmbeddingResponse(result)
		}

		lastErr = err
		if !isRetryableError(err) {
			s.recordFailure()
			return nil, classifyGenaiError(err)
		}
		s.logger.Warn("retryable embedding error", zap.Int("attempt", attempt+1), zap.Error(err))
	}

	s.recordFailure()
	return nil, apperr.Wrap(apperr.KindUnavailable,
		fmt.Sprintf("max retries (%d) exceeded for embedding", s.maxRetries), lastErr)
}

func (s *GeminiService) calculateBackoff(attempt int) time.Duration {
	delay := s.baseDelay * time.Duration(math.Pow(2, float64(attempt-1)))
	if delay > s.maxDelay {
		delay = s.maxDelay
	}
	jitter := time.Duration(float64(delay) * 0.25)
	return delay - jitter/2 + time.Duration(float64(jitter)*0.5)
}

func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	errMsg := err.Error()
	if strings.Contains(errMsg, "context canceled") ||
		strings.Contains(errMsg, "context deadline exceeded") {
		return false
	}
	if apiErr, ok := err.(*genai.APIError); ok {
		switch apiErr.Code {
		case 429, 500, 502, 503, 504:
			return true
		case 400, 401, 403, 404:
			return false
		}
	}
	return strings.Contains(errMsg, "connection refused") ||
		strings.Contains(errMsg, "connection reset") ||
		strings.Contains(errMsg, "timeout") ||
		strings.Contains(errMsg, "temporary failure") ||
		strings.Contains(errMsg, "EOF")
}

func classifyGenaiError(err error) error {
	if apiErr, ok := err.(*genai.APIError); ok {
		switch apiErr.Code {
		case 429:
			return apperr.Wrap(apperr.KindRateLimited, "analysis provider rate limited", err)
		case 401, 403:
			return apperr.Wrap(apperr.KindUnauthorized, "analysis provider rejected credentials", err)
		}
	}
	return apperr.Wrap(apperr.KindUnavailable, "analysis provider failed", err)
}

func validateGenerateResponse(resp *genai.GenerateContentResponse) error {
	if resp == nil {
		return fmt.Errorf("response is nil")
	}
	if len(resp.Candidates) == 0 {
		return fmt.Errorf("no candidates in response")
	}
	if resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return fmt.Errorf("no content parts in response")
	}
	return nil
}

func validateEmbeddingResponse(resp *genai.EmbedContentResponse) ([]float32, error) {
	if resp == nil || len(resp.Embeddings) == 0 {
		return nil, apperr.New(apperr.KindUnavailable, "no embeddings returned")
	}
	values := resp.Embeddings[0].Values
	if len(values) == 0 {
		return nil, apperr.New(apperr.KindUnavailable, "embedding vector is empty")
	}
	for i, v := range values {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return nil, apperr.New(apperr.KindUnavailable,
				fmt.Sprintf("invalid embedding value at index %d", i))
		}
	}
	return values, nil
}

// extractJSON strips markdown code fences models like to wrap JSON in.
func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	return strings.TrimSpace(raw)
}
