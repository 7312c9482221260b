// Package openai implements llm.Client against an OpenAI-compatible Chat
// Completions endpoint, with a Redis-backed result cache keyed by a
// fingerprint of the extracted resume text.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"resumelens-backend/internal/llm"
	"resumelens-backend/internal/shared/metrics"
	"resumelens-backend/internal/shared/storage/kv"
	"resumelens-backend/internal/shared/telemetry"
	"resumelens-backend/internal/shared/util"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	requestTimeout = 30 * time.Second
	cacheTTL       = 24 * time.Hour
)

// Client implements llm.Client using OpenAI Chat Completions.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	cache      kv.Store
}

// NewClient constructs a new OpenAI client. The cache store is optional;
// a nil store disables analysis caching.
func NewClient(apiKey, model, baseURL string, cache kv.Store) (*Client, error) {
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("LLM_MODEL is required")
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("LLM_API_KEY is required")
	}
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		apiKey:  apiKey,
		model:   model,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		cache: cache,
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    *float32        `json:"temperature,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Analyze structures resume text into the fixed analysis shape. Identical
// text served within the cache TTL never reaches the model. Any model or
// parse failure degrades to the placeholder record rather than an error, so
// uploads still persist.
func (c *Client) Analyze(ctx context.Context, resumeText string) (llm.Analysis, error) {
	cacheKey := kv.AnalysisCachePrefix + util.Fingerprint(resumeText)

	if cached, ok := c.cacheGet(ctx, cacheKey); ok {
		metrics.IncAnalysisCacheHit()
		return cached, nil
	}

	raw, err := c.analyzeOnce(ctx, resumeText)
	if err != nil {
		telemetry.Warn("llm analysis degraded to placeholder", map[string]any{
			"error": err.Error(),
		})
		metrics.IncAnalysisFallback()
		return llm.Fallback(), nil
	}

	var analysis llm.Analysis
	if err := json.Unmarshal(raw, &analysis); err != nil {
		telemetry.Warn("llm analysis degraded to placeholder", map[string]any{
			"error": fmt.Sprintf("analysis parse: %v", err),
		})
		metrics.IncAnalysisFallback()
		return llm.Fallback(), nil
	}
	analysis.Normalize()

	c.cacheSet(ctx, cacheKey, analysis)
	return analysis, nil
}

func (c *Client) analyzeOnce(ctx context.Context, resumeText string) (json.RawMessage, error) {
	temp := float32(0.3)
	reqBody := chatRequest{
		Model:       c.model,
		Messages:    buildMessages(resumeText),
		Temperature: &temp,
		ResponseFormat: &responseFormat{
			Type: "json_object",
		},
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "Client.Timeout") {
			return nil, fmt.Errorf("llm request timeout: %w", err)
		}
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("llm response parse: %w", err)
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("llm error: %s (%s)", parsed.Error.Message, parsed.Error.Type)
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("llm response missing choices")
	}

	content := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if content == "" {
		return nil, fmt.Errorf("llm response empty content")
	}
	return json.RawMessage(stripCodeFence(content)), nil
}

// stripCodeFence removes a ```json wrapper some models still emit despite
// the json_object response format.
func stripCodeFence(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

func (c *Client) cacheGet(ctx context.Context, key string) (llm.Analysis, bool) {
	if c.cache == nil {
		return llm.Analysis{}, false
	}
	raw, found, err := c.cache.Get(ctx, key)
	if err != nil {
		telemetry.Warn("analysis cache read failed", map[string]any{"error": err.Error()})
		return llm.Analysis{}, false
	}
	if !found {
		return llm.Analysis{}, false
	}
	var analysis llm.Analysis
	if err := json.Unmarshal([]byte(raw), &analysis); err != nil {
		return llm.Analysis{}, false
	}
	analysis.Normalize()
	return analysis, true
}

func (c *Client) cacheSet(ctx context.Context, key string, analysis llm.Analysis) {
	if c.cache == nil {
		return
	}
	payload, err := json.Marshal(analysis)
	if err != nil {
		return
	}
	if err := c.cache.SetEX(ctx, key, string(payload), cacheTTL); err != nil {
		telemetry.Warn("analysis cache write failed", map[string]any{"error": err.Error()})
	}
}

var _ llm.Client = (*Client)(nil)
