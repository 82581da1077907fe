// Package real implements the AI ports against OpenAI-compatible APIs.
package real

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"log/slog"

	"github.com/fairyhunter13/course-recommender/internal/adapter/observability"
	"github.com/fairyhunter13/course-recommender/internal/config"
	"github.com/fairyhunter13/course-recommender/internal/domain"
)

// embedBatchSize is the provider's per-request item limit for embeddings.
const embedBatchSize = 100

// Client implements domain.AIClient using OpenAI-compatible embeddings and
// chat completions endpoints. Every call is single-attempt; failure handling
// is the caller's responsibility.
type Client struct {
	cfg     config.Config
	embedHC *http.Client
	genHC   *http.Client
}

// New constructs a real AI client with sensible timeouts.
func New(cfg config.Config) *Client {
	return &Client{
		cfg:     cfg,
		embedHC: &http.Client{Timeout: 30 * time.Second},
		genHC:   &http.Client{Timeout: 60 * time.Second},
	}
}

// readSnippet reads up to n bytes from r for error logging.
func readSnippet(r io.Reader, n int) string {
	if r == nil || n <= 0 {
		return ""
	}
	b, _ := io.ReadAll(io.LimitReader(r, int64(n)))
	return string(b)
}

// Embed returns one vector per text, splitting the input into provider-sized
// batches. A failure in any batch fails the whole call.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if c.cfg.EmbeddingsAPIKey == "" || c.cfg.EmbeddingsModel == "" {
		// Do not log secrets; only indicate presence
		slog.Error("embeddings API key or model missing",
			slog.Bool("has_api_key", c.cfg.EmbeddingsAPIKey != ""),
			slog.String("model", c.cfg.EmbeddingsModel))
		return nil, fmt.Errorf("%w: EMBEDDINGS_API_KEY or EMBEDDINGS_MODEL missing", domain.ErrInvalidArgument)
	}
	all := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(texts) {
			end = len(texts)
		}
		vecs, err := c.embedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		all = append(all, vecs...)
	}
	return all, nil
}

func (c *Client) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	body := map[string]any{
		"model":      c.cfg.EmbeddingsModel,
		"input":      texts,
		"dimensions": c.cfg.EmbeddingsDimension,
	}
	b, _ := json.Marshal(body)
	start := time.Now()
	r, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.EmbeddingsBaseURL+"/embeddings", bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	r.Header.Set("Authorization", "Bearer "+c.cfg.EmbeddingsAPIKey)
	r.Header.Set("Content-Type", "application/json")
	resp, err := c.embedHC.Do(r)
	observability.AIRequestsTotal.WithLabelValues("openai", "embed").Inc()
	observability.AIRequestDuration.WithLabelValues("openai", "embed").Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("op=ai.Embed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet := readSnippet(resp.Body, 512)
		slog.Warn("embeddings provider non-2xx",
			slog.Int("status", resp.StatusCode),
			slog.String("model", c.cfg.EmbeddingsModel),
			slog.String("body", snippet))
		return nil, fmt.Errorf("op=ai.Embed: status %d", resp.StatusCode)
	}
	var out struct {
		Data []struct {
			Embedding []float64 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("op=ai.Embed decode: %w", err)
	}
	if len(out.Data) != len(texts) {
		return nil, fmt.Errorf("op=ai.Embed: got %d embeddings for %d texts", len(out.Data), len(texts))
	}
	res := make([][]float32, len(out.Data))
	for i := range out.Data {
		v := make([]float32, len(out.Data[i].Embedding))
		for j := range out.Data[i].Embedding {
			v[j] = float32(out.Data[i].Embedding[j])
		}
		res[i] = v
	}
	return res, nil
}

// GenerateJSON sends a single-prompt chat completion and returns the raw
// message content. Callers parse and validate the payload themselves.
func (c *Client) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	if c.cfg.GenerationAPIKey == "" {
		slog.Error("generation API key missing", slog.String("model", c.cfg.GenerationModel))
		return "", fmt.Errorf("%w: GENERATION_API_KEY missing", domain.ErrInvalidArgument)
	}
	body := map[string]any{
		"model":       c.cfg.GenerationModel,
		"temperature": 0,
		"messages": []map[string]any{
			{"role": "user", "content": prompt},
		},
	}
	b, _ := json.Marshal(body)
	start := time.Now()
	r, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.GenerationBaseURL+"/chat/completions", bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	r.Header.Set("Authorization", "Bearer "+c.cfg.GenerationAPIKey)
	r.Header.Set("Content-Type", "application/json")
	resp, err := c.genHC.Do(r)
	observability.AIRequestsTotal.WithLabelValues("openai", "generate").Inc()
	observability.AIRequestDuration.WithLabelValues("openai", "generate").Observe(time.Since(start).Seconds())
	if err != nil {
		return "", fmt.Errorf("op=ai.GenerateJSON: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet := readSnippet(resp.Body, 512)
		slog.Warn("generation provider non-2xx",
			slog.Int("status", resp.StatusCode),
			slog.String("model", c.cfg.GenerationModel),
			slog.String("body", snippet))
		return "", fmt.Errorf("op=ai.GenerateJSON: status %d", resp.StatusCode)
	}
	var out struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("op=ai.GenerateJSON decode: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", errors.New("op=ai.GenerateJSON: empty choices")
	}
	return out.Choices[0].Message.Content, nil
}
