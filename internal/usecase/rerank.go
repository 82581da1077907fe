package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/fairyhunter13/course-recommender/internal/adapter/ai/tokencount"
	"github.com/fairyhunter13/course-recommender/internal/adapter/observability"
	"github.com/fairyhunter13/course-recommender/internal/domain"
	"github.com/fairyhunter13/course-recommender/pkg/textx"
)

// RerankStatus is the outcome of one per-weakness rerank attempt.
type RerankStatus string

// The two rerank outcomes. There is no third, partial state: either the
// scorer produced at least one usable item, or the caller gets the original
// candidates back unchanged.
const (
	RerankRescored RerankStatus = "rescored"
	RerankFallback RerankStatus = "fallback"
)

// RerankOutcome carries the candidate list for one weakness after a rerank
// attempt. On fallback, Scores is the input list unchanged and Err records
// the soft failure for logging.
type RerankOutcome struct {
	Status RerankStatus
	Scores []domain.CourseScore
	Err    error
}

// Reranker asks the generative scorer to re-score one weakness's candidates.
// Every failure mode falls back to the retrieval order for that weakness.
type Reranker struct {
	AI    domain.AIClient
	Model string
}

// NewReranker constructs a Reranker. model is used for token-usage estimates.
func NewReranker(ai domain.AIClient, model string) *Reranker {
	return &Reranker{AI: ai, Model: model}
}

type rerankItem struct {
	CourseID       string   `json:"course_id"`
	RelevanceScore *float64 `json:"relevance_score"`
	Justification  string   `json:"justification"`
}

// Rerank scores candidates against the weakness with a single scorer call.
func (rr *Reranker) Rerank(ctx context.Context, w domain.Weakness, candidates []domain.CourseScore) RerankOutcome {
	if len(candidates) == 0 {
		return RerankOutcome{Status: RerankRescored}
	}

	prompt := buildRerankPrompt(w.Text, candidates)
	start := time.Now()
	raw, err := rr.AI.GenerateJSON(ctx, prompt)
	elapsed := time.Since(start)
	rr.logTokenUsage(ctx, w.ID, prompt, raw, elapsed)

	if err != nil {
		return rr.fallback(ctx, w, candidates, fmt.Errorf("op=reranker.Generate: %w", err))
	}

	items, err := parseRerankItems(raw)
	if err != nil {
		return rr.fallback(ctx, w, candidates, err)
	}

	byID := make(map[string]domain.CourseScore, len(candidates))
	for _, c := range candidates {
		byID[c.Course.ID] = c
	}
	rescored := make([]domain.CourseScore, 0, len(items))
	for _, item := range items {
		base, ok := byID[item.CourseID]
		if !ok {
			// Hallucinated ids are dropped; they match no known candidate.
			continue
		}
		score := base.Score
		if item.RelevanceScore != nil {
			score = *item.RelevanceScore
		}
		reason := base.Reason
		if item.Justification != "" {
			reason = item.Justification
		}
		rescored = append(rescored, domain.CourseScore{
			Course:     base.Course,
			WeaknessID: base.WeaknessID,
			Score:      score,
			Reason:     reason,
		})
	}
	if len(rescored) == 0 {
		return rr.fallback(ctx, w, candidates, fmt.Errorf("op=reranker.Match: no usable items in scorer output"))
	}
	observability.ObserveRerankOutcome(string(RerankRescored))
	return RerankOutcome{Status: RerankRescored, Scores: rescored}
}

func (rr *Reranker) fallback(ctx context.Context, w domain.Weakness, candidates []domain.CourseScore, cause error) RerankOutcome {
	observability.LoggerFromContext(ctx).Warn("rerank failed; using retrieval order",
		slog.String("weakness_id", w.ID),
		slog.Any("error", cause))
	observability.ObserveRerankOutcome(string(RerankFallback))
	return RerankOutcome{Status: RerankFallback, Scores: candidates, Err: cause}
}

func (rr *Reranker) logTokenUsage(ctx context.Context, weaknessID, prompt, response string, elapsed time.Duration) {
	usage := tokencount.DefaultCounter.EstimateUsage(prompt, response, rr.Model)
	observability.LoggerFromContext(ctx).Info("token usage",
		slog.String("usage", "rerank weakness "+weaknessID),
		slog.String("model", usage.Model),
		slog.Int("prompt_tokens", usage.PromptTokens),
		slog.Int("completion_tokens", usage.CompletionTokens),
		slog.Float64("runtime_seconds", elapsed.Seconds()))
}

func parseRerankItems(raw string) ([]rerankItem, error) {
	cleaned := textx.StripCodeFence(raw)
	var items []rerankItem
	if err := json.Unmarshal([]byte(cleaned), &items); err != nil {
		return nil, fmt.Errorf("op=reranker.Parse: %w", err)
	}
	return items, nil
}

func buildRerankPrompt(weaknessText string, candidates []domain.CourseScore) string {
	var lines strings.Builder
	for _, c := range candidates {
		fmt.Fprintf(&lines, "- id=%q, title=%q\n", c.Course.ID, c.Course.LessonTitle)
	}
	return fmt.Sprintf(`You are scoring courses for a single weakness.

Weakness:
%q

Candidate courses (keep all, just score relevance 0-1):
%s
Output JSON ONLY:
[
  {"course_id": "<id>", "relevance_score": <0-1>, "justification": "<very short>"},
  ...
]`, weaknessText, lines.String())
}
