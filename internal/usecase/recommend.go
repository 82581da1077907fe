package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/fairyhunter13/course-recommender/internal/adapter/observability"
	"github.com/fairyhunter13/course-recommender/internal/domain"
)

// maxFanOutWorkers bounds the per-weakness worker pool.
const maxFanOutWorkers = 8

// RecommendService orchestrates retrieval and reranking across a batch of
// weaknesses and assembles the final grouped, capped result.
type RecommendService struct {
	Retriever *Retriever
	Reranker  *Reranker
}

// NewRecommendService constructs a RecommendService with its dependencies.
func NewRecommendService(r *Retriever, rr *Reranker) *RecommendService {
	return &RecommendService{Retriever: r, Reranker: rr}
}

// RecommendByWeakness normalizes raw weakness records and produces grouped
// recommendations. See RecommendForWeaknesses for the pipeline semantics.
func (s *RecommendService) RecommendByWeakness(ctx context.Context, inputs []domain.WeaknessInput, maxOverall, maxPerWeakness int) ([]domain.WeaknessRecommendations, error) {
	ws, err := domain.NormalizeWeaknesses(inputs)
	if err != nil {
		return nil, err
	}
	return s.RecommendForWeaknesses(ctx, ws, maxOverall, maxPerWeakness)
}

// RecommendForWeaknesses runs the pipeline over pre-built weaknesses:
// bounded fan-out of per-weakness retrieval + rerank, global best-score
// dedupe, overall cap, then regrouping in input order with the per-weakness
// cap. The output always has one entry per input weakness, in input order.
func (s *RecommendService) RecommendForWeaknesses(ctx context.Context, ws []domain.Weakness, maxOverall, maxPerWeakness int) ([]domain.WeaknessRecommendations, error) {
	if maxOverall < 1 {
		return nil, fmt.Errorf("%w: maxOverall must be >= 1", domain.ErrInvalidArgument)
	}
	if maxPerWeakness < 1 {
		return nil, fmt.Errorf("%w: maxPerWeakness must be >= 1", domain.ErrInvalidArgument)
	}
	if err := domain.ValidateWeaknesses(ws); err != nil {
		return nil, err
	}

	perWeakness, err := s.fanOut(ctx, ws, maxPerWeakness)
	if err != nil {
		return nil, err
	}

	// Flatten in input order so dedupe and sort ties stay deterministic
	// regardless of task completion order.
	pool := make([]domain.CourseScore, 0)
	for _, recs := range perWeakness {
		pool = append(pool, recs...)
	}

	deduped := dedupeByBestScore(pool)
	sort.SliceStable(deduped, func(i, j int) bool { return deduped[i].Score > deduped[j].Score })
	if len(deduped) > maxOverall {
		deduped = deduped[:maxOverall]
	}

	return regroup(ws, deduped, maxPerWeakness), nil
}

// fanOut dispatches one task per weakness to a pool of min(8, n) workers and
// collects results by input position. Endpoint-resolution failure aborts the
// whole batch; any other retrieval failure degrades that weakness to an
// empty list so one flaky embedding or search call cannot sink the batch.
func (s *RecommendService) fanOut(ctx context.Context, ws []domain.Weakness, maxPerWeakness int) ([][]domain.CourseScore, error) {
	results := make([][]domain.CourseScore, len(ws))
	if len(ws) == 0 {
		return results, nil
	}

	workers := maxFanOutWorkers
	if len(ws) < workers {
		workers = len(ws)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, w := range ws {
		g.Go(func() error {
			recs, err := s.recommendOne(gctx, w, maxPerWeakness)
			if err != nil {
				if errors.Is(err, domain.ErrEndpointNotFound) {
					return err
				}
				observability.LoggerFromContext(gctx).Warn("retrieval failed; weakness degraded to empty",
					slog.String("weakness_id", w.ID),
					slog.Any("error", err))
				return nil
			}
			results[i] = recs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// recommendOne is the per-weakness unit of work: retrieve capped candidates,
// attempt a rerank, sort descending by score.
func (s *RecommendService) recommendOne(ctx context.Context, w domain.Weakness, maxPerWeakness int) ([]domain.CourseScore, error) {
	candidates, err := s.Retriever.Retrieve(ctx, w, maxPerWeakness)
	if err != nil {
		return nil, err
	}
	outcome := s.Reranker.Rerank(ctx, w, candidates)
	recs := outcome.Scores
	sort.SliceStable(recs, func(i, j int) bool { return recs[i].Score > recs[j].Score })
	return recs, nil
}

// dedupeByBestScore keeps the single highest-scoring occurrence per course
// id across the whole pool; ties keep the earliest occurrence.
func dedupeByBestScore(recs []domain.CourseScore) []domain.CourseScore {
	bestIdx := make(map[string]int, len(recs))
	out := make([]domain.CourseScore, 0, len(recs))
	for _, rec := range recs {
		if i, ok := bestIdx[rec.Course.ID]; ok {
			if rec.Score > out[i].Score {
				out[i] = rec
			}
			continue
		}
		bestIdx[rec.Course.ID] = len(out)
		out = append(out, rec)
	}
	return out
}

// regroup rebuilds one entry per input weakness, in input order, each sorted
// descending by score and capped. Weaknesses with no surviving candidates
// get an empty list, never omitted.
func regroup(ws []domain.Weakness, recs []domain.CourseScore, maxPerWeakness int) []domain.WeaknessRecommendations {
	byWeakness := make(map[string][]domain.CourseScore, len(ws))
	for _, rec := range recs {
		byWeakness[rec.WeaknessID] = append(byWeakness[rec.WeaknessID], rec)
	}
	results := make([]domain.WeaknessRecommendations, 0, len(ws))
	for _, w := range ws {
		group := byWeakness[w.ID]
		sort.SliceStable(group, func(i, j int) bool { return group[i].Score > group[j].Score })
		if len(group) > maxPerWeakness {
			group = group[:maxPerWeakness]
		}
		if group == nil {
			group = []domain.CourseScore{}
		}
		results = append(results, domain.WeaknessRecommendations{Weakness: w, Recommendations: group})
	}
	return results
}
