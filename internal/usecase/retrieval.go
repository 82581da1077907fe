// Package usecase contains the recommendation pipeline services.
package usecase

import (
	"context"
	"fmt"

	"github.com/fairyhunter13/course-recommender/internal/domain"
	"github.com/fairyhunter13/course-recommender/pkg/textx"
)

// weaknessPreviewLen bounds the weakness text embedded in retrieval reasons.
const weaknessPreviewLen = 80

// Retriever turns one weakness into up to k unique, score-ordered candidates
// from the vector index, enriched through the metadata cache.
type Retriever struct {
	AI    domain.AIClient
	Index domain.NeighborQuerier
	Info  domain.CourseInfoFetcher
}

// NewRetriever constructs a Retriever with its dependencies.
func NewRetriever(ai domain.AIClient, index domain.NeighborQuerier, info domain.CourseInfoFetcher) *Retriever {
	return &Retriever{AI: ai, Index: index, Info: info}
}

// Retrieve embeds the weakness text, queries k nearest neighbors and builds
// scored candidates. Embedding and search errors propagate to the caller;
// metadata failures have already been degraded to empty maps by the cache.
func (r *Retriever) Retrieve(ctx context.Context, w domain.Weakness, k int) ([]domain.CourseScore, error) {
	vecs, err := r.AI.Embed(ctx, []string{w.Text})
	if err != nil {
		return nil, fmt.Errorf("op=retriever.Embed weakness=%s: %w", w.ID, err)
	}
	if len(vecs) == 0 {
		return nil, fmt.Errorf("op=retriever.Embed weakness=%s: no vector returned", w.ID)
	}
	neighbors, err := r.Index.QueryNeighbors(ctx, vecs[0], k)
	if err != nil {
		return nil, err
	}
	recs := make([]domain.CourseScore, 0, len(neighbors))
	for _, n := range neighbors {
		recs = append(recs, r.buildCourseScore(ctx, w, n))
	}
	return dedupeByCourse(recs), nil
}

func (r *Retriever) buildCourseScore(ctx context.Context, w domain.Weakness, n domain.Neighbor) domain.CourseScore {
	metadata, _ := r.Info.FetchCourseInfo(ctx, n.ID)
	source := metadata
	if nested, ok := metadata["course"].(map[string]any); ok {
		source = nested
	}
	course := domain.Course{
		ID:          n.ID,
		LessonTitle: firstString(source, "lesson_title", "lessonTitle"),
		Description: firstString(source, "description", "short_description", "shortDescription"),
		Link:        firstString(source, "link", "course_url"),
		Metadata:    metadata,
	}
	if course.LessonTitle == "" {
		course.LessonTitle = "Untitled course"
	}
	distance := n.Distance
	if distance < 0 {
		distance = 0
	}
	return domain.CourseScore{
		Course:     course,
		WeaknessID: w.ID,
		Score:      1 / (1 + distance),
		Reason:     fmt.Sprintf("Retrieved by semantic match to weakness '%s...'.", textx.Truncate(w.Text, weaknessPreviewLen)),
	}
}

// firstString walks keys in priority order and returns the first non-empty
// string value.
func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := m[k].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

// dedupeByCourse keeps the first occurrence per course id. Neighbors arrive
// in relevance order, so first-seen is best-seen here.
func dedupeByCourse(recs []domain.CourseScore) []domain.CourseScore {
	seen := make(map[string]struct{}, len(recs))
	unique := make([]domain.CourseScore, 0, len(recs))
	for _, rec := range recs {
		if _, ok := seen[rec.Course.ID]; ok {
			continue
		}
		seen[rec.Course.ID] = struct{}{}
		unique = append(unique, rec)
	}
	return unique
}
