package domain

import (
	"context"
	"errors"
)

// Error taxonomy (sentinels)
var (
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrEndpointNotFound = errors.New("search endpoint not found")
	ErrNotFound         = errors.New("not found")
	ErrUpstreamTimeout  = errors.New("upstream timeout")
	ErrInternal         = errors.New("internal error")
)

// Weakness is a textual description of a learner's gap, the unit of query.
// Immutable after normalization.
type Weakness struct {
	ID          string
	Text        string
	Description string
	Importance  float64
}

// Course is a catalog entry enriched with metadata from the course-info API.
// Built once per (weakness, neighbor) pairing; only metadata is cached
// across weaknesses, never the Course itself.
type Course struct {
	ID          string
	LessonTitle string
	Description string
	Link        string
	Metadata    map[string]any
}

// CourseScore ties a Course to the weakness it was retrieved for.
// Score is 1/(1+distance) from retrieval, or the scorer-supplied relevance
// after a successful rerank.
type CourseScore struct {
	Course     Course
	WeaknessID string
	Score      float64
	Reason     string
}

// WeaknessRecommendations is the final output unit: one per input weakness,
// recommendations sorted descending by score and capped per weakness.
type WeaknessRecommendations struct {
	Weakness        Weakness
	Recommendations []CourseScore
}

// Neighbor is one nearest-neighbor hit from the vector index.
// Distance is a dissimilarity measure; lower is more relevant.
type Neighbor struct {
	ID       string
	Distance float64
}

// AIClient (port) covers the embedding and relevance-scoring capabilities.
type AIClient interface {
	// Embed returns one vector per input text, batching internally to the
	// provider's per-request item limit.
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	// GenerateJSON invokes the generative scorer with a single prompt and
	// returns the raw text, expected to contain a JSON document.
	GenerateJSON(ctx context.Context, prompt string) (string, error)
}

// NeighborQuerier (port) is the nearest-neighbor search capability.
// Implementations resolve their backing collection handle at most once and
// return ErrEndpointNotFound when it cannot be resolved.
type NeighborQuerier interface {
	QueryNeighbors(ctx context.Context, vector []float32, k int) ([]Neighbor, error)
}

// CourseInfoFetcher (port) looks up course metadata by id.
type CourseInfoFetcher interface {
	FetchCourseInfo(ctx context.Context, courseID string) (map[string]any, error)
}
