package qdrant

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fairyhunter13/course-recommender/internal/adapter/observability"
	"github.com/fairyhunter13/course-recommender/internal/domain"
)

// Index implements domain.NeighborQuerier on top of a Qdrant collection.
//
// The collection handle is resolved by display name at most once per Index;
// concurrent first callers share a single resolution attempt and its result.
// Resolution failure is a configuration error (domain.ErrEndpointNotFound)
// and is returned to every caller, aborting the batch rather than degrading
// a single weakness.
type Index struct {
	cli  *Client
	name string

	resolveOnce sync.Once
	resolveErr  error
}

// NewIndex wires an Index for the collection with the given display name.
func NewIndex(cli *Client, name string) *Index {
	return &Index{cli: cli, name: name}
}

// QueryNeighbors resolves the collection handle (first call only), searches
// the index and maps Qdrant similarity scores to distances.
func (ix *Index) QueryNeighbors(ctx context.Context, vector []float32, k int) ([]domain.Neighbor, error) {
	if err := ix.resolve(ctx); err != nil {
		return nil, err
	}
	start := time.Now()
	points, err := ix.cli.Search(ctx, ix.name, vector, k)
	observability.AIRequestsTotal.WithLabelValues("qdrant", "search").Inc()
	observability.AIRequestDuration.WithLabelValues("qdrant", "search").Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("op=qdrant.Search collection=%s: %w", ix.name, err)
	}
	neighbors := make([]domain.Neighbor, 0, len(points))
	for _, p := range points {
		neighbors = append(neighbors, domain.Neighbor{
			ID:       fmt.Sprint(p.ID),
			Distance: scoreToDistance(p.Score),
		})
	}
	return neighbors, nil
}

func (ix *Index) resolve(ctx context.Context) error {
	ix.resolveOnce.Do(func() {
		names, err := ix.cli.ListCollections(ctx)
		if err != nil {
			ix.resolveErr = fmt.Errorf("op=qdrant.ListCollections: %w", err)
			return
		}
		for _, n := range names {
			if n == ix.name {
				slog.Info("vector collection resolved", slog.String("collection", ix.name))
				return
			}
		}
		ix.resolveErr = fmt.Errorf("%w: collection %q", domain.ErrEndpointNotFound, ix.name)
	})
	return ix.resolveErr
}

// scoreToDistance maps a cosine similarity score to a non-negative distance
// so that the retrieval score 1/(1+distance) stays in (0, 1].
func scoreToDistance(score float64) float64 {
	d := 1 - score
	if d < 0 {
		return 0
	}
	return d
}
