package usecase_test

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/fairyhunter13/course-recommender/internal/domain"
)

// fakeAI scripts the embedding and generation capabilities.
type fakeAI struct {
	embedFn    func(ctx context.Context, texts []string) ([][]float32, error)
	generateFn func(ctx context.Context, prompt string) (string, error)

	embedCalls    atomic.Int64
	generateCalls atomic.Int64

	mu         sync.Mutex
	lastPrompt string
}

func (f *fakeAI) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	f.embedCalls.Add(1)
	if f.embedFn != nil {
		return f.embedFn(ctx, texts)
	}
	vecs := make([][]float32, len(texts))
	for i := range texts {
		vecs[i] = []float32{0.1, 0.2, 0.3}
	}
	return vecs, nil
}

func (f *fakeAI) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	f.generateCalls.Add(1)
	f.mu.Lock()
	f.lastPrompt = prompt
	f.mu.Unlock()
	if f.generateFn != nil {
		return f.generateFn(ctx, prompt)
	}
	return "[]", nil
}

// fakeIndex scripts the nearest-neighbor capability.
type fakeIndex struct {
	queryFn func(ctx context.Context, vector []float32, k int) ([]domain.Neighbor, error)
	calls   atomic.Int64
}

func (f *fakeIndex) QueryNeighbors(ctx context.Context, vector []float32, k int) ([]domain.Neighbor, error) {
	f.calls.Add(1)
	if f.queryFn != nil {
		return f.queryFn(ctx, vector, k)
	}
	return nil, nil
}

// fakeInfo scripts the metadata lookup capability.
type fakeInfo struct {
	fetchFn func(ctx context.Context, courseID string) (map[string]any, error)
	calls   atomic.Int64
}

func (f *fakeInfo) FetchCourseInfo(ctx context.Context, courseID string) (map[string]any, error) {
	f.calls.Add(1)
	if f.fetchFn != nil {
		return f.fetchFn(ctx, courseID)
	}
	return map[string]any{}, nil
}
