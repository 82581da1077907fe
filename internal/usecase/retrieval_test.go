package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/course-recommender/internal/domain"
	"github.com/fairyhunter13/course-recommender/internal/usecase"
)

func TestRetriever_ScoresFromDistance(t *testing.T) {
	t.Parallel()

	index := &fakeIndex{queryFn: func(_ context.Context, _ []float32, k int) ([]domain.Neighbor, error) {
		assert.Equal(t, 3, k)
		return []domain.Neighbor{
			{ID: "c1", Distance: 0.0},
			{ID: "c2", Distance: 1.0},
			{ID: "c3", Distance: 4.0},
		}, nil
	}}
	r := usecase.NewRetriever(&fakeAI{}, index, &fakeInfo{})

	recs, err := r.Retrieve(context.Background(), domain.Weakness{ID: "w1", Text: "fractions"}, 3)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.InDelta(t, 1.0, recs[0].Score, 1e-9)
	assert.InDelta(t, 0.5, recs[1].Score, 1e-9)
	assert.InDelta(t, 0.2, recs[2].Score, 1e-9)
	for _, rec := range recs {
		assert.Equal(t, "w1", rec.WeaknessID)
		assert.Contains(t, rec.Reason, "fractions")
	}
}

func TestRetriever_DedupesFirstSeen(t *testing.T) {
	t.Parallel()

	index := &fakeIndex{queryFn: func(_ context.Context, _ []float32, _ int) ([]domain.Neighbor, error) {
		return []domain.Neighbor{
			{ID: "c1", Distance: 0.0},
			{ID: "c2", Distance: 1.0},
			{ID: "c1", Distance: 3.0},
		}, nil
	}}
	r := usecase.NewRetriever(&fakeAI{}, index, &fakeInfo{})

	recs, err := r.Retrieve(context.Background(), domain.Weakness{ID: "w1", Text: "fractions"}, 3)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "c1", recs[0].Course.ID)
	assert.InDelta(t, 1.0, recs[0].Score, 1e-9, "first occurrence kept")
	assert.Equal(t, "c2", recs[1].Course.ID)
}

func TestRetriever_MetadataFallbackChain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		metadata  map[string]any
		wantTitle string
		wantDesc  string
		wantLink  string
	}{
		{
			name: "snake case keys",
			metadata: map[string]any{
				"lesson_title": "Fractions 101",
				"description":  "Intro to fractions",
				"link":         "https://example.com/f101",
			},
			wantTitle: "Fractions 101",
			wantDesc:  "Intro to fractions",
			wantLink:  "https://example.com/f101",
		},
		{
			name: "camel case alternates",
			metadata: map[string]any{
				"lessonTitle":      "Fractions 101",
				"shortDescription": "Short intro",
				"course_url":       "https://example.com/f101",
			},
			wantTitle: "Fractions 101",
			wantDesc:  "Short intro",
			wantLink:  "https://example.com/f101",
		},
		{
			name: "nested course object preferred",
			metadata: map[string]any{
				"course": map[string]any{
					"lesson_title":      "Nested title",
					"short_description": "Nested desc",
				},
				"lesson_title": "Outer title",
			},
			wantTitle: "Nested title",
			wantDesc:  "Nested desc",
		},
		{
			name:      "empty metadata degrades to placeholder title",
			metadata:  map[string]any{},
			wantTitle: "Untitled course",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			index := &fakeIndex{queryFn: func(_ context.Context, _ []float32, _ int) ([]domain.Neighbor, error) {
				return []domain.Neighbor{{ID: "c1", Distance: 0.5}}, nil
			}}
			info := &fakeInfo{fetchFn: func(_ context.Context, _ string) (map[string]any, error) {
				return tt.metadata, nil
			}}
			r := usecase.NewRetriever(&fakeAI{}, index, info)

			recs, err := r.Retrieve(context.Background(), domain.Weakness{ID: "w1", Text: "fractions"}, 1)
			require.NoError(t, err)
			require.Len(t, recs, 1)
			assert.Equal(t, tt.wantTitle, recs[0].Course.LessonTitle)
			assert.Equal(t, tt.wantDesc, recs[0].Course.Description)
			assert.Equal(t, tt.wantLink, recs[0].Course.Link)
			assert.Equal(t, tt.metadata, recs[0].Course.Metadata)
		})
	}
}

func TestRetriever_ReasonTruncatesLongWeakness(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("fractions and decimals ", 20)
	index := &fakeIndex{queryFn: func(_ context.Context, _ []float32, _ int) ([]domain.Neighbor, error) {
		return []domain.Neighbor{{ID: "c1", Distance: 0}}, nil
	}}
	r := usecase.NewRetriever(&fakeAI{}, index, &fakeInfo{})

	recs, err := r.Retrieve(context.Background(), domain.Weakness{ID: "w1", Text: long}, 1)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.NotContains(t, recs[0].Reason, long)
	assert.Contains(t, recs[0].Reason, long[:80])
}

func TestRetriever_EmbedErrorPropagates(t *testing.T) {
	t.Parallel()

	ai := &fakeAI{embedFn: func(_ context.Context, _ []string) ([][]float32, error) {
		return nil, errors.New("embedding provider down")
	}}
	index := &fakeIndex{}
	r := usecase.NewRetriever(ai, index, &fakeInfo{})

	_, err := r.Retrieve(context.Background(), domain.Weakness{ID: "w1", Text: "fractions"}, 3)
	require.Error(t, err)
	assert.Zero(t, index.calls.Load(), "search must not run after embed failure")
}

func TestRetriever_SearchErrorPropagates(t *testing.T) {
	t.Parallel()

	index := &fakeIndex{queryFn: func(_ context.Context, _ []float32, _ int) ([]domain.Neighbor, error) {
		return nil, errors.New("search down")
	}}
	r := usecase.NewRetriever(&fakeAI{}, index, &fakeInfo{})

	_, err := r.Retrieve(context.Background(), domain.Weakness{ID: "w1", Text: "fractions"}, 3)
	assert.Error(t, err)
}
