package ai

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAI struct {
	embedCalls    atomic.Int64
	embedTexts    [][]string
	generateCalls atomic.Int64
}

func (s *stubAI) Embed(_ context.Context, texts []string) ([][]float32, error) {
	s.embedCalls.Add(1)
	s.embedTexts = append(s.embedTexts, texts)
	vecs := make([][]float32, len(texts))
	for i, t := range texts {
		vecs[i] = []float32{float32(len(t))}
	}
	return vecs, nil
}

func (s *stubAI) GenerateJSON(_ context.Context, _ string) (string, error) {
	s.generateCalls.Add(1)
	return "[]", nil
}

func TestEmbedCache_HitSkipsBase(t *testing.T) {
	t.Parallel()

	base := &stubAI{}
	c := NewEmbedCache(base, 8)
	ctx := context.Background()

	first, err := c.Embed(ctx, []string{"fractions"})
	require.NoError(t, err)
	second, err := c.Embed(ctx, []string{"fractions"})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), base.embedCalls.Load())
}

func TestEmbedCache_PartialHitSendsOnlyMisses(t *testing.T) {
	t.Parallel()

	base := &stubAI{}
	c := NewEmbedCache(base, 8)
	ctx := context.Background()

	_, err := c.Embed(ctx, []string{"fractions"})
	require.NoError(t, err)

	vecs, err := c.Embed(ctx, []string{"fractions", "decimals"})
	require.NoError(t, err)
	require.Len(t, vecs, 2)
	assert.Equal(t, []float32{9}, vecs[0])
	assert.Equal(t, []float32{8}, vecs[1])
	require.Len(t, base.embedTexts, 2)
	assert.Equal(t, []string{"decimals"}, base.embedTexts[1], "cached text not re-sent")
}

func TestEmbedCache_FIFOEviction(t *testing.T) {
	t.Parallel()

	base := &stubAI{}
	c := NewEmbedCache(base, 2)
	ctx := context.Background()

	_, err := c.Embed(ctx, []string{"a", "bb", "ccc"})
	require.NoError(t, err)

	_, err = c.Embed(ctx, []string{"a"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), base.embedCalls.Load(), "oldest entry was evicted and refetched")

	_, err = c.Embed(ctx, []string{"ccc"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), base.embedCalls.Load(), "recent entry still cached")
}

func TestEmbedCache_ZeroCapacityReturnsBase(t *testing.T) {
	t.Parallel()

	base := &stubAI{}
	c := NewEmbedCache(base, 0)
	assert.Same(t, base, c, "no wrapper when caching is disabled")
}

func TestEmbedCache_GenerateJSONPassesThrough(t *testing.T) {
	t.Parallel()

	base := &stubAI{}
	c := NewEmbedCache(base, 8)

	out, err := c.GenerateJSON(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "[]", out)
	assert.Equal(t, int64(1), base.generateCalls.Load())
}
