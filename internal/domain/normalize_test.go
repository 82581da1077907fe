package domain_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/course-recommender/internal/domain"
)

func TestNormalizeWeaknesses(t *testing.T) {
	t.Parallel()

	t.Run("defaults applied", func(t *testing.T) {
		t.Parallel()
		ws, err := domain.NormalizeWeaknesses([]domain.WeaknessInput{
			{Weakness: "struggles with fractions"},
		})
		require.NoError(t, err)
		require.Len(t, ws, 1)
		assert.Equal(t, "struggles with fractions", ws[0].Text)
		assert.Equal(t, 1.0, ws[0].Importance)
		assert.Empty(t, ws[0].Description)
		_, err = uuid.Parse(ws[0].ID)
		assert.NoError(t, err, "generated id should be a UUID")
	})

	t.Run("text key accepted as fallback", func(t *testing.T) {
		t.Parallel()
		ws, err := domain.NormalizeWeaknesses([]domain.WeaknessInput{
			{Text: "reading comprehension"},
		})
		require.NoError(t, err)
		assert.Equal(t, "reading comprehension", ws[0].Text)
	})

	t.Run("weakness key wins over text", func(t *testing.T) {
		t.Parallel()
		ws, err := domain.NormalizeWeaknesses([]domain.WeaknessInput{
			{Weakness: "primary", Text: "secondary"},
		})
		require.NoError(t, err)
		assert.Equal(t, "primary", ws[0].Text)
	})

	t.Run("explicit fields preserved", func(t *testing.T) {
		t.Parallel()
		imp := 0.25
		ws, err := domain.NormalizeWeaknesses([]domain.WeaknessInput{
			{ID: "w1", Weakness: "algebra", Description: "linear equations", Importance: &imp},
		})
		require.NoError(t, err)
		assert.Equal(t, domain.Weakness{ID: "w1", Text: "algebra", Description: "linear equations", Importance: 0.25}, ws[0])
	})

	t.Run("missing text fails", func(t *testing.T) {
		t.Parallel()
		_, err := domain.NormalizeWeaknesses([]domain.WeaknessInput{
			{Weakness: "ok"},
			{Description: "no text at all"},
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	})

	t.Run("whitespace-only text fails", func(t *testing.T) {
		t.Parallel()
		_, err := domain.NormalizeWeaknesses([]domain.WeaknessInput{
			{Weakness: "   "},
		})
		assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	})

	t.Run("empty input yields empty output", func(t *testing.T) {
		t.Parallel()
		ws, err := domain.NormalizeWeaknesses(nil)
		require.NoError(t, err)
		assert.Empty(t, ws)
	})
}

func TestValidateWeaknesses(t *testing.T) {
	t.Parallel()

	require.NoError(t, domain.ValidateWeaknesses([]domain.Weakness{
		{ID: "w1", Text: "fractions"},
	}))

	err := domain.ValidateWeaknesses([]domain.Weakness{
		{ID: "w1", Text: "fractions"},
		{ID: "w2", Text: ""},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}
