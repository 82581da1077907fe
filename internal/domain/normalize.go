package domain

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// WeaknessInput is a loosely-typed weakness record as accepted at the API
// boundary. Either Weakness or Text must carry the weakness statement.
type WeaknessInput struct {
	ID          string   `json:"id"`
	Weakness    string   `json:"weakness"`
	Text        string   `json:"text"`
	Description string   `json:"description"`
	Importance  *float64 `json:"importance"`
}

// NormalizeWeaknesses converts raw records into canonical Weakness entities.
// The weakness text is required; id defaults to a fresh UUID, importance to
// 1.0 and description to empty. No side effects.
func NormalizeWeaknesses(items []WeaknessInput) ([]Weakness, error) {
	out := make([]Weakness, 0, len(items))
	for i, item := range items {
		text := strings.TrimSpace(item.Weakness)
		if text == "" {
			text = strings.TrimSpace(item.Text)
		}
		if text == "" {
			return nil, fmt.Errorf("%w: weakness %d must include a 'weakness' or 'text' field", ErrInvalidArgument, i)
		}
		id := item.ID
		if id == "" {
			id = uuid.NewString()
		}
		importance := 1.0
		if item.Importance != nil {
			importance = *item.Importance
		}
		out = append(out, Weakness{
			ID:          id,
			Text:        text,
			Description: item.Description,
			Importance:  importance,
		})
	}
	return out, nil
}

// ValidateWeaknesses checks pre-built entities for the same required fields
// the normalizer enforces on raw records.
func ValidateWeaknesses(ws []Weakness) error {
	for i, w := range ws {
		if strings.TrimSpace(w.Text) == "" {
			return fmt.Errorf("%w: weakness %d has empty text", ErrInvalidArgument, i)
		}
	}
	return nil
}
