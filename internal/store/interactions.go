package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/alibi/internal/excuse"
)

// InsertInteraction writes one excuse_interactions row. The generation id
// is not checked against excuse_generations.
func (s *Store) InsertInteraction(ctx context.Context, in excuse.Interaction) (uuid.UUID, error) {
	id := uuid.New()
	_, err := s.pool.Exec(ctx, `
		INSERT INTO excuse_interactions (id, generation_id, action_type, format_type, created_at)
		VALUES ($1, $2, $3, $4, now())`,
		id, in.GenerationID, string(in.ActionType), nullable(string(in.FormatType)),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert interaction: %w", err)
	}
	return id, nil
}
