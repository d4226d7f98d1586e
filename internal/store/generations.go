package store

import (
	"context"
	"fmt"

	"github.com/MikeSquared-Agency/alibi/internal/excuse"
)

// InsertGeneration writes one excuse_generations row keyed by the generation id.
func (s *Store) InsertGeneration(ctx context.Context, generationID string, req excuse.Request, meta excuse.ClientMeta) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO excuse_generations (id, scenario, relationship, timing, transport, personal_context,
			believability_level, tone, session_id, generation_count, user_agent, referrer, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 1, $10, $11, now())`,
		generationID, string(req.Scenario), string(req.Relationship), string(req.Timing),
		nullable(string(req.Transport)), nullable(req.PersonalContext),
		string(req.BelievabilityLevel), string(req.Tone),
		nullable(meta.SessionID), nullable(meta.UserAgent), nullable(meta.Referrer),
	)
	if err != nil {
		return fmt.Errorf("insert generation: %w", err)
	}
	return nil
}
