package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/MikeSquared-Agency/alibi/internal/excuse"
)

type ScenarioPopularity struct {
	Scenario         excuse.Scenario `json:"scenario"`
	TotalGenerations int             `json:"totalGenerations"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

// ScenarioCount returns the running total for scenario. found is false when
// no row exists yet.
func (s *Store) ScenarioCount(ctx context.Context, scenario excuse.Scenario) (count int, found bool, err error) {
	err = s.pool.QueryRow(ctx, `
		SELECT total_generations FROM popular_scenarios WHERE scenario = $1`,
		string(scenario),
	).Scan(&count)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("select scenario count: %w", err)
	}
	return count, true, nil
}

// UpdateScenarioCount overwrites the total for an existing scenario row.
func (s *Store) UpdateScenarioCount(ctx context.Context, scenario excuse.Scenario, count int) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE popular_scenarios SET total_generations = $1, updated_at = now()
		WHERE scenario = $2`,
		count, string(scenario),
	)
	if err != nil {
		return fmt.Errorf("update scenario count: %w", err)
	}
	return nil
}

// InsertScenarioCount creates the row for scenario. A concurrent insert of
// the same scenario is resolved last-write-wins.
func (s *Store) InsertScenarioCount(ctx context.Context, scenario excuse.Scenario, count int) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO popular_scenarios (id, scenario, total_generations, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (scenario)
		DO UPDATE SET total_generations = EXCLUDED.total_generations, updated_at = now()`,
		uuid.New(), string(scenario), count,
	)
	if err != nil {
		return fmt.Errorf("insert scenario count: %w", err)
	}
	return nil
}

// PopularScenarios returns the most generated scenarios, highest first.
func (s *Store) PopularScenarios(ctx context.Context, limit int) ([]ScenarioPopularity, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT scenario, total_generations, updated_at
		FROM popular_scenarios
		ORDER BY total_generations DESC, scenario
		LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query popular scenarios: %w", err)
	}
	defer rows.Close()

	var out []ScenarioPopularity
	for rows.Next() {
		var p ScenarioPopularity
		var scenario string
		if err := rows.Scan(&scenario, &p.TotalGenerations, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan popular scenario: %w", err)
		}
		p.Scenario = excuse.Scenario(scenario)
		out = append(out, p)
	}
	return out, rows.Err()
}
