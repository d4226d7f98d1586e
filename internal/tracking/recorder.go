// Package tracking records generation and interaction analytics. Every
// method is best effort: failures are logged and never reach the caller.
package tracking

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/MikeSquared-Agency/alibi/internal/excuse"
	"github.com/MikeSquared-Agency/alibi/internal/hermes"
	"github.com/MikeSquared-Agency/alibi/internal/store"
)

// DefaultPopularLimit is used when PopularScenarios is asked for <= 0 rows.
const DefaultPopularLimit = 5

type Store interface {
	InsertGeneration(ctx context.Context, generationID string, req excuse.Request, meta excuse.ClientMeta) error
	InsertInteraction(ctx context.Context, in excuse.Interaction) (uuid.UUID, error)
	ScenarioCount(ctx context.Context, scenario excuse.Scenario) (int, bool, error)
	UpdateScenarioCount(ctx context.Context, scenario excuse.Scenario, count int) error
	InsertScenarioCount(ctx context.Context, scenario excuse.Scenario, count int) error
	PopularScenarios(ctx context.Context, limit int) ([]store.ScenarioPopularity, error)
}

type Publisher interface {
	Publish(subject string, data any) error
}

// Recorder fans analytics out to a Store and a Publisher. Either may be nil,
// which disables that sink.
type Recorder struct {
	store     Store
	publisher Publisher
	logger    *slog.Logger
	now       func() time.Time
}

func NewRecorder(s Store, p Publisher, logger *slog.Logger) *Recorder {
	return &Recorder{store: s, publisher: p, logger: logger, now: time.Now}
}

func (r *Recorder) RecordGeneration(ctx context.Context, req excuse.Request, generationID string, meta excuse.ClientMeta) {
	var writeDB, publish func(context.Context) error
	if r.store != nil {
		writeDB = func(ctx context.Context) error {
			return r.store.InsertGeneration(ctx, generationID, req, meta)
		}
	}
	if r.publisher != nil {
		ev := hermes.NewGenerationEvent(generationID, req, meta, r.now())
		publish = func(context.Context) error {
			return r.publisher.Publish(hermes.SubjectGenerationCreated, ev)
		}
	}
	r.fanOut(ctx, "generation", writeDB, publish)
}

func (r *Recorder) RecordInteraction(ctx context.Context, in excuse.Interaction) {
	var writeDB, publish func(context.Context) error
	if r.store != nil {
		writeDB = func(ctx context.Context) error {
			_, err := r.store.InsertInteraction(ctx, in)
			return err
		}
	}
	if r.publisher != nil {
		ev := hermes.NewInteractionEvent(in, r.now())
		publish = func(context.Context) error {
			return r.publisher.Publish(hermes.SubjectInteractionRecorded, ev)
		}
	}
	r.fanOut(ctx, "interaction", writeDB, publish)
}

// fanOut runs the database write and the event publish side by side. A
// failing sink does not cancel the other.
func (r *Recorder) fanOut(ctx context.Context, kind string, writeDB, publish func(context.Context) error) {
	var g errgroup.Group
	if writeDB != nil {
		g.Go(func() error {
			if err := writeDB(ctx); err != nil {
				r.logger.Warn("record failed", "kind", kind, "sink", "store", "error", err)
				return fmt.Errorf("store %s: %w", kind, err)
			}
			return nil
		})
	}
	if publish != nil {
		g.Go(func() error {
			if err := publish(ctx); err != nil {
				r.logger.Warn("record failed", "kind", kind, "sink", "nats", "error", err)
				return fmt.Errorf("publish %s: %w", kind, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return
	}
	r.logger.Debug("recorded", "kind", kind)
}

// IncrementScenarioPopularity reads the current total and writes total+1,
// inserting the row when absent. Concurrent increments may lose updates.
func (r *Recorder) IncrementScenarioPopularity(ctx context.Context, scenario excuse.Scenario) {
	if r.store == nil {
		return
	}
	count, found, err := r.store.ScenarioCount(ctx, scenario)
	if err != nil {
		r.logger.Warn("read scenario popularity failed", "scenario", scenario, "error", err)
		return
	}
	if found {
		err = r.store.UpdateScenarioCount(ctx, scenario, count+1)
	} else {
		err = r.store.InsertScenarioCount(ctx, scenario, 1)
	}
	if err != nil {
		r.logger.Warn("write scenario popularity failed", "scenario", scenario, "error", err)
	}
}

// PopularScenarios returns up to limit scenarios by generation count. It
// returns an empty list when the store is disabled or the read fails.
func (r *Recorder) PopularScenarios(ctx context.Context, limit int) []store.ScenarioPopularity {
	if limit <= 0 {
		limit = DefaultPopularLimit
	}
	if r.store == nil {
		return []store.ScenarioPopularity{}
	}
	out, err := r.store.PopularScenarios(ctx, limit)
	if err != nil {
		r.logger.Warn("read popular scenarios failed", "error", err)
		return []store.ScenarioPopularity{}
	}
	if out == nil {
		out = []store.ScenarioPopularity{}
	}
	return out
}
