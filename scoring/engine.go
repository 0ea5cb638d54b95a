// Copyright 2025 Gramsetu Contributors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package scoring

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/gramsetu/adarsh/database"
	"github.com/gramsetu/adarsh/database/models"
	"github.com/gramsetu/adarsh/database/types"
	"github.com/gramsetu/adarsh/event"
	"github.com/prometheus/client_golang/prometheus"
)

type EngineConfig struct {
	Database     *database.Database
	Logger       *slog.Logger
	PromRegistry prometheus.Registerer
	EventBus     *event.EventBus
}

// Engine recomputes and persists village scores
type Engine struct {
	db       *database.Database
	logger   *slog.Logger
	eventBus *event.EventBus
	metrics  *engineMetrics
}

func NewEngine(cfg EngineConfig) *Engine {
	e := &Engine{
		db:       cfg.Database,
		eventBus: cfg.EventBus,
		metrics:  newEngineMetrics(cfg.PromRegistry),
	}
	if cfg.Logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		e.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	} else {
		e.logger = cfg.Logger
	}
	e.logger = e.logger.With("component", "scoring")
	return e
}

// Inputs reads the facts of a village in a single read transaction
func (e *Engine) Inputs(ctx context.Context, villageID uint) (*Inputs, error) {
	ret := &Inputs{}
	txn := e.db.Transaction(ctx, false)
	err := txn.Do(func(txn *database.Txn) error {
		store := e.db.Metadata()
		if _, err := store.GetVillage(villageID, txn.Metadata()); err != nil {
			return err
		}
		metrics, err := store.GetVillageMetrics(villageID, txn.Metadata())
		switch {
		case err == nil:
			ret.Metrics = *metrics
		case !errors.Is(err, types.ErrNotFound):
			return err
		}
		stats, err := store.GetVillageStats(villageID, txn.Metadata())
		if err != nil {
			return err
		}
		ret.Stats = *stats
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ret, nil
}

// Recompute derives the score of a village from its current facts and
// replaces the stored row. Calling it again without data changes writes the
// same values.
func (e *Engine) Recompute(ctx context.Context, villageID uint) (*models.AdarshScore, error) {
	start := time.Now()
	in, err := e.Inputs(ctx, villageID)
	if err != nil {
		e.metrics.failures.Inc()
		return nil, fmt.Errorf("recompute score for village %d: %w", villageID, err)
	}
	score := Compute(villageID, *in)
	if err := e.db.Metadata().SetAdarshScore(&score, nil); err != nil {
		e.metrics.failures.Inc()
		return nil, fmt.Errorf("recompute score for village %d: %w", villageID, err)
	}
	ret, err := e.db.Metadata().GetAdarshScore(villageID, nil)
	if err != nil {
		e.metrics.failures.Inc()
		return nil, fmt.Errorf("recompute score for village %d: %w", villageID, err)
	}
	e.metrics.recomputes.Inc()
	e.metrics.duration.Observe(time.Since(start).Seconds())
	e.logger.Debug(
		"recomputed score",
		"village_id", villageID,
		"overall", ret.OverallScore,
		"candidate", ret.IsCandidate,
	)
	if e.eventBus != nil {
		e.eventBus.PublishAsync(
			event.ScoreUpdatedEventType,
			event.NewEvent(
				event.ScoreUpdatedEventType,
				event.ScoreUpdatedEvent{
					VillageID:    villageID,
					OverallScore: ret.OverallScore,
					IsCandidate:  ret.IsCandidate,
				},
			),
		)
	}
	return ret, nil
}

// Score returns the stored score of a village
func (e *Engine) Score(villageID uint) (*models.AdarshScore, error) {
	return e.db.Metadata().GetAdarshScore(villageID, nil)
}
