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

package adarsh

import (
	"context"
	"errors"
	"fmt"

	"github.com/gramsetu/adarsh/database/models"
	"github.com/gramsetu/adarsh/database/types"
	"github.com/gramsetu/adarsh/projects"
)

// VillageSummary is a village with its latest score, if any
type VillageSummary struct {
	Village *models.Village     `json:"village"`
	Score   *models.AdarshScore `json:"score,omitempty"`
}

func (c *Core) CreateVillage(ctx context.Context, input projects.VillageInput) Result {
	village, err := c.projects.CreateVillage(ctx, input)
	if err != nil {
		return failure(err)
	}
	return created("Village created", village)
}

func (c *Core) UpdateVillageMetrics(
	ctx context.Context,
	villageID uint,
	input projects.MetricsInput,
) Result {
	metrics, err := c.projects.UpdateVillageMetrics(ctx, villageID, input)
	if err != nil {
		return failure(err)
	}
	return success("Village metrics updated", metrics)
}

// ListVillages returns every village with its stored score
func (c *Core) ListVillages(ctx context.Context) Result {
	store := c.db.Metadata()
	villageIDs, err := store.GetVillageIDs(nil)
	if err != nil {
		return failure(err)
	}
	ret := make([]VillageSummary, 0, len(villageIDs))
	for _, villageID := range villageIDs {
		if err := ctx.Err(); err != nil {
			return failure(err)
		}
		village, err := store.GetVillage(villageID, nil)
		if err != nil {
			return failure(err)
		}
		summary := VillageSummary{Village: village}
		score, err := c.engine.Score(villageID)
		switch {
		case err == nil:
			summary.Score = score
		case !errors.Is(err, types.ErrNotFound):
			return failure(err)
		}
		ret = append(ret, summary)
	}
	return success(fmt.Sprintf("%d villages", len(ret)), ret)
}

// GetScore returns the stored score of a village. A village that was never
// scored is computed on first read.
func (c *Core) GetScore(ctx context.Context, villageID uint) Result {
	score, err := c.engine.Score(villageID)
	if errors.Is(err, types.ErrNotFound) {
		score, err = c.engine.Recompute(ctx, villageID)
	}
	if err != nil {
		return failure(err)
	}
	return success("Adarsh score", score)
}

// RecomputeScore recomputes and stores the score of a village
func (c *Core) RecomputeScore(ctx context.Context, villageID uint) Result {
	score, err := c.engine.Recompute(ctx, villageID)
	if err != nil {
		return failure(err)
	}
	return success("Adarsh score recomputed", score)
}

// RecomputeAll recomputes every village and reports how many were updated
func (c *Core) RecomputeAll(ctx context.Context) Result {
	villageIDs, err := c.db.Metadata().GetVillageIDs(nil)
	if err != nil {
		return failure(err)
	}
	scores := make([]*models.AdarshScore, 0, len(villageIDs))
	for _, villageID := range villageIDs {
		score, err := c.engine.Recompute(ctx, villageID)
		if err != nil {
			return failure(err)
		}
		scores = append(scores, score)
	}
	return success(fmt.Sprintf("Recomputed %d villages", len(scores)), scores)
}
