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

package ingest

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/gramsetu/adarsh/database/models"
	"github.com/gramsetu/adarsh/database/types"
	"github.com/gramsetu/adarsh/event"
	"github.com/gramsetu/adarsh/scoring"
	"golang.org/x/sync/errgroup"
)

// SyncResult is the acknowledgement of a batch. IDMap covers every applied
// item including no-ops. Failed items are keyed by client id, or by "#<index>"
// when the item had none.
type SyncResult struct {
	AttemptID    string            `json:"attempt_id"`
	Synced       int               `json:"synced"`
	Deduplicated int               `json:"deduplicated"`
	IDMap        map[string]uint   `json:"id_map"`
	Failed       map[string]string `json:"failed,omitempty"`
}

// batch collects per-item results of a sync call
type batch struct {
	family    models.IngestFamily
	actor     string
	result    *SyncResult
	clientIDs []string
	processed []string
	villages  []uint
}

func newBatch(family models.IngestFamily, actor string, size int) *batch {
	return &batch{
		family: family,
		actor:  actor,
		result: &SyncResult{
			AttemptID: uuid.NewString(),
			IDMap:     make(map[string]uint, size),
			Failed:    make(map[string]string),
		},
		clientIDs: make([]string, 0, size),
	}
}

func (b *batch) add(idx int, clientID string, id uint, villageID uint, decision Decision, err error) {
	b.clientIDs = append(b.clientIDs, clientID)
	if err != nil {
		// A client id that already landed in this batch stays applied
		if _, ok := b.result.IDMap[clientID]; ok && clientID != "" {
			return
		}
		key := clientID
		if key == "" {
			key = fmt.Sprintf("#%d", idx)
		}
		b.result.Failed[key] = err.Error()
		return
	}
	delete(b.result.Failed, clientID)
	if _, ok := b.result.IDMap[clientID]; !ok {
		b.processed = append(b.processed, clientID)
	}
	b.result.IDMap[clientID] = id
	if decision.Kind == Insert {
		b.result.Synced++
		if !slices.Contains(b.villages, villageID) {
			b.villages = append(b.villages, villageID)
		}
		return
	}
	b.result.Deduplicated++
}

var ErrMissingClientID = fmt.Errorf("%w: batch items require a client_id", types.ErrInvalidInput)

// SyncSubmissions applies a batch of offline submissions. Items are applied
// one by one in their own transactions, so a failing item never undoes the
// others. Items left when ctx ends are reported as failed.
func (i *Ingestor) SyncSubmissions(
	ctx context.Context,
	actor string,
	inputs []SubmissionInput,
) *SyncResult {
	b := newBatch(models.IngestFamilySubmission, actor, len(inputs))
	for idx, input := range inputs {
		if err := ctx.Err(); err != nil {
			b.add(idx, input.ClientID, 0, 0, Decision{}, err)
			continue
		}
		if input.ClientID == "" {
			i.metrics.items.WithLabelValues(string(b.family), "failed").Inc()
			b.add(idx, "", 0, 0, Decision{}, ErrMissingClientID)
			continue
		}
		submission, decision, err := i.applySubmission(ctx, input)
		if err != nil {
			b.add(idx, input.ClientID, 0, 0, decision, err)
			continue
		}
		b.add(idx, input.ClientID, submission.ID, submission.VillageID, decision, nil)
	}
	return i.finish(ctx, b)
}

// SyncVotes applies a batch of offline priority votes
func (i *Ingestor) SyncVotes(
	ctx context.Context,
	actor string,
	inputs []VoteInput,
) *SyncResult {
	b := newBatch(models.IngestFamilyVote, actor, len(inputs))
	for idx, input := range inputs {
		if err := ctx.Err(); err != nil {
			b.add(idx, input.ClientID, 0, 0, Decision{}, err)
			continue
		}
		if input.ClientID == "" {
			i.metrics.items.WithLabelValues(string(b.family), "failed").Inc()
			b.add(idx, "", 0, 0, Decision{}, ErrMissingClientID)
			continue
		}
		vote, decision, err := i.applyVote(ctx, input)
		if err != nil {
			b.add(idx, input.ClientID, 0, 0, decision, err)
			continue
		}
		b.add(idx, input.ClientID, vote.ID, vote.VillageID, decision, nil)
	}
	return i.finish(ctx, b)
}

// finish recomputes each village with new rows once, then records the
// attempt. Neither step can fail the batch.
func (i *Ingestor) finish(ctx context.Context, b *batch) *SyncResult {
	// The batch is committed, so recomputes outlive a cancelled request
	recomputeCtx := context.WithoutCancel(ctx)
	var g errgroup.Group
	g.SetLimit(i.recomputeConcurrency)
	for _, villageID := range b.villages {
		g.Go(func() error {
			i.trigger.RequestRecompute(recomputeCtx, villageID, scoring.ReasonBatchSync)
			return nil
		})
	}
	_ = g.Wait()

	attempt := &models.SyncAttempt{
		ID:                 b.result.AttemptID,
		Actor:              b.actor,
		Family:             b.family,
		Received:           len(b.clientIDs),
		Synced:             b.result.Synced,
		Deduplicated:       b.result.Deduplicated,
		Failed:             len(b.result.Failed),
		ClientIDs:          b.clientIDs,
		ProcessedClientIDs: b.processed,
	}
	if attempt.ProcessedClientIDs == nil {
		attempt.ProcessedClientIDs = []string{}
	}
	if err := i.db.Metadata().CreateSyncAttempt(attempt, nil); err != nil {
		i.logger.Error(
			"failed to record sync attempt",
			"attempt_id", attempt.ID,
			"family", b.family,
			"error", err,
		)
	}
	i.metrics.batchSize.WithLabelValues(string(b.family)).Observe(float64(attempt.Received))
	i.logger.Info(
		"processed sync batch",
		"attempt_id", attempt.ID,
		"actor", b.actor,
		"family", b.family,
		"received", attempt.Received,
		"synced", attempt.Synced,
		"deduplicated", attempt.Deduplicated,
		"failed", attempt.Failed,
		"villages", len(b.villages),
	)
	if i.eventBus != nil {
		i.eventBus.PublishAsync(
			event.SyncCompletedEventType,
			event.NewEvent(
				event.SyncCompletedEventType,
				event.SyncCompletedEvent{
					AttemptID:    attempt.ID,
					Family:       string(b.family),
					Received:     attempt.Received,
					Synced:       attempt.Synced,
					Deduplicated: attempt.Deduplicated,
					Failed:       attempt.Failed,
				},
			),
		)
	}
	return b.result
}
