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
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/gramsetu/adarsh/database"
	"github.com/gramsetu/adarsh/database/models"
	"github.com/gramsetu/adarsh/database/types"
	"github.com/gramsetu/adarsh/event"
	"github.com/gramsetu/adarsh/scoring"
	"github.com/prometheus/client_golang/prometheus"
)

// MaxAttempts bounds how often an item is retried after losing a unique
// key race
const MaxAttempts = 3

type IngestConfig struct {
	Database     *database.Database
	Logger       *slog.Logger
	PromRegistry prometheus.Registerer
	EventBus     *event.EventBus
	Trigger      scoring.Trigger
	// RecomputeConcurrency bounds the recomputes started after a batch
	RecomputeConcurrency int
}

type Ingestor struct {
	db                   *database.Database
	logger               *slog.Logger
	eventBus             *event.EventBus
	trigger              scoring.Trigger
	metrics              *ingestMetrics
	recomputeConcurrency int
}

func New(cfg IngestConfig) *Ingestor {
	i := &Ingestor{
		db:                   cfg.Database,
		eventBus:             cfg.EventBus,
		trigger:              cfg.Trigger,
		metrics:              newIngestMetrics(cfg.PromRegistry),
		recomputeConcurrency: cfg.RecomputeConcurrency,
	}
	if cfg.Logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		i.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	} else {
		i.logger = cfg.Logger
	}
	i.logger = i.logger.With("component", "ingest")
	if i.trigger == nil {
		i.trigger = scoring.NopTrigger
	}
	if i.recomputeConcurrency <= 0 {
		i.recomputeConcurrency = 4
	}
	return i
}

// SubmitEvidence applies a single submission. An empty client id is replaced
// with a generated one. A new row triggers a recompute for its village.
func (i *Ingestor) SubmitEvidence(
	ctx context.Context,
	input SubmissionInput,
) (*models.CheckpointSubmission, Decision, error) {
	if input.ClientID == "" {
		input.ClientID = uuid.NewString()
	}
	ret, decision, err := i.applySubmission(ctx, input)
	if err != nil {
		return nil, decision, err
	}
	if decision.Kind == Insert {
		i.trigger.RequestRecompute(ctx, ret.VillageID, scoring.ReasonSubmissionCreated)
	}
	return ret, decision, nil
}

// SubmitVote applies a single priority vote. An empty client id is replaced
// with a generated one.
func (i *Ingestor) SubmitVote(
	ctx context.Context,
	input VoteInput,
) (*models.PriorityVote, Decision, error) {
	if input.ClientID == "" {
		input.ClientID = uuid.NewString()
	}
	ret, decision, err := i.applyVote(ctx, input)
	if err != nil {
		return nil, decision, err
	}
	if decision.Kind == Insert {
		i.trigger.RequestRecompute(ctx, ret.VillageID, scoring.ReasonVoteCreated)
	}
	return ret, decision, nil
}

func (i *Ingestor) applySubmission(
	ctx context.Context,
	input SubmissionInput,
) (*models.CheckpointSubmission, Decision, error) {
	if err := input.Validate(); err != nil {
		i.metrics.items.WithLabelValues(string(models.IngestFamilySubmission), "failed").Inc()
		return nil, Decision{}, err
	}
	var ret *models.CheckpointSubmission
	var decision Decision
	err := i.withRetry(ctx, models.IngestFamilySubmission, func(txn *database.Txn) error {
		var err error
		ret, decision, err = i.submissionTxn(txn, input)
		return err
	})
	i.countOutcome(models.IngestFamilySubmission, decision, err)
	if err != nil {
		return nil, decision, err
	}
	return ret, decision, nil
}

func (i *Ingestor) submissionTxn(
	txn *database.Txn,
	input SubmissionInput,
) (*models.CheckpointSubmission, Decision, error) {
	store := i.db.Metadata()
	byClient, existing, err := i.submissionByClient(txn, input.ClientID)
	if err != nil {
		return nil, Decision{}, err
	}
	decision := Resolve(models.IngestFamilySubmission, input.ClientID, byClient, Match{})
	if decision.Kind == NoOp {
		return existing, decision, nil
	}
	checkpoint, err := store.GetCheckpoint(input.CheckpointID, txn.Metadata())
	if err != nil {
		return nil, decision, err
	}
	project, err := store.GetProject(checkpoint.ProjectID, false, txn.Metadata())
	if err != nil {
		return nil, decision, err
	}
	clientID := input.ClientID
	submission := &models.CheckpointSubmission{
		CheckpointID: checkpoint.ID,
		VillageID:    project.VillageID,
		SubmittedBy:  input.SubmittedBy,
		Notes:        input.Notes,
		PhotoURL:     input.PhotoURL,
		Latitude:     input.Latitude,
		Longitude:    input.Longitude,
		CapturedAt:   input.CapturedAt,
		Status:       models.SubmissionPending,
		ClientID:     &clientID,
	}
	if err := store.CreateSubmission(submission, txn.Metadata()); err != nil {
		return nil, decision, err
	}
	err = store.CreateIngestReceipt(&models.IngestReceipt{
		Family:   models.IngestFamilySubmission,
		ClientID: clientID,
		EntityID: submission.ID,
		Outcome:  models.IngestOutcomeInserted,
	}, txn.Metadata())
	if err != nil {
		return nil, decision, err
	}
	return submission, decision, nil
}

// submissionByClient finds the submission a client id was already applied as
func (i *Ingestor) submissionByClient(
	txn *database.Txn,
	clientID string,
) (Match, *models.CheckpointSubmission, error) {
	store := i.db.Metadata()
	receipt, err := store.GetIngestReceipt(models.IngestFamilySubmission, clientID, txn.Metadata())
	switch {
	case err == nil:
		submission, err := store.GetSubmission(receipt.EntityID, txn.Metadata())
		if err == nil {
			return Match{ID: submission.ID, ClientID: clientID}, submission, nil
		}
		if !errors.Is(err, types.ErrNotFound) {
			return Match{}, nil, err
		}
	case !errors.Is(err, types.ErrNotFound):
		return Match{}, nil, err
	}
	submission, err := store.GetSubmissionByClientID(clientID, txn.Metadata())
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return Match{}, nil, nil
		}
		return Match{}, nil, err
	}
	return Match{ID: submission.ID, ClientID: clientID}, submission, nil
}

func (i *Ingestor) applyVote(
	ctx context.Context,
	input VoteInput,
) (*models.PriorityVote, Decision, error) {
	if err := input.Validate(); err != nil {
		i.metrics.items.WithLabelValues(string(models.IngestFamilyVote), "failed").Inc()
		return nil, Decision{}, err
	}
	var ret *models.PriorityVote
	var decision Decision
	err := i.withRetry(ctx, models.IngestFamilyVote, func(txn *database.Txn) error {
		var err error
		ret, decision, err = i.voteTxn(txn, input)
		return err
	})
	i.countOutcome(models.IngestFamilyVote, decision, err)
	if err != nil {
		return nil, decision, err
	}
	return ret, decision, nil
}

func (i *Ingestor) voteTxn(
	txn *database.Txn,
	input VoteInput,
) (*models.PriorityVote, Decision, error) {
	store := i.db.Metadata()
	byClient, err := i.voteByClient(txn, input.ClientID)
	if err != nil {
		return nil, Decision{}, err
	}
	key := models.InfrastructureKey(input.RequiredInfrastructure)
	var bySemantic Match
	if !byClient.Found() {
		vote, err := store.GetPriorityVoteByKey(input.VillageID, key, txn.Metadata())
		switch {
		case err == nil:
			bySemantic = Match{ID: vote.ID}
			if vote.ClientID != nil {
				bySemantic.ClientID = *vote.ClientID
			}
		case !errors.Is(err, types.ErrNotFound):
			return nil, Decision{}, err
		}
	}
	decision := Resolve(models.IngestFamilyVote, input.ClientID, byClient, bySemantic)
	switch decision.Kind {
	case NoOp:
		vote, err := store.GetPriorityVote(decision.ExistingID, txn.Metadata())
		return vote, decision, err
	case MergeInto:
		if err := store.IncrementPriorityVote(decision.ExistingID, txn.Metadata()); err != nil {
			return nil, decision, err
		}
		if err := i.writeReceipt(txn, models.IngestFamilyVote, input.ClientID, decision.ExistingID, models.IngestOutcomeMerged); err != nil {
			return nil, decision, err
		}
		vote, err := store.GetPriorityVote(decision.ExistingID, txn.Metadata())
		return vote, decision, err
	}
	if _, err := store.GetVillage(input.VillageID, txn.Metadata()); err != nil {
		return nil, decision, err
	}
	clientID := input.ClientID
	vote := &models.PriorityVote{
		VillageID:              input.VillageID,
		RequiredInfrastructure: strings.TrimSpace(input.RequiredInfrastructure),
		InfrastructureKey:      key,
		Description:            input.Description,
		SubmittedBy:            input.SubmittedBy,
		ClientID:               &clientID,
		TotalVotes:             1,
	}
	if err := store.CreatePriorityVote(vote, txn.Metadata()); err != nil {
		return nil, decision, err
	}
	if err := i.writeReceipt(txn, models.IngestFamilyVote, clientID, vote.ID, models.IngestOutcomeInserted); err != nil {
		return nil, decision, err
	}
	return vote, decision, nil
}

// voteByClient finds the vote a client id was already applied to, either as
// the creator of the row or through a merge receipt
func (i *Ingestor) voteByClient(txn *database.Txn, clientID string) (Match, error) {
	store := i.db.Metadata()
	receipt, err := store.GetIngestReceipt(models.IngestFamilyVote, clientID, txn.Metadata())
	switch {
	case err == nil:
		return Match{ID: receipt.EntityID, ClientID: clientID}, nil
	case !errors.Is(err, types.ErrNotFound):
		return Match{}, err
	}
	vote, err := store.GetPriorityVoteByClientID(clientID, txn.Metadata())
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return Match{}, nil
		}
		return Match{}, err
	}
	return Match{ID: vote.ID, ClientID: clientID}, nil
}

func (i *Ingestor) writeReceipt(
	txn *database.Txn,
	family models.IngestFamily,
	clientID string,
	entityID uint,
	outcome models.IngestOutcome,
) error {
	return i.db.Metadata().CreateIngestReceipt(&models.IngestReceipt{
		Family:   family,
		ClientID: clientID,
		EntityID: entityID,
		Outcome:  outcome,
	}, txn.Metadata())
}

// withRetry runs fn in its own transaction. A unique key conflict means a
// concurrent writer applied the same key first, and the next attempt
// resolves against its row.
func (i *Ingestor) withRetry(
	ctx context.Context,
	family models.IngestFamily,
	fn func(*database.Txn) error,
) error {
	var err error
	for attempt := 1; attempt <= MaxAttempts; attempt++ {
		err = i.db.Transaction(ctx, true).Do(fn)
		if err == nil || !errors.Is(err, types.ErrConflict) {
			return err
		}
		i.metrics.retries.WithLabelValues(string(family)).Inc()
		i.logger.Debug(
			"retrying after unique key conflict",
			"family", family,
			"attempt", attempt,
			"error", err,
		)
	}
	return fmt.Errorf("gave up after %d attempts: %w", MaxAttempts, err)
}

func (i *Ingestor) countOutcome(family models.IngestFamily, decision Decision, err error) {
	outcome := decision.Kind.String()
	if err != nil {
		outcome = "failed"
	}
	i.metrics.items.WithLabelValues(string(family), outcome).Inc()
}
