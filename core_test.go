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

package adarsh_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/gramsetu/adarsh"
	"github.com/gramsetu/adarsh/database/models"
	"github.com/gramsetu/adarsh/database/types"
	"github.com/gramsetu/adarsh/ingest"
	"github.com/gramsetu/adarsh/ledger"
	"github.com/gramsetu/adarsh/projects"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCore(t *testing.T, opts ...adarsh.ConfigOptionFunc) *adarsh.Core {
	t.Helper()
	core, err := adarsh.New(adarsh.NewConfig(opts...))
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, core.Stop()) })
	return core
}

func entity[T any](t *testing.T, result adarsh.Result) T {
	t.Helper()
	require.True(t, result.OK(), "unexpected failure: %s", result.Error)
	ret, ok := result.Entity.(T)
	require.True(t, ok, "unexpected entity type %T", result.Entity)
	return ret
}

func TestStatusOf(t *testing.T) {
	testDefs := []struct {
		err      error
		expected adarsh.Status
	}{
		{nil, adarsh.StatusOK},
		{fmt.Errorf("%w: bad", types.ErrInvalidInput), adarsh.StatusBadRequest},
		{ledger.ErrProjectNotFound, adarsh.StatusNotFound},
		{ledger.ErrOverRelease, adarsh.StatusConflict},
		{projects.ErrAlreadyApproved, adarsh.StatusConflict},
		{types.ErrTransient, adarsh.StatusServerError},
		{errors.New("boom"), adarsh.StatusServerError},
	}
	for _, testDef := range testDefs {
		assert.Equal(t, testDef.expected, adarsh.StatusOf(testDef.err), "error: %v", testDef.err)
	}
}

func TestCoreLifecycle(t *testing.T) {
	core := newCore(t)
	ctx := context.Background()

	village := entity[*models.Village](t, core.CreateVillage(ctx, projects.VillageInput{Name: "Rampur"}))
	result := core.UpdateVillageMetrics(ctx, village.ID, projects.MetricsInput{
		InfrastructureScore: 50,
		LiteracyRate:        60,
		EmploymentRate:      40,
	})
	require.True(t, result.OK(), result.Error)

	result = core.CreateProject(ctx, projects.ProjectInput{
		VillageID:         village.ID,
		Name:              "Community hall",
		InitialAllocation: decimal.NewFromInt(100),
	})
	assert.Equal(t, adarsh.StatusCreated, result.Status)
	project := entity[*models.Project](t, result)

	result = core.ReleaseFunds(ctx, project.ID, adarsh.FundRequest{Amount: decimal.NewFromInt(60)})
	require.True(t, result.OK(), result.Error)
	result = core.ReleaseFunds(ctx, project.ID, adarsh.FundRequest{Amount: decimal.NewFromInt(50)})
	assert.Equal(t, adarsh.StatusConflict, result.Status)
	assert.NotEmpty(t, result.Error)
	assert.Nil(t, result.Entity)
	require.ErrorIs(t, result.Err(), ledger.ErrOverRelease)

	result = core.ReleaseFunds(ctx, 999, adarsh.FundRequest{Amount: decimal.NewFromInt(1)})
	assert.Equal(t, adarsh.StatusNotFound, result.Status)
	result = core.AllocateFunds(ctx, project.ID, adarsh.FundRequest{Amount: decimal.NewFromInt(-5)})
	assert.Equal(t, adarsh.StatusBadRequest, result.Status)

	score := entity[*models.AdarshScore](t, core.GetScore(ctx, village.ID))
	assert.Equal(t, village.ID, score.VillageID)
	// Score follows the release that committed
	assert.InDelta(t, 60.0, score.FundUtilization, 0.001)

	discrepancies := entity[[]ledger.Discrepancy](t, core.VerifyLedger(ctx))
	assert.Empty(t, discrepancies)

	log := entity[[]models.FundTransaction](t, core.GetFundTransactions(ctx, project.ID))
	assert.Len(t, log, 2)

	summaries := entity[[]adarsh.VillageSummary](t, core.ListVillages(ctx))
	require.Len(t, summaries, 1)
	require.NotNil(t, summaries[0].Score)
}

func TestCoreEvidenceFlow(t *testing.T) {
	core := newCore(t)
	ctx := context.Background()
	village := entity[*models.Village](t, core.CreateVillage(ctx, projects.VillageInput{Name: "Sonpur"}))
	project := entity[*models.Project](t, core.CreateProject(ctx, projects.ProjectInput{
		VillageID:         village.ID,
		Name:              "Drainage",
		InitialAllocation: decimal.NewFromInt(200),
	}))
	checkpoint := entity[*models.Checkpoint](t, core.AddCheckpoint(ctx, projects.CheckpointInput{
		ProjectID: project.ID,
		Name:      "Excavation",
		Mandatory: true,
	}))

	media := entity[adarsh.MediaRef](t, core.StoreMedia(ctx, "site.JPG", "image/jpeg", []byte{0xff, 0xd8}))
	assert.Contains(t, media.URL, media.Key)
	stored, err := core.GetMedia(ctx, media.Key)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", stored.ContentType)

	input := ingest.SubmissionInput{ClientID: "dev-1", CheckpointID: checkpoint.ID, PhotoURL: media.URL}
	result := core.SubmitEvidence(ctx, input)
	assert.Equal(t, adarsh.StatusCreated, result.Status)
	submission := entity[*models.CheckpointSubmission](t, result)
	result = core.SubmitEvidence(ctx, input)
	assert.Equal(t, adarsh.StatusOK, result.Status)
	assert.Equal(t, "Submission already recorded", result.Message)

	review := entity[*projects.ReviewResult](t, core.ReviewSubmission(ctx, submission.ID, projects.ReviewInput{
		Status:   models.SubmissionApproved,
		Reviewer: "engineer",
	}))
	assert.True(t, review.ProjectCompleted)
	assert.True(t, decimal.NewFromInt(200).Equal(review.Released))

	result = core.ReviewSubmission(ctx, submission.ID, projects.ReviewInput{Status: models.SubmissionRejected})
	assert.Equal(t, adarsh.StatusConflict, result.Status)

	ack := entity[*ingest.SyncResult](t, core.SyncVotes(ctx, "field-team", []ingest.VoteInput{
		{ClientID: "v1", VillageID: village.ID, RequiredInfrastructure: "Clinic"},
		{ClientID: "v2", VillageID: village.ID},
	}))
	assert.Equal(t, 1, ack.Synced)
	assert.Contains(t, ack.Failed, "v2")
}

func TestCoreAsyncRecompute(t *testing.T) {
	core := newCore(t, adarsh.WithRecomputeMode("async"))
	ctx := context.Background()
	village := entity[*models.Village](t, core.CreateVillage(ctx, projects.VillageInput{Name: "Rampur"}))
	score := entity[*models.AdarshScore](t, core.RecomputeScore(ctx, village.ID))
	assert.Equal(t, village.ID, score.VillageID)
	result := core.RecomputeScore(ctx, 4242)
	assert.Equal(t, adarsh.StatusNotFound, result.Status)
}
