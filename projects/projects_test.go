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

package projects_test

import (
	"context"
	"sync"
	"testing"

	"github.com/gramsetu/adarsh/database"
	"github.com/gramsetu/adarsh/database/models"
	"github.com/gramsetu/adarsh/database/types"
	"github.com/gramsetu/adarsh/ledger"
	"github.com/gramsetu/adarsh/projects"
	"github.com/gramsetu/adarsh/scoring"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recompute struct {
	villageID uint
	reason    string
}

type recordingTrigger struct {
	mu    sync.Mutex
	calls []recompute
}

func (r *recordingTrigger) RequestRecompute(_ context.Context, villageID uint, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, recompute{villageID: villageID, reason: reason})
}

func (r *recordingTrigger) reasons() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ret := make([]string, 0, len(r.calls))
	for _, c := range r.calls {
		ret = append(ret, c.reason)
	}
	return ret
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type fixture struct {
	db      *database.Database
	svc     *projects.Service
	trigger *recordingTrigger
	village *models.Village
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.New(&database.Config{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	f := &fixture{db: db, trigger: &recordingTrigger{}}
	f.svc = projects.New(projects.ProjectsConfig{
		Database: db,
		Ledger:   ledger.New(ledger.LedgerConfig{Database: db, Trigger: f.trigger}),
		Trigger:  f.trigger,
	})
	f.village, err = f.svc.CreateVillage(context.Background(), projects.VillageInput{Name: "Rampur", State: "UP"})
	require.NoError(t, err)
	return f
}

// withCheckpoints creates a project with the given number of mandatory
// checkpoints, each holding one pending submission
func (f *fixture) withCheckpoints(t *testing.T, allocation string, count int) (*models.Project, []uint) {
	t.Helper()
	ctx := context.Background()
	project, err := f.svc.CreateProject(ctx, projects.ProjectInput{
		VillageID:         f.village.ID,
		Name:              "School building",
		InitialAllocation: dec(allocation),
	})
	require.NoError(t, err)
	var submissionIDs []uint
	for i := range count {
		checkpoint, err := f.svc.AddCheckpoint(ctx, projects.CheckpointInput{
			ProjectID: project.ID,
			Name:      "Stage",
			Sequence:  i,
			Mandatory: true,
		})
		require.NoError(t, err)
		submission := &models.CheckpointSubmission{
			CheckpointID: checkpoint.ID,
			VillageID:    f.village.ID,
			Status:       models.SubmissionPending,
		}
		require.NoError(t, f.db.Metadata().CreateSubmission(submission, nil))
		submissionIDs = append(submissionIDs, submission.ID)
	}
	return project, submissionIDs
}

func (f *fixture) project(t *testing.T, id uint) *models.Project {
	t.Helper()
	ret, err := f.svc.GetProject(context.Background(), id)
	require.NoError(t, err)
	return ret
}

func TestCreateVillageValidation(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.CreateVillage(context.Background(), projects.VillageInput{Name: "  "})
	require.ErrorIs(t, err, types.ErrInvalidInput)
}

func TestUpdateVillageMetrics(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	metrics, err := f.svc.UpdateVillageMetrics(ctx, f.village.ID, projects.MetricsInput{
		InfrastructureScore: 40,
		Schools:             2,
		LiteracyRate:        70,
		EmploymentRate:      50,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, metrics.Schools)

	metrics, err = f.svc.UpdateVillageMetrics(ctx, f.village.ID, projects.MetricsInput{Schools: 3})
	require.NoError(t, err)
	assert.Equal(t, 3, metrics.Schools)
	assert.Zero(t, metrics.LiteracyRate)
	assert.Equal(t, []string{scoring.ReasonMetricsUpdated, scoring.ReasonMetricsUpdated}, f.trigger.reasons())

	_, err = f.svc.UpdateVillageMetrics(ctx, f.village.ID, projects.MetricsInput{LiteracyRate: 101})
	require.ErrorIs(t, err, types.ErrInvalidInput)
	_, err = f.svc.UpdateVillageMetrics(ctx, f.village.ID, projects.MetricsInput{Schools: -1})
	require.ErrorIs(t, err, types.ErrInvalidInput)
	_, err = f.svc.UpdateVillageMetrics(ctx, 999, projects.MetricsInput{})
	require.ErrorIs(t, err, projects.ErrVillageNotFound)
}

func TestCreateProject(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	project, err := f.svc.CreateProject(ctx, projects.ProjectInput{
		VillageID:         f.village.ID,
		Name:              "Water tank",
		InitialAllocation: dec("250000.50"),
		Approver:          "collector",
	})
	require.NoError(t, err)
	assert.Equal(t, models.ProjectStatusPlanned, project.Status)

	stored := f.project(t, project.ID)
	assert.True(t, dec("250000.50").Equal(stored.AllocatedAmount))
	assert.True(t, stored.UtilizedAmount.IsZero())
	log, err := f.db.Metadata().GetFundTransactions(project.ID, nil)
	require.NoError(t, err)
	require.Len(t, log, 1)
	assert.Equal(t, models.FundTransactionAllocation, log[0].Type)
	assert.Equal(t, "collector", log[0].Approver)
	assert.Equal(t, []string{scoring.ReasonProjectCreated}, f.trigger.reasons())
}

func TestCreateProjectRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	testDefs := []struct {
		name  string
		input projects.ProjectInput
		err   error
	}{
		{
			name:  "zero allocation",
			input: projects.ProjectInput{VillageID: f.village.ID, Name: "Road", InitialAllocation: decimal.Zero},
			err:   ledger.ErrInvalidAmount,
		},
		{
			name:  "sub-paisa allocation",
			input: projects.ProjectInput{VillageID: f.village.ID, Name: "Road", InitialAllocation: dec("1.005")},
			err:   ledger.ErrInvalidAmount,
		},
		{
			name:  "unknown village",
			input: projects.ProjectInput{VillageID: 999, Name: "Road", InitialAllocation: dec("10")},
			err:   projects.ErrVillageNotFound,
		},
		{
			name:  "missing name",
			input: projects.ProjectInput{VillageID: f.village.ID, InitialAllocation: dec("10")},
			err:   types.ErrInvalidInput,
		},
		{
			name: "bad status",
			input: projects.ProjectInput{
				VillageID:         f.village.ID,
				Name:              "Road",
				Status:            "abandoned",
				InitialAllocation: dec("10"),
			},
			err: types.ErrInvalidInput,
		},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			_, err := f.svc.CreateProject(ctx, testDef.input)
			require.ErrorIs(t, err, testDef.err)
		})
	}
	ids, err := f.db.Metadata().GetProjectIDs(nil)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestUpdateProject(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	project, _ := f.withCheckpoints(t, "100", 0)
	name := "Primary school"
	status := models.ProjectStatusInProgress
	updated, err := f.svc.UpdateProject(ctx, project.ID, projects.ProjectUpdate{Name: &name, Status: &status})
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)
	assert.Equal(t, status, updated.Status)
	assert.True(t, dec("100").Equal(updated.AllocatedAmount), "amounts are untouched")
	assert.Contains(t, f.trigger.reasons(), scoring.ReasonProjectUpdated)

	bad := models.ProjectStatus("paused")
	_, err = f.svc.UpdateProject(ctx, project.ID, projects.ProjectUpdate{Status: &bad})
	require.ErrorIs(t, err, types.ErrInvalidInput)
	_, err = f.svc.UpdateProject(ctx, 999, projects.ProjectUpdate{Name: &name})
	require.ErrorIs(t, err, projects.ErrProjectNotFound)
}

func TestDeleteProject(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	project, submissions := f.withCheckpoints(t, "100", 2)
	require.NoError(t, f.svc.DeleteProject(ctx, project.ID))

	_, err := f.svc.GetProject(ctx, project.ID)
	require.ErrorIs(t, err, projects.ErrProjectNotFound)
	log, err := f.db.Metadata().GetFundTransactions(project.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, log)
	_, err = f.db.Metadata().GetSubmission(submissions[0], nil)
	require.ErrorIs(t, err, types.ErrNotFound)
	assert.Contains(t, f.trigger.reasons(), scoring.ReasonProjectDeleted)

	require.ErrorIs(t, f.svc.DeleteProject(ctx, project.ID), projects.ErrProjectNotFound)
}

func TestAddCheckpointRequestsRecompute(t *testing.T) {
	f := newFixture(t)
	project, _ := f.withCheckpoints(t, "100", 0)
	n := len(f.trigger.reasons())
	_, err := f.svc.AddCheckpoint(context.Background(), projects.CheckpointInput{
		ProjectID: project.ID,
		Name:      "Foundation",
		Mandatory: true,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{scoring.ReasonProjectUpdated}, f.trigger.reasons()[n:])
}

func TestAddCheckpointUnknownProject(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.AddCheckpoint(context.Background(), projects.CheckpointInput{ProjectID: 42, Name: "Survey"})
	require.ErrorIs(t, err, projects.ErrProjectNotFound)
}

func TestReviewSubmissionApproval(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	project, submissions := f.withCheckpoints(t, "100", 3)
	review := projects.ReviewInput{Status: models.SubmissionApproved, Reviewer: "engineer"}

	ret, err := f.svc.ReviewSubmission(ctx, submissions[0], review)
	require.NoError(t, err)
	assert.Equal(t, models.SubmissionApproved, ret.Submission.Status)
	assert.Equal(t, "engineer", ret.Submission.ReviewedBy)
	assert.True(t, dec("33.33").Equal(ret.Released), ret.Released.String())
	assert.False(t, ret.ProjectCompleted)
	assert.True(t, dec("33.33").Equal(f.project(t, project.ID).UtilizedAmount))

	_, err = f.svc.ReviewSubmission(ctx, submissions[0], review)
	require.ErrorIs(t, err, projects.ErrAlreadyApproved)
	require.ErrorIs(t, err, types.ErrConflict)
	assert.True(t, dec("33.33").Equal(f.project(t, project.ID).UtilizedAmount), "no second release")

	_, err = f.svc.ReviewSubmission(ctx, submissions[1], review)
	require.NoError(t, err)
	ret, err = f.svc.ReviewSubmission(ctx, submissions[2], review)
	require.NoError(t, err)
	assert.True(t, ret.ProjectCompleted)

	stored := f.project(t, project.ID)
	assert.Equal(t, models.ProjectStatusCompleted, stored.Status)
	assert.True(t, dec("99.99").Equal(stored.UtilizedAmount), stored.UtilizedAmount.String())
	assert.False(t, stored.UtilizedAmount.GreaterThan(stored.AllocatedAmount))
}

func TestReviewSubmissionReleasesOncePerCheckpoint(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	project, submissions := f.withCheckpoints(t, "100", 2)
	review := projects.ReviewInput{Status: models.SubmissionApproved, Reviewer: "engineer"}

	checkpoint, err := f.db.Metadata().GetSubmission(submissions[0], nil)
	require.NoError(t, err)
	extra := &models.CheckpointSubmission{
		CheckpointID: checkpoint.CheckpointID,
		VillageID:    f.village.ID,
		Status:       models.SubmissionPending,
	}
	require.NoError(t, f.db.Metadata().CreateSubmission(extra, nil))

	ret, err := f.svc.ReviewSubmission(ctx, submissions[0], review)
	require.NoError(t, err)
	assert.True(t, dec("50").Equal(ret.Released), ret.Released.String())

	ret, err = f.svc.ReviewSubmission(ctx, extra.ID, review)
	require.NoError(t, err)
	assert.True(t, ret.Released.IsZero(), ret.Released.String())
	assert.False(t, ret.ProjectCompleted)
	assert.True(t, dec("50").Equal(f.project(t, project.ID).UtilizedAmount))

	ret, err = f.svc.ReviewSubmission(ctx, submissions[1], review)
	require.NoError(t, err)
	assert.True(t, dec("50").Equal(ret.Released), ret.Released.String())
	assert.True(t, ret.ProjectCompleted)
	stored := f.project(t, project.ID)
	assert.True(t, dec("100").Equal(stored.UtilizedAmount), stored.UtilizedAmount.String())
	assert.Equal(t, models.ProjectStatusCompleted, stored.Status)
}

func TestReviewSubmissionRejectThenApprove(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	project, submissions := f.withCheckpoints(t, "90", 2)

	ret, err := f.svc.ReviewSubmission(ctx, submissions[0], projects.ReviewInput{
		Status:   models.SubmissionRequiresRevision,
		Reviewer: "engineer",
		Notes:    "photo is blurred",
	})
	require.NoError(t, err)
	assert.True(t, ret.Released.IsZero())
	assert.Equal(t, "photo is blurred", ret.Submission.ReviewNotes)
	assert.True(t, f.project(t, project.ID).UtilizedAmount.IsZero())

	ret, err = f.svc.ReviewSubmission(ctx, submissions[0], projects.ReviewInput{Status: models.SubmissionApproved})
	require.NoError(t, err)
	assert.True(t, dec("45").Equal(ret.Released))
	assert.Contains(t, f.trigger.reasons(), scoring.ReasonSubmissionReviewed)
	assert.Contains(t, f.trigger.reasons(), scoring.ReasonSubmissionApproved)
}

func TestReviewSubmissionErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, submissions := f.withCheckpoints(t, "100", 1)
	_, err := f.svc.ReviewSubmission(ctx, submissions[0], projects.ReviewInput{Status: models.SubmissionPending})
	require.ErrorIs(t, err, types.ErrInvalidInput)
	_, err = f.svc.ReviewSubmission(ctx, 999, projects.ReviewInput{Status: models.SubmissionRejected})
	require.ErrorIs(t, err, projects.ErrSubmissionNotFound)
}

func TestReviewSubmissionConcurrentApprovals(t *testing.T) {
	f := newFixture(t)
	project, submissions := f.withCheckpoints(t, "100", 4)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var succeeded, conflicts int
	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.ReviewSubmission(
				context.Background(),
				submissions[0],
				projects.ReviewInput{Status: models.SubmissionApproved},
			)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				succeeded++
			} else if assert.ErrorIs(t, err, projects.ErrAlreadyApproved) {
				conflicts++
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 4, conflicts)
	assert.True(t, dec("25").Equal(f.project(t, project.ID).UtilizedAmount))
}
