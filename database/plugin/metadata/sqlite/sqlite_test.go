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

package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/gramsetu/adarsh/database/models"
	"github.com/gramsetu/adarsh/database/plugin/metadata/sqlite"
	"github.com/gramsetu/adarsh/database/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *sqlite.MetadataStoreSqlite {
	t.Helper()
	store, err := sqlite.New("", nil, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func seedProject(t *testing.T, store *sqlite.MetadataStoreSqlite) (*models.Village, *models.Project) {
	t.Helper()
	village := &models.Village{Name: "Rampur"}
	require.NoError(t, store.CreateVillage(village, nil))
	project := &models.Project{
		VillageID:       village.ID,
		Name:            "Water tank",
		Status:          models.ProjectStatusInProgress,
		AllocatedAmount: decimal.RequireFromString("1000.00"),
		UtilizedAmount:  decimal.RequireFromString("250.50"),
	}
	require.NoError(t, store.CreateProject(project, nil))
	return village, project
}

func TestInMemoryStoresAreIsolated(t *testing.T) {
	a := newTestStore(t)
	b := newTestStore(t)
	require.NoError(t, a.CreateVillage(&models.Village{Name: "A"}, nil))
	ids, err := b.GetVillageIDs(nil)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestOnDiskStoreReopens(t *testing.T) {
	dataDir := filepath.Join(t.TempDir(), "nested")
	store, err := sqlite.NewWithOptions(
		sqlite.WithDataDir(dataDir),
		sqlite.WithBusyTimeout(250*time.Millisecond),
	)
	require.NoError(t, err)
	require.NoError(t, store.Start())
	require.NoError(t, store.CreateVillage(&models.Village{Name: "Rampur"}, nil))
	require.NoError(t, store.Close())
	assert.FileExists(t, filepath.Join(dataDir, "metadata.sqlite"))

	reopened, err := sqlite.New(dataDir, nil, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })
	ids, err := reopened.GetVillageIDs(nil)
	require.NoError(t, err)
	assert.Len(t, ids, 1)
}

func TestGetProjectNotFound(t *testing.T) {
	store := newTestStore(t)
	_, err := store.GetProject(42, true, nil)
	require.ErrorIs(t, err, types.ErrNotFound)
}

func TestProjectTotalsRoundTrip(t *testing.T) {
	store := newTestStore(t)
	_, project := seedProject(t, store)

	txn := store.Transaction(context.Background())
	locked, err := store.GetProject(project.ID, true, txn)
	require.NoError(t, err)
	assert.True(t, locked.UtilizedAmount.Equal(decimal.RequireFromString("250.50")))
	require.NoError(t, store.SetProjectTotals(
		project.ID,
		decimal.RequireFromString("1500.25"),
		decimal.RequireFromString("300"),
		txn,
	))
	require.NoError(t, txn.Commit().Error)

	got, err := store.GetProject(project.ID, false, nil)
	require.NoError(t, err)
	assert.True(t, got.AllocatedAmount.Equal(decimal.RequireFromString("1500.25")))
	assert.True(t, got.UtilizedAmount.Equal(decimal.RequireFromString("300")))
}

func TestUpdateProjectDetailsIgnoresAmounts(t *testing.T) {
	store := newTestStore(t)
	_, project := seedProject(t, store)
	err := store.UpdateProjectDetails(project.ID, map[string]any{
		"name":             "Water tank phase 2",
		"allocated_amount": decimal.NewFromInt(1),
	}, nil)
	require.NoError(t, err)
	got, err := store.GetProject(project.ID, false, nil)
	require.NoError(t, err)
	assert.Equal(t, "Water tank phase 2", got.Name)
	assert.True(t, got.AllocatedAmount.Equal(decimal.RequireFromString("1000")))
}

func TestFundTransactionOrder(t *testing.T) {
	store := newTestStore(t)
	_, project := seedProject(t, store)
	base := time.Now().Add(-time.Hour)
	for i, amount := range []string{"10", "20", "30"} {
		require.NoError(t, store.CreateFundTransaction(&models.FundTransaction{
			ProjectID: project.ID,
			Type:      models.FundTransactionAllocation,
			Amount:    decimal.RequireFromString(amount),
			CreatedAt: base.Add(time.Duration(2-i) * time.Minute),
		}, nil))
	}
	txns, err := store.GetFundTransactions(project.ID, nil)
	require.NoError(t, err)
	require.Len(t, txns, 3)
	assert.Equal(t, "30", txns[0].Amount.String())
	assert.Equal(t, "10", txns[2].Amount.String())
}

func TestVillageStats(t *testing.T) {
	store := newTestStore(t)
	village, project := seedProject(t, store)
	completed := &models.Project{
		VillageID:       village.ID,
		Name:            "School roof",
		Status:          models.ProjectStatusCompleted,
		AllocatedAmount: decimal.RequireFromString("500"),
		UtilizedAmount:  decimal.RequireFromString("500"),
	}
	require.NoError(t, store.CreateProject(completed, nil))

	cp1 := &models.Checkpoint{ProjectID: project.ID, Name: "Foundation", Mandatory: true}
	cp2 := &models.Checkpoint{ProjectID: project.ID, Name: "Walls", Mandatory: true}
	require.NoError(t, store.CreateCheckpoint(cp1, nil))
	require.NoError(t, store.CreateCheckpoint(cp2, nil))
	// Two approved submissions for the same checkpoint count once
	for range 2 {
		require.NoError(t, store.CreateSubmission(&models.CheckpointSubmission{
			CheckpointID: cp1.ID,
			VillageID:    village.ID,
			Status:       models.SubmissionApproved,
		}, nil))
	}
	require.NoError(t, store.CreateSubmission(&models.CheckpointSubmission{
		CheckpointID: cp2.ID,
		VillageID:    village.ID,
		Status:       models.SubmissionRejected,
	}, nil))
	require.NoError(t, store.CreatePriorityVote(&models.PriorityVote{
		VillageID:              village.ID,
		RequiredInfrastructure: "Road",
		InfrastructureKey:      "road",
		TotalVotes:             3,
	}, nil))

	stats, err := store.GetVillageStats(village.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalProjects)
	assert.Equal(t, int64(1), stats.CompletedProjects)
	assert.Equal(t, int64(2), stats.TotalCheckpoints)
	assert.Equal(t, int64(1), stats.ApprovedCheckpoints)
	assert.Equal(t, int64(2), stats.ApprovedSubmissions)
	assert.Equal(t, int64(1), stats.RejectedSubmissions)
	assert.Equal(t, int64(3), stats.TotalVotes)
	assert.True(t, stats.AllocatedAmount.Equal(decimal.RequireFromString("1500")))
	assert.True(t, stats.UtilizedAmount.Equal(decimal.RequireFromString("750.50")))

	mandatory, approved, err := store.GetCheckpointProgress(project.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), mandatory)
	assert.Equal(t, int64(1), approved)

	count, err := store.CountApprovedSubmissions(cp1.ID, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
	first, err := store.GetSubmission(1, nil)
	require.NoError(t, err)
	require.Equal(t, cp1.ID, first.CheckpointID)
	count, err = store.CountApprovedSubmissions(cp1.ID, first.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	count, err = store.CountApprovedSubmissions(cp2.ID, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestSetAdarshScoreUpserts(t *testing.T) {
	store := newTestStore(t)
	village, _ := seedProject(t, store)
	score := &models.AdarshScore{VillageID: village.ID, OverallScore: 40}
	require.NoError(t, store.SetAdarshScore(score, nil))
	require.NoError(t, store.SetAdarshScore(&models.AdarshScore{
		VillageID:    village.ID,
		OverallScore: 90,
		IsCandidate:  true,
	}, nil))
	var count int64
	require.NoError(t, store.DB().Model(&models.AdarshScore{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
	got, err := store.GetAdarshScore(village.ID, nil)
	require.NoError(t, err)
	assert.InDelta(t, 90.0, got.OverallScore, 0.0001)
	assert.True(t, got.IsCandidate)
}

func TestSubmissionReviewIsConditional(t *testing.T) {
	store := newTestStore(t)
	village, project := seedProject(t, store)
	cp := &models.Checkpoint{ProjectID: project.ID, Name: "Foundation", Mandatory: true}
	require.NoError(t, store.CreateCheckpoint(cp, nil))
	sub := &models.CheckpointSubmission{
		CheckpointID: cp.ID,
		VillageID:    village.ID,
		Status:       models.SubmissionPending,
	}
	require.NoError(t, store.CreateSubmission(sub, nil))

	changed, err := store.SetSubmissionReview(sub.ID, models.SubmissionApproved, "officer", "", time.Now(), nil)
	require.NoError(t, err)
	assert.True(t, changed)
	changed, err = store.SetSubmissionReview(sub.ID, models.SubmissionRejected, "officer", "", time.Now(), nil)
	require.NoError(t, err)
	assert.False(t, changed)
	got, err := store.GetSubmission(sub.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, models.SubmissionApproved, got.Status)
}

func TestDuplicateKeysAreConflicts(t *testing.T) {
	store := newTestStore(t)
	village, _ := seedProject(t, store)
	clientID := "device-1:vote-1"
	require.NoError(t, store.CreatePriorityVote(&models.PriorityVote{
		VillageID:              village.ID,
		RequiredInfrastructure: "Road",
		InfrastructureKey:      "road",
		ClientID:               &clientID,
		TotalVotes:             1,
	}, nil))
	err := store.CreatePriorityVote(&models.PriorityVote{
		VillageID:              village.ID,
		RequiredInfrastructure: "ROAD",
		InfrastructureKey:      "road",
		TotalVotes:             1,
	}, nil)
	require.ErrorIs(t, err, types.ErrConflict)

	require.NoError(t, store.CreateIngestReceipt(&models.IngestReceipt{
		Family:   models.IngestFamilyVote,
		ClientID: clientID,
		EntityID: 1,
		Outcome:  models.IngestOutcomeInserted,
	}, nil))
	err = store.CreateIngestReceipt(&models.IngestReceipt{
		Family:   models.IngestFamilyVote,
		ClientID: clientID,
		EntityID: 1,
		Outcome:  models.IngestOutcomeMerged,
	}, nil)
	require.ErrorIs(t, err, types.ErrConflict)
}

func TestIncrementPriorityVote(t *testing.T) {
	store := newTestStore(t)
	village, _ := seedProject(t, store)
	vote := &models.PriorityVote{
		VillageID:              village.ID,
		RequiredInfrastructure: "Road",
		InfrastructureKey:      "road",
		TotalVotes:             1,
	}
	require.NoError(t, store.CreatePriorityVote(vote, nil))
	require.NoError(t, store.IncrementPriorityVote(vote.ID, nil))
	got, err := store.GetPriorityVoteByKey(village.ID, "road", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, got.TotalVotes)
	require.ErrorIs(t, store.IncrementPriorityVote(9999, nil), types.ErrNotFound)
}

func TestDeleteProjectCascades(t *testing.T) {
	store := newTestStore(t)
	village, project := seedProject(t, store)
	cp := &models.Checkpoint{ProjectID: project.ID, Name: "Foundation", Mandatory: true}
	require.NoError(t, store.CreateCheckpoint(cp, nil))
	clientID := "device-1:sub-1"
	sub := &models.CheckpointSubmission{
		CheckpointID: cp.ID,
		VillageID:    village.ID,
		Status:       models.SubmissionPending,
		ClientID:     &clientID,
	}
	require.NoError(t, store.CreateSubmission(sub, nil))
	require.NoError(t, store.CreateIngestReceipt(&models.IngestReceipt{
		Family:   models.IngestFamilySubmission,
		ClientID: clientID,
		EntityID: sub.ID,
		Outcome:  models.IngestOutcomeInserted,
	}, nil))
	require.NoError(t, store.CreateFundTransaction(&models.FundTransaction{
		ProjectID: project.ID,
		Type:      models.FundTransactionAllocation,
		Amount:    decimal.NewFromInt(1000),
	}, nil))

	txn := store.Transaction(context.Background())
	require.NoError(t, store.DeleteProject(project.ID, txn))
	require.NoError(t, txn.Commit().Error)

	_, err := store.GetProject(project.ID, false, nil)
	require.ErrorIs(t, err, types.ErrNotFound)
	_, err = store.GetSubmission(sub.ID, nil)
	require.ErrorIs(t, err, types.ErrNotFound)
	_, err = store.GetIngestReceipt(models.IngestFamilySubmission, clientID, nil)
	require.ErrorIs(t, err, types.ErrNotFound)
	txns, err := store.GetFundTransactions(project.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, txns)
	require.ErrorIs(t, store.DeleteProject(project.ID, nil), types.ErrNotFound)
}
