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

package gormstore

import (
	"time"

	"github.com/gramsetu/adarsh/database/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (s *Store) CreateVillage(village *models.Village, txn *gorm.DB) error {
	return storeErr(s.conn(txn).Create(village).Error, "create village")
}

func (s *Store) GetVillage(id uint, txn *gorm.DB) (*models.Village, error) {
	var ret models.Village
	if result := s.conn(txn).First(&ret, id); result.Error != nil {
		if isNotFound(result.Error) {
			return nil, notFound("village %d", id)
		}
		return nil, storeErr(result.Error, "get village %d", id)
	}
	return &ret, nil
}

func (s *Store) GetVillageIDs(txn *gorm.DB) ([]uint, error) {
	var ret []uint
	result := s.conn(txn).
		Model(&models.Village{}).
		Order("id").
		Pluck("id", &ret)
	if result.Error != nil {
		return nil, storeErr(result.Error, "list villages")
	}
	return ret, nil
}

func (s *Store) GetVillageMetrics(
	villageID uint,
	txn *gorm.DB,
) (*models.VillageMetrics, error) {
	var ret models.VillageMetrics
	result := s.conn(txn).
		Where("village_id = ?", villageID).
		First(&ret)
	if result.Error != nil {
		if isNotFound(result.Error) {
			return nil, notFound("metrics for village %d", villageID)
		}
		return nil, storeErr(result.Error, "get metrics for village %d", villageID)
	}
	return &ret, nil
}

// SetVillageMetrics inserts or replaces the baseline row of a village
func (s *Store) SetVillageMetrics(
	metrics *models.VillageMetrics,
	txn *gorm.DB,
) error {
	metrics.UpdatedAt = time.Now()
	result := s.conn(txn).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "village_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"infrastructure_score",
			"healthcare_facilities",
			"schools",
			"literacy_rate",
			"employment_rate",
			"updated_at",
		}),
	}).Create(metrics)
	return storeErr(result.Error, "set metrics for village %d", metrics.VillageID)
}

// GetVillageStats aggregates the project, checkpoint, vote and fund facts of
// a village
func (s *Store) GetVillageStats(
	villageID uint,
	txn *gorm.DB,
) (*models.VillageStats, error) {
	db := s.conn(txn)
	ret := &models.VillageStats{
		AllocatedAmount: decimal.Zero,
		UtilizedAmount:  decimal.Zero,
	}

	// Amounts are summed here rather than in SQL so that every dialect
	// produces exact decimals
	var projects []models.Project
	result := db.
		Select("id", "status", "allocated_amount", "utilized_amount").
		Where("village_id = ?", villageID).
		Find(&projects)
	if result.Error != nil {
		return nil, storeErr(result.Error, "get projects for village %d", villageID)
	}
	for _, p := range projects {
		ret.TotalProjects++
		if p.Status == models.ProjectStatusCompleted {
			ret.CompletedProjects++
		}
		ret.AllocatedAmount = ret.AllocatedAmount.Add(p.AllocatedAmount)
		ret.UtilizedAmount = ret.UtilizedAmount.Add(p.UtilizedAmount)
	}

	result = db.
		Model(&models.Checkpoint{}).
		Joins("JOIN projects ON projects.id = checkpoints.project_id").
		Where("projects.village_id = ?", villageID).
		Count(&ret.TotalCheckpoints)
	if result.Error != nil {
		return nil, storeErr(result.Error, "count checkpoints for village %d", villageID)
	}

	result = db.
		Model(&models.CheckpointSubmission{}).
		Joins("JOIN checkpoints ON checkpoints.id = checkpoint_submissions.checkpoint_id").
		Joins("JOIN projects ON projects.id = checkpoints.project_id").
		Where("projects.village_id = ?", villageID).
		Where("checkpoint_submissions.status = ?", models.SubmissionApproved).
		Distinct("checkpoint_submissions.checkpoint_id").
		Count(&ret.ApprovedCheckpoints)
	if result.Error != nil {
		return nil, storeErr(result.Error, "count approved checkpoints for village %d", villageID)
	}

	var reviewed []struct {
		Status models.SubmissionStatus
		Count  int64
	}
	result = db.
		Model(&models.CheckpointSubmission{}).
		Select("status, COUNT(*) AS count").
		Where("village_id = ?", villageID).
		Where("status IN ?", []models.SubmissionStatus{models.SubmissionApproved, models.SubmissionRejected}).
		Group("status").
		Scan(&reviewed)
	if result.Error != nil {
		return nil, storeErr(result.Error, "count reviewed submissions for village %d", villageID)
	}
	for _, row := range reviewed {
		switch row.Status {
		case models.SubmissionApproved:
			ret.ApprovedSubmissions = row.Count
		case models.SubmissionRejected:
			ret.RejectedSubmissions = row.Count
		}
	}

	result = db.
		Model(&models.PriorityVote{}).
		Where("village_id = ?", villageID).
		Select("COALESCE(SUM(total_votes), 0)").
		Scan(&ret.TotalVotes)
	if result.Error != nil {
		return nil, storeErr(result.Error, "sum votes for village %d", villageID)
	}
	return ret, nil
}
