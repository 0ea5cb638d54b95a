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
	"gorm.io/gorm"
)

func (s *Store) CreateCheckpoint(checkpoint *models.Checkpoint, txn *gorm.DB) error {
	return storeErr(
		s.conn(txn).Create(checkpoint).Error,
		"create checkpoint for project %d",
		checkpoint.ProjectID,
	)
}

func (s *Store) GetCheckpoint(id uint, txn *gorm.DB) (*models.Checkpoint, error) {
	var ret models.Checkpoint
	if result := s.conn(txn).First(&ret, id); result.Error != nil {
		if isNotFound(result.Error) {
			return nil, notFound("checkpoint %d", id)
		}
		return nil, storeErr(result.Error, "get checkpoint %d", id)
	}
	return &ret, nil
}

func (s *Store) GetCheckpoints(projectID uint, txn *gorm.DB) ([]models.Checkpoint, error) {
	var ret []models.Checkpoint
	result := s.conn(txn).
		Where("project_id = ?", projectID).
		Order("sequence, id").
		Find(&ret)
	if result.Error != nil {
		return nil, storeErr(result.Error, "get checkpoints of project %d", projectID)
	}
	return ret, nil
}

// GetCheckpointProgress returns the number of mandatory checkpoints of a
// project and how many of them have an approved submission
func (s *Store) GetCheckpointProgress(
	projectID uint,
	txn *gorm.DB,
) (int64, int64, error) {
	db := s.conn(txn)
	var mandatory, approved int64
	result := db.
		Model(&models.Checkpoint{}).
		Where("project_id = ? AND mandatory = ?", projectID, true).
		Count(&mandatory)
	if result.Error != nil {
		return 0, 0, storeErr(result.Error, "count checkpoints of project %d", projectID)
	}
	result = db.
		Model(&models.CheckpointSubmission{}).
		Joins("JOIN checkpoints ON checkpoints.id = checkpoint_submissions.checkpoint_id").
		Where("checkpoints.project_id = ? AND checkpoints.mandatory = ?", projectID, true).
		Where("checkpoint_submissions.status = ?", models.SubmissionApproved).
		Distinct("checkpoint_submissions.checkpoint_id").
		Count(&approved)
	if result.Error != nil {
		return 0, 0, storeErr(result.Error, "count approved checkpoints of project %d", projectID)
	}
	return mandatory, approved, nil
}

func (s *Store) CreateSubmission(
	submission *models.CheckpointSubmission,
	txn *gorm.DB,
) error {
	return storeErr(
		s.conn(txn).Create(submission).Error,
		"create submission for checkpoint %d",
		submission.CheckpointID,
	)
}

func (s *Store) GetSubmission(
	id uint,
	txn *gorm.DB,
) (*models.CheckpointSubmission, error) {
	var ret models.CheckpointSubmission
	if result := s.conn(txn).First(&ret, id); result.Error != nil {
		if isNotFound(result.Error) {
			return nil, notFound("submission %d", id)
		}
		return nil, storeErr(result.Error, "get submission %d", id)
	}
	return &ret, nil
}

func (s *Store) GetSubmissionByClientID(
	clientID string,
	txn *gorm.DB,
) (*models.CheckpointSubmission, error) {
	var ret models.CheckpointSubmission
	result := s.conn(txn).
		Where("client_id = ?", clientID).
		First(&ret)
	if result.Error != nil {
		if isNotFound(result.Error) {
			return nil, notFound("submission with client id %q", clientID)
		}
		return nil, storeErr(result.Error, "get submission with client id %q", clientID)
	}
	return &ret, nil
}

// SetSubmissionReview records a review decision. Approved submissions are
// final, so the update only matches rows that are not yet approved. The
// returned bool reports whether this call changed the row.
func (s *Store) SetSubmissionReview(
	id uint,
	status models.SubmissionStatus,
	reviewer string,
	notes string,
	reviewedAt time.Time,
	txn *gorm.DB,
) (bool, error) {
	result := s.conn(txn).
		Model(&models.CheckpointSubmission{}).
		Where("id = ? AND status <> ?", id, models.SubmissionApproved).
		Updates(map[string]any{
			"status":       status,
			"reviewed_by":  reviewer,
			"review_notes": notes,
			"reviewed_at":  reviewedAt,
			"updated_at":   reviewedAt,
		})
	if result.Error != nil {
		return false, storeErr(result.Error, "review submission %d", id)
	}
	return result.RowsAffected == 1, nil
}

// CountApprovedSubmissions returns how many submissions of a checkpoint are
// approved, not counting the given submission
func (s *Store) CountApprovedSubmissions(
	checkpointID uint,
	excludeID uint,
	txn *gorm.DB,
) (int64, error) {
	var ret int64
	result := s.conn(txn).
		Model(&models.CheckpointSubmission{}).
		Where("checkpoint_id = ? AND id <> ?", checkpointID, excludeID).
		Where("status = ?", models.SubmissionApproved).
		Count(&ret)
	if result.Error != nil {
		return 0, storeErr(result.Error, "count approved submissions of checkpoint %d", checkpointID)
	}
	return ret, nil
}
