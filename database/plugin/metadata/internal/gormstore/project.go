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

func (s *Store) CreateProject(project *models.Project, txn *gorm.DB) error {
	return storeErr(s.conn(txn).Create(project).Error, "create project")
}

// GetProject loads a project. With forUpdate the row stays locked until the
// transaction ends. SQLite ignores the locking clause and relies on its
// single writer connection instead.
func (s *Store) GetProject(
	id uint,
	forUpdate bool,
	txn *gorm.DB,
) (*models.Project, error) {
	var ret models.Project
	db := s.conn(txn)
	if forUpdate {
		db = db.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate})
	}
	if result := db.First(&ret, id); result.Error != nil {
		if isNotFound(result.Error) {
			return nil, notFound("project %d", id)
		}
		return nil, storeErr(result.Error, "get project %d", id)
	}
	return &ret, nil
}

func (s *Store) GetProjectIDs(txn *gorm.DB) ([]uint, error) {
	var ret []uint
	result := s.conn(txn).
		Model(&models.Project{}).
		Order("id").
		Pluck("id", &ret)
	if result.Error != nil {
		return nil, storeErr(result.Error, "list projects")
	}
	return ret, nil
}

// UpdateProjectDetails applies descriptive field changes. Amount columns are
// rejected so that totals only move through the ledger.
func (s *Store) UpdateProjectDetails(
	id uint,
	fields map[string]any,
	txn *gorm.DB,
) error {
	delete(fields, "allocated_amount")
	delete(fields, "utilized_amount")
	if len(fields) == 0 {
		return nil
	}
	fields["updated_at"] = time.Now()
	result := s.conn(txn).
		Model(&models.Project{}).
		Where("id = ?", id).
		Updates(fields)
	if result.Error != nil {
		return storeErr(result.Error, "update project %d", id)
	}
	if result.RowsAffected == 0 {
		return notFound("project %d", id)
	}
	return nil
}

func (s *Store) SetProjectTotals(
	id uint,
	allocated decimal.Decimal,
	utilized decimal.Decimal,
	txn *gorm.DB,
) error {
	result := s.conn(txn).
		Model(&models.Project{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"allocated_amount": allocated,
			"utilized_amount":  utilized,
			"updated_at":       time.Now(),
		})
	if result.Error != nil {
		return storeErr(result.Error, "set totals for project %d", id)
	}
	if result.RowsAffected == 0 {
		return notFound("project %d", id)
	}
	return nil
}

func (s *Store) SetProjectStatus(
	id uint,
	status models.ProjectStatus,
	txn *gorm.DB,
) error {
	result := s.conn(txn).
		Model(&models.Project{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     status,
			"updated_at": time.Now(),
		})
	return storeErr(result.Error, "set status for project %d", id)
}

// DeleteProject removes a project with its fund transactions, checkpoints,
// submissions and the ingest receipts that point at those submissions
func (s *Store) DeleteProject(id uint, txn *gorm.DB) error {
	db := s.conn(txn)
	var checkpointIDs []uint
	result := db.
		Model(&models.Checkpoint{}).
		Where("project_id = ?", id).
		Pluck("id", &checkpointIDs)
	if result.Error != nil {
		return storeErr(result.Error, "list checkpoints of project %d", id)
	}
	if len(checkpointIDs) > 0 {
		var submissionIDs []uint
		result = db.
			Model(&models.CheckpointSubmission{}).
			Where("checkpoint_id IN ?", checkpointIDs).
			Pluck("id", &submissionIDs)
		if result.Error != nil {
			return storeErr(result.Error, "list submissions of project %d", id)
		}
		if len(submissionIDs) > 0 {
			result = db.
				Where("family = ? AND entity_id IN ?", models.IngestFamilySubmission, submissionIDs).
				Delete(&models.IngestReceipt{})
			if result.Error != nil {
				return storeErr(result.Error, "delete receipts of project %d", id)
			}
			result = db.
				Where("id IN ?", submissionIDs).
				Delete(&models.CheckpointSubmission{})
			if result.Error != nil {
				return storeErr(result.Error, "delete submissions of project %d", id)
			}
		}
		result = db.
			Where("id IN ?", checkpointIDs).
			Delete(&models.Checkpoint{})
		if result.Error != nil {
			return storeErr(result.Error, "delete checkpoints of project %d", id)
		}
	}
	result = db.
		Where("project_id = ?", id).
		Delete(&models.FundTransaction{})
	if result.Error != nil {
		return storeErr(result.Error, "delete fund transactions of project %d", id)
	}
	result = db.Delete(&models.Project{}, id)
	if result.Error != nil {
		return storeErr(result.Error, "delete project %d", id)
	}
	if result.RowsAffected == 0 {
		return notFound("project %d", id)
	}
	return nil
}
