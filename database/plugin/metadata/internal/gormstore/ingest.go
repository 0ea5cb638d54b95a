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

func (s *Store) CreatePriorityVote(vote *models.PriorityVote, txn *gorm.DB) error {
	return storeErr(
		s.conn(txn).Create(vote).Error,
		"create priority vote for village %d",
		vote.VillageID,
	)
}

func (s *Store) GetPriorityVote(id uint, txn *gorm.DB) (*models.PriorityVote, error) {
	var ret models.PriorityVote
	if result := s.conn(txn).First(&ret, id); result.Error != nil {
		if isNotFound(result.Error) {
			return nil, notFound("priority vote %d", id)
		}
		return nil, storeErr(result.Error, "get priority vote %d", id)
	}
	return &ret, nil
}

func (s *Store) GetPriorityVoteByClientID(
	clientID string,
	txn *gorm.DB,
) (*models.PriorityVote, error) {
	var ret models.PriorityVote
	result := s.conn(txn).
		Where("client_id = ?", clientID).
		First(&ret)
	if result.Error != nil {
		if isNotFound(result.Error) {
			return nil, notFound("priority vote with client id %q", clientID)
		}
		return nil, storeErr(result.Error, "get priority vote with client id %q", clientID)
	}
	return &ret, nil
}

func (s *Store) GetPriorityVoteByKey(
	villageID uint,
	infrastructureKey string,
	txn *gorm.DB,
) (*models.PriorityVote, error) {
	var ret models.PriorityVote
	result := s.conn(txn).
		Where("village_id = ? AND infrastructure_key = ?", villageID, infrastructureKey).
		First(&ret)
	if result.Error != nil {
		if isNotFound(result.Error) {
			return nil, notFound("priority vote %q in village %d", infrastructureKey, villageID)
		}
		return nil, storeErr(result.Error, "get priority vote %q in village %d", infrastructureKey, villageID)
	}
	return &ret, nil
}

// IncrementPriorityVote adds one vote in a single SQL statement
func (s *Store) IncrementPriorityVote(id uint, txn *gorm.DB) error {
	result := s.conn(txn).
		Model(&models.PriorityVote{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"total_votes": gorm.Expr("total_votes + ?", 1),
			"updated_at":  time.Now(),
		})
	if result.Error != nil {
		return storeErr(result.Error, "increment priority vote %d", id)
	}
	if result.RowsAffected == 0 {
		return notFound("priority vote %d", id)
	}
	return nil
}

func (s *Store) CreateIngestReceipt(receipt *models.IngestReceipt, txn *gorm.DB) error {
	return storeErr(
		s.conn(txn).Create(receipt).Error,
		"create %s receipt for client id %q",
		receipt.Family,
		receipt.ClientID,
	)
}

func (s *Store) GetIngestReceipt(
	family models.IngestFamily,
	clientID string,
	txn *gorm.DB,
) (*models.IngestReceipt, error) {
	var ret models.IngestReceipt
	result := s.conn(txn).
		Where("family = ? AND client_id = ?", family, clientID).
		First(&ret)
	if result.Error != nil {
		if isNotFound(result.Error) {
			return nil, notFound("%s receipt for client id %q", family, clientID)
		}
		return nil, storeErr(result.Error, "get %s receipt for client id %q", family, clientID)
	}
	return &ret, nil
}

func (s *Store) CreateSyncAttempt(attempt *models.SyncAttempt, txn *gorm.DB) error {
	return storeErr(s.conn(txn).Create(attempt).Error, "create sync attempt %s", attempt.ID)
}

func (s *Store) GetSyncAttempt(id string, txn *gorm.DB) (*models.SyncAttempt, error) {
	var ret models.SyncAttempt
	result := s.conn(txn).
		Where("id = ?", id).
		First(&ret)
	if result.Error != nil {
		if isNotFound(result.Error) {
			return nil, notFound("sync attempt %s", id)
		}
		return nil, storeErr(result.Error, "get sync attempt %s", id)
	}
	return &ret, nil
}
