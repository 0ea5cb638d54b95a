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
)

func (s *Store) CreateFundTransaction(
	fundTxn *models.FundTransaction,
	txn *gorm.DB,
) error {
	return storeErr(
		s.conn(txn).Create(fundTxn).Error,
		"create fund transaction for project %d",
		fundTxn.ProjectID,
	)
}

func (s *Store) GetFundTransaction(
	id uint,
	txn *gorm.DB,
) (*models.FundTransaction, error) {
	var ret models.FundTransaction
	if result := s.conn(txn).First(&ret, id); result.Error != nil {
		if isNotFound(result.Error) {
			return nil, notFound("fund transaction %d", id)
		}
		return nil, storeErr(result.Error, "get fund transaction %d", id)
	}
	return &ret, nil
}

// GetFundTransactions returns the log of a project in display order
func (s *Store) GetFundTransactions(
	projectID uint,
	txn *gorm.DB,
) ([]models.FundTransaction, error) {
	var ret []models.FundTransaction
	result := s.conn(txn).
		Where("project_id = ?", projectID).
		Order("created_at, id").
		Find(&ret)
	if result.Error != nil {
		return nil, storeErr(result.Error, "get fund transactions of project %d", projectID)
	}
	return ret, nil
}

// UpdateFundTransaction changes the amount and, when description is not nil,
// the description of a fund transaction
func (s *Store) UpdateFundTransaction(
	id uint,
	amount decimal.Decimal,
	description *string,
	txn *gorm.DB,
) error {
	fields := map[string]any{
		"amount":     amount,
		"updated_at": time.Now(),
	}
	if description != nil {
		fields["description"] = *description
	}
	result := s.conn(txn).
		Model(&models.FundTransaction{}).
		Where("id = ?", id).
		Updates(fields)
	if result.Error != nil {
		return storeErr(result.Error, "update fund transaction %d", id)
	}
	if result.RowsAffected == 0 {
		return notFound("fund transaction %d", id)
	}
	return nil
}
