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

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type FundTransactionType string

const (
	FundTransactionAllocation FundTransactionType = "allocation"
	FundTransactionRelease    FundTransactionType = "release"
)

// FundTransaction is one entry of a project's fund log. Amount is always
// positive; Type gives the direction.
type FundTransaction struct {
	ID          uint                `gorm:"primarykey"                                      json:"id"`
	ProjectID   uint                `gorm:"index:idx_fund_txn_project_created,priority:1;not null" json:"project_id"`
	Type        FundTransactionType `gorm:"size:16;not null"                                json:"type"`
	Amount      decimal.Decimal     `gorm:"type:decimal(20,2);not null"                     json:"amount"`
	Description string              `json:"description,omitempty"`
	Approver    string              `gorm:"size:255"                                        json:"approver,omitempty"`
	CreatedAt   time.Time           `gorm:"index:idx_fund_txn_project_created,priority:2"   json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

func (FundTransaction) TableName() string {
	return "fund_transactions"
}
