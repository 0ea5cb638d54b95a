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

type ProjectStatus string

const (
	ProjectStatusPlanned    ProjectStatus = "planned"
	ProjectStatusInProgress ProjectStatus = "in_progress"
	ProjectStatusCompleted  ProjectStatus = "completed"
)

// Valid reports whether s is a known project status
func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectStatusPlanned, ProjectStatusInProgress, ProjectStatusCompleted:
		return true
	}
	return false
}

// Project is a funded development project. AllocatedAmount and
// UtilizedAmount are cached totals of the fund transaction log and are only
// written by the ledger.
type Project struct {
	ID              uint            `gorm:"primarykey"                                  json:"id"`
	VillageID       uint            `gorm:"index;not null"                              json:"village_id"`
	Name            string          `gorm:"size:255;not null"                           json:"name"`
	Description     string          `json:"description,omitempty"`
	Status          ProjectStatus   `gorm:"size:32;not null;default:planned"            json:"status"`
	AllocatedAmount decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0"       json:"allocated_amount"`
	UtilizedAmount  decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0"       json:"utilized_amount"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func (Project) TableName() string {
	return "projects"
}

// Remaining returns the allocation not yet released
func (p *Project) Remaining() decimal.Decimal {
	return p.AllocatedAmount.Sub(p.UtilizedAmount)
}
