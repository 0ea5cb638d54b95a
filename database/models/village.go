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

import "time"

// Village is the unit that projects, votes and scores belong to
type Village struct {
	ID        uint      `gorm:"primarykey"             json:"id"`
	Name      string    `gorm:"size:255;not null"      json:"name"`
	District  string    `gorm:"size:255"               json:"district,omitempty"`
	State     string    `gorm:"size:255"               json:"state,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Village) TableName() string {
	return "villages"
}

// VillageMetrics holds the baseline facts of a village used for scoring.
// There is at most one row per village.
type VillageMetrics struct {
	ID                   uint      `gorm:"primarykey"                json:"id"`
	VillageID            uint      `gorm:"uniqueIndex;not null"      json:"village_id"`
	InfrastructureScore  float64   `gorm:"not null;default:0"        json:"infrastructure_score"`
	HealthcareFacilities int       `gorm:"not null;default:0"        json:"healthcare_facilities"`
	Schools              int       `gorm:"not null;default:0"        json:"schools"`
	LiteracyRate         float64   `gorm:"not null;default:0"        json:"literacy_rate"`
	EmploymentRate       float64   `gorm:"not null;default:0"        json:"employment_rate"`
	UpdatedAt            time.Time `json:"updated_at"`
}

func (VillageMetrics) TableName() string {
	return "village_metrics"
}
