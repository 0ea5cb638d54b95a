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

import "github.com/shopspring/decimal"

// AdarshScore is the derived readiness score of a village. It carries no
// timestamps, so recomputing over unchanged facts rewrites identical values.
type AdarshScore struct {
	ID                  uint    `gorm:"primarykey"          json:"id"`
	VillageID           uint    `gorm:"uniqueIndex;not null" json:"village_id"`
	InfrastructureScore float64 `gorm:"not null;default:0"  json:"infrastructure_score"`
	CompletionScore     float64 `gorm:"not null;default:0"  json:"completion_score"`
	SocialScore         float64 `gorm:"not null;default:0"  json:"social_score"`
	FeedbackScore       float64 `gorm:"not null;default:0"  json:"feedback_score"`
	FundUtilization     float64 `gorm:"not null;default:0"  json:"fund_utilization"`
	OverallScore        float64 `gorm:"not null;default:0"  json:"overall_score"`
	IsCandidate         bool    `gorm:"not null;default:false" json:"is_candidate"`
}

func (AdarshScore) TableName() string {
	return "adarsh_scores"
}

// VillageStats are the aggregated facts of a village that feed the score.
// It is not a table.
type VillageStats struct {
	TotalProjects       int64
	CompletedProjects   int64
	TotalCheckpoints    int64
	ApprovedCheckpoints int64
	ApprovedSubmissions int64
	RejectedSubmissions int64
	TotalVotes          int64
	AllocatedAmount     decimal.Decimal
	UtilizedAmount      decimal.Decimal
}
