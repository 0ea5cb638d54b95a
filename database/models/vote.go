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
	"strings"
	"time"
)

// PriorityVote is a community request for infrastructure. Votes for the same
// village and infrastructure are merged into one row and counted in
// TotalVotes. ClientID belongs to the submitter that created the row.
type PriorityVote struct {
	ID                     uint      `gorm:"primarykey"                                   json:"id"`
	VillageID              uint      `gorm:"uniqueIndex:idx_vote_semantic,priority:1;not null" json:"village_id"`
	RequiredInfrastructure string    `gorm:"size:255;not null"                            json:"required_infrastructure"`
	InfrastructureKey      string    `gorm:"size:255;uniqueIndex:idx_vote_semantic,priority:2;not null" json:"-"`
	Description            string    `json:"description,omitempty"`
	SubmittedBy            string    `gorm:"size:255"                                     json:"submitted_by,omitempty"`
	ClientID               *string   `gorm:"size:255;uniqueIndex"                         json:"client_id,omitempty"`
	TotalVotes             int       `gorm:"not null;default:1"                           json:"total_votes"`
	CreatedAt              time.Time `json:"created_at"`
	UpdatedAt              time.Time `json:"updated_at"`
}

func (PriorityVote) TableName() string {
	return "village_priority_votes"
}

// InfrastructureKey normalizes an infrastructure name for semantic matching
func InfrastructureKey(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
