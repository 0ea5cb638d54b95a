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

type SubmissionStatus string

const (
	SubmissionPending          SubmissionStatus = "pending"
	SubmissionApproved         SubmissionStatus = "approved"
	SubmissionRejected         SubmissionStatus = "rejected"
	SubmissionRequiresRevision SubmissionStatus = "requires_revision"
)

// Reviewable reports whether s is a status a reviewer may assign
func (s SubmissionStatus) Reviewable() bool {
	switch s {
	case SubmissionApproved, SubmissionRejected, SubmissionRequiresRevision:
		return true
	}
	return false
}

// Checkpoint is a milestone of a project that needs evidence
type Checkpoint struct {
	ID        uint   `gorm:"primarykey"         json:"id"`
	ProjectID uint   `gorm:"index;not null"     json:"project_id"`
	Name      string `gorm:"size:255;not null"  json:"name"`
	Sequence  int    `gorm:"not null;default:0" json:"sequence"`
	Mandatory bool   `gorm:"not null"           json:"mandatory"`
}

func (Checkpoint) TableName() string {
	return "checkpoints"
}

// CheckpointSubmission is field evidence for a checkpoint. VillageID is
// copied from the owning project at insert time.
type CheckpointSubmission struct {
	ID           uint             `gorm:"primarykey"                json:"id"`
	CheckpointID uint             `gorm:"index;not null"            json:"checkpoint_id"`
	VillageID    uint             `gorm:"index;not null"            json:"village_id"`
	SubmittedBy  string           `gorm:"size:255"                  json:"submitted_by,omitempty"`
	Notes        string           `json:"notes,omitempty"`
	PhotoURL     string           `gorm:"size:1024"                 json:"photo_url,omitempty"`
	Latitude     *float64         `json:"latitude,omitempty"`
	Longitude    *float64         `json:"longitude,omitempty"`
	CapturedAt   *time.Time       `json:"captured_at,omitempty"`
	Status       SubmissionStatus `gorm:"size:32;index;not null;default:pending" json:"status"`
	ClientID     *string          `gorm:"size:255;uniqueIndex"      json:"client_id,omitempty"`
	ReviewedBy   string           `gorm:"size:255"                  json:"reviewed_by,omitempty"`
	ReviewNotes  string           `json:"review_notes,omitempty"`
	ReviewedAt   *time.Time       `json:"reviewed_at,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

func (CheckpointSubmission) TableName() string {
	return "checkpoint_submissions"
}
