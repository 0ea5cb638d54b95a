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

	"gorm.io/datatypes"
)

type IngestFamily string

const (
	IngestFamilySubmission IngestFamily = "submission"
	IngestFamilyVote       IngestFamily = "vote"
)

type IngestOutcome string

const (
	IngestOutcomeInserted IngestOutcome = "inserted"
	IngestOutcomeMerged   IngestOutcome = "merged"
)

// IngestReceipt records which row a client-generated id resolved to. It is
// written in the same transaction as the insert or merge it describes.
type IngestReceipt struct {
	Family    IngestFamily  `gorm:"size:32;primaryKey"   json:"family"`
	ClientID  string        `gorm:"size:255;primaryKey"  json:"client_id"`
	EntityID  uint          `gorm:"not null"             json:"entity_id"`
	Outcome   IngestOutcome `gorm:"size:16;not null"     json:"outcome"`
	CreatedAt time.Time     `json:"created_at"`
}

func (IngestReceipt) TableName() string {
	return "ingest_receipts"
}

// SyncAttempt is the audit record of one batch sync call
type SyncAttempt struct {
	ID                 string                      `gorm:"size:36;primaryKey" json:"id"`
	Actor              string                      `gorm:"size:255;index"     json:"actor"`
	Family             IngestFamily                `gorm:"size:32;not null"   json:"family"`
	Received           int                         `gorm:"not null"           json:"received"`
	Synced             int                         `gorm:"not null"           json:"synced"`
	Deduplicated       int                         `gorm:"not null"           json:"deduplicated"`
	Failed             int                         `gorm:"not null"           json:"failed"`
	ClientIDs          datatypes.JSONSlice[string] `json:"client_ids"`
	ProcessedClientIDs datatypes.JSONSlice[string] `json:"processed_client_ids"`
	CreatedAt          time.Time                   `gorm:"index"              json:"created_at"`
}

func (SyncAttempt) TableName() string {
	return "sync_attempts"
}
