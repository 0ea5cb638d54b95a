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

package event

import "github.com/shopspring/decimal"

const (
	// ScoreRecomputeEventType asks for the Adarsh score of a village to be
	// recomputed
	ScoreRecomputeEventType = EventType("score.recompute")
	// ScoreUpdatedEventType is published after a score row was written
	ScoreUpdatedEventType = EventType("score.updated")
	// FundTransactionEventType is published after a ledger entry commits
	FundTransactionEventType = EventType("ledger.transaction_recorded")
	// SyncCompletedEventType is published after an offline batch was processed
	SyncCompletedEventType = EventType("ingest.sync_completed")
)

type ScoreRecomputeEvent struct {
	VillageID uint
	Reason    string
}

type ScoreUpdatedEvent struct {
	VillageID    uint
	OverallScore float64
	IsCandidate  bool
}

type FundTransactionEvent struct {
	ProjectID     uint
	VillageID     uint
	TransactionID uint
	Type          string
	Amount        decimal.Decimal
}

type SyncCompletedEvent struct {
	AttemptID    string
	Family       string
	Received     int
	Synced       int
	Deduplicated int
	Failed       int
}
