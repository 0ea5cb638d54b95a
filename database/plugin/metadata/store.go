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

package metadata

import (
	"context"
	"fmt"
	"time"

	"github.com/gramsetu/adarsh/database/models"
	"github.com/gramsetu/adarsh/database/plugin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MetadataStore is the relational store. Every query method takes an
// optional transaction handle; nil runs the query outside a transaction.
type MetadataStore interface {
	// Database
	Close() error
	DB() *gorm.DB
	Transaction(context.Context) *gorm.DB

	// Villages
	CreateVillage(*models.Village, *gorm.DB) error
	GetVillage(uint, *gorm.DB) (*models.Village, error)
	GetVillageIDs(*gorm.DB) ([]uint, error)
	GetVillageMetrics(uint, *gorm.DB) (*models.VillageMetrics, error)
	SetVillageMetrics(*models.VillageMetrics, *gorm.DB) error
	GetVillageStats(uint, *gorm.DB) (*models.VillageStats, error)

	// Projects
	CreateProject(*models.Project, *gorm.DB) error
	GetProject(
		uint, // projectId
		bool, // forUpdate
		*gorm.DB,
	) (*models.Project, error)
	GetProjectIDs(*gorm.DB) ([]uint, error)
	UpdateProjectDetails(uint, map[string]any, *gorm.DB) error
	SetProjectTotals(
		uint, // projectId
		decimal.Decimal, // allocated
		decimal.Decimal, // utilized
		*gorm.DB,
	) error
	SetProjectStatus(uint, models.ProjectStatus, *gorm.DB) error
	DeleteProject(uint, *gorm.DB) error

	// Fund ledger
	CreateFundTransaction(*models.FundTransaction, *gorm.DB) error
	GetFundTransaction(uint, *gorm.DB) (*models.FundTransaction, error)
	GetFundTransactions(uint, *gorm.DB) ([]models.FundTransaction, error)
	UpdateFundTransaction(
		uint, // txId
		decimal.Decimal, // amount
		*string, // description
		*gorm.DB,
	) error

	// Checkpoints
	CreateCheckpoint(*models.Checkpoint, *gorm.DB) error
	GetCheckpoint(uint, *gorm.DB) (*models.Checkpoint, error)
	GetCheckpoints(uint, *gorm.DB) ([]models.Checkpoint, error)
	GetCheckpointProgress(
		uint, // projectId
		*gorm.DB,
	) (int64, int64, error) // mandatory, approved mandatory

	// Checkpoint submissions
	CreateSubmission(*models.CheckpointSubmission, *gorm.DB) error
	GetSubmission(uint, *gorm.DB) (*models.CheckpointSubmission, error)
	GetSubmissionByClientID(string, *gorm.DB) (*models.CheckpointSubmission, error)
	SetSubmissionReview(
		uint, // submissionId
		models.SubmissionStatus,
		string, // reviewer
		string, // notes
		time.Time,
		*gorm.DB,
	) (bool, error)
	CountApprovedSubmissions(
		uint, // checkpointId
		uint, // excluded submissionId
		*gorm.DB,
	) (int64, error)

	// Scores
	GetAdarshScore(uint, *gorm.DB) (*models.AdarshScore, error)
	SetAdarshScore(*models.AdarshScore, *gorm.DB) error

	// Priority votes
	CreatePriorityVote(*models.PriorityVote, *gorm.DB) error
	GetPriorityVote(uint, *gorm.DB) (*models.PriorityVote, error)
	GetPriorityVoteByClientID(string, *gorm.DB) (*models.PriorityVote, error)
	GetPriorityVoteByKey(
		uint, // villageId
		string, // infrastructure key
		*gorm.DB,
	) (*models.PriorityVote, error)
	IncrementPriorityVote(uint, *gorm.DB) error

	// Ingestion bookkeeping
	CreateIngestReceipt(*models.IngestReceipt, *gorm.DB) error
	GetIngestReceipt(models.IngestFamily, string, *gorm.DB) (*models.IngestReceipt, error)
	CreateSyncAttempt(*models.SyncAttempt, *gorm.DB) error
	GetSyncAttempt(string, *gorm.DB) (*models.SyncAttempt, error)
}

// New returns the started metadata plugin selected by name
func New(pluginName string) (MetadataStore, error) {
	p, err := plugin.StartPlugin(plugin.PluginTypeMetadata, pluginName)
	if err != nil {
		return nil, err
	}
	metadataStore, ok := p.(MetadataStore)
	if !ok {
		_ = p.Stop()
		return nil, fmt.Errorf(
			"plugin '%s' does not implement MetadataStore interface",
			pluginName,
		)
	}
	return metadataStore, nil
}
