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

package api

import (
	"context"

	"github.com/gramsetu/adarsh"
	"github.com/gramsetu/adarsh/database/plugin/blob"
	"github.com/gramsetu/adarsh/ingest"
	"github.com/gramsetu/adarsh/projects"
)

// Core is the set of operations the HTTP server exposes. It decouples the
// handlers from the concrete adarsh.Core.
type Core interface {
	CreateVillage(context.Context, projects.VillageInput) adarsh.Result
	ListVillages(context.Context) adarsh.Result
	UpdateVillageMetrics(context.Context, uint, projects.MetricsInput) adarsh.Result
	GetScore(context.Context, uint) adarsh.Result
	RecomputeScore(context.Context, uint) adarsh.Result

	CreateProject(context.Context, projects.ProjectInput) adarsh.Result
	GetProject(context.Context, uint) adarsh.Result
	UpdateProject(context.Context, uint, projects.ProjectUpdate) adarsh.Result
	DeleteProject(context.Context, uint) adarsh.Result
	AddCheckpoint(context.Context, projects.CheckpointInput) adarsh.Result
	ReviewSubmission(context.Context, uint, projects.ReviewInput) adarsh.Result

	AllocateFunds(context.Context, uint, adarsh.FundRequest) adarsh.Result
	ReleaseFunds(context.Context, uint, adarsh.FundRequest) adarsh.Result
	EditFundTransaction(context.Context, uint, adarsh.FundEdit) adarsh.Result
	GetFundTransactions(context.Context, uint) adarsh.Result
	VerifyLedger(context.Context) adarsh.Result

	SubmitEvidence(context.Context, ingest.SubmissionInput) adarsh.Result
	SyncSubmissions(context.Context, string, []ingest.SubmissionInput) adarsh.Result
	SubmitVote(context.Context, ingest.VoteInput) adarsh.Result
	SyncVotes(context.Context, string, []ingest.VoteInput) adarsh.Result

	StoreMedia(context.Context, string, string, []byte) adarsh.Result
	GetMedia(context.Context, string) (*blob.Media, error)
}
