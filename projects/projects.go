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

// Package projects manages villages, their projects and checkpoints, and the
// review of checkpoint evidence.
package projects

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/gramsetu/adarsh/database"
	"github.com/gramsetu/adarsh/database/models"
	"github.com/gramsetu/adarsh/database/types"
	"github.com/gramsetu/adarsh/ledger"
	"github.com/gramsetu/adarsh/scoring"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

type ProjectsConfig struct {
	Database     *database.Database
	Logger       *slog.Logger
	PromRegistry prometheus.Registerer
	Ledger       *ledger.Ledger
	Trigger      scoring.Trigger
}

type Service struct {
	db      *database.Database
	logger  *slog.Logger
	ledger  *ledger.Ledger
	trigger scoring.Trigger
	metrics *projectsMetrics
}

func New(cfg ProjectsConfig) *Service {
	s := &Service{
		db:      cfg.Database,
		ledger:  cfg.Ledger,
		trigger: cfg.Trigger,
		metrics: newProjectsMetrics(cfg.PromRegistry),
	}
	if cfg.Logger == nil {
		s.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	} else {
		s.logger = cfg.Logger
	}
	s.logger = s.logger.With("component", "projects")
	if s.trigger == nil {
		s.trigger = scoring.NopTrigger
	}
	if s.ledger == nil {
		s.ledger = ledger.New(ledger.LedgerConfig{
			Database: cfg.Database,
			Logger:   cfg.Logger,
			Trigger:  s.trigger,
		})
	}
	return s
}

func (s *Service) CreateVillage(ctx context.Context, input VillageInput) (*models.Village, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	village := &models.Village{
		Name:     input.Name,
		District: input.District,
		State:    input.State,
	}
	err := s.db.Transaction(ctx, true).Do(func(txn *database.Txn) error {
		return s.db.Metadata().CreateVillage(village, txn.Metadata())
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("created village", "village_id", village.ID, "name", village.Name)
	return village, nil
}

// UpdateVillageMetrics replaces the baseline of a village
func (s *Service) UpdateVillageMetrics(
	ctx context.Context,
	villageID uint,
	input MetricsInput,
) (*models.VillageMetrics, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	store := s.db.Metadata()
	var ret *models.VillageMetrics
	err := s.db.Transaction(ctx, true).Do(func(txn *database.Txn) error {
		if _, err := s.village(txn, villageID); err != nil {
			return err
		}
		metrics := &models.VillageMetrics{
			VillageID:            villageID,
			InfrastructureScore:  input.InfrastructureScore,
			HealthcareFacilities: input.HealthcareFacilities,
			Schools:              input.Schools,
			LiteracyRate:         input.LiteracyRate,
			EmploymentRate:       input.EmploymentRate,
		}
		if err := store.SetVillageMetrics(metrics, txn.Metadata()); err != nil {
			return err
		}
		var err error
		ret, err = store.GetVillageMetrics(villageID, txn.Metadata())
		if err != nil {
			return err
		}
		s.recomputeOnCommit(ctx, txn, villageID, scoring.ReasonMetricsUpdated)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ret, nil
}

// CreateProject stores a project and its initial allocation together
func (s *Service) CreateProject(ctx context.Context, input ProjectInput) (*models.Project, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	if err := ledger.ValidateAmount(input.InitialAllocation); err != nil {
		return nil, err
	}
	store := s.db.Metadata()
	status := input.Status
	if status == "" {
		status = models.ProjectStatusPlanned
	}
	project := &models.Project{
		VillageID:       input.VillageID,
		Name:            input.Name,
		Description:     input.Description,
		Status:          status,
		AllocatedAmount: decimal.Zero,
		UtilizedAmount:  decimal.Zero,
	}
	err := s.db.Transaction(ctx, true).Do(func(txn *database.Txn) error {
		if _, err := s.village(txn, input.VillageID); err != nil {
			return err
		}
		if err := store.CreateProject(project, txn.Metadata()); err != nil {
			return err
		}
		s.recomputeOnCommit(ctx, txn, project.VillageID, scoring.ReasonProjectCreated)
		_, err := s.ledger.AllocateTxn(
			ctx,
			txn,
			project.ID,
			input.InitialAllocation,
			ledger.Meta{
				Description: "Initial allocation",
				Approver:    input.Approver,
			},
		)
		return err
	})
	if err != nil {
		return nil, err
	}
	project.AllocatedAmount = input.InitialAllocation
	s.metrics.projects.WithLabelValues("created").Inc()
	s.logger.Info(
		"created project",
		"project_id", project.ID,
		"village_id", project.VillageID,
		"allocated", project.AllocatedAmount.String(),
	)
	return project, nil
}

func (s *Service) GetProject(ctx context.Context, id uint) (*models.Project, error) {
	var ret *models.Project
	err := s.db.Transaction(ctx, false).Do(func(txn *database.Txn) error {
		var err error
		ret, err = s.project(txn, id, false)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ret, nil
}

// UpdateProject changes the descriptive fields of a project
func (s *Service) UpdateProject(
	ctx context.Context,
	id uint,
	update ProjectUpdate,
) (*models.Project, error) {
	fields, err := update.fields()
	if err != nil {
		return nil, err
	}
	store := s.db.Metadata()
	var ret *models.Project
	err = s.db.Transaction(ctx, true).Do(func(txn *database.Txn) error {
		if _, err := s.project(txn, id, true); err != nil {
			return err
		}
		if err := store.UpdateProjectDetails(id, fields, txn.Metadata()); err != nil {
			return err
		}
		var err error
		ret, err = s.project(txn, id, false)
		if err != nil {
			return err
		}
		s.recomputeOnCommit(ctx, txn, ret.VillageID, scoring.ReasonProjectUpdated)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.projects.WithLabelValues("updated").Inc()
	return ret, nil
}

// DeleteProject removes a project and everything that hangs off it
func (s *Service) DeleteProject(ctx context.Context, id uint) error {
	err := s.db.Transaction(ctx, true).Do(func(txn *database.Txn) error {
		project, err := s.project(txn, id, true)
		if err != nil {
			return err
		}
		if err := s.db.Metadata().DeleteProject(id, txn.Metadata()); err != nil {
			return err
		}
		s.recomputeOnCommit(ctx, txn, project.VillageID, scoring.ReasonProjectDeleted)
		return nil
	})
	if err != nil {
		return err
	}
	s.metrics.projects.WithLabelValues("deleted").Inc()
	s.logger.Info("deleted project", "project_id", id)
	return nil
}

func (s *Service) AddCheckpoint(ctx context.Context, input CheckpointInput) (*models.Checkpoint, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	checkpoint := &models.Checkpoint{
		ProjectID: input.ProjectID,
		Name:      input.Name,
		Sequence:  input.Sequence,
		Mandatory: input.Mandatory,
	}
	err := s.db.Transaction(ctx, true).Do(func(txn *database.Txn) error {
		project, err := s.project(txn, input.ProjectID, true)
		if err != nil {
			return err
		}
		if err := s.db.Metadata().CreateCheckpoint(checkpoint, txn.Metadata()); err != nil {
			return err
		}
		// Checkpoint counts feed the completion score
		s.recomputeOnCommit(ctx, txn, project.VillageID, scoring.ReasonProjectUpdated)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return checkpoint, nil
}

// ReviewSubmission records a review decision. Approving releases the
// per-checkpoint share of the project allocation and completes the project
// once every mandatory checkpoint has approved evidence. Only one reviewer
// can approve a submission.
func (s *Service) ReviewSubmission(
	ctx context.Context,
	submissionID uint,
	input ReviewInput,
) (*ReviewResult, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	store := s.db.Metadata()
	ret := &ReviewResult{Released: decimal.Zero}
	err := s.db.Transaction(ctx, true).Do(func(txn *database.Txn) error {
		submission, err := s.submission(txn, submissionID)
		if err != nil {
			return err
		}
		if submission.Status == models.SubmissionApproved {
			return fmt.Errorf("%w: %d", ErrAlreadyApproved, submissionID)
		}
		checkpoint, err := store.GetCheckpoint(submission.CheckpointID, txn.Metadata())
		if err != nil {
			if errors.Is(err, types.ErrNotFound) {
				return fmt.Errorf("%w: %d", ErrCheckpointNotFound, submission.CheckpointID)
			}
			return err
		}
		project, err := s.project(txn, checkpoint.ProjectID, true)
		if err != nil {
			return err
		}
		changed, err := store.SetSubmissionReview(
			submissionID,
			input.Status,
			input.Reviewer,
			input.Notes,
			time.Now(),
			txn.Metadata(),
		)
		if err != nil {
			return err
		}
		if !changed {
			// Another reviewer approved it after we read the row
			return fmt.Errorf("%w: %d", ErrAlreadyApproved, submissionID)
		}
		reason := scoring.ReasonSubmissionReviewed
		if input.Status == models.SubmissionApproved {
			reason = scoring.ReasonSubmissionApproved
		}
		s.recomputeOnCommit(ctx, txn, project.VillageID, reason)
		if input.Status == models.SubmissionApproved {
			if err := s.approve(ctx, txn, project, checkpoint, submissionID, input, ret); err != nil {
				return err
			}
		}
		ret.Submission, err = store.GetSubmission(submissionID, txn.Metadata())
		return err
	})
	if err != nil {
		s.metrics.reviews.WithLabelValues("failed").Inc()
		return nil, err
	}
	s.metrics.reviews.WithLabelValues(string(input.Status)).Inc()
	s.logger.Info(
		"reviewed submission",
		"submission_id", submissionID,
		"status", input.Status,
		"reviewer", input.Reviewer,
		"released", ret.Released.String(),
		"project_completed", ret.ProjectCompleted,
	)
	return ret, nil
}

func (s *Service) approve(
	ctx context.Context,
	txn *database.Txn,
	project *models.Project,
	checkpoint *models.Checkpoint,
	submissionID uint,
	input ReviewInput,
	ret *ReviewResult,
) error {
	store := s.db.Metadata()
	// Only the first approval of a checkpoint releases its share
	prior, err := store.CountApprovedSubmissions(checkpoint.ID, submissionID, txn.Metadata())
	if err != nil {
		return err
	}
	if prior == 0 {
		checkpoints, err := store.GetCheckpoints(project.ID, txn.Metadata())
		if err != nil {
			return err
		}
		ret.Released, err = s.ledger.AutoReleaseOnApproval(
			ctx,
			txn,
			project,
			len(checkpoints),
			ledger.Meta{
				Description: fmt.Sprintf("Auto-release on approval of checkpoint %q", checkpoint.Name),
				Approver:    input.Reviewer,
			},
		)
		if err != nil {
			return err
		}
	}
	mandatory, approved, err := store.GetCheckpointProgress(project.ID, txn.Metadata())
	if err != nil {
		return err
	}
	if mandatory > 0 && approved == mandatory && project.Status != models.ProjectStatusCompleted {
		if err := store.SetProjectStatus(project.ID, models.ProjectStatusCompleted, txn.Metadata()); err != nil {
			return err
		}
		project.Status = models.ProjectStatusCompleted
		ret.ProjectCompleted = true
	}
	return nil
}

func (s *Service) recomputeOnCommit(
	ctx context.Context,
	txn *database.Txn,
	villageID uint,
	reason string,
) {
	txn.OnCommit(scoring.RecomputeKey(villageID), func() {
		s.trigger.RequestRecompute(ctx, villageID, reason)
	})
}

func (s *Service) village(txn *database.Txn, id uint) (*models.Village, error) {
	ret, err := s.db.Metadata().GetVillage(id, txn.Metadata())
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return nil, fmt.Errorf("%w: %d", ErrVillageNotFound, id)
		}
		return nil, err
	}
	return ret, nil
}

func (s *Service) project(txn *database.Txn, id uint, forUpdate bool) (*models.Project, error) {
	ret, err := s.db.Metadata().GetProject(id, forUpdate, txn.Metadata())
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return nil, fmt.Errorf("%w: %d", ErrProjectNotFound, id)
		}
		return nil, err
	}
	return ret, nil
}

func (s *Service) submission(txn *database.Txn, id uint) (*models.CheckpointSubmission, error) {
	ret, err := s.db.Metadata().GetSubmission(id, txn.Metadata())
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return nil, fmt.Errorf("%w: %d", ErrSubmissionNotFound, id)
		}
		return nil, err
	}
	return ret, nil
}
