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

package projects

import (
	"fmt"
	"strings"

	"github.com/gramsetu/adarsh/database/models"
	"github.com/gramsetu/adarsh/database/types"
	"github.com/shopspring/decimal"
)

type VillageInput struct {
	Name     string `json:"name"`
	District string `json:"district,omitempty"`
	State    string `json:"state,omitempty"`
}

func (v VillageInput) Validate() error {
	if strings.TrimSpace(v.Name) == "" {
		return fmt.Errorf("%w: village name is required", types.ErrInvalidInput)
	}
	return nil
}

// MetricsInput is the baseline of a village
type MetricsInput struct {
	InfrastructureScore  float64 `json:"infrastructure_score"`
	HealthcareFacilities int     `json:"healthcare_facilities"`
	Schools              int     `json:"schools"`
	LiteracyRate         float64 `json:"literacy_rate"`
	EmploymentRate       float64 `json:"employment_rate"`
}

func (m MetricsInput) Validate() error {
	percentages := []struct {
		name  string
		value float64
	}{
		{"infrastructure_score", m.InfrastructureScore},
		{"literacy_rate", m.LiteracyRate},
		{"employment_rate", m.EmploymentRate},
	}
	for _, p := range percentages {
		if p.value < 0 || p.value > 100 {
			return fmt.Errorf("%w: %s must be between 0 and 100", types.ErrInvalidInput, p.name)
		}
	}
	if m.HealthcareFacilities < 0 || m.Schools < 0 {
		return fmt.Errorf("%w: facility counts cannot be negative", types.ErrInvalidInput)
	}
	return nil
}

type ProjectInput struct {
	VillageID         uint                 `json:"village_id"`
	Name              string               `json:"name"`
	Description       string               `json:"description,omitempty"`
	Status            models.ProjectStatus `json:"status,omitempty"`
	InitialAllocation decimal.Decimal      `json:"allocated_amount"`
	Approver          string               `json:"approver,omitempty"`
}

func (p ProjectInput) Validate() error {
	if p.VillageID == 0 {
		return fmt.Errorf("%w: village_id is required", types.ErrInvalidInput)
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: project name is required", types.ErrInvalidInput)
	}
	if p.Status != "" && !p.Status.Valid() {
		return fmt.Errorf("%w: unknown project status %q", types.ErrInvalidInput, p.Status)
	}
	return nil
}

// ProjectUpdate holds the descriptive fields of a project. Amounts only
// change through the ledger.
type ProjectUpdate struct {
	Name        *string               `json:"name,omitempty"`
	Description *string               `json:"description,omitempty"`
	Status      *models.ProjectStatus `json:"status,omitempty"`
}

func (u ProjectUpdate) fields() (map[string]any, error) {
	ret := make(map[string]any)
	if u.Name != nil {
		if strings.TrimSpace(*u.Name) == "" {
			return nil, fmt.Errorf("%w: project name cannot be empty", types.ErrInvalidInput)
		}
		ret["name"] = *u.Name
	}
	if u.Description != nil {
		ret["description"] = *u.Description
	}
	if u.Status != nil {
		if !u.Status.Valid() {
			return nil, fmt.Errorf("%w: unknown project status %q", types.ErrInvalidInput, *u.Status)
		}
		ret["status"] = *u.Status
	}
	return ret, nil
}

type CheckpointInput struct {
	ProjectID uint   `json:"project_id"`
	Name      string `json:"name"`
	Sequence  int    `json:"sequence"`
	Mandatory bool   `json:"mandatory"`
}

func (c CheckpointInput) Validate() error {
	if c.ProjectID == 0 {
		return fmt.Errorf("%w: project_id is required", types.ErrInvalidInput)
	}
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: checkpoint name is required", types.ErrInvalidInput)
	}
	return nil
}

type ReviewInput struct {
	Status   models.SubmissionStatus `json:"status"`
	Reviewer string                  `json:"reviewer"`
	Notes    string                  `json:"notes,omitempty"`
}

func (r ReviewInput) Validate() error {
	if !r.Status.Reviewable() {
		return fmt.Errorf("%w: review status %q", types.ErrInvalidInput, r.Status)
	}
	return nil
}

// ReviewResult describes what a review changed
type ReviewResult struct {
	Submission       *models.CheckpointSubmission `json:"submission"`
	Released         decimal.Decimal              `json:"released_amount"`
	ProjectCompleted bool                         `json:"project_completed"`
}
