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

package adarsh

import (
	"context"

	"github.com/gramsetu/adarsh/projects"
)

func (c *Core) CreateProject(ctx context.Context, input projects.ProjectInput) Result {
	project, err := c.projects.CreateProject(ctx, input)
	if err != nil {
		return failure(err)
	}
	return created("Project created", project)
}

func (c *Core) GetProject(ctx context.Context, projectID uint) Result {
	project, err := c.projects.GetProject(ctx, projectID)
	if err != nil {
		return failure(err)
	}
	return success("Project", project)
}

func (c *Core) UpdateProject(
	ctx context.Context,
	projectID uint,
	update projects.ProjectUpdate,
) Result {
	project, err := c.projects.UpdateProject(ctx, projectID, update)
	if err != nil {
		return failure(err)
	}
	return success("Project updated", project)
}

func (c *Core) DeleteProject(ctx context.Context, projectID uint) Result {
	if err := c.projects.DeleteProject(ctx, projectID); err != nil {
		return failure(err)
	}
	return success("Project deleted", nil)
}

func (c *Core) AddCheckpoint(ctx context.Context, input projects.CheckpointInput) Result {
	checkpoint, err := c.projects.AddCheckpoint(ctx, input)
	if err != nil {
		return failure(err)
	}
	return created("Checkpoint added", checkpoint)
}

func (c *Core) ReviewSubmission(
	ctx context.Context,
	submissionID uint,
	input projects.ReviewInput,
) Result {
	review, err := c.projects.ReviewSubmission(ctx, submissionID, input)
	if err != nil {
		return failure(err)
	}
	return success("Submission reviewed", review)
}
