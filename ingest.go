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

	"github.com/gramsetu/adarsh/ingest"
)

func (c *Core) SubmitEvidence(ctx context.Context, input ingest.SubmissionInput) Result {
	submission, decision, err := c.ingestor.SubmitEvidence(ctx, input)
	if err != nil {
		return failure(err)
	}
	if decision.Kind == ingest.NoOp {
		return success("Submission already recorded", submission)
	}
	return created("Submission recorded", submission)
}

func (c *Core) SubmitVote(ctx context.Context, input ingest.VoteInput) Result {
	vote, decision, err := c.ingestor.SubmitVote(ctx, input)
	if err != nil {
		return failure(err)
	}
	switch decision.Kind {
	case ingest.NoOp:
		return success("Vote already recorded", vote)
	case ingest.MergeInto:
		return success("Vote added to existing demand", vote)
	}
	return created("Vote recorded", vote)
}

// SyncSubmissions applies an offline batch. Item failures are reported in
// the acknowledgement and never fail the call.
func (c *Core) SyncSubmissions(ctx context.Context, actor string, inputs []ingest.SubmissionInput) Result {
	return success("Submissions synced", c.ingestor.SyncSubmissions(ctx, actor, inputs))
}

func (c *Core) SyncVotes(ctx context.Context, actor string, inputs []ingest.VoteInput) Result {
	return success("Votes synced", c.ingestor.SyncVotes(ctx, actor, inputs))
}
