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

package ingest_test

import (
	"testing"

	"github.com/gramsetu/adarsh/database/models"
	"github.com/gramsetu/adarsh/ingest"
	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	testDefs := []struct {
		name       string
		family     models.IngestFamily
		byClient   ingest.Match
		bySemantic ingest.Match
		expected   ingest.Decision
	}{
		{
			name:     "new submission",
			family:   models.IngestFamilySubmission,
			expected: ingest.Decision{Kind: ingest.Insert},
		},
		{
			name:     "repeated submission",
			family:   models.IngestFamilySubmission,
			byClient: ingest.Match{ID: 4, ClientID: "c1"},
			expected: ingest.Decision{Kind: ingest.NoOp, ExistingID: 4},
		},
		{
			name:       "submissions never merge",
			family:     models.IngestFamilySubmission,
			bySemantic: ingest.Match{ID: 9, ClientID: "other"},
			expected:   ingest.Decision{Kind: ingest.Insert},
		},
		{
			name:     "new vote",
			family:   models.IngestFamilyVote,
			expected: ingest.Decision{Kind: ingest.Insert},
		},
		{
			name:       "vote for existing demand",
			family:     models.IngestFamilyVote,
			bySemantic: ingest.Match{ID: 9, ClientID: "other"},
			expected:   ingest.Decision{Kind: ingest.MergeInto, ExistingID: 9},
		},
		{
			name:       "client id wins over content",
			family:     models.IngestFamilyVote,
			byClient:   ingest.Match{ID: 3, ClientID: "c1"},
			bySemantic: ingest.Match{ID: 9, ClientID: "other"},
			expected:   ingest.Decision{Kind: ingest.NoOp, ExistingID: 3},
		},
		{
			name:       "content row owned by same client",
			family:     models.IngestFamilyVote,
			bySemantic: ingest.Match{ID: 9, ClientID: "c1"},
			expected:   ingest.Decision{Kind: ingest.NoOp, ExistingID: 9},
		},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			got := ingest.Resolve(testDef.family, "c1", testDef.byClient, testDef.bySemantic)
			assert.Equal(t, testDef.expected, got)
		})
	}
}

func TestDecisionKindString(t *testing.T) {
	assert.Equal(t, "insert", ingest.Insert.String())
	assert.Equal(t, "merge", ingest.MergeInto.String())
	assert.Equal(t, "noop", ingest.NoOp.String())
}
