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

package scoring_test

import (
	"testing"

	"github.com/gramsetu/adarsh/database/models"
	"github.com/gramsetu/adarsh/scoring"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestSocialIndicatorsMean(t *testing.T) {
	score := scoring.Compute(1, scoring.Inputs{
		Metrics: models.VillageMetrics{LiteracyRate: 80, EmploymentRate: 60},
	})
	assert.InDelta(t, 70, score.SocialScore, 0)
}

func TestCompletionRate(t *testing.T) {
	score := scoring.Compute(1, scoring.Inputs{
		Stats: models.VillageStats{
			TotalProjects:       4,
			CompletedProjects:   2,
			TotalCheckpoints:    10,
			ApprovedCheckpoints: 6,
		},
	})
	assert.InDelta(t, 53, score.CompletionScore, 0)

	score = scoring.Compute(1, scoring.Inputs{
		Stats: models.VillageStats{TotalCheckpoints: 3, ApprovedCheckpoints: 3},
	})
	assert.InDelta(t, 0, score.CompletionScore, 0, "no projects means no completion")
}

func TestInfrastructureBonuses(t *testing.T) {
	testDefs := []struct {
		name    string
		metrics models.VillageMetrics
		want    float64
	}{
		{"no bonus", models.VillageMetrics{InfrastructureScore: 40, HealthcareFacilities: 1, Schools: 1}, 40},
		{"small bonuses", models.VillageMetrics{InfrastructureScore: 40, HealthcareFacilities: 2, Schools: 3}, 50},
		{"large bonuses", models.VillageMetrics{InfrastructureScore: 40, HealthcareFacilities: 3, Schools: 4}, 60},
		{"clamped", models.VillageMetrics{InfrastructureScore: 95, HealthcareFacilities: 5, Schools: 5}, 100},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			score := scoring.Compute(1, scoring.Inputs{Metrics: testDef.metrics})
			assert.InDelta(t, testDef.want, score.InfrastructureScore, 0)
		})
	}
}

func TestFeedbackDefaultsToNeutral(t *testing.T) {
	score := scoring.Compute(1, scoring.Inputs{})
	assert.InDelta(t, scoring.NeutralFeedback, score.FeedbackScore, 0)

	score = scoring.Compute(1, scoring.Inputs{
		Stats: models.VillageStats{ApprovedSubmissions: 3, RejectedSubmissions: 1},
	})
	assert.InDelta(t, 75, score.FeedbackScore, 0)
}

func TestFundUtilization(t *testing.T) {
	score := scoring.Compute(1, scoring.Inputs{
		Stats: models.VillageStats{
			AllocatedAmount: decimal.Zero,
			UtilizedAmount:  decimal.Zero,
		},
	})
	assert.InDelta(t, 0, score.FundUtilization, 0)

	score = scoring.Compute(1, scoring.Inputs{
		Stats: models.VillageStats{
			AllocatedAmount: decimal.RequireFromString("300"),
			UtilizedAmount:  decimal.RequireFromString("100"),
		},
	})
	assert.InDelta(t, 33.33, score.FundUtilization, 0)
}

func TestOverallAndCandidate(t *testing.T) {
	in := scoring.Inputs{
		Metrics: models.VillageMetrics{
			InfrastructureScore:  80,
			HealthcareFacilities: 3,
			Schools:              4,
			LiteracyRate:         90,
			EmploymentRate:       80,
		},
		Stats: models.VillageStats{
			TotalProjects:       2,
			CompletedProjects:   2,
			TotalCheckpoints:    4,
			ApprovedCheckpoints: 4,
			ApprovedSubmissions: 4,
			AllocatedAmount:     decimal.RequireFromString("1000"),
			UtilizedAmount:      decimal.RequireFromString("1000"),
		},
	}
	score := scoring.Compute(7, in)
	// 0.3*100 + 0.3*100 + 0.2*85 + 0.1*100 + 0.1*100
	assert.InDelta(t, 97, score.OverallScore, 0)
	assert.True(t, score.IsCandidate)
	assert.Equal(t, uint(7), score.VillageID)

	in.Metrics.LiteracyRate = 10
	in.Metrics.EmploymentRate = 10
	in.Stats.CompletedProjects = 1
	score = scoring.Compute(7, in)
	assert.Less(t, score.OverallScore, scoring.CandidateThreshold)
	assert.False(t, score.IsCandidate)
}

func TestComputeIsDeterministic(t *testing.T) {
	in := scoring.Inputs{
		Metrics: models.VillageMetrics{InfrastructureScore: 33.333, LiteracyRate: 71.1, EmploymentRate: 12.7},
		Stats: models.VillageStats{
			TotalProjects:     3,
			CompletedProjects: 1,
			AllocatedAmount:   decimal.RequireFromString("7"),
			UtilizedAmount:    decimal.RequireFromString("3"),
		},
	}
	assert.Equal(t, scoring.Compute(1, in), scoring.Compute(1, in))
}

func TestRound2(t *testing.T) {
	assert.InDelta(t, 1.01, scoring.Round2(1.005), 0)
	assert.InDelta(t, 53, scoring.Round2(52.999999999), 0)
	assert.InDelta(t, 33.33, scoring.Round2(100.0/3), 0)
}
