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

// Package scoring derives the Adarsh readiness score of a village from its
// persisted facts.
package scoring

import (
	"github.com/gramsetu/adarsh/database/models"
	"github.com/shopspring/decimal"
)

// Sub-score weights of the overall score
const (
	WeightInfrastructure  = 0.30
	WeightCompletion      = 0.30
	WeightSocial          = 0.20
	WeightFeedback        = 0.10
	WeightFundUtilization = 0.10
)

// CandidateThreshold is the overall score from which a village is an Adarsh
// candidate
const CandidateThreshold = 85.0

// NeutralFeedback is the feedback score of a village without reviewed
// submissions
const NeutralFeedback = 50.0

// Inputs are the facts a score is computed from. A village without a
// baseline row uses the zero value of Metrics.
type Inputs struct {
	Metrics models.VillageMetrics
	Stats   models.VillageStats
}

// Compute returns the score row for a village. It is a pure function of its
// arguments.
func Compute(villageID uint, in Inputs) models.AdarshScore {
	ret := models.AdarshScore{
		VillageID:           villageID,
		InfrastructureScore: Round2(clamp(infrastructure(in.Metrics))),
		CompletionScore:     Round2(clamp(completion(in.Stats))),
		SocialScore:         Round2(clamp((in.Metrics.LiteracyRate + in.Metrics.EmploymentRate) / 2)),
		FeedbackScore:       Round2(clamp(feedback(in.Stats))),
		FundUtilization:     Round2(clamp(fundUtilization(in.Stats))),
	}
	ret.OverallScore = Round2(
		WeightInfrastructure*ret.InfrastructureScore +
			WeightCompletion*ret.CompletionScore +
			WeightSocial*ret.SocialScore +
			WeightFeedback*ret.FeedbackScore +
			WeightFundUtilization*ret.FundUtilization,
	)
	ret.IsCandidate = ret.OverallScore >= CandidateThreshold
	return ret
}

func infrastructure(m models.VillageMetrics) float64 {
	ret := m.InfrastructureScore
	switch {
	case m.HealthcareFacilities >= 3:
		ret += 10
	case m.HealthcareFacilities >= 2:
		ret += 5
	}
	switch {
	case m.Schools >= 4:
		ret += 10
	case m.Schools >= 2:
		ret += 5
	}
	return ret
}

// completion is 0 for a village without projects. A village whose projects
// have no checkpoints gets no checkpoint share.
func completion(s models.VillageStats) float64 {
	if s.TotalProjects == 0 {
		return 0
	}
	ret := 0.7 * percent(s.CompletedProjects, s.TotalProjects)
	if s.TotalCheckpoints > 0 {
		ret += 0.3 * percent(s.ApprovedCheckpoints, s.TotalCheckpoints)
	}
	return ret
}

func feedback(s models.VillageStats) float64 {
	reviewed := s.ApprovedSubmissions + s.RejectedSubmissions
	if reviewed == 0 {
		return NeutralFeedback
	}
	return percent(s.ApprovedSubmissions, reviewed)
}

func fundUtilization(s models.VillageStats) float64 {
	if !s.AllocatedAmount.IsPositive() {
		return 0
	}
	ratio := s.UtilizedAmount.Mul(decimal.NewFromInt(100)).Div(s.AllocatedAmount)
	return min(100, ratio.InexactFloat64())
}

func percent(part int64, whole int64) float64 {
	return float64(part) / float64(whole) * 100
}

func clamp(v float64) float64 {
	return max(0, min(100, v))
}

// Round2 rounds half away from zero to 2 decimal places
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
