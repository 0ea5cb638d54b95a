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

package gormstore

import (
	"github.com/gramsetu/adarsh/database/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (s *Store) GetAdarshScore(villageID uint, txn *gorm.DB) (*models.AdarshScore, error) {
	var ret models.AdarshScore
	result := s.conn(txn).
		Where("village_id = ?", villageID).
		First(&ret)
	if result.Error != nil {
		if isNotFound(result.Error) {
			return nil, notFound("score for village %d", villageID)
		}
		return nil, storeErr(result.Error, "get score for village %d", villageID)
	}
	return &ret, nil
}

// SetAdarshScore upserts the score row of a village. The row ID is not
// reliable afterwards on every dialect, so callers re-read when they need it.
func (s *Store) SetAdarshScore(score *models.AdarshScore, txn *gorm.DB) error {
	result := s.conn(txn).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "village_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"infrastructure_score",
			"completion_score",
			"social_score",
			"feedback_score",
			"fund_utilization",
			"overall_score",
			"is_candidate",
		}),
	}).Create(score)
	return storeErr(result.Error, "set score for village %d", score.VillageID)
}
