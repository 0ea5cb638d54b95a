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

package types_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/gramsetu/adarsh/database/types"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestClassify(t *testing.T) {
	testDefs := []struct {
		err      error
		expected types.Kind
	}{
		{nil, types.KindNone},
		{gorm.ErrRecordNotFound, types.KindNotFound},
		{fmt.Errorf("lookup project: %w", gorm.ErrRecordNotFound), types.KindNotFound},
		{gorm.ErrDuplicatedKey, types.KindConflict},
		{context.DeadlineExceeded, types.KindTransient},
		{errors.New("database is locked (5) (SQLITE_BUSY)"), types.KindTransient},
		{errors.New("ERROR: deadlock detected (SQLSTATE 40P01)"), types.KindTransient},
		{errors.New("UNIQUE constraint failed: priority_votes.client_id"), types.KindConflict},
		{fmt.Errorf("%w: amount must be positive", types.ErrInvalidInput), types.KindInvalidInput},
		{fmt.Errorf("%w: over release", types.ErrInvariantViolation), types.KindInvariantViolation},
		{errors.New("boom"), types.KindInternal},
	}
	for _, testDef := range testDefs {
		assert.Equal(t, testDef.expected, types.Classify(testDef.err), "%v", testDef.err)
	}
}

func TestTranslateStoreErrorKeepsWrappedKinds(t *testing.T) {
	orig := fmt.Errorf("%w: project 4", types.ErrNotFound)
	assert.Same(t, orig, types.TranslateStoreError(orig))
	translated := types.TranslateStoreError(gorm.ErrDuplicatedKey)
	assert.ErrorIs(t, translated, types.ErrConflict)
	assert.ErrorIs(t, translated, gorm.ErrDuplicatedKey)
}
