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

package database_test

import (
	"context"
	"errors"
	"testing"

	"github.com/gramsetu/adarsh/database"
	"github.com/gramsetu/adarsh/database/models"
	"github.com/gramsetu/adarsh/database/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *database.Database {
	t.Helper()
	db, err := database.New(&database.Config{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestTxnDoCommits(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	err := db.Transaction(ctx, true).Do(func(txn *database.Txn) error {
		return db.Metadata().CreateVillage(
			&models.Village{Name: "Rampur", District: "Barabanki", State: "UP"},
			txn.Metadata(),
		)
	})
	require.NoError(t, err)
	ids, err := db.Metadata().GetVillageIDs(nil)
	require.NoError(t, err)
	assert.Len(t, ids, 1)
}

func TestCommitHooks(t *testing.T) {
	db := newTestDB(t)
	var calls []string
	err := db.Transaction(context.Background(), true).Do(func(txn *database.Txn) error {
		txn.OnCommit("recompute:1", func() { calls = append(calls, "a") })
		txn.OnCommit("recompute:1", func() { calls = append(calls, "dup") })
		txn.OnCommit("", func() { calls = append(calls, "b") })
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, calls)

	calls = nil
	err = db.Transaction(context.Background(), true).Do(func(txn *database.Txn) error {
		txn.OnCommit("", func() { calls = append(calls, "never") })
		return errors.New("fail")
	})
	require.Error(t, err)
	assert.Empty(t, calls)
}

func TestTxnDoRollsBackOnError(t *testing.T) {
	db := newTestDB(t)
	boom := errors.New("boom")
	err := db.Transaction(context.Background(), true).Do(func(txn *database.Txn) error {
		if err := db.Metadata().CreateVillage(&models.Village{Name: "Sonpur"}, txn.Metadata()); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)
	ids, err := db.Metadata().GetVillageIDs(nil)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestReadOnlyTxnDoesNotPersist(t *testing.T) {
	db := newTestDB(t)
	txn := db.Transaction(context.Background(), false)
	require.NoError(t, db.Metadata().CreateVillage(&models.Village{Name: "Kheri"}, txn.Metadata()))
	require.NoError(t, txn.Commit())
	// Second finish is a no-op
	require.NoError(t, txn.Commit())
	txn.Release()
	ids, err := db.Metadata().GetVillageIDs(nil)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestMediaStoreAvailable(t *testing.T) {
	db := newTestDB(t)
	url, err := db.Blob().PutMedia(context.Background(), "v/1.jpg", "image/jpeg", []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/media/v/1.jpg", url)
	_, err = db.Blob().GetMedia(context.Background(), "v/2.jpg")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestUnknownPlugin(t *testing.T) {
	_, err := database.New(&database.Config{MetadataPlugin: "nope"})
	require.Error(t, err)
}
