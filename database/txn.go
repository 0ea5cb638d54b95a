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

package database

import (
	"context"
	"fmt"
	"sync"

	"github.com/gramsetu/adarsh/database/types"
	"gorm.io/gorm"
)

// Txn wraps a metadata transaction. Media writes are not transactional and
// happen outside of it.
type Txn struct {
	db          *Database
	metadataTxn *gorm.DB
	commitHooks []commitHook
	lock        sync.Mutex
	finished    bool
	readWrite   bool
}

type commitHook struct {
	key string
	fn  func()
}

// Transaction starts a new database transaction and returns a handle to it
func (d *Database) Transaction(ctx context.Context, readWrite bool) *Txn {
	return NewTxn(ctx, d, readWrite)
}

func NewTxn(ctx context.Context, db *Database, readWrite bool) *Txn {
	t := &Txn{db: db, readWrite: readWrite}
	if ms := db.Metadata(); ms != nil {
		t.metadataTxn = ms.Transaction(ctx)
	}
	return t
}

func (t *Txn) DB() *Database {
	return t.db
}

// Metadata returns the transaction handle to pass to metadata store methods
func (t *Txn) Metadata() *gorm.DB {
	return t.metadataTxn
}

// OnCommit registers a function to run after the transaction commits
// successfully. Hooks run in registration order outside the transaction. A
// non-empty key registers at most one hook per key.
func (t *Txn) OnCommit(key string, fn func()) {
	t.lock.Lock()
	defer t.lock.Unlock()
	if key != "" {
		for _, hook := range t.commitHooks {
			if hook.key == key {
				return
			}
		}
	}
	t.commitHooks = append(t.commitHooks, commitHook{key: key, fn: fn})
}

// Do executes the specified function in the context of the transaction. Any errors returned will result
// in the transaction being rolled back
func (t *Txn) Do(fn func(*Txn) error) error {
	if t.metadataTxn == nil {
		t.finished = true
		return types.ErrNoStoreAvailable
	}
	if err := t.metadataTxn.Error; err != nil {
		t.finished = true
		return fmt.Errorf("begin transaction: %w", types.TranslateStoreError(err))
	}
	if err := fn(t); err != nil {
		if err2 := t.Rollback(); err2 != nil {
			return fmt.Errorf(
				"rollback failed: %w: original error: %w",
				err2,
				err,
			)
		}
		return err
	}
	if err := t.Commit(); err != nil {
		return fmt.Errorf("commit failed: %w", err)
	}
	return nil
}

func (t *Txn) Commit() error {
	hooks, err := t.commit()
	if err != nil {
		return err
	}
	for _, hook := range hooks {
		hook.fn()
	}
	return nil
}

func (t *Txn) commit() ([]commitHook, error) {
	t.lock.Lock()
	defer t.lock.Unlock()
	if t.finished {
		return nil, nil
	}
	if t.metadataTxn == nil {
		t.finished = true
		return nil, types.ErrNoStoreAvailable
	}
	// No need to commit for read-only, but we do want to free up resources
	if !t.readWrite {
		return nil, t.rollback()
	}
	t.finished = true
	if err := t.metadataTxn.Commit().Error; err != nil {
		return nil, types.TranslateStoreError(err)
	}
	hooks := t.commitHooks
	t.commitHooks = nil
	return hooks, nil
}

func (t *Txn) Rollback() error {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.rollback()
}

func (t *Txn) rollback() error {
	if t.finished {
		return nil
	}
	t.finished = true
	t.commitHooks = nil
	if t.metadataTxn == nil || t.metadataTxn.Error != nil {
		return nil
	}
	if err := t.metadataTxn.Rollback().Error; err != nil {
		return fmt.Errorf("metadata rollback: %w", err)
	}
	return nil
}

// Release releases transaction resources. For read-write transactions this
// is equivalent to Rollback. Errors are logged but not returned, making this
// safe for deferred calls.
func (t *Txn) Release() {
	if err := t.Rollback(); err != nil {
		t.db.logger.Debug(
			"transaction release failed",
			"component", "database",
			"error", err,
			"read_write", t.readWrite,
		)
	}
}
