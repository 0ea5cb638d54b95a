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

// Package gormstore holds the metadata queries shared by every SQL plugin.
// The queries only use constructs that gorm renders for sqlite, postgres and
// mysql alike.
package gormstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/gramsetu/adarsh/database/models"
	"github.com/gramsetu/adarsh/database/types"
	"gorm.io/gorm"
)

// Store implements the query half of metadata.MetadataStore. Plugins embed
// it and provide the connection lifecycle.
type Store struct {
	db     *gorm.DB
	logger *slog.Logger
}

func New(db *gorm.DB, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Store{db: db, logger: logger}
}

// DB returns the database handle
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Transaction begins a transaction bound to ctx
func (s *Store) Transaction(ctx context.Context) *gorm.DB {
	if ctx == nil {
		ctx = context.Background()
	}
	return s.db.WithContext(ctx).Begin()
}

// Migrate creates or updates the schema for every model
func (s *Store) Migrate() error {
	for _, model := range models.MigrateModels {
		s.logger.Debug(fmt.Sprintf("creating table: %T", model))
		if err := s.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("migrate %T: %w", model, err)
		}
	}
	return nil
}

func (s *Store) conn(txn *gorm.DB) *gorm.DB {
	if txn != nil {
		return txn
	}
	return s.db
}

func storeErr(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(
		"%s: %w",
		fmt.Sprintf(format, args...),
		types.TranslateStoreError(err),
	)
}

func notFound(format string, args ...any) error {
	return fmt.Errorf(
		"%s: %w",
		fmt.Sprintf(format, args...),
		types.ErrNotFound,
	)
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
