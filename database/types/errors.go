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

package types

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Error kinds. Domain errors wrap one of these so callers can classify them
// with errors.Is.
var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvariantViolation = errors.New("invariant violation")
	ErrConflict           = errors.New("conflict")
	ErrTransient          = errors.New("transient failure")
	ErrInternal           = errors.New("internal error")
)

// ErrTxnWrongType is returned when a transaction has the wrong type
var ErrTxnWrongType = errors.New("invalid transaction type")

// ErrNilTxn is returned when a nil transaction is provided where a valid transaction is required
var ErrNilTxn = errors.New("nil transaction")

// ErrNoStoreAvailable is returned when no blob or metadata store is available
var ErrNoStoreAvailable = errors.New("no store available")

// ErrBlobKeyNotFound is returned by blob operations when a key is missing
var ErrBlobKeyNotFound = fmt.Errorf("%w: blob key", ErrNotFound)

// Kind identifies the class of an error for transport mapping
type Kind string

const (
	KindNone               Kind = ""
	KindNotFound           Kind = "not_found"
	KindInvalidInput       Kind = "invalid_input"
	KindInvariantViolation Kind = "invariant_violation"
	KindConflict           Kind = "conflict"
	KindTransient          Kind = "transient"
	KindInternal           Kind = "internal"
)

// Classify returns the Kind of err. Unrecognized errors are KindInternal.
func Classify(err error) Kind {
	if err == nil {
		return KindNone
	}
	err = TranslateStoreError(err)
	switch {
	case errors.Is(err, ErrInvalidInput):
		return KindInvalidInput
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrInvariantViolation):
		return KindInvariantViolation
	case errors.Is(err, ErrConflict):
		return KindConflict
	case errors.Is(err, ErrTransient):
		return KindTransient
	default:
		return KindInternal
	}
}

// TranslateStoreError maps storage driver errors onto the error kinds above.
// Errors that already carry a kind are returned unchanged.
func TranslateStoreError(err error) error {
	if err == nil {
		return nil
	}
	for _, kind := range []error{
		ErrNotFound,
		ErrInvalidInput,
		ErrInvariantViolation,
		ErrConflict,
		ErrTransient,
		ErrInternal,
	} {
		if errors.Is(err, kind) {
			return err
		}
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %w", ErrConflict, err)
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return fmt.Errorf("%w: %w", ErrTransient, err)
	case isLockError(err):
		return fmt.Errorf("%w: %w", ErrTransient, err)
	case isUniqueViolation(err):
		return fmt.Errorf("%w: %w", ErrConflict, err)
	}
	return err
}

// Driver messages for lock contention. SQLite reports SQLITE_BUSY/LOCKED,
// postgres reports serialization failures (40001) and deadlocks (40P01),
// mysql reports 1205/1213.
var lockErrorMarkers = []string{
	"database is locked",
	"database table is locked",
	"sqlite_busy",
	"sqlstate 40001",
	"sqlstate 40p01",
	"deadlock",
	"lock wait timeout",
}

func isLockError(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, marker := range lockErrorMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// Fallback for drivers that do not translate unique violations
func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "duplicate entry")
}
