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

// Package ledger maintains the fund log of each project together with its
// allocated and utilized running totals.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/gramsetu/adarsh/database"
	"github.com/gramsetu/adarsh/database/models"
	"github.com/gramsetu/adarsh/database/types"
	"github.com/gramsetu/adarsh/event"
	"github.com/gramsetu/adarsh/scoring"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

// Meta describes who moved funds and why
type Meta struct {
	Description string
	Approver    string
}

type LedgerConfig struct {
	Database     *database.Database
	Logger       *slog.Logger
	PromRegistry prometheus.Registerer
	EventBus     *event.EventBus
	Trigger      scoring.Trigger
}

type Ledger struct {
	db       *database.Database
	logger   *slog.Logger
	eventBus *event.EventBus
	trigger  scoring.Trigger
	metrics  *ledgerMetrics
}

func New(cfg LedgerConfig) *Ledger {
	l := &Ledger{
		db:       cfg.Database,
		eventBus: cfg.EventBus,
		trigger:  cfg.Trigger,
		metrics:  newLedgerMetrics(cfg.PromRegistry),
	}
	if cfg.Logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		l.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	} else {
		l.logger = cfg.Logger
	}
	l.logger = l.logger.With("component", "ledger")
	if l.trigger == nil {
		l.trigger = scoring.NopTrigger
	}
	return l
}

// ValidateAmount checks that an amount is positive and representable in the
// store
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() || !amount.Equal(amount.Truncate(2)) {
		return fmt.Errorf("%w: %s", ErrInvalidAmount, amount)
	}
	return nil
}

// Allocate raises the allocated total of a project and logs an allocation
func (l *Ledger) Allocate(
	ctx context.Context,
	projectID uint,
	amount decimal.Decimal,
	meta Meta,
) (*models.FundTransaction, error) {
	var ret *models.FundTransaction
	err := l.db.Transaction(ctx, true).Do(func(txn *database.Txn) error {
		var err error
		ret, err = l.AllocateTxn(ctx, txn, projectID, amount, meta)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ret, nil
}

// Release raises the utilized total of a project and logs a release. A
// release that would exceed the allocation changes nothing.
func (l *Ledger) Release(
	ctx context.Context,
	projectID uint,
	amount decimal.Decimal,
	meta Meta,
) (*models.FundTransaction, error) {
	var ret *models.FundTransaction
	err := l.db.Transaction(ctx, true).Do(func(txn *database.Txn) error {
		var err error
		ret, err = l.ReleaseTxn(ctx, txn, projectID, amount, meta)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ret, nil
}

// AllocateTxn is Allocate joined to the caller's transaction
func (l *Ledger) AllocateTxn(
	ctx context.Context,
	txn *database.Txn,
	projectID uint,
	amount decimal.Decimal,
	meta Meta,
) (*models.FundTransaction, error) {
	if err := ValidateAmount(amount); err != nil {
		return nil, err
	}
	project, err := l.lockProject(txn, projectID)
	if err != nil {
		return nil, err
	}
	return l.record(ctx, txn, project, models.FundTransactionAllocation, amount, meta)
}

// ReleaseTxn is Release joined to the caller's transaction
func (l *Ledger) ReleaseTxn(
	ctx context.Context,
	txn *database.Txn,
	projectID uint,
	amount decimal.Decimal,
	meta Meta,
) (*models.FundTransaction, error) {
	if err := ValidateAmount(amount); err != nil {
		return nil, err
	}
	project, err := l.lockProject(txn, projectID)
	if err != nil {
		return nil, err
	}
	if utilized := project.UtilizedAmount.Add(amount); utilized.GreaterThan(project.AllocatedAmount) {
		l.metrics.rejections.WithLabelValues("over_release").Inc()
		return nil, overRelease(project.ID, utilized, project.AllocatedAmount)
	}
	return l.record(ctx, txn, project, models.FundTransactionRelease, amount, meta)
}

// AutoReleaseOnApproval releases the pro-rata share allocated / checkpoints
// of a project, rounded down to 2 decimal places. The caller must hold the
// project lock in txn. The share is clamped to the remaining allocation and
// nothing is recorded when no allocation remains. It returns the amount
// released.
func (l *Ledger) AutoReleaseOnApproval(
	ctx context.Context,
	txn *database.Txn,
	project *models.Project,
	checkpointCount int,
	meta Meta,
) (decimal.Decimal, error) {
	share := project.AllocatedAmount.
		Div(decimal.NewFromInt(int64(max(checkpointCount, 1)))).
		RoundDown(2)
	amount := decimal.Min(share, project.Remaining())
	if amount.LessThan(share) {
		l.metrics.autoReleaseClamped.Inc()
		l.logger.Warn(
			"auto-release clamped to remaining allocation",
			"project_id", project.ID,
			"share", share.String(),
			"released", amount.String(),
		)
	}
	if !amount.IsPositive() {
		return decimal.Zero, nil
	}
	if meta.Description == "" {
		meta.Description = "Auto-release on checkpoint approval"
	}
	if _, err := l.record(ctx, txn, project, models.FundTransactionRelease, amount, meta); err != nil {
		return decimal.Zero, err
	}
	return amount, nil
}

// EditTransaction changes the amount (and optionally the description) of a
// logged transaction and moves the matching project total by the difference
func (l *Ledger) EditTransaction(
	ctx context.Context,
	txID uint,
	newAmount decimal.Decimal,
	newDescription *string,
) (*models.FundTransaction, error) {
	if err := ValidateAmount(newAmount); err != nil {
		return nil, err
	}
	store := l.db.Metadata()
	var ret *models.FundTransaction
	err := l.db.Transaction(ctx, true).Do(func(txn *database.Txn) error {
		fundTxn, err := store.GetFundTransaction(txID, txn.Metadata())
		if err != nil {
			return transactionErr(txID, err)
		}
		project, err := l.lockProject(txn, fundTxn.ProjectID)
		if err != nil {
			return err
		}
		// Re-read under the project lock so concurrent edits see each other
		fundTxn, err = store.GetFundTransaction(txID, txn.Metadata())
		if err != nil {
			return transactionErr(txID, err)
		}
		delta := newAmount.Sub(fundTxn.Amount)
		allocated := project.AllocatedAmount
		utilized := project.UtilizedAmount
		switch fundTxn.Type {
		case models.FundTransactionAllocation:
			allocated = allocated.Add(delta)
		case models.FundTransactionRelease:
			utilized = utilized.Add(delta)
		default:
			return fmt.Errorf("%w: unknown fund transaction type %q", types.ErrInternal, fundTxn.Type)
		}
		if utilized.GreaterThan(allocated) {
			l.metrics.rejections.WithLabelValues("over_release").Inc()
			return overRelease(project.ID, utilized, allocated)
		}
		if err := store.UpdateFundTransaction(txID, newAmount, newDescription, txn.Metadata()); err != nil {
			return err
		}
		if err := store.SetProjectTotals(project.ID, allocated, utilized, txn.Metadata()); err != nil {
			return err
		}
		fundTxn.Amount = newAmount
		if newDescription != nil {
			fundTxn.Description = *newDescription
		}
		ret = fundTxn
		l.metrics.edits.Inc()
		l.afterCommit(ctx, txn, project.VillageID, fundTxn)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ret, nil
}

func (l *Ledger) lockProject(txn *database.Txn, projectID uint) (*models.Project, error) {
	project, err := l.db.Metadata().GetProject(projectID, true, txn.Metadata())
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return nil, fmt.Errorf("%w: %d", ErrProjectNotFound, projectID)
		}
		return nil, err
	}
	return project, nil
}

// record appends a transaction and applies it to the locked project's totals
func (l *Ledger) record(
	ctx context.Context,
	txn *database.Txn,
	project *models.Project,
	txType models.FundTransactionType,
	amount decimal.Decimal,
	meta Meta,
) (*models.FundTransaction, error) {
	store := l.db.Metadata()
	fundTxn := &models.FundTransaction{
		ProjectID:   project.ID,
		Type:        txType,
		Amount:      amount,
		Description: meta.Description,
		Approver:    meta.Approver,
	}
	if err := store.CreateFundTransaction(fundTxn, txn.Metadata()); err != nil {
		return nil, err
	}
	allocated, utilized := project.AllocatedAmount, project.UtilizedAmount
	if txType == models.FundTransactionAllocation {
		allocated = allocated.Add(amount)
	} else {
		utilized = utilized.Add(amount)
	}
	if err := store.SetProjectTotals(project.ID, allocated, utilized, txn.Metadata()); err != nil {
		return nil, err
	}
	project.AllocatedAmount, project.UtilizedAmount = allocated, utilized
	l.metrics.transactions.WithLabelValues(string(txType)).Inc()
	l.afterCommit(ctx, txn, project.VillageID, fundTxn)
	return fundTxn, nil
}

// afterCommit publishes the entry and requests a score recompute once the
// transaction has committed
func (l *Ledger) afterCommit(
	ctx context.Context,
	txn *database.Txn,
	villageID uint,
	fundTxn *models.FundTransaction,
) {
	snapshot := *fundTxn
	txn.OnCommit("", func() {
		l.logger.Debug(
			"recorded fund transaction",
			"project_id", snapshot.ProjectID,
			"transaction_id", snapshot.ID,
			"type", snapshot.Type,
			"amount", snapshot.Amount.String(),
		)
		if l.eventBus != nil {
			l.eventBus.PublishAsync(
				event.FundTransactionEventType,
				event.NewEvent(
					event.FundTransactionEventType,
					event.FundTransactionEvent{
						ProjectID:     snapshot.ProjectID,
						VillageID:     villageID,
						TransactionID: snapshot.ID,
						Type:          string(snapshot.Type),
						Amount:        snapshot.Amount,
					},
				),
			)
		}
	})
	txn.OnCommit(scoring.RecomputeKey(villageID), func() {
		l.trigger.RequestRecompute(ctx, villageID, scoring.ReasonFundTransaction)
	})
}

func transactionErr(txID uint, err error) error {
	if errors.Is(err, types.ErrNotFound) {
		return fmt.Errorf("%w: %d", ErrTransactionNotFound, txID)
	}
	return err
}

func overRelease(projectID uint, utilized decimal.Decimal, allocated decimal.Decimal) error {
	return fmt.Errorf(
		"%w: project %d utilized %s, allocated %s",
		ErrOverRelease,
		projectID,
		utilized,
		allocated,
	)
}
