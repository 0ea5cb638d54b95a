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

package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/gramsetu/adarsh/database"
	"github.com/gramsetu/adarsh/database/models"
	"github.com/gramsetu/adarsh/database/types"
	"github.com/shopspring/decimal"
)

// Totals are the running totals of a project
type Totals struct {
	Allocated decimal.Decimal `json:"allocated"`
	Utilized  decimal.Decimal `json:"utilized"`
}

// Fold replays a fund log into totals
func Fold(transactions []models.FundTransaction) Totals {
	ret := Totals{Allocated: decimal.Zero, Utilized: decimal.Zero}
	for _, fundTxn := range transactions {
		switch fundTxn.Type {
		case models.FundTransactionAllocation:
			ret.Allocated = ret.Allocated.Add(fundTxn.Amount)
		case models.FundTransactionRelease:
			ret.Utilized = ret.Utilized.Add(fundTxn.Amount)
		}
	}
	return ret
}

// Discrepancy reports a project whose cached totals differ from its log
type Discrepancy struct {
	ProjectID uint   `json:"project_id"`
	Cached    Totals `json:"cached"`
	Replayed  Totals `json:"replayed"`
}

// Verify replays the log of a project and compares it with the cached
// totals. It returns nil when they agree.
func (l *Ledger) Verify(ctx context.Context, projectID uint) (*Discrepancy, error) {
	var ret *Discrepancy
	err := l.db.Transaction(ctx, false).Do(func(txn *database.Txn) error {
		store := l.db.Metadata()
		project, err := store.GetProject(projectID, false, txn.Metadata())
		if err != nil {
			if errors.Is(err, types.ErrNotFound) {
				return fmt.Errorf("%w: %d", ErrProjectNotFound, projectID)
			}
			return err
		}
		transactions, err := store.GetFundTransactions(projectID, txn.Metadata())
		if err != nil {
			return err
		}
		replayed := Fold(transactions)
		if replayed.Allocated.Equal(project.AllocatedAmount) &&
			replayed.Utilized.Equal(project.UtilizedAmount) {
			return nil
		}
		ret = &Discrepancy{
			ProjectID: projectID,
			Cached: Totals{
				Allocated: project.AllocatedAmount,
				Utilized:  project.UtilizedAmount,
			},
			Replayed: replayed,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if ret != nil {
		l.metrics.discrepancies.Inc()
		l.logger.Error(
			"ledger totals differ from fund log",
			"project_id", projectID,
			"cached_allocated", ret.Cached.Allocated.String(),
			"cached_utilized", ret.Cached.Utilized.String(),
			"replayed_allocated", ret.Replayed.Allocated.String(),
			"replayed_utilized", ret.Replayed.Utilized.String(),
		)
	}
	return ret, nil
}

// VerifyAll checks every project
func (l *Ledger) VerifyAll(ctx context.Context) ([]Discrepancy, error) {
	projectIDs, err := l.db.Metadata().GetProjectIDs(nil)
	if err != nil {
		return nil, err
	}
	var ret []Discrepancy
	for _, projectID := range projectIDs {
		if err := ctx.Err(); err != nil {
			return ret, err
		}
		d, err := l.Verify(ctx, projectID)
		if err != nil {
			// Deleted since listing
			if errors.Is(err, types.ErrNotFound) {
				continue
			}
			return ret, err
		}
		if d != nil {
			ret = append(ret, *d)
		}
	}
	return ret, nil
}
