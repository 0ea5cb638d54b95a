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

package adarsh

import (
	"context"
	"fmt"

	"github.com/gramsetu/adarsh/ledger"
	"github.com/shopspring/decimal"
)

// FundRequest is the body of an allocation or release
type FundRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description,omitempty"`
	Approver    string          `json:"approver,omitempty"`
}

// FundEdit is the body of a transaction edit. A nil description keeps the
// current one.
type FundEdit struct {
	Amount      decimal.Decimal `json:"amount"`
	Description *string         `json:"description,omitempty"`
}

func (c *Core) AllocateFunds(ctx context.Context, projectID uint, req FundRequest) Result {
	fundTxn, err := c.ledger.Allocate(ctx, projectID, req.Amount, ledger.Meta{
		Description: req.Description,
		Approver:    req.Approver,
	})
	if err != nil {
		return failure(err)
	}
	return created("Funds allocated", fundTxn)
}

func (c *Core) ReleaseFunds(ctx context.Context, projectID uint, req FundRequest) Result {
	fundTxn, err := c.ledger.Release(ctx, projectID, req.Amount, ledger.Meta{
		Description: req.Description,
		Approver:    req.Approver,
	})
	if err != nil {
		return failure(err)
	}
	return created("Funds released", fundTxn)
}

func (c *Core) EditFundTransaction(ctx context.Context, txID uint, edit FundEdit) Result {
	fundTxn, err := c.ledger.EditTransaction(ctx, txID, edit.Amount, edit.Description)
	if err != nil {
		return failure(err)
	}
	return success("Fund transaction updated", fundTxn)
}

// GetFundTransactions returns the fund log of a project
func (c *Core) GetFundTransactions(ctx context.Context, projectID uint) Result {
	if _, err := c.projects.GetProject(ctx, projectID); err != nil {
		return failure(err)
	}
	log, err := c.db.Metadata().GetFundTransactions(projectID, nil)
	if err != nil {
		return failure(err)
	}
	return success(fmt.Sprintf("%d fund transactions", len(log)), log)
}

// VerifyLedger replays the fund log of every project. The entity lists the
// projects whose cached totals disagree with their log.
func (c *Core) VerifyLedger(ctx context.Context) Result {
	discrepancies, err := c.ledger.VerifyAll(ctx)
	if err != nil {
		return failure(err)
	}
	if discrepancies == nil {
		discrepancies = []ledger.Discrepancy{}
	}
	return success(fmt.Sprintf("%d discrepancies", len(discrepancies)), discrepancies)
}
