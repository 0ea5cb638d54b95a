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

package node

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/gramsetu/adarsh"
	"github.com/gramsetu/adarsh/internal/config"
	"github.com/gramsetu/adarsh/ledger"
)

// ErrLedgerDiscrepancy is returned by Verify when a project's totals differ
// from its fund log
var ErrLedgerDiscrepancy = errors.New("ledger discrepancies found")

// Verify replays every project's fund log and writes the discrepancies to w
func Verify(ctx context.Context, cfg *config.Config, logger *slog.Logger, w io.Writer) error {
	return runTask(ctx, cfg, logger, w, func(core *adarsh.Core) adarsh.Result {
		result := core.VerifyLedger(ctx)
		if discrepancies, ok := result.Entity.([]ledger.Discrepancy); ok && len(discrepancies) > 0 {
			result.Error = ErrLedgerDiscrepancy.Error()
		}
		return result
	})
}

// Recompute recomputes one village, or every village when villageID is 0
func Recompute(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	w io.Writer,
	villageID uint,
) error {
	return runTask(ctx, cfg, logger, w, func(core *adarsh.Core) adarsh.Result {
		if villageID == 0 {
			return core.RecomputeAll(ctx)
		}
		return core.RecomputeScore(ctx, villageID)
	})
}

// Villages writes every village with its score to w
func Villages(ctx context.Context, cfg *config.Config, logger *slog.Logger, w io.Writer) error {
	return runTask(ctx, cfg, logger, w, func(core *adarsh.Core) adarsh.Result {
		return core.ListVillages(ctx)
	})
}

// runTask opens the core without metrics, runs fn and writes its result to
// w as JSON
func runTask(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	w io.Writer,
	fn func(*adarsh.Core) adarsh.Result,
) (err error) {
	core, err := newCore(cfg, logger, nil)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, core.Stop())
	}()
	if err := ctx.Err(); err != nil {
		return err
	}
	result := fn(core)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	if result.Err() != nil {
		return result.Err()
	}
	if result.Error != "" {
		return errors.New(result.Error)
	}
	return nil
}
