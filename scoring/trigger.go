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

package scoring

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/gramsetu/adarsh/event"
	"github.com/prometheus/client_golang/prometheus"
)

// Reasons passed with recompute requests
const (
	ReasonSubmissionApproved = "submission_approved"
	ReasonSubmissionReviewed = "submission_reviewed"
	ReasonSubmissionCreated  = "submission_created"
	ReasonVoteCreated        = "vote_created"
	ReasonProjectCreated     = "project_created"
	ReasonProjectUpdated     = "project_updated"
	ReasonProjectDeleted     = "project_deleted"
	ReasonMetricsUpdated     = "metrics_updated"
	ReasonFundTransaction    = "fund_transaction"
	ReasonBatchSync          = "batch_sync"
	ReasonManual             = "manual"
)

// Trigger requests a best-effort recompute. Implementations never report
// failures to the caller.
type Trigger interface {
	RequestRecompute(ctx context.Context, villageID uint, reason string)
}

// TriggerFunc adapts a function to the Trigger interface
type TriggerFunc func(ctx context.Context, villageID uint, reason string)

func (f TriggerFunc) RequestRecompute(ctx context.Context, villageID uint, reason string) {
	f(ctx, villageID, reason)
}

// RecomputeKey is the commit hook key of a village recompute, so a
// transaction requests at most one recompute per village
func RecomputeKey(villageID uint) string {
	return "recompute:" + strconv.FormatUint(uint64(villageID), 10)
}

// NopTrigger drops every request
var NopTrigger Trigger = TriggerFunc(func(context.Context, uint, string) {})

type Mode string

const (
	ModeSync  Mode = "sync"
	ModeAsync Mode = "async"
)

// asyncRecomputeTimeout bounds a recompute that runs on the event bus
const asyncRecomputeTimeout = 30 * time.Second

type DispatcherConfig struct {
	Engine       *Engine
	EventBus     *event.EventBus
	Logger       *slog.Logger
	PromRegistry prometheus.Registerer
	Mode         Mode
}

// Dispatcher is the production Trigger. In sync mode the engine runs inline.
// In async mode requests go through the event bus worker pool, falling back
// to an inline run when the queue is full.
type Dispatcher struct {
	engine   *Engine
	eventBus *event.EventBus
	logger   *slog.Logger
	metrics  *dispatcherMetrics
	mode     Mode
	subId    event.EventSubscriberId
	stopOnce sync.Once
}

func NewDispatcher(cfg DispatcherConfig) *Dispatcher {
	d := &Dispatcher{
		engine:   cfg.Engine,
		eventBus: cfg.EventBus,
		mode:     cfg.Mode,
		metrics:  newDispatcherMetrics(cfg.PromRegistry),
	}
	if cfg.Logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		d.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	} else {
		d.logger = cfg.Logger
	}
	d.logger = d.logger.With("component", "scoring")
	if d.mode == "" {
		d.mode = ModeSync
	}
	if d.mode == ModeAsync && d.eventBus == nil {
		d.logger.Warn("async recompute requested without an event bus, using sync mode")
		d.mode = ModeSync
	}
	if d.mode == ModeAsync {
		d.subId = d.eventBus.SubscribeFunc(
			event.ScoreRecomputeEventType,
			d.handleEvent,
		)
	}
	return d
}

func (d *Dispatcher) Mode() Mode {
	return d.mode
}

// RequestRecompute implements Trigger
func (d *Dispatcher) RequestRecompute(ctx context.Context, villageID uint, reason string) {
	d.metrics.requests.WithLabelValues(reason).Inc()
	if d.mode == ModeAsync {
		evt := event.NewEvent(
			event.ScoreRecomputeEventType,
			event.ScoreRecomputeEvent{VillageID: villageID, Reason: reason},
		)
		if d.eventBus.PublishAsync(event.ScoreRecomputeEventType, evt) {
			return
		}
		d.metrics.fallbacks.Inc()
	}
	d.run(ctx, villageID, reason)
}

func (d *Dispatcher) handleEvent(evt event.Event) {
	data, ok := evt.Data.(event.ScoreRecomputeEvent)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), asyncRecomputeTimeout)
	defer cancel()
	d.run(ctx, data.VillageID, data.Reason)
}

func (d *Dispatcher) run(ctx context.Context, villageID uint, reason string) {
	if _, err := d.engine.Recompute(ctx, villageID); err != nil {
		d.metrics.failures.WithLabelValues(reason).Inc()
		d.logger.Warn(
			"score recompute failed",
			"village_id", villageID,
			"reason", reason,
			"error", err,
		)
	}
}

// Stop unsubscribes an async dispatcher from the event bus
func (d *Dispatcher) Stop() {
	d.stopOnce.Do(func() {
		if d.mode == ModeAsync {
			d.eventBus.Unsubscribe(event.ScoreRecomputeEventType, d.subId)
		}
	})
}
