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

// Package adarsh wires the fund ledger, score engine and ingestion layer of
// the village readiness core over a shared database and event bus.
package adarsh

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/gramsetu/adarsh/database"
	"github.com/gramsetu/adarsh/event"
	"github.com/gramsetu/adarsh/ingest"
	"github.com/gramsetu/adarsh/ledger"
	"github.com/gramsetu/adarsh/projects"
	"github.com/gramsetu/adarsh/scoring"
)

type Core struct {
	config        Config
	db            *database.Database
	eventBus      *event.EventBus
	engine        *scoring.Engine
	dispatcher    *scoring.Dispatcher
	ledger        *ledger.Ledger
	ingestor      *ingest.Ingestor
	projects      *projects.Service
	shutdownFuncs []func(context.Context) error
	stopOnce      sync.Once
}

// New opens the database and builds every component. Call Stop to release
// them.
func New(cfg Config) (*Core, error) {
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	c := &Core{
		config: cfg,
	}
	// Configure tracing
	if c.config.tracing {
		if err := c.setupTracing(); err != nil {
			return nil, err
		}
	}
	db, err := database.New(&database.Config{
		DataDir:        cfg.dataDir,
		Logger:         cfg.logger,
		PromRegistry:   cfg.promRegistry,
		MetadataPlugin: cfg.metadataPlugin,
		BlobPlugin:     cfg.blobPlugin,
	})
	if err != nil {
		_ = c.runShutdownFuncs(context.Background())
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	c.db = db
	c.eventBus = event.NewEventBus(cfg.promRegistry, cfg.logger)
	c.engine = scoring.NewEngine(scoring.EngineConfig{
		Database:     db,
		Logger:       cfg.logger,
		PromRegistry: cfg.promRegistry,
		EventBus:     c.eventBus,
	})
	c.dispatcher = scoring.NewDispatcher(scoring.DispatcherConfig{
		Engine:       c.engine,
		EventBus:     c.eventBus,
		Logger:       cfg.logger,
		PromRegistry: cfg.promRegistry,
		Mode:         cfg.recomputeMode,
	})
	c.ledger = ledger.New(ledger.LedgerConfig{
		Database:     db,
		Logger:       cfg.logger,
		PromRegistry: cfg.promRegistry,
		EventBus:     c.eventBus,
		Trigger:      c.dispatcher,
	})
	c.ingestor = ingest.New(ingest.IngestConfig{
		Database:             db,
		Logger:               cfg.logger,
		PromRegistry:         cfg.promRegistry,
		EventBus:             c.eventBus,
		Trigger:              c.dispatcher,
		RecomputeConcurrency: cfg.recomputeConcurrency,
	})
	c.projects = projects.New(projects.ProjectsConfig{
		Database:     db,
		Logger:       cfg.logger,
		PromRegistry: cfg.promRegistry,
		Ledger:       c.ledger,
		Trigger:      c.dispatcher,
	})
	cfg.logger.Info(
		"core started",
		"component", "adarsh",
		"data_dir", db.DataDir(),
		"recompute_mode", c.dispatcher.Mode(),
	)
	return c, nil
}

// EventBus returns the bus that carries score, fund and sync events
func (c *Core) EventBus() *event.EventBus {
	return c.eventBus
}

func (c *Core) Database() *database.Database {
	return c.db
}

// Stop shuts the components down in dependency order
func (c *Core) Stop() error {
	var err error
	c.stopOnce.Do(func() {
		err = c.shutdown()
	})
	return err
}

func (c *Core) shutdown() error {
	shutdownTimeout := 30 * time.Second
	if c.config.shutdownTimeout > 0 {
		shutdownTimeout = c.config.shutdownTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	c.config.logger.Debug("starting graceful shutdown", "component", "adarsh")
	var err error
	// Stop accepting recomputes before the bus drains its workers
	if c.dispatcher != nil {
		c.dispatcher.Stop()
	}
	if c.eventBus != nil {
		c.eventBus.Stop()
	}
	if c.db != nil {
		if closeErr := c.db.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("database close: %w", closeErr))
		}
	}
	if fnErr := c.runShutdownFuncs(ctx); fnErr != nil {
		err = errors.Join(err, fnErr)
	}
	c.config.logger.Debug("graceful shutdown complete", "component", "adarsh")
	return err
}

func (c *Core) runShutdownFuncs(ctx context.Context) error {
	var err error
	for _, fn := range c.shutdownFuncs {
		if fnErr := fn(ctx); fnErr != nil {
			err = errors.Join(err, fmt.Errorf("shutdown function: %w", fnErr))
		}
	}
	c.shutdownFuncs = nil
	return err
}
