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

// Package api serves the core operations as JSON over HTTP
package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"
)

type ApiConfig struct {
	ListenAddress string
}

// Api is the HTTP server
type Api struct {
	config     ApiConfig
	logger     *slog.Logger
	core       Core
	httpServer *http.Server
	mu         sync.Mutex
}

func New(cfg ApiConfig, core Core, logger *slog.Logger) *Api {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	logger = logger.With("component", "api")
	if cfg.ListenAddress == "" {
		cfg.ListenAddress = ":8080"
	}
	return &Api{
		config: cfg,
		logger: logger,
		core:   core,
	}
}

// Handler returns the routing table
func (a *Api) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", a.handleHealth)

	mux.HandleFunc("GET /api/v1/villages", a.handleListVillages)
	mux.HandleFunc("POST /api/v1/villages", a.handleCreateVillage)
	mux.HandleFunc("PUT /api/v1/villages/{id}/metrics", a.handleUpdateVillageMetrics)
	mux.HandleFunc("GET /api/v1/villages/{id}/score", a.handleGetScore)
	mux.HandleFunc("POST /api/v1/villages/{id}/score", a.handleRecomputeScore)

	mux.HandleFunc("POST /api/v1/projects", a.handleCreateProject)
	mux.HandleFunc("GET /api/v1/projects/{id}", a.handleGetProject)
	mux.HandleFunc("PATCH /api/v1/projects/{id}", a.handleUpdateProject)
	mux.HandleFunc("DELETE /api/v1/projects/{id}", a.handleDeleteProject)
	mux.HandleFunc("POST /api/v1/projects/{id}/checkpoints", a.handleAddCheckpoint)
	mux.HandleFunc("POST /api/v1/projects/{id}/allocations", a.handleAllocate)
	mux.HandleFunc("POST /api/v1/projects/{id}/releases", a.handleRelease)
	mux.HandleFunc("GET /api/v1/projects/{id}/fund-transactions", a.handleFundTransactions)
	mux.HandleFunc("PATCH /api/v1/fund-transactions/{id}", a.handleEditFundTransaction)
	mux.HandleFunc("GET /api/v1/ledger/verify", a.handleVerifyLedger)

	mux.HandleFunc("POST /api/v1/submissions", a.handleSubmitEvidence)
	mux.HandleFunc("POST /api/v1/submissions/{id}/review", a.handleReviewSubmission)
	mux.HandleFunc("POST /api/v1/sync/submissions", a.handleSyncSubmissions)
	mux.HandleFunc("POST /api/v1/votes", a.handleSubmitVote)
	mux.HandleFunc("POST /api/v1/sync/votes", a.handleSyncVotes)

	mux.HandleFunc("POST /api/v1/media", a.handleStoreMedia)
	mux.HandleFunc("GET /api/v1/media/{key...}", a.handleGetMedia)
	return mux
}

// Start binds the listener and serves in the background until ctx is done or
// Stop is called
func (a *Api) Start(ctx context.Context) error {
	a.mu.Lock()
	if a.httpServer != nil {
		a.mu.Unlock()
		return errors.New("server already started")
	}
	server := &http.Server{
		Addr:              a.config.ListenAddress,
		Handler:           a.Handler(),
		ReadHeaderTimeout: 60 * time.Second,
	}
	a.httpServer = server
	a.mu.Unlock()

	ln, err := net.Listen("tcp", server.Addr)
	if err != nil {
		a.mu.Lock()
		a.httpServer = nil
		a.mu.Unlock()
		return fmt.Errorf("failed to listen for API server: %w", err)
	}
	go func() {
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("API server error", "error", err)
		}
	}()
	a.logger.Info("API listener started on " + ln.Addr().String())

	go func() {
		<-ctx.Done()
		//nolint:contextcheck
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		//nolint:contextcheck
		if err := a.Stop(shutdownCtx); err != nil {
			a.logger.Error("failed to shutdown API server on context cancellation", "error", err)
		}
	}()
	return nil
}

// Stop gracefully shuts down the HTTP server
func (a *Api) Stop(ctx context.Context) error {
	a.mu.Lock()
	srv := a.httpServer
	a.httpServer = nil
	a.mu.Unlock()
	if srv == nil {
		return nil
	}
	a.logger.Debug("shutting down API server")
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown API server: %w", err)
	}
	return nil
}
