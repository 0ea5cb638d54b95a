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

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gramsetu/adarsh"
	"github.com/gramsetu/adarsh/database/models"
	"github.com/gramsetu/adarsh/database/plugin/blob"
	"github.com/gramsetu/adarsh/database/types"
	"github.com/gramsetu/adarsh/ingest"
	"github.com/gramsetu/adarsh/projects"
)

// ActorHeader carries the authenticated caller identity set by the gateway
const ActorHeader = "X-Actor-ID"

const maxBodySize = 8 << 20

// SubmissionBatch is the body of an offline submission sync
type SubmissionBatch struct {
	Submissions []ingest.SubmissionInput `json:"submissions"`
}

// VoteBatch is the body of an offline vote sync
type VoteBatch struct {
	Votes []ingest.VoteInput `json:"votes"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck,errchkjson
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, adarsh.Result{Error: message})
}

func httpStatus(status adarsh.Status) int {
	switch status {
	case adarsh.StatusOK:
		return http.StatusOK
	case adarsh.StatusCreated:
		return http.StatusCreated
	case adarsh.StatusBadRequest:
		return http.StatusBadRequest
	case adarsh.StatusNotFound:
		return http.StatusNotFound
	case adarsh.StatusConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (a *Api) writeResult(w http.ResponseWriter, r *http.Request, result adarsh.Result) {
	status := httpStatus(result.Status)
	if status == http.StatusInternalServerError {
		a.logger.Error(
			"request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", result.Error,
		)
		// Internal details stay in the log
		result.Error = "internal server error"
	}
	writeJSON(w, status, result)
}

// decode reads a JSON body. Failures are written to w and reported as false.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %s", err))
		return false
	}
	return true
}

// pathID parses a positive numeric path parameter
func pathID(w http.ResponseWriter, r *http.Request, name string) (uint, bool) {
	id, err := strconv.ParseUint(r.PathValue(name), 10, 0)
	if err != nil || id == 0 {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid %s", name))
		return 0, false
	}
	return uint(id), true
}

func actor(r *http.Request) string {
	return r.Header.Get(ActorHeader)
}

func (a *Api) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"is_healthy": true})
}

func (a *Api) handleListVillages(w http.ResponseWriter, r *http.Request) {
	page, err := pageFromQuery(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	result := a.core.ListVillages(r.Context())
	if villages, ok := result.Entity.([]adarsh.VillageSummary); ok {
		result.Entity = pageOf(w, villages, page)
	}
	a.writeResult(w, r, result)
}

func (a *Api) handleCreateVillage(w http.ResponseWriter, r *http.Request) {
	var input projects.VillageInput
	if !decode(w, r, &input) {
		return
	}
	a.writeResult(w, r, a.core.CreateVillage(r.Context(), input))
}

func (a *Api) handleUpdateVillageMetrics(w http.ResponseWriter, r *http.Request) {
	villageID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var input projects.MetricsInput
	if !decode(w, r, &input) {
		return
	}
	a.writeResult(w, r, a.core.UpdateVillageMetrics(r.Context(), villageID, input))
}

func (a *Api) handleGetScore(w http.ResponseWriter, r *http.Request) {
	villageID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	a.writeResult(w, r, a.core.GetScore(r.Context(), villageID))
}

func (a *Api) handleRecomputeScore(w http.ResponseWriter, r *http.Request) {
	villageID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	a.writeResult(w, r, a.core.RecomputeScore(r.Context(), villageID))
}

func (a *Api) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var input projects.ProjectInput
	if !decode(w, r, &input) {
		return
	}
	if input.Approver == "" {
		input.Approver = actor(r)
	}
	a.writeResult(w, r, a.core.CreateProject(r.Context(), input))
}

func (a *Api) handleGetProject(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	a.writeResult(w, r, a.core.GetProject(r.Context(), projectID))
}

func (a *Api) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var update projects.ProjectUpdate
	if !decode(w, r, &update) {
		return
	}
	a.writeResult(w, r, a.core.UpdateProject(r.Context(), projectID, update))
}

func (a *Api) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	a.writeResult(w, r, a.core.DeleteProject(r.Context(), projectID))
}

func (a *Api) handleAddCheckpoint(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var input projects.CheckpointInput
	if !decode(w, r, &input) {
		return
	}
	input.ProjectID = projectID
	a.writeResult(w, r, a.core.AddCheckpoint(r.Context(), input))
}

func (a *Api) fundRequest(w http.ResponseWriter, r *http.Request) (uint, adarsh.FundRequest, bool) {
	var req adarsh.FundRequest
	projectID, ok := pathID(w, r, "id")
	if !ok || !decode(w, r, &req) {
		return 0, req, false
	}
	if req.Approver == "" {
		req.Approver = actor(r)
	}
	return projectID, req, true
}

func (a *Api) handleAllocate(w http.ResponseWriter, r *http.Request) {
	projectID, req, ok := a.fundRequest(w, r)
	if !ok {
		return
	}
	a.writeResult(w, r, a.core.AllocateFunds(r.Context(), projectID, req))
}

func (a *Api) handleRelease(w http.ResponseWriter, r *http.Request) {
	projectID, req, ok := a.fundRequest(w, r)
	if !ok {
		return
	}
	a.writeResult(w, r, a.core.ReleaseFunds(r.Context(), projectID, req))
}

func (a *Api) handleFundTransactions(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	page, err := pageFromQuery(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	result := a.core.GetFundTransactions(r.Context(), projectID)
	if log, ok := result.Entity.([]models.FundTransaction); ok {
		result.Entity = pageOf(w, log, page)
	}
	a.writeResult(w, r, result)
}

func (a *Api) handleEditFundTransaction(w http.ResponseWriter, r *http.Request) {
	txID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var edit adarsh.FundEdit
	if !decode(w, r, &edit) {
		return
	}
	a.writeResult(w, r, a.core.EditFundTransaction(r.Context(), txID, edit))
}

func (a *Api) handleVerifyLedger(w http.ResponseWriter, r *http.Request) {
	a.writeResult(w, r, a.core.VerifyLedger(r.Context()))
}

func (a *Api) handleSubmitEvidence(w http.ResponseWriter, r *http.Request) {
	var input ingest.SubmissionInput
	if !decode(w, r, &input) {
		return
	}
	if input.SubmittedBy == "" {
		input.SubmittedBy = actor(r)
	}
	a.writeResult(w, r, a.core.SubmitEvidence(r.Context(), input))
}

func (a *Api) handleReviewSubmission(w http.ResponseWriter, r *http.Request) {
	submissionID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var input projects.ReviewInput
	if !decode(w, r, &input) {
		return
	}
	if input.Reviewer == "" {
		input.Reviewer = actor(r)
	}
	a.writeResult(w, r, a.core.ReviewSubmission(r.Context(), submissionID, input))
}

func (a *Api) handleSyncSubmissions(w http.ResponseWriter, r *http.Request) {
	var batch SubmissionBatch
	if !decode(w, r, &batch) {
		return
	}
	who := actor(r)
	for i := range batch.Submissions {
		if batch.Submissions[i].SubmittedBy == "" {
			batch.Submissions[i].SubmittedBy = who
		}
	}
	a.writeResult(w, r, a.core.SyncSubmissions(r.Context(), who, batch.Submissions))
}

func (a *Api) handleSubmitVote(w http.ResponseWriter, r *http.Request) {
	var input ingest.VoteInput
	if !decode(w, r, &input) {
		return
	}
	if input.SubmittedBy == "" {
		input.SubmittedBy = actor(r)
	}
	a.writeResult(w, r, a.core.SubmitVote(r.Context(), input))
}

func (a *Api) handleSyncVotes(w http.ResponseWriter, r *http.Request) {
	var batch VoteBatch
	if !decode(w, r, &batch) {
		return
	}
	who := actor(r)
	for i := range batch.Votes {
		if batch.Votes[i].SubmittedBy == "" {
			batch.Votes[i].SubmittedBy = who
		}
	}
	a.writeResult(w, r, a.core.SyncVotes(r.Context(), who, batch.Votes))
}

// handleStoreMedia accepts a multipart upload with the evidence in the
// "file" field
func (a *Api) handleStoreMedia(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, blob.MaxMediaSize+(1<<20))
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid upload: %s", err))
		return
	}
	defer file.Close()
	data, err := io.ReadAll(io.LimitReader(file, blob.MaxMediaSize+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid upload: %s", err))
		return
	}
	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	a.writeResult(w, r, a.core.StoreMedia(r.Context(), header.Filename, contentType, data))
}

func (a *Api) handleGetMedia(w http.ResponseWriter, r *http.Request) {
	media, err := a.core.GetMedia(r.Context(), r.PathValue("key"))
	if err != nil {
		status := httpStatus(adarsh.StatusOf(err))
		if status == http.StatusInternalServerError {
			a.logger.Error("failed to read media", "key", r.PathValue("key"), "error", err)
			writeError(w, status, "internal server error")
			return
		}
		if errors.Is(err, types.ErrInvalidInput) {
			status = http.StatusNotFound
		}
		writeError(w, status, "media not found")
		return
	}
	w.Header().Set("Content-Type", media.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(media.Data)))
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck
	w.Write(media.Data)
}
