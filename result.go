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
	"github.com/gramsetu/adarsh/database/types"
)

// Status is the transport-independent class of a Result
type Status string

const (
	StatusOK          Status = "ok"
	StatusCreated     Status = "created"
	StatusBadRequest  Status = "bad_request"
	StatusNotFound    Status = "not_found"
	StatusConflict    Status = "conflict"
	StatusServerError Status = "server_error"
)

// Result is returned by every Core operation. A success carries Message and
// Entity, a failure carries Error.
type Result struct {
	Message string `json:"message,omitempty"`
	Entity  any    `json:"entity,omitempty"`
	Error   string `json:"error,omitempty"`
	Status  Status `json:"-"`
	err     error
}

// OK reports whether the operation succeeded
func (r Result) OK() bool {
	return r.Status == StatusOK || r.Status == StatusCreated
}

// Err returns the underlying error of a failed operation
func (r Result) Err() error {
	return r.err
}

func success(message string, entity any) Result {
	return Result{Message: message, Entity: entity, Status: StatusOK}
}

func created(message string, entity any) Result {
	return Result{Message: message, Entity: entity, Status: StatusCreated}
}

func failure(err error) Result {
	return Result{Error: err.Error(), Status: StatusOf(err), err: err}
}

// StatusOf maps an error onto a status class
func StatusOf(err error) Status {
	switch types.Classify(err) {
	case types.KindNone:
		return StatusOK
	case types.KindInvalidInput:
		return StatusBadRequest
	case types.KindNotFound:
		return StatusNotFound
	case types.KindInvariantViolation, types.KindConflict:
		return StatusConflict
	default:
		return StatusServerError
	}
}
