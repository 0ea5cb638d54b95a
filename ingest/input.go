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

package ingest

import (
	"fmt"
	"strings"
	"time"

	"github.com/gramsetu/adarsh/database/types"
)

// SubmissionInput is checkpoint evidence as sent by a client
type SubmissionInput struct {
	ClientID     string     `json:"client_id"`
	CheckpointID uint       `json:"checkpoint_id"`
	SubmittedBy  string     `json:"submitted_by,omitempty"`
	Notes        string     `json:"notes,omitempty"`
	PhotoURL     string     `json:"photo_url,omitempty"`
	Latitude     *float64   `json:"latitude,omitempty"`
	Longitude    *float64   `json:"longitude,omitempty"`
	CapturedAt   *time.Time `json:"captured_at,omitempty"`
}

func (s *SubmissionInput) Validate() error {
	if s.CheckpointID == 0 {
		return fmt.Errorf("%w: checkpoint_id is required", types.ErrInvalidInput)
	}
	if s.Latitude != nil && (*s.Latitude < -90 || *s.Latitude > 90) {
		return fmt.Errorf("%w: latitude out of range", types.ErrInvalidInput)
	}
	if s.Longitude != nil && (*s.Longitude < -180 || *s.Longitude > 180) {
		return fmt.Errorf("%w: longitude out of range", types.ErrInvalidInput)
	}
	if (s.Latitude == nil) != (s.Longitude == nil) {
		return fmt.Errorf("%w: latitude and longitude go together", types.ErrInvalidInput)
	}
	return validateClientID(s.ClientID)
}

// VoteInput is a priority vote as sent by a client
type VoteInput struct {
	ClientID               string `json:"client_id"`
	VillageID              uint   `json:"village_id"`
	RequiredInfrastructure string `json:"required_infrastructure"`
	Description            string `json:"description,omitempty"`
	SubmittedBy            string `json:"submitted_by,omitempty"`
}

func (v *VoteInput) Validate() error {
	if v.VillageID == 0 {
		return fmt.Errorf("%w: village_id is required", types.ErrInvalidInput)
	}
	name := strings.TrimSpace(v.RequiredInfrastructure)
	if name == "" {
		return fmt.Errorf("%w: required_infrastructure is required", types.ErrInvalidInput)
	}
	if len(name) > 255 {
		return fmt.Errorf("%w: required_infrastructure is too long", types.ErrInvalidInput)
	}
	return validateClientID(v.ClientID)
}

func validateClientID(clientID string) error {
	if len(clientID) > 255 {
		return fmt.Errorf("%w: client_id is too long", types.ErrInvalidInput)
	}
	return nil
}
