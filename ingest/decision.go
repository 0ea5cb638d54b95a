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

// Package ingest applies submissions and priority votes that may be delivered
// more than once. Each item is resolved against existing rows by its client
// id first and by its content second.
package ingest

import "github.com/gramsetu/adarsh/database/models"

type DecisionKind int

const (
	// Insert creates a new row
	Insert DecisionKind = iota
	// MergeInto adds the item to the counter of an existing row
	MergeInto
	// NoOp returns an existing row untouched
	NoOp
)

func (k DecisionKind) String() string {
	switch k {
	case Insert:
		return "insert"
	case MergeInto:
		return "merge"
	case NoOp:
		return "noop"
	default:
		return "unknown"
	}
}

// Decision is the outcome of Resolve. ExistingID is set for MergeInto and
// NoOp.
type Decision struct {
	Kind       DecisionKind
	ExistingID uint
}

// Match is a row found by a lookup. A zero ID means nothing was found.
type Match struct {
	ID       uint
	ClientID string
}

func (m Match) Found() bool {
	return m.ID != 0
}

// Resolve decides how an item with the given client id is applied.
// byClient is the row already bound to the client id, bySemantic the row
// with the same content key. Submissions have no content key and never merge.
func Resolve(
	family models.IngestFamily,
	clientID string,
	byClient Match,
	bySemantic Match,
) Decision {
	if byClient.Found() {
		return Decision{Kind: NoOp, ExistingID: byClient.ID}
	}
	if family != models.IngestFamilyVote || !bySemantic.Found() {
		return Decision{Kind: Insert}
	}
	if bySemantic.ClientID == clientID {
		return Decision{Kind: NoOp, ExistingID: bySemantic.ID}
	}
	return Decision{Kind: MergeInto, ExistingID: bySemantic.ID}
}
