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
	"fmt"

	"github.com/gramsetu/adarsh/database/types"
)

var (
	ErrProjectNotFound     = fmt.Errorf("%w: project", types.ErrNotFound)
	ErrTransactionNotFound = fmt.Errorf("%w: fund transaction", types.ErrNotFound)
	ErrInvalidAmount       = fmt.Errorf("%w: amount must be positive with at most 2 decimal places", types.ErrInvalidInput)
	ErrOverRelease         = fmt.Errorf("%w: utilized amount would exceed allocated amount", types.ErrInvariantViolation)
)
