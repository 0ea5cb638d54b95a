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

package projects

import (
	"fmt"

	"github.com/gramsetu/adarsh/database/types"
)

var (
	ErrVillageNotFound    = fmt.Errorf("%w: village", types.ErrNotFound)
	ErrProjectNotFound    = fmt.Errorf("%w: project", types.ErrNotFound)
	ErrCheckpointNotFound = fmt.Errorf("%w: checkpoint", types.ErrNotFound)
	ErrSubmissionNotFound = fmt.Errorf("%w: submission", types.ErrNotFound)
	ErrAlreadyApproved    = fmt.Errorf("%w: submission is already approved", types.ErrConflict)
)
