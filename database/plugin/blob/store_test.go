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

package blob_test

import (
	"bytes"
	"testing"

	"github.com/gramsetu/adarsh/database/plugin/blob"
	"github.com/gramsetu/adarsh/database/types"
	"github.com/stretchr/testify/assert"
)

func TestValidateMedia(t *testing.T) {
	assert.NoError(t, blob.ValidateMedia("village-4/checkpoint-9.jpg", []byte{1}))
	assert.ErrorIs(t, blob.ValidateMedia("../etc/passwd", []byte{1}), types.ErrInvalidInput)
	assert.ErrorIs(t, blob.ValidateMedia("", []byte{1}), types.ErrInvalidInput)
	assert.ErrorIs(t, blob.ValidateMedia("a/../b.jpg", []byte{1}), types.ErrInvalidInput)
	assert.ErrorIs(t, blob.ValidateMedia("photo.jpg", nil), types.ErrInvalidInput)
	big := bytes.Repeat([]byte{0}, blob.MaxMediaSize+1)
	assert.ErrorIs(t, blob.ValidateMedia("photo.jpg", big), blob.ErrMediaTooLarge)
}

func TestNewUnknownPlugin(t *testing.T) {
	_, err := blob.New("does-not-exist")
	assert.Error(t, err)
}
