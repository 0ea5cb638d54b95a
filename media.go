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
	"context"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/gramsetu/adarsh/database/plugin/blob"
)

// MediaRef is the entity returned after storing evidence media
type MediaRef struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// StoreMedia stores evidence bytes in the blob store under a generated key
// that keeps the extension of name
func (c *Core) StoreMedia(ctx context.Context, name string, contentType string, data []byte) Result {
	key := uuid.NewString() + strings.ToLower(path.Ext(name))
	url, err := c.db.Blob().PutMedia(ctx, key, contentType, data)
	if err != nil {
		return failure(err)
	}
	return created("Media stored", MediaRef{Key: key, URL: url})
}

// GetMedia reads stored evidence media
func (c *Core) GetMedia(ctx context.Context, key string) (*blob.Media, error) {
	return c.db.Blob().GetMedia(ctx, key)
}
