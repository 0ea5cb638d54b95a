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

package blob

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/gramsetu/adarsh/database/plugin"
	"github.com/gramsetu/adarsh/database/types"
)

// Media is a stored evidence object
type Media struct {
	Key         string
	ContentType string
	Data        []byte
}

// BlobStore keeps evidence media (checkpoint photos) outside the relational
// store. Submissions only reference the returned URL.
type BlobStore interface {
	Close() error
	PutMedia(ctx context.Context, key string, contentType string, data []byte) (string, error)
	GetMedia(ctx context.Context, key string) (*Media, error)
}

// MaxMediaSize is the largest object accepted by PutMedia
const MaxMediaSize = 16 << 20

var ErrMediaTooLarge = fmt.Errorf("%w: media exceeds %d bytes", types.ErrInvalidInput, MaxMediaSize)

var mediaKeyRegexp = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._/-]{0,254}$`)

// ValidateMedia checks a key and payload before it is stored
func ValidateMedia(key string, data []byte) error {
	if !mediaKeyRegexp.MatchString(key) || strings.Contains(key, "..") {
		return fmt.Errorf("%w: invalid media key %q", types.ErrInvalidInput, key)
	}
	if len(data) == 0 {
		return errors.Join(types.ErrInvalidInput, errors.New("empty media"))
	}
	if len(data) > MaxMediaSize {
		return ErrMediaTooLarge
	}
	return nil
}

// New returns the started blob plugin selected by name
func New(pluginName string) (BlobStore, error) {
	p, err := plugin.StartPlugin(plugin.PluginTypeBlob, pluginName)
	if err != nil {
		return nil, err
	}
	blobStore, ok := p.(BlobStore)
	if !ok {
		_ = p.Stop()
		return nil, fmt.Errorf(
			"plugin '%s' does not implement BlobStore interface",
			pluginName,
		)
	}
	return blobStore, nil
}
