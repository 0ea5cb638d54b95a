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

package badger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/gramsetu/adarsh/database/plugin/blob"
	"github.com/gramsetu/adarsh/database/types"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	mediaDataPrefix = "media/data/"
	mediaTypePrefix = "media/type/"
)

// BlobStoreBadger stores evidence media in a local badger database. Data
// is kept in memory when no data directory is set.
type BlobStoreBadger struct {
	promRegistry   prometheus.Registerer
	db             *badger.DB
	logger         *slog.Logger
	metrics        *blob.Metrics
	gcTicker       *time.Ticker
	gcStopCh       chan struct{}
	gcWg           sync.WaitGroup
	dataDir        string
	urlPrefix      string
	blockCacheSize uint64
	indexCacheSize uint64
	gcEnabled      bool
}

// New creates and opens a media store
func New(opts ...BlobStoreBadgerOptionFunc) (*BlobStoreBadger, error) {
	d := &BlobStoreBadger{
		gcEnabled:      true,
		blockCacheSize: DefaultBlockCacheSize,
		indexCacheSize: DefaultIndexCacheSize,
		urlPrefix:      DefaultURLPrefix,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		d.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	var badgerOpts badger.Options
	if d.dataDir == "" {
		badgerOpts = badger.DefaultOptions("").
			WithInMemory(true)
		// Nothing to reclaim in memory
		d.gcEnabled = false
	} else {
		// Make sure that we can read data dir, and create if it doesn't exist
		if _, err := os.Stat(d.dataDir); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("failed to read data dir: %w", err)
			}
			if err := os.MkdirAll(d.dataDir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create data dir: %w", err)
			}
		}
		badgerOpts = badger.DefaultOptions(filepath.Join(d.dataDir, "media")).
			WithBlockCacheSize(int64(d.blockCacheSize)). //nolint:gosec // configured cache size
			WithIndexCacheSize(int64(d.indexCacheSize)). //nolint:gosec // configured cache size
			WithCompression(options.Snappy)
	}
	badgerOpts = badgerOpts.
		WithLogger(blob.NewLogger(d.logger)).
		// The default INFO logging is a bit verbose
		WithLoggingLevel(badger.WARNING)
	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, err
	}
	d.db = db
	d.metrics = blob.NewMetrics(d.promRegistry, "badger")
	if d.gcEnabled {
		d.gcTicker = time.NewTicker(5 * time.Minute)
		d.gcStopCh = make(chan struct{})
		d.gcWg.Add(1)
		go d.blobGc(d.gcTicker, d.gcStopCh)
	}
	return d, nil
}

func (d *BlobStoreBadger) blobGc(t *time.Ticker, stop <-chan struct{}) {
	defer d.gcWg.Done()
	for {
		select {
		case <-t.C:
			// Keep collecting while badger reports rewritten log files
			for {
				err := d.db.RunValueLogGC(0.5)
				if err == nil {
					continue
				}
				if !errors.Is(err, badger.ErrNoRewrite) {
					d.logger.Warn(
						"media store GC failure",
						"component", "media",
						"error", err,
					)
				}
				break
			}
		case <-stop:
			return
		}
	}
}

// Start implements the plugin.Plugin interface. The database is opened by New.
func (d *BlobStoreBadger) Start() error {
	return nil
}

// Stop implements the plugin.Plugin interface
func (d *BlobStoreBadger) Stop() error {
	return d.Close()
}

// Close stops GC and closes the database
func (d *BlobStoreBadger) Close() error {
	if d.gcTicker != nil {
		d.gcTicker.Stop()
		close(d.gcStopCh)
		d.gcWg.Wait()
		d.gcTicker = nil
	}
	if d.db == nil {
		return nil
	}
	err := d.db.Close()
	d.db = nil
	return err
}

// PutMedia stores an object and returns the URL it is served under
func (d *BlobStoreBadger) PutMedia(
	ctx context.Context,
	key string,
	contentType string,
	data []byte,
) (string, error) {
	if err := blob.ValidateMedia(key, data); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	err := d.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(mediaDataPrefix+key), data); err != nil {
			return err
		}
		return txn.Set([]byte(mediaTypePrefix+key), []byte(contentType))
	})
	if err != nil {
		return "", fmt.Errorf("store media %s: %w", key, err)
	}
	d.metrics.Puts.Inc()
	d.metrics.PutBytes.Add(float64(len(data)))
	return d.urlPrefix + key, nil
}

// GetMedia loads a stored object
func (d *BlobStoreBadger) GetMedia(ctx context.Context, key string) (*Media, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ret := &Media{Key: key}
	err := d.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(mediaDataPrefix + key))
		if err != nil {
			return err
		}
		if ret.Data, err = item.ValueCopy(nil); err != nil {
			return err
		}
		item, err = txn.Get([]byte(mediaTypePrefix + key))
		if err != nil {
			return err
		}
		contentType, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		ret.ContentType = string(contentType)
		return nil
	})
	d.metrics.Gets.Inc()
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			d.metrics.GetMisses.Inc()
			return nil, fmt.Errorf("media %s: %w", key, types.ErrBlobKeyNotFound)
		}
		return nil, fmt.Errorf("load media %s: %w", key, err)
	}
	return ret, nil
}

// Media is an alias so callers of this package need not import blob
type Media = blob.Media
