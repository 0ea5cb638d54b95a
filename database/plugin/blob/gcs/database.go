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

package gcs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/gramsetu/adarsh/database/plugin/blob"
	"github.com/gramsetu/adarsh/database/types"
	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/api/option"
)

const publicURLPrefix = "https://storage.googleapis.com/"

// BlobStoreGCS stores evidence media in a Google Cloud Storage bucket
type BlobStoreGCS struct {
	promRegistry    prometheus.Registerer
	logger          *blob.Logger
	metrics         *blob.Metrics
	client          *storage.Client
	bucket          *storage.BucketHandle
	bucketName      string
	credentialsFile string
	timeout         time.Duration
}

// New creates a GCS media store from a "gcs://<bucket>" location
func New(
	location string,
	logger *slog.Logger,
	promRegistry prometheus.Registerer,
) (*BlobStoreGCS, error) {
	bucketName, _ := strings.CutPrefix(location, "gcs://")
	if bucketName == "" || bucketName == location {
		return nil, errors.New(
			"gcs media: bucket not set (expected location='gcs://<bucket>')",
		)
	}
	return NewWithOptions(
		WithBucket(bucketName),
		WithLogger(logger),
		WithPromRegistry(promRegistry),
	)
}

// NewWithOptions creates a GCS media store using options. The client is
// created by Start.
func NewWithOptions(opts ...BlobStoreGCSOptionFunc) (*BlobStoreGCS, error) {
	d := &BlobStoreGCS{
		timeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = blob.NewLogger(nil)
	}
	return d, nil
}

// Start implements the plugin.Plugin interface
func (d *BlobStoreGCS) Start() error {
	if d.bucketName == "" {
		return errors.New("gcs media: bucket not set")
	}
	if d.credentialsFile != "" {
		if _, err := os.Stat(d.credentialsFile); err != nil {
			return fmt.Errorf("gcs media: credentials file: %w", err)
		}
	}
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()
	clientOpts := []option.ClientOption{storage.WithDisabledClientMetrics()}
	if d.credentialsFile != "" {
		clientOpts = append(
			clientOpts,
			option.WithCredentialsFile(d.credentialsFile),
		)
	}
	client, err := storage.NewGRPCClient(ctx, clientOpts...)
	if err != nil {
		return fmt.Errorf("gcs media: failed in creating storage client: %w", err)
	}
	d.client = client
	d.bucket = client.Bucket(d.bucketName)
	d.metrics = blob.NewMetrics(d.promRegistry, "gcs")
	d.logger.Infof("using bucket %s", d.bucketName)
	return nil
}

// Stop implements the plugin.Plugin interface
func (d *BlobStoreGCS) Stop() error {
	return d.Close()
}

func (d *BlobStoreGCS) Close() error {
	if d.client == nil {
		return nil
	}
	err := d.client.Close()
	d.client = nil
	d.bucket = nil
	return err
}

// ObjectURL returns the public URL of a key in the configured bucket
func (d *BlobStoreGCS) ObjectURL(key string) string {
	return publicURLPrefix + d.bucketName + "/" + key
}

func (d *BlobStoreGCS) PutMedia(
	ctx context.Context,
	key string,
	contentType string,
	data []byte,
) (string, error) {
	if err := blob.ValidateMedia(key, data); err != nil {
		return "", err
	}
	if d.bucket == nil {
		return "", errors.New("gcs media: not started")
	}
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	w := d.bucket.Object(key).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("gcs media: write %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("gcs media: write %s: %w", key, err)
	}
	d.metrics.Puts.Inc()
	d.metrics.PutBytes.Add(float64(len(data)))
	return d.ObjectURL(key), nil
}

func (d *BlobStoreGCS) GetMedia(ctx context.Context, key string) (*blob.Media, error) {
	if d.bucket == nil {
		return nil, errors.New("gcs media: not started")
	}
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	d.metrics.Gets.Inc()
	r, err := d.bucket.Object(key).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			d.metrics.GetMisses.Inc()
			return nil, fmt.Errorf("media %s: %w", key, types.ErrBlobKeyNotFound)
		}
		return nil, fmt.Errorf("gcs media: read %s: %w", key, err)
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("gcs media: read %s: %w", key, err)
	}
	return &blob.Media{
		Key:         key,
		ContentType: r.Attrs.ContentType,
		Data:        data,
	}, nil
}
