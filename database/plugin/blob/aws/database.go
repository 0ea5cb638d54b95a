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

package aws

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/gramsetu/adarsh/database/plugin/blob"
	"github.com/gramsetu/adarsh/database/types"
	"github.com/prometheus/client_golang/prometheus"
)

// BlobStoreS3 stores evidence media in an S3 (or S3-compatible) bucket
type BlobStoreS3 struct {
	promRegistry prometheus.Registerer
	logger       *blob.Logger
	metrics      *blob.Metrics
	client       *s3.Client
	bucket       string
	prefix       string
	region       string
	endpoint     string
	publicURL    string
	timeout      time.Duration
}

// New creates an S3 media store from a "s3://<bucket>[/prefix]" location
func New(
	location string,
	logger *slog.Logger,
	promRegistry prometheus.Registerer,
) (*BlobStoreS3, error) {
	path, ok := strings.CutPrefix(location, "s3://")
	if !ok {
		return nil, errors.New(
			"s3 media: expected location='s3://<bucket>[/prefix]'",
		)
	}
	bucket, keyPrefix, _ := strings.Cut(path, "/")
	if bucket == "" {
		return nil, errors.New("s3 media: bucket not set")
	}
	return NewWithOptions(
		WithBucket(bucket),
		WithPrefix(keyPrefix),
		WithLogger(logger),
		WithPromRegistry(promRegistry),
	)
}

// NewWithOptions creates an S3 media store using options. AWS configuration
// is loaded by Start.
func NewWithOptions(opts ...BlobStoreS3OptionFunc) (*BlobStoreS3, error) {
	d := &BlobStoreS3{
		timeout: 60 * time.Second,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = blob.NewLogger(nil)
	}
	d.prefix = normalizePrefix(d.prefix)
	return d, nil
}

func normalizePrefix(prefix string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return ""
	}
	return prefix + "/"
}

// Start implements the plugin.Plugin interface
func (d *BlobStoreS3) Start() error {
	if d.bucket == "" {
		return errors.New("s3 media: bucket not set")
	}
	for name, raw := range map[string]string{"endpoint": d.endpoint, "public URL": d.publicURL} {
		if raw == "" {
			continue
		}
		if _, err := url.ParseRequestURI(raw); err != nil {
			return fmt.Errorf("s3 media: invalid %s: %w", name, err)
		}
	}
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()
	awsCfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return fmt.Errorf("s3 media: load default AWS config: %w", err)
	}
	if d.region != "" {
		awsCfg.Region = d.region
	}
	d.client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if d.endpoint != "" {
			// S3-compatible servers such as minio need path-style addressing
			o.BaseEndpoint = aws.String(d.endpoint)
			o.UsePathStyle = true
		}
	})
	d.metrics = blob.NewMetrics(d.promRegistry, "s3")
	d.logger.Infof("using bucket %s", d.bucket)
	return nil
}

// Stop implements the plugin.Plugin interface
func (d *BlobStoreS3) Stop() error {
	return d.Close()
}

// Close drops the client. The S3 client holds no connections that need
// closing.
func (d *BlobStoreS3) Close() error {
	d.client = nil
	return nil
}

func (d *BlobStoreS3) fullKey(key string) string {
	return d.prefix + key
}

// ObjectURL returns the URL stored on submissions for a key. A configured
// public URL (usually a CDN in front of the bucket) takes precedence.
func (d *BlobStoreS3) ObjectURL(key string) string {
	if d.publicURL != "" {
		return strings.TrimSuffix(d.publicURL, "/") + "/" + d.fullKey(key)
	}
	if d.endpoint != "" {
		return strings.TrimSuffix(d.endpoint, "/") + "/" + d.bucket + "/" + d.fullKey(key)
	}
	if d.region != "" {
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", d.bucket, d.region, d.fullKey(key))
	}
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", d.bucket, d.fullKey(key))
}

func (d *BlobStoreS3) PutMedia(
	ctx context.Context,
	key string,
	contentType string,
	data []byte,
) (string, error) {
	if err := blob.ValidateMedia(key, data); err != nil {
		return "", err
	}
	if d.client == nil {
		return "", types.ErrNoStoreAvailable
	}
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	input := &s3.PutObjectInput{
		Bucket: aws.String(d.bucket),
		Key:    aws.String(d.fullKey(key)),
		Body:   bytes.NewReader(data),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := d.client.PutObject(ctx, input); err != nil {
		d.logger.Errorf("s3 put %q failed: %v", key, err)
		return "", fmt.Errorf("s3 media: write %s: %w", key, err)
	}
	d.metrics.Puts.Inc()
	d.metrics.PutBytes.Add(float64(len(data)))
	d.logger.Debugf("s3 put %q ok (%d bytes)", key, len(data))
	return d.ObjectURL(key), nil
}

func (d *BlobStoreS3) GetMedia(ctx context.Context, key string) (*blob.Media, error) {
	if d.client == nil {
		return nil, types.ErrNoStoreAvailable
	}
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	d.metrics.Gets.Inc()
	out, err := d.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(d.bucket),
		Key:    aws.String(d.fullKey(key)),
	})
	if err != nil {
		if isS3NotFound(err) {
			d.metrics.GetMisses.Inc()
			return nil, fmt.Errorf("media %s: %w", key, types.ErrBlobKeyNotFound)
		}
		d.logger.Errorf("s3 get %q failed: %v", key, err)
		return nil, fmt.Errorf("s3 media: read %s: %w", key, err)
	}
	defer out.Body.Close()
	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("s3 media: read %s: %w", key, err)
	}
	return &blob.Media{
		Key:         key,
		ContentType: aws.ToString(out.ContentType),
		Data:        data,
	}, nil
}

// PresignMedia returns a time-limited download URL for a private bucket
func (d *BlobStoreS3) PresignMedia(
	ctx context.Context,
	key string,
	expires time.Duration,
) (string, error) {
	if d.client == nil {
		return "", types.ErrNoStoreAvailable
	}
	req, err := s3.NewPresignClient(d.client).PresignGetObject(
		ctx,
		&s3.GetObjectInput{
			Bucket: aws.String(d.bucket),
			Key:    aws.String(d.fullKey(key)),
		},
		s3.WithPresignExpires(expires),
	)
	if err != nil {
		return "", fmt.Errorf("s3 media: presign %s: %w", key, err)
	}
	return req.URL, nil
}

func isS3NotFound(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorCode() == "NoSuchKey" {
		return true
	}
	var noSuchKey *s3types.NoSuchKey
	return errors.As(err, &noSuchKey)
}
