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
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFromLocation(t *testing.T) {
	reg := prometheus.NewRegistry()
	d, err := New("gcs://evidence", nil, reg)
	require.NoError(t, err)
	assert.Equal(t, "evidence", d.bucketName)
	assert.Equal(t, reg, d.promRegistry)
	assert.NotNil(t, d.logger)
	assert.Equal(t, "https://storage.googleapis.com/evidence/v1/a.jpg", d.ObjectURL("v1/a.jpg"))

	_, err = New("evidence", nil, nil)
	require.Error(t, err)
	_, err = New("gcs://", nil, nil)
	require.Error(t, err)
}

func TestOptions(t *testing.T) {
	d, err := NewWithOptions(
		WithBucket("b"),
		WithCredentialsFile("/tmp/key.json"),
		WithTimeout(time.Second),
	)
	require.NoError(t, err)
	assert.Equal(t, "b", d.bucketName)
	assert.Equal(t, "/tmp/key.json", d.credentialsFile)
	assert.Equal(t, time.Second, d.timeout)
}

func TestStartValidation(t *testing.T) {
	d, err := NewWithOptions()
	require.NoError(t, err)
	require.ErrorContains(t, d.Start(), "bucket not set")

	d, err = NewWithOptions(
		WithBucket("b"),
		WithCredentialsFile(filepath.Join(t.TempDir(), "missing.json")),
	)
	require.NoError(t, err)
	require.ErrorContains(t, d.Start(), "credentials file")
}

func TestNotStarted(t *testing.T) {
	d, err := NewWithOptions(WithBucket("b"))
	require.NoError(t, err)
	_, err = d.PutMedia(context.Background(), "a.jpg", "image/jpeg", []byte{1})
	require.Error(t, err)
	_, err = d.GetMedia(context.Background(), "a.jpg")
	require.Error(t, err)
	require.NoError(t, d.Close())
}
