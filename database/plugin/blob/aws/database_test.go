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
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/smithy-go"
	"github.com/gramsetu/adarsh/database/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFromLocation(t *testing.T) {
	reg := prometheus.NewRegistry()
	d, err := New("s3://evidence/photos/", nil, reg)
	require.NoError(t, err)
	assert.Equal(t, "evidence", d.bucket)
	assert.Equal(t, "photos/", d.prefix)
	assert.Equal(t, reg, d.promRegistry)
	assert.Equal(t, "https://evidence.s3.amazonaws.com/photos/a.jpg", d.ObjectURL("a.jpg"))

	d, err = New("s3://evidence", nil, nil)
	require.NoError(t, err)
	assert.Empty(t, d.prefix)

	for _, location := range []string{"evidence", "s3://", "s3:///photos"} {
		_, err = New(location, nil, nil)
		require.Error(t, err, location)
	}
}

func TestObjectURL(t *testing.T) {
	d, err := NewWithOptions(WithBucket("b"), WithRegion("ap-south-1"))
	require.NoError(t, err)
	assert.Equal(t, "https://b.s3.ap-south-1.amazonaws.com/k.png", d.ObjectURL("k.png"))

	d, err = NewWithOptions(
		WithBucket("b"),
		WithPrefix("/media"),
		WithEndpoint("http://localhost:9000/"),
		WithTimeout(time.Second),
	)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9000/b/media/k.png", d.ObjectURL("k.png"))
	assert.Equal(t, time.Second, d.timeout)

	WithPublicURL("https://cdn.example.org/")(d)
	assert.Equal(t, "https://cdn.example.org/media/k.png", d.ObjectURL("k.png"))
}

func TestStartValidation(t *testing.T) {
	d, err := NewWithOptions()
	require.NoError(t, err)
	require.ErrorContains(t, d.Start(), "bucket not set")

	d, err = NewWithOptions(WithBucket("b"), WithEndpoint("not a url"))
	require.NoError(t, err)
	require.ErrorContains(t, d.Start(), "invalid endpoint")

	d, err = NewWithOptions(WithBucket("b"), WithPublicURL("cdn"))
	require.NoError(t, err)
	require.ErrorContains(t, d.Start(), "invalid public URL")
}

func TestNotStarted(t *testing.T) {
	d, err := NewWithOptions(WithBucket("b"))
	require.NoError(t, err)
	_, err = d.PutMedia(context.Background(), "a.jpg", "image/jpeg", []byte{1})
	require.ErrorIs(t, err, types.ErrNoStoreAvailable)
	_, err = d.GetMedia(context.Background(), "a.jpg")
	require.ErrorIs(t, err, types.ErrNoStoreAvailable)
	_, err = d.PresignMedia(context.Background(), "a.jpg", time.Minute)
	require.ErrorIs(t, err, types.ErrNoStoreAvailable)
	require.NoError(t, d.Close())
}

func TestIsS3NotFound(t *testing.T) {
	assert.True(t, isS3NotFound(&smithy.GenericAPIError{Code: "NoSuchKey"}))
	assert.False(t, isS3NotFound(&smithy.GenericAPIError{Code: "AccessDenied"}))
	assert.False(t, isS3NotFound(errors.New("boom")))
}
