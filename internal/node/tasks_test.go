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

package node

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/gramsetu/adarsh"
	"github.com/gramsetu/adarsh/database/models"
	"github.com/gramsetu/adarsh/internal/config"
	"github.com/gramsetu/adarsh/projects"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type taskOutput struct {
	Message string            `json:"message"`
	Entity  []json.RawMessage `json:"entity"`
	Error   string            `json:"error"`
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		DatabasePath:         t.TempDir(),
		MetadataPlugin:       config.DefaultMetadataPlugin,
		BlobPlugin:           config.DefaultBlobPlugin,
		RecomputeMode:        "sync",
		RecomputeConcurrency: 1,
		ShutdownTimeout:      "5s",
	}
}

func seedVillage(t *testing.T, cfg *config.Config) {
	t.Helper()
	core, err := adarsh.New(adarsh.NewConfig(adarsh.WithDatabasePath(cfg.DatabasePath)))
	require.NoError(t, err)
	result := core.CreateVillage(context.Background(), projects.VillageInput{Name: "Rampur"})
	require.True(t, result.OK(), result.Error)
	require.NoError(t, core.Stop())
}

func decodeOutput(t *testing.T, buf *bytes.Buffer) taskOutput {
	t.Helper()
	var out taskOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	return out
}

func TestVillagesAndRecompute(t *testing.T) {
	cfg := testConfig(t)
	seedVillage(t, cfg)

	var buf bytes.Buffer
	require.NoError(t, Villages(context.Background(), cfg, nil, &buf))
	out := decodeOutput(t, &buf)
	assert.Equal(t, "1 villages", out.Message)
	require.Len(t, out.Entity, 1)
	assert.Contains(t, string(out.Entity[0]), `"Rampur"`)

	buf.Reset()
	require.NoError(t, Recompute(context.Background(), cfg, nil, &buf, 0))
	out = decodeOutput(t, &buf)
	assert.Equal(t, "Recomputed 1 villages", out.Message)
	require.Len(t, out.Entity, 1)
	var score models.AdarshScore
	require.NoError(t, json.Unmarshal(out.Entity[0], &score))
	assert.NotZero(t, score.VillageID)
	assert.False(t, score.IsCandidate)

	buf.Reset()
	err := Recompute(context.Background(), cfg, nil, &buf, 42)
	require.Error(t, err)
	assert.NotEmpty(t, decodeOutput(t, &buf).Error)
}

func TestVerifyCleanLedger(t *testing.T) {
	cfg := testConfig(t)
	var buf bytes.Buffer
	require.NoError(t, Verify(context.Background(), cfg, nil, &buf))
	out := decodeOutput(t, &buf)
	assert.Equal(t, "0 discrepancies", out.Message)
	assert.Empty(t, out.Entity)
}

func TestInvalidShutdownTimeout(t *testing.T) {
	cfg := testConfig(t)
	cfg.ShutdownTimeout = "soon"
	var buf bytes.Buffer
	require.Error(t, Villages(context.Background(), cfg, nil, &buf))
	assert.Zero(t, buf.Len())
}
