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

package plugin_test

import (
	"errors"
	"testing"

	"github.com/gramsetu/adarsh/database/plugin"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockPlugin struct {
	started bool
}

func (m *mockPlugin) Start() error { m.started = true; return nil }
func (m *mockPlugin) Stop() error  { return nil }

type testOptions struct {
	dataDir   string
	cacheSize uint64
	gc        bool
	workers   int
}

func registerTestPlugin(t *testing.T, pluginType plugin.PluginType) (string, *testOptions) {
	t.Helper()
	opts := &testOptions{}
	name := "test-" + t.Name()
	plugin.Register(plugin.PluginEntry{
		Type:               pluginType,
		Name:               name,
		NewFromOptionsFunc: func() plugin.Plugin { return &mockPlugin{} },
		Options: []plugin.PluginOption{
			{Name: "data-dir", Type: plugin.PluginOptionTypeString, DefaultValue: ".adarsh", Dest: &opts.dataDir},
			{Name: "cache-size", Type: plugin.PluginOptionTypeUint, DefaultValue: uint64(10), Dest: &opts.cacheSize},
			{Name: "gc", Type: plugin.PluginOptionTypeBool, DefaultValue: true, Dest: &opts.gc},
			{Name: "workers", Type: plugin.PluginOptionTypeInt, DefaultValue: 2, Dest: &opts.workers},
		},
	})
	return name, opts
}

func TestRegisterAndGet(t *testing.T) {
	name, _ := registerTestPlugin(t, plugin.PluginTypeBlob)

	p := plugin.GetPlugin(plugin.PluginTypeBlob, name)
	require.NotNil(t, p)
	assert.IsType(t, &mockPlugin{}, p)

	// Same name under a different type is not found
	assert.Nil(t, plugin.GetPlugin(plugin.PluginTypeMetadata, name))
	assert.Nil(t, plugin.GetPlugin(plugin.PluginTypeBlob, "non-existent-"+t.Name()))

	found := false
	for _, entry := range plugin.GetPlugins(plugin.PluginTypeBlob) {
		if entry.Name == name {
			found = true
		}
	}
	assert.True(t, found, "plugin not in GetPlugins list")
}

func TestStartPlugin(t *testing.T) {
	name, _ := registerTestPlugin(t, plugin.PluginTypeMetadata)
	p, err := plugin.StartPlugin(plugin.PluginTypeMetadata, name)
	require.NoError(t, err)
	assert.True(t, p.(*mockPlugin).started)

	_, err = plugin.StartPlugin(plugin.PluginTypeMetadata, "missing-"+t.Name())
	require.Error(t, err)
}

func TestStartPluginDeferredError(t *testing.T) {
	name := "broken-" + t.Name()
	plugin.Register(plugin.PluginEntry{
		Type: plugin.PluginTypeBlob,
		Name: name,
		NewFromOptionsFunc: func() plugin.Plugin {
			return plugin.NewErrorPlugin(errors.New("bucket not set"))
		},
	})
	_, err := plugin.StartPlugin(plugin.PluginTypeBlob, name)
	require.ErrorContains(t, err, "bucket not set")
}

func TestSetPluginOption(t *testing.T) {
	name, opts := registerTestPlugin(t, plugin.PluginTypeMetadata)

	require.NoError(t, plugin.SetPluginOption(plugin.PluginTypeMetadata, name, "data-dir", "/tmp/x"))
	assert.Equal(t, "/tmp/x", opts.dataDir)
	require.NoError(t, plugin.SetPluginOption(plugin.PluginTypeMetadata, name, "cache-size", 64))
	assert.Equal(t, uint64(64), opts.cacheSize)
	require.NoError(t, plugin.SetPluginOption(plugin.PluginTypeMetadata, name, "gc", false))
	assert.False(t, opts.gc)

	assert.Error(t, plugin.SetPluginOption(plugin.PluginTypeMetadata, name, "data-dir", 123))
	assert.Error(t, plugin.SetPluginOption(plugin.PluginTypeMetadata, name, "cache-size", -1))
	// Unknown options are ignored
	assert.NoError(t, plugin.SetPluginOption(plugin.PluginTypeMetadata, name, "does-not-exist", "x"))
	assert.Error(t, plugin.SetPluginOption(plugin.PluginTypeMetadata, "nonexistent", "data-dir", "x"))
}

func TestProcessEnvVars(t *testing.T) {
	name, opts := registerTestPlugin(t, plugin.PluginTypeBlob)
	prefix := "ADARSH_DATABASE_BLOB_TEST_" + "TESTPROCESSENVVARS_"
	require.Equal(t, "test-TestProcessEnvVars", name)
	t.Setenv(prefix+"DATA_DIR", "/srv/media")
	t.Setenv(prefix+"WORKERS", "8")
	require.NoError(t, plugin.ProcessEnvVars())
	assert.Equal(t, "/srv/media", opts.dataDir)
	assert.Equal(t, 8, opts.workers)
}

func TestProcessConfig(t *testing.T) {
	name, opts := registerTestPlugin(t, plugin.PluginTypeMetadata)
	err := plugin.ProcessConfig(map[string]map[string]any{
		"metadata": {
			name: map[string]any{"data-dir": "/var/lib/adarsh", "cache-size": 5},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/adarsh", opts.dataDir)
	assert.Equal(t, uint64(5), opts.cacheSize)
}

func TestPopulateCmdlineOptions(t *testing.T) {
	name, opts := registerTestPlugin(t, plugin.PluginTypeBlob)
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	require.NoError(t, plugin.PopulateCmdlineOptions(fs))
	require.NoError(t, fs.Parse([]string{"--blob-" + name + "-data-dir=/data"}))
	assert.Equal(t, "/data", opts.dataDir)
	assert.True(t, opts.gc)
}
