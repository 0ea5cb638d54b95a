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

package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gramsetu/adarsh/database/plugin"
	"github.com/gramsetu/adarsh/scoring"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

type ctxKey string

const configContextKey ctxKey = "adarsh.config"

const DefaultShutdownTimeout = "30s"

const (
	DefaultBlobPlugin     = "badger"
	DefaultMetadataPlugin = "sqlite"
)

func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configContextKey, cfg)
}

func FromContext(ctx context.Context) *Config {
	cfg, ok := ctx.Value(configContextKey).(*Config)
	if !ok {
		return nil
	}
	return cfg
}

// fileConfig is the layout of the config file. Plugin options live either in
// top-level blob/metadata sections or under database, where a "plugin" key
// also selects the plugin.
type fileConfig struct {
	Config   *Config                   `yaml:"config,omitempty"`
	Database *databaseConfig           `yaml:"database,omitempty"`
	Blob     map[string]map[string]any `yaml:"blob,omitempty"`
	Metadata map[string]map[string]any `yaml:"metadata,omitempty"`
}

type databaseConfig struct {
	Blob     map[string]any `yaml:"blob,omitempty"`
	Metadata map[string]any `yaml:"metadata,omitempty"`
}

type Config struct {
	DatabasePath         string `yaml:"databasePath"         split_words:"true"`
	MetadataPlugin       string `yaml:"metadataPlugin"       envconfig:"DATABASE_METADATA_PLUGIN"`
	BlobPlugin           string `yaml:"blobPlugin"           envconfig:"DATABASE_BLOB_PLUGIN"`
	BindAddr             string `yaml:"bindAddr"             split_words:"true"`
	ApiPort              uint   `yaml:"apiPort"              split_words:"true"`
	MetricsPort          uint   `yaml:"metricsPort"          split_words:"true"`
	RecomputeMode        string `yaml:"recomputeMode"        split_words:"true"`
	RecomputeConcurrency int    `yaml:"recomputeConcurrency" split_words:"true"`
	ShutdownTimeout      string `yaml:"shutdownTimeout"      split_words:"true"`
	Tracing              bool   `yaml:"tracing"`
	TracingStdout        bool   `yaml:"tracingStdout"        split_words:"true"`
}

// ShutdownDuration parses ShutdownTimeout
func (c *Config) ShutdownDuration() (time.Duration, error) {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = DefaultShutdownTimeout
	}
	ret, err := time.ParseDuration(c.ShutdownTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid shutdownTimeout %q: %w", c.ShutdownTimeout, err)
	}
	return ret, nil
}

func (c *Config) validate() error {
	switch scoring.Mode(c.RecomputeMode) {
	case scoring.ModeSync, scoring.ModeAsync:
	case "":
		c.RecomputeMode = string(scoring.ModeSync)
	default:
		return fmt.Errorf(
			"invalid recomputeMode: %q (must be 'sync' or 'async')",
			c.RecomputeMode,
		)
	}
	if c.RecomputeConcurrency < 0 {
		return fmt.Errorf("invalid recomputeConcurrency: %d", c.RecomputeConcurrency)
	}
	if _, err := c.ShutdownDuration(); err != nil {
		return err
	}
	return nil
}

func defaultConfig() *Config {
	return &Config{
		DatabasePath:         ".adarsh",
		MetadataPlugin:       DefaultMetadataPlugin,
		BlobPlugin:           DefaultBlobPlugin,
		BindAddr:             "0.0.0.0",
		ApiPort:              8080,
		MetricsPort:          9090,
		RecomputeMode:        string(scoring.ModeSync),
		RecomputeConcurrency: 4,
		ShutdownTimeout:      DefaultShutdownTimeout,
	}
}

var globalConfig = defaultConfig()

// LoadConfig builds the configuration from defaults, the config file and
// ADARSH_* environment variables, in that order. Without an explicit path
// ~/.adarsh/adarsh.yaml and then /etc/adarsh/adarsh.yaml are tried.
func LoadConfig(configFile string) (*Config, error) {
	cfg := defaultConfig()
	if configFile == "" {
		configFile = findConfigFile()
	}
	if configFile != "" {
		if err := loadFile(configFile, cfg); err != nil {
			return nil, err
		}
	}
	if err := envconfig.Process("adarsh", cfg); err != nil {
		return nil, fmt.Errorf("error processing environment: %+w", err)
	}
	if err := plugin.ProcessEnvVars(); err != nil {
		return nil, fmt.Errorf(
			"error processing plugin environment variables: %w",
			err,
		)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	globalConfig = cfg
	return cfg, nil
}

func GetConfig() *Config {
	return globalConfig
}

func findConfigFile() string {
	if homeDir, err := os.UserHomeDir(); err == nil {
		userPath := filepath.Join(homeDir, ".adarsh", "adarsh.yaml")
		if _, err := os.Stat(userPath); err == nil {
			return userPath
		}
	}
	systemPath := "/etc/adarsh/adarsh.yaml"
	if _, err := os.Stat(systemPath); err == nil {
		return systemPath
	}
	return ""
}

func loadFile(configFile string, cfg *Config) error {
	buf, err := os.ReadFile(configFile)
	if err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}
	var fileCfg fileConfig
	if err := yaml.Unmarshal(buf, &fileCfg); err != nil {
		return fmt.Errorf("error parsing config file: %w", err)
	}
	if fileCfg.Config != nil {
		// Overlay the config section onto the defaults
		configBytes, err := yaml.Marshal(fileCfg.Config)
		if err != nil {
			return fmt.Errorf("error re-marshalling config: %w", err)
		}
		if err := yaml.Unmarshal(configBytes, cfg); err != nil {
			return fmt.Errorf("error parsing config section: %w", err)
		}
	} else if err := yaml.Unmarshal(buf, cfg); err != nil {
		// Flat files hold the main config at the top level
		return fmt.Errorf("error parsing config file: %w", err)
	}

	pluginConfig := make(map[string]map[string]any)
	for pluginType, section := range map[string]map[string]map[string]any{
		"blob":     fileCfg.Blob,
		"metadata": fileCfg.Metadata,
	} {
		if section == nil {
			continue
		}
		pluginConfig[pluginType] = make(map[string]any, len(section))
		for name, options := range section {
			pluginConfig[pluginType][name] = options
		}
	}
	if fileCfg.Database != nil {
		if name := mergeDatabaseSection(pluginConfig, "blob", fileCfg.Database.Blob); name != "" {
			cfg.BlobPlugin = name
		}
		if name := mergeDatabaseSection(pluginConfig, "metadata", fileCfg.Database.Metadata); name != "" {
			cfg.MetadataPlugin = name
		}
	}
	if len(pluginConfig) > 0 {
		if err := plugin.ProcessConfig(pluginConfig); err != nil {
			return fmt.Errorf("error processing plugin config: %w", err)
		}
	}
	return nil
}

// mergeDatabaseSection folds a database.<pluginType> section into
// pluginConfig and returns the plugin it selects, if any
func mergeDatabaseSection(
	pluginConfig map[string]map[string]any,
	pluginType string,
	section map[string]any,
) string {
	if section == nil {
		return ""
	}
	var ret string
	if pluginVal, ok := section["plugin"].(string); ok {
		ret = pluginVal
	}
	if pluginConfig[pluginType] == nil {
		pluginConfig[pluginType] = make(map[string]any)
	}
	for k, v := range section {
		if k == "plugin" {
			continue
		}
		switch val := v.(type) {
		case map[string]any:
			pluginConfig[pluginType][k] = val
		case map[any]any:
			converted := make(map[string]any, len(val))
			for vk, vv := range val {
				if keyStr, ok := vk.(string); ok {
					converted[keyStr] = vv
				}
			}
			pluginConfig[pluginType][k] = converted
		default:
			fmt.Fprintf(os.Stderr, "warning: skipping %s config entry %q: expected map, got %T\n", pluginType, k, v)
		}
	}
	return ret
}
