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

package plugin

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"
)

type PluginType int

const (
	PluginTypeMetadata PluginType = iota + 1
	PluginTypeBlob
)

// EnvPrefix is prepended to plugin option environment variables
const EnvPrefix = "ADARSH_DATABASE"

func PluginTypeName(pluginType PluginType) string {
	switch pluginType {
	case PluginTypeMetadata:
		return "metadata"
	case PluginTypeBlob:
		return "blob"
	default:
		return ""
	}
}

type PluginOptionType int

const (
	PluginOptionTypeString PluginOptionType = iota + 1
	PluginOptionTypeBool
	PluginOptionTypeInt
	PluginOptionTypeUint
)

// PluginOption describes a configurable value of a plugin. Dest must point
// at a variable of the matching Go type.
type PluginOption struct {
	Name         string
	Type         PluginOptionType
	Description  string
	DefaultValue any
	Dest         any
}

type PluginEntry struct {
	Type               PluginType
	Name               string
	Description        string
	NewFromOptionsFunc func() Plugin
	Options            []PluginOption
}

var pluginEntries []PluginEntry

// Register adds a plugin to the registry. It is meant to be called from
// package init functions.
func Register(pluginEntry PluginEntry) {
	pluginEntries = append(pluginEntries, pluginEntry)
}

// GetPlugins returns the registered plugins of the given type
func GetPlugins(pluginType PluginType) []PluginEntry {
	ret := []PluginEntry{}
	for _, p := range pluginEntries {
		if p.Type == pluginType {
			ret = append(ret, p)
		}
	}
	return ret
}

// GetPlugin builds a new instance of the named plugin from its current
// options. It returns nil when no such plugin is registered.
func GetPlugin(pluginType PluginType, name string) Plugin {
	for _, p := range pluginEntries {
		if p.Type == pluginType && p.Name == name {
			return p.NewFromOptionsFunc()
		}
	}
	return nil
}

func optionFlagName(p PluginEntry, opt PluginOption) string {
	return fmt.Sprintf(
		"%s-%s-%s",
		PluginTypeName(p.Type),
		p.Name,
		opt.Name,
	)
}

func optionEnvName(p PluginEntry, opt PluginOption) string {
	name := strings.Join(
		[]string{
			EnvPrefix,
			PluginTypeName(p.Type),
			p.Name,
			opt.Name,
		},
		"_",
	)
	return strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}

// PopulateCmdlineOptions adds a flag for every plugin option to fs
func PopulateCmdlineOptions(fs *pflag.FlagSet) error {
	for _, p := range pluginEntries {
		for _, opt := range p.Options {
			flagName := optionFlagName(p, opt)
			switch opt.Type {
			case PluginOptionTypeString:
				dest, ok := opt.Dest.(*string)
				if !ok {
					return fmt.Errorf("option %s: destination is not *string", flagName)
				}
				def, _ := opt.DefaultValue.(string)
				fs.StringVar(dest, flagName, def, opt.Description)
			case PluginOptionTypeBool:
				dest, ok := opt.Dest.(*bool)
				if !ok {
					return fmt.Errorf("option %s: destination is not *bool", flagName)
				}
				def, _ := opt.DefaultValue.(bool)
				fs.BoolVar(dest, flagName, def, opt.Description)
			case PluginOptionTypeInt:
				dest, ok := opt.Dest.(*int)
				if !ok {
					return fmt.Errorf("option %s: destination is not *int", flagName)
				}
				def, _ := opt.DefaultValue.(int)
				fs.IntVar(dest, flagName, def, opt.Description)
			case PluginOptionTypeUint:
				dest, ok := opt.Dest.(*uint64)
				if !ok {
					return fmt.Errorf("option %s: destination is not *uint64", flagName)
				}
				def, _ := opt.DefaultValue.(uint64)
				fs.Uint64Var(dest, flagName, def, opt.Description)
			default:
				return fmt.Errorf("option %s: unknown option type %d", flagName, opt.Type)
			}
		}
	}
	return nil
}

// ProcessEnvVars applies plugin option values from the environment. For
// example ADARSH_DATABASE_METADATA_SQLITE_DATA_DIR sets the data-dir option
// of the sqlite metadata plugin.
func ProcessEnvVars() error {
	for _, p := range pluginEntries {
		for _, opt := range p.Options {
			envName := optionEnvName(p, opt)
			value, ok := os.LookupEnv(envName)
			if !ok {
				continue
			}
			if err := setOptionFromString(opt, value); err != nil {
				return fmt.Errorf("%s: %w", envName, err)
			}
		}
	}
	return nil
}

// ProcessConfig applies plugin option values from a config file. The outer
// map is keyed by plugin type name, the next level by plugin name.
func ProcessConfig(pluginConfig map[string]map[string]any) error {
	for _, p := range pluginEntries {
		typeConfig, ok := pluginConfig[PluginTypeName(p.Type)]
		if !ok {
			continue
		}
		rawPluginConfig, ok := typeConfig[p.Name]
		if !ok {
			continue
		}
		optionValues, ok := rawPluginConfig.(map[string]any)
		if !ok {
			return fmt.Errorf(
				"%s plugin '%s': expected option map, got %T",
				PluginTypeName(p.Type),
				p.Name,
				rawPluginConfig,
			)
		}
		for _, opt := range p.Options {
			value, ok := optionValues[opt.Name]
			if !ok {
				continue
			}
			if err := SetPluginOption(p.Type, p.Name, opt.Name, normalizeConfigValue(opt, value)); err != nil {
				return err
			}
		}
	}
	return nil
}

// YAML decodes unquoted numbers as int even for string options
func normalizeConfigValue(opt PluginOption, value any) any {
	if opt.Type == PluginOptionTypeString {
		if v, ok := value.(int); ok {
			return strconv.Itoa(v)
		}
	}
	return value
}

func setOptionFromString(opt PluginOption, value string) error {
	switch opt.Type {
	case PluginOptionTypeString:
		dest, ok := opt.Dest.(*string)
		if !ok || dest == nil {
			return fmt.Errorf("option %s: destination is not *string", opt.Name)
		}
		*dest = value
	case PluginOptionTypeBool:
		dest, ok := opt.Dest.(*bool)
		if !ok || dest == nil {
			return fmt.Errorf("option %s: destination is not *bool", opt.Name)
		}
		v, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		*dest = v
	case PluginOptionTypeInt:
		dest, ok := opt.Dest.(*int)
		if !ok || dest == nil {
			return fmt.Errorf("option %s: destination is not *int", opt.Name)
		}
		v, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		*dest = v
	case PluginOptionTypeUint:
		dest, ok := opt.Dest.(*uint64)
		if !ok || dest == nil {
			return fmt.Errorf("option %s: destination is not *uint64", opt.Name)
		}
		v, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return err
		}
		*dest = v
	default:
		return fmt.Errorf("option %s: unknown option type %d", opt.Name, opt.Type)
	}
	return nil
}

var (
	runtimeLogger       *slog.Logger
	runtimePromRegistry prometheus.Registerer
	runtimeMutex        sync.RWMutex
)

// SetRuntime sets the logger and metrics registry handed to plugins that are
// created from the registry
func SetRuntime(logger *slog.Logger, promRegistry prometheus.Registerer) {
	runtimeMutex.Lock()
	defer runtimeMutex.Unlock()
	runtimeLogger = logger
	runtimePromRegistry = promRegistry
}

// Runtime returns the values set by SetRuntime
func Runtime() (*slog.Logger, prometheus.Registerer) {
	runtimeMutex.RLock()
	defer runtimeMutex.RUnlock()
	return runtimeLogger, runtimePromRegistry
}
