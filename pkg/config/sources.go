package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// envPrefix is the prefix for environment variable overrides.
const envPrefix = "SITEVITALS_"

// Source priorities, lowest loads first.
const (
	priorityDefaults = 0
	priorityFile     = 10
	priorityEnv      = 20
	priorityFlags    = 30
	priorityOverride = 40
)

// ConfigSource is one layer in the configuration loading chain.
type ConfigSource interface {
	// Name identifies the source in error messages.
	Name() string

	// Priority orders loading; higher priorities override lower ones.
	Priority() int

	// Load merges this source's values into the koanf instance.
	Load(k *koanf.Koanf) error
}

// DefaultSources builds the standard loading chain:
// defaults < config file < environment < flags.
//
// When debug is set, a final override source forces log.level=debug on
// top of everything else.
func DefaultSources(configFilePath string, flags *pflag.FlagSet, debug bool) []ConfigSource {
	sources := []ConfigSource{
		&defaultsSource{},
		&fileSource{path: configFilePath},
		&envSource{},
	}
	if flags != nil {
		sources = append(sources, &flagSource{flags: flags})
	}
	if debug {
		sources = append(sources, &overrideSource{values: map[string]any{"log.level": "debug"}})
	}
	return sources
}

// defaultsSource loads the hardcoded default configuration.
type defaultsSource struct{}

func (s *defaultsSource) Name() string  { return "defaults" }
func (s *defaultsSource) Priority() int { return priorityDefaults }

func (s *defaultsSource) Load(k *koanf.Koanf) error {
	return k.Load(confmap.Provider(DefaultConfigAsMap(), "."), nil)
}

// fileSource loads an optional YAML config file. A missing file is only an
// error when the path was explicitly requested.
type fileSource struct {
	path string
}

func (s *fileSource) Name() string  { return "config file" }
func (s *fileSource) Priority() int { return priorityFile }

func (s *fileSource) Load(k *koanf.Koanf) error {
	if s.path == "" {
		return nil
	}
	if _, err := os.Stat(s.path); err != nil {
		return fmt.Errorf("config file %s: %w", s.path, err)
	}
	return k.Load(file.Provider(s.path), yaml.Parser())
}

// envSource loads SITEVITALS_* environment variables, mapping
// SITEVITALS_SERVER_PORT to server.port and so on. Keys with multi-word
// leaves (timeout_seconds, workspace_dir, ...) resolve because koanf
// merges the flattened defaults first.
type envSource struct{}

func (s *envSource) Name() string  { return "environment" }
func (s *envSource) Priority() int { return priorityEnv }

func (s *envSource) Load(k *koanf.Koanf) error {
	return k.Load(env.ProviderWithValue(envPrefix, ".", func(key, value string) (string, any) {
		key = strings.ToLower(strings.TrimPrefix(key, envPrefix))
		// Two-level keys only: the first underscore separates the
		// section, the rest belongs to the leaf
		// (SERVER_QUEUE_SIZE -> server.queue_size).
		key = strings.Replace(key, "_", ".", 1)
		return key, value
	}), nil)
}

// flagSource loads explicitly-set command-line flags. Flag names match
// koanf key paths (log.level, server.port); passing the koanf instance to
// posflag keeps unset flag defaults from clobbering file and env values.
type flagSource struct {
	flags *pflag.FlagSet
}

func (s *flagSource) Name() string  { return "flags" }
func (s *flagSource) Priority() int { return priorityFlags }

func (s *flagSource) Load(k *koanf.Koanf) error {
	return k.Load(posflag.Provider(s.flags, ".", k), nil)
}

// overrideSource force-sets fixed values on top of every other source.
type overrideSource struct {
	values map[string]any
}

func (s *overrideSource) Name() string  { return "overrides" }
func (s *overrideSource) Priority() int { return priorityOverride }

func (s *overrideSource) Load(k *koanf.Koanf) error {
	return k.Load(confmap.Provider(s.values, "."), nil)
}
