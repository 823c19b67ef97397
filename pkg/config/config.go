// pkg/config/config.go
package config

import (
	"fmt"
	"sort"
	"sync"

	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Global Koanf instance, initialized once at startup.
var (
	k    *koanf.Koanf
	once sync.Once
)

// InitGlobalConfig initializes the global Koanf instance.
// This should be called early in the application lifecycle, before Load.
func InitGlobalConfig() {
	once.Do(func() {
		k = koanf.New(".")
	})
}

// Manager handles loading and accessing application configuration.
type Manager struct {
	koanfInstance *koanf.Koanf
	currentConfig Config
	mu            sync.RWMutex // To protect currentConfig during runtime updates
}

// NewManager creates a new config Manager.
// It initializes the global Koanf instance if not already done.
func NewManager() *Manager {
	InitGlobalConfig()
	return &Manager{
		koanfInstance: k,
	}
}

// DefaultConfig returns a new Config struct populated with hardcoded
// default values. These serve as the baseline configuration if no other
// sources override them.
//
// The analyzer defaults point at the local development stack: the fonts
// analyzer on port 5000 (its conventional port) and the rest on
// consecutive ports, all in lightweight mode.
func DefaultConfig() Config {
	return Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
			File:   "",
		},
		Server: ServerConfig{
			Addr:                "127.0.0.1",
			Port:                8080,
			Concurrency:         4,
			QueueSize:           64,
			ReadTimeoutSeconds:  15,
			WriteTimeoutSeconds: 60,
		},
		History: HistoryConfig{
			Enabled:  true,
			MaxScans: 100,
		},
		Analyzers: AnalyzersConfig{
			Fonts:         AnalyzerConfig{Endpoint: "http://127.0.0.1:5000/api/scan", TimeoutSeconds: 10, Lightweight: true},
			SEO:           AnalyzerConfig{Endpoint: "http://127.0.0.1:5001/api/scan", TimeoutSeconds: 10, Lightweight: true},
			Performance:   AnalyzerConfig{Endpoint: "http://127.0.0.1:5002/api/scan", TimeoutSeconds: 10, Lightweight: true},
			Accessibility: AnalyzerConfig{Endpoint: "http://127.0.0.1:5003/api/scan", TimeoutSeconds: 10, Lightweight: true},
			Security:      AnalyzerConfig{Endpoint: "http://127.0.0.1:5004/api/scan", TimeoutSeconds: 10, Lightweight: true},
		},
	}
}

// Load loads configuration from various sources based on precedence.
// It populates the manager's currentConfig.
//
// Configuration precedence (highest to lowest):
//  1. Command-line flags (--log.level=debug)
//  2. Environment variables (SITEVITALS_LOG_LEVEL=debug)
//  3. Config file (YAML)
//  4. Default values
//
// Environment variables use the SITEVITALS_ prefix and
// underscore-to-dot mapping:
//
//	SITEVITALS_LOG_LEVEL    -> log.level
//	SITEVITALS_SERVER_PORT  -> server.port
//
// For custom source ordering, use LoadWithSources() instead.
func (m *Manager) Load(flags *pflag.FlagSet, customConfigFilePath string) error {
	// Check debug flag before creating sources
	debug := false
	if flags != nil {
		debugFlag := flags.Lookup("debug")
		if debugFlag != nil && debugFlag.Value.String() == "true" {
			debug = true
		}
	}

	sources := DefaultSources(customConfigFilePath, flags, debug)
	return m.LoadWithSources(sources)
}

// LoadWithSources loads configuration from the provided sources in
// priority order. Sources with lower priority values are loaded first,
// higher priority sources override lower priority values.
func (m *Manager) LoadWithSources(sources []ConfigSource) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Sort sources by priority (lowest first)
	sort.Slice(sources, func(i, j int) bool {
		return sources[i].Priority() < sources[j].Priority()
	})

	for _, src := range sources {
		if err := src.Load(m.koanfInstance); err != nil {
			return fmt.Errorf("error loading config from %s: %w", src.Name(), err)
		}
	}

	var newCfg Config
	if err := m.koanfInstance.UnmarshalWithConf("", &newCfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return fmt.Errorf("error unmarshaling final config: %w", err)
	}
	m.currentConfig = newCfg

	return nil
}

// Get returns a copy of the current configuration.
func (m *Manager) Get() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cfgCopy := m.currentConfig
	return cfgCopy
}

// GetValue retrieves a configuration value by key path.
// Example: GetValue("analyzers.performance.endpoint")
// Returns nil if the key doesn't exist.
func (m *Manager) GetValue(key string) any {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.koanfInstance.Get(key)
}

// DefaultConfigAsMap converts the DefaultConfig struct to a flat key map
// for Koanf's confmap.Provider. This is a bit manual but ensures Koanf
// knows all keys.
func DefaultConfigAsMap() map[string]any {
	def := DefaultConfig()
	m := map[string]any{
		// Log configuration
		"log.level":  def.Log.Level,
		"log.format": def.Log.Format,
		"log.file":   def.Log.File,

		// Server configuration
		"server.addr":                  def.Server.Addr,
		"server.port":                  def.Server.Port,
		"server.concurrency":           def.Server.Concurrency,
		"server.queue_size":            def.Server.QueueSize,
		"server.read_timeout_seconds":  def.Server.ReadTimeoutSeconds,
		"server.write_timeout_seconds": def.Server.WriteTimeoutSeconds,

		// History configuration
		"history.enabled":       def.History.Enabled,
		"history.workspace_dir": def.History.WorkspaceDir,
		"history.max_scans":     def.History.MaxScans,
		"history.max_age_days":  def.History.MaxAgeDays,
	}

	analyzers := map[string]AnalyzerConfig{
		"fonts":         def.Analyzers.Fonts,
		"seo":           def.Analyzers.SEO,
		"performance":   def.Analyzers.Performance,
		"accessibility": def.Analyzers.Accessibility,
		"security":      def.Analyzers.Security,
	}
	for name, ac := range analyzers {
		m["analyzers."+name+".endpoint"] = ac.Endpoint
		m["analyzers."+name+".timeout_seconds"] = ac.TimeoutSeconds
		m["analyzers."+name+".lightweight"] = ac.Lightweight
	}

	return m
}

// BindFlags defines command-line flags corresponding to configuration
// settings. These flags allow overriding config file / environment
// variable settings. Flag names match koanf key paths so the posflag
// source maps them directly.
func BindFlags(flags *pflag.FlagSet) {
	defaults := DefaultConfig()

	flags.String("log.level", defaults.Log.Level, "Log level (debug, info, warn, error)")
	flags.String("log.format", defaults.Log.Format, "Log format (text, json)")
	flags.Int("server.port", defaults.Server.Port, "HTTP API server port")

	var flagvar bool
	flags.BoolVar(&flagvar, "debug", false, "Enable debug logging")

	// Note: the main --config / -c flag for specifying the config file
	// path is defined on the root command's PersistentFlags.
}
