package config

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Helper to reset global variables for testing
func resetGlobalConfig() {
	k = nil
	once = sync.Once{}
}

func TestInitGlobalConfig_InitializesKoanfOnce(t *testing.T) {
	resetGlobalConfig()
	InitGlobalConfig()
	assert.NotNil(t, k, "Global koanf instance should be initialized")
}

func TestInitGlobalConfig_IsIdempotent(t *testing.T) {
	resetGlobalConfig()
	InitGlobalConfig()
	firstInstance := k
	InitGlobalConfig()
	secondInstance := k
	assert.Equal(t, firstInstance, secondInstance, "Koanf instance should not change on repeated InitGlobalConfig calls")
}

func TestNewManager_InitializesManagerWithGlobalKoanf(t *testing.T) {
	resetGlobalConfig()
	manager := NewManager()
	assert.NotNil(t, manager, "Manager should not be nil")
	assert.NotNil(t, manager.koanfInstance, "Manager's koanfInstance should not be nil")
	assert.Equal(t, k, manager.koanfInstance, "Manager's koanfInstance should use the global Koanf instance")
}

func TestDefaultConfig_ReturnsExpectedDefaults(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "info", cfg.Log.Level, "Default log level should be 'info'")
	assert.Equal(t, "text", cfg.Log.Format, "Default log format should be 'text'")
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 4, cfg.Server.Concurrency)
	assert.True(t, cfg.History.Enabled, "History should be enabled by default")
	assert.Equal(t, 100, cfg.History.MaxScans)
}

func TestDefaultConfig_AnalyzerEndpoints(t *testing.T) {
	cfg := DefaultConfig()

	// Fonts on its conventional port, the rest on consecutive ports.
	assert.Equal(t, "http://127.0.0.1:5000/api/scan", cfg.Analyzers.Fonts.Endpoint)
	assert.Equal(t, "http://127.0.0.1:5004/api/scan", cfg.Analyzers.Security.Endpoint)

	for _, ac := range []AnalyzerConfig{
		cfg.Analyzers.Fonts,
		cfg.Analyzers.SEO,
		cfg.Analyzers.Performance,
		cfg.Analyzers.Accessibility,
		cfg.Analyzers.Security,
	} {
		assert.Equal(t, 10, ac.TimeoutSeconds)
		assert.True(t, ac.Lightweight)
	}
}

func TestManager_Load_LoadsDefaultsWhenNoFlags(t *testing.T) {
	resetGlobalConfig()
	manager := NewManager()
	err := manager.Load(nil, "")
	assert.NoError(t, err, "Load should not return error when loading defaults")
	cfg := manager.Get()
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestManager_Load_OverridesWithFlags(t *testing.T) {
	resetGlobalConfig()
	manager := NewManager()
	flags := newTestFlagSet()
	_ = flags.Set("log.level", "error")
	_ = flags.Set("log.format", "json")
	err := manager.Load(flags, "")
	assert.NoError(t, err, "Load should not return error when loading with flags")
	cfg := manager.Get()
	assert.Equal(t, "error", cfg.Log.Level, "Flag should override log level")
	assert.Equal(t, "json", cfg.Log.Format, "Flag should override log format")
}

func TestManager_Load_DebugFlagSetsLogLevelToDebug(t *testing.T) {
	resetGlobalConfig()
	manager := NewManager()
	flags := newTestFlagSet()
	_ = flags.Set("debug", "true")
	err := manager.Load(flags, "")
	assert.NoError(t, err, "Load should not return error when loading with debug flag")
	cfg := manager.Get()
	assert.Equal(t, "debug", cfg.Log.Level, "Debug flag should set log level to debug")
}

func TestManager_Load_ConfigFile(t *testing.T) {
	resetGlobalConfig()

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte("log:\n  level: warn\nserver:\n  port: 9090\nanalyzers:\n  seo:\n    endpoint: http://seo.internal/api/scan\n")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	manager := NewManager()
	err := manager.Load(nil, path)
	require.NoError(t, err)

	cfg := manager.Get()
	assert.Equal(t, "warn", cfg.Log.Level, "Config file should override default log level")
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "http://seo.internal/api/scan", cfg.Analyzers.SEO.Endpoint)
	// Untouched keys keep their defaults.
	assert.Equal(t, "http://127.0.0.1:5002/api/scan", cfg.Analyzers.Performance.Endpoint)
}

func TestManager_Load_MissingExplicitConfigFileErrors(t *testing.T) {
	resetGlobalConfig()
	manager := NewManager()
	err := manager.Load(nil, filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	assert.Error(t, err, "An explicitly requested config file must exist")
}

func TestManager_Load_EnvVarsOverrideDefaults(t *testing.T) {
	resetGlobalConfig()

	t.Setenv("SITEVITALS_LOG_LEVEL", "warn")
	t.Setenv("SITEVITALS_LOG_FORMAT", "json")
	t.Setenv("SITEVITALS_SERVER_PORT", "9999")

	manager := NewManager()
	err := manager.Load(nil, "")
	assert.NoError(t, err, "Load should not return error when loading with env vars")

	cfg := manager.Get()
	assert.Equal(t, "warn", cfg.Log.Level, "ENV var should override log level")
	assert.Equal(t, "json", cfg.Log.Format, "ENV var should override log format")
	assert.Equal(t, 9999, cfg.Server.Port, "ENV var should override server port")
}

func TestManager_Load_FlagsOverrideEnvVars(t *testing.T) {
	resetGlobalConfig()

	t.Setenv("SITEVITALS_LOG_LEVEL", "warn")

	manager := NewManager()
	flags := newTestFlagSet()
	_ = flags.Set("log.level", "error") // Flag should win over env var

	err := manager.Load(flags, "")
	assert.NoError(t, err, "Load should not return error")

	cfg := manager.Get()
	assert.Equal(t, "error", cfg.Log.Level, "CLI flag should override ENV var")
}

func TestManager_Load_EnvVarNamingConvention(t *testing.T) {
	resetGlobalConfig()

	// Nested key mapping: SITEVITALS_SERVER_ADDR -> server.addr
	t.Setenv("SITEVITALS_SERVER_ADDR", "0.0.0.0")
	t.Setenv("SITEVITALS_SERVER_PORT", "3000")

	manager := NewManager()
	err := manager.Load(nil, "")
	assert.NoError(t, err, "Load should not return error")

	cfg := manager.Get()
	assert.Equal(t, "0.0.0.0", cfg.Server.Addr, "ENV var should map to nested config key")
	assert.Equal(t, 3000, cfg.Server.Port, "ENV var should map to nested config key")
}

func TestManager_Load_EnvVarMultiWordLeafKeys(t *testing.T) {
	resetGlobalConfig()

	// Only the first underscore splits section from leaf, so multi-word
	// leaves stay intact: SERVER_QUEUE_SIZE -> server.queue_size.
	t.Setenv("SITEVITALS_SERVER_QUEUE_SIZE", "32")
	t.Setenv("SITEVITALS_HISTORY_MAX_SCANS", "7")

	manager := NewManager()
	require.NoError(t, manager.Load(nil, ""))

	cfg := manager.Get()
	assert.Equal(t, 32, cfg.Server.QueueSize, "ENV var should map to a multi-word leaf key")
	assert.Equal(t, 7, cfg.History.MaxScans)
}

func TestBindFlags_AddsDebugFlag(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	BindFlags(flags)
	debugFlag := flags.Lookup("debug")
	assert.NotNil(t, debugFlag, "BindFlags should add a 'debug' flag")
	assert.Equal(t, "false", debugFlag.DefValue, "Debug flag should default to false")
}

func TestBindFlags_FlagNamesMatchKoanfKeys(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	BindFlags(flags)
	assert.NotNil(t, flags.Lookup("log.level"))
	assert.NotNil(t, flags.Lookup("log.format"))
	assert.NotNil(t, flags.Lookup("server.port"))
}

func TestAnalyzersConfig_Endpoints(t *testing.T) {
	cfg := DefaultConfig()
	endpoints := cfg.Analyzers.Endpoints()

	require.Len(t, endpoints, 5)
	for kind, ep := range endpoints {
		assert.NotEmpty(t, ep.URL, "endpoint URL for %s", kind)
		assert.Equal(t, true, ep.Options["lightweight"])
	}
}

func newTestFlagSet() *pflag.FlagSet {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("log.level", "info", "")
	flags.String("log.format", "text", "")
	flags.Bool("debug", false, "")
	return flags
}
