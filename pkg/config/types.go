package config

import (
	"time"

	"github.com/sitevitals/sitevitals/pkg/analyzer"
)

// Config is the root application configuration.
type Config struct {
	Log       LogConfig       `koanf:"log"`
	Server    ServerConfig    `koanf:"server"`
	History   HistoryConfig   `koanf:"history"`
	Analyzers AnalyzersConfig `koanf:"analyzers"`
}

// LogConfig controls logging behavior.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	File   string `koanf:"file"`
}

// ServerConfig controls the HTTP API server.
type ServerConfig struct {
	Addr string `koanf:"addr"`
	Port int    `koanf:"port"`

	// Concurrency is the number of scan workers; QueueSize bounds the
	// pending job queue.
	Concurrency int `koanf:"concurrency"`
	QueueSize   int `koanf:"queue_size"`

	ReadTimeoutSeconds  int `koanf:"read_timeout_seconds"`
	WriteTimeoutSeconds int `koanf:"write_timeout_seconds"`
}

// ReadTimeout returns the HTTP read timeout as a duration.
func (c ServerConfig) ReadTimeout() time.Duration {
	return time.Duration(c.ReadTimeoutSeconds) * time.Second
}

// WriteTimeout returns the HTTP write timeout as a duration.
func (c ServerConfig) WriteTimeout() time.Duration {
	return time.Duration(c.WriteTimeoutSeconds) * time.Second
}

// HistoryConfig controls local scan-history persistence.
type HistoryConfig struct {
	Enabled      bool   `koanf:"enabled"`
	WorkspaceDir string `koanf:"workspace_dir"`
	MaxScans     int    `koanf:"max_scans"`
	MaxAgeDays   int    `koanf:"max_age_days"`
}

// AnalyzerConfig configures one analyzer endpoint.
type AnalyzerConfig struct {
	Endpoint       string `koanf:"endpoint"`
	TimeoutSeconds int    `koanf:"timeout_seconds"`

	// Lightweight requests the analyzer's fast mode, skipping heavy
	// sub-analyses such as full Lighthouse audits.
	Lightweight bool `koanf:"lightweight"`
}

// Timeout returns the per-call timeout as a duration.
func (c AnalyzerConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// AnalyzersConfig holds one endpoint configuration per analyzer kind.
type AnalyzersConfig struct {
	Fonts         AnalyzerConfig `koanf:"fonts"`
	SEO           AnalyzerConfig `koanf:"seo"`
	Performance   AnalyzerConfig `koanf:"performance"`
	Accessibility AnalyzerConfig `koanf:"accessibility"`
	Security      AnalyzerConfig `koanf:"security"`
}

// ForKind returns the configuration for one analyzer kind.
func (c AnalyzersConfig) ForKind(kind analyzer.Kind) AnalyzerConfig {
	switch kind {
	case analyzer.KindFonts:
		return c.Fonts
	case analyzer.KindSEO:
		return c.SEO
	case analyzer.KindPerformance:
		return c.Performance
	case analyzer.KindAccessibility:
		return c.Accessibility
	case analyzer.KindSecurity:
		return c.Security
	default:
		return AnalyzerConfig{}
	}
}

// Endpoints converts the analyzer configuration into the client's endpoint
// map, carrying the lightweight-mode flag into every request body.
func (c AnalyzersConfig) Endpoints() map[analyzer.Kind]analyzer.Endpoint {
	endpoints := make(map[analyzer.Kind]analyzer.Endpoint, 5)
	for _, kind := range analyzer.AllKinds() {
		ac := c.ForKind(kind)
		endpoints[kind] = analyzer.Endpoint{
			URL:     ac.Endpoint,
			Timeout: ac.Timeout(),
			Options: map[string]any{
				"lightweight": ac.Lightweight,
			},
		}
	}
	return endpoints
}
