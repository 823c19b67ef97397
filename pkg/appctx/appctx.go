// Package appctx carries application-level values through a
// context.Context so commands and services can share them without global
// state.
package appctx

import (
	"context"

	"github.com/sitevitals/sitevitals/pkg/config"
)

type contextKey string

const configKey contextKey = "appctx.config"

// WithConfig returns a context carrying the resolved configuration.
func WithConfig(ctx context.Context, cfg config.Config) context.Context {
	return context.WithValue(ctx, configKey, cfg)
}

// ConfigFrom extracts the configuration from the context. The second
// return value is false when no configuration was attached.
func ConfigFrom(ctx context.Context) (config.Config, bool) {
	cfg, ok := ctx.Value(configKey).(config.Config)
	return cfg, ok
}
