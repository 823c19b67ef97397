package commands

import (
	"github.com/sitevitals/sitevitals/pkg/config"
	"github.com/sitevitals/sitevitals/pkg/storage"
)

// newStorageBackend builds the local history backend from the resolved
// configuration. An empty workspace dir falls back to the per-user
// default under the home directory.
func newStorageBackend(cfg config.Config) (*storage.LocalBackend, error) {
	storageCfg, err := storage.DefaultConfig()
	if err != nil {
		return nil, err
	}
	if cfg.History.WorkspaceDir != "" {
		storageCfg.WorkspaceRoot = cfg.History.WorkspaceDir
	}
	storageCfg.Retention = storage.RetentionConfig{
		MaxScans:   cfg.History.MaxScans,
		MaxAgeDays: cfg.History.MaxAgeDays,
	}
	return storage.NewLocalBackend(storageCfg)
}
