package history

import (
	"fmt"
	"os"
	"path/filepath"

	"b2backup/internal/config"
)

// NewFromConfig creates a DB implementation based on the history config type.
func NewFromConfig(cfg config.HistoryConfig) (DB, error) {
	switch cfg.Type {
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite history")
		}
		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return nil, fmt.Errorf("creating history data directory: %w", err)
		}
		return NewSQLiteDB(filepath.Join(cfg.DataDir, "history.db"))
	case "memory":
		return NewSQLiteDB(":memory:")
	default:
		return nil, fmt.Errorf("unknown history type: %s", cfg.Type)
	}
}
