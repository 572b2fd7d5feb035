package s3store

import (
	"context"
	"fmt"

	"b2backup/internal/backup"
	"b2backup/internal/config"
	"b2backup/internal/credentials"
)

// NewStoreFromConfig creates an ObjectStore implementation based on the store
// config type. Credentials are only consulted for the s3 type.
func NewStoreFromConfig(ctx context.Context, cfg config.StoreConfig, creds *credentials.Credentials) (backup.ObjectStore, error) {
	switch cfg.Type {
	case "s3":
		if creds == nil {
			return nil, fmt.Errorf("s3 store requires credentials")
		}
		var opts []Option
		if cfg.S3PathStyle {
			opts = append(opts, WithPathStyle())
		}
		return New(ctx, creds, opts...)
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store type: %s", cfg.Type)
	}
}
