// Package storage persists uploaded files (business logo, printed invoice
// template) on local disk or in a Google Cloud Storage bucket.
package storage

import (
	"context"
	"fmt"

	"github.com/sangkips/tillpoint-api/internal/config"
)

// Store saves objects and returns the URL they can be fetched from.
type Store interface {
	Put(ctx context.Context, name, contentType string, data []byte) (string, error)
	Delete(ctx context.Context, name string) error
}

// New picks the backend named by cfg.Driver.
func New(ctx context.Context, cfg config.StorageConfig) (Store, error) {
	switch cfg.Driver {
	case "", "local":
		return NewLocalStore(cfg.Path, cfg.PublicURL)
	case "gcs":
		return NewGCSStore(ctx, cfg.Bucket, cfg.CredentialsFile)
	default:
		return nil, fmt.Errorf("storage: unknown driver %q (use local or gcs)", cfg.Driver)
	}
}
