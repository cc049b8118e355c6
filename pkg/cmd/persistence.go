// Package cmd provides common initialization functions for the command-line
// binaries.
package cmd

import (
	"context"
	"log/slog"
	"strings"

	"github.com/flowprobe/flowprobe/pkg/persistence"
	"github.com/flowprobe/flowprobe/pkg/persistence/file"
	"github.com/flowprobe/flowprobe/pkg/persistence/postgresql"
)

var supportedPersistenceProviders = []string{"file", "postgres", "postgresql"}

// NewPersistence picks the storage backend from the database URL scheme.
// Anything that is not postgres falls back to the file store.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (persistence.Persistence, error) {
	switch parsePersistenceProvider(databaseURL) {
	case "postgres", "postgresql":
		return postgresql.NewPersistence(ctx, logger, databaseURL)
	default:
		return file.NewPersistence(databaseURL), nil
	}
}

func parsePersistenceProvider(databaseURL string) string {
	parts := strings.Split(databaseURL, "://")

	provider := parts[0]
	for _, supported := range supportedPersistenceProviders {
		if provider == supported {
			return provider
		}
	}

	return "file"
}
