package storage

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/yatube/yatube-backend/internal/config"
)

// Opener is implemented by backend packages and wired in by the caller
// to avoid an import cycle between this package and its backends.
type Opener func(ctx context.Context, dsn string, logger *zap.SugaredLogger) (Storage, error)

var openers = make(map[string]Opener)

// RegisterBackend makes a backend available to Open under the given name.
func RegisterBackend(name string, opener Opener) {
	openers[name] = opener
}

// Open picks a backend from the configuration: the in-memory store for
// YT_USE_IN_MEMORY, Postgres otherwise.
func Open(ctx context.Context, cfg *config.Config, logger *zap.SugaredLogger) (Storage, error) {
	name := "postgres"
	dsn := cfg.Database.PostgresDSN
	if cfg.Database.UseInMemory {
		name = "memory"
		dsn = ""
	}

	opener, ok := openers[name]
	if !ok {
		return nil, fmt.Errorf("storage backend %q not registered", name)
	}
	return opener(ctx, dsn, logger)
}
