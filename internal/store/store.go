package store

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/mohit1233k/Ranking-agent/internal/config"
	"github.com/mohit1233k/Ranking-agent/internal/models"
)

// Backend persists ranking records as an append-only sequence. All returns
// records in append order, oldest first. Records are never updated or
// deleted; implementations serialize writes internally so concurrent
// callers cannot interleave partial appends.
type Backend interface {
	Append(ctx context.Context, record models.RankingRecord) error
	All(ctx context.Context) ([]models.RankingRecord, error)
	Close() error
}

// Open creates the data directory if needed and builds the backend selected
// by STORE_BACKEND.
func Open(ctx context.Context, cfg *config.Config) (Backend, error) {
	switch cfg.StoreBackend {
	case "ndjson":
		return newNDJSONBackend(cfg.DataDir, filepath.Join(cfg.DataDir, "rankings.ndjson"))
	case "sqlite":
		return newSQLiteBackend(cfg.DataDir, filepath.Join(cfg.DataDir, "rankings.db"))
	case "postgres":
		return newPostgresBackend(ctx, cfg.PostgresDSN)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}
