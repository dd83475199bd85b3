package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mohit1233k/Ranking-agent/internal/models"
)

// ensure postgresBackend implements Backend
var _ Backend = (*postgresBackend)(nil)

type postgresBackend struct {
	pool *pgxpool.Pool
}

const postgresSchema = `
CREATE TABLE IF NOT EXISTS rankings (
	id TEXT PRIMARY KEY,
	keyword TEXT NOT NULL,
	rank INTEGER,
	title TEXT,
	url TEXT,
	snippet TEXT,
	created_at TIMESTAMPTZ NOT NULL
);
`

func newPostgresBackend(ctx context.Context, dsn string) (Backend, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to reach postgres: %w", err)
	}

	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create rankings table: %w", err)
	}

	return &postgresBackend{pool: pool}, nil
}

func (b *postgresBackend) Append(ctx context.Context, record models.RankingRecord) error {
	query := `
	INSERT INTO rankings (id, keyword, rank, title, url, snippet, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := b.pool.Exec(ctx, query,
		uuid.NewString(),
		record.Keyword,
		record.Rank,
		record.Title,
		record.URL,
		record.Snippet,
		record.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to append record: %w", err)
	}

	return nil
}

func (b *postgresBackend) All(ctx context.Context) ([]models.RankingRecord, error) {
	query := `
	SELECT keyword, rank, title, url, snippet, created_at
	FROM rankings ORDER BY created_at ASC
	`

	rows, err := b.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query rankings: %w", err)
	}
	defer rows.Close()

	var records []models.RankingRecord
	for rows.Next() {
		var r models.RankingRecord
		if err := rows.Scan(&r.Keyword, &r.Rank, &r.Title, &r.URL, &r.Snippet, &r.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read rankings: %w", err)
	}

	return records, nil
}

func (b *postgresBackend) Close() error {
	b.pool.Close()
	return nil
}
