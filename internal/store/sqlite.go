package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/mohit1233k/Ranking-agent/internal/models"
)

// ensure sqliteBackend implements Backend
var _ Backend = (*sqliteBackend)(nil)

type sqliteBackend struct {
	db *sql.DB
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS rankings (
	id TEXT PRIMARY KEY,
	keyword TEXT NOT NULL,
	rank INTEGER,
	title TEXT,
	url TEXT,
	snippet TEXT,
	created_at DATETIME NOT NULL
);
`

func newSQLiteBackend(dir, path string) (Backend, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite store: %w", err)
	}

	// modernc sqlite supports one writer; a single connection avoids
	// SQLITE_BUSY under concurrent handlers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create rankings table: %w", err)
	}

	return &sqliteBackend{db: db}, nil
}

func (b *sqliteBackend) Append(ctx context.Context, record models.RankingRecord) error {
	query := `
	INSERT INTO rankings (id, keyword, rank, title, url, snippet, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := b.db.ExecContext(ctx, query,
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

func (b *sqliteBackend) All(ctx context.Context) ([]models.RankingRecord, error) {
	query := `
	SELECT keyword, rank, title, url, snippet, created_at
	FROM rankings ORDER BY created_at ASC, rowid ASC
	`

	rows, err := b.db.QueryContext(ctx, query)
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

func (b *sqliteBackend) Close() error {
	return b.db.Close()
}
