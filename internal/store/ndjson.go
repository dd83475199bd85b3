package store

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/mohit1233k/Ranking-agent/internal/models"
)

// ensure ndjsonBackend implements Backend
var _ Backend = (*ndjsonBackend)(nil)

// ndjsonBackend is the default store: one JSON record per line, opened in
// append mode. A whole-line write under the mutex is the unit of mutation,
// so a crashed run can at worst lose its final line, never corrupt earlier
// history.
type ndjsonBackend struct {
	mu   sync.Mutex
	file *os.File
}

func newNDJSONBackend(dir, path string) (Backend, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open store file: %w", err)
	}

	return &ndjsonBackend{file: f}, nil
}

func (b *ndjsonBackend) Append(ctx context.Context, record models.RankingRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, err := b.file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to append record: %w", err)
	}

	return nil
}

func (b *ndjsonBackend) All(ctx context.Context) ([]models.RankingRecord, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, err := b.file.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to rewind store file: %w", err)
	}
	defer func() {
		// restore the write position for subsequent appends
		_, _ = b.file.Seek(0, io.SeekEnd)
	}()

	var records []models.RankingRecord
	scanner := bufio.NewScanner(b.file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var r models.RankingRecord
		if err := json.Unmarshal(line, &r); err != nil {
			return nil, fmt.Errorf("failed to decode store line: %w", err)
		}
		records = append(records, r)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read store file: %w", err)
	}

	return records, nil
}

func (b *ndjsonBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.file.Close()
}
