package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/mohit1233k/Ranking-agent/internal/config"
)

// Archiver keeps copies of generated report files outside the working data
// directory so runs on ephemeral hosts leave a durable trail.
type Archiver interface {
	Store(filename string, data []byte) error
	Retrieve(filename string) ([]byte, error)
	List(prefix string) ([]string, error)
}

// New builds the archiver selected by ARCHIVE_BACKEND. Returns nil when
// archival is not configured.
func New(cfg *config.Config) (Archiver, error) {
	switch cfg.ArchiveBackend {
	case "":
		return nil, nil
	case "local":
		return newLocalArchiver(cfg.ArchiveDir)
	case "azure":
		return newAzureArchiver(cfg.StorageAccount, cfg.StorageContainer)
	default:
		return nil, fmt.Errorf("unknown archive backend %q", cfg.ArchiveBackend)
	}
}

// Ensure localArchiver implements Archiver
var _ Archiver = (*localArchiver)(nil)

// localArchiver writes reports into a plain directory
type localArchiver struct {
	dir string
}

func newLocalArchiver(dir string) (*localArchiver, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}
	return &localArchiver{dir: dir}, nil
}

func (a *localArchiver) Store(filename string, data []byte) error {
	path := filepath.Join(a.dir, filepath.Base(filename))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to archive %s: %w", filename, err)
	}

	logrus.Infof("Archived %s to %s", filename, a.dir)
	return nil
}

func (a *localArchiver) Retrieve(filename string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(a.dir, filepath.Base(filename)))
	if err != nil {
		return nil, fmt.Errorf("failed to read archived %s: %w", filename, err)
	}
	return data, nil
}

func (a *localArchiver) List(prefix string) ([]string, error) {
	entries, err := os.ReadDir(a.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list archive: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if prefix == "" || strings.HasPrefix(e.Name(), prefix) {
			names = append(names, e.Name())
		}
	}

	sort.Strings(names)
	return names, nil
}
