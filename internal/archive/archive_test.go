package archive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mohit1233k/Ranking-agent/internal/config"
)

func TestNew_Unconfigured(t *testing.T) {
	archiver, err := New(&config.Config{})
	require.NoError(t, err)
	assert.Nil(t, archiver)
}

func TestNew_UnknownBackend(t *testing.T) {
	_, err := New(&config.Config{ArchiveBackend: "ftp"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ftp")
}

func TestLocalArchiver_StoreRetrieveList(t *testing.T) {
	archiver, err := New(&config.Config{ArchiveBackend: "local", ArchiveDir: t.TempDir()})
	require.NoError(t, err)
	require.NotNil(t, archiver)

	require.NoError(t, archiver.Store("rankings_1.csv", []byte("Keyword,Rank\n")))
	require.NoError(t, archiver.Store("rankings_2.html", []byte("<html></html>")))
	require.NoError(t, archiver.Store("notes.txt", []byte("ignore")))

	data, err := archiver.Retrieve("rankings_1.csv")
	require.NoError(t, err)
	assert.Equal(t, "Keyword,Rank\n", string(data))

	names, err := archiver.List("rankings_")
	require.NoError(t, err)
	assert.Equal(t, []string{"rankings_1.csv", "rankings_2.html"}, names)

	all, err := archiver.List("")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestLocalArchiver_StripsPathComponents(t *testing.T) {
	dir := t.TempDir()
	archiver, err := New(&config.Config{ArchiveBackend: "local", ArchiveDir: dir})
	require.NoError(t, err)

	require.NoError(t, archiver.Store("../escape.csv", []byte("data")))

	names, err := archiver.List("")
	require.NoError(t, err)
	assert.Equal(t, []string{"escape.csv"}, names)
}

func TestLocalArchiver_RetrieveMissing(t *testing.T) {
	archiver, err := New(&config.Config{ArchiveBackend: "local", ArchiveDir: t.TempDir()})
	require.NoError(t, err)

	_, err = archiver.Retrieve("missing.csv")
	assert.Error(t, err)
}
