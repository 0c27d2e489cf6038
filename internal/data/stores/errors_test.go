package stores

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/taskdesk/internal/data/db"
)

func TestIsNotFoundError(t *testing.T) {
	assert.True(t, IsNotFoundError(fmt.Errorf("wrap: %w", sql.ErrNoRows)))
	assert.False(t, IsNotFoundError(errors.New("other")))
}

func TestIsCorruptionError_Message(t *testing.T) {
	assert.True(t, IsCorruptionError(errors.New("database disk image is malformed")))
	assert.False(t, IsCorruptionError(errors.New("constraint failed")))
	assert.False(t, IsCorruptionError(nil))
}

func TestIsUniqueConstraintError(t *testing.T) {
	assert.True(t, isUniqueConstraintError(errors.New("UNIQUE constraint failed: users.email")))
	assert.False(t, isUniqueConstraintError(errors.New("NOT NULL constraint failed: users.name")))
	assert.False(t, isUniqueConstraintError(nil))
}

func TestRecoverFromCorruption_NothingToMove(t *testing.T) {
	backup, err := RecoverFromCorruption(t.TempDir())
	require.NoError(t, err)
	assert.NoFileExists(t, backup)
}

func TestRecoverFromCorruption(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, db.FileName)
	require.NoError(t, os.WriteFile(dbPath, []byte("garbage"), 0o644))
	require.NoError(t, os.WriteFile(dbPath+"-wal", []byte("wal"), 0o644))

	backup, err := RecoverFromCorruption(dir)
	require.NoError(t, err)
	assert.FileExists(t, backup)
	assert.FileExists(t, backup+"-wal")

	_, err = os.Stat(dbPath)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(dbPath + "-wal")
	assert.True(t, os.IsNotExist(err))

	matches, err := filepath.Glob(filepath.Join(dir, db.FileName+".corrupt.*"))
	require.NoError(t, err)
	assert.NotEmpty(t, matches)

	database, err := db.Open(dir, db.DefaultOpenOptions())
	require.NoError(t, err)
	require.NoError(t, database.Close())
}
