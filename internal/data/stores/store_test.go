package stores

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/colonyops/taskdesk/internal/data/db"
)

func openTestDB(t *testing.T) *db.DB {
	t.Helper()
	database, err := db.Open(t.TempDir(), db.DefaultOpenOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	return database
}
