package logutils

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/taskdesk/internal/core/logging"
)

func TestOptions_Target(t *testing.T) {
	tests := []struct {
		opts Options
		want string
	}{
		{Options{Dir: "/data"}, filepath.Join("/data", DefaultFile)},
		{Options{Path: "-", Dir: "/data"}, ""},
		{Options{Path: "/var/log/td.log", Dir: "/data"}, "/var/log/td.log"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.opts.Target(), "%+v", tt.opts)
	}
}

func TestNew_WritesJSONToFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")

	l, closer, err := New(Options{Level: "info", Dir: dir})
	require.NoError(t, err)

	ctx := logging.WithUserID(context.Background(), "u-7")
	l.Debug().Msg("below level")
	l.Info().Ctx(ctx).Str("task_id", "t1").Msg("task created")
	closer()

	data, err := os.ReadFile(filepath.Join(dir, DefaultFile))
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(data, &entry))
	assert.Equal(t, "task created", entry["message"])
	assert.Equal(t, "t1", entry["task_id"])
	assert.Equal(t, "u-7", entry["user_id"])
	assert.Contains(t, entry, "time")
}

func TestNew_InvalidLevel(t *testing.T) {
	_, closer, err := New(Options{Level: "loud", Path: "-"})
	require.ErrorContains(t, err, "log level")
	closer()
}
