package audit

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewCreatesLogFileUnderDir(t *testing.T) {
	dir := t.TempDir()
	logger, err := New(dir, false)
	require.NoError(t, err)
	defer logger.Close()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.True(t, strings.HasPrefix(entries[0].Name(), "run-"))
	require.True(t, strings.HasSuffix(entries[0].Name(), ".jsonl"))
}

func TestLogWritesNewlineDelimitedJSON(t *testing.T) {
	dir := t.TempDir()
	logger, err := New(dir, false)
	require.NoError(t, err)

	require.NoError(t, logger.Infof("validate", "schema %s accepted", "terminal_io"))
	require.NoError(t, logger.Errorf("emit", "write failed: %s", "disk full"))
	require.NoError(t, logger.Close())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	content, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	require.Len(t, lines, 2)

	var first Event
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	require.Equal(t, "validate", first.Stage)
	require.Equal(t, LevelInfo, first.Level)
	require.Equal(t, "schema terminal_io accepted", first.Message)

	var second Event
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	require.Equal(t, LevelError, second.Level)
}

func TestLogWithFieldsRoundTrips(t *testing.T) {
	dir := t.TempDir()
	logger, err := New(dir, false)
	require.NoError(t, err)
	defer logger.Close()

	require.NoError(t, logger.Log("diff", LevelDebug, "change classified", map[string]interface{}{
		"change_class": "delta_fields",
		"emitters":     5,
	}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	content, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)

	var event Event
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(string(content))), &event))
	require.Equal(t, "delta_fields", event.Fields["change_class"])
}

func TestCloseThenLogFails(t *testing.T) {
	dir := t.TempDir()
	logger, err := New(dir, false)
	require.NoError(t, err)
	require.NoError(t, logger.Close())

	err = logger.Infof("validate", "should fail")
	require.Error(t, err)
}
