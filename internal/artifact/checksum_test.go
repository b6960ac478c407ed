package artifact

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteIfChangedIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")

	action, sum1, err := WriteIfChanged(path, []byte("hello"), 0o644)
	require.NoError(t, err)
	require.Equal(t, ActionCreated, action)

	action, sum2, err := WriteIfChanged(path, []byte("hello"), 0o644)
	require.NoError(t, err)
	require.Equal(t, ActionSkipped, action)
	require.Equal(t, sum1, sum2)

	action, sum3, err := WriteIfChanged(path, []byte("hello, world"), 0o644)
	require.NoError(t, err)
	require.Equal(t, ActionUpdated, action)
	require.NotEqual(t, sum1, sum3)
}

func TestManifestCountByAction(t *testing.T) {
	m := NewManifest("emit")
	m.Artifacts = []Descriptor{
		{Path: "a", Action: ActionCreated},
		{Path: "b", Action: ActionSkipped},
		{Path: "c", Action: ActionSkipped},
	}
	require.Equal(t, 1, m.CountByAction(ActionCreated))
	require.Equal(t, 2, m.CountByAction(ActionSkipped))
	require.Equal(t, 0, m.CountByAction(ActionUpdated))
}

func TestManifestFinishSetsFailedOnError(t *testing.T) {
	m := NewManifest("verify")
	m.AddError(StructuredError{Category: "verification", Code: "lint", Message: "boom", OriginStage: "verify"})
	m.Finish(m.Timestamp, "")
	require.Equal(t, StatusFailed, m.Status)
}
