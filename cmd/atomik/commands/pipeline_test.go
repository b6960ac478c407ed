package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MatthewHRockwell/atomik-sub001/internal/checkpoint"
	"github.com/MatthewHRockwell/atomik-sub001/internal/namespace"
)

func TestParseTargetsEmptyMeansEveryTarget(t *testing.T) {
	targets, err := parseTargets(nil)
	require.NoError(t, err)
	assert.Nil(t, targets)
}

func TestParseTargetsValidatesAgainstKnownTargets(t *testing.T) {
	targets, err := parseTargets([]string{"hll", "hdl"})
	require.NoError(t, err)
	assert.Equal(t, []namespace.Target{namespace.TargetHLL, namespace.TargetHDL}, targets)

	_, err = parseTargets([]string{"cobol"})
	assert.Error(t, err)
}

func TestRemainingLabelReportsUnboundedForZeroCap(t *testing.T) {
	assert.Equal(t, "unbounded", remainingLabel(checkpoint.TokenLedger{Cap: 0}))
	assert.Equal(t, "7", remainingLabel(checkpoint.TokenLedger{Cap: 10, Spent: 3}))
}

func TestFileURI(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
	}{
		{name: "absolute path", path: "/home/user/file.json", want: "file:///home/user/file.json"},
		{name: "relative path unchanged", path: ".atomik/checkpoint.json", want: ".atomik/checkpoint.json"},
		{name: "already file:// prefixed", path: "file:///home/user/file.json", want: "file:///home/user/file.json"},
		{name: "https URL unchanged", path: "https://github.com/org/repo", want: "https://github.com/org/repo"},
		{name: "empty string", path: "", want: ""},
		{name: "root path", path: "/", want: "file:///"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, fileURI(tt.path))
		})
	}
}
