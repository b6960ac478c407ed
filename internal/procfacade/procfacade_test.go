package procfacade

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRunCapturesStdout(t *testing.T) {
	r := New()
	result, err := r.Run(context.Background(), RunConfig{Name: "echo", Args: []string{"hello"}})
	require.NoError(t, err)
	require.Equal(t, 0, result.ExitCode)
	require.Contains(t, result.Stdout, "hello")
	require.False(t, result.TimedOut)
}

func TestRunReportsNonZeroExit(t *testing.T) {
	r := New()
	result, err := r.Run(context.Background(), RunConfig{Name: "sh", Args: []string{"-c", "exit 7"}})
	require.NoError(t, err)
	require.Equal(t, 7, result.ExitCode)
}

func TestRunHonorsTimeout(t *testing.T) {
	r := New()
	result, err := r.Run(context.Background(), RunConfig{
		Name:    "sleep",
		Args:    []string{"5"},
		Timeout: 50 * time.Millisecond,
	})
	require.Error(t, err)
	require.NotNil(t, result)
	require.True(t, result.TimedOut)
}

func TestRunHonorsCancellation(t *testing.T) {
	r := New()
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	result, err := r.Run(ctx, RunConfig{Name: "sleep", Args: []string{"5"}})
	require.Error(t, err)
	require.True(t, result.TimedOut)
}

func TestAvailableDetectsKnownBinary(t *testing.T) {
	require.True(t, Available("sh"))
	require.False(t, Available("definitely-not-a-real-binary-xyz"))
}
