package pipeline

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExitCodesMatchCategoryOrdering(t *testing.T) {
	require.Equal(t, ExitCode(0), ExitSuccess)
	require.Equal(t, ExitCode(1), ExitValidationFailed)
	require.Equal(t, ExitCode(2), ExitEmissionFailed)
	require.Equal(t, ExitCode(3), ExitVerificationFailed)
	require.Equal(t, ExitCode(4), ExitHardwareFailed)
	require.Equal(t, ExitCode(5), ExitBudgetExceeded)
	require.Equal(t, ExitCode(6), ExitConcurrentRun)
}

func TestStateNamesMatchStageSequence(t *testing.T) {
	sequence := []State{
		StateIdle, StateValidating, StateDiffing, StateEmitting,
		StateVerifying, StateHardwareOptional, StateReporting,
	}
	seen := make(map[State]bool)
	for _, s := range sequence {
		require.False(t, seen[s], "duplicate state %q in sequence", s)
		seen[s] = true
	}
}
