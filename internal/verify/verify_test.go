package verify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MatthewHRockwell/atomik-sub001/internal/namespace"
	"github.com/MatthewHRockwell/atomik-sub001/internal/procfacade"
)

type scriptedRunner struct {
	calls   int
	results []*procfacade.Result
}

func (r *scriptedRunner) Run(ctx context.Context, cfg procfacade.RunConfig) (*procfacade.Result, error) {
	idx := r.calls
	if idx >= len(r.results) {
		idx = len(r.results) - 1
	}
	r.calls++
	return r.results[idx], nil
}

// stubSpecs returns a specs table for namespace.TargetHLL only, so tests
// never shell out to a real compiler.
func stubSpecs() map[namespace.Target]checkSpec {
	return map[namespace.Target]checkSpec{
		namespace.TargetHLL: {tool: "stub-tool", args: func(p string) []string { return nil }},
	}
}

func alwaysAvailable(string) bool { return true }

func TestClassifyKnownPatterns(t *testing.T) {
	require.Equal(t, ClassImportPathMismatch, Classify("ModuleNotFoundError: no module named foo"))
	require.Equal(t, ClassMissingPunctuation, Classify("SyntaxError: expected ;"))
	require.Equal(t, ClassUndefinedSymbol, Classify("error: undefined reference to `accumulate_command_delta'"))
	require.Equal(t, ClassUnclassified, Classify("segmentation fault"))
}

func TestRunOneSkipsUnregisteredTarget(t *testing.T) {
	runner := &scriptedRunner{results: []*procfacade.Result{{ExitCode: 0, Stdout: "ok"}}}
	stage := NewStage(runner, nil)
	stage.available = alwaysAvailable
	stage.specs = stubSpecs()

	results := stage.Run(context.Background(), []ArtifactPath{{Target: "unknown-target", Path: "x"}})
	require.Equal(t, StatusSkipped, results[0].Status)
}

func TestRunOneSkipsWhenToolUnavailable(t *testing.T) {
	runner := &scriptedRunner{results: []*procfacade.Result{{ExitCode: 0, Stdout: "ok"}}}
	stage := NewStage(runner, nil)
	stage.available = func(string) bool { return false }
	stage.specs = stubSpecs()

	results := stage.Run(context.Background(), []ArtifactPath{{Target: namespace.TargetHLL, Path: "x.py"}})
	require.Equal(t, StatusSkipped, results[0].Status)
	require.Contains(t, results[0].SkipReason, "stub-tool")
}

func TestRunRecoversViaReEmitOnClassifiedFailure(t *testing.T) {
	runner := &scriptedRunner{results: []*procfacade.Result{
		{ExitCode: 1, Stderr: "SyntaxError: expected ;"},
		{ExitCode: 0, Stdout: "ok"},
	}}
	reEmitCalls := 0
	reEmit := func(target namespace.Target) error {
		reEmitCalls++
		return nil
	}
	stage := NewStage(runner, reEmit)
	stage.available = alwaysAvailable
	stage.specs = stubSpecs()

	results := stage.Run(context.Background(), []ArtifactPath{{Target: namespace.TargetHLL, Path: "x.py"}})
	require.Equal(t, StatusPassed, results[0].Status)
	require.Equal(t, 1, reEmitCalls)
	require.Equal(t, 1, results[0].Retries)
}

func TestRunEscalatesUnclassifiedFailure(t *testing.T) {
	runner := &scriptedRunner{results: []*procfacade.Result{{ExitCode: 1, Stderr: "segmentation fault"}}}
	stage := NewStage(runner, func(namespace.Target) error { return nil })
	stage.available = alwaysAvailable
	stage.specs = stubSpecs()

	results := stage.Run(context.Background(), []ArtifactPath{{Target: namespace.TargetHLL, Path: "x.py"}})
	require.Equal(t, StatusFailed, results[0].Status)
	require.True(t, results[0].Escalated)
	require.Equal(t, ClassUnclassified, results[0].Class)
}

func TestRunGivesUpAfterMaxRetries(t *testing.T) {
	results := make([]*procfacade.Result, 0, MaxRetries+2)
	for i := 0; i < MaxRetries+2; i++ {
		results = append(results, &procfacade.Result{ExitCode: 1, Stderr: "SyntaxError: expected ;"})
	}
	runner := &scriptedRunner{results: results}
	reEmitCalls := 0
	stage := NewStage(runner, func(namespace.Target) error { reEmitCalls++; return nil })
	stage.available = alwaysAvailable
	stage.specs = stubSpecs()

	got := stage.Run(context.Background(), []ArtifactPath{{Target: namespace.TargetHLL, Path: "x.py"}})
	require.Equal(t, StatusFailed, got[0].Status)
	require.Equal(t, MaxRetries, got[0].Retries)
	require.Equal(t, MaxRetries, reEmitCalls)
	require.False(t, got[0].Escalated)
}
