// Package verify implements the verification stage (component C8): run a
// language-native static check for each emitter that produced artifacts,
// classify failures deterministically, attempt a bounded number of
// deterministic re-emit fixes, and escalate anything still unclassified.
// Grounded on the teacher's contract.quality_gate (gate config → violation
// list → pass/fail) and contract.retry_strategy (bounded retry loop).
package verify

import (
	"context"
	"fmt"

	"github.com/MatthewHRockwell/atomik-sub001/internal/namespace"
	"github.com/MatthewHRockwell/atomik-sub001/internal/procfacade"
)

// MaxRetries bounds the deterministic re-emit-and-recheck loop per
// artifact (spec: "Retries are capped at 2").
const MaxRetries = 2

// Status is the outcome of one target's check.
type Status string

const (
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// CheckResult is one target language's verification outcome.
type CheckResult struct {
	Target     namespace.Target
	Status     Status
	Output     string
	Class      FailureClass
	SkipReason string
	Retries    int
	Escalated  bool
}

// ReEmitFunc re-runs the emitter for one target, rewriting its artifacts
// from the schema. The verification stage calls it as the deterministic
// fixer for any classified (non-Unclassified) failure.
type ReEmitFunc func(target namespace.Target) error

// Stage runs the static checks for a set of targets.
type Stage struct {
	runner    procfacade.Runner
	reEmit    ReEmitFunc
	available func(tool string) bool
	specs     map[namespace.Target]checkSpec
}

// NewStage returns a verification Stage using the real environment probe
// (procfacade.Available) and the built-in per-language check table.
func NewStage(runner procfacade.Runner, reEmit ReEmitFunc) *Stage {
	return &Stage{runner: runner, reEmit: reEmit, available: procfacade.Available, specs: checksByTarget}
}

// ArtifactPath is the path handed to a target's static-check command.
type ArtifactPath struct {
	Target namespace.Target
	Path   string
}

// Run checks every artifact, classifying and attempting a bounded number
// of deterministic fixes for each failure before giving up.
func (s *Stage) Run(ctx context.Context, artifacts []ArtifactPath) []CheckResult {
	results := make([]CheckResult, 0, len(artifacts))
	for _, a := range artifacts {
		results = append(results, s.runOne(ctx, a))
	}
	return results
}

func (s *Stage) runOne(ctx context.Context, a ArtifactPath) CheckResult {
	spec, ok := s.specs[a.Target]
	if !ok {
		return CheckResult{Target: a.Target, Status: StatusSkipped, SkipReason: fmt.Sprintf("no check command registered for target %q", a.Target)}
	}

	if !s.available(spec.tool) {
		return CheckResult{Target: a.Target, Status: StatusSkipped, SkipReason: fmt.Sprintf("%s not found on PATH", spec.tool)}
	}

	retries := 0
	for {
		result, err := s.runner.Run(ctx, procfacade.RunConfig{Name: spec.tool, Args: spec.args(a.Path)})
		if err != nil && result == nil {
			return CheckResult{Target: a.Target, Status: StatusFailed, Output: err.Error(), Class: ClassUnclassified, Retries: retries, Escalated: true}
		}
		if result.ExitCode == 0 {
			return CheckResult{Target: a.Target, Status: StatusPassed, Output: result.Stdout, Retries: retries}
		}

		output := result.Stdout + result.Stderr
		class := Classify(output)
		if class == ClassUnclassified || retries >= MaxRetries || s.reEmit == nil {
			return CheckResult{Target: a.Target, Status: StatusFailed, Output: output, Class: class, Retries: retries, Escalated: class == ClassUnclassified}
		}

		if fixErr := s.reEmit(a.Target); fixErr != nil {
			return CheckResult{Target: a.Target, Status: StatusFailed, Output: output, Class: class, Retries: retries, Escalated: true}
		}
		retries++
	}
}
