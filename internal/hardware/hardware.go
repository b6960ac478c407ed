// Package hardware implements the Hardware Stage Adapter (component C10):
// for each HDL artifact, drive four escalating, independently-optional
// sub-stages (simulate, synthesize, program, benchmark), each skipped
// rather than failed when its tool or device is absent. Grounded on the
// teacher's internal/adapter.AdapterRunner façade (spawn, capture, timeout,
// cancellation) via internal/procfacade, generalized from an AI-tool
// adapter into an EDA-toolchain adapter.
package hardware

import (
	"context"
	"os"

	"github.com/MatthewHRockwell/atomik-sub001/internal/procfacade"
	"github.com/MatthewHRockwell/atomik-sub001/internal/schema"
)

// SubStage names one of the four escalating hardware sub-stages.
type SubStage string

const (
	StageSimulate   SubStage = "simulate"
	StageSynthesize SubStage = "synthesize"
	StageProgram    SubStage = "program"
	StageBenchmark  SubStage = "benchmark"
)

// Status is the outcome of one sub-stage.
type Status string

const (
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// ValidationLevel is how far an HDL artifact got through the escalation
// ladder, reported to the Controller.
type ValidationLevel string

const (
	LevelSimulationOnly ValidationLevel = "simulation_only"
	LevelSynthesized    ValidationLevel = "synthesized"
	LevelProgrammed     ValidationLevel = "programmed"
	LevelBenchmarked    ValidationLevel = "benchmarked"
)

// SubStageResult is one sub-stage's outcome. Metrics only holds the
// metrics that sub-stage actually produced; an absent key means the
// metric is unavailable, never zero.
type SubStageResult struct {
	Stage      SubStage
	Status     Status
	SkipReason string
	Output     string
	Metrics    map[string]float64
}

// Manifest is the adapter's one-per-run report to the Controller.
type Manifest struct {
	ArtifactPath    string
	ValidationLevel ValidationLevel
	Results         []SubStageResult
}

// AllMetrics flattens every sub-stage's metrics into one map, tagging
// each key with the sub-stage that produced it so two sub-stages can
// never collide on a metric name.
func (m Manifest) AllMetrics() map[string]float64 {
	out := make(map[string]float64)
	for _, r := range m.Results {
		for k, v := range r.Metrics {
			out[string(r.Stage)+"."+k] = v
		}
	}
	return out
}

// Stage orchestrates the four sub-stages over a single HDL artifact.
type Stage struct {
	runner          procfacade.Runner
	available       func(tool string) bool
	deviceReachable func(device string) bool
}

// NewStage returns a Stage using the real environment probe
// (procfacade.Available) and a device-reachability probe that always
// reports false absent a concrete device transport (see Glossary: OUT OF
// SCOPE names the serial/USB programming utility as an external
// collaborator specified only by interface).
func NewStage(runner procfacade.Runner) *Stage {
	return &Stage{
		runner:          runner,
		available:       procfacade.Available,
		deviceReachable: func(string) bool { return false },
	}
}

// NewStageWithPort returns a Stage whose device-reachability probe checks
// for the presence of a local serial/USB device node (comPort, e.g.
// "/dev/ttyUSB0") rather than reporting unreachable unconditionally. This
// is a local stand-in for the actual programming transport named as an
// external collaborator in the Glossary: presence of the device node is
// evidence the board is plugged in, not proof the programmer can talk to
// it. An empty comPort behaves like NewStage.
func NewStageWithPort(runner procfacade.Runner, comPort string) *Stage {
	s := NewStage(runner)
	if comPort == "" {
		return s
	}
	s.deviceReachable = func(string) bool {
		_, err := os.Stat(comPort)
		return err == nil
	}
	return s
}

// Run drives simulate, then synthesize, then program, then benchmark,
// stopping the escalation at the first sub-stage that is skipped or
// failed (a later sub-stage can never run without its predecessor
// having passed).
func (s *Stage) Run(ctx context.Context, artifactPath string, hw *schema.Hardware) Manifest {
	m := Manifest{ArtifactPath: artifactPath, ValidationLevel: LevelSimulationOnly}

	sim := s.simulate(ctx, artifactPath)
	m.Results = append(m.Results, sim)
	if sim.Status != StatusPassed {
		return m
	}

	synth := s.synthesize(ctx, artifactPath, hw)
	m.Results = append(m.Results, synth)
	if synth.Status != StatusPassed {
		return m
	}
	m.ValidationLevel = LevelSynthesized

	prog := s.program(ctx, artifactPath, hw)
	m.Results = append(m.Results, prog)
	if prog.Status != StatusPassed {
		return m
	}
	m.ValidationLevel = LevelProgrammed

	bench := s.benchmark(ctx, hw)
	m.Results = append(m.Results, bench)
	if bench.Status == StatusPassed {
		m.ValidationLevel = LevelBenchmarked
	}

	return m
}
