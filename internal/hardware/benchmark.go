package hardware

import (
	"context"
	"regexp"

	"github.com/MatthewHRockwell/atomik-sub001/internal/procfacade"
	"github.com/MatthewHRockwell/atomik-sub001/internal/schema"
)

var (
	opsPerSecPattern = regexp.MustCompile(`(?i)ops[_/]sec(?:ond)?:\s+([0-9.]+)`)
	latencyPattern   = regexp.MustCompile(`(?i)latency:\s+([0-9.]+)\s*ns`)
	powerPattern     = regexp.MustCompile(`(?i)power:\s+([0-9.]+)\s*mW`)
)

// benchmark drives the on-device throughput/power measurement over the
// same programmer transport, reusing its reachability probe; it only
// runs once the device has actually been programmed this run.
func (s *Stage) benchmark(ctx context.Context, hw *schema.Hardware) SubStageResult {
	if hw == nil || hw.TargetDevice == "" {
		return SubStageResult{Stage: StageBenchmark, Status: StatusSkipped, SkipReason: "no target_device named in schema"}
	}
	if !s.available(programmerTool) {
		return SubStageResult{Stage: StageBenchmark, Status: StatusSkipped, SkipReason: programmerTool + " not found on PATH"}
	}
	if !s.deviceReachable(hw.TargetDevice) {
		return SubStageResult{Stage: StageBenchmark, Status: StatusSkipped, SkipReason: "target device " + hw.TargetDevice + " not reachable"}
	}

	result, err := s.runner.Run(ctx, procfacade.RunConfig{
		Name: programmerTool,
		Args: []string{"-b", hw.TargetDevice, "--benchmark"},
	})
	if err != nil || result == nil {
		return SubStageResult{Stage: StageBenchmark, Status: StatusFailed, Output: "benchmark probe did not return a result"}
	}
	output := result.Stdout + result.Stderr
	if result.ExitCode != 0 {
		return SubStageResult{Stage: StageBenchmark, Status: StatusFailed, Output: output}
	}

	metrics := map[string]float64{}
	if v, ok := parseFloatField(opsPerSecPattern, output); ok {
		metrics["ops_per_second"] = v
	}
	if v, ok := parseFloatField(latencyPattern, output); ok {
		metrics["per_operation_latency_ns"] = v
	}
	if v, ok := parseFloatField(powerPattern, output); ok {
		metrics["power_estimate_mw"] = v
	}

	return SubStageResult{Stage: StageBenchmark, Status: StatusPassed, Output: output, Metrics: metrics}
}
