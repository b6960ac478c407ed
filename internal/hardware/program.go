package hardware

import (
	"context"
	"regexp"
	"time"

	"github.com/MatthewHRockwell/atomik-sub001/internal/procfacade"
	"github.com/MatthewHRockwell/atomik-sub001/internal/schema"
)

const programmerTool = "openFPGALoader"

var programmedPattern = regexp.MustCompile(`(?i)(done|success|programming complete)`)

// program drives the device programmer. It is skipped when no target
// device is named in the schema, the programmer binary is absent, or
// the device is unreachable over its transport (OUT OF SCOPE names the
// serial/USB programming utility as an external collaborator specified
// only by interface).
func (s *Stage) program(ctx context.Context, bitstreamPath string, hw *schema.Hardware) SubStageResult {
	if hw == nil || hw.TargetDevice == "" {
		return SubStageResult{Stage: StageProgram, Status: StatusSkipped, SkipReason: "no target_device named in schema"}
	}
	if !s.available(programmerTool) {
		return SubStageResult{Stage: StageProgram, Status: StatusSkipped, SkipReason: programmerTool + " not found on PATH"}
	}
	if !s.deviceReachable(hw.TargetDevice) {
		return SubStageResult{Stage: StageProgram, Status: StatusSkipped, SkipReason: "target device " + hw.TargetDevice + " not reachable"}
	}

	start := time.Now()
	result, err := s.runner.Run(ctx, procfacade.RunConfig{
		Name: programmerTool,
		Args: []string{"-b", hw.TargetDevice, bitstreamPath},
	})
	elapsedMS := float64(time.Since(start).Milliseconds())

	if err != nil || result == nil {
		return SubStageResult{Stage: StageProgram, Status: StatusFailed, Output: "programmer did not return a result"}
	}
	output := result.Stdout + result.Stderr
	if result.ExitCode != 0 || !programmedPattern.MatchString(output) {
		return SubStageResult{Stage: StageProgram, Status: StatusFailed, Output: output}
	}

	return SubStageResult{
		Stage:   StageProgram,
		Status:  StatusPassed,
		Output:  output,
		Metrics: map[string]float64{"programming_duration_ms": elapsedMS},
	}
}
