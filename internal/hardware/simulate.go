package hardware

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/MatthewHRockwell/atomik-sub001/internal/procfacade"
)

// testbenchPath derives the HDL emitter's companion self-checking
// testbench path from the module path it always accompanies.
func testbenchPath(modulePath string) string {
	return strings.TrimSuffix(modulePath, ".v") + "_tb.v"
}

var assertionPattern = regexp.MustCompile(`(?i)\$fatal|ASSERTION FAILED|self-inverse property violated`)

// simulate compiles the module and its testbench with iverilog and runs
// the result with vvp. It is always attempted, never skipped on grounds
// of schema content, only on a missing toolchain.
func (s *Stage) simulate(ctx context.Context, modulePath string) SubStageResult {
	if !s.available("iverilog") || !s.available("vvp") {
		return SubStageResult{Stage: StageSimulate, Status: StatusSkipped, SkipReason: "iverilog/vvp not found on PATH"}
	}

	compiled := strings.TrimSuffix(modulePath, ".v") + ".sim.out"
	compileResult, err := s.runner.Run(ctx, procfacade.RunConfig{
		Name: "iverilog",
		Args: []string{"-g2012", "-o", compiled, modulePath, testbenchPath(modulePath)},
	})
	if err != nil || compileResult == nil || compileResult.ExitCode != 0 {
		output := ""
		if compileResult != nil {
			output = compileResult.Stdout + compileResult.Stderr
		}
		return SubStageResult{Stage: StageSimulate, Status: StatusFailed, Output: output}
	}

	runResult, err := s.runner.Run(ctx, procfacade.RunConfig{Name: "vvp", Args: []string{compiled}})
	if err != nil || runResult == nil {
		return SubStageResult{Stage: StageSimulate, Status: StatusFailed, Output: "vvp did not return a result"}
	}

	output := runResult.Stdout + runResult.Stderr
	if runResult.ExitCode != 0 || assertionPattern.MatchString(output) {
		return SubStageResult{
			Stage:   StageSimulate,
			Status:  StatusFailed,
			Output:  output,
			Metrics: map[string]float64{"sim_tests_passed": 0, "sim_tests_total": 1},
		}
	}

	return SubStageResult{
		Stage:   StageSimulate,
		Status:  StatusPassed,
		Output:  output,
		Metrics: map[string]float64{"sim_tests_passed": 1, "sim_tests_total": 1},
	}
}

// parseFloatField extracts the first float following label in text, or
// ok=false if the label never appears.
func parseFloatField(pattern *regexp.Regexp, text string) (float64, bool) {
	m := pattern.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
