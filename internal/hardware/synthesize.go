package hardware

import (
	"context"
	"regexp"

	"github.com/MatthewHRockwell/atomik-sub001/internal/procfacade"
	"github.com/MatthewHRockwell/atomik-sub001/internal/schema"
)

const synthesizerTool = "yosys"

var (
	lutPattern    = regexp.MustCompile(`(?i)number of cells:\s+(\d+)`)
	ffPattern     = regexp.MustCompile(`(?i)\bSB_DFF\w*\s+(\d+)`)
	fmaxPattern   = regexp.MustCompile(`(?i)Max frequency.*?:\s+([0-9.]+)\s*MHz`)
	slackPattern  = regexp.MustCompile(`(?i)slack.*?([+-]?[0-9.]+)\s*ns`)
	timingMetText = regexp.MustCompile(`(?i)timing constraints are met|no timing violations`)
)

// synthesize invokes the synthesizer and parses its utilization/timing
// report. It is skipped rather than failed when the synthesizer binary
// is absent from PATH.
func (s *Stage) synthesize(ctx context.Context, modulePath string, hw *schema.Hardware) SubStageResult {
	if !s.available(synthesizerTool) {
		return SubStageResult{Stage: StageSynthesize, Status: StatusSkipped, SkipReason: synthesizerTool + " not found on PATH"}
	}

	goal := "speed"
	if hw != nil && hw.SynthesisOptions != nil && hw.SynthesisOptions.OptimizationGoal != "" {
		goal = string(hw.SynthesisOptions.OptimizationGoal)
	}

	result, err := s.runner.Run(ctx, procfacade.RunConfig{
		Name: synthesizerTool,
		Args: []string{"-p", "synth_ice40; stat", modulePath},
		Env:  []string{"ATOMIK_SYNTH_GOAL=" + goal},
	})
	if err != nil || result == nil {
		return SubStageResult{Stage: StageSynthesize, Status: StatusFailed, Output: "synthesizer did not return a result"}
	}
	output := result.Stdout + result.Stderr
	if result.ExitCode != 0 {
		return SubStageResult{Stage: StageSynthesize, Status: StatusFailed, Output: output}
	}

	metrics := map[string]float64{}
	if v, ok := parseFloatField(lutPattern, output); ok {
		metrics["lut_used"] = v
	}
	if v, ok := parseFloatField(ffPattern, output); ok {
		metrics["ff_used"] = v
	}
	if v, ok := parseFloatField(fmaxPattern, output); ok {
		metrics["fmax_mhz"] = v
	}
	if v, ok := parseFloatField(slackPattern, output); ok {
		metrics["timing_slack_ns"] = v
		if v >= 0 {
			metrics["timing_met"] = 1
		} else {
			metrics["timing_met"] = 0
		}
	} else if timingMetText.MatchString(output) {
		metrics["timing_met"] = 1
	}

	return SubStageResult{Stage: StageSynthesize, Status: StatusPassed, Output: output, Metrics: metrics}
}
