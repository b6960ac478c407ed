package hardware

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MatthewHRockwell/atomik-sub001/internal/procfacade"
	"github.com/MatthewHRockwell/atomik-sub001/internal/schema"
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

func noneAvailable(string) bool     { return false }
func allAvailable(string) bool      { return true }
func noDeviceReachable(string) bool { return false }

func TestRunSkipsEverythingWithNoToolchain(t *testing.T) {
	runner := &scriptedRunner{}
	stage := NewStage(runner)
	stage.available = noneAvailable

	m := stage.Run(context.Background(), "root/out/hdl/module.v", nil)
	require.Equal(t, LevelSimulationOnly, m.ValidationLevel)
	require.Len(t, m.Results, 1)
	require.Equal(t, StageSimulate, m.Results[0].Stage)
	require.Equal(t, StatusSkipped, m.Results[0].Status)
}

func TestSimulatePassesAndStopsEscalationWithoutSynthesizer(t *testing.T) {
	runner := &scriptedRunner{results: []*procfacade.Result{
		{ExitCode: 0},
		{ExitCode: 0, Stdout: "all assertions held"},
	}}
	stage := NewStage(runner)
	stage.available = func(tool string) bool { return tool == "iverilog" || tool == "vvp" }

	m := stage.Run(context.Background(), "root/out/hdl/module.v", nil)
	require.Equal(t, LevelSimulationOnly, m.ValidationLevel)
	require.Len(t, m.Results, 2)
	require.Equal(t, StatusPassed, m.Results[0].Status)
	require.Equal(t, float64(1), m.Results[0].Metrics["sim_tests_passed"])
	require.Equal(t, StageSynthesize, m.Results[1].Stage)
	require.Equal(t, StatusSkipped, m.Results[1].Status)
}

func TestSimulateFailsOnFatalAssertion(t *testing.T) {
	runner := &scriptedRunner{results: []*procfacade.Result{
		{ExitCode: 0},
		{ExitCode: 0, Stdout: "self-inverse property violated at t=40"},
	}}
	stage := NewStage(runner)
	stage.available = allAvailable
	stage.deviceReachable = noDeviceReachable

	result := stage.simulate(context.Background(), "root/out/hdl/module.v")
	require.Equal(t, StatusFailed, result.Status)
	require.Equal(t, float64(0), result.Metrics["sim_tests_passed"])
}

func TestSynthesizeParsesUtilizationAndTiming(t *testing.T) {
	runner := &scriptedRunner{results: []*procfacade.Result{{
		ExitCode: 0,
		Stdout: "Number of cells: 412\n" +
			"SB_DFF_N   128\n" +
			"Max frequency for clock: 102.4 MHz\n" +
			"slack (MET) 1.20 ns\n",
	}}}
	stage := NewStage(runner)
	stage.available = allAvailable

	result := stage.synthesize(context.Background(), "root/out/hdl/module.v", &schema.Hardware{})
	require.Equal(t, StatusPassed, result.Status)
	require.Equal(t, float64(412), result.Metrics["lut_used"])
	require.Equal(t, float64(128), result.Metrics["ff_used"])
	require.Equal(t, float64(102.4), result.Metrics["fmax_mhz"])
	require.Equal(t, float64(1.20), result.Metrics["timing_slack_ns"])
	require.Equal(t, float64(1), result.Metrics["timing_met"])
}

func TestProgramSkipsWithoutTargetDevice(t *testing.T) {
	runner := &scriptedRunner{}
	stage := NewStage(runner)
	stage.available = allAvailable

	result := stage.program(context.Background(), "root/out/hdl/module.bit", nil)
	require.Equal(t, StatusSkipped, result.Status)
	require.Contains(t, result.SkipReason, "target_device")
}

func TestProgramSkipsWhenDeviceUnreachable(t *testing.T) {
	runner := &scriptedRunner{}
	stage := NewStage(runner)
	stage.available = allAvailable
	stage.deviceReachable = noDeviceReachable

	result := stage.program(context.Background(), "root/out/hdl/module.bit", &schema.Hardware{TargetDevice: "ice40-hx8k"})
	require.Equal(t, StatusSkipped, result.Status)
	require.Contains(t, result.SkipReason, "not reachable")
}

func TestFullEscalationToBenchmarked(t *testing.T) {
	runner := &scriptedRunner{results: []*procfacade.Result{
		{ExitCode: 0},                                   // simulate compile
		{ExitCode: 0, Stdout: "ok"},                      // simulate run
		{ExitCode: 0, Stdout: "Number of cells: 10\n"},   // synthesize
		{ExitCode: 0, Stdout: "programming complete\n"},  // program
		{ExitCode: 0, Stdout: "ops/sec: 5000000\nlatency: 12.5 ns\npower: 45.0 mW\n"}, // benchmark
	}}
	stage := NewStage(runner)
	stage.available = allAvailable
	stage.deviceReachable = func(string) bool { return true }

	hw := &schema.Hardware{TargetDevice: "ice40-hx8k"}
	m := stage.Run(context.Background(), "root/out/hdl/module.v", hw)
	require.Equal(t, LevelBenchmarked, m.ValidationLevel)
	require.Len(t, m.Results, 4)

	metrics := m.AllMetrics()
	require.Equal(t, float64(5000000), metrics["benchmark.ops_per_second"])
	require.Equal(t, float64(45.0), metrics["benchmark.power_estimate_mw"])
}

func TestNewStageWithPortReportsReachableOnlyWhenNodeExists(t *testing.T) {
	stage := NewStageWithPort(&scriptedRunner{}, "")
	require.False(t, stage.deviceReachable("ice40-hx8k"))

	missing := NewStageWithPort(&scriptedRunner{}, t.TempDir()+"/no-such-port")
	require.False(t, missing.deviceReachable("ice40-hx8k"))

	present := NewStageWithPort(&scriptedRunner{}, t.TempDir())
	require.True(t, present.deviceReachable("ice40-hx8k"))
}
