package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/MatthewHRockwell/atomik-sub001/internal/procfacade"
	"github.com/stretchr/testify/require"
)

const scenarioSchema = `{
  "catalogue": {"vertical":"System","field":"Terminal","object":"TerminalIO","version":"1.0.0"},
  "schema": {
    "delta_fields": {"command_delta": {"kind":"parameter_delta","width":64}},
    "operations": {
      "accumulate": {"enabled": true, "latency_cycles": 1}
    }
  }
}`

const scenarioSchemaRenamed = `{
  "catalogue": {"vertical":"System","field":"Terminal","object":"TerminalIO","version":"1.0.1"},
  "schema": {
    "delta_fields": {"command_delta": {"kind":"parameter_delta","width":64}},
    "operations": {
      "accumulate": {"enabled": true, "latency_cycles": 1}
    }
  }
}`

const invalidSchema = `{
  "catalogue": {"vertical":"System","field":"Terminal","object":"TerminalIO","version":"not-semver"},
  "schema": {
    "delta_fields": {"d": {"kind":"parameter_delta","width":64}},
    "operations": {"accumulate": {"enabled": false}}
  }
}`

// alwaysPassRunner satisfies procfacade.Runner without touching the real
// environment, so a static-check tool that happens to be on the test
// machine's PATH still can't turn a controller test flaky: whichever
// target's checkSpec tool procfacade.Available finds, this runner reports
// it succeeded.
type alwaysPassRunner struct{}

func (alwaysPassRunner) Run(ctx context.Context, cfg procfacade.RunConfig) (*procfacade.Result, error) {
	return &procfacade.Result{ExitCode: 0, Stdout: "ok"}, nil
}

func newTestController() *Controller {
	return NewController(alwaysPassRunner{})
}

func writeSchema(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestControllerRunSucceedsOnFirstRun(t *testing.T) {
	dir := t.TempDir()
	schemaPath := writeSchema(t, dir, "schema.json", scenarioSchema)

	c := newTestController()
	run, err := c.Run(context.Background(), Options{
		SchemaPath:    schemaPath,
		OutputRoot:    filepath.Join(dir, "out"),
		CheckpointDir: filepath.Join(dir, ".atomik"),
		SimOnly:       true,
	})
	require.NoError(t, err)
	require.Equal(t, StateSuccess, run.State)
	require.Equal(t, ExitSuccess, run.ExitCode)
	require.NotEmpty(t, run.EmitManifest.Artifacts)

	for _, target := range []string{"hll", "sys", "lll", "js", "hdl"} {
		matched := false
		for _, d := range run.EmitManifest.Artifacts {
			if d.Language == target {
				matched = true
			}
		}
		require.True(t, matched, "expected an artifact for target %q", target)
	}
}

func TestControllerRunValidationFailureStopsBeforeEmit(t *testing.T) {
	dir := t.TempDir()
	schemaPath := writeSchema(t, dir, "schema.json", invalidSchema)

	c := newTestController()
	run, err := c.Run(context.Background(), Options{
		SchemaPath:    schemaPath,
		OutputRoot:    filepath.Join(dir, "out"),
		CheckpointDir: filepath.Join(dir, ".atomik"),
		SimOnly:       true,
	})
	require.NoError(t, err)
	require.Equal(t, StateFailed, run.State)
	require.Equal(t, ExitValidationFailed, run.ExitCode)
	require.NotEmpty(t, run.Errors)
	require.Nil(t, run.EmitManifest)
}

func TestControllerSecondRunWithoutChangeIsIdempotentNoOp(t *testing.T) {
	dir := t.TempDir()
	schemaPath := writeSchema(t, dir, "schema.json", scenarioSchema)
	opts := Options{
		SchemaPath:    schemaPath,
		OutputRoot:    filepath.Join(dir, "out"),
		CheckpointDir: filepath.Join(dir, ".atomik"),
		SimOnly:       true,
	}

	c := newTestController()
	first, err := c.Run(context.Background(), opts)
	require.NoError(t, err)
	require.Equal(t, StateSuccess, first.State)
	require.NotEmpty(t, first.EmitManifest.Artifacts)

	second, err := c.Run(context.Background(), opts)
	require.NoError(t, err)
	require.Equal(t, StateSuccess, second.State)
	require.Nil(t, second.EmitManifest)
	require.Equal(t, "none", string(second.DiffResult.Class))
}

func TestControllerDryRunEmitsNothing(t *testing.T) {
	dir := t.TempDir()
	schemaPath := writeSchema(t, dir, "schema.json", scenarioSchema)

	c := newTestController()
	run, err := c.Run(context.Background(), Options{
		SchemaPath:    schemaPath,
		OutputRoot:    filepath.Join(dir, "out"),
		CheckpointDir: filepath.Join(dir, ".atomik"),
		DryRun:        true,
	})
	require.NoError(t, err)
	require.Equal(t, StateSuccess, run.State)
	require.Nil(t, run.EmitManifest)

	entries, _ := os.ReadDir(filepath.Join(dir, "out"))
	require.Empty(t, entries)
}

func TestControllerRejectsConcurrentRun(t *testing.T) {
	dir := t.TempDir()
	schemaPath := writeSchema(t, dir, "schema.json", scenarioSchema)
	checkpointDir := filepath.Join(dir, ".atomik")
	require.NoError(t, os.MkdirAll(checkpointDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(checkpointDir, "lock"), []byte("1"), 0o644))

	c := newTestController()
	run, err := c.Run(context.Background(), Options{
		SchemaPath:    schemaPath,
		OutputRoot:    filepath.Join(dir, "out"),
		CheckpointDir: checkpointDir,
		SimOnly:       true,
	})
	require.NoError(t, err)
	require.Equal(t, StateFailed, run.State)
	require.Equal(t, ExitConcurrentRun, run.ExitCode)
}

func TestControllerReleasesLockOnSuccess(t *testing.T) {
	dir := t.TempDir()
	schemaPath := writeSchema(t, dir, "schema.json", scenarioSchema)
	checkpointDir := filepath.Join(dir, ".atomik")

	c := newTestController()
	_, err := c.Run(context.Background(), Options{
		SchemaPath:    schemaPath,
		OutputRoot:    filepath.Join(dir, "out"),
		CheckpointDir: checkpointDir,
		SimOnly:       true,
	})
	require.NoError(t, err)

	_, statErr := os.Stat(filepath.Join(checkpointDir, "lock"))
	require.True(t, os.IsNotExist(statErr))
}

func TestControllerWritesMetricsCSVAndReport(t *testing.T) {
	dir := t.TempDir()
	schemaPath := writeSchema(t, dir, "schema.json", scenarioSchema)
	csvPath := filepath.Join(dir, "history.csv")
	reportPath := filepath.Join(dir, "report.json")

	c := newTestController()
	run, err := c.Run(context.Background(), Options{
		SchemaPath:    schemaPath,
		OutputRoot:    filepath.Join(dir, "out"),
		CheckpointDir: filepath.Join(dir, ".atomik"),
		SimOnly:       true,
		MetricsCSV:    csvPath,
		ReportPath:    reportPath,
	})
	require.NoError(t, err)
	require.Equal(t, StateSuccess, run.State)

	csvData, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	require.Contains(t, string(csvData), "run_id")

	reportData, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	require.Contains(t, string(reportData), run.Report.RunID)
}

func TestControllerBatchRunsEverySchemaInLexicographicOrder(t *testing.T) {
	dir := t.TempDir()
	batchDir := filepath.Join(dir, "schemas")
	require.NoError(t, os.MkdirAll(batchDir, 0o755))
	writeSchema(t, batchDir, "a_terminal.json", scenarioSchema)
	writeSchema(t, batchDir, "b_terminal.json", scenarioSchemaRenamed)

	c := newTestController()
	report, err := c.RunBatch(context.Background(), batchDir, Options{
		OutputRoot:    filepath.Join(dir, "out"),
		CheckpointDir: filepath.Join(dir, ".atomik"),
		SimOnly:       true,
	})
	require.NoError(t, err)
	require.Len(t, report.Results, 2)
	require.Equal(t, ExitSuccess, report.ExitCode)
	require.Contains(t, report.Results[0].SchemaPath, "a_terminal.json")
	require.Contains(t, report.Results[1].SchemaPath, "b_terminal.json")
	for _, r := range report.Results {
		require.NoError(t, r.Err)
		require.Equal(t, StateSuccess, r.Run.State)
	}
}

func TestControllerWritesAuditLogWhenConfigured(t *testing.T) {
	dir := t.TempDir()
	schemaPath := writeSchema(t, dir, "schema.json", scenarioSchema)
	auditDir := filepath.Join(dir, "logs")

	c := newTestController()
	run, err := c.Run(context.Background(), Options{
		SchemaPath:    schemaPath,
		OutputRoot:    filepath.Join(dir, "out"),
		CheckpointDir: filepath.Join(dir, ".atomik"),
		SimOnly:       true,
		AuditDir:      auditDir,
	})
	require.NoError(t, err)
	require.Equal(t, StateSuccess, run.State)

	entries, err := os.ReadDir(auditDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	data, err := os.ReadFile(filepath.Join(auditDir, entries[0].Name()))
	require.NoError(t, err)
	require.Contains(t, string(data), `"stage":"report"`)
}

func TestControllerBatchIsolatesCheckpointsPerSchema(t *testing.T) {
	dir := t.TempDir()
	batchDir := filepath.Join(dir, "schemas")
	require.NoError(t, os.MkdirAll(batchDir, 0o755))
	writeSchema(t, batchDir, "a_terminal.json", scenarioSchema)
	writeSchema(t, batchDir, "b_terminal.json", scenarioSchemaRenamed)

	c := newTestController()
	checkpointRoot := filepath.Join(dir, ".atomik")
	_, err := c.RunBatch(context.Background(), batchDir, Options{
		OutputRoot:    filepath.Join(dir, "out"),
		CheckpointDir: checkpointRoot,
		SimOnly:       true,
	})
	require.NoError(t, err)

	_, errA := os.Stat(filepath.Join(checkpointRoot, "a_terminal", "checkpoint.json"))
	_, errB := os.Stat(filepath.Join(checkpointRoot, "b_terminal", "checkpoint.json"))
	require.NoError(t, errA)
	require.NoError(t, errB)
}
