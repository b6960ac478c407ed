package pipeline

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/MatthewHRockwell/atomik-sub001/internal/artifact"
	"github.com/MatthewHRockwell/atomik-sub001/internal/audit"
	"github.com/MatthewHRockwell/atomik-sub001/internal/checkpoint"
	"github.com/MatthewHRockwell/atomik-sub001/internal/correct"
	"github.com/MatthewHRockwell/atomik-sub001/internal/diff"
	"github.com/MatthewHRockwell/atomik-sub001/internal/hardware"
	"github.com/MatthewHRockwell/atomik-sub001/internal/metrics"
	"github.com/MatthewHRockwell/atomik-sub001/internal/namespace"
	"github.com/MatthewHRockwell/atomik-sub001/internal/procfacade"
	"github.com/MatthewHRockwell/atomik-sub001/internal/security"
	"github.com/MatthewHRockwell/atomik-sub001/internal/validate"
	"github.com/MatthewHRockwell/atomik-sub001/internal/verify"
)

// Options configures one pipeline run, mirroring the `pipeline run` flag
// surface of §6.
type Options struct {
	SchemaPath    string
	OutputRoot    string
	CheckpointDir string
	Languages     []namespace.Target // empty means every target the differ selects
	SimOnly       bool
	SkipSynthesis bool
	TokenBudget   int
	DryRun        bool
	MetricsCSV    string // path to the append-only history file; empty disables it
	ReportPath    string // path for the per-run JSON report; empty disables it
	AuditDir      string // directory for the per-run structured log; empty disables it
	AuditMirror   bool   // also mirror audit events to stderr
	ComPort       string // serial/USB device node probed for hardware-stage reachability
	OnStage       func(stage, message string) // optional live progress hook, e.g. a TUI
}

// writeMetrics appends snap to the CSV history (if configured) and writes
// the JSON report (if configured). Either path being empty skips that
// artifact rather than erroring.
func writeMetrics(opts Options, snap metrics.Snapshot) error {
	if opts.MetricsCSV != "" {
		history, err := metrics.NewHistory(opts.MetricsCSV)
		if err != nil {
			return fmt.Errorf("pipeline: opening metrics history: %w", err)
		}
		if err := history.Append(snap); err != nil {
			return fmt.Errorf("pipeline: appending metrics history: %w", err)
		}
	}
	if opts.ReportPath != "" {
		if err := metrics.WriteReport(opts.ReportPath, metrics.NewReport(snap)); err != nil {
			return fmt.Errorf("pipeline: writing report: %w", err)
		}
	}
	return nil
}

// Run is the outcome of one pipeline invocation.
type Run struct {
	State          State
	ExitCode       ExitCode
	DiffResult     diff.Result
	EmitManifest   *artifact.Manifest
	VerifyResults  []verify.CheckResult
	HardwareResult *hardware.Manifest
	Report         metrics.Report
	Errors         []artifact.StructuredError
}

// Controller executes the stage sequence for one schema (or, via RunBatch,
// a directory of them), grounded on the teacher's DefaultPipelineExecutor:
// sequential state machine, each stage fed only the prior manifest and the
// persistent checkpoint.
type Controller struct {
	Runner        procfacade.Runner
	HardwareStage *hardware.Stage
	Router        *correct.Router
}

// NewController wires the verification/hardware stages onto the given
// process façade.
func NewController(runner procfacade.Runner) *Controller {
	return &Controller{Runner: runner, HardwareStage: hardware.NewStage(runner)}
}

// Run drives intake → validate → diff → emit → verify → hardware →
// metrics/report for one schema file.
func (c *Controller) Run(ctx context.Context, opts Options) (*Run, error) {
	run := &Run{State: StateIdle}

	var logger *audit.Logger
	if opts.AuditDir != "" {
		var err error
		logger, err = audit.New(opts.AuditDir, opts.AuditMirror)
		if err != nil {
			return nil, fmt.Errorf("pipeline: opening audit log: %w", err)
		}
		defer logger.Close()
	}
	logStage := func(stage string, format string, args ...interface{}) {
		message := fmt.Sprintf(format, args...)
		if logger != nil {
			_ = logger.Infof(stage, "%s", message)
		}
		if opts.OnStage != nil {
			opts.OnStage(stage, message)
		}
	}
	logStage("intake", "starting run for %s", opts.SchemaPath)

	lockPath := filepath.Join(opts.CheckpointDir, "lock")
	lock, err := security.Acquire(lockPath)
	if err != nil {
		var concurrentErr *security.ConcurrentRunError
		if !errors.As(err, &concurrentErr) {
			return nil, fmt.Errorf("pipeline: acquiring run lock: %w", err)
		}
		run.State = StateFailed
		run.ExitCode = ExitConcurrentRun
		run.Errors = append(run.Errors, artifact.StructuredError{
			Category: "concurrent_run", Code: "lock_held", Message: err.Error(), OriginStage: "intake",
		})
		return run, nil
	}
	defer lock.Release()

	checkpointPath := filepath.Join(opts.CheckpointDir, "checkpoint.json")
	cp, err := checkpoint.Load(checkpointPath)
	if err != nil {
		return nil, fmt.Errorf("pipeline: loading checkpoint: %w", err)
	}

	run.State = StateValidating
	raw, err := os.ReadFile(opts.SchemaPath)
	if err != nil {
		return nil, fmt.Errorf("pipeline: reading schema: %w", err)
	}
	s, verrs := validate.Validate(raw)
	if len(verrs) > 0 {
		run.State = StateFailed
		run.ExitCode = ExitValidationFailed
		for _, e := range verrs {
			run.Errors = append(run.Errors, artifact.StructuredError{
				Category: "validation", Code: string(e.Kind), Message: e.Message, Hint: e.Hint, OriginStage: "validate",
			})
		}
		logStage("validate", "failed with %d error(s)", len(verrs))
		return run, nil
	}

	vertical, field, object := s.Identity()
	nm, err := namespace.Map(namespace.Catalogue{Vertical: vertical, Field: field, Object: object})
	if err != nil {
		run.State = StateFailed
		run.ExitCode = ExitValidationFailed
		run.Errors = append(run.Errors, artifact.StructuredError{
			Category: "validation", Code: "namespace_collision", Message: err.Error(), OriginStage: "validate",
		})
		return run, nil
	}

	run.State = StateDiffing
	diffResult, err := diff.Diff(s, cp)
	if err != nil {
		return nil, fmt.Errorf("pipeline: diffing schema: %w", err)
	}
	run.DiffResult = diffResult
	logStage("diff", "class=%s selected=%v", diffResult.Class, diffResult.Selected)

	selected := intersect(diffResult.Selected, opts.Languages)

	if opts.DryRun {
		logStage("diff", "dry run, stopping before emit")
		run.State = StateSuccess
		return run, nil
	}

	if len(selected) == 0 {
		// Idempotent no-op: nothing to emit, verify, or report beyond a
		// zero-metrics success snapshot (spec section 8's idempotence
		// property).
		run.State = StateReporting
		snap := metrics.NewCollector(runID(), time.Now()).Snapshot()
		snap.DiffClassification = string(diffResult.Class)
		run.Report = metrics.NewReport(snap)
		if err := writeMetrics(opts, snap); err != nil {
			return nil, err
		}
		run.State = StateSuccess
		logStage("report", "idempotent no-op, nothing selected to emit")
		return run, nil
	}

	collector := metrics.NewCollector(runID(), time.Now())
	collector.RecordDiffClassification(string(diffResult.Class))

	run.State = StateEmitting
	generationStart := time.Now()
	emitManifest := runEmitters(s, nm, opts.OutputRoot, selected)
	emitManifest.Finish(generationStart, "verify")
	run.EmitManifest = emitManifest
	collector.Record(metrics.KeyGenerationTime, time.Since(generationStart).Seconds())
	collector.Record(metrics.KeyFilesGenerated, float64(len(emitManifest.Artifacts)))

	if emitManifest.Status == artifact.StatusFailed {
		run.State = StateFailed
		run.ExitCode = ExitEmissionFailed
		run.Errors = emitManifest.Errors
		logStage("emit", "failed with %d error(s)", len(emitManifest.Errors))
		return run, nil
	}
	logStage("emit", "produced %d artifact(s)", len(emitManifest.Artifacts))

	run.State = StateVerifying
	verifyStart := time.Now()
	verifyArtifacts := toVerifyArtifacts(emitManifest.Artifacts)
	verifyStage := verify.NewStage(c.Runner, func(target namespace.Target) error {
		return reEmitOne(target, s, nm, opts.OutputRoot)
	})
	results := verifyStage.Run(ctx, verifyArtifacts)
	run.VerifyResults = results
	collector.Record(metrics.KeyVerificationTime, time.Since(verifyStart).Seconds())

	ledger := cp.TokenLedger
	if opts.TokenBudget > 0 {
		ledger.Cap = opts.TokenBudget
	}
	for _, r := range results {
		if r.Status != verify.StatusFailed || !r.Escalated || c.Router == nil {
			continue
		}
		schemaJSON, _ := json.Marshal(s)
		outcome, routeErr := c.Router.Route(ctx, correct.Request{
			Target: r.Target, Class: r.Class, ToolOutput: r.Output, SchemaJSON: schemaJSON,
		})
		ledger = outcome.Ledger
		if routeErr != nil {
			run.State = StateFailed
			run.ExitCode = ExitBudgetExceeded
			run.Errors = append(run.Errors, artifact.StructuredError{
				Category: "router_budget", Code: "budget_exceeded", Message: routeErr.Error(), OriginStage: "verify",
			})
			return run, nil
		}
	}
	collector.Record(metrics.KeyTokensConsumed, float64(ledger.Spent))

	for _, r := range results {
		if r.Status == verify.StatusFailed {
			run.State = StateFailed
			run.ExitCode = ExitVerificationFailed
			run.Errors = append(run.Errors, artifact.StructuredError{
				Category: "verification", Code: string(r.Class), Message: r.Output,
				OriginStage: "verify", OriginEmitter: string(r.Target),
			})
		}
	}
	if run.State == StateFailed {
		logStage("verify", "failed with %d error(s)", len(run.Errors))
		return run, nil
	}
	logStage("verify", "all %d target(s) verified", len(results))

	if hdlModule, ok := findHDLModule(emitManifest.Artifacts); ok && !opts.SimOnly {
		run.State = StateHardwareOptional
		hwStage := c.HardwareStage
		if opts.ComPort != "" {
			hwStage = hardware.NewStageWithPort(c.Runner, opts.ComPort)
		}
		hwStart := time.Now()
		hwResult := hwStage.Run(ctx, hdlModule, s.Hardware)
		run.HardwareResult = &hwResult
		collector.Record(metrics.KeyHardwareTime, time.Since(hwStart).Seconds())
		for k, v := range hwResult.AllMetrics() {
			collector.Record(metrics.Key(k), v)
		}
		for _, r := range hwResult.Results {
			if r.Status == hardware.StatusFailed {
				run.State = StateFailed
				run.ExitCode = ExitHardwareFailed
				run.Errors = append(run.Errors, artifact.StructuredError{
					Category: "hardware", Code: string(r.Stage), Message: r.Output, OriginStage: "hardware",
				})
			}
		}
		if run.State == StateFailed {
			logStage("hardware", "failed with %d error(s)", len(run.Errors))
			return run, nil
		}
		logStage("hardware", "escalation reached %s", hwResult.ValidationLevel)
	}

	run.State = StateReporting
	collector.Record(metrics.KeyPipelineTotalTime, time.Since(generationStart).Seconds())
	snap := collector.Snapshot()
	run.Report = metrics.NewReport(snap)
	if err := writeMetrics(opts, snap); err != nil {
		return nil, err
	}

	newHash, err := diff.SchemaHash(s)
	if err != nil {
		return nil, fmt.Errorf("pipeline: hashing schema: %w", err)
	}
	cp.SchemaHash = newHash
	if err := cp.SetLastSchema(s); err != nil {
		return nil, fmt.Errorf("pipeline: recording schema baseline: %w", err)
	}
	cp.TokenLedger = ledger
	cp.LastRun = time.Now()
	cp.PerEmitterStatus = perEmitterStatus(emitManifest.Artifacts)
	cp.AppendMetricsRow(checkpoint.MetricsRow{
		Timestamp:          snap.Timestamp,
		PipelineTotalTime:  snap.Values[metrics.KeyPipelineTotalTime],
		TokensConsumed:     ledger.Spent,
		FilesGenerated:     len(emitManifest.Artifacts),
		DiffClassification: string(diffResult.Class),
	})
	if err := checkpoint.Save(checkpointPath, cp); err != nil {
		return nil, fmt.Errorf("pipeline: saving checkpoint: %w", err)
	}

	run.State = StateSuccess
	run.ExitCode = ExitSuccess
	logStage("report", "run complete, %d token(s) spent", ledger.Spent)
	return run, nil
}

// BatchResult is one schema's outcome within a batch run.
type BatchResult struct {
	SchemaPath string
	Run        *Run
	Err        error
}

// BatchReport aggregates every schema's outcome into the combined report
// batch mode produces (§6: "one aggregated combined report").
type BatchReport struct {
	Results  []BatchResult
	ExitCode ExitCode
}

// RunBatch drives Run once per schema file found directly under dir, in
// lexicographic order, each against its own isolated checkpoint
// subdirectory (<base.CheckpointDir>/<schema-stem>/checkpoint.json) so one schema's state
// never leaks into another's. The batch's exit code is the worst
// (highest, excluding success) individual exit code, or ExitSuccess if
// every schema succeeded.
func (c *Controller) RunBatch(ctx context.Context, dir string, base Options) (*BatchReport, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("pipeline: reading batch directory: %w", err)
	}

	var schemaPaths []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		schemaPaths = append(schemaPaths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(schemaPaths)

	report := &BatchReport{}
	for _, path := range schemaPaths {
		stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		opts := base
		opts.SchemaPath = path
		opts.CheckpointDir = filepath.Join(base.CheckpointDir, stem)
		if base.OutputRoot != "" {
			opts.OutputRoot = filepath.Join(base.OutputRoot, stem)
		}

		run, runErr := c.Run(ctx, opts)
		report.Results = append(report.Results, BatchResult{SchemaPath: path, Run: run, Err: runErr})

		if runErr == nil && run != nil && run.ExitCode > report.ExitCode {
			report.ExitCode = run.ExitCode
		}
	}

	return report, nil
}

func intersect(selected []namespace.Target, requested []namespace.Target) []namespace.Target {
	if len(requested) == 0 {
		return selected
	}
	want := make(map[namespace.Target]bool, len(requested))
	for _, t := range requested {
		want[t] = true
	}
	out := make([]namespace.Target, 0, len(selected))
	for _, t := range selected {
		if want[t] {
			out = append(out, t)
		}
	}
	return out
}

func toVerifyArtifacts(descriptors []artifact.Descriptor) []verify.ArtifactPath {
	out := make([]verify.ArtifactPath, 0, len(descriptors))
	for _, d := range descriptors {
		out = append(out, verify.ArtifactPath{Target: namespace.Target(d.Language), Path: d.Path})
	}
	return out
}

func perEmitterStatus(descriptors []artifact.Descriptor) map[string]checkpoint.EmitterStatus {
	byTarget := make(map[string][]artifact.Descriptor)
	for _, d := range descriptors {
		byTarget[d.Language] = append(byTarget[d.Language], d)
	}
	out := make(map[string]checkpoint.EmitterStatus, len(byTarget))
	for target, ds := range byTarget {
		paths := make([]string, 0, len(ds))
		var lastSum string
		for _, d := range ds {
			paths = append(paths, d.Path)
			lastSum = d.SHA256
		}
		out[target] = checkpoint.EmitterStatus{SHA256: lastSum, ArtifactPaths: paths, LastRun: time.Now()}
	}
	return out
}

// findHDLModule returns the module (.v, not the testbench) artifact path
// among the emitted descriptors, if HDL was emitted this run.
func findHDLModule(descriptors []artifact.Descriptor) (string, bool) {
	for _, d := range descriptors {
		if d.Language != string(namespace.TargetHDL) {
			continue
		}
		if strings.HasSuffix(d.Path, ".v") && !strings.HasSuffix(d.Path, "_tb.v") {
			return d.Path, true
		}
	}
	return "", false
}

// runID returns a fresh hex identifier for one pipeline run's metrics
// snapshot and report.
func runID() string {
	var buf [8]byte
	_, _ = rand.Read(buf[:])
	return hex.EncodeToString(buf[:])
}
