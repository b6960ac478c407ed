// Package metrics implements the Metrics Collector & Reporter (component
// C11): accept metric events from every stage through a single
// append-only interface, persist a CSV history row per pipeline run,
// serve richer aggregate queries from an embedded sqlite store, and
// produce a structured per-run JSON report. Grounded on the teacher's
// state.PerformanceMetricRecord / StateStore aggregation shape
// (internal/state/store.go), projected onto ATOMiK's own metric
// taxonomy and a flat CSV as the conformance-visible artifact.
package metrics

import "time"

// Key names one metric in the authoritative taxonomy. A key absent from
// a Snapshot's Values means that metric was never produced this run,
// distinct from a zero value.
type Key string

const (
	// Efficiency
	KeyPipelineTotalTime  Key = "pipeline_total_time"
	KeyGenerationTime     Key = "generation_time"
	KeyVerificationTime   Key = "verification_time"
	KeyHardwareTime       Key = "hardware_time"
	KeyTokensConsumed     Key = "tokens_consumed"
	KeyTokensSaved        Key = "tokens_saved"
	KeyFilesGenerated     Key = "files_generated"
	KeyLinesGenerated     Key = "lines_generated"

	// Hardware synthesis
	KeyLUTUsed           Key = "lut_used"
	KeyLUTUtilizationPct Key = "lut_utilization_pct"
	KeyFFUsed            Key = "ff_used"
	KeyFFUtilizationPct  Key = "ff_utilization_pct"
	KeyFmaxMHz           Key = "fmax_mhz"
	KeyTimingSlackNS     Key = "timing_slack_ns"
	KeyTimingMet         Key = "timing_met"

	// Runtime performance
	KeyOpsPerSecond       Key = "ops_per_second"
	KeyPerOpLatencyNS     Key = "per_operation_latency_ns"
	KeyThroughputMbps     Key = "throughput_mbps"
	KeyPowerEstimateMW    Key = "power_estimate_mw"
	KeyEnergyPerOpPJ      Key = "energy_per_op_pj"

	// Quality
	KeySimTestsPassed           Key = "sim_tests_passed"
	KeySimTestsTotal            Key = "sim_tests_total"
	KeyHWTestsPassed            Key = "hw_tests_passed"
	KeyHWTestsTotal             Key = "hw_tests_total"
	KeySWTestsPassed            Key = "sw_tests_passed"
	KeySWTestsTotal             Key = "sw_tests_total"
	KeyLintErrorsBeforeCorrect  Key = "lint_errors_before_correction"
	KeyLintCleanAfterCorrect    Key = "lint_clean_after_correction"
	KeySelfCorrectionAttempts   Key = "self_correction_attempts"
	KeySelfCorrectionSuccesses  Key = "self_correction_successes"

	// Non-taxonomy identification column, carried alongside Values.
	keyDiffClassification Key = "diff_classification"
)

// taxonomy lists every Key in the stable column order used by the CSV
// history and the sqlite schema.
var taxonomy = []Key{
	KeyPipelineTotalTime, KeyGenerationTime, KeyVerificationTime, KeyHardwareTime,
	KeyTokensConsumed, KeyTokensSaved, KeyFilesGenerated, KeyLinesGenerated,
	KeyLUTUsed, KeyLUTUtilizationPct, KeyFFUsed, KeyFFUtilizationPct,
	KeyFmaxMHz, KeyTimingSlackNS, KeyTimingMet,
	KeyOpsPerSecond, KeyPerOpLatencyNS, KeyThroughputMbps, KeyPowerEstimateMW, KeyEnergyPerOpPJ,
	KeySimTestsPassed, KeySimTestsTotal, KeyHWTestsPassed, KeyHWTestsTotal,
	KeySWTestsPassed, KeySWTestsTotal,
	KeyLintErrorsBeforeCorrect, KeyLintCleanAfterCorrect,
	KeySelfCorrectionAttempts, KeySelfCorrectionSuccesses,
}

// Snapshot is one pipeline run's worth of collected metrics.
type Snapshot struct {
	RunID              string
	Timestamp          time.Time
	DiffClassification string
	Values             map[Key]float64
}

// Collector accepts metric events from every stage through a single
// append-only interface and accumulates them into the current run's
// Snapshot. It never overwrites a value already recorded by an earlier
// stage in the same run; each stage owns its own keys.
type Collector struct {
	snapshot Snapshot
}

// NewCollector starts a fresh run with the given run ID.
func NewCollector(runID string, startedAt time.Time) *Collector {
	return &Collector{snapshot: Snapshot{RunID: runID, Timestamp: startedAt, Values: make(map[Key]float64)}}
}

// Record appends one metric value for the current run. A key that has
// already been recorded keeps its first value.
func (c *Collector) Record(key Key, value float64) {
	if _, exists := c.snapshot.Values[key]; exists {
		return
	}
	c.snapshot.Values[key] = value
}

// RecordDiffClassification tags the run with the differ's selected
// change class, carried alongside (not inside) the numeric taxonomy.
func (c *Collector) RecordDiffClassification(class string) {
	c.snapshot.DiffClassification = class
}

// Snapshot returns the accumulated run snapshot as it stands.
func (c *Collector) Snapshot() Snapshot { return c.snapshot }
