// Package checkpoint holds the cross-session pipeline state (component
// C12's PipelineCheckpoint): the schema's content hash, per-emitter
// checksums, a trailing metrics window, and the token ledger. It is
// created lazily on first run and updated atomically only on full-pipeline
// success, grounded on the teacher's state.ArtifactRecord/StateStore
// persistence shape.
package checkpoint

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/MatthewHRockwell/atomik-sub001/internal/schema"
)

// EmitterStatus is the last-known state of one target emitter.
type EmitterStatus struct {
	SHA256        string   `json:"sha256"`
	ArtifactPaths []string `json:"artifact_paths"`
	LastRun       time.Time `json:"last_run"`
}

// MetricsRow is the trailing-window record kept on the checkpoint itself;
// the full chronological history lives in the CSV file (internal/metrics).
type MetricsRow struct {
	Timestamp         time.Time `json:"timestamp"`
	PipelineTotalTime float64   `json:"pipeline_total_time"`
	TokensConsumed    int       `json:"tokens_consumed"`
	FilesGenerated    int       `json:"files_generated"`
	DiffClassification string   `json:"diff_classification"`
}

// TokenLedger tracks cumulative spend against the self-correction budget.
type TokenLedger struct {
	Cap      int `json:"cap"`
	Spent    int `json:"spent"`
	LowTier  int `json:"low_tier_spent"`
	MidTier  int `json:"mid_tier_spent"`
	HighTier int `json:"high_tier_spent"`
}

// Remaining reports the unspent portion of the budget; a Cap of zero or
// less means unbounded.
func (l TokenLedger) Remaining() int {
	if l.Cap <= 0 {
		return 1<<31 - 1
	}
	r := l.Cap - l.Spent
	if r < 0 {
		return 0
	}
	return r
}

// PipelineCheckpoint is the persisted per-schema cross-session state.
//
// LastSchemaJSON retains the prior run's canonicalized schema alongside its
// hash so the differ (internal/diff) can classify *which* sub-tree changed
// rather than only detecting that something did; the abstract data model
// only names schema_hash, but sub-tree classification is meaningless
// without the prior document to diff against.
type PipelineCheckpoint struct {
	SchemaHash       string                   `json:"schema_hash"`
	LastSchemaJSON   json.RawMessage          `json:"last_schema,omitempty"`
	PerEmitterStatus map[string]EmitterStatus `json:"per_emitter_status"`
	MetricsHistory   []MetricsRow             `json:"metrics_history"`
	TokenLedger      TokenLedger              `json:"token_ledger"`
	LastRun          time.Time                `json:"last_run"`
}

// LastSchema unmarshals LastSchemaJSON, returning nil if the checkpoint has
// never recorded a schema.
func (c *PipelineCheckpoint) LastSchema() (*schema.Schema, error) {
	if len(c.LastSchemaJSON) == 0 {
		return nil, nil
	}
	var s schema.Schema
	if err := json.Unmarshal(c.LastSchemaJSON, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// SetLastSchema records s as the checkpoint's new baseline for the next
// run's differ comparison.
func (c *PipelineCheckpoint) SetLastSchema(s *schema.Schema) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	c.LastSchemaJSON = data
	return nil
}

// MaxMetricsHistory bounds the trailing window kept inline on the
// checkpoint; older rows still live in the CSV history file.
const MaxMetricsHistory = 20

// New returns an empty checkpoint, as used on a schema's first run.
func New() *PipelineCheckpoint {
	return &PipelineCheckpoint{PerEmitterStatus: make(map[string]EmitterStatus)}
}

// AppendMetricsRow appends a row, trimming the oldest once the window is
// full.
func (c *PipelineCheckpoint) AppendMetricsRow(row MetricsRow) {
	c.MetricsHistory = append(c.MetricsHistory, row)
	if len(c.MetricsHistory) > MaxMetricsHistory {
		c.MetricsHistory = c.MetricsHistory[len(c.MetricsHistory)-MaxMetricsHistory:]
	}
}

// Load reads a checkpoint from path. A missing file is not an error: it
// returns a fresh empty checkpoint, matching "created lazily on first run".
func Load(path string) (*PipelineCheckpoint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(), nil
		}
		return nil, err
	}
	var c PipelineCheckpoint
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	if c.PerEmitterStatus == nil {
		c.PerEmitterStatus = make(map[string]EmitterStatus)
	}
	return &c, nil
}

// Save writes the checkpoint atomically (temp file + rename), matching the
// "checkpoint is written last and atomically" ordering guarantee.
func Save(path string, c *PipelineCheckpoint) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".checkpoint-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, path)
}
