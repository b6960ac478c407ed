// Package artifact holds the typed records for generated files and the
// per-stage manifests the pipeline controller chains between stages
// (component C4). Grounded on the teacher's state.ArtifactRecord and the
// artifact-descriptor shape its executor returns per step.
package artifact

import "time"

// Action classifies what happened to a file during one emission run.
type Action string

const (
	ActionCreated   Action = "created"
	ActionUpdated   Action = "updated"
	ActionValidated Action = "validated"
	ActionSkipped   Action = "skipped"
)

// Descriptor is one generated (or checked) file.
type Descriptor struct {
	Path     string `json:"path"`
	Language string `json:"language"`
	SHA256   string `json:"sha256"`
	Action   Action `json:"action"`
}

// Status is a stage's overall outcome.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// StructuredError is the common error payload every stage attaches to its
// manifest, per spec section 7.
type StructuredError struct {
	Category      string `json:"category"`
	Code          string `json:"code"`
	Message       string `json:"message"`
	Hint          string `json:"hint,omitempty"`
	OriginStage   string `json:"origin_stage"`
	OriginEmitter string `json:"origin_emitter,omitempty"`
	Details       string `json:"details,omitempty"`
}

func (e *StructuredError) Error() string {
	if e.Hint != "" {
		return e.Category + "/" + e.Code + ": " + e.Message + " (" + e.Hint + ")"
	}
	return e.Category + "/" + e.Code + ": " + e.Message
}

// Manifest is the record one stage produces and hands to the next stage,
// per spec section 3's ArtifactManifest.
type Manifest struct {
	Stage          string                 `json:"stage"`
	Status         Status                 `json:"status"`
	Timestamp      time.Time              `json:"timestamp"`
	DurationMS     int64                  `json:"duration_ms"`
	TokensConsumed int                    `json:"tokens_consumed"`
	Artifacts      []Descriptor           `json:"artifacts"`
	Metrics        map[string]interface{} `json:"metrics,omitempty"`
	Errors         []StructuredError      `json:"errors,omitempty"`
	NextStage      string                 `json:"next_stage,omitempty"`
}

// NewManifest starts a manifest for a stage; callers fill in artifacts,
// metrics, and errors as the stage runs and call Finish to close it out.
func NewManifest(stage string) *Manifest {
	return &Manifest{
		Stage:     stage,
		Status:    StatusSuccess,
		Timestamp: time.Now(),
		Metrics:   map[string]interface{}{},
	}
}

// Finish sets the manifest's status and duration based on whether any
// errors were recorded and how long the stage ran.
func (m *Manifest) Finish(started time.Time, nextStage string) {
	m.DurationMS = time.Since(started).Milliseconds()
	m.NextStage = nextStage
	if len(m.Errors) > 0 {
		m.Status = StatusFailed
	}
}

// AddError appends a structured error to the manifest.
func (m *Manifest) AddError(e StructuredError) {
	m.Errors = append(m.Errors, e)
}

// CountByAction returns how many artifacts in the manifest have the given
// action, used by the idempotence tests (spec section 8: a no-op re-run
// must report zero created/updated artifacts).
func (m *Manifest) CountByAction(a Action) int {
	n := 0
	for _, d := range m.Artifacts {
		if d.Action == a {
			n++
		}
	}
	return n
}
