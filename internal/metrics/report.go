package metrics

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Report is the structured per-run JSON report produced alongside the
// CSV history row, written atomically (temp file + rename) matching the
// teacher's atomic-write pattern reused by checkpoint.Save.
type Report struct {
	RunID              string             `json:"run_id"`
	Timestamp          string             `json:"timestamp"`
	DiffClassification string             `json:"diff_classification"`
	Metrics            map[string]float64 `json:"metrics"`
}

// NewReport projects a Snapshot into its JSON-serializable form.
func NewReport(snap Snapshot) Report {
	values := make(map[string]float64, len(snap.Values))
	for k, v := range snap.Values {
		values[string(k)] = v
	}
	return Report{
		RunID:              snap.RunID,
		Timestamp:          snap.Timestamp.UTC().Format("2006-01-02T15:04:05Z07:00"),
		DiffClassification: snap.DiffClassification,
		Metrics:            values,
	}
}

// WriteReport marshals report as indented JSON and writes it atomically
// to path.
func WriteReport(path string, report Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("metrics: marshaling report: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".report-*.tmp")
	if err != nil {
		return fmt.Errorf("metrics: creating temp report file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("metrics: writing temp report file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("metrics: closing temp report file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("metrics: renaming report into place: %w", err)
	}
	return nil
}
