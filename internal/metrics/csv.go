package metrics

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"
)

// History is the append-only CSV-style run history file mandated by §6:
// one row per pipeline run, always readable as the conformance-visible
// artifact even without the sqlite store.
type History struct {
	path string
}

// NewHistory returns a History writing to path, creating the file (with
// a header row) if it does not already exist.
func NewHistory(path string) (*History, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		f, createErr := os.Create(path)
		if createErr != nil {
			return nil, fmt.Errorf("metrics: creating history file: %w", createErr)
		}
		w := csv.NewWriter(f)
		if writeErr := w.Write(header()); writeErr != nil {
			f.Close()
			return nil, fmt.Errorf("metrics: writing header: %w", writeErr)
		}
		w.Flush()
		f.Close()
	}
	return &History{path: path}, nil
}

func header() []string {
	cols := []string{"run_id", "timestamp", "diff_classification"}
	for _, k := range taxonomy {
		cols = append(cols, string(k))
	}
	return cols
}

// Append writes one run's snapshot as a new CSV row. A taxonomy key
// absent from snapshot.Values is written as an empty field, never "0".
func (h *History) Append(snapshot Snapshot) error {
	f, err := os.OpenFile(h.path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("metrics: opening history file: %w", err)
	}
	defer f.Close()

	row := []string{snapshot.RunID, snapshot.Timestamp.UTC().Format(time.RFC3339), snapshot.DiffClassification}
	for _, k := range taxonomy {
		if v, ok := snapshot.Values[k]; ok {
			row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
		} else {
			row = append(row, "")
		}
	}

	w := csv.NewWriter(f)
	if err := w.Write(row); err != nil {
		return fmt.Errorf("metrics: writing history row: %w", err)
	}
	w.Flush()
	return w.Error()
}

// ReadAll returns every run recorded in the history file, in file order.
func (h *History) ReadAll() ([]Snapshot, error) {
	f, err := os.Open(h.path)
	if err != nil {
		return nil, fmt.Errorf("metrics: opening history file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("metrics: reading history file: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	snapshots := make([]Snapshot, 0, len(records)-1)
	for _, rec := range records[1:] {
		snap := Snapshot{Values: make(map[Key]float64)}
		if len(rec) > 0 {
			snap.RunID = rec[0]
		}
		if len(rec) > 1 {
			if ts, parseErr := time.Parse(time.RFC3339, rec[1]); parseErr == nil {
				snap.Timestamp = ts
			}
		}
		if len(rec) > 2 {
			snap.DiffClassification = rec[2]
		}
		for i, k := range taxonomy {
			col := i + 3
			if col >= len(rec) || rec[col] == "" {
				continue
			}
			if v, parseErr := strconv.ParseFloat(rec[col], 64); parseErr == nil {
				snap.Values[k] = v
			}
		}
		snapshots = append(snapshots, snap)
	}
	return snapshots, nil
}
