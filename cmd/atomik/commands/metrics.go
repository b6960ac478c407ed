package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MatthewHRockwell/atomik-sub001/internal/metrics"
)

var hardwareKeys = []metrics.Key{
	metrics.KeyLUTUsed, metrics.KeyLUTUtilizationPct,
	metrics.KeyFFUsed, metrics.KeyFFUtilizationPct,
	metrics.KeyFmaxMHz, metrics.KeyTimingSlackNS, metrics.KeyTimingMet,
}

// NewMetricsCmd builds the read-only `metrics` query group over the
// append-only CSV history and its embedded sqlite index.
func NewMetricsCmd() *cobra.Command {
	var historyPath string
	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Query the metrics history",
	}
	cmd.PersistentFlags().StringVar(&historyPath, "history", ".atomik/metrics.csv", "Path to the metrics history CSV")

	cmd.AddCommand(newMetricsShowCmd(&historyPath))
	cmd.AddCommand(newMetricsCompareCmd(&historyPath))
	cmd.AddCommand(newMetricsExportCmd(&historyPath))
	cmd.AddCommand(newMetricsHardwareCmd(&historyPath))
	cmd.AddCommand(newMetricsTokensCmd(&historyPath))
	return cmd
}

func loadHistory(path string) ([]metrics.Snapshot, error) {
	h, err := metrics.NewHistory(path)
	if err != nil {
		return nil, err
	}
	return h.ReadAll()
}

func newMetricsShowCmd(historyPath *string) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the most recent runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := GetOutputConfig(cmd)
			snaps, err := loadHistory(*historyPath)
			if err != nil {
				return err
			}
			snaps = tail(snaps, limit)

			if cfg.Format == OutputFormatJSON {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(snaps)
			}
			out := cmd.OutOrStdout()
			for _, s := range snaps {
				fmt.Fprintf(out, "%s  %-20s  %s\n", s.Timestamp.Format("2006-01-02T15:04:05"), s.RunID, s.DiffClassification)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "Number of recent runs to show")
	return cmd
}

func tail(snaps []metrics.Snapshot, n int) []metrics.Snapshot {
	if n <= 0 || n >= len(snaps) {
		return snaps
	}
	return snaps[len(snaps)-n:]
}

func newMetricsCompareCmd(historyPath *string) *cobra.Command {
	var key string
	var dbPath string
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare the latest run's metric against the historical average",
		RunE: func(cmd *cobra.Command, args []string) error {
			if key == "" {
				return fmt.Errorf("--key is required")
			}
			snaps, err := loadHistory(*historyPath)
			if err != nil {
				return err
			}
			if len(snaps) == 0 {
				return fmt.Errorf("no recorded runs in %s", *historyPath)
			}

			store, err := metrics.OpenStore(dbPath)
			if err != nil {
				return err
			}
			defer store.Close()
			for _, s := range snaps {
				if err := store.Insert(s); err != nil {
					return err
				}
			}

			avg, err := store.Average(metrics.Key(key))
			if err != nil {
				return err
			}
			latest := snaps[len(snaps)-1].Values[metrics.Key(key)]

			cfg := GetOutputConfig(cmd)
			if cfg.Format == OutputFormatJSON {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(struct {
					Key     string  `json:"key"`
					Latest  float64 `json:"latest"`
					Average float64 `json:"average"`
				}{key, latest, avg})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: latest=%g average=%g\n", key, latest, avg)
			return nil
		},
	}
	cmd.Flags().StringVar(&key, "key", "", "Metric key to compare (see the taxonomy in metrics.go)")
	cmd.Flags().StringVar(&dbPath, "db", ".atomik/metrics.db", "Path to the embedded sqlite index")
	return cmd
}

func newMetricsExportCmd(historyPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Export the full metrics history as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			snaps, err := loadHistory(*historyPath)
			if err != nil {
				return err
			}
			return json.NewEncoder(cmd.OutOrStdout()).Encode(snaps)
		},
	}
}

func newMetricsHardwareCmd(historyPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "hardware",
		Short: "Print hardware-synthesis metrics for the latest run",
		RunE: func(cmd *cobra.Command, args []string) error {
			snaps, err := loadHistory(*historyPath)
			if err != nil {
				return err
			}
			if len(snaps) == 0 {
				return fmt.Errorf("no recorded runs in %s", *historyPath)
			}
			latest := snaps[len(snaps)-1]

			cfg := GetOutputConfig(cmd)
			present := make(map[string]float64)
			for _, k := range hardwareKeys {
				if v, ok := latest.Values[k]; ok {
					present[string(k)] = v
				}
			}
			if cfg.Format == OutputFormatJSON {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(present)
			}
			out := cmd.OutOrStdout()
			if len(present) == 0 {
				fmt.Fprintln(out, "no hardware metrics recorded for the latest run")
				return nil
			}
			for _, k := range hardwareKeys {
				if v, ok := latest.Values[k]; ok {
					fmt.Fprintf(out, "%-22s %g\n", k, v)
				}
			}
			return nil
		},
	}
}

func newMetricsTokensCmd(historyPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "tokens",
		Short: "Summarize tokens consumed and saved across the history",
		RunE: func(cmd *cobra.Command, args []string) error {
			snaps, err := loadHistory(*historyPath)
			if err != nil {
				return err
			}
			var consumed, saved float64
			for _, s := range snaps {
				consumed += s.Values[metrics.KeyTokensConsumed]
				saved += s.Values[metrics.KeyTokensSaved]
			}

			cfg := GetOutputConfig(cmd)
			if cfg.Format == OutputFormatJSON {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(struct {
					Runs     int     `json:"runs"`
					Consumed float64 `json:"tokens_consumed"`
					Saved    float64 `json:"tokens_saved"`
				}{len(snaps), consumed, saved})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d run(s): consumed=%g saved=%g\n", len(snaps), consumed, saved)
			return nil
		},
	}
}
