package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/MatthewHRockwell/atomik-sub001/internal/checkpoint"
	"github.com/MatthewHRockwell/atomik-sub001/internal/correct"
	"github.com/MatthewHRockwell/atomik-sub001/internal/diff"
	"github.com/MatthewHRockwell/atomik-sub001/internal/namespace"
	"github.com/MatthewHRockwell/atomik-sub001/internal/pipeline"
	"github.com/MatthewHRockwell/atomik-sub001/internal/procfacade"
	"github.com/MatthewHRockwell/atomik-sub001/internal/recovery"
	"github.com/MatthewHRockwell/atomik-sub001/internal/tui"
	"github.com/MatthewHRockwell/atomik-sub001/internal/validate"
)

// NewPipelineCmd builds the `pipeline` command group: run, diff, status.
func NewPipelineCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pipeline",
		Short: "Drive a schema through validate → diff → emit → verify → hardware → report",
	}
	cmd.AddCommand(newPipelineRunCmd())
	cmd.AddCommand(newPipelineDiffCmd())
	cmd.AddCommand(newPipelineStatusCmd())
	return cmd
}

func newPipelineRunCmd() *cobra.Command {
	var (
		batch         bool
		languages     []string
		simOnly       bool
		skipSynth     bool
		comPort       string
		tokenBudget   int
		dryRun        bool
		reportPath    string
		checkpointDir string
		metricsCSV    string
		correctFlag   bool
	)

	cmd := &cobra.Command{
		Use:   "run <schema|dir>",
		Short: "Run the full pipeline against a schema or a batch directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := GetOutputConfig(cmd)
			if err := ValidateOutputFormat(cfg.Format); err != nil {
				return err
			}

			defaults, err := loadProjectDefaults()
			if err != nil {
				return fmt.Errorf("reading .atomik.yaml: %w", err)
			}
			if !cmd.Flags().Changed("checkpoint") && defaults.Checkpoint != "" {
				checkpointDir = defaults.Checkpoint
			}
			if !cmd.Flags().Changed("languages") && len(defaults.Languages) > 0 {
				languages = defaults.Languages
			}
			if !cmd.Flags().Changed("token-budget") && defaults.TokenBudget != 0 {
				tokenBudget = defaults.TokenBudget
			}
			if !cmd.Flags().Changed("metrics-csv") && defaults.MetricsCSV != "" {
				metricsCSV = defaults.MetricsCSV
			}
			if !cmd.Flags().Changed("com-port") && defaults.ComPort != "" {
				comPort = defaults.ComPort
			}

			targets, err := parseTargets(languages)
			if err != nil {
				return err
			}

			if checkpointDir == "" {
				checkpointDir = ".atomik"
			}

			controller := pipeline.NewController(procfacade.New())
			if correctFlag {
				controller.Router = correct.NewRouter(checkpoint.TokenLedger{Cap: tokenBudget}, nil, nil, nil, tui.Approve)
			}

			opts := pipeline.Options{
				OutputRoot:    "out",
				CheckpointDir: checkpointDir,
				Languages:     targets,
				SimOnly:       simOnly,
				SkipSynthesis: skipSynth,
				ComPort:       comPort,
				TokenBudget:   tokenBudget,
				DryRun:        dryRun,
				MetricsCSV:    metricsCSV,
				ReportPath:    reportPath,
				AuditDir:      filepath.Join(checkpointDir, "logs"),
				AuditMirror:   cfg.Verbose,
			}

			ctx := context.Background()

			if batch {
				report, err := controller.RunBatch(ctx, args[0], opts)
				if err != nil {
					return err
				}
				return renderBatchReport(cmd, cfg, report)
			}

			opts.SchemaPath = args[0]

			var run *pipeline.Run
			if cfg.Interactive() {
				run, err = tui.RunWithProgress(ctx, controller, opts)
			} else {
				run, err = controller.Run(ctx, opts)
			}
			if err != nil {
				return err
			}
			return renderRun(cmd, cfg, run, args[0], checkpointDir)
		},
	}

	cmd.Flags().BoolVar(&batch, "batch", false, "Treat the argument as a directory of schemas")
	cmd.Flags().StringSliceVar(&languages, "languages", nil, "Restrict emission to these targets (hll,sys,lll,js,hdl)")
	cmd.Flags().BoolVar(&simOnly, "sim-only", false, "Stop the hardware stage after simulation")
	cmd.Flags().BoolVar(&skipSynth, "skip-synthesis", false, "Skip synthesis (and everything after it)")
	cmd.Flags().StringVar(&comPort, "com-port", "", "Serial/USB device node to probe for hardware reachability")
	cmd.Flags().IntVar(&tokenBudget, "token-budget", 0, "Cap on self-correction tokens spent this run (0 = unbounded)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Run validate/diff only; emit nothing")
	cmd.Flags().StringVar(&reportPath, "report", "", "Path for the per-run JSON report")
	cmd.Flags().StringVar(&checkpointDir, "checkpoint", ".atomik", "Checkpoint directory")
	cmd.Flags().StringVar(&metricsCSV, "metrics-csv", "", "Path to the append-only metrics history CSV")
	cmd.Flags().BoolVar(&correctFlag, "enable-correction", false, "Enable the self-correction router's human-gated high tier")

	return cmd
}

func parseTargets(names []string) ([]namespace.Target, error) {
	if len(names) == 0 {
		return nil, nil
	}
	valid := make(map[namespace.Target]bool, len(namespace.AllTargets))
	for _, t := range namespace.AllTargets {
		valid[t] = true
	}
	out := make([]namespace.Target, 0, len(names))
	for _, n := range names {
		t := namespace.Target(n)
		if !valid[t] {
			return nil, fmt.Errorf("unknown target %q", n)
		}
		out = append(out, t)
	}
	return out, nil
}

func renderRun(cmd *cobra.Command, cfg OutputConfig, run *pipeline.Run, schemaPath, checkpointDir string) error {
	out := cmd.OutOrStdout()
	if cfg.Format == OutputFormatJSON {
		return json.NewEncoder(out).Encode(run)
	}
	if cfg.Format != OutputFormatQuiet {
		style := okStyle
		if run.ExitCode != pipeline.ExitSuccess {
			style = failStyle
		}
		fmt.Fprintf(out, "%s %s (exit %d)\n", style.Render(string(run.State)), run.DiffResult.Class, run.ExitCode)
		for _, e := range run.Errors {
			fmt.Fprintf(out, "  %s/%s: %s\n", e.Category, e.Code, e.Message)
		}
		if run.EmitManifest != nil {
			for _, a := range run.EmitManifest.Artifacts {
				fmt.Fprintf(out, "  %-10s %s\n", a.Action, fileURI(a.Path))
			}
		}
		if run.ExitCode != pipeline.ExitSuccess && len(run.Errors) > 0 {
			block := recovery.BuildBlock(schemaPath, checkpointDir, recovery.Category(run.Errors[0].Category), nil)
			fmt.Fprintln(out, "try next:")
			for _, h := range block.Hints {
				fmt.Fprintf(out, "  %-8s %s — %s\n", h.Type, h.Label, h.Command)
			}
		}
	}
	if run.ExitCode != pipeline.ExitSuccess {
		cmd.SilenceUsage = true
		return fmt.Errorf("pipeline run failed with exit code %d", run.ExitCode)
	}
	return nil
}

func renderBatchReport(cmd *cobra.Command, cfg OutputConfig, report *pipeline.BatchReport) error {
	out := cmd.OutOrStdout()
	if cfg.Format == OutputFormatJSON {
		return json.NewEncoder(out).Encode(report)
	}
	for _, r := range report.Results {
		if r.Err != nil {
			fmt.Fprintf(out, "%s %s: %s\n", check(cfg, false), r.SchemaPath, r.Err)
			continue
		}
		fmt.Fprintf(out, "%s %s: %s (exit %d)\n", check(cfg, r.Run.ExitCode == pipeline.ExitSuccess), r.SchemaPath, r.Run.State, r.Run.ExitCode)
	}
	if report.ExitCode != pipeline.ExitSuccess {
		cmd.SilenceUsage = true
		return fmt.Errorf("batch run failed with exit code %d", report.ExitCode)
	}
	return nil
}

func newPipelineDiffCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "diff <schema>",
		Short: "Dry-run the structural differ and print the would-be selection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := GetOutputConfig(cmd)

			raw, err := readFile(args[0])
			if err != nil {
				return err
			}
			s, verrs := validate.Validate(raw)
			if len(verrs) > 0 {
				cmd.SilenceUsage = true
				return fmt.Errorf("%s is not valid: %w", args[0], verrs)
			}

			cp, err := checkpoint.Load(filepath.Join(".atomik", "checkpoint.json"))
			if err != nil {
				return err
			}
			result, err := diff.Diff(s, cp)
			if err != nil {
				return err
			}

			if cfg.Format == OutputFormatJSON {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(result)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "class: %s\nselected: %v\n", result.Class, result.Selected)
			return nil
		},
	}
}

func newPipelineStatusCmd() *cobra.Command {
	var checkpointDir string
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Print the last-run summary from the checkpoint and metrics history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := GetOutputConfig(cmd)
			cp, err := checkpoint.Load(filepath.Join(checkpointDir, "checkpoint.json"))
			if err != nil {
				return err
			}

			if cfg.Format == OutputFormatJSON {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(cp)
			}

			out := cmd.OutOrStdout()
			if cp.SchemaHash == "" {
				fmt.Fprintln(out, dimStyle.Render("no recorded runs"))
				return nil
			}
			fmt.Fprintf(out, "last run:  %s\n", cp.LastRun.Format("2006-01-02T15:04:05Z07:00"))
			fmt.Fprintf(out, "schema:    %s\n", cp.SchemaHash)
			fmt.Fprintf(out, "tokens:    %d spent / %s remaining\n", cp.TokenLedger.Spent, remainingLabel(cp.TokenLedger))
			for target, status := range cp.PerEmitterStatus {
				fmt.Fprintf(out, "  %-4s %s  %d artifact(s)\n", target, status.SHA256[:min(12, len(status.SHA256))], len(status.ArtifactPaths))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&checkpointDir, "checkpoint", ".atomik", "Checkpoint directory")
	return cmd
}

func remainingLabel(ledger checkpoint.TokenLedger) string {
	if ledger.Cap <= 0 {
		return "unbounded"
	}
	return fmt.Sprintf("%d", ledger.Remaining())
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}
