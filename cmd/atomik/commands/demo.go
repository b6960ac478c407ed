package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/MatthewHRockwell/atomik-sub001/internal/pipeline"
	"github.com/MatthewHRockwell/atomik-sub001/internal/procfacade"
	"github.com/MatthewHRockwell/atomik-sub001/internal/tui"
)

// curatedSchemas holds one seed schema per demo domain, grounded on
// spec section 8's Scenario A (terminal) plus two siblings in the Network
// and Sensor verticals.
var curatedSchemas = map[string]string{
	"terminal": `{
  "catalogue": {"vertical":"System","field":"Terminal","object":"TerminalIO","version":"1.0.0"},
  "schema": {
    "delta_fields": {"command_delta": {"kind":"parameter_delta","width":64}},
    "operations": {
      "accumulate": {"enabled": true, "latency_cycles": 1},
      "reconstruct": {"enabled": true, "latency_cycles": 1}
    }
  }
}`,
	"network": `{
  "catalogue": {"vertical":"Network","field":"Packet","object":"FrameDelta","version":"1.0.0"},
  "schema": {
    "delta_fields": {"header_delta": {"kind":"bitmask_delta","width":32}},
    "operations": {
      "accumulate": {"enabled": true, "latency_cycles": 2},
      "reconstruct": {"enabled": true, "latency_cycles": 2}
    }
  }
}`,
	"sensor": `{
  "catalogue": {"vertical":"Sensor","field":"Imu","object":"OrientationDelta","version":"1.0.0"},
  "schema": {
    "delta_fields": {"orientation_delta": {"kind":"delta_stream","width":32}},
    "operations": {
      "accumulate": {"enabled": true, "latency_cycles": 1},
      "reconstruct": {"enabled": true, "latency_cycles": 1},
      "rollback": {"enabled": true, "latency_cycles": 1, "history_depth": 16}
    }
  }
}`,
}

// NewDemoCmd builds `atomik demo <domain>`, a convenience wrapper that
// writes a curated schema to a scratch directory and runs the full
// pipeline against it.
func NewDemoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "demo <domain>",
		Short: "Run the pipeline against a curated example schema",
		Long:  "Available domains: " + domainList(),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			domain := args[0]
			schemaJSON, ok := curatedSchemas[domain]
			if !ok {
				return fmt.Errorf("unknown demo domain %q (available: %s)", domain, domainList())
			}

			dir, err := os.MkdirTemp("", "atomik-demo-"+domain+"-")
			if err != nil {
				return err
			}
			schemaPath := filepath.Join(dir, domain+".json")
			if err := os.WriteFile(schemaPath, []byte(schemaJSON), 0o644); err != nil {
				return err
			}

			cfg := GetOutputConfig(cmd)
			controller := pipeline.NewController(procfacade.New())
			opts := pipeline.Options{
				SchemaPath:    schemaPath,
				OutputRoot:    filepath.Join(dir, "out"),
				CheckpointDir: filepath.Join(dir, ".atomik"),
				SimOnly:       true,
			}

			var run *pipeline.Run
			if cfg.Interactive() {
				run, err = tui.RunWithProgress(context.Background(), controller, opts)
			} else {
				run, err = controller.Run(context.Background(), opts)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "demo schema:  %s\n", schemaPath)
			fmt.Fprintf(cmd.OutOrStdout(), "demo output:  %s\n", opts.OutputRoot)
			return renderRun(cmd, cfg, run, schemaPath, opts.CheckpointDir)
		},
	}
}

func domainList() string {
	names := make([]string, 0, len(curatedSchemas))
	for name := range curatedSchemas {
		names = append(names, name)
	}
	sort.Strings(names)
	out := ""
	for i, n := range names {
		if i > 0 {
			out += ", "
		}
		out += n
	}
	return out
}
