package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MatthewHRockwell/atomik-sub001/cmd/atomik/commands"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "atomik",
	Short: "Schema-driven multi-target code generator for delta-state compute primitives",
	Long: `
   ▄▄▄  ▀█▀ ▄▄▄  ▄▄▄▄  ▀█▀ ▄ ▄
  ▐▀ ▀▌  █  █   █ █  █   █  █▄▀
  ▐ ▄ ▌  █  █   █ █▀▀▄   █  █ ▀▄
  ▐   ▌ ▄█▄  ▀▀▀  █  █  ▄█▄ █  █

  atomik reads a single JSON schema describing a delta-state compute
  primitive and emits source across five target languages, then drives
  that schema through validation, differential regeneration, local
  verification, optional hardware-in-the-loop, and checkpointed
  reporting.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
}

func init() {
	rootCmd.SetVersionTemplate("atomik version {{.Version}}\n")

	rootCmd.PersistentFlags().StringP("output", "o", "auto", "Output format: auto, json, text, quiet")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Include per-stage progress detail")

	rootCmd.AddCommand(commands.NewValidateCmd())
	rootCmd.AddCommand(commands.NewInfoCmd())
	rootCmd.AddCommand(commands.NewPipelineCmd())
	rootCmd.AddCommand(commands.NewMetricsCmd())
	rootCmd.AddCommand(commands.NewDemoCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
