package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MatthewHRockwell/atomik-sub001/internal/validate"
)

// NewValidateCmd builds `atomik validate <schema>`, grounded on the
// teacher's validate command: structural checks first, verbose-mode
// per-check summary, machine-readable errors for non-interactive callers.
func NewValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <schema>",
		Short: "Validate a schema document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := GetOutputConfig(cmd)
			if err := ValidateOutputFormat(cfg.Format); err != nil {
				return err
			}
			return runValidate(cmd, cfg, args[0])
		},
	}
	return cmd
}

func runValidate(cmd *cobra.Command, cfg OutputConfig, schemaPath string) error {
	raw, err := os.ReadFile(schemaPath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", schemaPath, err)
	}

	s, verrs := validate.Validate(raw)
	if len(verrs) > 0 {
		for _, e := range verrs {
			line, marshalErr := json.Marshal(struct {
				Path    string `json:"path"`
				Kind    string `json:"kind"`
				Message string `json:"message"`
				Hint    string `json:"hint,omitempty"`
			}{Path: e.Path, Kind: string(e.Kind), Message: e.Message, Hint: e.Hint})
			if marshalErr != nil {
				return marshalErr
			}
			fmt.Fprintln(os.Stderr, string(line))
		}
		if cfg.Verbose {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d error(s) found in %s\n", check(cfg, false), len(verrs), schemaPath)
		}
		cmd.SilenceUsage = true
		return fmt.Errorf("%d validation error(s) in %s", len(verrs), schemaPath)
	}

	vertical, field, object := s.Identity()
	if cfg.Format == OutputFormatJSON {
		return json.NewEncoder(cmd.OutOrStdout()).Encode(struct {
			Valid    bool   `json:"valid"`
			Vertical string `json:"vertical"`
			Field    string `json:"field"`
			Object   string `json:"object"`
		}{true, vertical, field, object})
	}
	if cfg.Format != OutputFormatQuiet {
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s/%s/%s is valid\n", check(cfg, true), vertical, field, object)
	}
	return nil
}
