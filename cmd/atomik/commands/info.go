package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MatthewHRockwell/atomik-sub001/internal/namespace"
	"github.com/MatthewHRockwell/atomik-sub001/internal/validate"
)

// NewInfoCmd builds `atomik info <schema>`: namespace projections and a
// resolved field/operation summary for a valid schema.
func NewInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <schema>",
		Short: "Print namespace projections and a field/operation summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := GetOutputConfig(cmd)
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}
			s, verrs := validate.Validate(raw)
			if len(verrs) > 0 {
				cmd.SilenceUsage = true
				return fmt.Errorf("%s is not valid: %w", args[0], verrs)
			}

			vertical, field, object := s.Identity()
			nm, err := namespace.Map(namespace.Catalogue{Vertical: vertical, Field: field, Object: object})
			if err != nil {
				return err
			}

			if cfg.Format == OutputFormatJSON {
				projections := make(map[string]namespace.Projection, len(namespace.AllTargets))
				for _, t := range namespace.AllTargets {
					projections[string(t)] = nm.Get(t)
				}
				return json.NewEncoder(cmd.OutOrStdout()).Encode(struct {
					Catalogue   [3]string                           `json:"catalogue"`
					Fields      []string                            `json:"fields"`
					Projections map[string]namespace.Projection     `json:"projections"`
				}{[3]string{vertical, field, object}, s.Body.SortedFieldNames(), projections})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s / %s / %s (%s)\n", vertical, field, object, s.Catalogue.Version)
			fmt.Fprintf(out, "fields: %v\n", s.Body.SortedFieldNames())
			fmt.Fprintf(out, "operations: accumulate=%v reconstruct=%v rollback=%v\n",
				s.Body.Operations.Accumulate.Enabled,
				s.Body.Operations.Reconstruct != nil,
				s.Body.Operations.Rollback != nil,
			)
			for _, t := range namespace.AllTargets {
				p := nm.Get(t)
				fmt.Fprintf(out, "  %-4s %-20s %s\n", t, p.ModuleSymbol, p.FilePath)
			}
			return nil
		},
	}
}
