package commands

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// Output format constants, mirroring the teacher's OutputConfig.
const (
	OutputFormatAuto  = "auto"
	OutputFormatJSON  = "json"
	OutputFormatText  = "text"
	OutputFormatQuiet = "quiet"
)

// OutputConfig holds the resolved output configuration from the root
// command's persistent flags.
type OutputConfig struct {
	Format  string
	Verbose bool
}

// GetOutputConfig reads -o/--output and -v/--verbose from the root command.
func GetOutputConfig(cmd *cobra.Command) OutputConfig {
	format, _ := cmd.Root().PersistentFlags().GetString("output")
	verbose, _ := cmd.Root().PersistentFlags().GetBool("verbose")
	return OutputConfig{Format: format, Verbose: verbose}
}

// Interactive reports whether "auto" format should drive the live
// bubbletea progress view. Grounded on the teacher's term.IsTerminal
// check (cmd/wave/commands/run.go): a piped or redirected stdout falls
// back to plain text rather than rendering an interactive view nobody
// can see.
func (c OutputConfig) Interactive() bool {
	return c.Format == OutputFormatAuto && term.IsTerminal(int(os.Stdout.Fd()))
}

// ValidateOutputFormat checks that format is one atomik understands.
func ValidateOutputFormat(format string) error {
	switch format {
	case OutputFormatAuto, OutputFormatJSON, OutputFormatText, OutputFormatQuiet:
		return nil
	default:
		return fmt.Errorf("invalid output format %q: must be auto, json, text, or quiet", format)
	}
}

var (
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// check renders a pass/fail glyph, colored when the output format isn't
// quiet/json.
func check(cfg OutputConfig, ok bool) string {
	if cfg.Format == OutputFormatJSON || cfg.Format == OutputFormatQuiet {
		if ok {
			return "PASS"
		}
		return "FAIL"
	}
	if ok {
		return okStyle.Render("✓")
	}
	return failStyle.Render("✗")
}
