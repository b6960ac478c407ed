package recovery

import "strings"

// FormatBlock renders a Block as a human-readable text block suitable for
// printing to stderr alongside a failed run's error payload.
func FormatBlock(block *Block) string {
	if block == nil || len(block.Hints) == 0 {
		return ""
	}

	var sb strings.Builder

	// Leading blank separator line
	sb.WriteString("\n")

	// Header
	sb.WriteString("Recovery options:\n")

	for _, hint := range block.Hints {
		sb.WriteString("  ")
		sb.WriteString(hint.Label)
		sb.WriteString(":\n")
		sb.WriteString("    ")
		sb.WriteString(hint.Command)
		sb.WriteString("\n")
	}

	return sb.String()
}
