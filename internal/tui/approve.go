package tui

import (
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/MatthewHRockwell/atomik-sub001/internal/correct"
)

// Approve gates the self-correction router's high tier on human
// confirmation, grounded on the teacher's huh-based confirmation prompts.
// An error running the form (e.g. no TTY) is treated as a decline rather
// than a crash, since the router already treats a declined approval as
// "skip this rung".
func Approve(req correct.Request) bool {
	var ok bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Escalate %s/%s to the high-tier reasoning service?", req.Target, req.Class)).
				Description(req.ToolOutput).
				Affirmative("Escalate").
				Negative("Skip").
				Value(&ok),
		),
	)
	if err := form.Run(); err != nil {
		return false
	}
	return ok
}
