// Package recovery builds the human-facing "what to try next" block shown
// alongside a failed pipeline run, grounded on the teacher's
// recovery.BuildRecoveryBlock (structured hints keyed by error class,
// rendered as a short labeled-command list), retargeted from wave's
// pipeline/step/workspace vocabulary to ATOMiK's schema/checkpoint/output
// vocabulary.
package recovery

import "fmt"

// HintType identifies the category of recovery hint.
type HintType string

const (
	HintResume  HintType = "resume"
	HintInspect HintType = "inspect"
	HintBudget  HintType = "budget"
	HintLock    HintType = "lock"
	HintTool    HintType = "tool"
)

// Category mirrors the error categories of §7: each one drives a
// different set of hints.
type Category string

const (
	CategoryValidation    Category = "validation"
	CategoryEmission      Category = "emission"
	CategoryVerification  Category = "verification"
	CategoryHardware      Category = "hardware"
	CategoryRouterBudget  Category = "router_budget"
	CategoryConcurrentRun Category = "concurrent_run"
)

// Hint is a single suggested recovery action.
type Hint struct {
	Label   string   `json:"label"`
	Command string   `json:"command"`
	Type    HintType `json:"type"`
}

// Block holds every recovery hint for one failed run.
type Block struct {
	SchemaPath    string   `json:"schema_path"`
	CheckpointDir string   `json:"checkpoint_dir"`
	Category      Category `json:"category"`
	Hints         []Hint   `json:"hints"`
}

// MissingTool names one probed-for external tool that was absent,
// carried on a Hardware or Verification category failure.
type MissingTool struct {
	Name  string
	Stage string
}

// BuildBlock constructs the recovery hints for one failed run. missing is
// only consulted for CategoryHardware/CategoryVerification.
func BuildBlock(schemaPath, checkpointDir string, category Category, missing []MissingTool) *Block {
	block := &Block{SchemaPath: schemaPath, CheckpointDir: checkpointDir, Category: category}

	switch category {
	case CategoryValidation:
		block.Hints = append(block.Hints, Hint{
			Label:   "Re-validate after fixing the schema",
			Command: fmt.Sprintf("atomik validate %s", ShellEscape(schemaPath)),
			Type:    HintResume,
		})

	case CategoryEmission:
		block.Hints = append(block.Hints, Hint{
			Label:   "Inspect the emitted artifacts",
			Command: fmt.Sprintf("ls %s", ShellEscape(checkpointDir+"/..")),
			Type:    HintInspect,
		})
		block.Hints = append(block.Hints, Hint{
			Label:   "Re-run emission for every target",
			Command: fmt.Sprintf("atomik pipeline run %s", ShellEscape(schemaPath)),
			Type:    HintResume,
		})

	case CategoryVerification:
		for _, m := range missing {
			block.Hints = append(block.Hints, Hint{
				Label:   fmt.Sprintf("Install the missing %s check tool", m.Name),
				Command: fmt.Sprintf("%s is required but not on PATH", m.Name),
				Type:    HintTool,
			})
		}
		block.Hints = append(block.Hints, Hint{
			Label:   "See what the differ would regenerate",
			Command: fmt.Sprintf("atomik pipeline diff %s", ShellEscape(schemaPath)),
			Type:    HintResume,
		})

	case CategoryHardware:
		for _, m := range missing {
			block.Hints = append(block.Hints, Hint{
				Label:   fmt.Sprintf("Install %s (needed for the %s sub-stage)", m.Name, m.Stage),
				Command: fmt.Sprintf("%s is required but not on PATH", m.Name),
				Type:    HintTool,
			})
		}
		block.Hints = append(block.Hints, Hint{
			Label:   "Re-run with hardware escalation skipped",
			Command: fmt.Sprintf("atomik pipeline run %s --sim-only", ShellEscape(schemaPath)),
			Type:    HintResume,
		})

	case CategoryRouterBudget:
		block.Hints = append(block.Hints, Hint{
			Label:   "Re-run with a larger token budget",
			Command: fmt.Sprintf("atomik pipeline run %s --token-budget N", ShellEscape(schemaPath)),
			Type:    HintBudget,
		})

	case CategoryConcurrentRun:
		block.Hints = append(block.Hints, Hint{
			Label:   "Confirm no other run is active, then clear the stale lock",
			Command: fmt.Sprintf("rm %s", ShellEscape(checkpointDir+"/lock")),
			Type:    HintLock,
		})
	}

	block.Hints = append(block.Hints, Hint{
		Label:   "Inspect the checkpoint and metrics history",
		Command: fmt.Sprintf("atomik pipeline status --checkpoint %s", ShellEscape(checkpointDir)),
		Type:    HintInspect,
	})

	return block
}
