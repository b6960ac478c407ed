package recovery

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildBlockValidationSuggestsRevalidate(t *testing.T) {
	block := BuildBlock("schema.json", ".atomik", CategoryValidation, nil)
	require.Equal(t, CategoryValidation, block.Category)
	require.Contains(t, block.Hints[0].Command, "atomik validate schema.json")
}

func TestBuildBlockHardwareListsMissingTools(t *testing.T) {
	block := BuildBlock("schema.json", ".atomik", CategoryHardware, []MissingTool{{Name: "yosys", Stage: "synthesize"}})
	require.Equal(t, HintTool, block.Hints[0].Type)
	require.Contains(t, block.Hints[0].Label, "yosys")
}

func TestBuildBlockAlwaysEndsWithStatusHint(t *testing.T) {
	block := BuildBlock("schema.json", ".atomik", CategoryConcurrentRun, nil)
	last := block.Hints[len(block.Hints)-1]
	require.Equal(t, HintInspect, last.Type)
	require.Contains(t, last.Command, "pipeline status")
}

func TestFormatBlockRendersLabelsAndCommands(t *testing.T) {
	block := BuildBlock("schema.json", ".atomik", CategoryRouterBudget, nil)
	out := FormatBlock(block)
	require.Contains(t, out, "Recovery options:")
	require.Contains(t, out, "--token-budget N")
}

func TestFormatBlockEmptyForNilBlock(t *testing.T) {
	require.Equal(t, "", FormatBlock(nil))
}
