package namespace

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMapScenarioATerminalIO(t *testing.T) {
	nm, err := Map(Catalogue{Vertical: "System", Field: "Terminal", Object: "TerminalIO"})
	require.NoError(t, err)

	require.Equal(t, "Root.System.Terminal", nm.Get(TargetHLL).Path)
	require.Equal(t, "root::system::terminal", nm.Get(TargetSYS).Path)
	require.Equal(t, "root/system/terminal/terminal_io.h", nm.Get(TargetLLL).FilePath)
	require.Equal(t, "@root/system/terminal", nm.Get(TargetJS).Path)
	require.Equal(t, "root_system_terminal_terminal_io", nm.Get(TargetHDL).Path)
	require.Equal(t, "TerminalIO", nm.Get(TargetSYS).ModuleSymbol)
}

func TestToSnakeCaseAcronyms(t *testing.T) {
	require.Equal(t, "h264_delta", ToSnakeCase("H264Delta"))
	require.Equal(t, "imu_fusion", ToSnakeCase("IMUFusion"))
	require.Equal(t, "terminal_io", ToSnakeCase("TerminalIO"))
	require.Equal(t, "simple", ToSnakeCase("Simple"))
}

func TestMapDetectsReservedCollision(t *testing.T) {
	_, err := Map(Catalogue{Vertical: "System", Field: "Core", Object: "Self"})
	require.Error(t, err)
	var collErr *CollisionError
	require.ErrorAs(t, err, &collErr)
}

func TestToPascalCase(t *testing.T) {
	require.Equal(t, "TerminalIo", ToPascalCase("terminal_io"))
}
