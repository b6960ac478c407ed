package security

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConfinePathAllowsNestedRelative(t *testing.T) {
	resolved, err := ConfinePath("/out", "root/system/terminal/terminal_io.py")
	require.NoError(t, err)
	require.Equal(t, "/out/root/system/terminal/terminal_io.py", resolved)
}

func TestConfinePathRejectsTraversal(t *testing.T) {
	_, err := ConfinePath("/out", "../../etc/passwd")
	require.Error(t, err)
	var pe *PathError
	require.ErrorAs(t, err, &pe)
}

func TestConfinePathRejectsAbsolute(t *testing.T) {
	_, err := ConfinePath("/out", "/etc/passwd")
	require.Error(t, err)
}
