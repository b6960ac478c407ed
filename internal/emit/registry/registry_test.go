package registry

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MatthewHRockwell/atomik-sub001/internal/namespace"
)

func TestAllCoversEveryTarget(t *testing.T) {
	all := All()
	require.Len(t, all, len(namespace.AllTargets))
	for _, target := range namespace.AllTargets {
		emitter, ok := all[target]
		require.True(t, ok, "missing emitter for %s", target)
		require.Equal(t, target, emitter.Target())
	}
}

func TestOrderedMatchesAllTargetsOrder(t *testing.T) {
	ordered := Ordered()
	require.Len(t, ordered, len(namespace.AllTargets))
	for i, target := range namespace.AllTargets {
		require.Equal(t, target, ordered[i].Target())
	}
}
