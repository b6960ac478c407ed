// Package registry wires the five concrete emitters to the namespace
// targets they implement. It is kept separate from internal/emit itself
// so internal/emit can stay a leaf package that the five emitter
// sub-packages import without a cycle.
package registry

import (
	"github.com/MatthewHRockwell/atomik-sub001/internal/emit"
	"github.com/MatthewHRockwell/atomik-sub001/internal/emit/hdl"
	"github.com/MatthewHRockwell/atomik-sub001/internal/emit/hll"
	"github.com/MatthewHRockwell/atomik-sub001/internal/emit/js"
	"github.com/MatthewHRockwell/atomik-sub001/internal/emit/lll"
	"github.com/MatthewHRockwell/atomik-sub001/internal/emit/sys"
	"github.com/MatthewHRockwell/atomik-sub001/internal/namespace"
)

// All returns one Emitter per target, keyed by namespace.Target.
func All() map[namespace.Target]emit.Emitter {
	return map[namespace.Target]emit.Emitter{
		namespace.TargetHLL: hll.New(),
		namespace.TargetSYS: sys.New(),
		namespace.TargetLLL: lll.New(),
		namespace.TargetJS:  js.New(),
		namespace.TargetHDL: hdl.New(),
	}
}

// Ordered returns the five emitters in namespace.AllTargets order, the
// order artifacts are emitted in when a schema fans out to every target.
func Ordered() []emit.Emitter {
	all := All()
	out := make([]emit.Emitter, 0, len(namespace.AllTargets))
	for _, t := range namespace.AllTargets {
		out = append(out, all[t])
	}
	return out
}
