package verify

import (
	"github.com/MatthewHRockwell/atomik-sub001/internal/namespace"
)

// checkSpec names the static-check command for one target language. The
// command is probed with procfacade.Available before the stage runs it;
// a missing tool downgrades that language to "skipped", never "failed".
type checkSpec struct {
	tool string
	args func(path string) []string
}

// checksByTarget is the "available static-check command" table referenced
// by the verification stage for each of the five emitters.
var checksByTarget = map[namespace.Target]checkSpec{
	namespace.TargetHLL: {tool: "python3", args: func(p string) []string { return []string{"-m", "py_compile", p} }},
	namespace.TargetSYS: {tool: "rustc", args: func(p string) []string {
		return []string{"--edition", "2021", "--crate-type", "lib", "--emit=metadata", "-o", "/dev/null", p}
	}},
	namespace.TargetLLL: {tool: "cc", args: func(p string) []string { return []string{"-Wall", "-Werror", "-fsyntax-only", p} }},
	namespace.TargetJS:  {tool: "node", args: func(p string) []string { return []string{"--check", p} }},
	namespace.TargetHDL: {tool: "iverilog", args: func(p string) []string { return []string{"-g2012", "-t", "null", p} }},
}
