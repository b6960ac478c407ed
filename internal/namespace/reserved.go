package namespace

// Target identifies one of the five code-generation targets.
type Target string

const (
	TargetHLL Target = "hll"
	TargetSYS Target = "sys"
	TargetLLL Target = "lll"
	TargetJS  Target = "js"
	TargetHDL Target = "hdl"
)

// AllTargets lists every emission target in a stable order.
var AllTargets = []Target{TargetHLL, TargetSYS, TargetLLL, TargetJS, TargetHDL}

// reservedWords holds the built-in reserved-identifier list for each
// target language. These are the words a catalogue object must not
// collide with once projected into that language's naming convention.
var reservedWords = map[Target]map[string]struct{}{
	TargetHLL: set(
		"False", "None", "True", "and", "as", "assert", "async", "await",
		"break", "class", "continue", "def", "del", "elif", "else", "except",
		"finally", "for", "from", "global", "if", "import", "in", "is",
		"lambda", "nonlocal", "not", "or", "pass", "raise", "return", "try",
		"while", "with", "yield", "self",
	),
	TargetSYS: set(
		"as", "break", "const", "continue", "crate", "dyn", "else", "enum",
		"extern", "false", "fn", "for", "if", "impl", "in", "let", "loop",
		"match", "mod", "move", "mut", "pub", "ref", "return", "self", "Self",
		"static", "struct", "super", "trait", "true", "type", "unsafe",
		"use", "where", "while", "async", "await", "dyn",
	),
	TargetLLL: set(
		"auto", "break", "case", "char", "const", "continue", "default",
		"do", "double", "else", "enum", "extern", "float", "for", "goto",
		"if", "inline", "int", "long", "register", "restrict", "return",
		"short", "signed", "sizeof", "static", "struct", "switch",
		"typedef", "union", "unsigned", "void", "volatile", "while",
	),
	TargetJS: set(
		"break", "case", "catch", "class", "const", "continue", "debugger",
		"default", "delete", "do", "else", "export", "extends", "finally",
		"for", "function", "if", "import", "in", "instanceof", "new",
		"return", "super", "switch", "this", "throw", "try", "typeof",
		"var", "void", "while", "with", "yield", "let", "static", "await",
		"async",
	),
	TargetHDL: set(
		"always", "and", "assign", "begin", "buf", "case", "casex", "casez",
		"deassign", "default", "defparam", "disable", "edge", "else", "end",
		"endcase", "endfunction", "endmodule", "endtask", "for", "force",
		"forever", "fork", "function", "if", "initial", "input", "integer",
		"join", "module", "negedge", "nor", "not", "or", "output",
		"parameter", "posedge", "reg", "release", "repeat", "task", "wait",
		"while", "wire", "xor",
	),
}

func set(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

// IsReserved reports whether token collides with the given target
// language's reserved word list. Comparison is exact (case-sensitive)
// because each target's projection already fixes the token's case.
func IsReserved(target Target, token string) bool {
	_, ok := reservedWords[target][token]
	return ok
}
