// Package js emits the JS (ES module) target: one class per schema using
// native BigInt for any field wider than 32 bits, grounded on the same
// per-target generator shape as internal/emit/hll.
package js

import (
	"fmt"
	"strings"

	"github.com/MatthewHRockwell/atomik-sub001/internal/artifact"
	"github.com/MatthewHRockwell/atomik-sub001/internal/emit"
	"github.com/MatthewHRockwell/atomik-sub001/internal/namespace"
	"github.com/MatthewHRockwell/atomik-sub001/internal/schema"
)

// Emitter generates the JS target.
type Emitter struct{}

// New returns a JS Emitter.
func New() *Emitter { return &Emitter{} }

// Target implements emit.Emitter.
func (Emitter) Target() namespace.Target { return namespace.TargetJS }

// Emit implements emit.Emitter.
func (Emitter) Emit(s *schema.Schema, nm *namespace.NamespaceMap, outputRoot string) ([]artifact.Descriptor, error) {
	p := nm.Get(namespace.TargetJS)
	body := render(s, p)
	test := renderTest(s, p)
	pkg := renderPackageJSON(s, p)

	dir := strings.TrimSuffix(p.FilePath, p.FileName)
	testPath := dir + strings.TrimSuffix(p.FileName, ".js") + ".test.js"
	pkgPath := dir + "package.json"

	var out []artifact.Descriptor
	for _, f := range []struct {
		path    string
		content string
	}{
		{p.FilePath, body},
		{testPath, test},
		{pkgPath, pkg},
	} {
		desc, err := emit.WriteFile(outputRoot, string(namespace.TargetJS), f.path, []byte(f.content))
		if err != nil {
			return nil, err
		}
		out = append(out, desc)
	}
	return out, nil
}

// usesBigInt reports whether a field needs BigInt: JS numbers lose
// precision past 2**53, so anything over 32 bits is safer as BigInt even
// though 33-53 bit widths would technically still fit.
func usesBigInt(width int) bool { return width > 32 }

func zero(width int) string {
	if usesBigInt(width) {
		return "0n"
	}
	return "0"
}

func literal(width int, value uint64) string {
	if usesBigInt(width) {
		return fmt.Sprintf("%dn", value)
	}
	return fmt.Sprintf("%d", value)
}

func mask(width int) string {
	if usesBigInt(width) {
		return fmt.Sprintf("(1n << %dn) - 1n", width)
	}
	return fmt.Sprintf("(1 << %d) - 1", width)
}

func render(s *schema.Schema, p namespace.Projection) string {
	primaryName, primary := emit.PrimaryField(s)
	secondary := emit.SecondaryFields(s)
	allFields := append([]string{primaryName}, secondary...)

	var b strings.Builder
	fmt.Fprintf(&b, "/** %s delta-state primitive for %s/%s, catalogue version %s. */\n",
		p.ModuleSymbol, s.Catalogue.Vertical, s.Catalogue.Field, s.Catalogue.Version)

	fmt.Fprintf(&b, "export class %s {\n", p.ModuleSymbol)
	fmt.Fprintf(&b, "  constructor(initialState = %s) {\n", zero(primary.Width))
	for _, name := range allFields {
		field := s.Body.DeltaFields[name]
		fmt.Fprintf(&b, "    this._mask_%s = %s;\n", name, mask(field.Width))
		if name == primaryName {
			fmt.Fprintf(&b, "    this._initialState = initialState & this._mask_%s;\n", name)
		} else {
			fmt.Fprintf(&b, "    this._initialState_%s = %s & this._mask_%s;\n", name, literal(field.Width, field.DefaultValue), name)
		}
		fmt.Fprintf(&b, "    this._accumulator_%s = %s;\n", name, zero(field.Width))
		if s.Body.Operations.Rollback != nil {
			fmt.Fprintf(&b, "    this._history_%s = [];\n", name)
		}
	}
	b.WriteString("  }\n\n")

	for _, name := range allFields {
		writeFieldMethods(&b, name, primaryName, s)
	}

	b.WriteString("  // Generic methods delegating to the schema's primary delta field.\n")
	fmt.Fprintf(&b, "  accumulate(delta) {\n    return this.accumulate_%s(delta);\n  }\n\n", primaryName)
	if s.Body.Operations.Reconstruct != nil {
		fmt.Fprintf(&b, "  reconstruct() {\n    return this.reconstruct_%s();\n  }\n\n", primaryName)
	}
	if s.Body.Operations.Rollback != nil {
		fmt.Fprintf(&b, "  rollback(n = 1) {\n    return this.rollback_%s(n);\n  }\n\n", primaryName)
	}
	b.WriteString("  get accumulator() {\n    return this._accumulator_" + primaryName + ";\n  }\n\n")
	b.WriteString("  get initialState() {\n    return this._initialState;\n  }\n")
	b.WriteString("}\n")

	return b.String()
}

func writeFieldMethods(b *strings.Builder, name, primaryName string, s *schema.Schema) {
	field := s.Body.DeltaFields[name]

	fmt.Fprintf(b, "  accumulate_%s(delta) {\n", name)
	fmt.Fprintf(b, "    delta &= this._mask_%s;\n", name)
	fmt.Fprintf(b, "    this._accumulator_%s ^= delta;\n", name)
	if s.Body.Operations.Rollback != nil {
		fmt.Fprintf(b, "    this._history_%s.push(delta);\n", name)
		fmt.Fprintf(b, "    if (this._history_%s.length > %d) this._history_%s.shift();\n",
			name, s.Body.Operations.Rollback.HistoryDepth, name)
	}
	fmt.Fprintf(b, "    return this._accumulator_%s;\n  }\n\n", name)

	if s.Body.Operations.Reconstruct != nil {
		base := "this._initialState"
		if name != primaryName {
			base = fmt.Sprintf("this._initialState_%s", name)
		}
		fmt.Fprintf(b, "  reconstruct_%s() {\n    return %s ^ this._accumulator_%s;\n  }\n\n", name, base, name)
	}

	if s.Body.Operations.Rollback != nil {
		fmt.Fprintf(b, "  rollback_%s(n = 1) {\n", name)
		b.WriteString("    let rolledBack = 0;\n")
		fmt.Fprintf(b, "    for (let i = 0; i < n; i++) {\n")
		fmt.Fprintf(b, "      if (this._history_%s.length === 0) break;\n", name)
		fmt.Fprintf(b, "      const delta = this._history_%s.pop();\n", name)
		fmt.Fprintf(b, "      this._accumulator_%s ^= delta;\n", name)
		b.WriteString("      rolledBack++;\n")
		b.WriteString("    }\n")
		b.WriteString("    return rolledBack;\n  }\n\n")
	}
	_ = field
}

// renderTest emits a node:assert-based test asserting the round-trip and
// self-inverse laws for the schema's primary field.
func renderTest(s *schema.Schema, p namespace.Projection) string {
	primaryName, primary := emit.PrimaryField(s)
	moduleBase := strings.TrimSuffix(p.FileName, ".js")
	delta := literal(primary.Width, 0x5)

	var b strings.Builder
	fmt.Fprintf(&b, "// Round-trip and self-inverse laws for %s.\n", p.ModuleSymbol)
	b.WriteString("import assert from \"node:assert/strict\";\n")
	fmt.Fprintf(&b, "import { %s } from \"./%s.js\";\n\n", p.ModuleSymbol, moduleBase)

	fmt.Fprintf(&b, "const selfInverse = new %s();\n", p.ModuleSymbol)
	fmt.Fprintf(&b, "selfInverse.accumulate_%s(%s);\n", primaryName, delta)
	fmt.Fprintf(&b, "selfInverse.accumulate_%s(%s);\n", primaryName, delta)
	b.WriteString("assert.equal(selfInverse.accumulator, " + zero(primary.Width) + ");\n")

	if s.Body.Operations.Reconstruct != nil {
		fmt.Fprintf(&b, "\nconst roundTrip = new %s();\n", p.ModuleSymbol)
		fmt.Fprintf(&b, "roundTrip.accumulate_%s(%s);\n", primaryName, delta)
		fmt.Fprintf(&b, "assert.equal(roundTrip.reconstruct_%s(), roundTrip.initialState ^ %s);\n", primaryName, delta)
	}

	return b.String()
}

// renderPackageJSON declares a package named after the projected scoped
// path, per the JS target's namespace.Projection.Path.
func renderPackageJSON(s *schema.Schema, p namespace.Projection) string {
	var b strings.Builder
	fmt.Fprintf(&b, "{\n  \"name\": \"%s\",\n  \"version\": \"%s\",\n  \"type\": \"module\"\n}\n",
		p.Path, s.Catalogue.Version)
	return b.String()
}
