// Package sys emits the SYS (ownership-checked, Rust-like) target: a
// struct per schema with explicit field types sized to each delta field's
// declared width, grounded on the same per-target generator shape as
// internal/emit/hll.
package sys

import (
	"fmt"
	"strings"

	"github.com/MatthewHRockwell/atomik-sub001/internal/artifact"
	"github.com/MatthewHRockwell/atomik-sub001/internal/emit"
	"github.com/MatthewHRockwell/atomik-sub001/internal/namespace"
	"github.com/MatthewHRockwell/atomik-sub001/internal/schema"
)

// Emitter generates the SYS target.
type Emitter struct{}

// New returns a SYS Emitter.
func New() *Emitter { return &Emitter{} }

// Target implements emit.Emitter.
func (Emitter) Target() namespace.Target { return namespace.TargetSYS }

// Emit implements emit.Emitter.
func (Emitter) Emit(s *schema.Schema, nm *namespace.NamespaceMap, outputRoot string) ([]artifact.Descriptor, error) {
	p := nm.Get(namespace.TargetSYS)
	body := render(s, p)
	manifest := renderManifest(s, p)

	dir := strings.TrimSuffix(p.FilePath, p.FileName)
	manifestPath := dir + "Cargo.toml"

	var out []artifact.Descriptor
	for _, f := range []struct {
		path    string
		content string
	}{
		{p.FilePath, body},
		{manifestPath, manifest},
	} {
		desc, err := emit.WriteFile(outputRoot, string(namespace.TargetSYS), f.path, []byte(f.content))
		if err != nil {
			return nil, err
		}
		out = append(out, desc)
	}
	return out, nil
}

// renderManifest declares a crate owning the generated module plus a
// dev-dependency on a property-testing harness, per the crate's
// rollback-count and self-inverse laws.
func renderManifest(s *schema.Schema, p namespace.Projection) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[package]\nname = \"%s\"\nversion = \"%s\"\nedition = \"2021\"\n\n",
		namespace.ToSnakeCase(p.ModuleSymbol), s.Catalogue.Version)
	b.WriteString("[dependencies]\n\n")
	b.WriteString("[dev-dependencies]\nproptest = \"1\"\n")
	return b.String()
}

// intType returns the Rust integer type for a field width. Rust has
// native u128 support; 256-bit fields fall back to a fixed-size limb
// array because no wider native integer exists.
func intType(width int) string {
	switch {
	case width <= 8:
		return "u8"
	case width <= 16:
		return "u16"
	case width <= 32:
		return "u32"
	case width <= 64:
		return "u64"
	case width <= 128:
		return "u128"
	default:
		return fmt.Sprintf("[u64; %d]", emit.LimbCount(width))
	}
}

func isArrayType(width int) bool { return width > 128 }

func render(s *schema.Schema, p namespace.Projection) string {
	primaryName, _ := emit.PrimaryField(s)
	secondary := emit.SecondaryFields(s)
	allFields := append([]string{primaryName}, secondary...)

	var b strings.Builder
	fmt.Fprintf(&b, "//! %s delta-state primitive for %s/%s, catalogue version %s.\n\n",
		p.ModuleSymbol, s.Catalogue.Vertical, s.Catalogue.Field, s.Catalogue.Version)

	b.WriteString("#[derive(Debug, Clone)]\n")
	fmt.Fprintf(&b, "pub struct %s {\n", p.ModuleSymbol)
	for _, name := range allFields {
		field := s.Body.DeltaFields[name]
		fmt.Fprintf(&b, "    accumulator_%s: %s,\n", name, intType(field.Width))
		if name == primaryName {
			fmt.Fprintf(&b, "    initial_state: %s,\n", intType(field.Width))
		} else {
			fmt.Fprintf(&b, "    initial_state_%s: %s,\n", name, intType(field.Width))
		}
		if s.Body.Operations.Rollback != nil {
			fmt.Fprintf(&b, "    history_%s: std::collections::VecDeque<%s>,\n", name, intType(field.Width))
		}
	}
	b.WriteString("}\n\n")

	fmt.Fprintf(&b, "impl %s {\n", p.ModuleSymbol)
	primaryField := s.Body.DeltaFields[primaryName]
	fmt.Fprintf(&b, "    pub fn new(initial_state: %s) -> Self {\n", intType(primaryField.Width))
	b.WriteString("        Self {\n")
	for _, name := range allFields {
		field := s.Body.DeltaFields[name]
		fmt.Fprintf(&b, "            accumulator_%s: %s,\n", name, zeroLiteral(field.Width))
		if name == primaryName {
			b.WriteString("            initial_state,\n")
		} else {
			fmt.Fprintf(&b, "            initial_state_%s: %s,\n", name, literal(field.Width, field.DefaultValue))
		}
		if s.Body.Operations.Rollback != nil {
			fmt.Fprintf(&b, "            history_%s: std::collections::VecDeque::with_capacity(%d),\n",
				name, s.Body.Operations.Rollback.HistoryDepth)
		}
	}
	b.WriteString("        }\n    }\n\n")

	for _, name := range allFields {
		writeFieldMethods(&b, name, primaryName, s)
	}

	b.WriteString("    /// Generic alias delegating to the schema's primary delta field.\n")
	primary := s.Body.DeltaFields[primaryName]
	fmt.Fprintf(&b, "    pub fn accumulate(&mut self, delta: %s) -> %s {\n", intType(primary.Width), intType(primary.Width))
	fmt.Fprintf(&b, "        self.accumulate_%s(delta)\n    }\n\n", primaryName)
	if s.Body.Operations.Reconstruct != nil {
		fmt.Fprintf(&b, "    pub fn reconstruct(&self) -> %s {\n        self.reconstruct_%s()\n    }\n\n", intType(primary.Width), primaryName)
	}
	if s.Body.Operations.Rollback != nil {
		fmt.Fprintf(&b, "    pub fn rollback(&mut self, n: usize) -> usize {\n        self.rollback_%s(n)\n    }\n\n", primaryName)
	}
	fmt.Fprintf(&b, "    pub fn accumulator(&self) -> %s {\n        self.accumulator_%s\n    }\n\n", intType(primary.Width), primaryName)
	fmt.Fprintf(&b, "    pub fn initial_state(&self) -> %s {\n        self.initial_state\n    }\n", intType(primary.Width))

	b.WriteString("}\n")

	return b.String()
}

func writeFieldMethods(b *strings.Builder, name, primaryName string, s *schema.Schema) {
	field := s.Body.DeltaFields[name]
	t := intType(field.Width)

	fmt.Fprintf(b, "    pub fn accumulate_%s(&mut self, delta: %s) -> %s {\n", name, t, t)
	if isArrayType(field.Width) {
		limbs := emit.LimbCount(field.Width)
		fmt.Fprintf(b, "        for i in 0..%d {\n            self.accumulator_%s[i] ^= delta[i];\n        }\n", limbs, name)
	} else {
		fmt.Fprintf(b, "        self.accumulator_%s ^= delta;\n", name)
	}
	if s.Body.Operations.Rollback != nil {
		fmt.Fprintf(b, "        self.history_%s.push_back(delta);\n", name)
		fmt.Fprintf(b, "        if self.history_%s.len() > %d {\n            self.history_%s.pop_front();\n        }\n",
			name, s.Body.Operations.Rollback.HistoryDepth, name)
	}
	fmt.Fprintf(b, "        self.accumulator_%s\n    }\n\n", name)

	if s.Body.Operations.Reconstruct != nil {
		base := "self.initial_state"
		if name != primaryName {
			base = fmt.Sprintf("self.initial_state_%s", name)
		}
		fmt.Fprintf(b, "    pub fn reconstruct_%s(&self) -> %s {\n", name, t)
		if isArrayType(field.Width) {
			limbs := emit.LimbCount(field.Width)
			fmt.Fprintf(b, "        let mut out = %s;\n        for i in 0..%d {\n            out[i] ^= self.accumulator_%s[i];\n        }\n        out\n    }\n\n",
				base, limbs, name)
		} else {
			fmt.Fprintf(b, "        %s ^ self.accumulator_%s\n    }\n\n", base, name)
		}
	}

	if s.Body.Operations.Rollback != nil {
		fmt.Fprintf(b, "    pub fn rollback_%s(&mut self, n: usize) -> usize {\n", name)
		b.WriteString("        let mut rolled_back = 0;\n")
		b.WriteString("        for _ in 0..n {\n")
		fmt.Fprintf(b, "            match self.history_%s.pop_back() {\n", name)
		b.WriteString("                Some(delta) => {\n")
		if isArrayType(field.Width) {
			limbs := emit.LimbCount(field.Width)
			fmt.Fprintf(b, "                    for i in 0..%d {\n                        self.accumulator_%s[i] ^= delta[i];\n                    }\n", limbs, name)
		} else {
			fmt.Fprintf(b, "                    self.accumulator_%s ^= delta;\n", name)
		}
		b.WriteString("                    rolled_back += 1;\n")
		b.WriteString("                }\n                None => break,\n            }\n        }\n")
		b.WriteString("        rolled_back\n    }\n\n")
	}
}

func zeroLiteral(width int) string {
	if isArrayType(width) {
		return fmt.Sprintf("[0; %d]", emit.LimbCount(width))
	}
	return "0"
}

func literal(width int, value uint64) string {
	if isArrayType(width) {
		return fmt.Sprintf("[%d, 0, 0, 0]", value)
	}
	return fmt.Sprintf("%d", value)
}
