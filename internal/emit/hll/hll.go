// Package hll emits the HLL (dynamic, Python-like) target: a single module
// containing one class-like type per schema, grounded on the teacher's
// one-file-per-format validator shape (the per-kind files internal/contract
// used to hold) generalized from a checker into a generator.
package hll

import (
	"fmt"
	"strings"

	"github.com/MatthewHRockwell/atomik-sub001/internal/artifact"
	"github.com/MatthewHRockwell/atomik-sub001/internal/emit"
	"github.com/MatthewHRockwell/atomik-sub001/internal/namespace"
	"github.com/MatthewHRockwell/atomik-sub001/internal/schema"
)

// Emitter generates the HLL target.
type Emitter struct{}

// New returns an HLL Emitter.
func New() *Emitter { return &Emitter{} }

// Target implements emit.Emitter.
func (Emitter) Target() namespace.Target { return namespace.TargetHLL }

// Emit implements emit.Emitter.
func (Emitter) Emit(s *schema.Schema, nm *namespace.NamespaceMap, outputRoot string) ([]artifact.Descriptor, error) {
	p := nm.Get(namespace.TargetHLL)
	body := render(s, p)
	test := renderTest(s, p)

	dir := strings.TrimSuffix(p.FilePath, p.FileName)
	testPath := dir + "test_" + p.FileName

	var out []artifact.Descriptor
	for _, f := range []struct {
		path    string
		content string
	}{
		{p.FilePath, body},
		{testPath, test},
	} {
		desc, err := emit.WriteFile(outputRoot, string(namespace.TargetHLL), f.path, []byte(f.content))
		if err != nil {
			return nil, err
		}
		out = append(out, desc)
	}
	return out, nil
}

func render(s *schema.Schema, p namespace.Projection) string {
	primaryName, _ := emit.PrimaryField(s)
	secondary := emit.SecondaryFields(s)

	var b strings.Builder
	fmt.Fprintf(&b, "\"\"\"%s delta-state primitive for %s/%s, generated from catalogue version %s.\"\"\"\n\n",
		p.ModuleSymbol, s.Catalogue.Vertical, s.Catalogue.Field, s.Catalogue.Version)

	fmt.Fprintf(&b, "class %s:\n", p.ModuleSymbol)
	fmt.Fprintf(&b, "    \"\"\"%s\"\"\"\n\n", firstNonEmpty(s.Catalogue.Description, "XOR delta-state accumulator."))

	fmt.Fprintf(&b, "    def __init__(self, initial_state=%d):\n", s.Body.DeltaFields[primaryName].DefaultValue)
	writeFieldInit(&b, primaryName, s)
	for _, name := range secondary {
		writeFieldInit(&b, name, s)
	}
	b.WriteString("\n")

	writeFieldMethods(&b, primaryName, s)
	b.WriteString("    # Generic aliases for the schema's primary delta field.\n")
	fmt.Fprintf(&b, "    def accumulate(self, delta):\n        return self.accumulate_%s(delta)\n\n", primaryName)
	if s.Body.Operations.Reconstruct != nil {
		fmt.Fprintf(&b, "    def reconstruct(self):\n        return self.reconstruct_%s()\n\n", primaryName)
	}
	if s.Body.Operations.Rollback != nil {
		fmt.Fprintf(&b, "    def rollback(self, n=1):\n        return self.rollback_%s(n)\n\n", primaryName)
	}
	fmt.Fprintf(&b, "    @property\n    def accumulator(self):\n        return self._accumulator_%s\n\n", primaryName)
	b.WriteString("    @property\n    def initial_state(self):\n        return self._initial_state\n")

	for _, name := range secondary {
		b.WriteString("\n")
		writeFieldMethods(&b, name, s)
	}

	return b.String()
}

func writeFieldInit(b *strings.Builder, name string, s *schema.Schema) {
	field := s.Body.DeltaFields[name]
	fmt.Fprintf(b, "        self._mask_%s = (1 << %d) - 1\n", name, field.Width)
	if name == primaryOf(s) {
		fmt.Fprintf(b, "        self._initial_state = initial_state & self._mask_%s\n", name)
	} else {
		fmt.Fprintf(b, "        self._initial_state_%s = %d & self._mask_%s\n", name, field.DefaultValue, name)
	}
	fmt.Fprintf(b, "        self._accumulator_%s = 0\n", name)
	if s.Body.Operations.Rollback != nil {
		fmt.Fprintf(b, "        self._history_%s = []\n", name)
	}
}

func primaryOf(s *schema.Schema) string {
	name, _ := emit.PrimaryField(s)
	return name
}

func writeFieldMethods(b *strings.Builder, name string, s *schema.Schema) {
	fmt.Fprintf(b, "    def accumulate_%s(self, delta):\n", name)
	fmt.Fprintf(b, "        delta &= self._mask_%s\n", name)
	fmt.Fprintf(b, "        self._accumulator_%s ^= delta\n", name)
	if s.Body.Operations.Rollback != nil {
		fmt.Fprintf(b, "        self._history_%s.append(delta)\n", name)
		fmt.Fprintf(b, "        if len(self._history_%s) > %d:\n", name, s.Body.Operations.Rollback.HistoryDepth)
		fmt.Fprintf(b, "            self._history_%s.pop(0)\n", name)
	}
	fmt.Fprintf(b, "        return self._accumulator_%s\n\n", name)

	if s.Body.Operations.Reconstruct != nil {
		base := "self._initial_state"
		if name != primaryOf(s) {
			base = fmt.Sprintf("self._initial_state_%s", name)
		}
		fmt.Fprintf(b, "    def reconstruct_%s(self):\n", name)
		fmt.Fprintf(b, "        return %s ^ self._accumulator_%s\n\n", base, name)
	}

	if s.Body.Operations.Rollback != nil {
		fmt.Fprintf(b, "    def rollback_%s(self, n=1):\n", name)
		fmt.Fprintf(b, "        rolled_back = 0\n")
		fmt.Fprintf(b, "        for _ in range(n):\n")
		fmt.Fprintf(b, "            if not self._history_%s:\n", name)
		fmt.Fprintf(b, "                break\n")
		fmt.Fprintf(b, "            delta = self._history_%s.pop()\n", name)
		fmt.Fprintf(b, "            self._accumulator_%s ^= delta\n", name)
		fmt.Fprintf(b, "            rolled_back += 1\n")
		fmt.Fprintf(b, "        return rolled_back\n")
	}
}

// renderTest emits a unittest module asserting the round-trip
// (reconstruct undoes accumulate) and self-inverse (accumulating the same
// delta twice restores a zero accumulator) laws for the schema's primary
// field.
func renderTest(s *schema.Schema, p namespace.Projection) string {
	primaryName, _ := emit.PrimaryField(s)
	moduleName := strings.TrimSuffix(p.FileName, ".py")

	var b strings.Builder
	fmt.Fprintf(&b, "\"\"\"Round-trip and self-inverse laws for %s.\"\"\"\n", p.ModuleSymbol)
	b.WriteString("import unittest\n\n")
	fmt.Fprintf(&b, "from %s import %s\n\n\n", moduleName, p.ModuleSymbol)
	fmt.Fprintf(&b, "class %sTest(unittest.TestCase):\n", p.ModuleSymbol)
	b.WriteString("    def test_self_inverse(self):\n")
	fmt.Fprintf(&b, "        obj = %s()\n", p.ModuleSymbol)
	fmt.Fprintf(&b, "        obj.accumulate_%s(0x5)\n", primaryName)
	fmt.Fprintf(&b, "        obj.accumulate_%s(0x5)\n", primaryName)
	fmt.Fprintf(&b, "        self.assertEqual(obj.accumulator, 0)\n")

	if s.Body.Operations.Reconstruct != nil {
		b.WriteString("\n    def test_round_trip(self):\n")
		fmt.Fprintf(&b, "        obj = %s()\n", p.ModuleSymbol)
		fmt.Fprintf(&b, "        obj.accumulate_%s(0x5)\n", primaryName)
		fmt.Fprintf(&b, "        self.assertEqual(obj.reconstruct_%s(), obj.initial_state ^ 0x5)\n", primaryName)
	}

	b.WriteString("\n\nif __name__ == \"__main__\":\n    unittest.main()\n")
	return b.String()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
