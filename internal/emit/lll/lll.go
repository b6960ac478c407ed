// Package lll emits the LLL (C-like, manual-memory) target: a header
// declaring an opaque struct and function prototypes, a paired
// implementation file, and a Makefile fragment to build it, grounded on
// the same per-target generator shape as internal/emit/hll.
package lll

import (
	"fmt"
	"strings"

	"github.com/MatthewHRockwell/atomik-sub001/internal/artifact"
	"github.com/MatthewHRockwell/atomik-sub001/internal/emit"
	"github.com/MatthewHRockwell/atomik-sub001/internal/namespace"
	"github.com/MatthewHRockwell/atomik-sub001/internal/schema"
)

// Emitter generates the LLL target.
type Emitter struct{}

// New returns an LLL Emitter.
func New() *Emitter { return &Emitter{} }

// Target implements emit.Emitter.
func (Emitter) Target() namespace.Target { return namespace.TargetLLL }

// Emit implements emit.Emitter.
func (Emitter) Emit(s *schema.Schema, nm *namespace.NamespaceMap, outputRoot string) ([]artifact.Descriptor, error) {
	p := nm.Get(namespace.TargetLLL)
	base := strings.TrimSuffix(p.FilePath, ".h")

	header, impl, makefile := render(s, p)

	var out []artifact.Descriptor
	for _, f := range []struct {
		path    string
		content string
	}{
		{p.FilePath, header},
		{base + ".c", impl},
		{base + ".mk", makefile},
	} {
		desc, err := emit.WriteFile(outputRoot, string(namespace.TargetLLL), f.path, []byte(f.content))
		if err != nil {
			return nil, err
		}
		out = append(out, desc)
	}
	return out, nil
}

// cType mirrors emit.NativeIntType but falls back to a fixed limb array
// for widths beyond 64 bits, since C has no native integer that wide.
func cType(width int) (name string, isArray bool) {
	if t := emit.NativeIntType(width); t != "" {
		return "uint" + strings.TrimPrefix(t, "u") + "_t", false
	}
	return fmt.Sprintf("uint64_t[%d]", emit.LimbCount(width)), true
}

func render(s *schema.Schema, p namespace.Projection) (header, impl, makefile string) {
	primaryName, _ := emit.PrimaryField(s)
	secondary := emit.SecondaryFields(s)
	allFields := append([]string{primaryName}, secondary...)
	guard := strings.ToUpper(p.ModuleSymbol) + "_H"

	var h strings.Builder
	fmt.Fprintf(&h, "#ifndef %s\n#define %s\n\n", guard, guard)
	h.WriteString("#include <stdbool.h>\n#include <stdint.h>\n#include <stddef.h>\n\n")
	fmt.Fprintf(&h, "/* %s delta-state primitive for %s/%s, catalogue version %s. */\n\n",
		p.ModuleSymbol, s.Catalogue.Vertical, s.Catalogue.Field, s.Catalogue.Version)

	fmt.Fprintf(&h, "typedef struct %s %s;\n\n", p.ModuleSymbol, p.ModuleSymbol)

	primaryType, primaryIsArray := cType(s.Body.DeltaFields[primaryName].Width)
	ctorArg := primaryType
	if primaryIsArray {
		ctorArg = strings.TrimSuffix(primaryType, fmt.Sprintf("[%d]", emit.LimbCount(s.Body.DeltaFields[primaryName].Width))) + " *"
	}
	fmt.Fprintf(&h, "%s *%s_create(%s initial_state);\n", p.ModuleSymbol, p.ModuleSymbol, ctorArg)
	fmt.Fprintf(&h, "void %s_destroy(%s *self);\n\n", p.ModuleSymbol, p.ModuleSymbol)

	for _, name := range allFields {
		writeHeaderPrototypes(&h, p.ModuleSymbol, name, s)
	}
	fmt.Fprintf(&h, "/* Generic aliases for the schema's primary delta field (%s). */\n", primaryName)
	fmt.Fprintf(&h, "%s %s_accumulate(%s *self, %s delta);\n", primaryType, p.ModuleSymbol, p.ModuleSymbol, primaryType)
	if s.Body.Operations.Reconstruct != nil {
		fmt.Fprintf(&h, "%s %s_reconstruct(const %s *self);\n", primaryType, p.ModuleSymbol, p.ModuleSymbol)
	}
	if s.Body.Operations.Rollback != nil {
		fmt.Fprintf(&h, "size_t %s_rollback(%s *self, size_t n);\n", p.ModuleSymbol, p.ModuleSymbol)
	}
	fmt.Fprintf(&h, "bool %s_is_zero(const %s *self);\n", p.ModuleSymbol, p.ModuleSymbol)
	h.WriteString("\n#endif\n")

	var c strings.Builder
	fmt.Fprintf(&c, "#include \"%s\"\n#include <stdlib.h>\n#include <string.h>\n\n", p.FileName)
	c.WriteString("struct " + p.ModuleSymbol + " {\n")
	for _, name := range allFields {
		t, _ := cType(s.Body.DeltaFields[name].Width)
		fmt.Fprintf(&c, "    %s accumulator_%s;\n", t, name)
		if name == primaryName {
			fmt.Fprintf(&c, "    %s initial_state;\n", t)
		} else {
			fmt.Fprintf(&c, "    %s initial_state_%s;\n", t, name)
		}
		if s.Body.Operations.Rollback != nil {
			depth := s.Body.Operations.Rollback.HistoryDepth
			fmt.Fprintf(&c, "    %s history_%s[%d];\n    size_t history_%s_len;\n", t, name, depth, name)
		}
	}
	c.WriteString("};\n\n")

	fmt.Fprintf(&c, "%s *%s_create(%s initial_state) {\n", p.ModuleSymbol, p.ModuleSymbol, ctorArg)
	fmt.Fprintf(&c, "    %s *self = calloc(1, sizeof(%s));\n", p.ModuleSymbol, p.ModuleSymbol)
	c.WriteString("    if (!self) return NULL;\n")
	if primaryIsArray {
		c.WriteString("    memcpy(self->initial_state, initial_state, sizeof(self->initial_state));\n")
	} else {
		c.WriteString("    self->initial_state = initial_state;\n")
	}
	for _, name := range secondary {
		field := s.Body.DeltaFields[name]
		_, isArray := cType(field.Width)
		if isArray {
			fmt.Fprintf(&c, "    self->initial_state_%s[0] = %d;\n", name, field.DefaultValue)
		} else {
			fmt.Fprintf(&c, "    self->initial_state_%s = %d;\n", name, field.DefaultValue)
		}
	}
	c.WriteString("    return self;\n}\n\n")

	fmt.Fprintf(&c, "void %s_destroy(%s *self) {\n    free(self);\n}\n\n", p.ModuleSymbol, p.ModuleSymbol)

	for _, name := range allFields {
		writeImplFunctions(&c, p.ModuleSymbol, name, s)
	}

	fmt.Fprintf(&c, "%s %s_accumulate(%s *self, %s delta) {\n    return %s_accumulate_%s(self, delta);\n}\n\n",
		primaryType, p.ModuleSymbol, p.ModuleSymbol, primaryType, p.ModuleSymbol, primaryName)
	if s.Body.Operations.Reconstruct != nil {
		fmt.Fprintf(&c, "%s %s_reconstruct(const %s *self) {\n    return %s_reconstruct_%s(self);\n}\n\n",
			primaryType, p.ModuleSymbol, p.ModuleSymbol, p.ModuleSymbol, primaryName)
	}
	if s.Body.Operations.Rollback != nil {
		fmt.Fprintf(&c, "size_t %s_rollback(%s *self, size_t n) {\n    return %s_rollback_%s(self, n);\n}\n\n",
			p.ModuleSymbol, p.ModuleSymbol, p.ModuleSymbol, primaryName)
	}

	fmt.Fprintf(&c, "bool %s_is_zero(const %s *self) {\n", p.ModuleSymbol, p.ModuleSymbol)
	if primaryIsArray {
		limbs := emit.LimbCount(s.Body.DeltaFields[primaryName].Width)
		fmt.Fprintf(&c, "    for (size_t i = 0; i < %d; i++) {\n        if (self->accumulator_%s[i] != 0) return false;\n    }\n    return true;\n}\n",
			limbs, primaryName)
	} else {
		fmt.Fprintf(&c, "    return self->accumulator_%s == 0;\n}\n", primaryName)
	}

	var mk strings.Builder
	fmt.Fprintf(&mk, "# Build fragment for %s; include from a top-level Makefile.\n", p.ModuleSymbol)
	fmt.Fprintf(&mk, "%s_SRCS := %s\n", strings.ToUpper(p.ModuleSymbol), strings.TrimSuffix(p.FileName, ".h")+".c")
	fmt.Fprintf(&mk, "%s_OBJS := $(%s_SRCS:.c=.o)\n", strings.ToUpper(p.ModuleSymbol), strings.ToUpper(p.ModuleSymbol))
	fmt.Fprintf(&mk, "%%.o: %%.c %s\n\t$(CC) $(CFLAGS) -c -o $@ $<\n", p.FileName)

	return h.String(), c.String(), mk.String()
}

func writeHeaderPrototypes(h *strings.Builder, symbol, name string, s *schema.Schema) {
	t, isArray := cType(s.Body.DeltaFields[name].Width)
	deltaArg := t
	if isArray {
		deltaArg = strings.TrimSuffix(t, fmt.Sprintf("[%d]", emit.LimbCount(s.Body.DeltaFields[name].Width))) + " *"
	}
	fmt.Fprintf(h, "%s %s_accumulate_%s(%s *self, %s delta);\n", t, symbol, name, symbol, deltaArg)
	if s.Body.Operations.Reconstruct != nil {
		fmt.Fprintf(h, "%s %s_reconstruct_%s(const %s *self);\n", t, symbol, name, symbol)
	}
	if s.Body.Operations.Rollback != nil {
		fmt.Fprintf(h, "size_t %s_rollback_%s(%s *self, size_t n);\n", symbol, name, symbol)
	}
	h.WriteString("\n")
}

func writeImplFunctions(c *strings.Builder, symbol, name string, s *schema.Schema) {
	field := s.Body.DeltaFields[name]
	t, isArray := cType(field.Width)
	deltaArg := t
	if isArray {
		deltaArg = strings.TrimSuffix(t, fmt.Sprintf("[%d]", emit.LimbCount(field.Width))) + " *"
	}

	fmt.Fprintf(c, "%s %s_accumulate_%s(%s *self, %s delta) {\n", t, symbol, name, symbol, deltaArg)
	if isArray {
		limbs := emit.LimbCount(field.Width)
		fmt.Fprintf(c, "    for (size_t i = 0; i < %d; i++) self->accumulator_%s[i] ^= delta[i];\n", limbs, name)
	} else {
		fmt.Fprintf(c, "    self->accumulator_%s ^= delta;\n", name)
	}
	if s.Body.Operations.Rollback != nil {
		depth := s.Body.Operations.Rollback.HistoryDepth
		fmt.Fprintf(c, "    if (self->history_%s_len < %d) {\n", name, depth)
		if isArray {
			fmt.Fprintf(c, "        memcpy(self->history_%s[self->history_%s_len], delta, sizeof(delta));\n", name, name)
		} else {
			fmt.Fprintf(c, "        self->history_%s[self->history_%s_len] = delta;\n", name, name)
		}
		fmt.Fprintf(c, "        self->history_%s_len++;\n    } else {\n", name)
		fmt.Fprintf(c, "        memmove(&self->history_%s[0], &self->history_%s[1], sizeof(self->history_%s[0]) * (%d - 1));\n",
			name, name, name, depth)
		if isArray {
			fmt.Fprintf(c, "        memcpy(self->history_%s[%d - 1], delta, sizeof(delta));\n", name, depth)
		} else {
			fmt.Fprintf(c, "        self->history_%s[%d - 1] = delta;\n", name, depth)
		}
		c.WriteString("    }\n")
	}
	if isArray {
		fmt.Fprintf(c, "    return self->accumulator_%s;\n}\n\n", name)
	} else {
		fmt.Fprintf(c, "    return self->accumulator_%s;\n}\n\n", name)
	}

	if s.Body.Operations.Reconstruct != nil {
		base := "self->initial_state"
		if name != fieldPrimary(s) {
			base = fmt.Sprintf("self->initial_state_%s", name)
		}
		fmt.Fprintf(c, "%s %s_reconstruct_%s(const %s *self) {\n", t, symbol, name, symbol)
		if isArray {
			limbs := emit.LimbCount(field.Width)
			fmt.Fprintf(c, "    static __thread %s out;\n    for (size_t i = 0; i < %d; i++) out[i] = %s[i] ^ self->accumulator_%s[i];\n    return out;\n}\n\n",
				t, limbs, base, name)
		} else {
			fmt.Fprintf(c, "    return %s ^ self->accumulator_%s;\n}\n\n", base, name)
		}
	}

	if s.Body.Operations.Rollback != nil {
		fmt.Fprintf(c, "size_t %s_rollback_%s(%s *self, size_t n) {\n", symbol, name, symbol)
		c.WriteString("    size_t rolled_back = 0;\n")
		c.WriteString("    for (size_t i = 0; i < n; i++) {\n")
		fmt.Fprintf(c, "        if (self->history_%s_len == 0) break;\n", name)
		fmt.Fprintf(c, "        self->history_%s_len--;\n", name)
		if isArray {
			limbs := emit.LimbCount(field.Width)
			fmt.Fprintf(c, "        for (size_t j = 0; j < %d; j++) self->accumulator_%s[j] ^= self->history_%s[self->history_%s_len][j];\n",
				limbs, name, name, name)
		} else {
			fmt.Fprintf(c, "        self->accumulator_%s ^= self->history_%s[self->history_%s_len];\n", name, name, name)
		}
		c.WriteString("        rolled_back++;\n")
		c.WriteString("    }\n")
		c.WriteString("    return rolled_back;\n}\n\n")
	}
}

func fieldPrimary(s *schema.Schema) string {
	name, _ := emit.PrimaryField(s)
	return name
}
