// Package emit defines the common emitter contract (component C5) shared
// by the five language emitters in internal/emit/{hll,sys,lll,js,hdl}
// (component C6). Grounded on the teacher's contract.ContractValidator
// interface-per-kind pattern: one small struct per target, selected by a
// registry keyed on namespace.Target, all satisfying the same interface.
package emit

import (
	"github.com/MatthewHRockwell/atomik-sub001/internal/artifact"
	"github.com/MatthewHRockwell/atomik-sub001/internal/namespace"
	"github.com/MatthewHRockwell/atomik-sub001/internal/schema"
)

// Emitter produces artifacts for one target language. Emit is a pure
// function of (schema, namespaces): the same inputs always produce
// byte-identical output and byte-identical checksums.
type Emitter interface {
	Target() namespace.Target
	Emit(s *schema.Schema, nm *namespace.NamespaceMap, outputRoot string) ([]artifact.Descriptor, error)
}
