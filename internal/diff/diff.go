// Package diff implements the structural differ (component C7): given a
// freshly validated schema and the checkpoint's last-known schema hash and
// per-emitter checksums, it decides which emitters must re-run. Grounded
// on the teacher's change-class-to-action table style and priority-ordered
// rule matching.
package diff

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"reflect"

	"github.com/MatthewHRockwell/atomik-sub001/internal/checkpoint"
	"github.com/MatthewHRockwell/atomik-sub001/internal/namespace"
	"github.com/MatthewHRockwell/atomik-sub001/internal/schema"
)

// ChangeClass names which canonicalized sub-tree changed between the
// checkpoint's schema and the new one.
type ChangeClass string

const (
	ChangeNone              ChangeClass = "none"
	ChangeDeltaFields       ChangeClass = "delta_fields"
	ChangeOperations        ChangeClass = "operations"
	ChangeIdentity          ChangeClass = "identity"
	ChangeHardware          ChangeClass = "hardware"
	ChangeConstraints       ChangeClass = "constraints"
	ChangeCatalogueMetadata ChangeClass = "catalogue_metadata"
	ChangeMultiple          ChangeClass = "multiple"
)

// Result is the differ's decision.
type Result struct {
	SchemaHash string
	Class      ChangeClass
	Selected   []namespace.Target
}

// SchemaHash returns the sha256 hex digest of the schema's canonical JSON
// encoding, the identity used to short-circuit an unchanged re-run.
func SchemaHash(s *schema.Schema) (string, error) {
	canonical, err := canonicalize(s)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

// canonicalize marshals the schema with delta fields re-keyed into sorted
// order (schema.Schema.Body.DeltaFields is already a map, and
// encoding/json sorts map keys when marshaling, so this is already
// deterministic; SortedFieldNames exists for callers that need the order
// explicitly, not for this hash).
func canonicalize(s *schema.Schema) ([]byte, error) {
	return json.Marshal(s)
}

// Diff classifies the change between the checkpoint's schema hash and the
// new schema, selecting the emitters that must re-run. cp may be a fresh
// (never-run) checkpoint.
func Diff(s *schema.Schema, cp *checkpoint.PipelineCheckpoint) (Result, error) {
	newHash, err := SchemaHash(s)
	if err != nil {
		return Result{}, err
	}

	if cp.SchemaHash == newHash && cp.SchemaHash != "" {
		return Result{SchemaHash: newHash, Class: ChangeNone, Selected: nil}, nil
	}

	last, err := cp.LastSchema()
	if err != nil {
		return Result{}, err
	}
	if cp.SchemaHash == "" || last == nil {
		// First run for this schema: everything must be generated.
		return Result{SchemaHash: newHash, Class: ChangeMultiple, Selected: namespace.AllTargets}, nil
	}

	classes := classify(last, s)
	class, selected := resolve(classes)
	return Result{SchemaHash: newHash, Class: class, Selected: selected}, nil
}

// classify compares canonicalized sub-trees of the old and new schema and
// returns every ChangeClass touched.
func classify(old, updated *schema.Schema) []ChangeClass {
	var classes []ChangeClass

	if !reflect.DeepEqual(old.Body.DeltaFields, updated.Body.DeltaFields) {
		classes = append(classes, ChangeDeltaFields)
	}
	if !reflect.DeepEqual(old.Body.Operations, updated.Body.Operations) {
		classes = append(classes, ChangeOperations)
	}
	if old.Catalogue.Vertical != updated.Catalogue.Vertical ||
		old.Catalogue.Field != updated.Catalogue.Field ||
		old.Catalogue.Object != updated.Catalogue.Object {
		classes = append(classes, ChangeIdentity)
	}
	if !reflect.DeepEqual(old.Hardware, updated.Hardware) {
		classes = append(classes, ChangeHardware)
	}
	if !reflect.DeepEqual(old.Body.Constraints, updated.Body.Constraints) {
		classes = append(classes, ChangeConstraints)
	}
	if old.Catalogue.Description != updated.Catalogue.Description ||
		old.Catalogue.Author != updated.Catalogue.Author ||
		old.Catalogue.License != updated.Catalogue.License {
		classes = append(classes, ChangeCatalogueMetadata)
	}

	return classes
}

// resolve applies the change-class → emitter-selection table. Multiple
// touched classes fall back to "select all five" per the conservative
// fallback policy; a class this table doesn't recognize also falls back.
func resolve(classes []ChangeClass) (ChangeClass, []namespace.Target) {
	if len(classes) == 0 {
		return ChangeNone, nil
	}
	if len(classes) > 1 {
		return ChangeMultiple, namespace.AllTargets
	}

	switch classes[0] {
	case ChangeDeltaFields, ChangeOperations, ChangeIdentity:
		return classes[0], namespace.AllTargets
	case ChangeHardware, ChangeConstraints:
		return classes[0], []namespace.Target{namespace.TargetHDL}
	case ChangeCatalogueMetadata:
		return classes[0], []namespace.Target{namespace.TargetHLL, namespace.TargetJS}
	default:
		return ChangeMultiple, namespace.AllTargets
	}
}
