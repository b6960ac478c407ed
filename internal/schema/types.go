// Package schema holds the typed in-memory representation of a parsed
// ATOMiK schema document: the catalogue entry, its delta fields, its
// operations, and its optional resource and hardware constraints.
//
// Values in this package are produced exclusively by the validator
// (internal/validate) and are never mutated afterwards; emitters and the
// pipeline controller receive them by read-only reference.
package schema

import "sort"

// Vertical enumerates the catalogue verticals a schema may belong to.
type Vertical string

const (
	VerticalSystem    Vertical = "System"
	VerticalNetwork   Vertical = "Network"
	VerticalSensor    Vertical = "Sensor"
	VerticalStorage   Vertical = "Storage"
	VerticalRendering Vertical = "Rendering"
	VerticalControl   Vertical = "Control"
)

// KnownVerticals lists every Vertical the validator accepts.
var KnownVerticals = []Vertical{
	VerticalSystem, VerticalNetwork, VerticalSensor,
	VerticalStorage, VerticalRendering, VerticalControl,
}

// DeltaFieldKind is the semantic role of a delta field.
type DeltaFieldKind string

const (
	KindDeltaStream    DeltaFieldKind = "delta_stream"
	KindBitmaskDelta   DeltaFieldKind = "bitmask_delta"
	KindParameterDelta DeltaFieldKind = "parameter_delta"
)

// Encoding is a downstream metadata hint; it never changes the emitted
// computation, which is always XOR.
type Encoding string

const (
	EncodingRaw                Encoding = "raw"
	EncodingSpatiotemporal4x4x4 Encoding = "spatiotemporal_4x4x4"
	EncodingRLE                Encoding = "rle"
)

// Compression is metadata only; "xor" does not trigger an actual
// compression pass because XOR is idempotent under self-stacking.
type Compression string

const (
	CompressionNone Compression = "none"
	CompressionXOR  Compression = "xor"
	CompressionRLE  Compression = "rle"
)

// ValidWidths enumerates the field widths the validator accepts.
var ValidWidths = []int{8, 16, 32, 64, 128, 256}

// DeltaField describes one field of the schema's delta vector.
type DeltaField struct {
	Name         string         `json:"-"` // the map key; filled in during canonicalization
	Kind         DeltaFieldKind `json:"kind"`
	Width        int            `json:"width"`
	Encoding     Encoding       `json:"encoding"`
	Compression  Compression    `json:"compression"`
	DefaultValue uint64         `json:"default_value"`
}

// Op is a generic enable/latency pair shared by accumulate and reconstruct.
type Op struct {
	Enabled       bool `json:"enabled"`
	LatencyCycles int  `json:"latency_cycles"`
}

// RollbackOp extends Op with the bounded ring-buffer depth.
type RollbackOp struct {
	Op
	HistoryDepth int `json:"history_depth"`
}

// Operations is the schema's operation vocabulary. Accumulate is always
// required and always enabled (enforced by the validator).
type Operations struct {
	Accumulate  Op          `json:"accumulate"`
	Reconstruct *Op         `json:"reconstruct,omitempty"`
	Rollback    *RollbackOp `json:"rollback,omitempty"`
}

// OptimizationGoal steers the SYS/HDL synthesis options.
type OptimizationGoal string

const (
	OptimizeSpeed OptimizationGoal = "speed"
	OptimizePower OptimizationGoal = "power"
	OptimizeArea  OptimizationGoal = "area"
)

// Constraints describes optional resource/performance targets.
type Constraints struct {
	MaxMemoryMB        int     `json:"max_memory_mb,omitempty"`
	MaxPowerMW         int     `json:"max_power_mw,omitempty"`
	UpdateLatencyMS    int     `json:"update_latency_ms,omitempty"`
	TargetFrequencyMHz float64 `json:"target_frequency_mhz"`
}

// DefaultTargetFrequencyMHz is applied when Constraints omits the field.
const DefaultTargetFrequencyMHz = 94.5

// RTLParams configures the HDL emitter's top-level parameters.
type RTLParams struct {
	DataWidth      *int `json:"DATA_WIDTH,omitempty"`
	EnableParallel bool `json:"ENABLE_PARALLEL,omitempty"`
}

// SynthesisOptions steers the hardware stage's synthesizer invocation.
type SynthesisOptions struct {
	OptimizationGoal OptimizationGoal `json:"optimization_goal,omitempty"`
}

// Hardware is the optional hardware-mapping section of a schema.
type Hardware struct {
	TargetDevice     string            `json:"target_device,omitempty"`
	RTLParams        *RTLParams        `json:"rtl_params,omitempty"`
	SynthesisOptions *SynthesisOptions `json:"synthesis_options,omitempty"`
	ClockName        string            `json:"clock_name,omitempty"`
}

// Catalogue names a schema and determines its target-language namespaces.
type Catalogue struct {
	Vertical    Vertical `json:"vertical"`
	Field       string   `json:"field"`
	Object      string   `json:"object"`
	Version     string   `json:"version"`
	Author      string   `json:"author,omitempty"`
	License     string   `json:"license,omitempty"`
	Description string   `json:"description,omitempty"`
}

// SchemaBody is the declarative core: fields, operations, constraints.
//
// OrderedFields lists the DeltaFields names in lexicographic order (the
// validator sorts them) for deterministic emission; the source document's
// key order is not kept.
type SchemaBody struct {
	DeltaFields   map[string]DeltaField `json:"delta_fields"`
	OrderedFields []string              `json:"-"`
	Operations    Operations            `json:"operations"`
	Constraints   *Constraints          `json:"constraints,omitempty"`
}

// Schema is the root record produced by validation. Nothing mutates a
// Schema after validate.Validate returns it.
type Schema struct {
	Catalogue Catalogue   `json:"catalogue"`
	Body      SchemaBody  `json:"schema"`
	Hardware  *Hardware   `json:"hardware,omitempty"`
}

// Identity returns the registry-uniqueness tuple for this schema.
func (s *Schema) Identity() (vertical, field, object string) {
	return string(s.Catalogue.Vertical), s.Catalogue.Field, s.Catalogue.Object
}

// SortedFieldNames returns delta field names in canonical (lexicographic)
// order, independent of OrderedFields, for hashing and diffing.
func (s *SchemaBody) SortedFieldNames() []string {
	names := make([]string, 0, len(s.DeltaFields))
	for name := range s.DeltaFields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
