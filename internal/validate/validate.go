package validate

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/MatthewHRockwell/atomik-sub001/internal/namespace"
	"github.com/MatthewHRockwell/atomik-sub001/internal/schema"
)

// decodeTarget is the loosely-permissive wire shape the validator decodes
// into before applying defaults and cross-field rules. Unlike schema.Schema
// every field here is a pointer or has a permissive zero value so "absent"
// is distinguishable from "explicit zero".
type decodeTarget struct {
	Catalogue struct {
		Vertical    string `json:"vertical"`
		Field       string `json:"field"`
		Object      string `json:"object"`
		Version     string `json:"version"`
		Author      string `json:"author"`
		License     string `json:"license"`
		Description string `json:"description"`
	} `json:"catalogue"`
	Schema struct {
		DeltaFields map[string]struct {
			Kind         string  `json:"kind"`
			Width        int     `json:"width"`
			Encoding     string  `json:"encoding"`
			Compression  string  `json:"compression"`
			DefaultValue *uint64 `json:"default_value"`
		} `json:"delta_fields"`
		Operations struct {
			Accumulate struct {
				Enabled       bool `json:"enabled"`
				LatencyCycles int  `json:"latency_cycles"`
			} `json:"accumulate"`
			Reconstruct *struct {
				Enabled       bool `json:"enabled"`
				LatencyCycles int  `json:"latency_cycles"`
			} `json:"reconstruct"`
			Rollback *struct {
				Enabled       bool `json:"enabled"`
				LatencyCycles int  `json:"latency_cycles"`
				HistoryDepth  int  `json:"history_depth"`
			} `json:"rollback"`
		} `json:"operations"`
		Constraints *struct {
			MaxMemoryMB        *int     `json:"max_memory_mb"`
			MaxPowerMW         *int     `json:"max_power_mw"`
			UpdateLatencyMS    *int     `json:"update_latency_ms"`
			TargetFrequencyMHz *float64 `json:"target_frequency_mhz"`
		} `json:"constraints"`
	} `json:"schema"`
	Hardware *struct {
		TargetDevice string `json:"target_device"`
		RTLParams    *struct {
			DataWidth      *int `json:"DATA_WIDTH"`
			EnableParallel bool `json:"ENABLE_PARALLEL"`
		} `json:"rtl_params"`
		SynthesisOptions *struct {
			OptimizationGoal string `json:"optimization_goal"`
		} `json:"synthesis_options"`
		ClockName string `json:"clock_name"`
	} `json:"hardware"`
}

// Validate runs the full validation procedure from spec section 4.1:
// structural check, cross-field checks in fixed order, then
// canonicalization. It never returns early on the first error — every
// violation found across both passes is collected before returning.
func Validate(raw []byte) (*schema.Schema, Errors) {
	var errs Errors

	structuralErrs, err := structuralPass(raw)
	if err != nil {
		return nil, Errors{{Path: "/", Kind: KindTypeMismatch, Message: err.Error()}}
	}
	errs = append(errs, structuralErrs...)

	var dt decodeTarget
	if jsonErr := json.Unmarshal(raw, &dt); jsonErr != nil {
		// The structural pass already reported type mismatches; a failed
		// decode here means the document was too malformed to walk
		// further, so stop rather than cascade confusing secondary errors.
		if len(errs) == 0 {
			errs = append(errs, &ValidationError{Path: "/", Kind: KindTypeMismatch, Message: jsonErr.Error()})
		}
		return nil, errs
	}

	if !IsSemVer(dt.Catalogue.Version) {
		errs = append(errs, &ValidationError{
			Path:    "/catalogue/version",
			Kind:    KindTypeMismatch,
			Message: fmt.Sprintf("%q does not parse as semver", dt.Catalogue.Version),
			Hint:    "use MAJOR.MINOR.PATCH, e.g. 1.0.0",
		})
	}

	// object must be a legal identifier in all five target languages and
	// not a reserved word in any.
	_, nsErr := namespace.Map(namespace.Catalogue{
		Vertical: dt.Catalogue.Vertical,
		Field:    dt.Catalogue.Field,
		Object:   dt.Catalogue.Object,
	})
	if nsErr != nil {
		var collErr *namespace.CollisionError
		if asCollision(nsErr, &collErr) {
			errs = append(errs, &ValidationError{
				Path:    "/catalogue/object",
				Kind:    KindReservedWord,
				Message: fmt.Sprintf("object %q projects to a reserved word in target %q", dt.Catalogue.Object, collErr.Target),
				Hint:    "choose a different object name",
			})
		} else {
			errs = append(errs, &ValidationError{
				Path:    "/catalogue/object",
				Kind:    KindIdentifierIllegal,
				Message: nsErr.Error(),
			})
		}
	}

	// accumulate.enabled must be true.
	if !dt.Schema.Operations.Accumulate.Enabled {
		errs = append(errs, &ValidationError{
			Path:    "/schema/operations/accumulate/enabled",
			Kind:    KindCrossFieldMismatch,
			Message: "operations.accumulate.enabled must be true",
			Hint:    "set accumulate.enabled to true; accumulate cannot be disabled",
		})
	}

	// rollback.enabled implies history_depth present (the structural pass
	// already range-checks it when present).
	if dt.Schema.Operations.Rollback != nil && dt.Schema.Operations.Rollback.Enabled && dt.Schema.Operations.Rollback.HistoryDepth == 0 {
		errs = append(errs, &ValidationError{
			Path:    "/schema/operations/rollback/history_depth",
			Kind:    KindCrossFieldMismatch,
			Message: "rollback.enabled is true but history_depth is absent",
			Hint:    "set history_depth to a value between 1 and 65536",
		})
	}

	// hardware.rtl_params.DATA_WIDTH, if present, must equal every field width.
	if dt.Hardware != nil && dt.Hardware.RTLParams != nil && dt.Hardware.RTLParams.DataWidth != nil {
		want := *dt.Hardware.RTLParams.DataWidth
		for name, f := range dt.Schema.DeltaFields {
			if f.Width != want {
				errs = append(errs, &ValidationError{
					Path:    fmt.Sprintf("/schema/delta_fields/%s/width", name),
					Kind:    KindCrossFieldMismatch,
					Message: fmt.Sprintf("field width %d does not match hardware.rtl_params.DATA_WIDTH=%d", f.Width, want),
					Hint:    "make every delta field's width equal DATA_WIDTH, or remove DATA_WIDTH",
				})
			}
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}

	return canonicalize(dt), nil
}

// asCollision is a tiny errors.As wrapper kept local so this file doesn't
// need to import "errors" just for one call site.
func asCollision(err error, target **namespace.CollisionError) bool {
	if ce, ok := err.(*namespace.CollisionError); ok {
		*target = ce
		return true
	}
	return false
}

// canonicalize elaborates defaults and re-keys maps into deterministic
// order, so every downstream emitter sees a fully materialized record and
// never branches on "absent vs default".
func canonicalize(dt decodeTarget) *schema.Schema {
	s := &schema.Schema{
		Catalogue: schema.Catalogue{
			Vertical:    schema.Vertical(dt.Catalogue.Vertical),
			Field:       dt.Catalogue.Field,
			Object:      dt.Catalogue.Object,
			Version:     dt.Catalogue.Version,
			Author:      dt.Catalogue.Author,
			License:     dt.Catalogue.License,
			Description: dt.Catalogue.Description,
		},
	}

	fields := make(map[string]schema.DeltaField, len(dt.Schema.DeltaFields))
	names := make([]string, 0, len(dt.Schema.DeltaFields))
	for name := range dt.Schema.DeltaFields {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		f := dt.Schema.DeltaFields[name]
		encoding := schema.Encoding(f.Encoding)
		if encoding == "" {
			encoding = schema.EncodingRaw
		}
		compression := schema.Compression(f.Compression)
		if compression == "" {
			compression = schema.CompressionNone
		}
		var defaultValue uint64
		if f.DefaultValue != nil {
			defaultValue = *f.DefaultValue
		}
		fields[name] = schema.DeltaField{
			Name:         name,
			Kind:         schema.DeltaFieldKind(f.Kind),
			Width:        f.Width,
			Encoding:     encoding,
			Compression:  compression,
			DefaultValue: defaultValue,
		}
	}

	ops := schema.Operations{
		Accumulate: schema.Op{
			Enabled:       dt.Schema.Operations.Accumulate.Enabled,
			LatencyCycles: elaborateLatency(dt.Schema.Operations.Accumulate.LatencyCycles),
		},
	}
	if dt.Schema.Operations.Reconstruct != nil {
		ops.Reconstruct = &schema.Op{
			Enabled:       dt.Schema.Operations.Reconstruct.Enabled,
			LatencyCycles: elaborateLatency(dt.Schema.Operations.Reconstruct.LatencyCycles),
		}
	}
	if dt.Schema.Operations.Rollback != nil {
		ops.Rollback = &schema.RollbackOp{
			Op: schema.Op{
				Enabled:       dt.Schema.Operations.Rollback.Enabled,
				LatencyCycles: elaborateLatency(dt.Schema.Operations.Rollback.LatencyCycles),
			},
			HistoryDepth: dt.Schema.Operations.Rollback.HistoryDepth,
		}
	}

	s.Body = schema.SchemaBody{
		DeltaFields:   fields,
		OrderedFields: names,
		Operations:    ops,
	}

	if dt.Schema.Constraints != nil {
		c := &schema.Constraints{TargetFrequencyMHz: schema.DefaultTargetFrequencyMHz}
		if dt.Schema.Constraints.MaxMemoryMB != nil {
			c.MaxMemoryMB = *dt.Schema.Constraints.MaxMemoryMB
		}
		if dt.Schema.Constraints.MaxPowerMW != nil {
			c.MaxPowerMW = *dt.Schema.Constraints.MaxPowerMW
		}
		if dt.Schema.Constraints.UpdateLatencyMS != nil {
			c.UpdateLatencyMS = *dt.Schema.Constraints.UpdateLatencyMS
		}
		if dt.Schema.Constraints.TargetFrequencyMHz != nil {
			c.TargetFrequencyMHz = *dt.Schema.Constraints.TargetFrequencyMHz
		}
		s.Body.Constraints = c
	}

	if dt.Hardware != nil {
		hw := &schema.Hardware{
			TargetDevice: dt.Hardware.TargetDevice,
			ClockName:    dt.Hardware.ClockName,
		}
		if dt.Hardware.RTLParams != nil {
			hw.RTLParams = &schema.RTLParams{
				DataWidth:      dt.Hardware.RTLParams.DataWidth,
				EnableParallel: dt.Hardware.RTLParams.EnableParallel,
			}
		}
		if dt.Hardware.SynthesisOptions != nil {
			hw.SynthesisOptions = &schema.SynthesisOptions{
				OptimizationGoal: schema.OptimizationGoal(dt.Hardware.SynthesisOptions.OptimizationGoal),
			}
		}
		s.Hardware = hw
	}

	return s
}

func elaborateLatency(v int) int {
	if v == 0 {
		return 1
	}
	return v
}
