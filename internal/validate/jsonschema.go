package validate

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed testdata/atomik_schema_v1.json
var contractSchemaJSON []byte

// structuralSchema is compiled once and reused across validator calls,
// mirroring contract.jsonSchemaValidator's compile-then-validate shape.
var structuralSchema *jsonschema.Schema

func init() {
	compiler := jsonschema.NewCompiler()
	var doc interface{}
	if err := json.Unmarshal(contractSchemaJSON, &doc); err != nil {
		panic(fmt.Sprintf("validate: embedded contract schema is invalid JSON: %v", err))
	}
	if err := compiler.AddResource("atomik_schema_v1.json", doc); err != nil {
		panic(fmt.Sprintf("validate: failed to register contract schema: %v", err))
	}
	sch, err := compiler.Compile("atomik_schema_v1.json")
	if err != nil {
		panic(fmt.Sprintf("validate: failed to compile contract schema: %v", err))
	}
	structuralSchema = sch
}

// structuralPass runs the JSON-Schema-equivalent structural check named in
// spec section 6 (atomik_schema_v1.json) and translates every violation
// into a ValidationError. This is the first of the validator's two passes;
// it catches missing fields, wrong JSON types, and out-of-enumeration
// values before any cross-field semantic check runs.
func structuralPass(data []byte) ([]*ValidationError, error) {
	var doc interface{}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return []*ValidationError{{
			Path:    "/",
			Kind:    KindTypeMismatch,
			Message: fmt.Sprintf("document is not valid JSON: %v", err),
		}}, nil
	}

	err := structuralSchema.Validate(doc)
	if err == nil {
		return nil, nil
	}

	valErr, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return nil, err
	}

	var out []*ValidationError
	flattenValidationError(valErr, &out)
	return out, nil
}

// flattenValidationError walks the jsonschema library's nested cause tree
// and emits one ValidationError per leaf cause, the way the teacher's
// contract validator surfaces every schema violation rather than just the
// first.
func flattenValidationError(ve *jsonschema.ValidationError, out *[]*ValidationError) {
	if len(ve.Causes) == 0 {
		*out = append(*out, &ValidationError{
			Path:    "/" + strings.Join(toStringSlice(ve.InstanceLocation), "/"),
			Kind:    classifyJSONSchemaError(ve),
			Message: ve.Error(),
		})
		return
	}
	for _, cause := range ve.Causes {
		flattenValidationError(cause, out)
	}
}

func toStringSlice(loc []string) []string {
	if loc == nil {
		return []string{}
	}
	return loc
}

// classifyJSONSchemaError maps a jsonschema library error message to our
// ErrorKind vocabulary by keyword, since the library itself doesn't
// expose a typed reason code.
func classifyJSONSchemaError(ve *jsonschema.ValidationError) ErrorKind {
	msg := ve.Error()
	switch {
	case strings.Contains(msg, "missing properties"):
		return KindMissingField
	case strings.Contains(msg, "enum"):
		return KindEnumViolation
	case strings.Contains(msg, "minimum") || strings.Contains(msg, "maximum"):
		return KindOutOfRange
	case strings.Contains(msg, "pattern"):
		return KindIdentifierIllegal
	default:
		return KindTypeMismatch
	}
}
