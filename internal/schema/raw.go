package schema

import "encoding/json"

// RawDocument is the loosely-typed decode of a schema file: just enough
// structure for the validator to walk field-by-field and report every
// violation, rather than failing fast on the first json.Unmarshal type
// mismatch. The validator is the only consumer of this type.
type RawDocument struct {
	Catalogue map[string]json.RawMessage `json:"catalogue"`
	Schema    map[string]json.RawMessage `json:"schema"`
	Hardware  map[string]json.RawMessage `json:"hardware"`

	HasHardware bool `json:"-"`
}

// ParseRaw decodes a schema file's top level into a RawDocument without
// committing to field types, so the validator can distinguish "missing"
// from "wrong type" for every path.
func ParseRaw(data []byte) (*RawDocument, error) {
	var envelope struct {
		Catalogue json.RawMessage `json:"catalogue"`
		Schema    json.RawMessage `json:"schema"`
		Hardware  json.RawMessage `json:"hardware"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, err
	}

	doc := &RawDocument{}

	if envelope.Catalogue != nil {
		if err := json.Unmarshal(envelope.Catalogue, &doc.Catalogue); err != nil {
			doc.Catalogue = nil
		}
	}
	if envelope.Schema != nil {
		if err := json.Unmarshal(envelope.Schema, &doc.Schema); err != nil {
			doc.Schema = nil
		}
	}
	if envelope.Hardware != nil {
		doc.HasHardware = true
		if err := json.Unmarshal(envelope.Hardware, &doc.Hardware); err != nil {
			doc.Hardware = nil
		}
	}

	return doc, nil
}
