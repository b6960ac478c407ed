package emit

import "github.com/MatthewHRockwell/atomik-sub001/internal/schema"

// PrimaryField returns the schema's first declared delta field in source
// order. ATOMiK emits one primitive per schema (spec section 1: "it emits
// one primitive per schema with a fixed operation vocabulary"); the
// primitive's generic accumulate/reconstruct/rollback routines operate on
// this field, while every other declared field additionally gets its own
// field-qualified routines (accumulate_<field>, reconstruct_<field>, ...).
func PrimaryField(s *schema.Schema) (name string, field schema.DeltaField) {
	if len(s.Body.OrderedFields) > 0 {
		name = s.Body.OrderedFields[0]
		return name, s.Body.DeltaFields[name]
	}
	// canonicalize always populates OrderedFields from a validated schema,
	// but fall back to sorted order defensively for hand-built schemas in
	// tests.
	names := s.Body.SortedFieldNames()
	name = names[0]
	return name, s.Body.DeltaFields[name]
}

// SecondaryFields returns every declared field except the primary one, in
// deterministic (sorted) order.
func SecondaryFields(s *schema.Schema) []string {
	primary, _ := PrimaryField(s)
	var out []string
	for _, name := range s.Body.SortedFieldNames() {
		if name != primary {
			out = append(out, name)
		}
	}
	return out
}
