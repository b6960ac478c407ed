package schema

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSchemaBodySortedFieldNames(t *testing.T) {
	body := SchemaBody{
		DeltaFields: map[string]DeltaField{
			"zeta_delta":    {Width: 8},
			"alpha_delta":   {Width: 16},
			"middle_delta":  {Width: 32},
		},
	}

	require.Equal(t, []string{"alpha_delta", "middle_delta", "zeta_delta"}, body.SortedFieldNames())
}

func TestSchemaIdentity(t *testing.T) {
	s := &Schema{Catalogue: Catalogue{Vertical: VerticalSystem, Field: "Terminal", Object: "TerminalIO"}}
	v, f, o := s.Identity()
	require.Equal(t, "System", v)
	require.Equal(t, "Terminal", f)
	require.Equal(t, "TerminalIO", o)
}

func TestParseRawDistinguishesMissingSections(t *testing.T) {
	doc, err := ParseRaw([]byte(`{"catalogue":{"vertical":"System"},"schema":{"delta_fields":{}}}`))
	require.NoError(t, err)
	require.NotNil(t, doc.Catalogue)
	require.NotNil(t, doc.Schema)
	require.Nil(t, doc.Hardware)
	require.False(t, doc.HasHardware)
}

func TestParseRawWithHardware(t *testing.T) {
	doc, err := ParseRaw([]byte(`{"catalogue":{},"schema":{},"hardware":{"clock_name":"clk"}}`))
	require.NoError(t, err)
	require.True(t, doc.HasHardware)
	require.NotNil(t, doc.Hardware)
}
