package emit

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MatthewHRockwell/atomik-sub001/internal/schema"
)

func twoFieldSchema() *schema.Schema {
	return &schema.Schema{
		Catalogue: schema.Catalogue{Vertical: schema.VerticalSystem, Field: "Terminal", Object: "TerminalIO", Version: "1.0.0"},
		Body: schema.SchemaBody{
			DeltaFields: map[string]schema.DeltaField{
				"command_delta": {Kind: schema.KindDeltaStream, Width: 32, Encoding: schema.EncodingRaw, Compression: schema.CompressionNone},
				"status_delta":  {Kind: schema.KindBitmaskDelta, Width: 16, Encoding: schema.EncodingRaw, Compression: schema.CompressionNone},
			},
			OrderedFields: []string{"command_delta", "status_delta"},
			Operations: schema.Operations{
				Accumulate:  schema.Op{Enabled: true, LatencyCycles: 1},
				Reconstruct: &schema.Op{Enabled: true, LatencyCycles: 1},
				Rollback:    &schema.RollbackOp{Op: schema.Op{Enabled: true, LatencyCycles: 1}, HistoryDepth: 4},
			},
		},
	}
}

func TestPrimaryFieldUsesSourceOrder(t *testing.T) {
	s := twoFieldSchema()
	name, field := PrimaryField(s)
	require.Equal(t, "command_delta", name)
	require.Equal(t, 32, field.Width)
}

func TestSecondaryFieldsExcludesPrimary(t *testing.T) {
	s := twoFieldSchema()
	secondary := SecondaryFields(s)
	require.Equal(t, []string{"status_delta"}, secondary)
}
