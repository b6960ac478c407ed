package hdl

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MatthewHRockwell/atomik-sub001/internal/namespace"
	"github.com/MatthewHRockwell/atomik-sub001/internal/schema"
)

func controlSchema() *schema.Schema {
	width := 32
	return &schema.Schema{
		Catalogue: schema.Catalogue{Vertical: schema.VerticalControl, Field: "Motor", Object: "TorqueDelta", Version: "1.0.0"},
		Body: schema.SchemaBody{
			DeltaFields: map[string]schema.DeltaField{
				"torque_delta": {Kind: schema.KindParameterDelta, Width: width, Encoding: schema.EncodingRaw, Compression: schema.CompressionNone},
			},
			OrderedFields: []string{"torque_delta"},
			Operations: schema.Operations{
				Accumulate:  schema.Op{Enabled: true, LatencyCycles: 1},
				Reconstruct: &schema.Op{Enabled: true, LatencyCycles: 1},
				Rollback:    &schema.RollbackOp{Op: schema.Op{Enabled: true, LatencyCycles: 1}, HistoryDepth: 4},
			},
			Constraints: &schema.Constraints{TargetFrequencyMHz: 100},
		},
		Hardware: &schema.Hardware{RTLParams: &schema.RTLParams{DataWidth: &width}},
	}
}

func TestEmitProducesModuleTestbenchAndConstraints(t *testing.T) {
	s := controlSchema()
	nm, err := namespace.Map(namespace.Catalogue{Vertical: string(s.Catalogue.Vertical), Field: s.Catalogue.Field, Object: s.Catalogue.Object})
	require.NoError(t, err)

	dir := t.TempDir()
	descs, err := New().Emit(s, nm, dir)
	require.NoError(t, err)
	require.Len(t, descs, 3)

	module, err := os.ReadFile(filepath.Join(dir, "hdl", nm.Get(namespace.TargetHDL).FilePath))
	require.NoError(t, err)
	body := string(module)
	require.Contains(t, body, "parameter DATA_WIDTH = 32")
	require.Contains(t, body, "accumulator_zero")
	require.Contains(t, body, "OP_ROLLBACK")
}

func TestDataWidthPrefersRTLParamOverFieldWidth(t *testing.T) {
	s := controlSchema()
	require.Equal(t, 32, dataWidth(s))
}

func TestAddrBitsCoversDepth(t *testing.T) {
	require.Equal(t, 1, addrBits(1))
	require.Equal(t, 2, addrBits(3))
	require.Equal(t, 4, addrBits(9))
}
