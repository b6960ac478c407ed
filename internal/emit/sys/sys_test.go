package sys

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MatthewHRockwell/atomik-sub001/internal/namespace"
	"github.com/MatthewHRockwell/atomik-sub001/internal/schema"
)

func wideFieldSchema() *schema.Schema {
	return &schema.Schema{
		Catalogue: schema.Catalogue{Vertical: schema.VerticalSensor, Field: "Imu", Object: "IMUFusion", Version: "2.1.0"},
		Body: schema.SchemaBody{
			DeltaFields: map[string]schema.DeltaField{
				"reading_delta": {Kind: schema.KindDeltaStream, Width: 256, Encoding: schema.EncodingRaw, Compression: schema.CompressionNone},
			},
			OrderedFields: []string{"reading_delta"},
			Operations: schema.Operations{
				Accumulate:  schema.Op{Enabled: true, LatencyCycles: 1},
				Reconstruct: &schema.Op{Enabled: true, LatencyCycles: 1},
			},
		},
	}
}

func TestEmitUsesLimbArrayFor256BitFields(t *testing.T) {
	s := wideFieldSchema()
	nm, err := namespace.Map(namespace.Catalogue{Vertical: string(s.Catalogue.Vertical), Field: s.Catalogue.Field, Object: s.Catalogue.Object})
	require.NoError(t, err)

	dir := t.TempDir()
	descs, err := New().Emit(s, nm, dir)
	require.NoError(t, err)
	require.Len(t, descs, 2)

	content, err := os.ReadFile(filepath.Join(dir, "sys", nm.Get(namespace.TargetSYS).FilePath))
	require.NoError(t, err)
	body := string(content)

	require.Contains(t, body, "pub struct IMUFusion {")
	require.Contains(t, body, "[u64; 4]")
	require.Contains(t, body, "pub fn accumulate(&mut self")
}

func TestEmitWritesACargoManifestWithDevDependency(t *testing.T) {
	s := wideFieldSchema()
	nm, err := namespace.Map(namespace.Catalogue{Vertical: string(s.Catalogue.Vertical), Field: s.Catalogue.Field, Object: s.Catalogue.Object})
	require.NoError(t, err)

	dir := t.TempDir()
	_, err = New().Emit(s, nm, dir)
	require.NoError(t, err)

	manifestPath := filepath.Join(dir, "sys", "root", "sensor", "imu", "Cargo.toml")
	content, err := os.ReadFile(manifestPath)
	require.NoError(t, err)
	body := string(content)

	require.Contains(t, body, "name = \"imu_fusion\"")
	require.Contains(t, body, "[dev-dependencies]")
}

func TestRollbackReturnsCountNotAccumulator(t *testing.T) {
	s := &schema.Schema{
		Catalogue: schema.Catalogue{Vertical: schema.VerticalSensor, Field: "Imu", Object: "RollbackDemo", Version: "1.0.0"},
		Body: schema.SchemaBody{
			DeltaFields: map[string]schema.DeltaField{
				"reading_delta": {Kind: schema.KindDeltaStream, Width: 32, Encoding: schema.EncodingRaw, Compression: schema.CompressionNone},
			},
			OrderedFields: []string{"reading_delta"},
			Operations: schema.Operations{
				Accumulate: schema.Op{Enabled: true, LatencyCycles: 1},
				Rollback:   &schema.RollbackOp{Op: schema.Op{Enabled: true, LatencyCycles: 1}, HistoryDepth: 4},
			},
		},
	}
	nm, err := namespace.Map(namespace.Catalogue{Vertical: string(s.Catalogue.Vertical), Field: s.Catalogue.Field, Object: s.Catalogue.Object})
	require.NoError(t, err)

	dir := t.TempDir()
	_, err = New().Emit(s, nm, dir)
	require.NoError(t, err)

	content, err := os.ReadFile(filepath.Join(dir, "sys", nm.Get(namespace.TargetSYS).FilePath))
	require.NoError(t, err)
	body := string(content)

	require.Contains(t, body, "pub fn rollback_reading_delta(&mut self, n: usize) -> usize {")
	require.Contains(t, body, "pub fn rollback(&mut self, n: usize) -> usize {")
	require.Contains(t, body, "rolled_back += 1;")
	require.Contains(t, body, "rolled_back\n    }")
}

func TestIntTypePicksNarrowestNativeWidth(t *testing.T) {
	require.Equal(t, "u8", intType(8))
	require.Equal(t, "u32", intType(32))
	require.Equal(t, "u128", intType(128))
	require.Equal(t, "[u64; 4]", intType(256))
}
