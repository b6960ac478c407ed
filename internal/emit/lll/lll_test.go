package lll

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MatthewHRockwell/atomik-sub001/internal/namespace"
	"github.com/MatthewHRockwell/atomik-sub001/internal/schema"
)

func bitmaskSchema() *schema.Schema {
	return &schema.Schema{
		Catalogue: schema.Catalogue{Vertical: schema.VerticalStorage, Field: "Cache", Object: "LineState", Version: "1.0.0"},
		Body: schema.SchemaBody{
			DeltaFields: map[string]schema.DeltaField{
				"dirty_delta": {Kind: schema.KindBitmaskDelta, Width: 32, Encoding: schema.EncodingRaw, Compression: schema.CompressionNone},
			},
			OrderedFields: []string{"dirty_delta"},
			Operations: schema.Operations{
				Accumulate: schema.Op{Enabled: true, LatencyCycles: 1},
				Rollback:   &schema.RollbackOp{Op: schema.Op{Enabled: true, LatencyCycles: 1}, HistoryDepth: 4},
			},
		},
	}
}

func TestEmitProducesHeaderImplAndMakefile(t *testing.T) {
	s := bitmaskSchema()
	nm, err := namespace.Map(namespace.Catalogue{Vertical: string(s.Catalogue.Vertical), Field: s.Catalogue.Field, Object: s.Catalogue.Object})
	require.NoError(t, err)

	dir := t.TempDir()
	descs, err := New().Emit(s, nm, dir)
	require.NoError(t, err)
	require.Len(t, descs, 3)

	header, err := os.ReadFile(filepath.Join(dir, "lll", nm.Get(namespace.TargetLLL).FilePath))
	require.NoError(t, err)
	require.Contains(t, string(header), "typedef struct line_state line_state;")
	require.Contains(t, string(header), "line_state_create")

	implPath := filepath.Join(dir, "lll", "root", "storage", "cache", "line_state.c")
	impl, err := os.ReadFile(implPath)
	require.NoError(t, err)
	require.Contains(t, string(impl), "accumulator_dirty_delta ^= delta;")
}

func TestHeaderDeclaresIsZeroPredicate(t *testing.T) {
	s := bitmaskSchema()
	nm, err := namespace.Map(namespace.Catalogue{Vertical: string(s.Catalogue.Vertical), Field: s.Catalogue.Field, Object: s.Catalogue.Object})
	require.NoError(t, err)

	dir := t.TempDir()
	_, err = New().Emit(s, nm, dir)
	require.NoError(t, err)

	header, err := os.ReadFile(filepath.Join(dir, "lll", nm.Get(namespace.TargetLLL).FilePath))
	require.NoError(t, err)
	require.Contains(t, string(header), "#include <stdbool.h>")
	require.Contains(t, string(header), "bool line_state_is_zero(const line_state *self);")

	implPath := filepath.Join(dir, "lll", "root", "storage", "cache", "line_state.c")
	impl, err := os.ReadFile(implPath)
	require.NoError(t, err)
	require.Contains(t, string(impl), "bool line_state_is_zero(const line_state *self) {")
	require.Contains(t, string(impl), "return self->accumulator_dirty_delta == 0;")
}

func TestRollbackReturnsCountNotAccumulator(t *testing.T) {
	s := bitmaskSchema()
	nm, err := namespace.Map(namespace.Catalogue{Vertical: string(s.Catalogue.Vertical), Field: s.Catalogue.Field, Object: s.Catalogue.Object})
	require.NoError(t, err)

	dir := t.TempDir()
	_, err = New().Emit(s, nm, dir)
	require.NoError(t, err)

	header, err := os.ReadFile(filepath.Join(dir, "lll", nm.Get(namespace.TargetLLL).FilePath))
	require.NoError(t, err)
	require.Contains(t, string(header), "size_t line_state_rollback_dirty_delta(line_state *self, size_t n);")
	require.Contains(t, string(header), "size_t line_state_rollback(line_state *self, size_t n);")

	implPath := filepath.Join(dir, "lll", "root", "storage", "cache", "line_state.c")
	impl, err := os.ReadFile(implPath)
	require.NoError(t, err)
	require.Contains(t, string(impl), "size_t line_state_rollback_dirty_delta(line_state *self, size_t n) {")
	require.Contains(t, string(impl), "rolled_back++;")
	require.Contains(t, string(impl), "return rolled_back;")
}
