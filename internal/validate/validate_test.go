package validate

import (
	"encoding/json"
	"testing"

	"github.com/MatthewHRockwell/atomik-sub001/internal/schema"
	"github.com/stretchr/testify/require"
)

const scenarioA = `{
  "catalogue": {"vertical":"System","field":"Terminal","object":"TerminalIO","version":"1.0.0"},
  "schema": {
    "delta_fields": {"command_delta": {"kind":"parameter_delta","width":64}},
    "operations": {
      "accumulate": {"enabled": true, "latency_cycles": 1},
      "reconstruct": {"enabled": true, "latency_cycles": 1}
    }
  }
}`

func TestValidateScenarioA(t *testing.T) {
	s, errs := Validate([]byte(scenarioA))
	require.Empty(t, errs)
	require.NotNil(t, s)
	require.Equal(t, "TerminalIO", s.Catalogue.Object)
	require.True(t, s.Body.Operations.Accumulate.Enabled)
	require.Equal(t, 1, s.Body.Operations.Accumulate.LatencyCycles)
	require.Contains(t, s.Body.DeltaFields, "command_delta")
	require.Equal(t, schema.EncodingRaw, s.Body.DeltaFields["command_delta"].Encoding)
}

func TestValidateRejectsAccumulateDisabled(t *testing.T) {
	raw := `{
	  "catalogue": {"vertical":"System","field":"Terminal","object":"TerminalIO","version":"1.0.0"},
	  "schema": {
	    "delta_fields": {"d": {"kind":"parameter_delta","width":64}},
	    "operations": {"accumulate": {"enabled": false}}
	  }
	}`
	_, errs := Validate([]byte(raw))
	require.True(t, errs.HasKind(KindCrossFieldMismatch))
}

func TestValidateRejectsRollbackWithoutDepth(t *testing.T) {
	raw := `{
	  "catalogue": {"vertical":"System","field":"Terminal","object":"TerminalIO","version":"1.0.0"},
	  "schema": {
	    "delta_fields": {"d": {"kind":"parameter_delta","width":64}},
	    "operations": {"accumulate": {"enabled": true}, "rollback": {"enabled": true}}
	  }
	}`
	_, errs := Validate([]byte(raw))
	require.True(t, errs.HasKind(KindCrossFieldMismatch))
}

func TestValidateScenarioFWidthMismatch(t *testing.T) {
	raw := `{
	  "catalogue": {"vertical":"System","field":"Terminal","object":"TerminalIO","version":"1.0.0"},
	  "schema": {
	    "delta_fields": {
	      "a": {"kind":"parameter_delta","width":64},
	      "b": {"kind":"parameter_delta","width":128}
	    },
	    "operations": {"accumulate": {"enabled": true}}
	  },
	  "hardware": {"rtl_params": {"DATA_WIDTH": 64}}
	}`
	s, errs := Validate([]byte(raw))
	require.Nil(t, s)
	require.Len(t, errs, 1)
	require.Equal(t, KindCrossFieldMismatch, errs[0].Kind)
	require.Equal(t, "/schema/delta_fields/b/width", errs[0].Path)
}

func TestValidateCanonicalizationIsIdempotent(t *testing.T) {
	s1, errs := Validate([]byte(scenarioA))
	require.Empty(t, errs)

	reencoded, err := json.Marshal(map[string]interface{}{
		"catalogue": s1.Catalogue,
		"schema": map[string]interface{}{
			"delta_fields": s1.Body.DeltaFields,
			"operations":   s1.Body.Operations,
		},
	})
	require.NoError(t, err)

	s2, errs2 := Validate(reencoded)
	require.Empty(t, errs2)
	require.Equal(t, s1.Body.SortedFieldNames(), s2.Body.SortedFieldNames())
}

func TestValidateRejectsBadSemver(t *testing.T) {
	raw := `{
	  "catalogue": {"vertical":"System","field":"Terminal","object":"TerminalIO","version":"not-a-version"},
	  "schema": {
	    "delta_fields": {"d": {"kind":"parameter_delta","width":64}},
	    "operations": {"accumulate": {"enabled": true}}
	  }
	}`
	_, errs := Validate([]byte(raw))
	require.NotEmpty(t, errs)
}
