package tags

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestImpactOrdering(t *testing.T) {
	require.Less(t, ImpactMinimal, ImpactLow)
	require.Less(t, ImpactLow, ImpactMedium)
	require.Less(t, ImpactMedium, ImpactHigh)
	require.Less(t, ImpactHigh, ImpactCritical)
}

func TestParseImpact(t *testing.T) {
	for _, l := range Levels {
		got, err := ParseImpact(l.String())
		require.NoError(t, err)
		require.Equal(t, l, got)
	}
	got, err := ParseImpact(" HIGH ")
	require.NoError(t, err)
	require.Equal(t, ImpactHigh, got)

	_, err = ParseImpact("severe")
	require.Error(t, err)
}

func TestMaxOrderIndependent(t *testing.T) {
	perms := [][]ImpactLevel{
		{ImpactLow, ImpactHigh, ImpactMedium},
		{ImpactHigh, ImpactMedium, ImpactLow},
		{ImpactMedium, ImpactLow, ImpactHigh, ImpactHigh},
	}
	for _, p := range perms {
		require.Equal(t, ImpactHigh, Max(p...))
	}
	require.Equal(t, ImpactUnset, Max())
}

func TestImpactJSON(t *testing.T) {
	b, err := json.Marshal(map[string]ImpactLevel{"impact": ImpactCritical})
	require.NoError(t, err)
	require.JSONEq(t, `{"impact":"critical"}`, string(b))

	var out struct {
		Impact ImpactLevel `json:"impact"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"impact":"low"}`), &out))
	require.Equal(t, ImpactLow, out.Impact)
}

func TestHierarchicalTagRoundTrip(t *testing.T) {
	tag := FromPath([]string{"a", "b"})
	require.Equal(t, "a.b", tag.String())
	require.Equal(t, []string{"a", "b"}, Parse(tag.String()).Levels())

	deep := FromPath([]string{"source", "core", "utils", "extra"})
	require.Equal(t, "source.core.utils", deep.String())
	require.Equal(t, deep, Parse(deep.String()))

	require.True(t, Parse("").IsZero())
	require.Equal(t, "", HierarchicalTag{}.String())
}
