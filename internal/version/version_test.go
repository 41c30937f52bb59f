package version

import (
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/repotag/internal/errors"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"v10.0", "v10.0.0"},
		{"10.0.1", "v10.0.1"},
		{"10", "v10.0.0"},
		{"v1.2.3-beta.1", "v1.2.3-beta.1"},
		{"10.0rc1", "v10.0.0-rc1"},
		{" v9.53 ", "v9.53.0"},
		{"10.05", "v10.5.0"},
		{"1.2.3.4", "v1.2.3.4"},
		{"1.2.3.0", "v1.2.3"},
		{"1.2.3.4rc1", "v1.2.3.4-rc1"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			v, err := Parse(tt.in)
			require.NoError(t, err)
			require.Equal(t, tt.want, v.String())
			require.Equal(t, tt.in, v.Raw())
		})
	}
}

func TestParseInvalid(t *testing.T) {
	for _, in := range []string{"", "v", "latest", "main", "1..2", "1.2.3.x"} {
		_, err := Parse(in)
		require.Error(t, err, in)
		require.True(t, errors.IsCategory(err, errors.CategoryVersionParse), in)
	}
}

func TestPrereleaseOrdersBelowRelease(t *testing.T) {
	pre, err := Parse("v10.0.0-rc1")
	require.NoError(t, err)
	rel, err := Parse("v10.0.0")
	require.NoError(t, err)
	require.True(t, pre.Prerelease())
	require.Equal(t, -1, pre.Compare(rel))
	require.Equal(t, "v10", rel.Major())
}

func TestSatisfies(t *testing.T) {
	tests := []struct {
		version string
		rng     string
		want    bool
	}{
		{"v10.5", ">=10.0,<11.0", true},
		{"v11.0", ">=10.0,<11.0", false},
		{"v9.9", ">=10.0,<11.0", false},
		{"10.0", ">10.0", false},
		{"10.0.1", ">10.0", true},
		{"10.0", "<=10.0", true},
		{"10.0", "==10.0.0", true},
		{"10.0", "10.0", true},
		{"10.1", "10.0", false},
		{"v10.0.0-rc1", ">=10.0", false},
		{"v9.0", " >= 9.0 , < 10.0 ", true},
		{"10.05", ">=10.0,<11.0", true},
		{"10.05", "==10.5", true},
		{"1.2.3.4", ">1.2.3,<1.2.4", true},
		{"1.2.3.4", "==1.2.3", false},
		{"1.2.3.0", "==1.2.3", true},
		{"1.2.3.4rc1", "<1.2.3.4", true},
	}
	for _, tt := range tests {
		t.Run(tt.version+" "+tt.rng, func(t *testing.T) {
			got, err := Satisfies(tt.version, tt.rng)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
			require.Equal(t, tt.want, MatchesRange(tt.version, tt.rng))
		})
	}
}

func TestSatisfiesErrors(t *testing.T) {
	_, err := Satisfies("nope", ">=1.0")
	require.Error(t, err)
	_, err = Satisfies("1.0", ">=1.0,")
	require.Error(t, err)
	_, err = Satisfies("1.0", ">=x")
	require.Error(t, err)
	require.False(t, MatchesRange("nope", ">=1.0"))
}

func TestRangeMonotone(t *testing.T) {
	r, err := ParseRange(">=10.0")
	require.NoError(t, err)
	ordered := []string{"v9.9", "v10.0", "v10.0.1", "v10.5", "v11.0", "v100.0"}
	satisfied := false
	for _, s := range ordered {
		v, err := Parse(s)
		require.NoError(t, err)
		if satisfied {
			require.True(t, r.Contains(v), "%s must stay inside once a lower version satisfied", s)
		}
		satisfied = r.Contains(v)
	}
	require.True(t, satisfied)
}

func TestExtractVersionAndRange(t *testing.T) {
	label, rng := ExtractVersionAndRange("v10.0+")
	require.Equal(t, "v10.0", label)
	require.Equal(t, ">=10.0", rng)

	label, rng = ExtractVersionAndRange("v9.0")
	require.Equal(t, "v9.0", label)
	require.Empty(t, rng)
}
