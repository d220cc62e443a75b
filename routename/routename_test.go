package routename

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	cases := []struct {
		raw  string
		want RouteName
	}{
		{"6", RouteName{Number: 6}},
		{"19", RouteName{Number: 19}},
		{"3G", RouteName{Number: 3, Suffix: "G"}},
		{"N1", RouteName{Prefix: "N", Number: 1}},
		{"N3B", RouteName{Prefix: "N", Number: 3, Suffix: "B"}},
		{"n3B", RouteName{Prefix: "N", Number: 3, Suffix: "B"}},
		{"56 DOBROVA - ŠOLSKA", RouteName{Number: 56, TrailingText: " DOBROVA - ŠOLSKA"}},
		{"76(GROS.)", RouteName{Number: 76, TrailingText: "(GROS.)"}},
		{"3B NEKAJ NEKAJ", RouteName{Number: 3, TrailingText: "B NEKAJ NEKAJ"}},
	}

	for _, c := range cases {
		t.Run(c.raw, func(t *testing.T) {
			got, err := Parse(c.raw)
			require.NoError(t, err)
			assert.Equal(t, c.want, got)
		})
	}
}

func TestParseErrors(t *testing.T) {
	for _, raw := range []string{"", "N", "ABC", "N B"} {
		t.Run(raw, func(t *testing.T) {
			_, err := Parse(raw)
			require.Error(t, err)
			var parseErr *ParseError
			require.ErrorAs(t, err, &parseErr)
			assert.Equal(t, raw, parseErr.Raw)
		})
	}
}

// Formatting a parsed identifier must reproduce a label that reparses to an
// equal identifier.
func TestFormatReparseRoundTrip(t *testing.T) {
	labels := []string{
		"1", "19", "3G", "N1", "N3B", "11B",
		"56 DOBROVA - ŠOLSKA",
		"76(GROS.)",
		"3B NEKAJ NEKAJ",
		"Š1", "N12 ČRNUČE",
	}

	for _, raw := range labels {
		t.Run(raw, func(t *testing.T) {
			first, err := Parse(raw)
			require.NoError(t, err)

			second, err := Parse(first.String())
			require.NoError(t, err)
			assert.Equal(t, first, second)
		})
	}
}

func TestBaseGrouping(t *testing.T) {
	variants := []string{"3", "3G", "N3", "N3B", "3 GROSUPLJE"}
	for _, raw := range variants {
		name, err := Parse(raw)
		require.NoError(t, err)
		assert.Equal(t, BaseRouteName(3), name.Base(), "variant %q", raw)
	}

	other := MustParse("19")
	assert.NotEqual(t, MustParse("3").Base(), other.Base())
}

func TestTextMarshalling(t *testing.T) {
	name := MustParse("N3B")

	text, err := name.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "N3B", string(text))

	var decoded RouteName
	require.NoError(t, decoded.UnmarshalText(text))
	assert.Equal(t, name, decoded)

	var invalid RouteName
	assert.Error(t, invalid.UnmarshalText([]byte("")))
}

func TestParseBase(t *testing.T) {
	base, err := ParseBase("42")
	require.NoError(t, err)
	assert.Equal(t, BaseRouteName(42), base)
	assert.Equal(t, "42", base.String())

	_, err = ParseBase("6B")
	assert.Error(t, err)
}
