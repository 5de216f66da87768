package repopath

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathCanonicalExamples(t *testing.T) {
	m := NewDefaultMapper()

	cases := []struct {
		id   int64
		want string
	}{
		{0, "00/00/00/00"},
		{1, "00/00/00/01"},
		{62, "00/00/00/62"},
		{99, "00/00/00/99"},
		{100, "00/00/01/00"},
		{156399, "00/15/63/99"},
		{1563099, "01/56/30/99"},
		{7182480, "07/18/24/80"},
		{99999999, "99/99/99/99"},
	}
	for _, c := range cases {
		got, err := m.Path(c.id)
		require.NoError(t, err)
		assert.Equal(t, c.want, got, "id %d", c.id)
	}
}

func TestPathGrowsBeyondDefaultGroups(t *testing.T) {
	m := NewDefaultMapper()

	// 9 digits no longer fit 4 groups; a 5th group appears and the
	// leading group takes the padding.
	got, err := m.Path(100000000)
	require.NoError(t, err)
	assert.Equal(t, "01/00/00/00/00", got)

	got, err = m.Path(123456789)
	require.NoError(t, err)
	assert.Equal(t, "01/23/45/67/89", got)

	// 11 digits round up to 6 groups.
	got, err = m.Path(12345678901)
	require.NoError(t, err)
	assert.Equal(t, "01/23/45/67/89/01", got)
}

func TestPathKeepsEveryDigit(t *testing.T) {
	m := NewDefaultMapper()

	// 156399 and 1563099 differ by an interior zero; dropping a digit
	// while padding would collapse them onto the same path.
	a, err := m.Path(156399)
	require.NoError(t, err)
	b, err := m.Path(1563099)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)

	back, err := m.Identifier(b)
	require.NoError(t, err)
	assert.Equal(t, int64(1563099), back)
}

func TestPathRejectsNegativeIdentifier(t *testing.T) {
	m := NewDefaultMapper()
	_, err := m.Path(-5)
	assert.ErrorIs(t, err, ErrInvalidIdentifier)
}

func TestPathFixedWidthGroups(t *testing.T) {
	m := NewDefaultMapper()
	for _, id := range []int64{0, 1, 9, 10, 99, 100, 999, 12345, 99999999, 100000000, 9223372036854775807} {
		p, err := m.Path(id)
		require.NoError(t, err)
		for _, segment := range strings.Split(p, "/") {
			assert.Len(t, segment, DefaultGroupWidth, "path %q for id %d", p, id)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	m := NewDefaultMapper()
	ids := []int64{
		0, 1, 7, 62, 99, 100, 101, 1000, 9999, 10000,
		1563099, 7182480, 99999999,
		100000000, 123456789, 12345678901,
		9223372036854775807, // max int64
	}
	for _, id := range ids {
		p, err := m.Path(id)
		require.NoError(t, err)
		back, err := m.Identifier(p)
		require.NoError(t, err)
		assert.Equal(t, id, back, "path %q", p)
	}
}

func TestInjectivity(t *testing.T) {
	m := NewDefaultMapper()
	seen := make(map[string]int64)
	for id := int64(0); id < 20000; id++ {
		p, err := m.Path(id)
		require.NoError(t, err)
		if prev, ok := seen[p]; ok {
			t.Fatalf("ids %d and %d both map to %q", prev, id, p)
		}
		seen[p] = id
	}
}

func TestIdentifierRejectsMalformedPaths(t *testing.T) {
	m := NewDefaultMapper()

	bad := []string{
		"",
		"ab/cd/ef/gh",
		"00/00/00/0a",
		"0/00/00/00",
		"000/00/00/00",
		"00//00/00",
		"00/00/00/00/",
		"00.00.00.00",
		"92/23/37/20/36/85/47/75/80/80", // past max int64
	}
	for _, p := range bad {
		_, err := m.Identifier(p)
		assert.ErrorIs(t, err, ErrMalformedPath, "path %q", p)
	}
}

func TestIdentifierDiscardsLeadingZeros(t *testing.T) {
	m := NewDefaultMapper()

	id, err := m.Identifier("00/00/00/00")
	require.NoError(t, err)
	assert.Equal(t, int64(0), id)

	id, err = m.Identifier("00/00/00/00/01")
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
}

func TestNewMapperValidation(t *testing.T) {
	_, err := NewMapper(0, 4)
	assert.Error(t, err)
	_, err = NewMapper(2, 0)
	assert.Error(t, err)

	m, err := NewMapper(3, 2)
	require.NoError(t, err)
	p, err := m.Path(1)
	require.NoError(t, err)
	assert.Equal(t, "000/001", p)
	back, err := m.Identifier(p)
	require.NoError(t, err)
	assert.Equal(t, int64(1), back)
}
