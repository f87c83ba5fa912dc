package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCents(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"5000000", 500_000_000},
		{"5,000,000", 500_000_000},
		{"$5,000,000", 500_000_000},
		{"$5M", 500_000_000},
		{"5m", 500_000_000},
		{"$1.5M", 150_000_000},
		{"1.5m", 150_000_000},
		{"750K", 75_000_000},
		{"$750k", 75_000_000},
		{"$0.5M", 50_000_000},
		{"0", 0},
		{"$12.34", 1234},
		{"12.3", 1230},
		{" $2,500 ", 250_000},
		{"$1.255M", 125_500_000},
	}
	for _, tc := range cases {
		got, err := ParseCents(tc.in)
		require.NoError(t, err, "input %q", tc.in)
		assert.Equal(t, tc.want, got, "input %q", tc.in)
	}
}

func TestParseCentsRejects(t *testing.T) {
	bad := []string{
		"", "$", "M", "$M", "abc", "-5", "$-5M",
		"1,00,000",  // malformed grouping
		"1,0000",    // group too long
		",000",      // leading separator
		"12.345",    // sub-cent precision without suffix
		"1.234567K", // sub-cent precision with suffix
		"5..5",
		"5.",
	}
	for _, in := range bad {
		_, err := ParseCents(in)
		assert.ErrorIs(t, err, ErrInvalidAmount, "input %q", in)
	}
}

func TestParseCentsOverflow(t *testing.T) {
	// Amounts beyond int64 cents must error instead of wrapping to a
	// small positive value that would pass validation downstream.
	bad := []string{
		"368934881475M",
		"92233720369M",
		"92233720368548K",
		"9223372036854775808",
		"1.9223372036854775807M",
	}
	for _, in := range bad {
		got, err := ParseCents(in)
		assert.ErrorIs(t, err, ErrInvalidAmount, "input %q parsed to %d", in, got)
	}

	// The largest suffixed amount that still fits is accepted.
	got, err := ParseCents("92233720368M")
	require.NoError(t, err)
	assert.Equal(t, int64(9_223_372_036_800_000_000), got)
}

func TestFormatCents(t *testing.T) {
	assert.Equal(t, "$5,000,000", FormatCents(500_000_000))
	assert.Equal(t, "$750,000", FormatCents(75_000_000))
	assert.Equal(t, "$0", FormatCents(0))
	assert.Equal(t, "$12.34", FormatCents(1234))
	assert.Equal(t, "$1,500,000", FormatCents(150_000_000))
	assert.Equal(t, "$999", FormatCents(99_900))
}

func TestRoundTrip(t *testing.T) {
	for _, cents := range []int64{0, 99, 1234, 99_900, 75_000_000, 150_000_000, 500_000_000, 123_456_789} {
		got, err := ParseCents(FormatCents(cents))
		require.NoError(t, err)
		assert.Equal(t, cents, got)
	}
}
