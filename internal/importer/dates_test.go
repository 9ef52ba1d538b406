package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDateExplicitFormats(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"2025-01-15", "2025-01-15"},
		{"15/01/2025", "2025-01-15"},
		{"15-01-2025", "2025-01-15"},
		{"2025/01/15", "2025-01-15"},
		// Unambiguous month-first falls through day-first and still lands
		{"01/25/2025", "2025-01-25"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ParseDate(tt.input)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.Format("2006-01-02"))
		})
	}
}

func TestParseDateMonthYear(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Jul 2026", "2026-07-01"},
		{"January 2025", "2025-01-01"},
		{"Jan 26", "2026-01-01"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ParseDate(tt.input)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.Format("2006-01-02"))
		})
	}
}

func TestParseDateSerial(t *testing.T) {
	got := ParseDate("46022")
	require.NotNil(t, got)
	assert.GreaterOrEqual(t, got.Year(), 2020)
	assert.Less(t, got.Year(), 2030)

	// Below the minimum valid serial
	assert.Nil(t, ParseDate("25000"))
	// The floor itself is accepted
	floor := ParseDate("25569")
	require.NotNil(t, floor)
	assert.Equal(t, "1970-01-01", floor.Format("2006-01-02"))
}

func TestParseDateFreeText(t *testing.T) {
	for _, input := range []string{"15 January 2025", "January 15, 2025", "15 Jan 2025"} {
		got := ParseDate(input)
		require.NotNil(t, got, input)
		assert.Equal(t, "2025-01-15", got.Format("2006-01-02"))
	}
}

func TestParseDateInvalid(t *testing.T) {
	invalid := []string{
		"",
		"   ",
		"2025-02-29", // not a leap year
		"32/01/2025", // day rollover
		"2025-13-01", // month 13
		"not a date",
	}
	for _, input := range invalid {
		assert.Nil(t, ParseDate(input), "input %q", input)
	}

	// Leap year Feb 29 is real
	leap := ParseDate("2024-02-29")
	require.NotNil(t, leap)
	assert.Equal(t, "2024-02-29", leap.Format("2006-01-02"))
}
