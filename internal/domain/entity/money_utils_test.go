package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"

	errs "github.com/kiarash-asgari/storefront-core/internal/domain/error"
)

func TestParseAmount(t *testing.T) {
	t.Run("should parse valid amounts to cents", func(t *testing.T) {
		testCases := []struct {
			input    string
			expected int64
		}{
			{"10", 1000},
			{"10.5", 1050},
			{"10.50", 1050},
			{"0.01", 1},
			{"0", 0},
			{"  5.00  ", 500},
			{"12345.67", 1234567},
		}

		for _, tc := range testCases {
			cents, err := ParseAmount(tc.input)
			assert.NoError(t, err, "input %q", tc.input)
			assert.Equal(t, tc.expected, cents, "input %q", tc.input)
		}
	})

	t.Run("should reject invalid amounts", func(t *testing.T) {
		testCases := []string{
			"",
			"   ",
			"-1",
			"-0.01",
			"1.005",
			"1.2.3",
			"abc",
			"1.ab",
		}

		for _, input := range testCases {
			_, err := ParseAmount(input)
			assert.Error(t, err, "input %q", input)
			assert.ErrorIs(t, err, errs.ErrInvalidAmount, "input %q", input)
		}
	})
}

func TestFormatCents(t *testing.T) {
	testCases := []struct {
		cents    int64
		expected string
	}{
		{1015, "10.15"},
		{1050, "10.50"},
		{0, "0.00"},
		{5, "0.05"},
		{-50, "-0.50"},
		{-1234567, "-12345.67"},
		{100, "1.00"},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, FormatCents(tc.cents), "cents %d", tc.cents)
	}
}

func TestCommissionCents(t *testing.T) {
	t.Run("should floor to whole cents", func(t *testing.T) {
		// 999 * 0.05 = 49.95 -> 49
		assert.Equal(t, int64(49), CommissionCents(999, 0.05))
		// 1000 * 0.05 = 50 exactly
		assert.Equal(t, int64(50), CommissionCents(1000, 0.05))
		// 10 * 0.05 = 0.5 -> 0
		assert.Equal(t, int64(0), CommissionCents(10, 0.05))
	})

	t.Run("should return zero for non-positive inputs", func(t *testing.T) {
		assert.Equal(t, int64(0), CommissionCents(0, 0.05))
		assert.Equal(t, int64(0), CommissionCents(-1000, 0.05))
		assert.Equal(t, int64(0), CommissionCents(1000, 0))
		assert.Equal(t, int64(0), CommissionCents(1000, -0.05))
	})
}
