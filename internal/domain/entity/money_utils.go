package entity

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	errs "github.com/kiarash-asgari/storefront-core/internal/domain/error"
)

// MaxDecimalPlaces defines the maximum number of decimal places allowed for
// settlement-currency amounts
const MaxDecimalPlaces = 2

// ParseAmount validates a non-negative decimal string and converts it to
// cents. String arithmetic avoids floating point drift:
// "10" -> 1000, "10.5" -> 1050, "10.50" -> 1050.
func ParseAmount(amount string) (int64, error) {
	amount = strings.TrimSpace(amount)
	if len(amount) == 0 {
		return 0, fmt.Errorf("%w: empty value", errs.ErrInvalidAmount)
	}

	if strings.HasPrefix(amount, "-") {
		return 0, fmt.Errorf("%w: negative value", errs.ErrInvalidAmount)
	}

	parts := strings.Split(amount, ".")
	if len(parts) > 2 {
		return 0, fmt.Errorf("%w: invalid number format", errs.ErrInvalidAmount)
	}

	var digits string
	if len(parts) == 1 {
		digits = parts[0] + "00"
	} else {
		switch len(parts[1]) {
		case 0:
			digits = parts[0] + "00"
		case 1:
			digits = parts[0] + parts[1] + "0"
		case 2:
			digits = parts[0] + parts[1]
		default:
			return 0, fmt.Errorf("%w: maximum %d decimal places allowed", errs.ErrInvalidAmount, MaxDecimalPlaces)
		}
	}

	value, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", errs.ErrInvalidAmount, err.Error())
	}

	return value, nil
}

// FormatCents converts a signed cents value to a decimal string with exactly
// two decimal places: 1015 -> "10.15", -50 -> "-0.50".
func FormatCents(cents int64) string {
	negative := cents < 0
	if negative {
		cents = -cents
	}

	digits := strconv.FormatInt(cents, 10)
	for len(digits) < 3 {
		digits = "0" + digits
	}

	split := len(digits) - 2
	out := digits[:split] + "." + digits[split:]
	if negative {
		return "-" + out
	}
	return out
}

// CommissionCents applies a fractional commission rate to a net amount,
// flooring to whole cents so accrual never over-credits the referrer.
func CommissionCents(netCents int64, rate float64) int64 {
	if netCents <= 0 || rate <= 0 {
		return 0
	}
	return int64(math.Floor(float64(netCents) * rate))
}
