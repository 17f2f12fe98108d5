// Package coupon evaluates discount codes against a booking subtotal.
// Evaluation is pure: the rule set is provided by the caller and never
// mutated.
package coupon

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/bookmyseat/bms-go/internal/domain"
)

var ErrInvalidCode = errors.New("invalid coupon code")

// MinimumAmountError rejects a subtotal below the coupon's minimum. The
// message matches what the storefront shows the user.
type MinimumAmountError struct {
	MinAmount float64
}

func (e MinimumAmountError) Error() string {
	return fmt.Sprintf("minimum booking amount is %s", formatAmount(e.MinAmount))
}

// Rules is a coupon lookup table keyed by upper-cased code.
type Rules map[string]domain.Coupon

// NewRules indexes coupons by code, case-insensitively. Inactive coupons are
// excluded up front so an inactive code is indistinguishable from an unknown
// one.
func NewRules(coupons []domain.Coupon) Rules {
	rules := make(Rules, len(coupons))
	for _, c := range coupons {
		if !c.Active {
			continue
		}
		rules[strings.ToUpper(c.Code)] = c
	}
	return rules
}

// Evaluate resolves code against the rule set and returns the discount for
// subtotal, evaluated at now.
//
// Rules, in order: the code must exist, be active and unexpired; the
// subtotal must reach the coupon minimum; a percentage discount is
// subtotal*pct/100 rounded to the nearest currency unit and clamped to
// MaxDiscount when a positive cap is set; a fixed discount is taken as-is.
func Evaluate(rules Rules, code string, subtotal float64, now time.Time) (float64, error) {
	c, ok := rules[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return 0, ErrInvalidCode
	}

	if !c.Active {
		return 0, ErrInvalidCode
	}

	if c.ExpiresAt != nil && now.After(*c.ExpiresAt) {
		return 0, ErrInvalidCode
	}

	if subtotal < c.MinAmount {
		return 0, MinimumAmountError{MinAmount: c.MinAmount}
	}

	if c.Kind == domain.DiscountPercentage {
		discount := math.Round(subtotal * c.Discount / 100)
		if c.MaxDiscount > 0 && discount > c.MaxDiscount {
			discount = c.MaxDiscount
		}
		return discount, nil
	}

	return c.Discount, nil
}

func formatAmount(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.2f", v)
}
