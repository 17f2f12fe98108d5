package coupon

import (
	"errors"
	"testing"
	"time"

	"github.com/bookmyseat/bms-go/internal/domain"
)

func testRules() Rules {
	return NewRules([]domain.Coupon{
		{Code: "FIRST10", Discount: 10, Kind: domain.DiscountPercentage, MinAmount: 200, Active: true},
		{Code: "SAVE50", Discount: 50, Kind: domain.DiscountFixed, MinAmount: 300, Active: true},
		{Code: "WEEKEND20", Discount: 20, Kind: domain.DiscountPercentage, MinAmount: 400, Active: true},
		{Code: "DEAD", Discount: 30, Kind: domain.DiscountPercentage, MinAmount: 0, Active: false},
	})
}

func TestEvaluateUnknownCode(t *testing.T) {
	_, err := Evaluate(testRules(), "NOPE", 1000, time.Now())
	if !errors.Is(err, ErrInvalidCode) {
		t.Fatalf("expected ErrInvalidCode, got %v", err)
	}
}

func TestEvaluateInactiveCodeLooksUnknown(t *testing.T) {
	_, err := Evaluate(testRules(), "DEAD", 1000, time.Now())
	if !errors.Is(err, ErrInvalidCode) {
		t.Fatalf("expected ErrInvalidCode for inactive coupon, got %v", err)
	}
}

func TestEvaluateBelowMinimum(t *testing.T) {
	_, err := Evaluate(testRules(), "FIRST10", 199, time.Now())

	var minErr MinimumAmountError
	if !errors.As(err, &minErr) {
		t.Fatalf("expected MinimumAmountError, got %v", err)
	}
	if minErr.MinAmount != 200 {
		t.Fatalf("minimum = %v, want 200", minErr.MinAmount)
	}
}

func TestEvaluatePercentage(t *testing.T) {
	got, err := Evaluate(testRules(), "FIRST10", 250, time.Now())
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if got != 25 {
		t.Fatalf("discount = %v, want 25", got)
	}
}

func TestEvaluatePercentageRoundsToNearestUnit(t *testing.T) {
	got, err := Evaluate(testRules(), "FIRST10", 255, time.Now())
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	// 10% of 255 is 25.5; the convention is round to nearest unit.
	if got != 26 {
		t.Fatalf("discount = %v, want 26", got)
	}
}

func TestEvaluateFixedNotScaled(t *testing.T) {
	got, err := Evaluate(testRules(), "SAVE50", 300, time.Now())
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if got != 50 {
		t.Fatalf("discount = %v, want exactly 50", got)
	}
}

func TestEvaluateCaseInsensitive(t *testing.T) {
	got, err := Evaluate(testRules(), "weekend20", 900, time.Now())
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if got != 180 {
		t.Fatalf("discount = %v, want 180", got)
	}
}

func TestEvaluateMaxDiscountCap(t *testing.T) {
	rules := NewRules([]domain.Coupon{
		{Code: "BIG50", Discount: 50, Kind: domain.DiscountPercentage, MinAmount: 100, MaxDiscount: 120, Active: true},
	})

	got, err := Evaluate(rules, "BIG50", 1000, time.Now())
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if got != 120 {
		t.Fatalf("discount = %v, want cap 120", got)
	}
}

func TestEvaluateExpired(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	rules := NewRules([]domain.Coupon{
		{Code: "OLD", Discount: 10, Kind: domain.DiscountPercentage, Active: true, ExpiresAt: &past},
	})

	_, err := Evaluate(rules, "OLD", 1000, time.Now())
	if !errors.Is(err, ErrInvalidCode) {
		t.Fatalf("expected ErrInvalidCode for expired coupon, got %v", err)
	}
}

func TestEvaluateIsPure(t *testing.T) {
	rules := testRules()
	now := time.Now()

	a, errA := Evaluate(rules, "WEEKEND20", 900, now)
	b, errB := Evaluate(rules, "WEEKEND20", 900, now)

	if a != b || (errA == nil) != (errB == nil) {
		t.Fatalf("evaluation is not deterministic: (%v,%v) vs (%v,%v)", a, errA, b, errB)
	}
}
