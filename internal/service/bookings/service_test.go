package bookings

import (
	"testing"
	"time"
)

func TestCalculateRefundSameDay(t *testing.T) {
	booked := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	cancelled := time.Date(2025, 3, 10, 23, 30, 0, 0, time.UTC)

	amount, pct := CalculateRefund(1000, booked, cancelled)

	if pct != 75 {
		t.Fatalf("pct = %d, want 75", pct)
	}
	if amount != 750 {
		t.Fatalf("amount = %v, want 750", amount)
	}
}

func TestCalculateRefundLater(t *testing.T) {
	booked := time.Date(2025, 3, 10, 23, 59, 0, 0, time.UTC)
	cancelled := time.Date(2025, 3, 11, 0, 1, 0, 0, time.UTC)

	amount, pct := CalculateRefund(1000, booked, cancelled)

	if pct != 50 {
		t.Fatalf("pct = %d, want 50", pct)
	}
	if amount != 500 {
		t.Fatalf("amount = %v, want 500", amount)
	}
}

func TestCalculateRefundRounds(t *testing.T) {
	booked := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	cancelled := booked.Add(time.Hour)

	// 75% of 333 is 249.75, rounded to 250.
	amount, _ := CalculateRefund(333, booked, cancelled)
	if amount != 250 {
		t.Fatalf("amount = %v, want 250", amount)
	}

	// 50% of 333 is 166.5, rounded to 167.
	amount, _ = CalculateRefund(333, booked, cancelled.AddDate(0, 0, 2))
	if amount != 167 {
		t.Fatalf("amount = %v, want 167", amount)
	}
}
