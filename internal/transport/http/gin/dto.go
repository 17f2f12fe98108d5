package httpgin

import (
	"time"

	"github.com/bookmyseat/bms-go/internal/domain"
)

type HoldRequest struct {
	Seats []string `json:"seats" binding:"required,min=1,dive,required"`
}

type HoldResponse struct {
	Seats     []string  `json:"seats"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type ToggleResponse struct {
	Seats []string `json:"seats"`
}

type SelectionResponse struct {
	Seats      []string `json:"seats"`
	TTLSeconds int64    `json:"ttlSeconds"`
}

type BookRequest struct {
	Seats         []string `json:"seats" binding:"required,min=1,dive,required"`
	CouponCode    string   `json:"couponCode"`
	PaymentMethod string   `json:"paymentMethod"`
}

type CancelRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type ApplyCouponRequest struct {
	Code   string  `json:"code" binding:"required"`
	Amount float64 `json:"amount" binding:"required,gt=0"`
}

type ApplyCouponResponse struct {
	Code        string  `json:"code"`
	Discount    float64 `json:"discount"`
	FinalAmount float64 `json:"finalAmount"`
}

type CouponRequest struct {
	Code        string  `json:"code" binding:"required"`
	Discount    float64 `json:"discount" binding:"required,gt=0"`
	Kind        string  `json:"type" binding:"required,oneof=percentage fixed"`
	MinAmount   float64 `json:"minAmount"`
	MaxDiscount float64 `json:"maxDiscount"`
	Description string  `json:"description"`
	Active      bool    `json:"isActive"`
	ExpiresAt   string  `json:"expiresAt"`
}

type BusRequest struct {
	ID          string   `json:"id" binding:"required"`
	Name        string   `json:"name" binding:"required"`
	From        string   `json:"from" binding:"required"`
	To          string   `json:"to" binding:"required"`
	Departure   string   `json:"departure" binding:"required"`
	Arrival     string   `json:"arrival" binding:"required"`
	Fare        float64  `json:"fare" binding:"required,gt=0"`
	TotalSeats  int      `json:"totalSeats" binding:"required,gt=0"`
	SeatLayout  string   `json:"seatLayout" binding:"required"`
	Type        string   `json:"type"`
	Operator    string   `json:"operator"`
	BusNumber   string   `json:"busNumber"`
	Rating      float64  `json:"rating"`
	Amenities   []string `json:"amenities"`
	BookedSeats []string `json:"bookedSeats"`
}

type DelayRequest struct {
	Minutes int    `json:"delayMinutes" binding:"required,gt=0"`
	Reason  string `json:"reason" binding:"required"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func (r BusRequest) toDomain() (*domain.Bus, error) {
	departure, err := parseRFC3339(r.Departure)
	if err != nil {
		return nil, err
	}

	arrival, err := parseRFC3339(r.Arrival)
	if err != nil {
		return nil, err
	}

	return &domain.Bus{
		ID:          r.ID,
		Name:        r.Name,
		From:        r.From,
		To:          r.To,
		Departure:   departure,
		Arrival:     arrival,
		Fare:        r.Fare,
		TotalSeats:  r.TotalSeats,
		SeatLayout:  r.SeatLayout,
		Type:        r.Type,
		Operator:    r.Operator,
		BusNumber:   r.BusNumber,
		Rating:      r.Rating,
		Amenities:   r.Amenities,
		BookedSeats: r.BookedSeats,
	}, nil
}

func (r CouponRequest) toDomain() (*domain.Coupon, error) {
	c := &domain.Coupon{
		Code:        r.Code,
		Discount:    r.Discount,
		Kind:        domain.DiscountKind(r.Kind),
		MinAmount:   r.MinAmount,
		MaxDiscount: r.MaxDiscount,
		Description: r.Description,
		Active:      r.Active,
	}

	if r.ExpiresAt != "" {
		t, err := parseRFC3339(r.ExpiresAt)
		if err != nil {
			return nil, err
		}
		c.ExpiresAt = &t
	}

	return c, nil
}

func parseRFC3339(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}
