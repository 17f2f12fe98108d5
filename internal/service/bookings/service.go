// Package bookings serves the post-checkout lifecycle: listing, ticket
// download, and cancellation with refund.
package bookings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/bookmyseat/bms-go/internal/domain"
	"github.com/bookmyseat/bms-go/internal/repository"
	postgresrepo "github.com/bookmyseat/bms-go/internal/repository/postgres"
	redisrepo "github.com/bookmyseat/bms-go/internal/repository/redis"
	"github.com/bookmyseat/bms-go/internal/ticket"
	"github.com/bookmyseat/bms-go/internal/uow"
	"github.com/google/uuid"
)

var (
	ErrBookingNotFound  = errors.New("booking not found")
	ErrNotOwner         = errors.New("booking belongs to another user")
	ErrAlreadyCancelled = errors.New("booking is already cancelled")
	ErrNotConfirmed     = errors.New("booking is not confirmed")
	ErrReasonTooShort   = errors.New("cancellation reason must be at least 5 characters")
)

const minReasonLen = 5

// Refund policy: cancelling on the same calendar day the booking was made
// refunds 75% of the final amount, later cancellations refund 50%.
const (
	refundSameDayPct = 75
	refundLaterPct   = 50
)

type Service struct {
	store  *postgresrepo.Store
	cache  *redisrepo.Cache
	pubsub *redisrepo.BusesPubSub
	uow    *uow.UoW
	logger *slog.Logger
}

func New(
	store *postgresrepo.Store,
	cache *redisrepo.Cache,
	pubsub *redisrepo.BusesPubSub,
	logger *slog.Logger,
) *Service {
	return &Service{
		store:  store,
		cache:  cache,
		pubsub: pubsub,
		uow:    uow.NewUoW(store),
		logger: logger,
	}
}

func (s *Service) ListMine(ctx context.Context, user domain.User) ([]domain.Booking, error) {
	const op = "service.bookings.ListMine"

	list, err := s.store.Bookings().ListByUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return list, nil
}

func (s *Service) ListAll(ctx context.Context) ([]domain.Booking, error) {
	const op = "service.bookings.ListAll"

	list, err := s.store.Bookings().ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return list, nil
}

// Get returns the booking when it belongs to user; admins see everything.
func (s *Service) Get(ctx context.Context, user domain.User, id uuid.UUID) (*domain.Booking, error) {
	const op = "service.bookings.Get"

	b, err := s.store.Bookings().Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s:%w", op, ErrBookingNotFound)
		}

		return nil, fmt.Errorf("%s:%w", op, err)
	}

	if b.UserID != user.ID && !user.IsAdmin() {
		return nil, fmt.Errorf("%s:%w", op, ErrNotOwner)
	}

	return b, nil
}

// Cancel marks the booking cancelled with its refund record and frees the
// seats. The refund percentage depends on when the cancellation happens
// relative to the booking date.
func (s *Service) Cancel(
	ctx context.Context,
	user domain.User,
	id uuid.UUID,
	reason string,
) (*domain.Booking, error) {
	const op = "service.bookings.Cancel"

	reason = strings.TrimSpace(reason)
	if len(reason) < minReasonLen {
		return nil, fmt.Errorf("%s:%w", op, ErrReasonTooShort)
	}

	var cancelled *domain.Booking

	err := s.uow.Do(ctx, func(
		ctx context.Context,
		tx postgresrepo.DB,
		after func(uow.AfterCommit),
	) error {
		b, err := s.store.Bookings().With(tx).GetForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("%s:%w", op, ErrBookingNotFound)
			}

			return fmt.Errorf("%s:%w", op, err)
		}

		if b.UserID != user.ID && !user.IsAdmin() {
			return fmt.Errorf("%s:%w", op, ErrNotOwner)
		}

		if b.Status == domain.BookingCancelled {
			return fmt.Errorf("%s:%w", op, ErrAlreadyCancelled)
		}

		now := time.Now().UTC()
		amount, pct := CalculateRefund(b.Payment.FinalAmount, b.CreatedAt, now)

		c := domain.Cancellation{
			Reason:           reason,
			RefundAmount:     amount,
			RefundPercentage: pct,
			CancelledAt:      now,
		}

		if err := s.store.Bookings().With(tx).Cancel(ctx, id, c); err != nil {
			if errors.Is(err, repository.ErrAlreadyCancelled) {
				return fmt.Errorf("%s:%w", op, ErrAlreadyCancelled)
			}

			return fmt.Errorf("%s:%w", op, err)
		}

		busID := b.BusDetails.ID
		if err := s.store.Buses().With(tx).RemoveBookedSeats(ctx, busID, b.Seats); err != nil {
			return fmt.Errorf("%s:%w", op, err)
		}

		b.Status = domain.BookingCancelled
		b.Cancellation = &c
		cancelled = b

		after(func(ctx context.Context) {
			_ = s.cache.InvalidateBus(ctx, busID)
			_ = s.pubsub.PublishBusChanged(ctx, busID)

			s.logger.Info("booking cancelled",
				"booking_id", id, "bus_id", busID,
				"refund_pct", pct, "refund_amount", amount)
		})

		return nil
	})
	if err != nil {
		return nil, err
	}

	return cancelled, nil
}

// TicketHTML renders the printable ticket for a confirmed booking.
func (s *Service) TicketHTML(ctx context.Context, user domain.User, id uuid.UUID) (string, []byte, error) {
	return s.renderTicket(ctx, user, id, ticket.HTMLFilename, ticket.RenderHTML)
}

// TicketPDF renders the PDF variant of the ticket.
func (s *Service) TicketPDF(ctx context.Context, user domain.User, id uuid.UUID) (string, []byte, error) {
	return s.renderTicket(ctx, user, id, ticket.PDFFilename, ticket.RenderPDF)
}

func (s *Service) renderTicket(
	ctx context.Context,
	user domain.User,
	id uuid.UUID,
	filename func(*domain.Booking) string,
	render func(*domain.Booking) ([]byte, error),
) (string, []byte, error) {
	const op = "service.bookings.renderTicket"

	b, err := s.Get(ctx, user, id)
	if err != nil {
		return "", nil, err
	}

	if b.Status != domain.BookingConfirmed {
		return "", nil, fmt.Errorf("%s:%w", op, ErrNotConfirmed)
	}

	data, err := render(b)
	if err != nil {
		return "", nil, fmt.Errorf("%s:%w", op, err)
	}

	return filename(b), data, nil
}

// CalculateRefund returns the refund amount and percentage for a booking
// paid finalAmount, created at bookedAt and cancelled at cancelledAt. The
// day comparison is calendar-based, not a 24-hour window.
func CalculateRefund(finalAmount float64, bookedAt, cancelledAt time.Time) (float64, int) {
	pct := refundLaterPct
	if sameDay(bookedAt, cancelledAt) {
		pct = refundSameDayPct
	}

	amount := math.Round(finalAmount * float64(pct) / 100)

	return amount, pct
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
