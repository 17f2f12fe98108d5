package reservation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/bookmyseat/bms-go/internal/domain"
	"github.com/bookmyseat/bms-go/internal/repository"
	postgresrepo "github.com/bookmyseat/bms-go/internal/repository/postgres"
	redisrepo "github.com/bookmyseat/bms-go/internal/repository/redis"
	"github.com/bookmyseat/bms-go/internal/seatmap"
	"github.com/bookmyseat/bms-go/internal/selection"
	"github.com/bookmyseat/bms-go/internal/uow"
	"github.com/google/uuid"
)

type Config struct {
	HoldTTL  time.Duration
	MaxSeats int
}

// Service owns the seat-hold and checkout workflow: per-user selection
// sessions, the authoritative Redis hold, and the transactional booking.
type Service struct {
	store    *postgresrepo.Store
	holds    *redisrepo.HoldStore
	cache    *redisrepo.Cache
	pubsub   *redisrepo.BusesPubSub
	limiter  *redisrepo.SlidingWindowLimiter
	sessions *selection.Manager
	uow      *uow.UoW
	logger   *slog.Logger
	cfg      Config
}

func New(
	store *postgresrepo.Store,
	holds *redisrepo.HoldStore,
	cache *redisrepo.Cache,
	pubsub *redisrepo.BusesPubSub,
	limiter *redisrepo.SlidingWindowLimiter,
	logger *slog.Logger,
	cfg Config,
) *Service {
	if cfg.HoldTTL <= 0 {
		cfg.HoldTTL = selection.DefaultTTL
	}

	if cfg.MaxSeats <= 0 {
		cfg.MaxSeats = selection.DefaultMaxSeats
	}

	return &Service{
		store:   store,
		holds:   holds,
		cache:   cache,
		pubsub:  pubsub,
		limiter: limiter,
		sessions: selection.NewManager(selection.Config{
			MaxSeats: cfg.MaxSeats,
			TTL:      cfg.HoldTTL,
		}),
		uow:    uow.NewUoW(store),
		logger: logger,
		cfg:    cfg,
	}
}

// Toggle flips one seat in the user's selection for busID. Booked seats are
// a silent no-op; the capacity bound surfaces as selection.CapacityError.
// Any non-empty selection re-issues the Redis hold and restarts the
// countdown.
func (s *Service) Toggle(
	ctx context.Context,
	user domain.User,
	busID, seatID string,
) ([]string, error) {
	const op = "service.reservation.Toggle"

	bus, err := s.store.Buses().Get(ctx, busID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s:%w", op, ErrBusNotFound)
		}

		return nil, fmt.Errorf("%s:%w", op, err)
	}

	validIDs, err := seatmap.ValidSeatIDs(bus.SeatLayout, bus.TotalSeats)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	if _, ok := validIDs[seatID]; !ok {
		return nil, fmt.Errorf("%s:%w", op, InvalidSeatError{SeatID: seatID})
	}

	sess := s.session(user.ID, busID)

	seats, err := sess.Toggle(seatID, func(id string) bool {
		return slices.Contains(bus.BookedSeats, id)
	})
	if err != nil {
		return seats, fmt.Errorf("%s:%w", op, err)
	}

	return seats, nil
}

// Hold replaces the user's selection with the full seat list, the way the
// storefront posts its selection after every change. The hold is
// authoritative: a conflict with another user's hold rejects the request.
func (s *Service) Hold(
	ctx context.Context,
	user domain.User,
	busID string,
	seats []string,
	rlKey string,
) (time.Time, error) {
	const op = "service.reservation.Hold"

	if len(seats) == 0 {
		return time.Time{}, fmt.Errorf("%s:%w", op, ErrNoSeatsSelected)
	}

	if s.limiter != nil && rlKey != "" {
		ok, _, retry, err := s.limiter.Allow(ctx, rlKey)
		if err != nil {
			return time.Time{}, fmt.Errorf("%s:%w", op, err)
		}
		if !ok {
			return time.Time{}, fmt.Errorf("%s: rate limited, retry in %s", op, retry)
		}
	}

	bus, err := s.store.Buses().Get(ctx, busID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return time.Time{}, fmt.Errorf("%s:%w", op, ErrBusNotFound)
		}

		return time.Time{}, fmt.Errorf("%s:%w", op, err)
	}

	if err := s.validateSeats(bus, seats); err != nil {
		return time.Time{}, fmt.Errorf("%s:%w", op, err)
	}

	if _, err := s.session(user.ID, busID).Replace(seats); err != nil {
		return time.Time{}, fmt.Errorf("%s:%w", op, err)
	}

	if err := s.holds.Acquire(ctx, busID, user.ID, seats, s.cfg.HoldTTL); err != nil {
		if errors.Is(err, repository.ErrSeatsHeld) {
			return time.Time{}, fmt.Errorf("%s:%w", op, err)
		}

		return time.Time{}, fmt.Errorf("%s:%w", op, err)
	}

	return time.Now().Add(s.cfg.HoldTTL), nil
}

// Selection returns the user's current selection and remaining hold time.
func (s *Service) Selection(ctx context.Context, user domain.User, busID string) ([]string, time.Duration, error) {
	const op = "service.reservation.Selection"

	seats, ttl, err := s.holds.Get(ctx, busID, user.ID)
	if err != nil {
		return nil, 0, fmt.Errorf("%s:%w", op, err)
	}

	return seats, ttl, nil
}

// Book finalizes the checkout: verifies availability under a row lock,
// grows the booked set, and records the confirmation with a denormalized
// bus snapshot. Payment is simulated; finalAmount is clamped at zero.
func (s *Service) Book(
	ctx context.Context,
	user domain.User,
	busID string,
	seats []string,
	totalAmount, discount float64,
	method string,
) (*domain.Booking, error) {
	const op = "service.reservation.Book"

	if len(seats) == 0 {
		return nil, fmt.Errorf("%s:%w", op, ErrNoSeatsSelected)
	}

	held, err := s.holds.HeldByOthers(ctx, busID, user.ID, seats)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}
	if len(held) > 0 {
		return nil, fmt.Errorf("%s:%w", op, ErrSeatsHeld)
	}

	var booking *domain.Booking

	err = s.uow.Do(ctx, func(
		ctx context.Context,
		tx postgresrepo.DB,
		after func(uow.AfterCommit),
	) error {
		bus, err := s.store.Buses().With(tx).GetForUpdate(ctx, busID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("%s:%w", op, ErrBusNotFound)
			}

			return fmt.Errorf("%s:%w", op, err)
		}

		if err := s.validateSeats(bus, seats); err != nil {
			return fmt.Errorf("%s:%w", op, err)
		}

		if taken := intersect(bus.BookedSeats, seats); len(taken) > 0 {
			return fmt.Errorf("%s:%w", op, SeatsTakenError{SeatIDs: taken})
		}

		if len(bus.BookedSeats)+len(seats) > bus.TotalSeats {
			return fmt.Errorf("%s:%w", op, ErrBusFull)
		}

		if err := s.store.Buses().With(tx).AppendBookedSeats(ctx, busID, seats); err != nil {
			return fmt.Errorf("%s:%w", op, err)
		}

		booking = &domain.Booking{
			ID:         uuid.New(),
			UserID:     user.ID,
			UserName:   user.Name,
			UserEmail:  user.Email,
			BusDetails: snapshot(bus),
			Seats:      slices.Clone(seats),
			Payment:    BuildPayment(totalAmount, discount, method),
			Status:     domain.BookingConfirmed,
			CreatedAt:  time.Now().UTC(),
		}

		if err := s.store.Bookings().With(tx).Create(ctx, booking); err != nil {
			return fmt.Errorf("%s:%w", op, err)
		}

		after(func(ctx context.Context) {
			_ = s.cache.InvalidateBus(ctx, busID)
			_ = s.pubsub.PublishBusChanged(ctx, busID)
			_ = s.holds.Release(ctx, busID, user.ID)

			if sess, ok := s.sessions.Lookup(user.ID, busID); ok {
				sess.Complete()
				s.sessions.Remove(user.ID, busID)
			}
		})

		return nil
	})
	if err != nil {
		return nil, err
	}

	return booking, nil
}

// BuildPayment assembles the simulated payment breakdown. The final amount
// never goes below zero, even when the discount exceeds the subtotal.
func BuildPayment(totalAmount, discount float64, method string) domain.Payment {
	if method == "" {
		method = "Online"
	}

	final := totalAmount - discount
	if final < 0 {
		final = 0
	}

	return domain.Payment{
		TotalAmount: totalAmount,
		Discount:    discount,
		FinalAmount: final,
		Method:      method,
		Status:      "Completed",
	}
}

func (s *Service) session(userID int64, busID string) *selection.Session {
	return s.sessions.Get(
		userID,
		busID,
		func(ctx context.Context, seats []string) {
			if err := s.holds.Acquire(ctx, busID, userID, seats, s.cfg.HoldTTL); err != nil {
				// Fire-and-forget: the local selection stays as-is even when
				// the backend hold could not be placed.
				s.logger.Warn("hold publish failed",
					"bus_id", busID, "user_id", userID, "error", err)
			}
		},
		func(ctx context.Context) {
			_ = s.holds.Release(ctx, busID, userID)
		},
		func(seats []string) {
			s.logger.Info("seat selection expired",
				"bus_id", busID, "user_id", userID, "seats", seats)
			s.sessions.Remove(userID, busID)
		},
	)
}

func (s *Service) validateSeats(bus *domain.Bus, seats []string) error {
	if len(seats) > s.cfg.MaxSeats {
		return selection.CapacityError{Max: s.cfg.MaxSeats}
	}

	validIDs, err := seatmap.ValidSeatIDs(bus.SeatLayout, bus.TotalSeats)
	if err != nil {
		return err
	}

	for _, seat := range seats {
		if _, ok := validIDs[seat]; !ok {
			return InvalidSeatError{SeatID: seat}
		}
	}

	return nil
}

func snapshot(bus *domain.Bus) domain.BusSnapshot {
	return domain.BusSnapshot{
		ID:        bus.ID,
		Name:      bus.Name,
		From:      bus.From,
		To:        bus.To,
		Departure: bus.Departure,
		Arrival:   bus.Arrival,
		Operator:  bus.Operator,
		BusNumber: bus.BusNumber,
		Delay:     bus.Delay,
	}
}

func intersect(a, b []string) []string {
	var out []string
	for _, v := range b {
		if slices.Contains(a, v) {
			out = append(out, v)
		}
	}
	return out
}
