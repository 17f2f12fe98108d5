// Package admin backs the fleet-management screens: bus CRUD, delay
// management, and the bookings overview tools.
package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bookmyseat/bms-go/internal/domain"
	"github.com/bookmyseat/bms-go/internal/repository"
	postgresrepo "github.com/bookmyseat/bms-go/internal/repository/postgres"
	redisrepo "github.com/bookmyseat/bms-go/internal/repository/redis"
	"github.com/bookmyseat/bms-go/internal/seatmap"
)

var (
	ErrBusNotFound  = errors.New("bus not found")
	ErrDuplicateBus = errors.New("bus id already exists")
)

const delayHistoryLimit = 100

type Service struct {
	store  *postgresrepo.Store
	cache  *redisrepo.Cache
	pubsub *redisrepo.BusesPubSub
	logger *slog.Logger
}

func New(
	store *postgresrepo.Store,
	cache *redisrepo.Cache,
	pubsub *redisrepo.BusesPubSub,
	logger *slog.Logger,
) *Service {
	return &Service{store: store, cache: cache, pubsub: pubsub, logger: logger}
}

func (s *Service) CreateBus(ctx context.Context, b *domain.Bus) error {
	const op = "service.admin.CreateBus"

	if err := validateBus(b); err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	if err := s.store.Buses().Create(ctx, b); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return fmt.Errorf("%s:%w", op, ErrDuplicateBus)
		}

		return fmt.Errorf("%s:%w", op, err)
	}

	s.busChanged(ctx, b.ID)

	return nil
}

func (s *Service) UpdateBus(ctx context.Context, b *domain.Bus) error {
	const op = "service.admin.UpdateBus"

	if err := validateBus(b); err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	if err := s.store.Buses().Update(ctx, b); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%s:%w", op, ErrBusNotFound)
		}

		return fmt.Errorf("%s:%w", op, err)
	}

	s.busChanged(ctx, b.ID)

	return nil
}

func (s *Service) DeleteBus(ctx context.Context, busID string) error {
	const op = "service.admin.DeleteBus"

	if err := s.store.Buses().Delete(ctx, busID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%s:%w", op, ErrBusNotFound)
		}

		return fmt.Errorf("%s:%w", op, err)
	}

	s.busChanged(ctx, busID)

	return nil
}

// SetDelay records a running delay on the bus and appends it to the delay
// history.
func (s *Service) SetDelay(ctx context.Context, busID string, minutes int, reason string) error {
	const op = "service.admin.SetDelay"

	if minutes <= 0 {
		return fmt.Errorf("%s: delay minutes must be positive", op)
	}

	if err := s.store.Buses().SetDelay(ctx, busID, minutes, reason); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%s:%w", op, ErrBusNotFound)
		}

		return fmt.Errorf("%s:%w", op, err)
	}

	s.busChanged(ctx, busID)

	return nil
}

func (s *Service) ClearDelay(ctx context.Context, busID string) error {
	const op = "service.admin.ClearDelay"

	if err := s.store.Buses().ClearDelay(ctx, busID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%s:%w", op, ErrBusNotFound)
		}

		return fmt.Errorf("%s:%w", op, err)
	}

	s.busChanged(ctx, busID)

	return nil
}

func (s *Service) DelayHistory(ctx context.Context) ([]domain.DelayRecord, error) {
	const op = "service.admin.DelayHistory"

	records, err := s.store.Buses().ListDelays(ctx, delayHistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return records, nil
}

// ClearBookings wipes every booking and frees all seats. A destructive
// demo-reset tool, admin only.
func (s *Service) ClearBookings(ctx context.Context) error {
	const op = "service.admin.ClearBookings"

	if err := s.store.Bookings().ClearAll(ctx); err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	// Every bus's booked set changed. The list cache is dropped here; the
	// per-bus summaries carry a short TTL and age out on their own.
	_ = s.cache.InvalidateBusList(ctx)
	_ = s.pubsub.PublishBusChanged(ctx, "*")

	s.logger.Warn("all bookings cleared")

	return nil
}

func (s *Service) busChanged(ctx context.Context, busID string) {
	_ = s.cache.InvalidateBus(ctx, busID)
	_ = s.pubsub.PublishBusChanged(ctx, busID)
}

// validateBus checks the layout parses and every pre-booked seat exists in
// the seat space it defines.
func validateBus(b *domain.Bus) error {
	if b.ID == "" {
		return errors.New("bus id is required")
	}

	if b.TotalSeats <= 0 {
		return errors.New("total seats must be positive")
	}

	ids, err := seatmap.ValidSeatIDs(b.SeatLayout, b.TotalSeats)
	if err != nil {
		return err
	}

	for _, seat := range b.BookedSeats {
		if _, ok := ids[seat]; !ok {
			return fmt.Errorf("seat %s does not exist in layout %s", seat, b.SeatLayout)
		}
	}

	return nil
}
