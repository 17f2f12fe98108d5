// Package query serves the read side of the storefront: bus search, bus
// detail, and the rendered seat map.
package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bookmyseat/bms-go/internal/domain"
	redisx "github.com/bookmyseat/bms-go/internal/redis"
	"github.com/bookmyseat/bms-go/internal/repository"
	postgresrepo "github.com/bookmyseat/bms-go/internal/repository/postgres"
	redisrepo "github.com/bookmyseat/bms-go/internal/repository/redis"
	"github.com/bookmyseat/bms-go/internal/seatmap"
)

var ErrBusNotFound = errors.New("bus not found")

const (
	busListTTL    = 30 * time.Second
	busSummaryTTL = 15 * time.Second
)

type Service struct {
	store *postgresrepo.Store
	cache *redisrepo.Cache
	holds *redisrepo.HoldStore
}

func New(store *postgresrepo.Store, cache *redisrepo.Cache, holds *redisrepo.HoldStore) *Service {
	return &Service{store: store, cache: cache, holds: holds}
}

// SearchBuses lists buses matching the filter. The unfiltered listing is
// the hot path of the storefront and goes through the cache; filtered
// queries hit the database directly.
func (s *Service) SearchBuses(ctx context.Context, f postgresrepo.SearchFilter) ([]domain.Bus, error) {
	const op = "service.query.SearchBuses"

	if f == (postgresrepo.SearchFilter{}) {
		buses, err := redisrepo.GetOrSetJSON(
			ctx, s.cache, redisx.KeyBusList(), busListTTL,
			func(ctx context.Context) ([]domain.Bus, error) {
				return s.store.Buses().Search(ctx, f)
			},
		)
		if err != nil {
			return nil, fmt.Errorf("%s:%w", op, err)
		}

		return buses, nil
	}

	buses, err := s.store.Buses().Search(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return buses, nil
}

// GetBus returns a single bus through the summary cache.
func (s *Service) GetBus(ctx context.Context, busID string) (*domain.Bus, error) {
	const op = "service.query.GetBus"

	bus, err := redisrepo.GetOrSetJSON(
		ctx, s.cache, redisx.KeyBusSummary(busID), busSummaryTTL,
		func(ctx context.Context) (*domain.Bus, error) {
			return s.store.Buses().Get(ctx, busID)
		},
	)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s:%w", op, ErrBusNotFound)
		}

		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return bus, nil
}

// SeatMap renders the seat grid as the requesting user sees it: persisted
// bookings and other users' live holds show as booked, the user's own hold
// shows as selected.
func (s *Service) SeatMap(ctx context.Context, user domain.User, busID string) ([]seatmap.Row, error) {
	const op = "service.query.SeatMap"

	bus, err := s.GetBus(ctx, busID)
	if err != nil {
		return nil, err
	}

	own, _, err := s.holds.Get(ctx, busID, user.ID)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	booked := bus.BookedSeats
	if others, err := s.holds.HeldByOthers(ctx, busID, user.ID, heldCandidates(bus, own)); err == nil {
		booked = append(append([]string(nil), booked...), others...)
	}

	rows, err := seatmap.Generate(bus.SeatLayout, bus.TotalSeats, booked, own)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return rows, nil
}

// heldCandidates lists every seat worth probing for a foreign hold: the
// full seat space minus what is already booked or held by the user.
func heldCandidates(bus *domain.Bus, own []string) []string {
	ids, err := seatmap.ValidSeatIDs(bus.SeatLayout, bus.TotalSeats)
	if err != nil {
		return nil
	}

	for _, seat := range bus.BookedSeats {
		delete(ids, seat)
	}
	for _, seat := range own {
		delete(ids, seat)
	}

	out := make([]string, 0, len(ids))
	for seat := range ids {
		out = append(out, seat)
	}

	return out
}
