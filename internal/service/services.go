// Package service wires the business-logic layer. Each subpackage owns one
// slice of the storefront; Services bundles them for the transport.
package service

import (
	"log/slog"

	postgresrepo "github.com/bookmyseat/bms-go/internal/repository/postgres"
	redisrepo "github.com/bookmyseat/bms-go/internal/repository/redis"
	"github.com/bookmyseat/bms-go/internal/service/admin"
	"github.com/bookmyseat/bms-go/internal/service/bookings"
	"github.com/bookmyseat/bms-go/internal/service/coupons"
	"github.com/bookmyseat/bms-go/internal/service/query"
	"github.com/bookmyseat/bms-go/internal/service/reservation"
)

type Services struct {
	Query       *query.Service
	Reservation *reservation.Service
	Coupons     *coupons.Service
	Bookings    *bookings.Service
	Admin       *admin.Service
}

type Deps struct {
	Store   *postgresrepo.Store
	Cache   *redisrepo.Cache
	Holds   *redisrepo.HoldStore
	PubSub  *redisrepo.BusesPubSub
	Limiter *redisrepo.SlidingWindowLimiter
	Logger  *slog.Logger

	Reservation reservation.Config
}

func NewServices(d Deps) *Services {
	return &Services{
		Query: query.New(d.Store, d.Cache, d.Holds),
		Reservation: reservation.New(
			d.Store, d.Holds, d.Cache, d.PubSub, d.Limiter, d.Logger, d.Reservation,
		),
		Coupons:  coupons.New(d.Store, d.Cache),
		Bookings: bookings.New(d.Store, d.Cache, d.PubSub, d.Logger),
		Admin:    admin.New(d.Store, d.Cache, d.PubSub, d.Logger),
	}
}
