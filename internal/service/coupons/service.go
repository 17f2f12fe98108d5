// Package coupons applies discount codes at checkout and backs the admin
// coupon management screens.
package coupons

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bookmyseat/bms-go/internal/coupon"
	"github.com/bookmyseat/bms-go/internal/domain"
	redisx "github.com/bookmyseat/bms-go/internal/redis"
	"github.com/bookmyseat/bms-go/internal/repository"
	postgresrepo "github.com/bookmyseat/bms-go/internal/repository/postgres"
	redisrepo "github.com/bookmyseat/bms-go/internal/repository/redis"
)

var (
	ErrCouponNotFound = errors.New("coupon not found")
	ErrDuplicateCode  = errors.New("coupon code already exists")
)

const rulesTTL = time.Minute

type Service struct {
	store *postgresrepo.Store
	cache *redisrepo.Cache
}

func New(store *postgresrepo.Store, cache *redisrepo.Cache) *Service {
	return &Service{store: store, cache: cache}
}

// Apply evaluates code against the current rule set and returns the
// discount for subtotal.
func (s *Service) Apply(ctx context.Context, code string, subtotal float64) (float64, error) {
	const op = "service.coupons.Apply"

	rules, err := s.rules(ctx)
	if err != nil {
		return 0, fmt.Errorf("%s:%w", op, err)
	}

	discount, err := coupon.Evaluate(rules, code, subtotal, time.Now())
	if err != nil {
		return 0, fmt.Errorf("%s:%w", op, err)
	}

	return discount, nil
}

// List returns every coupon, including inactive ones, for the admin panel.
func (s *Service) List(ctx context.Context) ([]domain.Coupon, error) {
	const op = "service.coupons.List"

	all, err := s.store.Coupons().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return all, nil
}

func (s *Service) Create(ctx context.Context, c *domain.Coupon) error {
	const op = "service.coupons.Create"

	if err := validate(c); err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	id, err := s.store.Coupons().Create(ctx, c)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return fmt.Errorf("%s:%w", op, ErrDuplicateCode)
		}

		return fmt.Errorf("%s:%w", op, err)
	}

	c.ID = id
	_ = s.cache.InvalidateCoupons(ctx)

	return nil
}

func (s *Service) Update(ctx context.Context, c *domain.Coupon) error {
	const op = "service.coupons.Update"

	if err := validate(c); err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	if err := s.store.Coupons().Update(ctx, c); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%s:%w", op, ErrCouponNotFound)
		}
		if errors.Is(err, repository.ErrConflict) {
			return fmt.Errorf("%s:%w", op, ErrDuplicateCode)
		}

		return fmt.Errorf("%s:%w", op, err)
	}

	_ = s.cache.InvalidateCoupons(ctx)

	return nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	const op = "service.coupons.Delete"

	if err := s.store.Coupons().Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%s:%w", op, ErrCouponNotFound)
		}

		return fmt.Errorf("%s:%w", op, err)
	}

	_ = s.cache.InvalidateCoupons(ctx)

	return nil
}

// rules loads the active rule table through the cache. Invalidation happens
// on every admin mutation, so a short TTL is only a safety net.
func (s *Service) rules(ctx context.Context) (coupon.Rules, error) {
	all, err := redisrepo.GetOrSetJSON(
		ctx, s.cache, redisx.KeyCoupons(), rulesTTL,
		func(ctx context.Context) ([]domain.Coupon, error) {
			return s.store.Coupons().List(ctx)
		},
	)
	if err != nil {
		return nil, err
	}

	return coupon.NewRules(all), nil
}

func validate(c *domain.Coupon) error {
	if c.Code == "" {
		return errors.New("coupon code is required")
	}

	if c.Discount <= 0 {
		return errors.New("discount must be positive")
	}

	switch c.Kind {
	case domain.DiscountPercentage:
		if c.Discount > 100 {
			return errors.New("percentage discount cannot exceed 100")
		}
	case domain.DiscountFixed:
	default:
		return fmt.Errorf("unknown discount type %q", c.Kind)
	}

	return nil
}
