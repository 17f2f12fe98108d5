package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/bookmyseat/bms-go/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CouponRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *CouponRepo) With(db DB) *CouponRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *CouponRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

const couponColumns = `id, code, discount, kind, min_amount, max_discount,
	description, active, expires_at`

// List returns every coupon, for the admin console and the evaluator's
// rule table.
func (r *CouponRepo) List(ctx context.Context) ([]domain.Coupon, error) {
	const op = "postgres.CouponRepo.List"

	db := r.handle()

	rows, err := db.Query(ctx,
		`SELECT `+couponColumns+` FROM coupons ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	defer rows.Close()

	var out []domain.Coupon
	for rows.Next() {
		c, err := scanCoupon(rows)
		if err != nil {
			return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return out, nil
}

func (r *CouponRepo) Create(ctx context.Context, c *domain.Coupon) (int64, error) {
	const op = "postgres.CouponRepo.Create"

	db := r.handle()

	var id int64
	err := db.QueryRow(ctx,
		`INSERT INTO coupons(code, discount, kind, min_amount, max_discount,
			description, active, expires_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		 RETURNING id`,
		strings.ToUpper(c.Code), c.Discount, c.Kind, c.MinAmount,
		c.MaxDiscount, c.Description, c.Active, c.ExpiresAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return id, nil
}

func (r *CouponRepo) Update(ctx context.Context, c *domain.Coupon) error {
	const op = "postgres.CouponRepo.Update"

	db := r.handle()

	tag, err := db.Exec(ctx,
		`UPDATE coupons SET
			code = $2, discount = $3, kind = $4, min_amount = $5,
			max_discount = $6, description = $7, active = $8, expires_at = $9
		 WHERE id = $1`,
		c.ID, strings.ToUpper(c.Code), c.Discount, c.Kind, c.MinAmount,
		c.MaxDiscount, c.Description, c.Active, c.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s:%w", op, translateDBErr(pgx.ErrNoRows))
	}

	return nil
}

func (r *CouponRepo) Delete(ctx context.Context, id int64) error {
	const op = "postgres.CouponRepo.Delete"

	db := r.handle()

	tag, err := db.Exec(ctx, `DELETE FROM coupons WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s:%w", op, translateDBErr(pgx.ErrNoRows))
	}

	return nil
}

func scanCoupon(row pgx.Row) (*domain.Coupon, error) {
	var c domain.Coupon
	var maxDiscount *float64
	var description *string

	err := row.Scan(
		&c.ID, &c.Code, &c.Discount, &c.Kind, &c.MinAmount, &maxDiscount,
		&description, &c.Active, &c.ExpiresAt,
	)
	if err != nil {
		return nil, err
	}

	if maxDiscount != nil {
		c.MaxDiscount = *maxDiscount
	}
	if description != nil {
		c.Description = *description
	}

	return &c, nil
}
