package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bookmyseat/bms-go/internal/domain"
	"github.com/bookmyseat/bms-go/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BookingRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *BookingRepo) With(db DB) *BookingRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *BookingRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

const bookingColumns = `id, user_id, user_name, user_email, bus_id,
	bus_snapshot, seats, total_amount, discount, final_amount, method,
	pay_status, status, cancel_reason, refund_amount, refund_pct,
	cancelled_at, created_at`

// Create inserts a confirmed booking with its denormalized bus snapshot.
func (r *BookingRepo) Create(ctx context.Context, b *domain.Booking) error {
	const op = "postgres.BookingRepo.Create"

	db := r.handle()

	snapshot, err := json.Marshal(b.BusDetails)
	if err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	_, err = db.Exec(ctx,
		`INSERT INTO bookings(
			id, user_id, user_name, user_email, bus_id, bus_snapshot, seats,
			total_amount, discount, final_amount, method, pay_status, status,
			created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
		b.ID, b.UserID, b.UserName, b.UserEmail, b.BusDetails.ID, snapshot,
		b.Seats, b.Payment.TotalAmount, b.Payment.Discount,
		b.Payment.FinalAmount, b.Payment.Method, b.Payment.Status, b.Status,
		b.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return nil
}

// Get retrieves one booking by id.
func (r *BookingRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	const op = "postgres.BookingRepo.Get"

	db := r.handle()

	b, err := scanBooking(db.QueryRow(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return b, nil
}

// GetForUpdate locks the booking row for cancellation.
func (r *BookingRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	const op = "postgres.BookingRepo.GetForUpdate"

	db := r.handle()

	b, err := scanBooking(db.QueryRow(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return b, nil
}

// ListByUser lists a user's bookings, newest first.
func (r *BookingRepo) ListByUser(ctx context.Context, userID int64) ([]domain.Booking, error) {
	const op = "postgres.BookingRepo.ListByUser"

	return r.list(ctx, op,
		`SELECT `+bookingColumns+` FROM bookings
		  WHERE user_id = $1 ORDER BY created_at DESC`,
		userID,
	)
}

// ListAll lists every booking for the admin console, newest first.
func (r *BookingRepo) ListAll(ctx context.Context) ([]domain.Booking, error) {
	const op = "postgres.BookingRepo.ListAll"

	return r.list(ctx, op,
		`SELECT `+bookingColumns+` FROM bookings ORDER BY created_at DESC`)
}

// Cancel marks the booking cancelled with its refund record. Cancelling an
// already-cancelled booking is a conflict.
func (r *BookingRepo) Cancel(
	ctx context.Context,
	id uuid.UUID,
	c domain.Cancellation,
) error {
	const op = "postgres.BookingRepo.Cancel"

	db := r.handle()

	tag, err := db.Exec(ctx,
		`UPDATE bookings
		    SET status = $2, cancel_reason = $3, refund_amount = $4,
		        refund_pct = $5, cancelled_at = $6
		  WHERE id = $1 AND status <> $2`,
		id, domain.BookingCancelled, c.Reason, c.RefundAmount,
		c.RefundPercentage, c.CancelledAt,
	)
	if err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s:%w", op, repository.ErrAlreadyCancelled)
	}

	return nil
}

// ClearAll wipes the booking history and frees every booked seat.
func (r *BookingRepo) ClearAll(ctx context.Context) error {
	const op = "postgres.BookingRepo.ClearAll"

	db := r.handle()

	if _, err := db.Exec(ctx, `DELETE FROM bookings`); err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	if _, err := db.Exec(ctx, `UPDATE buses SET booked_seats = '{}'`); err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return nil
}

func (r *BookingRepo) list(ctx context.Context, op, query string, args ...any) ([]domain.Booking, error) {
	db := r.handle()

	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	defer rows.Close()

	var out []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
		}
		out = append(out, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return out, nil
}

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var (
		b            domain.Booking
		busID        string
		snapshot     []byte
		cancelReason *string
		refundAmount *float64
		refundPct    *int
		cancelledAt  *time.Time
	)

	err := row.Scan(
		&b.ID, &b.UserID, &b.UserName, &b.UserEmail, &busID, &snapshot,
		&b.Seats, &b.Payment.TotalAmount, &b.Payment.Discount,
		&b.Payment.FinalAmount, &b.Payment.Method, &b.Payment.Status,
		&b.Status, &cancelReason, &refundAmount, &refundPct, &cancelledAt,
		&b.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(snapshot, &b.BusDetails); err != nil {
		return nil, err
	}

	if cancelReason != nil {
		b.Cancellation = &domain.Cancellation{Reason: *cancelReason}
		if refundAmount != nil {
			b.Cancellation.RefundAmount = *refundAmount
		}
		if refundPct != nil {
			b.Cancellation.RefundPercentage = *refundPct
		}
		if cancelledAt != nil {
			b.Cancellation.CancelledAt = *cancelledAt
		}
	}

	return &b, nil
}
