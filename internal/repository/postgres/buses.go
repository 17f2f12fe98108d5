package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/bookmyseat/bms-go/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BusRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *BusRepo) With(db DB) *BusRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *BusRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

// SearchFilter carries the optional query parameters of GET /api/buses.
// Zero values mean "not filtered".
type SearchFilter struct {
	From    string
	To      string
	Date    *time.Time
	Type    string
	MinFare float64
	MaxFare float64
}

const busColumns = `id, name, from_city, to_city, departure, arrival, fare,
	total_seats, seat_layout, bus_type, operator, bus_number, rating,
	amenities, booked_seats, delay_minutes, delay_reason, delayed_at`

// Search lists buses matching the filter, soonest departure first.
func (r *BusRepo) Search(ctx context.Context, f SearchFilter) ([]domain.Bus, error) {
	const op = "postgres.BusRepo.Search"

	db := r.handle()

	query := `SELECT ` + busColumns + ` FROM buses WHERE 1=1`
	var args []any

	addArg := func(clause string, v any) {
		args = append(args, v)
		query += fmt.Sprintf(clause, len(args))
	}

	if f.From != "" {
		addArg(" AND from_city ILIKE $%d", f.From)
	}
	if f.To != "" {
		addArg(" AND to_city ILIKE $%d", f.To)
	}
	if f.Date != nil {
		addArg(" AND departure::date = $%d::date", *f.Date)
	}
	if f.Type != "" {
		addArg(" AND bus_type = $%d", f.Type)
	}
	if f.MinFare > 0 {
		addArg(" AND fare >= $%d", f.MinFare)
	}
	if f.MaxFare > 0 {
		addArg(" AND fare <= $%d", f.MaxFare)
	}

	query += " ORDER BY departure"

	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	defer rows.Close()

	var out []domain.Bus
	for rows.Next() {
		b, err := scanBus(rows)
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

// Get retrieves one bus by id.
func (r *BusRepo) Get(ctx context.Context, id string) (*domain.Bus, error) {
	const op = "postgres.BusRepo.Get"

	db := r.handle()

	b, err := scanBus(db.QueryRow(ctx,
		`SELECT `+busColumns+` FROM buses WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return b, nil
}

// GetForUpdate locks the bus row for the duration of the enclosing
// transaction. Used by the booking path to serialize seat allocation.
func (r *BusRepo) GetForUpdate(ctx context.Context, id string) (*domain.Bus, error) {
	const op = "postgres.BusRepo.GetForUpdate"

	db := r.handle()

	b, err := scanBus(db.QueryRow(ctx,
		`SELECT `+busColumns+` FROM buses WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return b, nil
}

// AppendBookedSeats grows the booked set atomically. Callers verify seat
// validity and availability under the same transaction first.
func (r *BusRepo) AppendBookedSeats(ctx context.Context, id string, seats []string) error {
	const op = "postgres.BusRepo.AppendBookedSeats"

	db := r.handle()

	tag, err := db.Exec(ctx,
		`UPDATE buses SET booked_seats = booked_seats || $2 WHERE id = $1`,
		id, seats,
	)
	if err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s:%w", op, translateDBErr(pgx.ErrNoRows))
	}

	return nil
}

// RemoveBookedSeats returns cancelled seats to the pool.
func (r *BusRepo) RemoveBookedSeats(ctx context.Context, id string, seats []string) error {
	const op = "postgres.BusRepo.RemoveBookedSeats"

	db := r.handle()

	_, err := db.Exec(ctx,
		`UPDATE buses
		    SET booked_seats = ARRAY(
		        SELECT s FROM unnest(booked_seats) AS s WHERE s <> ALL($2)
		    )
		  WHERE id = $1`,
		id, seats,
	)
	if err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return nil
}

func (r *BusRepo) Create(ctx context.Context, b *domain.Bus) error {
	const op = "postgres.BusRepo.Create"

	db := r.handle()

	_, err := db.Exec(ctx,
		`INSERT INTO buses(
			id, name, from_city, to_city, departure, arrival, fare,
			total_seats, seat_layout, bus_type, operator, bus_number, rating,
			amenities, booked_seats)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`,
		b.ID, b.Name, b.From, b.To, b.Departure, b.Arrival, b.Fare,
		b.TotalSeats, b.SeatLayout, b.Type, b.Operator, b.BusNumber, b.Rating,
		b.Amenities, b.BookedSeats,
	)
	if err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return nil
}

func (r *BusRepo) Update(ctx context.Context, b *domain.Bus) error {
	const op = "postgres.BusRepo.Update"

	db := r.handle()

	tag, err := db.Exec(ctx,
		`UPDATE buses SET
			name = $2, from_city = $3, to_city = $4, departure = $5,
			arrival = $6, fare = $7, total_seats = $8, seat_layout = $9,
			bus_type = $10, operator = $11, bus_number = $12, rating = $13,
			amenities = $14
		 WHERE id = $1`,
		b.ID, b.Name, b.From, b.To, b.Departure, b.Arrival, b.Fare,
		b.TotalSeats, b.SeatLayout, b.Type, b.Operator, b.BusNumber, b.Rating,
		b.Amenities,
	)
	if err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s:%w", op, translateDBErr(pgx.ErrNoRows))
	}

	return nil
}

func (r *BusRepo) Delete(ctx context.Context, id string) error {
	const op = "postgres.BusRepo.Delete"

	db := r.handle()

	tag, err := db.Exec(ctx, `DELETE FROM buses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s:%w", op, translateDBErr(pgx.ErrNoRows))
	}

	return nil
}

// SetDelay records the delay on the bus and appends a history entry.
func (r *BusRepo) SetDelay(ctx context.Context, id string, minutes int, reason string) error {
	const op = "postgres.BusRepo.SetDelay"

	db := r.handle()

	tag, err := db.Exec(ctx,
		`UPDATE buses
		    SET delay_minutes = $2, delay_reason = $3, delayed_at = now()
		  WHERE id = $1`,
		id, minutes, reason,
	)
	if err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s:%w", op, translateDBErr(pgx.ErrNoRows))
	}

	_, err = db.Exec(ctx,
		`INSERT INTO delays(bus_id, bus_name, delay_minutes, reason, cleared)
		 SELECT id, name, $2, $3, false FROM buses WHERE id = $1`,
		id, minutes, reason,
	)
	if err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return nil
}

func (r *BusRepo) ClearDelay(ctx context.Context, id string) error {
	const op = "postgres.BusRepo.ClearDelay"

	db := r.handle()

	tag, err := db.Exec(ctx,
		`UPDATE buses
		    SET delay_minutes = NULL, delay_reason = NULL, delayed_at = NULL
		  WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s:%w", op, translateDBErr(pgx.ErrNoRows))
	}

	_, err = db.Exec(ctx,
		`UPDATE delays SET cleared = true WHERE bus_id = $1 AND cleared = false`,
		id,
	)
	if err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return nil
}

func (r *BusRepo) ListDelays(ctx context.Context, limit int) ([]domain.DelayRecord, error) {
	const op = "postgres.BusRepo.ListDelays"

	db := r.handle()

	rows, err := db.Query(ctx,
		`SELECT id, bus_id, bus_name, delay_minutes, reason, cleared, created_at
		   FROM delays
		  ORDER BY created_at DESC
		  LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	defer rows.Close()

	var out []domain.DelayRecord
	for rows.Next() {
		var d domain.DelayRecord
		if err := rows.Scan(&d.ID, &d.BusID, &d.BusName, &d.Minutes, &d.Reason, &d.Cleared, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return out, nil
}

func scanBus(row pgx.Row) (*domain.Bus, error) {
	var b domain.Bus
	var delayMinutes *int
	var delayReason *string
	var delayedAt *time.Time

	err := row.Scan(
		&b.ID, &b.Name, &b.From, &b.To, &b.Departure, &b.Arrival, &b.Fare,
		&b.TotalSeats, &b.SeatLayout, &b.Type, &b.Operator, &b.BusNumber,
		&b.Rating, &b.Amenities, &b.BookedSeats,
		&delayMinutes, &delayReason, &delayedAt,
	)
	if err != nil {
		return nil, err
	}

	if delayMinutes != nil && *delayMinutes > 0 {
		b.Delay = &domain.DelayInfo{Minutes: *delayMinutes}
		if delayReason != nil {
			b.Delay.Reason = *delayReason
		}
		if delayedAt != nil {
			b.Delay.UpdatedAt = *delayedAt
		}
	}

	return &b, nil
}
