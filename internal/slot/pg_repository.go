package slot

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func scanSlot(row pgx.Row) (*Slot, error) {
	var (
		s   Slot
		tod pgtype.Time
	)

	if err := row.Scan(&s.ID, &s.Date, &tod, &s.Status); err != nil {
		return nil, err
	}

	s.Date = time.Date(s.Date.Year(), s.Date.Month(), s.Date.Day(), 0, 0, 0, 0, time.UTC)
	s.TimeOfDay = time.Duration(tod.Microseconds) * time.Microsecond
	return &s, nil
}

// wallClock strips the zone so the value compares against the zone-less
// slot_date + slot_time column expression.
func wallClock(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

func timeParam(d time.Duration) pgtype.Time {
	return pgtype.Time{Microseconds: d.Microseconds(), Valid: true}
}

func (r *PgRepository) ListAvailable(ctx context.Context, now time.Time) ([]Slot, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, slot_date, slot_time, status
		FROM available_slots
		WHERE status = 'available'
		  AND (slot_date + slot_time) > $1::timestamp
		ORDER BY slot_date, slot_time
	`, wallClock(now))
	if err != nil {
		return nil, fmt.Errorf("query available slots: %w", err)
	}
	defer rows.Close()

	var result []Slot
	for rows.Next() {
		s, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan slot: %w", err)
		}
		result = append(result, *s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate available slots: %w", err)
	}

	return result, nil
}

func (r *PgRepository) IsAvailable(ctx context.Context, date time.Time, timeOfDay time.Duration, now time.Time) (bool, error) {
	var available bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1
			FROM available_slots
			WHERE slot_date = $1::date
			  AND slot_time = $2::time
			  AND status = 'available'
			  AND (slot_date + slot_time) > $3::timestamp
		)
	`, date, timeParam(timeOfDay), wallClock(now)).Scan(&available)
	if err != nil {
		return false, fmt.Errorf("check slot availability: %w", err)
	}
	return available, nil
}
