package schedule

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// querier is the slice of pgxpool.Pool the repository uses; pgxmock
// satisfies it in tests.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type PgRepository struct {
	pool querier
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

// NewPgRepositoryWithQuerier allows injecting mocks for tests.
func NewPgRepositoryWithQuerier(q querier) *PgRepository {
	return &PgRepository{pool: q}
}

func (r *PgRepository) GetByDoctor(ctx context.Context, doctorID uuid.UUID) (*DoctorSchedule, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT doctor_id, slot_duration_minutes, weekly_availability,
		       unavailable_dates, booking_horizon_days, lead_time_hours,
		       created_at, updated_at
		FROM doctor_schedules
		WHERE doctor_id = $1
	`, doctorID)
	return scanSchedule(row)
}

func (r *PgRepository) Upsert(ctx context.Context, sched *DoctorSchedule) error {
	availability, err := json.Marshal(sched.WeeklyAvailability)
	if err != nil {
		return fmt.Errorf("encode weekly availability: %w", err)
	}

	dates := sched.UnavailableDates
	if dates == nil {
		dates = []string{}
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO doctor_schedules
			(doctor_id, slot_duration_minutes, weekly_availability,
			 unavailable_dates, booking_horizon_days, lead_time_hours,
			 created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now(), now())
		ON CONFLICT (doctor_id) DO UPDATE SET
			slot_duration_minutes = EXCLUDED.slot_duration_minutes,
			weekly_availability   = EXCLUDED.weekly_availability,
			unavailable_dates     = EXCLUDED.unavailable_dates,
			booking_horizon_days  = EXCLUDED.booking_horizon_days,
			lead_time_hours       = EXCLUDED.lead_time_hours,
			updated_at            = now()
	`, sched.DoctorID, sched.SlotDurationMinutes, availability,
		dates, sched.BookingHorizonDays, sched.LeadTimeHours)
	if err != nil {
		return fmt.Errorf("upsert doctor schedule: %w", err)
	}
	return nil
}

func scanSchedule(row pgx.Row) (*DoctorSchedule, error) {
	var s DoctorSchedule
	var availability []byte

	err := row.Scan(
		&s.DoctorID,
		&s.SlotDurationMinutes,
		&availability,
		&s.UnavailableDates,
		&s.BookingHorizonDays,
		&s.LeadTimeHours,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrScheduleNotFound
		}
		return nil, err
	}

	if err := json.Unmarshal(availability, &s.WeeklyAvailability); err != nil {
		return nil, fmt.Errorf("decode weekly availability: %w", err)
	}

	return &s, nil
}
