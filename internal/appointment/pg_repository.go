package appointment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carepath/scheduling/internal/schedule"
)

// uniqueViolation is the Postgres error code raised by the partial unique
// index on (doctor_id, slot_start_time) for non-cancelled rows.
const uniqueViolation = "23505"

// querier is the slice of pgxpool.Pool the repository uses; pgxmock
// satisfies it in tests.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
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

const appointmentColumns = `
	id, doctor_id, patient_id, slot_start_time, slot_end_time,
	reason_for_visit, status, created_at, updated_at`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	var reason *string

	err := row.Scan(
		&a.ID,
		&a.DoctorID,
		&a.PatientID,
		&a.SlotStartTime,
		&a.SlotEndTime,
		&reason,
		&a.Status,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	a.ReasonForVisit = reason
	return &a, nil
}

func (r *PgRepository) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE id = $1
	`, id)
	return scanAppointment(row)
}

func (r *PgRepository) GetCancelledForSlot(ctx context.Context, doctorID uuid.UUID, slotStart time.Time) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE doctor_id = $1
		  AND slot_start_time = $2
		  AND status IN ('Cancelled by Patient', 'Cancelled by Doctor')
		LIMIT 1
	`, doctorID, slotStart)
	return scanAppointment(row)
}

func (r *PgRepository) Rebook(ctx context.Context, id, patientID uuid.UUID, reason *string) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE appointments
		SET patient_id = $2,
		    status = 'Scheduled',
		    reason_for_visit = $3,
		    created_at = now(),
		    updated_at = now()
		WHERE id = $1
		RETURNING `+appointmentColumns+`
	`, id, patientID, reason)
	return scanAppointment(row)
}

func (r *PgRepository) Insert(ctx context.Context, appt *Appointment) (*Appointment, error) {
	id := uuid.New()

	row := r.pool.QueryRow(ctx, `
		INSERT INTO appointments
			(id, doctor_id, patient_id, slot_start_time, slot_end_time,
			 reason_for_visit, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, 'Scheduled', now(), now())
		RETURNING `+appointmentColumns+`
	`, id, appt.DoctorID, appt.PatientID, appt.SlotStartTime, appt.SlotEndTime, appt.ReasonForVisit)

	created, err := scanAppointment(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, ErrSlotTaken
		}
		return nil, err
	}
	return created, nil
}

func (r *PgRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE appointments
		SET status = $2,
		    updated_at = now()
		WHERE id = $1
		  AND status = $3
		RETURNING `+appointmentColumns+`
	`, id, to, from)
	return scanAppointment(row)
}

func (r *PgRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]UserAppointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT a.id, a.doctor_id, a.patient_id, a.slot_start_time, a.slot_end_time,
		       a.reason_for_visit, a.status, a.created_at, a.updated_at,
		       CASE WHEN a.patient_id = $1 THEN a.doctor_id ELSE a.patient_id END AS counterparty_id,
		       CASE WHEN a.patient_id = $1 THEN d.name ELSE p.name END AS counterparty_name,
		       CASE WHEN a.patient_id = $1 THEN 'patient' ELSE 'doctor' END AS viewer_role
		FROM appointments a
		JOIN doctors d ON d.id = a.doctor_id
		JOIN patients p ON p.id = a.patient_id
		WHERE a.patient_id = $1 OR a.doctor_id = $1
		ORDER BY a.slot_start_time DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []UserAppointment
	for rows.Next() {
		var ua UserAppointment
		var reason *string
		err := rows.Scan(
			&ua.ID,
			&ua.DoctorID,
			&ua.PatientID,
			&ua.SlotStartTime,
			&ua.SlotEndTime,
			&reason,
			&ua.Status,
			&ua.CreatedAt,
			&ua.UpdatedAt,
			&ua.CounterpartyID,
			&ua.CounterpartyName,
			&ua.ViewerRole,
		)
		if err != nil {
			return nil, err
		}
		ua.ReasonForVisit = reason
		result = append(result, ua)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PgRepository) BookedStartTimes(ctx context.Context, doctorID uuid.UUID, dayStart, dayEnd time.Time) ([]time.Time, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT slot_start_time
		FROM appointments
		WHERE doctor_id = $1
		  AND slot_start_time >= $2
		  AND slot_start_time <= $3
		  AND status NOT IN ('Cancelled by Patient', 'Cancelled by Doctor')
	`, doctorID, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []time.Time
	for rows.Next() {
		var t time.Time
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		result = append(result, t)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// UpcomingScheduled satisfies schedule.AppointmentSource for conflict
// detection on schedule edits.
func (r *PgRepository) UpcomingScheduled(ctx context.Context, doctorID uuid.UUID, from time.Time) ([]schedule.UpcomingAppointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, slot_start_time
		FROM appointments
		WHERE doctor_id = $1
		  AND status = 'Scheduled'
		  AND slot_start_time >= $2
		ORDER BY slot_start_time
	`, doctorID, from)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []schedule.UpcomingAppointment
	for rows.Next() {
		var ua schedule.UpcomingAppointment
		if err := rows.Scan(&ua.ID, &ua.SlotStart); err != nil {
			return nil, err
		}
		result = append(result, ua)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PgRepository) FindOverdueScheduled(ctx context.Context, cutoff time.Time) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE status = 'Scheduled'
		  AND slot_end_time < $1
	`, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}
