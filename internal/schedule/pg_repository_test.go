package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var scheduleCols = []string{
	"doctor_id", "slot_duration_minutes", "weekly_availability",
	"unavailable_dates", "booking_horizon_days", "lead_time_hours",
	"created_at", "updated_at",
}

func newMockScheduleRepo(t *testing.T) (pgxmock.PgxPoolIface, *PgRepository) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock, NewPgRepositoryWithQuerier(mock)
}

func TestPgGetByDoctorDecodesAvailability(t *testing.T) {
	mock, repo := newMockScheduleRepo(t)

	doctorID := uuid.New()
	now := time.Now().UTC()
	availability := []byte(`{"monday":[{"start":"09:00","end":"12:00"}]}`)

	mock.ExpectQuery(`SELECT (.+) FROM doctor_schedules\s+WHERE doctor_id = \$1`).
		WithArgs(doctorID).
		WillReturnRows(pgxmock.NewRows(scheduleCols).AddRow(
			doctorID, 30, availability, []string{"2025-12-25"}, 14, 2, now, now,
		))

	got, err := repo.GetByDoctor(context.Background(), doctorID)
	require.NoError(t, err)
	assert.Equal(t, doctorID, got.DoctorID)
	assert.Equal(t, 30, got.SlotDurationMinutes)
	assert.Equal(t, []string{"2025-12-25"}, got.UnavailableDates)

	intervals := got.WeeklyAvailability.Intervals("monday")
	require.Len(t, intervals, 1)
	assert.Equal(t, "09:00", intervals[0].Start.String())
	assert.Equal(t, "12:00", intervals[0].End.String())
}

func TestPgGetByDoctorNotFound(t *testing.T) {
	mock, repo := newMockScheduleRepo(t)

	doctorID := uuid.New()
	mock.ExpectQuery(`SELECT (.+) FROM doctor_schedules`).
		WithArgs(doctorID).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByDoctor(context.Background(), doctorID)
	assert.ErrorIs(t, err, ErrScheduleNotFound)
}

func TestPgUpsertEncodesAvailability(t *testing.T) {
	mock, repo := newMockScheduleRepo(t)

	sched := mondayOnlySchedule(t)
	sched.DoctorID = uuid.New()

	mock.ExpectExec(`INSERT INTO doctor_schedules`).
		WithArgs(sched.DoctorID, sched.SlotDurationMinutes, pgxmock.AnyArg(),
			[]string{}, sched.BookingHorizonDays, sched.LeadTimeHours).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Upsert(context.Background(), sched))
	assert.NoError(t, mock.ExpectationsWereMet())
}
