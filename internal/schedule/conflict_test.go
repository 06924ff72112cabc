package schedule

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func upcomingAt(t *testing.T, iso string) UpcomingAppointment {
	t.Helper()
	start, err := time.Parse(time.RFC3339, iso)
	require.NoError(t, err)
	return UpcomingAppointment{ID: uuid.New(), SlotStart: start}
}

func TestDetectConflictsDateBlockedOut(t *testing.T) {
	proposed := mondayOnlySchedule(t)
	proposed.UnavailableDates = []string{"2025-08-25"}

	appt := upcomingAt(t, "2025-08-25T10:00:00Z")
	conflicted := DetectConflicts(proposed, []UpcomingAppointment{appt})

	require.Len(t, conflicted, 1)
	assert.Equal(t, appt.ID, conflicted[0].ID)
}

func TestDetectConflictsWeekdayRemoved(t *testing.T) {
	proposed := mondayOnlySchedule(t)
	proposed.WeeklyAvailability = WeeklyAvailability{
		"tuesday": {{Start: clock(t, "09:00"), End: clock(t, "12:00")}},
	}

	appt := upcomingAt(t, "2025-08-25T10:00:00Z") // a Monday
	assert.Len(t, DetectConflicts(proposed, []UpcomingAppointment{appt}), 1)
}

func TestDetectConflictsHoursNarrowed(t *testing.T) {
	proposed := mondayOnlySchedule(t)
	proposed.WeeklyAvailability = WeeklyAvailability{
		"monday": {{Start: clock(t, "09:00"), End: clock(t, "10:00")}},
	}

	kept := upcomingAt(t, "2025-08-25T09:30:00Z")
	dropped := upcomingAt(t, "2025-08-25T10:00:00Z") // 10:00 no longer generated

	conflicted := DetectConflicts(proposed, []UpcomingAppointment{kept, dropped})
	require.Len(t, conflicted, 1)
	assert.Equal(t, dropped.ID, conflicted[0].ID)
}

func TestDetectConflictsDurationChangeShiftsGrid(t *testing.T) {
	// 09:00-12:00 with 30-minute slots generates 10:00; with 45-minute
	// slots the grid is 09:00, 09:45, 10:30, 11:15 and 10:00 disappears.
	proposed := mondayOnlySchedule(t)
	proposed.SlotDurationMinutes = 45

	appt := upcomingAt(t, "2025-08-25T10:00:00Z")
	conflicted := DetectConflicts(proposed, []UpcomingAppointment{appt})

	require.Len(t, conflicted, 1)
	assert.Equal(t, appt.ID, conflicted[0].ID)
}

func TestDetectConflictsCleanProposal(t *testing.T) {
	proposed := mondayOnlySchedule(t)

	appts := []UpcomingAppointment{
		upcomingAt(t, "2025-08-25T09:00:00Z"),
		upcomingAt(t, "2025-08-25T11:30:00Z"),
		upcomingAt(t, "2025-09-01T10:00:00Z"),
	}
	assert.Empty(t, DetectConflicts(proposed, appts))
}

func TestDetectConflictsSecondsIgnored(t *testing.T) {
	proposed := mondayOnlySchedule(t)

	// Seconds on the stored start do not make a slot foreign to the grid.
	appt := upcomingAt(t, "2025-08-25T10:00:30Z")
	assert.Empty(t, DetectConflicts(proposed, []UpcomingAppointment{appt}))
}

func TestConflictErrorMessage(t *testing.T) {
	err := &ConflictError{Appointments: make([]UpcomingAppointment, 3)}
	assert.Contains(t, err.Error(), "3 upcoming appointments")
}
