package schedule

import (
	"fmt"
	"time"
)

// ConflictError reports that a proposed schedule would strand existing
// appointments. The change is not persisted; ChangeToken identifies the
// stashed proposal so it can be applied once the appointments are cancelled.
type ConflictError struct {
	Appointments []UpcomingAppointment
	ChangeToken  string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("proposed schedule conflicts with %d upcoming appointments", len(e.Appointments))
}

// DetectConflicts checks every upcoming appointment against a proposed
// schedule. An appointment conflicts when its date is newly blocked out, or
// when regenerating its weekday's slots under the proposed template and slot
// duration no longer produces its exact wall-clock start time.
func DetectConflicts(proposed *DoctorSchedule, upcoming []UpcomingAppointment) []UpcomingAppointment {
	var conflicted []UpcomingAppointment
	for _, appt := range upcoming {
		if conflictsWith(proposed, appt.SlotStart) {
			conflicted = append(conflicted, appt)
		}
	}
	return conflicted
}

func conflictsWith(proposed *DoctorSchedule, start time.Time) bool {
	if proposed.IsUnavailableOn(start.Format(DateLayout)) {
		return true
	}

	clock := start.Format(ClockLayout)
	intervals := proposed.WeeklyAvailability.Intervals(DayName(start))
	for _, t := range DaySlotTimes(intervals, proposed.SlotDurationMinutes) {
		if t.String() == clock {
			return false
		}
	}
	return true
}
