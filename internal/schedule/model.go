package schedule

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Weekday keys used in WeeklyAvailability, in calendar order.
var WeekdayNames = []string{
	"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday",
}

// DayName returns the lowercase English weekday name for t.
func DayName(t time.Time) string {
	return strings.ToLower(t.Weekday().String())
}

const (
	// DateLayout is the ISO calendar-date form used for unavailable dates
	// and day-availability keys.
	DateLayout = "2006-01-02"
	// ClockLayout is the wall-clock form slots are compared by. Seconds are
	// never part of a slot identity.
	ClockLayout = "15:04"
)

// TimeOfDay is a wall-clock time expressed as minutes since midnight.
type TimeOfDay int

// ParseTimeOfDay parses an "HH:MM" string.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse(ClockLayout, s)
	if err != nil {
		return 0, fmt.Errorf("parse time of day %q: %w", s, err)
	}
	return TimeOfDay(t.Hour()*60 + t.Minute()), nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// Hour returns the hour component, 0-23 for in-range values.
func (t TimeOfDay) Hour() int { return int(t) / 60 }

// Add returns the time of day m minutes later. It can run past midnight;
// callers that care clamp or compare against an interval end.
func (t TimeOfDay) Add(m int) TimeOfDay { return t + TimeOfDay(m) }

// At anchors the time of day on the given calendar date, in date's location.
func (t TimeOfDay) At(date time.Time) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, t.Hour(), int(t)%60, 0, 0, date.Location())
}

func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// TimeInterval is one working block within a weekday, e.g. 09:00-12:00.
type TimeInterval struct {
	Start TimeOfDay `json:"start"`
	End   TimeOfDay `json:"end"`
}

// WeeklyAvailability maps lowercase weekday names to working intervals.
// Intervals are not required to be sorted or disjoint; an absent or empty
// entry means the doctor does not work that weekday.
type WeeklyAvailability map[string][]TimeInterval

// Intervals returns the intervals configured for a weekday name.
func (w WeeklyAvailability) Intervals(day string) []TimeInterval {
	return w[day]
}

// DoctorSchedule is a doctor's recurring template plus booking rules. It is
// replaced as a whole document on update.
type DoctorSchedule struct {
	DoctorID            uuid.UUID          `json:"doctor_id"`
	SlotDurationMinutes int                `json:"slot_duration_minutes"`
	WeeklyAvailability  WeeklyAvailability `json:"weekly_availability"`
	UnavailableDates    []string           `json:"unavailable_dates"`
	BookingHorizonDays  int                `json:"booking_horizon_days"`
	LeadTimeHours       int                `json:"lead_time_hours"`
	CreatedAt           time.Time          `json:"created_at,omitempty"`
	UpdatedAt           time.Time          `json:"updated_at,omitempty"`
}

// IsUnavailableOn reports whether the ISO date string is blocked outright.
func (s *DoctorSchedule) IsUnavailableOn(date string) bool {
	for _, d := range s.UnavailableDates {
		if d == date {
			return true
		}
	}
	return false
}

// Validate checks the fields a doctor submits on a schedule update. The
// weekly template itself is intentionally loose (overlapping or unsorted
// intervals are accepted), only structurally invalid input is rejected.
func (s *DoctorSchedule) Validate() error {
	if s.SlotDurationMinutes <= 0 {
		return ErrInvalidSlotDuration
	}
	if s.BookingHorizonDays < 0 {
		return fmt.Errorf("%w: booking_horizon_days must not be negative", ErrInvalidSchedule)
	}
	if s.LeadTimeHours < 0 {
		return fmt.Errorf("%w: lead_time_hours must not be negative", ErrInvalidSchedule)
	}
	for day := range s.WeeklyAvailability {
		if !validWeekday(day) {
			return fmt.Errorf("%w: unknown weekday %q", ErrInvalidSchedule, day)
		}
	}
	for _, d := range s.UnavailableDates {
		if _, err := time.Parse(DateLayout, d); err != nil {
			return fmt.Errorf("%w: bad unavailable date %q", ErrInvalidSchedule, d)
		}
	}
	return nil
}

func validWeekday(day string) bool {
	for _, name := range WeekdayNames {
		if day == name {
			return true
		}
	}
	return false
}
