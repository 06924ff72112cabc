package schedule

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeOfDay(t *testing.T) {
	tod, err := ParseTimeOfDay("09:30")
	require.NoError(t, err)
	assert.Equal(t, "09:30", tod.String())
	assert.Equal(t, 9, tod.Hour())

	_, err = ParseTimeOfDay("9:30am")
	assert.Error(t, err)
	_, err = ParseTimeOfDay("25:00")
	assert.Error(t, err)
}

func TestTimeOfDayAt(t *testing.T) {
	date := time.Date(2025, 8, 18, 0, 0, 0, 0, time.UTC)
	got := clock(t, "10:30").At(date)
	assert.Equal(t, time.Date(2025, 8, 18, 10, 30, 0, 0, time.UTC), got)
}

func TestWeeklyAvailabilityJSONRoundtrip(t *testing.T) {
	raw := `{"monday":[{"start":"09:00","end":"12:00"},{"start":"14:00","end":"17:00"}],"tuesday":[]}`

	var w WeeklyAvailability
	require.NoError(t, json.Unmarshal([]byte(raw), &w))

	require.Len(t, w.Intervals("monday"), 2)
	assert.Equal(t, "09:00", w.Intervals("monday")[0].Start.String())
	assert.Empty(t, w.Intervals("tuesday"))
	assert.Empty(t, w.Intervals("sunday"))

	out, err := json.Marshal(w["monday"][0])
	require.NoError(t, err)
	assert.JSONEq(t, `{"start":"09:00","end":"12:00"}`, string(out))
}

func TestDayName(t *testing.T) {
	// 2025-08-18 is a Monday.
	assert.Equal(t, "monday", DayName(time.Date(2025, 8, 18, 12, 0, 0, 0, time.UTC)))
	assert.Equal(t, "sunday", DayName(time.Date(2025, 8, 24, 0, 0, 0, 0, time.UTC)))
}

func TestScheduleValidate(t *testing.T) {
	valid := func() *DoctorSchedule {
		return &DoctorSchedule{
			SlotDurationMinutes: 30,
			WeeklyAvailability: WeeklyAvailability{
				"monday": {{Start: clock(t, "09:00"), End: clock(t, "12:00")}},
			},
			UnavailableDates:   []string{"2025-08-25"},
			BookingHorizonDays: 7,
			LeadTimeHours:      2,
		}
	}

	assert.NoError(t, valid().Validate())

	s := valid()
	s.SlotDurationMinutes = 0
	assert.ErrorIs(t, s.Validate(), ErrInvalidSlotDuration)

	s = valid()
	s.SlotDurationMinutes = -15
	assert.ErrorIs(t, s.Validate(), ErrInvalidSlotDuration)

	s = valid()
	s.BookingHorizonDays = -1
	assert.ErrorIs(t, s.Validate(), ErrInvalidSchedule)

	s = valid()
	s.WeeklyAvailability["funday"] = nil
	assert.ErrorIs(t, s.Validate(), ErrInvalidSchedule)

	s = valid()
	s.UnavailableDates = []string{"25-08-2025"}
	assert.ErrorIs(t, s.Validate(), ErrInvalidSchedule)
}
