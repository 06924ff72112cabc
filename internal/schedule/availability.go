package schedule

import "time"

// AvailableDays returns the ISO date strings a patient may pick on the
// calendar: every day from today through today+booking_horizon_days whose
// weekday has working intervals and which the doctor has not blocked out.
// The result is in chronological order.
//
// The set is advisory for calendar highlighting; slot-level availability for
// a chosen day is always derived separately with SlotsForDay, using the same
// template, so the two views cannot drift apart.
func AvailableDays(sched *DoctorSchedule, today time.Time) []string {
	var days []string
	start := startOfDay(today)
	for i := 0; i <= sched.BookingHorizonDays; i++ {
		d := start.AddDate(0, 0, i)
		if len(sched.WeeklyAvailability.Intervals(DayName(d))) == 0 {
			continue
		}
		ds := d.Format(DateLayout)
		if sched.IsUnavailableOn(ds) {
			continue
		}
		days = append(days, ds)
	}
	return days
}

// SlotView is one presentable slot on a selected day. TooSoon slots are
// shown but cannot be booked: they start before now + lead time.
type SlotView struct {
	Start   string `json:"start"`
	End     string `json:"end"`
	TooSoon bool   `json:"too_soon,omitempty"`
}

// GroupedSlots buckets a day's open slots by time of day for display.
type GroupedSlots struct {
	Morning   []SlotView `json:"morning"`
	Afternoon []SlotView `json:"afternoon"`
	Evening   []SlotView `json:"evening"`
}

// Total counts slots across all buckets.
func (g GroupedSlots) Total() int {
	return len(g.Morning) + len(g.Afternoon) + len(g.Evening)
}

// SlotsForDay computes the open slots of one calendar day. A potential slot
// is dropped when its wall-clock time matches a booked appointment's
// wall-clock time on that day; the comparison deliberately ignores the date
// and zone representation of the booked instant. Remaining slots inside the
// lead-time window are kept but flagged TooSoon.
func SlotsForDay(sched *DoctorSchedule, date time.Time, booked []time.Time, now time.Time) GroupedSlots {
	bookedClock := make(map[string]struct{}, len(booked))
	for _, b := range booked {
		bookedClock[b.In(date.Location()).Format(ClockLayout)] = struct{}{}
	}

	cutoff := now.Add(time.Duration(sched.LeadTimeHours) * time.Hour)

	var g GroupedSlots
	intervals := sched.WeeklyAvailability.Intervals(DayName(date))
	for _, t := range DaySlotTimes(intervals, sched.SlotDurationMinutes) {
		if _, taken := bookedClock[t.String()]; taken {
			continue
		}
		sv := SlotView{
			Start:   t.String(),
			End:     t.Add(sched.SlotDurationMinutes).String(),
			TooSoon: t.At(date).Before(cutoff),
		}
		switch h := t.Hour(); {
		case h < 12:
			g.Morning = append(g.Morning, sv)
		case h < 17:
			g.Afternoon = append(g.Afternoon, sv)
		default:
			g.Evening = append(g.Evening, sv)
		}
	}
	return g
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
