package schedule

import "iter"

// SlotTimes yields slot start times from start, stepping by durationMinutes,
// stopping strictly before end. The sequence is lazy and can be ranged over
// more than once. A slot whose start fits but whose end would run past the
// interval is still yielded; intervals are not truncated to a whole number of
// slots. start >= end yields nothing.
//
// durationMinutes must be positive; callers validate via
// DoctorSchedule.Validate before generating.
func SlotTimes(start, end TimeOfDay, durationMinutes int) iter.Seq[TimeOfDay] {
	return func(yield func(TimeOfDay) bool) {
		for t := start; t < end; t = t.Add(durationMinutes) {
			if !yield(t) {
				return
			}
		}
	}
}

// DaySlotTimes flattens SlotTimes across all intervals configured for one
// weekday, in interval order then chronological order within each interval.
// Overlapping intervals produce duplicate (and globally unsorted) slots; that
// mirrors how schedules have always been interpreted and is left as is.
func DaySlotTimes(intervals []TimeInterval, durationMinutes int) []TimeOfDay {
	var out []TimeOfDay
	for _, iv := range intervals {
		for t := range SlotTimes(iv.Start, iv.End, durationMinutes) {
			out = append(out, t)
		}
	}
	return out
}
