package redisclient

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carepath/scheduling/internal/schedule"
)

func testRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func sampleSchedule(t *testing.T) *schedule.DoctorSchedule {
	t.Helper()
	start, err := schedule.ParseTimeOfDay("09:00")
	require.NoError(t, err)
	end, err := schedule.ParseTimeOfDay("12:00")
	require.NoError(t, err)
	return &schedule.DoctorSchedule{
		DoctorID:            uuid.New(),
		SlotDurationMinutes: 30,
		WeeklyAvailability: schedule.WeeklyAvailability{
			"monday": {{Start: start, End: end}},
		},
		UnavailableDates:   []string{"2025-12-25"},
		BookingHorizonDays: 14,
		LeadTimeHours:      2,
	}
}

func TestScheduleCacheRoundtrip(t *testing.T) {
	_, client := testRedis(t)
	cache := NewScheduleCache(client, time.Minute)

	sched := sampleSchedule(t)
	require.NoError(t, cache.Set(context.Background(), sched))

	got, err := cache.Get(context.Background(), sched.DoctorID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, sched.DoctorID, got.DoctorID)
	assert.Equal(t, sched.SlotDurationMinutes, got.SlotDurationMinutes)
	assert.Equal(t, sched.UnavailableDates, got.UnavailableDates)

	intervals := got.WeeklyAvailability.Intervals("monday")
	require.Len(t, intervals, 1)
	assert.Equal(t, "09:00", intervals[0].Start.String())
}

func TestScheduleCacheMissIsNilNil(t *testing.T) {
	_, client := testRedis(t)
	cache := NewScheduleCache(client, time.Minute)

	got, err := cache.Get(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestScheduleCacheInvalidate(t *testing.T) {
	_, client := testRedis(t)
	cache := NewScheduleCache(client, time.Minute)

	sched := sampleSchedule(t)
	require.NoError(t, cache.Set(context.Background(), sched))
	require.NoError(t, cache.Invalidate(context.Background(), sched.DoctorID))

	got, err := cache.Get(context.Background(), sched.DoctorID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestScheduleCacheEntriesExpire(t *testing.T) {
	mr, client := testRedis(t)
	cache := NewScheduleCache(client, time.Minute)

	sched := sampleSchedule(t)
	require.NoError(t, cache.Set(context.Background(), sched))

	mr.FastForward(2 * time.Minute)

	got, err := cache.Get(context.Background(), sched.DoctorID)
	require.NoError(t, err)
	assert.Nil(t, got)
}
