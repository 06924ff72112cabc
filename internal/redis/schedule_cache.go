package redisclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/carepath/scheduling/internal/schedule"
)

// ScheduleCache is a read-through cache of doctor schedules. Entries expire
// on a TTL and are invalidated eagerly whenever a schedule commits, so a
// stale read can only ever serve the previous template for at most the TTL
// after a crashed invalidation.
type ScheduleCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewScheduleCache(client *redis.Client, ttl time.Duration) *ScheduleCache {
	return &ScheduleCache{client: client, ttl: ttl}
}

func scheduleKey(doctorID uuid.UUID) string {
	return "schedule:" + doctorID.String()
}

// Get returns the cached schedule, or (nil, nil) on a miss.
func (c *ScheduleCache) Get(ctx context.Context, doctorID uuid.UUID) (*schedule.DoctorSchedule, error) {
	data, err := c.client.Get(ctx, scheduleKey(doctorID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("cache get schedule: %w", err)
	}

	var sched schedule.DoctorSchedule
	if err := json.Unmarshal(data, &sched); err != nil {
		return nil, fmt.Errorf("decode cached schedule: %w", err)
	}
	return &sched, nil
}

func (c *ScheduleCache) Set(ctx context.Context, sched *schedule.DoctorSchedule) error {
	data, err := json.Marshal(sched)
	if err != nil {
		return fmt.Errorf("encode schedule: %w", err)
	}
	if err := c.client.Set(ctx, scheduleKey(sched.DoctorID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set schedule: %w", err)
	}
	return nil
}

func (c *ScheduleCache) Invalidate(ctx context.Context, doctorID uuid.UUID) error {
	if err := c.client.Del(ctx, scheduleKey(doctorID)).Err(); err != nil {
		return fmt.Errorf("cache invalidate schedule: %w", err)
	}
	return nil
}
