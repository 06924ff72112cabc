package redisclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/carepath/scheduling/internal/schedule"
)

// PendingChangeStore stashes schedule proposals that were rejected with
// conflicts. The token handed back to the doctor is a durable handle: after
// cancelling the conflicted appointments they apply the stashed proposal
// instead of resubmitting the whole payload. Entries expire on a TTL; an
// expired token means the doctor starts the edit over.
type PendingChangeStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewPendingChangeStore(client *redis.Client, ttl time.Duration) *PendingChangeStore {
	return &PendingChangeStore{client: client, ttl: ttl}
}

func changeStoreKey(key string) string {
	return "schedule-change:" + key
}

func (p *PendingChangeStore) Put(ctx context.Context, key string, sched *schedule.DoctorSchedule) error {
	data, err := json.Marshal(sched)
	if err != nil {
		return fmt.Errorf("encode pending schedule change: %w", err)
	}
	if err := p.client.Set(ctx, changeStoreKey(key), data, p.ttl).Err(); err != nil {
		return fmt.Errorf("stash pending schedule change: %w", err)
	}
	return nil
}

func (p *PendingChangeStore) Get(ctx context.Context, key string) (*schedule.DoctorSchedule, error) {
	data, err := p.client.Get(ctx, changeStoreKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, schedule.ErrChangeNotFound
		}
		return nil, fmt.Errorf("load pending schedule change: %w", err)
	}

	var sched schedule.DoctorSchedule
	if err := json.Unmarshal(data, &sched); err != nil {
		return nil, fmt.Errorf("decode pending schedule change: %w", err)
	}
	return &sched, nil
}

func (p *PendingChangeStore) Delete(ctx context.Context, key string) error {
	if err := p.client.Del(ctx, changeStoreKey(key)).Err(); err != nil {
		return fmt.Errorf("delete pending schedule change: %w", err)
	}
	return nil
}
