package redisclient

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carepath/scheduling/internal/schedule"
)

func TestPendingChangeRoundtrip(t *testing.T) {
	_, client := testRedis(t)
	store := NewPendingChangeStore(client, time.Minute)

	sched := sampleSchedule(t)
	key := sched.DoctorID.String() + ":token-1"
	require.NoError(t, store.Put(context.Background(), key, sched))

	got, err := store.Get(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, sched.DoctorID, got.DoctorID)
	assert.Equal(t, sched.SlotDurationMinutes, got.SlotDurationMinutes)
}

func TestPendingChangeMissingToken(t *testing.T) {
	_, client := testRedis(t)
	store := NewPendingChangeStore(client, time.Minute)

	_, err := store.Get(context.Background(), "unknown")
	assert.ErrorIs(t, err, schedule.ErrChangeNotFound)
}

func TestPendingChangeDeleteConsumesStash(t *testing.T) {
	_, client := testRedis(t)
	store := NewPendingChangeStore(client, time.Minute)

	sched := sampleSchedule(t)
	key := sched.DoctorID.String() + ":token-2"
	require.NoError(t, store.Put(context.Background(), key, sched))
	require.NoError(t, store.Delete(context.Background(), key))

	_, err := store.Get(context.Background(), key)
	assert.ErrorIs(t, err, schedule.ErrChangeNotFound)
}

func TestPendingChangeExpires(t *testing.T) {
	mr, client := testRedis(t)
	store := NewPendingChangeStore(client, time.Minute)

	sched := sampleSchedule(t)
	key := sched.DoctorID.String() + ":token-3"
	require.NoError(t, store.Put(context.Background(), key, sched))

	mr.FastForward(2 * time.Minute)

	_, err := store.Get(context.Background(), key)
	assert.ErrorIs(t, err, schedule.ErrChangeNotFound)
}
