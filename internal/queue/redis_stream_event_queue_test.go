package queue_test

import (
	"context"
	"plate-rescue/internal/model"
	"plate-rescue/internal/queue"
	"plate-rescue/internal/testutil"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cleanupStream(ctx context.Context, t *testing.T) {
	t.Helper()
	testutil.RequireRedis(t, testRdb)
	_ = testRdb.Del(ctx, queue.StreamKey).Err()
}

func newTestEvent(id string) *model.ReservationEvent {
	return &model.ReservationEvent{
		EventID:       id,
		Type:          model.EventConfirmed,
		ReservationID: 10,
		PlateID:       20,
		ActorID:       30,
		Quantity:      2,
		OccurredAt:    time.Date(2025, 3, 1, 18, 0, 0, 0, time.UTC),
	}
}

func TestNewRedisStreamEventQueue(t *testing.T) {
	ctx := context.Background()
	cleanupStream(ctx, t)

	t.Run("success", func(t *testing.T) {
		q, err := queue.NewRedisStreamEventQueue(ctx, testRdb, "test-consumer", nil)
		require.NoError(t, err)
		require.NotNil(t, q)
	})

	t.Run("existing group and generated consumer id", func(t *testing.T) {
		q, err := queue.NewRedisStreamEventQueue(ctx, testRdb, "", nil)
		require.NoError(t, err)
		require.NotNil(t, q)
	})
}

func TestRedisStreamEventQueue_Subscribe_deliversPublishedEvent(t *testing.T) {
	ctx := context.Background()
	cleanupStream(ctx, t)

	q, err := queue.NewRedisStreamEventQueue(ctx, testRdb, "deliver-test", nil)
	require.NoError(t, err)

	event := newTestEvent("evt-deliver")
	require.NoError(t, q.Publish(ctx, event))

	subCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	delCh, err := q.Subscribe(subCtx)
	require.NoError(t, err)

	select {
	case d, ok := <-delCh:
		require.True(t, ok)
		require.NotNil(t, d.Data)
		assert.Equal(t, event.EventID, d.Data.EventID)
		assert.Equal(t, event.Type, d.Data.Type)
		assert.Equal(t, event.PlateID, d.Data.PlateID)
		assert.Equal(t, event.Quantity, d.Data.Quantity)
		assert.True(t, event.OccurredAt.Equal(d.Data.OccurredAt))
		d.Ack()
	case <-subCtx.Done():
		t.Fatal("timeout waiting for event")
	}
}

func TestRedisStreamEventQueue_Ack_preventsRedelivery(t *testing.T) {
	ctx := context.Background()
	cleanupStream(ctx, t)

	cfg := &queue.RedisStreamConfig{
		ClaimMinIdleTime:   200 * time.Millisecond,
		ReadGroupBlockTime: 200 * time.Millisecond,
	}
	q, err := queue.NewRedisStreamEventQueue(ctx, testRdb, "ack-test", cfg)
	require.NoError(t, err)
	require.NoError(t, q.Publish(ctx, newTestEvent("evt-ack")))

	subCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	delCh, err := q.Subscribe(subCtx)
	require.NoError(t, err)

	select {
	case d := <-delCh:
		d.Ack()
	case <-subCtx.Done():
		t.Fatal("timeout waiting for event")
	}

	select {
	case d, ok := <-delCh:
		if ok && d.Data != nil && d.Data.EventID == "evt-ack" {
			t.Fatal("acked event was delivered again")
		}
	case <-time.After(time.Second):
	}

	pending, err := testRdb.XPending(ctx, queue.StreamKey, queue.ConsumerGroupName).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(0), pending.Count)
}

func TestRedisStreamEventQueue_NackRequeue_redeliversAfterIdle(t *testing.T) {
	ctx := context.Background()
	cleanupStream(ctx, t)

	cfg := &queue.RedisStreamConfig{
		ClaimMinIdleTime:   200 * time.Millisecond,
		ReadGroupBlockTime: 500 * time.Millisecond,
	}
	q, err := queue.NewRedisStreamEventQueue(ctx, testRdb, "nack-requeue-test", cfg)
	require.NoError(t, err)
	require.NoError(t, q.Publish(ctx, newTestEvent("evt-requeue")))

	subCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	delCh, err := q.Subscribe(subCtx)
	require.NoError(t, err)

	select {
	case d := <-delCh:
		d.Nack(true)
	case <-subCtx.Done():
		t.Fatal("timeout waiting for first delivery")
	}

	select {
	case d, ok := <-delCh:
		require.True(t, ok)
		assert.Equal(t, "evt-requeue", d.Data.EventID)
		d.Ack()
	case <-subCtx.Done():
		t.Fatal("nacked event was not redelivered")
	}
}

func TestRedisStreamEventQueue_DropsUndecodableEntries(t *testing.T) {
	ctx := context.Background()
	cleanupStream(ctx, t)

	q, err := queue.NewRedisStreamEventQueue(ctx, testRdb, "garbage-test", &queue.RedisStreamConfig{
		ReadGroupBlockTime: 200 * time.Millisecond,
	})
	require.NoError(t, err)

	require.NoError(t, testRdb.XAdd(ctx, &redis.XAddArgs{
		Stream: queue.StreamKey,
		Values: map[string]interface{}{"event": "{not json"},
	}).Err())
	require.NoError(t, q.Publish(ctx, newTestEvent("evt-after-garbage")))

	subCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	delCh, err := q.Subscribe(subCtx)
	require.NoError(t, err)

	select {
	case d := <-delCh:
		assert.Equal(t, "evt-after-garbage", d.Data.EventID)
		d.Ack()
	case <-subCtx.Done():
		t.Fatal("timeout waiting for valid event")
	}
}

func TestRedisStreamEventQueue_Subscribe_ctxCancel_closesChannel(t *testing.T) {
	ctx := context.Background()
	cleanupStream(ctx, t)

	q, err := queue.NewRedisStreamEventQueue(ctx, testRdb, "cancel-test", nil)
	require.NoError(t, err)

	subCtx, cancel := context.WithCancel(ctx)
	delCh, err := q.Subscribe(subCtx)
	require.NoError(t, err)

	cancel()
	select {
	case _, ok := <-delCh:
		assert.False(t, ok)
	case <-time.After(3 * time.Second):
		t.Fatal("channel not closed after cancel")
	}
}
