package reliability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/carekeeper/internal/models"
	"github.com/iudanet/carekeeper/internal/syncerr"
)

func newTestQueue(cfg QueueConfig, store QueueStore) (*Queue, *fakeClock) {
	clock := newClock()
	return NewQueue(cfg, store, clock.Now, discardLogger()), clock
}

func ids(items []*models.QueueItem) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.ID())
	}
	return out
}

func TestQueue_PriorityOrder(t *testing.T) {
	q, _ := newTestQueue(DefaultQueueConfig(), nil)
	ctx := context.Background()

	for _, op := range []*models.Operation{
		upload("low", models.PriorityLow),
		upload("crisis-1", models.PriorityCrisis),
		upload("normal", models.PriorityNormal),
		upload("crisis-2", models.PriorityCrisis),
	} {
		_, err := q.Enqueue(ctx, op)
		require.NoError(t, err)
	}

	batch := q.NextBatch(10)
	assert.Equal(t, []string{"crisis-1", "crisis-2", "normal", "low"}, ids(batch))
	assert.Equal(t, 0, q.Len())
	assert.Equal(t, 4, q.Status().InFlight)
}

func TestQueue_NextBatchRespectsSize(t *testing.T) {
	q, _ := newTestQueue(DefaultQueueConfig(), nil)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		_, err := q.Enqueue(ctx, upload(id, models.PriorityNormal))
		require.NoError(t, err)
	}

	assert.Equal(t, []string{"a", "b"}, ids(q.NextBatch(2)))
	assert.Equal(t, []string{"c"}, ids(q.NextBatch(2)))
	assert.Empty(t, q.NextBatch(2))
	assert.Nil(t, q.NextBatch(0))
}

func TestQueue_NextBatchAtLeast(t *testing.T) {
	q, _ := newTestQueue(DefaultQueueConfig(), nil)
	ctx := context.Background()

	for id, p := range map[string]models.Priority{"low": models.PriorityLow, "crisis": models.PriorityCrisis, "high": models.PriorityHigh} {
		_, err := q.Enqueue(ctx, upload(id, p))
		require.NoError(t, err)
	}

	assert.Equal(t, []string{"crisis"}, ids(q.NextBatchAtLeast(10, models.PriorityCrisis)))
	assert.Empty(t, q.NextBatchAtLeast(10, models.PriorityCrisis))
	assert.Equal(t, 2, q.Len())
	assert.Equal(t, []string{"high", "low"}, ids(q.NextBatch(10)))
}

func TestQueue_HasPending(t *testing.T) {
	q, _ := newTestQueue(DefaultQueueConfig(), nil)
	ctx := context.Background()

	_, err := q.Enqueue(ctx, upload("op-1", models.PriorityNormal))
	require.NoError(t, err)
	entityID := q.Status().Next.Operation.EntityID

	assert.True(t, q.HasPending(entityID))
	assert.False(t, q.HasPending("other"))

	batch := q.NextBatch(1)
	require.Len(t, batch, 1)
	assert.True(t, q.HasPending(entityID), "операция в полете тоже считается")

	require.NoError(t, q.Ack(ctx, batch[0].ID()))
	assert.False(t, q.HasPending(entityID))
}

func TestQueue_FullQueueRejectsExceptCrisis(t *testing.T) {
	cfg := DefaultQueueConfig()
	cfg.MaxSize = 2
	q, _ := newTestQueue(cfg, nil)
	ctx := context.Background()

	_, err := q.Enqueue(ctx, upload("a", models.PriorityNormal))
	require.NoError(t, err)
	_, err = q.Enqueue(ctx, upload("b", models.PriorityHigh))
	require.NoError(t, err)

	_, err = q.Enqueue(ctx, upload("c", models.PriorityHigh))
	require.Error(t, err)
	assert.ErrorIs(t, err, syncerr.ErrResourceExhaustion)
	assert.True(t, syncerr.IsRetryable(err))

	_, err = q.Enqueue(ctx, upload("crisis", models.PriorityCrisis))
	require.NoError(t, err)
	assert.Equal(t, 3, q.Len())
}

func TestQueue_EnqueueValidation(t *testing.T) {
	q, _ := newTestQueue(DefaultQueueConfig(), nil)

	_, err := q.Enqueue(context.Background(), nil)
	assert.ErrorIs(t, err, syncerr.ErrValidation)
	_, err = q.Enqueue(context.Background(), &models.Operation{})
	assert.ErrorIs(t, err, syncerr.ErrValidation)
}

func TestQueue_FailSchedulesBackoff(t *testing.T) {
	cfg := QueueConfig{MaxSize: 10, MaxRetries: 3, BaseBackoff: time.Second, MaxBackoff: time.Minute}
	q, clock := newTestQueue(cfg, nil)
	ctx := context.Background()

	_, err := q.Enqueue(ctx, upload("a", models.PriorityNormal))
	require.NoError(t, err)
	require.Len(t, q.NextBatch(1), 1)

	dead, err := q.Fail(ctx, "a", syncerr.New(syncerr.KindTransient, "submit", "connection reset"))
	require.NoError(t, err)
	assert.Nil(t, dead)

	// первая повторная попытка через 2s (base * 2^1)
	assert.Empty(t, q.NextBatch(1))
	clock.Advance(time.Second)
	assert.Empty(t, q.NextBatch(1))
	clock.Advance(time.Second)

	batch := q.NextBatch(1)
	require.Len(t, batch, 1)
	assert.Equal(t, 1, batch[0].RetryCount)
	assert.Contains(t, batch[0].LastError, "connection reset")
}

func TestQueue_NotReadyItemsDoNotBlockReadyOnes(t *testing.T) {
	q, _ := newTestQueue(DefaultQueueConfig(), nil)
	ctx := context.Background()

	_, err := q.Enqueue(ctx, upload("crisis", models.PriorityCrisis))
	require.NoError(t, err)
	require.Len(t, q.NextBatch(1), 1)
	_, err = q.Fail(ctx, "crisis", syncerr.New(syncerr.KindTransient, "submit", "timeout"))
	require.NoError(t, err)

	_, err = q.Enqueue(ctx, upload("low", models.PriorityLow))
	require.NoError(t, err)

	assert.Equal(t, []string{"low"}, ids(q.NextBatch(5)))
	assert.Equal(t, 1, q.Len())
}

func TestQueue_RetryAfterHintExtendsDelay(t *testing.T) {
	q, clock := newTestQueue(DefaultQueueConfig(), nil)
	ctx := context.Background()

	_, err := q.Enqueue(ctx, upload("a", models.PriorityNormal))
	require.NoError(t, err)
	q.NextBatch(1)

	_, err = q.Fail(ctx, "a", syncerr.Exhausted("submit", 30*time.Second, "rate limited"))
	require.NoError(t, err)

	clock.Advance(29 * time.Second)
	assert.Empty(t, q.NextBatch(1))
	clock.Advance(time.Second)
	assert.Len(t, q.NextBatch(1), 1)
}

func TestQueue_DeadLetterAfterMaxRetries(t *testing.T) {
	cfg := QueueConfig{MaxSize: 10, MaxRetries: 2, BaseBackoff: time.Millisecond, MaxBackoff: time.Second}
	q, clock := newTestQueue(cfg, nil)
	ctx := context.Background()

	_, err := q.Enqueue(ctx, upload("a", models.PriorityNormal))
	require.NoError(t, err)

	transient := syncerr.New(syncerr.KindTransient, "submit", "unreachable")
	var dead *models.QueueItem
	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		clock.Advance(time.Second)
		require.Len(t, q.NextBatch(1), 1, "attempt %d", attempt)
		dead, err = q.Fail(ctx, "a", transient)
		require.NoError(t, err)
	}

	require.NotNil(t, dead)
	assert.Equal(t, "a", dead.ID())
	assert.Equal(t, 3, dead.RetryCount)
	assert.Equal(t, 0, q.Len())
	assert.Len(t, q.DeadLetters(), 1)
	assert.Equal(t, 1, q.Status().DeadLetters)
}

func TestQueue_NonRetryableErrorDeadLettersImmediately(t *testing.T) {
	q, _ := newTestQueue(DefaultQueueConfig(), nil)
	ctx := context.Background()

	_, err := q.Enqueue(ctx, upload("a", models.PriorityNormal))
	require.NoError(t, err)
	q.NextBatch(1)

	dead, err := q.Fail(ctx, "a", syncerr.New(syncerr.KindValidation, "submit", "mood out of range"))
	require.NoError(t, err)
	require.NotNil(t, dead)
	assert.Equal(t, 1, dead.RetryCount)
}

func TestQueue_AckAndRelease(t *testing.T) {
	q, _ := newTestQueue(DefaultQueueConfig(), nil)
	ctx := context.Background()

	_, err := q.Enqueue(ctx, upload("a", models.PriorityNormal))
	require.NoError(t, err)
	_, err = q.Enqueue(ctx, upload("b", models.PriorityNormal))
	require.NoError(t, err)

	q.NextBatch(2)
	require.NoError(t, q.Ack(ctx, "a"))
	assert.ErrorIs(t, q.Ack(ctx, "a"), ErrItemNotInFlight)

	require.NoError(t, q.Release("b"))
	assert.Equal(t, 1, q.Len())
	assert.ErrorIs(t, q.Release("b"), ErrItemNotInFlight)

	_, err = q.Fail(ctx, "missing", errors.New("x"))
	assert.ErrorIs(t, err, ErrItemNotInFlight)
}

func TestQueue_Status(t *testing.T) {
	q, _ := newTestQueue(DefaultQueueConfig(), nil)
	ctx := context.Background()

	_, err := q.Enqueue(ctx, upload("n1", models.PriorityNormal))
	require.NoError(t, err)
	_, err = q.Enqueue(ctx, upload("n2", models.PriorityNormal))
	require.NoError(t, err)
	_, err = q.Enqueue(ctx, upload("c", models.PriorityCrisis))
	require.NoError(t, err)

	st := q.Status()
	assert.Equal(t, 3, st.Size)
	assert.Equal(t, 2, st.ByPriority[models.PriorityNormal])
	assert.Equal(t, 1, st.ByPriority[models.PriorityCrisis])
	require.NotNil(t, st.Next)
	assert.Equal(t, "c", st.Next.ID())
}

func TestQueue_ReadySignal(t *testing.T) {
	q, _ := newTestQueue(DefaultQueueConfig(), nil)

	select {
	case <-q.Ready():
		t.Fatal("пустая очередь не должна сигналить")
	default:
	}

	_, err := q.Enqueue(context.Background(), upload("a", models.PriorityNormal))
	require.NoError(t, err)
	_, err = q.Enqueue(context.Background(), upload("b", models.PriorityNormal))
	require.NoError(t, err)

	select {
	case <-q.Ready():
	case <-time.After(time.Second):
		t.Fatal("нет сигнала после Enqueue")
	}
	// сигналы схлопываются в один
	select {
	case <-q.Ready():
		t.Fatal("лишний сигнал")
	default:
	}
}

func TestQueue_PersistsThroughStore(t *testing.T) {
	saved := map[string]*models.QueueItem{}
	var deadSaved []*models.QueueItem
	store := &QueueStoreMock{
		SaveQueueItemFunc: func(ctx context.Context, item *models.QueueItem) error {
			saved[item.ID()] = item.Clone()
			return nil
		},
		DeleteQueueItemFunc: func(ctx context.Context, id string) error {
			delete(saved, id)
			return nil
		},
		SaveDeadLetterFunc: func(ctx context.Context, item *models.QueueItem) error {
			deadSaved = append(deadSaved, item.Clone())
			return nil
		},
	}
	q, _ := newTestQueue(DefaultQueueConfig(), store)
	ctx := context.Background()

	_, err := q.Enqueue(ctx, upload("a", models.PriorityNormal))
	require.NoError(t, err)
	_, err = q.Enqueue(ctx, upload("b", models.PriorityNormal))
	require.NoError(t, err)
	assert.Len(t, saved, 2)

	q.NextBatch(2)
	require.NoError(t, q.Ack(ctx, "a"))
	_, err = q.Fail(ctx, "b", syncerr.New(syncerr.KindSecurity, "submit", "forbidden"))
	require.NoError(t, err)

	assert.Empty(t, saved)
	require.Len(t, deadSaved, 1)
	assert.Equal(t, "b", deadSaved[0].ID())
}

func TestQueue_EnqueueStoreErrorIsReturned(t *testing.T) {
	store := &QueueStoreMock{
		SaveQueueItemFunc: func(ctx context.Context, item *models.QueueItem) error {
			return errors.New("disk full")
		},
	}
	q, _ := newTestQueue(DefaultQueueConfig(), store)

	_, err := q.Enqueue(context.Background(), upload("a", models.PriorityNormal))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, 0, q.Len())
}

func TestQueue_EnqueueAfterDelaysFirstAttempt(t *testing.T) {
	q, clock := newTestQueue(DefaultQueueConfig(), nil)
	ctx := context.Background()

	item, err := q.EnqueueAfter(ctx, upload("a", models.PriorityNormal), 30*time.Second)
	require.NoError(t, err)
	assert.Equal(t, item.EnqueuedAt.Add(30*time.Second), item.ScheduledAt)
	assert.True(t, q.HasPending("entity-a"))

	assert.Empty(t, q.NextBatch(1))
	clock.Advance(30 * time.Second)
	assert.Equal(t, []string{"a"}, ids(q.NextBatch(1)))
}

func TestQueue_EnqueueSameOperationOnce(t *testing.T) {
	q, _ := newTestQueue(DefaultQueueConfig(), nil)
	ctx := context.Background()

	first, err := q.EnqueueAfter(ctx, upload("a", models.PriorityNormal), time.Minute)
	require.NoError(t, err)
	second, err := q.Enqueue(ctx, upload("a", models.PriorityNormal))
	require.NoError(t, err)
	assert.Equal(t, first.Seq, second.Seq)
	assert.Equal(t, 1, q.Len())

	// операция в полете тоже не дублируется
	_, err = q.Enqueue(ctx, upload("b", models.PriorityNormal))
	require.NoError(t, err)
	require.Len(t, q.NextBatch(1), 1)
	_, err = q.Enqueue(ctx, upload("b", models.PriorityNormal))
	require.NoError(t, err)
	assert.Equal(t, 1, q.Len())
}

func TestQueue_FailReturnsPersistError(t *testing.T) {
	var saves int
	store := &QueueStoreMock{
		SaveQueueItemFunc: func(ctx context.Context, item *models.QueueItem) error {
			saves++
			if saves > 1 {
				return errors.New("disk full")
			}
			return nil
		},
	}
	q, clock := newTestQueue(DefaultQueueConfig(), store)
	ctx := context.Background()

	_, err := q.Enqueue(ctx, upload("a", models.PriorityNormal))
	require.NoError(t, err)
	require.Len(t, q.NextBatch(1), 1)

	dead, err := q.Fail(ctx, "a", syncerr.New(syncerr.KindTransient, "submit", "timeout"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Nil(t, dead)

	// элемент не потерян в памяти и будет отправлен повторно
	assert.True(t, q.HasPending("entity-a"))
	clock.Advance(time.Hour)
	batch := q.NextBatch(1)
	require.Len(t, batch, 1)
	assert.Equal(t, 1, batch[0].RetryCount)
}

func TestQueue_Restore(t *testing.T) {
	store := &QueueStoreMock{
		LoadQueueItemsFunc: func(ctx context.Context) ([]*models.QueueItem, error) {
			return []*models.QueueItem{
				{Operation: upload("old-normal", models.PriorityNormal), Priority: models.PriorityNormal, Seq: 7},
				{Operation: upload("old-crisis", models.PriorityCrisis), Priority: models.PriorityCrisis, Seq: 9},
			}, nil
		},
		LoadDeadLettersFunc: func(ctx context.Context) ([]*models.QueueItem, error) {
			return []*models.QueueItem{{Operation: upload("dead", models.PriorityLow), RetryCount: 6}}, nil
		},
		SaveQueueItemFunc: func(ctx context.Context, item *models.QueueItem) error { return nil },
	}
	q, _ := newTestQueue(DefaultQueueConfig(), store)
	ctx := context.Background()

	require.NoError(t, q.Restore(ctx))
	assert.Equal(t, 2, q.Len())
	assert.Len(t, q.DeadLetters(), 1)

	require.NoError(t, q.Restore(ctx))
	assert.Equal(t, 2, q.Len(), "повторное восстановление не дублирует элементы")
	assert.Len(t, store.LoadQueueItemsCalls(), 1)

	item, err := q.Enqueue(ctx, upload("new", models.PriorityNormal))
	require.NoError(t, err)
	assert.Equal(t, uint64(10), item.Seq, "нумерация продолжается после восстановленных")

	assert.Equal(t, []string{"old-crisis", "old-normal", "new"}, ids(q.NextBatch(3)))
}

func TestQueue_RestoreError(t *testing.T) {
	store := &QueueStoreMock{
		LoadQueueItemsFunc: func(ctx context.Context) ([]*models.QueueItem, error) {
			return nil, errors.New("corrupted")
		},
	}
	q, _ := newTestQueue(DefaultQueueConfig(), store)
	assert.Error(t, q.Restore(context.Background()))
}

func TestQueueConfig_Backoff(t *testing.T) {
	cfg := QueueConfig{BaseBackoff: time.Second, MaxBackoff: 10 * time.Second}

	tests := []struct {
		name    string
		retries int
		want    time.Duration
	}{
		{name: "first attempt", retries: 0, want: time.Second},
		{name: "one retry", retries: 1, want: 2 * time.Second},
		{name: "three retries", retries: 3, want: 8 * time.Second},
		{name: "capped", retries: 4, want: 10 * time.Second},
		{name: "far beyond cap", retries: 100, want: 10 * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cfg.Backoff(tt.retries))
		})
	}
}
