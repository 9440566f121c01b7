package push

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/carekeeper/internal/models"
	"github.com/iudanet/carekeeper/pkg/api"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestTopics(t *testing.T) {
	assert.Equal(t, "carekeeper/user-1/changes", ChangesTopic("user-1"))

	tests := []struct {
		topic  string
		want   string
		wantOK bool
	}{
		{topic: "carekeeper/user-1/changes", want: "user-1", wantOK: true},
		{topic: "carekeeper//changes"},
		{topic: "carekeeper/a/b/changes"},
		{topic: "other/user-1/changes"},
		{topic: "carekeeper/user-1/events"},
	}
	for _, tt := range tests {
		t.Run(tt.topic, func(t *testing.T) {
			got, ok := UserFromTopic(tt.topic)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNotifier_NotifyChanged(t *testing.T) {
	broker := &BrokerMock{
		PublishFunc: func(topic string, qos byte, retained bool, payload []byte) error { return nil },
	}
	n := NewNotifier(broker, discardLogger())

	err := n.NotifyChanged("user-1", []models.EntityType{models.EntityCrisisPlan, models.EntityCheckIn, models.EntityCrisisPlan}, 42)
	require.NoError(t, err)

	require.Len(t, broker.PublishCalls(), 1)
	call := broker.PublishCalls()[0]
	assert.Equal(t, "carekeeper/user-1/changes", call.Topic)
	assert.Equal(t, DefaultQoS, call.Qos)
	assert.False(t, call.Retained)

	var got api.ChangeNotification
	require.NoError(t, json.Unmarshal(call.Payload, &got))
	assert.Equal(t, "user-1", got.UserID)
	assert.Equal(t, []string{"check_in", "crisis_plan"}, got.EntityTypes)
	assert.Equal(t, int64(42), got.Sequence)
}

func TestNotifier_SkipsEmptyAndReportsErrors(t *testing.T) {
	broker := &BrokerMock{
		PublishFunc: func(string, byte, bool, []byte) error { return errors.New("not connected") },
	}
	n := NewNotifier(broker, discardLogger())

	require.NoError(t, n.NotifyChanged("user-1", nil, 1))
	require.NoError(t, n.NotifyChanged("", []models.EntityType{models.EntityCheckIn}, 1))
	assert.Empty(t, broker.PublishCalls())

	assert.Error(t, n.NotifyChanged("user-1", []models.EntityType{models.EntityCheckIn}, 1))
}

// loopback брокер в памяти: Publish синхронно вызывает подписчиков
type loopback struct {
	handlers map[string]MessageHandler
	mu       sync.Mutex
}

func newLoopback() (*loopback, *BrokerMock) {
	lb := &loopback{handlers: make(map[string]MessageHandler)}
	return lb, &BrokerMock{
		PublishFunc: func(topic string, _ byte, _ bool, payload []byte) error {
			lb.mu.Lock()
			h := lb.handlers[topic]
			lb.mu.Unlock()
			if h != nil {
				h(topic, payload)
			}
			return nil
		},
		SubscribeFunc: func(topic string, _ byte, handler MessageHandler) error {
			lb.mu.Lock()
			defer lb.mu.Unlock()
			lb.handlers[topic] = handler
			return nil
		},
		UnsubscribeFunc: func(topics ...string) error {
			lb.mu.Lock()
			defer lb.mu.Unlock()
			for _, topic := range topics {
				delete(lb.handlers, topic)
			}
			return nil
		},
	}
}

func (lb *loopback) subscribed(topic string) bool {
	lb.mu.Lock()
	defer lb.mu.Unlock()
	_, ok := lb.handlers[topic]
	return ok
}

type pullRecorder struct {
	types []models.EntityType
	mu    sync.Mutex
}

func (p *pullRecorder) pull(_ context.Context, et models.EntityType) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.types = append(p.types, et)
	return nil
}

func (p *pullRecorder) pulled() []models.EntityType {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]models.EntityType(nil), p.types...)
}

func TestListener_PullsChangedTypes(t *testing.T) {
	lb, broker := newLoopback()
	rec := &pullRecorder{}
	l := NewListener(broker, "user-1", rec.pull, discardLogger())
	n := NewNotifier(broker, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	require.Eventually(t, func() bool { return lb.subscribed(ChangesTopic("user-1")) }, time.Second, 5*time.Millisecond)

	require.NoError(t, n.NotifyChanged("user-1", []models.EntityType{models.EntityCrisisPlan}, 5))
	assert.Eventually(t, func() bool {
		return assert.ObjectsAreEqual([]models.EntityType{models.EntityCrisisPlan}, rec.pulled())
	}, time.Second, 5*time.Millisecond)

	// устаревшее уведомление и уведомление другого пользователя игнорируются
	require.NoError(t, n.NotifyChanged("user-1", []models.EntityType{models.EntityCheckIn}, 4))
	require.NoError(t, n.NotifyChanged("user-2", []models.EntityType{models.EntityCheckIn}, 9))
	assert.Never(t, func() bool { return len(rec.pulled()) > 1 }, 50*time.Millisecond, 5*time.Millisecond)
	assert.Equal(t, int64(2), l.Received())

	cancel()
	require.NoError(t, <-done)
	assert.False(t, lb.subscribed(ChangesTopic("user-1")))
	assert.Len(t, broker.UnsubscribeCalls(), 1)
}

func TestListener_HandleCoalescesAndIgnoresGarbage(t *testing.T) {
	rec := &pullRecorder{}
	l := NewListener(&BrokerMock{}, "user-1", rec.pull, discardLogger())
	topic := ChangesTopic("user-1")

	l.handle(topic, []byte("{not json"))
	for seq, types := range [][]string{{"check_in"}, {"check_in", "assessment"}, {"medication"}} {
		payload, err := json.Marshal(api.ChangeNotification{UserID: "user-1", EntityTypes: types, Sequence: int64(seq + 1)})
		require.NoError(t, err)
		l.handle(topic, payload)
	}

	l.flush(context.Background())
	assert.Equal(t, []models.EntityType{models.EntityCheckIn, models.EntityAssessment}, rec.pulled())

	l.flush(context.Background())
	assert.Len(t, rec.pulled(), 2, "после flush очередь типов пуста")
}

func TestListener_PullPanicDoesNotStopLoop(t *testing.T) {
	l := NewListener(&BrokerMock{}, "user-1", func(context.Context, models.EntityType) error {
		panic("boom")
	}, discardLogger())
	assert.Error(t, l.safePull(context.Background(), models.EntityCheckIn))
}

func TestListener_SubscribeError(t *testing.T) {
	broker := &BrokerMock{
		SubscribeFunc: func(string, byte, MessageHandler) error { return errors.New("refused") },
	}
	l := NewListener(broker, "user-1", (&pullRecorder{}).pull, discardLogger())
	assert.Error(t, l.Run(context.Background()))
}

func TestDial_RequiresBroker(t *testing.T) {
	_, err := Dial(Config{}, discardLogger())
	assert.Error(t, err)
}
