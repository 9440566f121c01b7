package push

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/iudanet/carekeeper/internal/models"
	"github.com/iudanet/carekeeper/pkg/api"
)

// PullFunc получает изменения записей одного типа
type PullFunc func(ctx context.Context, entityType models.EntityType) error

// Listener подписывается на уведомления пользователя и запускает Pull для измененных типов.
// Уведомления, пришедшие во время Pull, схлопываются по типу записи.
type Listener struct {
	broker   Broker
	pull     PullFunc
	logger   *slog.Logger
	pending  map[models.EntityType]struct{}
	signal   chan struct{}
	userID   string
	lastSeq  int64
	received int64
	mu       sync.Mutex
}

// NewListener creates a listener for the user's change topic.
func NewListener(broker Broker, userID string, pull PullFunc, logger *slog.Logger) *Listener {
	return &Listener{
		broker:  broker,
		pull:    pull,
		logger:  logger,
		pending: make(map[models.EntityType]struct{}),
		signal:  make(chan struct{}, 1),
		userID:  userID,
	}
}

// Run подписывается на топик и обрабатывает уведомления до отмены ctx
func (l *Listener) Run(ctx context.Context) error {
	topic := ChangesTopic(l.userID)
	if err := l.broker.Subscribe(topic, DefaultQoS, l.handle); err != nil {
		return err
	}
	l.logger.Info("Listening for change notifications", "topic", topic)

	defer func() {
		if err := l.broker.Unsubscribe(topic); err != nil {
			l.logger.Warn("Failed to unsubscribe", "topic", topic, "error", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-l.signal:
			l.flush(ctx)
		}
	}
}

// handle вызывается из горутины MQTT клиента и не должен блокировать
func (l *Listener) handle(topic string, payload []byte) {
	var n api.ChangeNotification
	if err := json.Unmarshal(payload, &n); err != nil {
		l.logger.Warn("Malformed change notification", "topic", topic, "error", err)
		return
	}
	if user, ok := UserFromTopic(topic); !ok || user != l.userID || n.UserID != l.userID {
		l.logger.Warn("Change notification for another user ignored", "topic", topic)
		return
	}

	l.mu.Lock()
	l.received++
	if n.Sequence > 0 && n.Sequence <= l.lastSeq {
		l.mu.Unlock()
		l.logger.Debug("Stale change notification ignored", "sequence", n.Sequence, "last_sequence", l.lastSeq)
		return
	}
	if n.Sequence > l.lastSeq {
		l.lastSeq = n.Sequence
	}
	for _, raw := range n.EntityTypes {
		et, err := models.ParseEntityType(raw)
		if err != nil {
			l.logger.Warn("Unknown entity type in notification", "entity_type", raw)
			continue
		}
		l.pending[et] = struct{}{}
	}
	l.mu.Unlock()

	select {
	case l.signal <- struct{}{}:
	default:
	}
}

func (l *Listener) flush(ctx context.Context) {
	l.mu.Lock()
	types := make([]models.EntityType, 0, len(l.pending))
	for _, et := range models.AllEntityTypes() {
		if _, ok := l.pending[et]; ok {
			types = append(types, et)
		}
	}
	clear(l.pending)
	l.mu.Unlock()

	for _, et := range types {
		if err := l.safePull(ctx, et); err != nil {
			l.logger.Warn("Pull after notification failed", "entity_type", et, "error", err)
		}
	}
}

func (l *Listener) safePull(ctx context.Context, et models.EntityType) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("pull panicked: %v", rec)
		}
	}()
	return l.pull(ctx, et)
}

// Received returns the number of notifications received for this user.
func (l *Listener) Received() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.received
}
