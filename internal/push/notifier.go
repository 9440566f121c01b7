package push

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/iudanet/carekeeper/internal/models"
	"github.com/iudanet/carekeeper/pkg/api"
)

// Notifier публикует уведомления об изменениях для устройств пользователя
type Notifier struct {
	broker Broker
	logger *slog.Logger
	now    func() time.Time
}

// NewNotifier creates a notifier.
func NewNotifier(broker Broker, logger *slog.Logger) *Notifier {
	return &Notifier{broker: broker, logger: logger, now: time.Now}
}

// NotifyChanged сообщает, что у пользователя изменились записи перечисленных типов.
// sequence - серверная последовательность после изменения.
func (n *Notifier) NotifyChanged(userID string, entityTypes []models.EntityType, sequence int64) error {
	if userID == "" || len(entityTypes) == 0 {
		return nil
	}

	types := make([]string, 0, len(entityTypes))
	for _, et := range entityTypes {
		if !slices.Contains(types, string(et)) {
			types = append(types, string(et))
		}
	}
	slices.Sort(types)

	payload, err := json.Marshal(api.ChangeNotification{
		At:          n.now().UTC(),
		UserID:      userID,
		EntityTypes: types,
		Sequence:    sequence,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	topic := ChangesTopic(userID)
	if err := n.broker.Publish(topic, DefaultQoS, false, payload); err != nil {
		n.logger.Warn("Failed to publish change notification", "topic", topic, "error", err)
		return err
	}
	n.logger.Debug("Change notification published", "topic", topic, "entity_types", types, "sequence", sequence)
	return nil
}
