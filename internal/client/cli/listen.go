package cli

import (
	"context"
	"errors"

	"github.com/iudanet/carekeeper/internal/models"
	"github.com/iudanet/carekeeper/internal/push"
)

// runListen получает изменения по уведомлениям брокера до отмены ctx
func (c *Cli) runListen(ctx context.Context, broker push.Broker) error {
	if broker == nil {
		return errors.New("mqtt broker is not configured (set mqtt.broker)")
	}
	if c.userID == "" {
		return errors.New("sync.user_id is required to listen for changes")
	}

	listener := push.NewListener(broker, c.userID, func(ctx context.Context, et models.EntityType) error {
		res, err := c.service.Pull(ctx, et)
		if err != nil {
			return err
		}
		c.io.Printf("↓ %s: applied=%d conflicts=%d token=%d\n", et, res.Applied, res.Conflicts, res.Token)
		return nil
	}, c.logger)

	c.io.Println("Listening for changes, press Ctrl+C to stop")
	err := listener.Run(ctx)
	c.io.Printf("Stopped after %d notification(s)\n", listener.Received())
	return err
}
