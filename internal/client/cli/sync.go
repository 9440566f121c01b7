package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/iudanet/carekeeper/internal/models"
	"github.com/iudanet/carekeeper/internal/syncerr"
)

func (c *Cli) runSync(ctx context.Context) error {
	c.io.Println("=== Synchronization ===")
	c.io.Println()

	before := c.service.GetQueueStatus()
	if before.Size == 0 {
		c.io.Println("✓ Offline queue is empty")
		return nil
	}
	c.io.Printf("Sending %d queued operation(s)...\n", before.Size)

	res, err := c.service.Drain(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("sync failed: %w", err)
	}

	c.io.Println()
	c.io.Printf("Sent:          %d\n", res.Sent)
	c.io.Printf("Acknowledged:  %d\n", res.Acked)
	c.io.Printf("Conflicts:     %d\n", res.Conflicts)
	c.io.Printf("Retry later:   %d\n", res.Retried)
	c.io.Printf("Dead lettered: %d\n", res.DeadLettered)

	if after := c.service.GetQueueStatus(); after.Size > 0 {
		c.io.Printf("\n⚠️  %d operation(s) remain queued\n", after.Size)
	} else {
		c.io.Println("\n✓ All queued operations delivered")
	}
	return nil
}

// runPull получает изменения для указанных типов; без аргументов - для всех
func (c *Cli) runPull(ctx context.Context, args []string) error {
	types := models.AllEntityTypes()
	if len(args) > 0 {
		types = make([]models.EntityType, 0, len(args))
		for _, a := range args {
			et, err := models.ParseEntityType(a)
			if err != nil {
				return syncerr.Wrap(syncerr.KindValidation, "pull", err)
			}
			types = append(types, et)
		}
	}

	c.io.Println("=== Pull ===")
	var failed int
	for _, et := range types {
		res, err := c.service.Pull(ctx, et)
		if err != nil {
			failed++
			c.io.Printf("✗ %-13s %v\n", et, err)
			continue
		}
		c.io.Printf("✓ %-13s fetched=%d applied=%d conflicts=%d skipped=%d token=%d\n",
			et, res.Fetched, res.Applied, res.Conflicts, res.Skipped, res.Token)
		for _, r := range res.Resolutions {
			if r.ResolutionRequired {
				c.io.Printf("  ⚠️  %s needs review: %s\n", r.EntityID, r.Reason)
			}
		}
	}
	if failed > 0 {
		return fmt.Errorf("pull failed for %d of %d entity type(s)", failed, len(types))
	}
	return nil
}
