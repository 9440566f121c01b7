package cli

import (
	"slices"
	"time"

	"github.com/iudanet/carekeeper/internal/models"
)

func (c *Cli) runStatus() error {
	c.io.Println("=== Sync Status ===")
	c.io.Println()

	st := c.service.GetQueueStatus()
	c.io.Printf("Queued operations: %d (in flight: %d)\n", st.Size, st.InFlight)

	priorities := make([]models.Priority, 0, len(st.ByPriority))
	for p := range st.ByPriority {
		priorities = append(priorities, p)
	}
	slices.SortFunc(priorities, func(a, b models.Priority) int { return int(b) - int(a) })
	for _, p := range priorities {
		c.io.Printf("  %-8s %d\n", p, st.ByPriority[p])
	}
	if st.Next != nil {
		c.io.Printf("Next: %s %s (scheduled %s)\n", st.Next.Operation.Type, st.Next.ID(), st.Next.ScheduledAt.Format(time.RFC3339))
	}

	strategy := c.service.NetworkStrategy()
	c.io.Println()
	c.io.Printf("Network score: %.0f (batch %d, timeout %s)\n", strategy.Score, strategy.BatchSize, strategy.Timeout)
	if strategy.Defer {
		c.io.Println("⚠️  Network is poor: only crisis operations are sent")
	}

	dead := c.service.DeadLetters()
	c.io.Println()
	if len(dead) == 0 {
		c.io.Println("✓ No dead letters")
		return nil
	}
	c.io.Printf("⚠️  Dead letters: %d\n", len(dead))
	for _, item := range dead {
		c.io.Printf("  %s %s %s/%s retries=%d: %s\n",
			item.ID(),
			item.Operation.Type,
			item.Operation.EntityType,
			item.Operation.EntityID,
			item.RetryCount,
			item.LastError)
	}
	return nil
}
