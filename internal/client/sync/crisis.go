package sync

import (
	"context"
	"fmt"

	"github.com/iudanet/carekeeper/internal/guardian"
	"github.com/iudanet/carekeeper/internal/models"
)

// GetCrisisData возвращает кризисный план в пределах гарантированного бюджета.
// Не берет блокировку записи и не ждет синхронизации.
func (o *Orchestrator) GetCrisisData(ctx context.Context, entityID string) guardian.CrisisResult {
	return o.guardian.GetCrisisData(ctx, entityID)
}

// GetEmergencyContacts returns the emergency contacts record within its budget.
func (o *Orchestrator) GetEmergencyContacts(ctx context.Context, entityID string) guardian.CrisisResult {
	return o.guardian.GetEmergencyContacts(ctx, entityID)
}

// Hotline returns the crisis hotline.
func (o *Orchestrator) Hotline() guardian.Hotline {
	return o.guardian.Hotline()
}

// Preload закрепляет в кэше Guardian все неудаленные кризисные планы
func (o *Orchestrator) Preload(ctx context.Context) error {
	plans, err := o.entities.ListEntities(ctx, models.EntityCrisisPlan)
	if err != nil {
		return fmt.Errorf("failed to list crisis plans: %w", err)
	}
	ids := make([]string, 0, len(plans))
	for _, p := range plans {
		if !p.Deleted {
			ids = append(ids, p.ID)
		}
	}
	if len(ids) == 0 {
		return nil
	}
	if err := o.guardian.Preload(ctx, ids); err != nil {
		return err
	}
	o.logger.Info("Crisis plans preloaded", "count", len(ids))
	return nil
}
