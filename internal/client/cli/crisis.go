package cli

import (
	"context"
	"encoding/json"

	"github.com/iudanet/carekeeper/internal/client/iocli"
	"github.com/iudanet/carekeeper/internal/guardian"
)

// runCrisis нажимает кризисную кнопку: план безопасности и экстренные контакты
// читаются параллельно в пределах бюджета Guardian. Горячая линия печатается первой
// и не зависит от хранилища.
func (c *Cli) runCrisis(ctx context.Context, entityID string) error {
	c.printHotline(c.service.Hotline())

	var plan, contacts guardian.CrisisResult
	// кнопка ждет оба чтения: ответ меряется по самому долгому бюджету
	budgets := c.budgets
	budgets.CrisisButtonResponse = budgets.Widest(
		guardian.OpCrisisButtonResponse,
		guardian.OpCrisisDataAccess,
		guardian.OpEmergencyContactAccess,
	)
	button := guardian.NewCrisisButton(budgets, nil, nil, c.logger)
	button.Register("safety-plan", func(ctx context.Context) error {
		plan = c.service.GetCrisisData(ctx, entityID)
		return nil
	})
	button.Register("emergency-contacts", func(ctx context.Context) error {
		contacts = c.service.GetEmergencyContacts(ctx, entityID)
		return nil
	})
	pressed := button.Press(ctx)

	c.io.Println()
	c.printCrisisResult("Safety plan", plan)
	c.printCrisisResult("Emergency contacts", contacts)

	c.io.Println()
	if pressed.Compliant {
		c.io.Printf("Crisis response: %s (budget %s)\n", pressed.ResponseTime, pressed.Budget)
	} else {
		c.io.Printf("⚠️  Crisis response: %s exceeded budget %s\n", pressed.ResponseTime, pressed.Budget)
	}
	return nil
}

func (c *Cli) printCrisisResult(title string, res guardian.CrisisResult) {
	c.io.Printf("=== %s ===\n", title)
	if res.Data == nil {
		c.io.Println("(unavailable)")
		return
	}
	c.io.Printf("Source: %s, %s of %s", res.DataSource, res.ResponseTime, res.Budget)
	if !res.GuaranteeCompliance {
		c.io.Printf(" ⚠️  over budget")
	}
	c.io.Println()

	data, err := json.MarshalIndent(res.Data.Payload, "", "  ")
	if err != nil {
		c.logger.Warn("Failed to render crisis payload", "entity_id", res.Data.ID, "error", err)
		return
	}
	_, _ = c.io.Write(append(data, '\n'))
}

func (c *Cli) printHotline(h guardian.Hotline) {
	c.io.Printf("☎  %s: %s\n", h.Name, h.Number)
	c.io.Println(h.Text)
}

// runHotline печатает горячую линию без обращения к хранилищу
func runHotline(io iocli.IO) {
	h := guardian.CrisisHotline
	io.Printf("☎  %s: %s\n%s\n", h.Name, h.Number, h.Text)
}
