package guardian

import (
	"github.com/iudanet/carekeeper/internal/models"
)

// Hotline телефон кризисной линии
type Hotline struct {
	Name   string `json:"name"`
	Number string `json:"number"`
	Text   string `json:"text"`
}

// CrisisHotline встроенная горячая линия, доступная без I/O
var CrisisHotline = Hotline{
	Name:   "988 Suicide & Crisis Lifeline",
	Number: "988",
	Text:   "Call or text 988. If you are in immediate danger, call 911.",
}

// FallbackEntityID идентификатор встроенного резервного плана
const FallbackEntityID = "fallback-safety-plan"

// FallbackSafetyPlan возвращает новую копию резервного плана безопасности.
// Каждый вызов создает отдельную запись, чтобы вызывающий код не мог изменить общий экземпляр.
func FallbackSafetyPlan() *models.SyncEntity {
	return &models.SyncEntity{
		ID:      FallbackEntityID,
		Type:    models.EntityCrisisPlan,
		Version: 0,
		Payload: models.Payload{
			"title": "Safety plan",
			models.FieldEmergencyContacts: []any{
				map[string]any{"name": CrisisHotline.Name, "phone": CrisisHotline.Number},
				map[string]any{"name": "Emergency services", "phone": "911"},
			},
			"steps": []any{
				"Move to a safe place away from anything you could use to hurt yourself.",
				"Call or text 988 to talk with a trained counselor now.",
				"Reach out to someone you trust and tell them how you feel.",
			},
		},
	}
}
