// Package guardian гарантирует ограниченное время ответа для кризисных операций чтения.
//
// Кризисный план, экстренные контакты и телефон горячей линии должны быть доступны
// даже при медленном или недоступном хранилище. Guardian обслуживает такие запросы
// из кэша, а при промахе ограничивает ожидание хранилища бюджетом операции и
// возвращает встроенный резервный план безопасности, если хранилище не успело ответить.
package guardian

import (
	"fmt"
	"time"
)

// Operation класс кризисной операции с собственным бюджетом времени
type Operation string

// Кризисные операции
const (
	OpCrisisDataAccess       Operation = "crisis_data_access"
	OpEmergencyContactAccess Operation = "emergency_contact_access"
	OpCrisisButtonResponse   Operation = "crisis_button_response"
	OpHotlineAccess          Operation = "hotline_access"
)

// Budgets бюджеты времени ответа
type Budgets struct {
	CrisisDataAccess       time.Duration `mapstructure:"crisis_data_access"`
	EmergencyContactAccess time.Duration `mapstructure:"emergency_contact_access"`
	CrisisButtonResponse   time.Duration `mapstructure:"crisis_button_response"`
	SafetyMargin           time.Duration `mapstructure:"safety_margin"` // SafetyMargin запас до бюджета на возврат резервных данных
}

// DefaultBudgets returns the production latency budgets.
func DefaultBudgets() Budgets {
	return Budgets{
		CrisisDataAccess:       200 * time.Millisecond,
		EmergencyContactAccess: 100 * time.Millisecond,
		CrisisButtonResponse:   50 * time.Millisecond,
		SafetyMargin:           50 * time.Millisecond,
	}
}

// For возвращает бюджет операции. Горячая линия обслуживается из константы, ее бюджет 0.
func (b Budgets) For(op Operation) time.Duration {
	switch op {
	case OpCrisisDataAccess:
		return b.CrisisDataAccess
	case OpEmergencyContactAccess:
		return b.EmergencyContactAccess
	case OpCrisisButtonResponse:
		return b.CrisisButtonResponse
	case OpHotlineAccess:
		return 0
	default:
		return b.CrisisDataAccess
	}
}

// Widest возвращает самый долгий из бюджетов операций
func (b Budgets) Widest(ops ...Operation) time.Duration {
	var d time.Duration
	for _, op := range ops {
		d = max(d, b.For(op))
	}
	return d
}

// LoadWait время, которое можно ждать хранилище, прежде чем вернуть резервные данные.
// Не меньше 1ms, чтобы у хранилища был шанс ответить даже при маленьком бюджете.
func (b Budgets) LoadWait(op Operation) time.Duration {
	wait := b.For(op) - b.SafetyMargin
	if wait < time.Millisecond {
		wait = time.Millisecond
	}
	return wait
}

// Validate checks that budgets are positive and the margin fits into every budget.
func (b Budgets) Validate() error {
	for _, op := range []Operation{OpCrisisDataAccess, OpEmergencyContactAccess, OpCrisisButtonResponse} {
		budget := b.For(op)
		if budget <= 0 {
			return fmt.Errorf("budget for %s must be positive", op)
		}
		if b.SafetyMargin < 0 || b.SafetyMargin > budget {
			return fmt.Errorf("safety margin %s does not fit into %s budget %s", b.SafetyMargin, op, budget)
		}
	}
	return nil
}
