// Package events содержит типизированные события синхронизации и шину,
// через которую они доставляются наблюдателям.
package events

import (
	"time"

	"github.com/iudanet/carekeeper/internal/models"
)

// Type тип события
type Type string

// Типы событий
const (
	TypeConflictDetected      Type = "conflict_detected"
	TypeGuaranteeViolated     Type = "guarantee_violated"
	TypeResolutionCompleted   Type = "resolution_completed"
	TypeOperationDeadLettered Type = "operation_dead_lettered"
)

// Event событие синхронизации
type Event interface {
	EventType() Type
	OccurredAt() time.Time
}

// ConflictDetected публикуется для каждого обнаруженного конфликта
type ConflictDetected struct {
	At       time.Time
	Conflict models.SyncConflict
}

// EventType implements Event.
func (e ConflictDetected) EventType() Type { return TypeConflictDetected }

// OccurredAt implements Event.
func (e ConflictDetected) OccurredAt() time.Time { return e.At }

// GuaranteeViolated публикуется, когда кризисная операция не уложилась в бюджет
// или была обслужена из резервных данных
type GuaranteeViolated struct {
	At           time.Time
	Operation    string
	EntityID     string
	DataSource   string
	Reason       string
	ResponseTime time.Duration
	Budget       time.Duration
}

// EventType implements Event.
func (e GuaranteeViolated) EventType() Type { return TypeGuaranteeViolated }

// OccurredAt implements Event.
func (e GuaranteeViolated) OccurredAt() time.Time { return e.At }

// ResolutionCompleted публикуется после разрешения конфликта, включая manual_review
type ResolutionCompleted struct {
	At     time.Time
	Result models.ResolutionResult
}

// EventType implements Event.
func (e ResolutionCompleted) EventType() Type { return TypeResolutionCompleted }

// OccurredAt implements Event.
func (e ResolutionCompleted) OccurredAt() time.Time { return e.At }

// OperationDeadLettered публикуется, когда операция исчерпала попытки
type OperationDeadLettered struct {
	At        time.Time
	Operation models.Operation
	LastError string
	Attempts  int
}

// EventType implements Event.
func (e OperationDeadLettered) EventType() Type { return TypeOperationDeadLettered }

// OccurredAt implements Event.
func (e OperationDeadLettered) OccurredAt() time.Time { return e.At }
