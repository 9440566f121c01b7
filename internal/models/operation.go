package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Priority приоритет исходящей операции синхронизации: crisis > high > normal > low
type Priority int

// Уровни приоритета
const (
	PriorityLow Priority = iota
	PriorityNormal
	PriorityHigh
	PriorityCrisis
)

var priorityNames = map[Priority]string{
	PriorityLow:    "low",
	PriorityNormal: "normal",
	PriorityHigh:   "high",
	PriorityCrisis: "crisis",
}

// String implements fmt.Stringer.
func (p Priority) String() string {
	if name, ok := priorityNames[p]; ok {
		return name
	}
	return fmt.Sprintf("priority(%d)", int(p))
}

// MarshalText encodes the priority by name.
func (p Priority) MarshalText() ([]byte, error) {
	name, ok := priorityNames[p]
	if !ok {
		return nil, fmt.Errorf("unknown priority %d", int(p))
	}
	return []byte(name), nil
}

// UnmarshalText decodes a priority name.
func (p *Priority) UnmarshalText(text []byte) error {
	parsed, err := ParsePriority(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// ParsePriority converts a priority name into a Priority.
func ParsePriority(s string) (Priority, error) {
	for p, name := range priorityNames {
		if name == strings.ToLower(s) {
			return p, nil
		}
	}
	return PriorityNormal, fmt.Errorf("unknown priority %q", s)
}

// Tier уровень подписки пользователя
type Tier string

// Уровни подписки
const (
	TierFree     Tier = "free"
	TierPremium  Tier = "premium"
	TierClinical Tier = "clinical"
)

// Valid reports whether t is a known subscription tier.
func (t Tier) Valid() bool {
	return t == TierFree || t == TierPremium || t == TierClinical
}

// OperationType тип исходящей операции
type OperationType string

// Типы операций
const (
	OperationUpload          OperationType = "upload"
	OperationDownload        OperationType = "download"
	OperationDelete          OperationType = "delete"
	OperationResolveConflict OperationType = "resolve_conflict"
)

// Valid reports whether t is a known operation type.
func (t OperationType) Valid() bool {
	switch t {
	case OperationUpload, OperationDownload, OperationDelete, OperationResolveConflict:
		return true
	default:
		return false
	}
}

// CarriesEntity сообщает, должна ли операция содержать запись
func (t OperationType) CarriesEntity() bool {
	return t == OperationUpload || t == OperationResolveConflict
}

// Operation одна исходящая операция синхронизации
type Operation struct {
	CreatedAt  time.Time     `json:"created_at"`
	Entity     *SyncEntity   `json:"entity,omitempty"`
	ID         string        `json:"id"`
	EntityID   string        `json:"entity_id"`
	EntityType EntityType    `json:"entity_type"`
	Type       OperationType `json:"type"`
	UserID     string        `json:"user_id"`
	Tier       Tier          `json:"tier"`
	Priority   Priority      `json:"priority"`

	// BaseVersion версия сервера, от которой сделано изменение; 0 - запись на сервере не встречалась
	BaseVersion int64 `json:"base_version,omitempty"`
}

// NewOperation создает операцию для записи с новым UUID
func NewOperation(opType OperationType, entity *SyncEntity, priority Priority) *Operation {
	op := &Operation{
		CreatedAt: time.Now(),
		ID:        uuid.New().String(),
		Type:      opType,
		Priority:  priority,
	}
	if entity != nil {
		op.Entity = entity.Clone()
		op.EntityID = entity.ID
		op.EntityType = entity.Type
		op.UserID = entity.UserID
	}
	return op
}

// Checksum returns the checksum of the carried entity, or an empty string.
func (o *Operation) Checksum() string {
	if o.Entity == nil {
		return ""
	}
	return o.Entity.Checksum
}

// Clone создает глубокую копию операции
func (o *Operation) Clone() *Operation {
	if o == nil {
		return nil
	}
	cp := *o
	cp.Entity = o.Entity.Clone()
	return &cp
}

// QueueItem операция в офлайн-очереди
type QueueItem struct {
	ScheduledAt time.Time  `json:"scheduled_at"` // ScheduledAt время, раньше которого операция не отправляется
	EnqueuedAt  time.Time  `json:"enqueued_at"`
	Operation   *Operation `json:"operation"`
	LastError   string     `json:"last_error,omitempty"`
	Seq         uint64     `json:"seq"` // Seq порядок постановки в очередь
	RetryCount  int        `json:"retry_count"`
	Priority    Priority   `json:"priority"`
}

// ID returns the operation ID of the item.
func (i *QueueItem) ID() string {
	if i.Operation == nil {
		return ""
	}
	return i.Operation.ID
}

// Clone создает глубокую копию элемента очереди
func (i *QueueItem) Clone() *QueueItem {
	if i == nil {
		return nil
	}
	cp := *i
	cp.Operation = i.Operation.Clone()
	return &cp
}
