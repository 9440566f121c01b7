package models

import (
	"fmt"
	"time"
)

// EntityType тип синхронизируемой записи.
// Набор типов закрыт: все switch по EntityType обязаны обрабатывать каждый тип.
type EntityType string

// Типы синхронизируемых записей
const (
	EntityCheckIn     EntityType = "check_in"
	EntityAssessment  EntityType = "assessment"
	EntityCrisisPlan  EntityType = "crisis_plan"
	EntityUserProfile EntityType = "user_profile"
)

// AllEntityTypes возвращает все поддерживаемые типы в фиксированном порядке
func AllEntityTypes() []EntityType {
	return []EntityType{EntityCheckIn, EntityAssessment, EntityCrisisPlan, EntityUserProfile}
}

// Valid reports whether t is one of the known entity types.
func (t EntityType) Valid() bool {
	switch t {
	case EntityCheckIn, EntityAssessment, EntityCrisisPlan, EntityUserProfile:
		return true
	default:
		return false
	}
}

// ParseEntityType converts a raw string into an EntityType.
func ParseEntityType(s string) (EntityType, error) {
	t := EntityType(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown entity type %q", s)
	}
	return t, nil
}

// SyncEntity представляет версионированную запись, которую синхронизируют устройства пользователя.
// Checksum является чистой функцией Payload: две записи с равным checksum
// считаются равными по содержимому независимо от версии.
type SyncEntity struct {
	LastModified time.Time  `json:"last_modified"` // LastModified время последнего локального изменения
	Payload      Payload    `json:"payload"`       // Payload структурированные данные записи
	ID           string     `json:"id"`            // ID стабильный идентификатор записи (UUID)
	Type         EntityType `json:"type"`          // Type тип записи
	Checksum     string     `json:"checksum"`      // Checksum хеш содержимого Payload
	DeviceID     string     `json:"device_id"`     // DeviceID устройство, создавшее эту версию
	UserID       string     `json:"user_id"`       // UserID владелец записи
	Version      int64      `json:"version"`       // Version монотонно растущая версия записи
	Deleted      bool       `json:"deleted"`       // Deleted флаг soft delete
}

// IsNewerThan определяет, изменена ли запись позже, чем other.
// Сравнивается LastModified; при равенстве возвращается false,
// поэтому вызывающий код сам решает, какую сторону предпочесть.
func (e *SyncEntity) IsNewerThan(other *SyncEntity) bool {
	if other == nil {
		return true
	}
	return e.LastModified.After(other.LastModified)
}

// ContentEqual reports whether both entities carry the same payload.
func (e *SyncEntity) ContentEqual(other *SyncEntity) bool {
	if e == nil || other == nil {
		return e == other
	}
	return e.Checksum == other.Checksum && e.Deleted == other.Deleted
}

// Clone создает глубокую копию записи
func (e *SyncEntity) Clone() *SyncEntity {
	if e == nil {
		return nil
	}

	return &SyncEntity{
		LastModified: e.LastModified,
		Payload:      e.Payload.Clone(),
		ID:           e.ID,
		Type:         e.Type,
		Checksum:     e.Checksum,
		DeviceID:     e.DeviceID,
		UserID:       e.UserID,
		Version:      e.Version,
		Deleted:      e.Deleted,
	}
}
