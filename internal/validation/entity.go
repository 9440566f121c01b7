// Package validation содержит проверки записей и операций, общие для клиента и сервера.
package validation

import (
	"fmt"
	"regexp"

	"github.com/iudanet/carekeeper/internal/crypto"
	"github.com/iudanet/carekeeper/internal/models"
	"github.com/iudanet/carekeeper/internal/syncerr"
)

// IDPattern определяет допустимый формат идентификаторов записей, операций и устройств
// Латинские буквы, цифры, дефис и нижнее подчеркивание (UUID подходит)
// Длина: 1-64 символа
var IDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)

// MaxPayloadFields ограничивает количество полей payload
const MaxPayloadFields = 256

// ValidateID проверяет формат идентификатора
func ValidateID(kind, id string) error {
	if id == "" {
		return fmt.Errorf("%s id cannot be empty", kind)
	}
	if !IDPattern.MatchString(id) {
		return fmt.Errorf("%s id %q can only contain letters, numbers, '-' and '_' (up to 64 characters)", kind, id)
	}
	return nil
}

// ValidateEntity проверяет запись перед сохранением или отправкой.
// Checksum должен совпадать с хешем payload.
func ValidateEntity(e *models.SyncEntity) error {
	const op = "validate entity"

	if e == nil {
		return syncerr.New(syncerr.KindValidation, op, "entity is required")
	}
	if err := ValidateID("entity", e.ID); err != nil {
		return syncerr.Wrap(syncerr.KindValidation, op, err)
	}
	if !e.Type.Valid() {
		return syncerr.New(syncerr.KindValidation, op, "unknown entity type %q", e.Type)
	}
	if e.Version < 0 {
		return syncerr.New(syncerr.KindValidation, op, "entity %s has negative version %d", e.ID, e.Version)
	}
	if len(e.Payload) > MaxPayloadFields {
		return syncerr.New(syncerr.KindValidation, op, "entity %s payload has %d fields, limit is %d", e.ID, len(e.Payload), MaxPayloadFields)
	}

	sum, err := crypto.Checksum(e.Payload)
	if err != nil {
		return syncerr.Wrap(syncerr.KindValidation, op, err)
	}
	if sum != e.Checksum {
		return syncerr.New(syncerr.KindValidation, op, "entity %s checksum does not match payload", e.ID)
	}
	return nil
}

// ValidateOperation проверяет операцию синхронизации.
// upload и resolve_conflict должны нести запись с тем же ID.
func ValidateOperation(o *models.Operation) error {
	const op = "validate operation"

	if o == nil {
		return syncerr.New(syncerr.KindValidation, op, "operation is required")
	}
	if err := ValidateID("operation", o.ID); err != nil {
		return syncerr.Wrap(syncerr.KindValidation, op, err)
	}
	if !o.Type.Valid() {
		return syncerr.New(syncerr.KindValidation, op, "unknown operation type %q", o.Type)
	}
	if err := ValidateID("entity", o.EntityID); err != nil {
		return syncerr.Wrap(syncerr.KindValidation, op, err)
	}
	if !o.EntityType.Valid() {
		return syncerr.New(syncerr.KindValidation, op, "unknown entity type %q", o.EntityType)
	}

	if !o.Type.CarriesEntity() {
		return nil
	}
	if o.Entity == nil {
		return syncerr.New(syncerr.KindValidation, op, "%s operation %s carries no entity", o.Type, o.ID)
	}
	if o.Entity.ID != o.EntityID || o.Entity.Type != o.EntityType {
		return syncerr.New(syncerr.KindValidation, op, "operation %s targets %s/%s but carries %s/%s",
			o.ID, o.EntityType, o.EntityID, o.Entity.Type, o.Entity.ID)
	}
	return ValidateEntity(o.Entity)
}
