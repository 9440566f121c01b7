package models

import (
	"fmt"

	"github.com/iudanet/carekeeper/pkg/api"
)

// ToAPI converts the entity into its wire form.
func (e *SyncEntity) ToAPI() api.Entity {
	return api.Entity{
		LastModified: e.LastModified,
		Payload:      e.Payload.Clone(),
		ID:           e.ID,
		Type:         string(e.Type),
		Checksum:     e.Checksum,
		DeviceID:     e.DeviceID,
		UserID:       e.UserID,
		Version:      e.Version,
		Deleted:      e.Deleted,
	}
}

// EntityFromAPI converts a wire entity. Unknown entity types are rejected.
func EntityFromAPI(in api.Entity) (*SyncEntity, error) {
	et, err := ParseEntityType(in.Type)
	if err != nil {
		return nil, err
	}
	return &SyncEntity{
		LastModified: in.LastModified,
		Payload:      Payload(in.Payload).Clone(),
		ID:           in.ID,
		Type:         et,
		Checksum:     in.Checksum,
		DeviceID:     in.DeviceID,
		UserID:       in.UserID,
		Version:      in.Version,
		Deleted:      in.Deleted,
	}, nil
}

// ToAPI converts the operation into its wire form.
func (o *Operation) ToAPI() api.Operation {
	out := api.Operation{
		CreatedAt:   o.CreatedAt,
		ID:          o.ID,
		Type:        string(o.Type),
		EntityID:    o.EntityID,
		EntityType:  string(o.EntityType),
		Priority:    o.Priority.String(),
		Tier:        string(o.Tier),
		BaseVersion: o.BaseVersion,
	}
	if o.Entity != nil {
		e := o.Entity.ToAPI()
		out.Entity = &e
	}
	return out
}

// OperationFromAPI converts a wire operation.
func OperationFromAPI(in api.Operation) (*Operation, error) {
	opType := OperationType(in.Type)
	if !opType.Valid() {
		return nil, fmt.Errorf("unknown operation type %q", in.Type)
	}
	et, err := ParseEntityType(in.EntityType)
	if err != nil {
		return nil, err
	}
	priority := PriorityNormal
	if in.Priority != "" {
		if priority, err = ParsePriority(in.Priority); err != nil {
			return nil, err
		}
	}

	op := &Operation{
		CreatedAt:   in.CreatedAt,
		ID:          in.ID,
		EntityID:    in.EntityID,
		EntityType:  et,
		Type:        opType,
		Tier:        Tier(in.Tier),
		Priority:    priority,
		BaseVersion: in.BaseVersion,
	}
	if in.Entity != nil {
		if op.Entity, err = EntityFromAPI(*in.Entity); err != nil {
			return nil, err
		}
		op.UserID = op.Entity.UserID
	}
	return op, nil
}
