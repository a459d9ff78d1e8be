// Package assignmentrepo provides data transfer objects and mapping functions for assignment persistence.
// The unique index on order_id makes a second assignment of the same order fail at insert time.
package assignmentrepo

import (
	"time"

	"grabbit/internal/core/domain/model/assignment"
	"grabbit/internal/core/domain/model/kernel"
	"grabbit/internal/core/domain/model/order"

	"github.com/google/uuid"
)

// AssignmentDTO represents the database structure for persisting assignments.
type AssignmentDTO struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_assignments_order_id"`
	CarrierID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Status      int       `gorm:"type:int;not null"`
	AcceptedAt  time.Time `gorm:"not null"`
	ReadyAt     *time.Time
	CompletedAt *time.Time
}

// TableName specifies the database table name for assignment entities.
// Overrides GORM's default naming convention to use "assignments" instead of "assignment_dtos".
func (AssignmentDTO) TableName() string {
	return "assignments"
}

// FromDomain converts an assignment to its database representation.
func FromDomain(a *assignment.Assignment) AssignmentDTO {
	return AssignmentDTO{
		ID:          a.ID().Bytes(),
		OrderID:     a.OrderID().Bytes(),
		CarrierID:   a.CarrierID().Bytes(),
		Status:      int(a.Status()),
		AcceptedAt:  a.AcceptedAt().UTC(),
		ReadyAt:     utc(a.ReadyAt()),
		CompletedAt: utc(a.CompletedAt()),
	}
}

// ToDomain converts a database DTO to an assignment using RestoreAssignment.
func ToDomain(dto AssignmentDTO) (*assignment.Assignment, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	orderID, err := kernel.UUIDFromBytes(dto.OrderID[:])
	if err != nil {
		return nil, err
	}

	carrierID, err := kernel.UUIDFromBytes(dto.CarrierID[:])
	if err != nil {
		return nil, err
	}

	return assignment.RestoreAssignment(
		id,
		orderID,
		carrierID,
		order.Status(dto.Status),
		dto.AcceptedAt.UTC(),
		utc(dto.ReadyAt),
		utc(dto.CompletedAt),
	)
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}
