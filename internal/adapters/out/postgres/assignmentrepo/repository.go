package assignmentrepo

import (
	"context"
	"errors"
	"fmt"

	"grabbit/internal/adapters/out/postgres/pgerrs"
	"grabbit/internal/core/domain/model/assignment"
	"grabbit/internal/core/domain/model/kernel"
	"grabbit/internal/core/domain/model/order"
	"grabbit/internal/core/ports"
	"grabbit/internal/pkg/errs"

	"gorm.io/gorm"
)

var _ ports.AssignmentRepository = (*GormAssignmentRepository)(nil)

// GormAssignmentRepository implements AssignmentRepository using GORM.
type GormAssignmentRepository struct {
	db *gorm.DB
}

// NewGormAssignmentRepository creates a new GORM assignment repository.
func NewGormAssignmentRepository(db *gorm.DB) *GormAssignmentRepository {
	return &GormAssignmentRepository{db: db}
}

// Add inserts the assignment. A unique violation on order_id means another
// transaction assigned the order first.
func (r *GormAssignmentRepository) Add(ctx context.Context, a *assignment.Assignment) error {
	if err := a.Validate(); err != nil {
		return err
	}

	dto := FromDomain(a)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		if pgerrs.IsUniqueViolation(err) {
			return fmt.Errorf("%w: order %s", order.ErrOrderAlreadyAssigned, a.OrderID())
		}
		return pgerrs.Classify("add assignment", err)
	}

	return nil
}

// Update saves the mirrored status and timestamps.
func (r *GormAssignmentRepository) Update(ctx context.Context, a *assignment.Assignment) error {
	if err := a.Validate(); err != nil {
		return err
	}

	dto := FromDomain(a)
	result := r.db.WithContext(ctx).Model(&AssignmentDTO{}).Where("id = ?", dto.ID).Select("*").Updates(&dto)
	if result.Error != nil {
		return pgerrs.Classify("update assignment", result.Error)
	}

	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("assignment", a.ID())
	}

	return nil
}

// GetByOrder retrieves the assignment of an order.
func (r *GormAssignmentRepository) GetByOrder(ctx context.Context, orderID kernel.UUID) (*assignment.Assignment, error) {
	if err := orderID.Validate(); err != nil {
		return nil, err
	}

	var dto AssignmentDTO
	if err := r.db.WithContext(ctx).First(&dto, "order_id = ?", orderID.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("assignment of order", orderID)
		}
		return nil, pgerrs.Classify("get assignment", err)
	}

	return ToDomain(dto)
}
