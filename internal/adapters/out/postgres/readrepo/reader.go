// Package readrepo implements the non-transactional read side over the
// orders and assignments tables.
package readrepo

import (
	"context"
	"errors"
	"time"

	"grabbit/internal/adapters/out/postgres/assignmentrepo"
	"grabbit/internal/adapters/out/postgres/orderrepo"
	"grabbit/internal/adapters/out/postgres/pgerrs"
	"grabbit/internal/core/domain/model/assignment"
	"grabbit/internal/core/domain/model/kernel"
	"grabbit/internal/core/domain/model/order"
	"grabbit/internal/core/ports"
	"grabbit/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var _ ports.OrderReader = (*GormOrderReader)(nil)

const availableOrdersSQL = `
SELECT *
FROM orders
WHERE status = ? AND expires_at > ?
ORDER BY expires_at
LIMIT ?`

// GormOrderReader implements ports.OrderReader using GORM.
type GormOrderReader struct {
	db *gorm.DB
}

func NewGormOrderReader(db *gorm.DB) *GormOrderReader {
	return &GormOrderReader{db: db}
}

// ListAvailable evaluates the status and expiry filter in one statement so a
// concurrently expiring order cannot slip between two reads.
func (r *GormOrderReader) ListAvailable(ctx context.Context, now time.Time, limit int) ([]*order.Order, error) {
	var dtos []orderrepo.OrderDTO
	err := r.db.WithContext(ctx).Raw(availableOrdersSQL, int(order.Open), now.UTC(), limit).Scan(&dtos).Error
	if err != nil {
		return nil, pgerrs.Classify("list available orders", err)
	}

	return orderrepo.ToDomainList(dtos)
}

func (r *GormOrderReader) GetOrder(ctx context.Context, id kernel.UUID) (*order.Order, *assignment.Assignment, error) {
	if err := id.Validate(); err != nil {
		return nil, nil, err
	}

	var orderDTO orderrepo.OrderDTO
	if err := r.db.WithContext(ctx).First(&orderDTO, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, errs.NewObjectNotFoundError("order", id)
		}
		return nil, nil, pgerrs.Classify("get order", err)
	}

	o, err := orderrepo.ToDomain(orderDTO)
	if err != nil {
		return nil, nil, err
	}

	var assignmentDTOs []assignmentrepo.AssignmentDTO
	err = r.db.WithContext(ctx).Where("order_id = ?", id.Bytes()).Limit(1).Find(&assignmentDTOs).Error
	if err != nil {
		return nil, nil, pgerrs.Classify("get assignment", err)
	}
	if len(assignmentDTOs) == 0 {
		return o, nil, nil
	}

	a, err := assignmentrepo.ToDomain(assignmentDTOs[0])
	if err != nil {
		return nil, nil, err
	}
	return o, a, nil
}

func (r *GormOrderReader) ListByBuyer(ctx context.Context, buyerID kernel.UUID) ([]*order.Order, error) {
	var dtos []orderrepo.OrderDTO
	err := r.db.WithContext(ctx).
		Where("buyer_id = ?", buyerID.Bytes()).
		Order("created_at DESC").
		Find(&dtos).Error
	if err != nil {
		return nil, pgerrs.Classify("list buyer orders", err)
	}

	return orderrepo.ToDomainList(dtos)
}

func (r *GormOrderReader) ListByCarrier(ctx context.Context, carrierID kernel.UUID) ([]ports.CarrierAssignment, error) {
	var assignmentDTOs []assignmentrepo.AssignmentDTO
	err := r.db.WithContext(ctx).
		Where("carrier_id = ?", carrierID.Bytes()).
		Order("accepted_at DESC").
		Find(&assignmentDTOs).Error
	if err != nil {
		return nil, pgerrs.Classify("list carrier assignments", err)
	}
	if len(assignmentDTOs) == 0 {
		return []ports.CarrierAssignment{}, nil
	}

	orderIDs := make([]uuid.UUID, 0, len(assignmentDTOs))
	for _, dto := range assignmentDTOs {
		orderIDs = append(orderIDs, dto.OrderID)
	}

	var orderDTOs []orderrepo.OrderDTO
	if err = r.db.WithContext(ctx).Where("id IN ?", orderIDs).Find(&orderDTOs).Error; err != nil {
		return nil, pgerrs.Classify("list carrier orders", err)
	}

	byID := make(map[uuid.UUID]orderrepo.OrderDTO, len(orderDTOs))
	for _, dto := range orderDTOs {
		byID[dto.ID] = dto
	}

	result := make([]ports.CarrierAssignment, 0, len(assignmentDTOs))
	for _, dto := range assignmentDTOs {
		orderDTO, ok := byID[dto.OrderID]
		if !ok {
			continue
		}

		a, convErr := assignmentrepo.ToDomain(dto)
		if convErr != nil {
			return nil, convErr
		}
		o, convErr := orderrepo.ToDomain(orderDTO)
		if convErr != nil {
			return nil, convErr
		}
		result = append(result, ports.CarrierAssignment{Assignment: a, Order: o})
	}
	return result, nil
}
