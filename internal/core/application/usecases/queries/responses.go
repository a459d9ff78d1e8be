// Package queries contains the read side of the order engine. Every response
// carries the effective status: an overdue open order is reported as expired
// even if the sweeper has not persisted the transition yet.
package queries

import (
	"time"

	"grabbit/internal/core/domain/model/assignment"
	"grabbit/internal/core/domain/model/kernel"
	"grabbit/internal/core/domain/model/order"
)

// ItemResponse is a line item in the read model. Prices are in cents.
type ItemResponse struct {
	Name      string
	Quantity  int
	UnitPrice int64
}

// OrderResponse is the read model of a single order.
type OrderResponse struct {
	ID              kernel.UUID
	BuyerID         kernel.UUID
	StoreName       string
	Items           []ItemResponse
	DeliveryAddress string
	Status          order.Status
	CarrierID       *kernel.UUID
	Total           int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
	ExpiresAt       time.Time
	Assignment      *AssignmentResponse
}

// AssignmentResponse is the read model of an assignment.
type AssignmentResponse struct {
	ID          kernel.UUID
	OrderID     kernel.UUID
	CarrierID   kernel.UUID
	Status      order.Status
	AcceptedAt  time.Time
	ReadyAt     *time.Time
	CompletedAt *time.Time
}

func toOrderResponse(o *order.Order, now time.Time) OrderResponse {
	items := make([]ItemResponse, 0, len(o.Items()))
	for _, item := range o.Items() {
		items = append(items, ItemResponse{
			Name:      item.Name(),
			Quantity:  item.Quantity(),
			UnitPrice: item.UnitPrice(),
		})
	}

	return OrderResponse{
		ID:              o.ID(),
		BuyerID:         o.BuyerID(),
		StoreName:       o.StoreName(),
		Items:           items,
		DeliveryAddress: o.DeliveryAddress(),
		Status:          o.EffectiveStatus(now),
		CarrierID:       o.Carrier(),
		Total:           o.Total(),
		CreatedAt:       o.CreatedAt(),
		UpdatedAt:       o.UpdatedAt(),
		ExpiresAt:       o.ExpiresAt(),
	}
}

func toAssignmentResponse(a *assignment.Assignment) *AssignmentResponse {
	if a == nil {
		return nil
	}
	return &AssignmentResponse{
		ID:          a.ID(),
		OrderID:     a.OrderID(),
		CarrierID:   a.CarrierID(),
		Status:      a.Status(),
		AcceptedAt:  a.AcceptedAt(),
		ReadyAt:     a.ReadyAt(),
		CompletedAt: a.CompletedAt(),
	}
}
