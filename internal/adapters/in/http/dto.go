package http

import (
	"time"

	"grabbit/internal/core/application/usecases/commands"
	"grabbit/internal/core/application/usecases/queries"
	"grabbit/internal/core/domain/model/kernel"
)

// errorResponse is the envelope of every 4xx/5xx response.
type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type itemRequest struct {
	Name      string `json:"name"       validate:"required"`
	Quantity  int    `json:"quantity"   validate:"required,min=1"`
	UnitPrice int64  `json:"unit_price" validate:"gte=0"`
}

type createOrderRequest struct {
	StoreName       string        `json:"store_name"       validate:"required"`
	Items           []itemRequest `json:"items"            validate:"required,min=1,dive"`
	DeliveryAddress string        `json:"delivery_address" validate:"required"`
	// TTLSeconds of zero selects the configured default lifetime.
	TTLSeconds int `json:"ttl_seconds" validate:"gte=0"`
}

type advanceStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type listAvailableRequest struct {
	Limit int `query:"limit" validate:"gte=0,lte=200"`
}

type itemResponse struct {
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
}

type assignmentResponse struct {
	ID          kernel.UUID `json:"id"`
	OrderID     kernel.UUID `json:"order_id"`
	CarrierID   kernel.UUID `json:"carrier_id"`
	Status      string      `json:"status"`
	AcceptedAt  time.Time   `json:"accepted_at"`
	ReadyAt     *time.Time  `json:"ready_at,omitempty"`
	CompletedAt *time.Time  `json:"completed_at,omitempty"`
}

type orderResponse struct {
	ID              kernel.UUID         `json:"id"`
	BuyerID         kernel.UUID         `json:"buyer_id"`
	StoreName       string              `json:"store_name"`
	Items           []itemResponse      `json:"items"`
	DeliveryAddress string              `json:"delivery_address"`
	Status          string              `json:"status"`
	CarrierID       *kernel.UUID        `json:"carrier_id,omitempty"`
	Total           int64               `json:"total"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
	ExpiresAt       time.Time           `json:"expires_at"`
	Assignment      *assignmentResponse `json:"assignment,omitempty"`
}

// availableOrderResponse is the carrier-facing listing entry. Buyer identity
// stays hidden until the order is accepted.
type availableOrderResponse struct {
	ID              kernel.UUID    `json:"id"`
	StoreName       string         `json:"store_name"`
	Items           []itemResponse `json:"items"`
	DeliveryAddress string         `json:"delivery_address"`
	Total           int64          `json:"total"`
	ExpiresAt       time.Time      `json:"expires_at"`
}

type acceptOrderResponse struct {
	AssignmentID kernel.UUID `json:"assignment_id"`
	OrderID      kernel.UUID `json:"order_id"`
	CarrierID    kernel.UUID `json:"carrier_id"`
	AcceptedAt   time.Time   `json:"accepted_at"`
}

type statusResponse struct {
	ID     kernel.UUID `json:"id"`
	Status string      `json:"status"`
}

func toItemResponses(items []queries.ItemResponse) []itemResponse {
	result := make([]itemResponse, len(items))
	for i, item := range items {
		result[i] = itemResponse{Name: item.Name, Quantity: item.Quantity, UnitPrice: item.UnitPrice}
	}
	return result
}

func toOrderResponse(o queries.OrderResponse) orderResponse {
	resp := orderResponse{
		ID:              o.ID,
		BuyerID:         o.BuyerID,
		StoreName:       o.StoreName,
		Items:           toItemResponses(o.Items),
		DeliveryAddress: o.DeliveryAddress,
		Status:          o.Status.String(),
		CarrierID:       o.CarrierID,
		Total:           o.Total,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
		ExpiresAt:       o.ExpiresAt,
	}
	if a := o.Assignment; a != nil {
		resp.Assignment = &assignmentResponse{
			ID:          a.ID,
			OrderID:     a.OrderID,
			CarrierID:   a.CarrierID,
			Status:      a.Status.String(),
			AcceptedAt:  a.AcceptedAt,
			ReadyAt:     a.ReadyAt,
			CompletedAt: a.CompletedAt,
		}
	}
	return resp
}

func toOrderResponses(orders []queries.OrderResponse) []orderResponse {
	result := make([]orderResponse, len(orders))
	for i, o := range orders {
		result[i] = toOrderResponse(o)
	}
	return result
}

func toAvailableOrderResponses(orders []queries.OrderResponse) []availableOrderResponse {
	result := make([]availableOrderResponse, len(orders))
	for i, o := range orders {
		result[i] = availableOrderResponse{
			ID:              o.ID,
			StoreName:       o.StoreName,
			Items:           toItemResponses(o.Items),
			DeliveryAddress: o.DeliveryAddress,
			Total:           o.Total,
			ExpiresAt:       o.ExpiresAt,
		}
	}
	return result
}

func toAcceptOrderResponse(r commands.AcceptOrderResponse) acceptOrderResponse {
	return acceptOrderResponse{
		AssignmentID: r.AssignmentID,
		OrderID:      r.OrderID,
		CarrierID:    r.CarrierID,
		AcceptedAt:   r.AcceptedAt,
	}
}
