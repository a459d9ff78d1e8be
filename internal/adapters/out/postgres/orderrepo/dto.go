// Package orderrepo provides data transfer objects and mapping functions for order persistence.
// This package implements the repository pattern for the order domain aggregate, handling
// the conversion between domain entities and database representations.
package orderrepo

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"grabbit/internal/core/domain/model/kernel"
	"grabbit/internal/core/domain/model/order"

	"github.com/google/uuid"
)

// OrderDTO represents the database structure for persisting order aggregates.
// The composite status/expiry index serves both the available listing and the
// expiry sweep.
type OrderDTO struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey"`
	BuyerID         uuid.UUID  `gorm:"type:uuid;not null;index"`
	StoreName       string     `gorm:"not null"`
	Items           ItemsDTO   `gorm:"type:jsonb;not null"`
	DeliveryAddress string     `gorm:"not null"`
	Status          int        `gorm:"not null;index:idx_orders_status_expires_at,priority:1"`
	CarrierID       *uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt       time.Time  `gorm:"not null;autoCreateTime:false"`
	UpdatedAt       time.Time  `gorm:"not null;autoUpdateTime:false"`
	ExpiresAt       time.Time  `gorm:"not null;index:idx_orders_status_expires_at,priority:2"`
}

// TableName specifies the database table name for order entities.
// Overrides GORM's default naming convention to use "orders".
func (OrderDTO) TableName() string {
	return "orders"
}

// ItemDTO is one line of the order, stored inside the items JSONB document.
type ItemDTO struct {
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
}

// ItemsDTO is stored as a JSONB array.
type ItemsDTO []ItemDTO

// Value implements driver.Valuer.
func (i ItemsDTO) Value() (driver.Value, error) {
	if i == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(i)
}

// Scan implements sql.Scanner.
func (i *ItemsDTO) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*i = ItemsDTO{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("orderrepo: cannot scan %T into items", src)
	}
	return json.Unmarshal(data, i)
}

// FromDomain converts an order domain aggregate to its database representation.
// Times are stored in UTC.
func FromDomain(o *order.Order) OrderDTO {
	var carrierID *uuid.UUID
	if id := o.Carrier(); id != nil {
		raw := id.Bytes()
		carrierID = &raw
	}

	items := make(ItemsDTO, 0, len(o.Items()))
	for _, it := range o.Items() {
		items = append(items, ItemDTO{
			Name:      it.Name(),
			Quantity:  it.Quantity(),
			UnitPrice: it.UnitPrice(),
		})
	}

	return OrderDTO{
		ID:              o.ID().Bytes(),
		BuyerID:         o.BuyerID().Bytes(),
		StoreName:       o.StoreName(),
		Items:           items,
		DeliveryAddress: o.DeliveryAddress(),
		Status:          int(o.Status()),
		CarrierID:       carrierID,
		CreatedAt:       o.CreatedAt().UTC(),
		UpdatedAt:       o.UpdatedAt().UTC(),
		ExpiresAt:       o.ExpiresAt().UTC(),
	}
}

// ToDomain converts a database DTO to an order domain aggregate.
// Reconstructs the complete aggregate including status and carrier assignment using RestoreOrder.
func ToDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	buyerID, err := kernel.UUIDFromBytes(dto.BuyerID[:])
	if err != nil {
		return nil, err
	}

	var carrierID *kernel.UUID
	if dto.CarrierID != nil {
		cID, carrierErr := kernel.UUIDFromBytes((*dto.CarrierID)[:])
		if carrierErr != nil {
			return nil, carrierErr
		}

		carrierID = &cID
	}

	items := make([]order.Item, 0, len(dto.Items))
	for _, it := range dto.Items {
		item, itemErr := order.NewItem(it.Name, it.Quantity, it.UnitPrice)
		if itemErr != nil {
			return nil, itemErr
		}
		items = append(items, item)
	}

	return order.RestoreOrder(
		id,
		buyerID,
		dto.StoreName,
		items,
		dto.DeliveryAddress,
		order.Status(dto.Status),
		carrierID,
		dto.CreatedAt.UTC(),
		dto.UpdatedAt.UTC(),
		dto.ExpiresAt.UTC(),
	)
}
