package order

import (
	"errors"
	"fmt"
	"strings"

	"grabbit/internal/pkg/errs"
)

const (
	// MaxItemQuantity and MaxUnitPrice bound a line item so that item and order
	// totals always fit in int64.
	MaxItemQuantity = 10_000
	MaxUnitPrice    = int64(1_000_000_000)
)

// ErrItemIsNotConstructed is returned when an Item was not created through NewItem.
var ErrItemIsNotConstructed = errors.New("Item must be created via NewItem constructor")

// Item is an already-resolved line item of an order. Prices are integer minor
// units (cents) so totals never accumulate floating point error.
type Item struct {
	name          string
	quantity      int
	unitPrice     int64
	isConstructed bool
}

// NewItem validates and creates an Item.
//
// Rules:
//   - name must not be blank
//   - quantity must be within [1, MaxItemQuantity]
//   - unitPrice must be within [0, MaxUnitPrice]
func NewItem(name string, quantity int, unitPrice int64) (Item, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Item{}, errs.NewValueIsRequiredError("item name")
	}
	if quantity < 1 {
		return Item{}, errs.NewValueIsInvalidErrorWithCause("item quantity", fmt.Errorf("%d is less than 1", quantity))
	}
	if quantity > MaxItemQuantity {
		return Item{}, errs.NewValueIsOutOfRangeError("item quantity", quantity, 1, MaxItemQuantity)
	}
	if unitPrice < 0 {
		return Item{}, errs.NewValueIsInvalidErrorWithCause("item unit price", fmt.Errorf("%d is negative", unitPrice))
	}
	if unitPrice > MaxUnitPrice {
		return Item{}, errs.NewValueIsOutOfRangeError("item unit price", unitPrice, int64(0), MaxUnitPrice)
	}

	return Item{
		name:          name,
		quantity:      quantity,
		unitPrice:     unitPrice,
		isConstructed: true,
	}, nil
}

// Validate ensures the Item was created through NewItem.
func (i Item) Validate() error {
	if !i.isConstructed {
		return ErrItemIsNotConstructed
	}
	return nil
}

func (i Item) Name() string {
	return i.name
}

func (i Item) Quantity() int {
	return i.quantity
}

// UnitPrice returns the price of one unit in cents.
func (i Item) UnitPrice() int64 {
	return i.unitPrice
}

// Total returns quantity * unit price in cents.
func (i Item) Total() int64 {
	return int64(i.quantity) * i.unitPrice
}
