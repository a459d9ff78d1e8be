package order

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"grabbit/internal/core/domain/model/kernel"
	"grabbit/internal/pkg/errs"
)

const (
	// DefaultTTL is used when CreateOrder is called with a zero TTL.
	DefaultTTL = time.Hour
	// MinTTL and MaxTTL bound the lifetime of an open order.
	MinTTL = time.Second
	MaxTTL = 7 * 24 * time.Hour
	// MaxItems bounds the number of line items in one order.
	MaxItems = 100
)

// Order is the aggregate root of the delivery request lifecycle. It is created by
// a buyer, bound to at most one carrier for its whole life and never deleted:
// terminal orders are retained.
//
// Order follows these invariants:
//   - id and buyerID are valid identifiers
//   - storeName and deliveryAddress are not blank, items are not empty
//   - carrierID is set iff the status is Assigned, InProgress, ReadyForPickup or Completed
//   - expiresAt is fixed at creation and never changes
//   - status only moves forward through the transition table
//
// Every state change appends an Event which repositories drain with PullEvents.
type Order struct {
	id              kernel.UUID
	buyerID         kernel.UUID
	storeName       string
	items           []Item
	deliveryAddress string
	status          Status
	carrierID       *kernel.UUID
	createdAt       time.Time
	updatedAt       time.Time
	expiresAt       time.Time

	events []Event

	// isConstructed ensures the order was created via NewOrder or RestoreOrder
	isConstructed bool
}

// NewOrder creates an Open order that expires ttl after now. A zero ttl selects
// DefaultTTL; any other value must lie within [MinTTL, MaxTTL].
//
// Example:
//
//	item, _ := order.NewItem("Milk", 2, 349)
//	o, err := order.NewOrder(kernel.NewUUID(), buyerID, "Corner Shop", []order.Item{item},
//	    "12 High Street", clk.Now(), 30*time.Minute)
//	if err != nil {
//	    // Handle validation error
//	}
//
// The created order records an EventCreated event.
func NewOrder(
	id kernel.UUID,
	buyerID kernel.UUID,
	storeName string,
	items []Item,
	deliveryAddress string,
	now time.Time,
	ttl time.Duration,
) (*Order, error) {
	if ttl == 0 {
		ttl = DefaultTTL
	}

	o := &Order{
		status:        Open,
		createdAt:     now,
		updatedAt:     now,
		isConstructed: true,
	}

	if err := errors.Join(
		o.setID(id),
		o.setBuyerID(buyerID),
		o.setStoreName(storeName),
		o.setItems(items),
		o.setDeliveryAddress(deliveryAddress),
		o.setExpiry(now, ttl),
	); err != nil {
		return nil, err
	}

	o.record(EventCreated, now)
	return o, nil
}

// RestoreOrder rehydrates an order from persistence. It validates the same
// invariants NewOrder enforces except the TTL bounds, and records no events.
func RestoreOrder(
	id kernel.UUID,
	buyerID kernel.UUID,
	storeName string,
	items []Item,
	deliveryAddress string,
	status Status,
	carrierID *kernel.UUID,
	createdAt time.Time,
	updatedAt time.Time,
	expiresAt time.Time,
) (*Order, error) {
	o := &Order{
		createdAt:     createdAt,
		updatedAt:     updatedAt,
		expiresAt:     expiresAt,
		isConstructed: true,
	}

	if err := errors.Join(
		o.setID(id),
		o.setBuyerID(buyerID),
		o.setStoreName(storeName),
		o.setItems(items),
		o.setDeliveryAddress(deliveryAddress),
		o.restoreStatusWithCarrier(status, carrierID),
	); err != nil {
		return nil, err
	}

	return o, nil
}

// Validate ensures the Order instance was properly constructed.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}
	return nil
}

// IsEqual compares two orders by their identifiers.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

func (o *Order) ID() kernel.UUID {
	return o.id
}

func (o *Order) BuyerID() kernel.UUID {
	return o.buyerID
}

func (o *Order) StoreName() string {
	return o.storeName
}

// Items returns a copy of the order's line items.
func (o *Order) Items() []Item {
	items := make([]Item, len(o.items))
	copy(items, o.items)
	return items
}

func (o *Order) DeliveryAddress() string {
	return o.deliveryAddress
}

// Status returns the stored status. Read paths should prefer EffectiveStatus.
func (o *Order) Status() Status {
	return o.status
}

// Carrier returns the bound carrier's ID, or nil while the order is unassigned.
func (o *Order) Carrier() *kernel.UUID {
	return o.carrierID
}

func (o *Order) CreatedAt() time.Time {
	return o.createdAt
}

func (o *Order) UpdatedAt() time.Time {
	return o.updatedAt
}

func (o *Order) ExpiresAt() time.Time {
	return o.expiresAt
}

// Total returns the sum of the item totals in cents.
func (o *Order) Total() int64 {
	var total int64
	for _, item := range o.items {
		total += item.Total()
	}
	return total
}

// IsOverdue reports whether the order is still Open at or after its expiry time.
func (o *Order) IsOverdue(now time.Time) bool {
	return o.status == Open && !now.Before(o.expiresAt)
}

// EffectiveStatus is the status callers observe: an overdue Open order reads as
// Expired even before the sweeper persists the transition.
func (o *Order) EffectiveStatus(now time.Time) Status {
	if o.IsOverdue(now) {
		return Expired
	}
	return o.status
}

// IsBoundTo reports whether the given carrier is the order's bound carrier.
func (o *Order) IsBoundTo(carrierID kernel.UUID) bool {
	return o.carrierID != nil && o.carrierID.IsEqual(carrierID)
}

// Assign binds the order to a carrier and moves it to Assigned.
//
// Returns:
//   - ErrOrderExpired if the order is Expired or overdue; call Expire to persist that
//   - ErrOrderAlreadyAssigned if the order is in any other non-Open status
func (o *Order) Assign(carrierID kernel.UUID, now time.Time) error {
	if err := carrierID.Validate(); err != nil {
		return err
	}

	if o.status == Expired || o.IsOverdue(now) {
		return fmt.Errorf("%w: expired at %s", ErrOrderExpired, o.expiresAt.Format(time.RFC3339))
	}

	newStatus, err := o.status.Assign()
	if err != nil {
		return err
	}

	o.status = newStatus
	o.carrierID = &carrierID
	o.touch(now)
	o.record(EventAssigned, now)
	return nil
}

// Advance applies one carrier-driven step of the forward transition table.
// The carrier check runs before the transition check, so a foreign carrier
// always gets a ForbiddenError regardless of status.
func (o *Order) Advance(carrierID kernel.UUID, target Status, now time.Time) error {
	if !o.IsBoundTo(carrierID) {
		return errs.NewForbiddenError("carrier", carrierID)
	}

	newStatus, err := o.status.Advance(target)
	if err != nil {
		return err
	}

	o.status = newStatus
	o.touch(now)
	o.record(EventStatusAdvanced, now)
	return nil
}

// ConfirmDelivery is the buyer's terminal confirmation: ReadyForPickup -> Completed.
func (o *Order) ConfirmDelivery(buyerID kernel.UUID, now time.Time) error {
	if !o.buyerID.IsEqual(buyerID) {
		return errs.NewForbiddenError("buyer", buyerID)
	}

	newStatus, err := o.status.Complete()
	if err != nil {
		return err
	}

	o.status = newStatus
	o.touch(now)
	o.record(EventCompleted, now)
	return nil
}

// Cancel withdraws an Open order on behalf of its buyer.
//
// Returns:
//   - ForbiddenError if the requester is not the buyer
//   - ErrOrderExpired if the order is Expired or overdue; call Expire to persist that
//   - ErrInvalidState if the order is in any other non-Open status
func (o *Order) Cancel(requesterID kernel.UUID, now time.Time) error {
	if !o.buyerID.IsEqual(requesterID) {
		return errs.NewForbiddenError("buyer", requesterID)
	}

	if o.status == Expired || o.IsOverdue(now) {
		return fmt.Errorf("%w: expired at %s", ErrOrderExpired, o.expiresAt.Format(time.RFC3339))
	}

	newStatus, err := o.status.Cancel()
	if err != nil {
		return err
	}

	o.status = newStatus
	o.touch(now)
	o.record(EventCancelled, now)
	return nil
}

// Expire transitions an overdue Open order to Expired. It returns ErrInvalidState
// when the order is not Open or its expiry time has not been reached.
func (o *Order) Expire(now time.Time) error {
	if !o.IsOverdue(now) {
		return fmt.Errorf("%w: %s order expiring at %s is not overdue", ErrInvalidState, o.status, o.expiresAt.Format(time.RFC3339))
	}

	o.status = Expired
	o.touch(now)
	o.record(EventExpired, now)
	return nil
}

// HasPendingEvents reports whether a state change has not been persisted yet.
func (o *Order) HasPendingEvents() bool {
	return len(o.events) > 0
}

// PullEvents returns the recorded events and clears the buffer.
func (o *Order) PullEvents() []Event {
	events := o.events
	o.events = nil
	return events
}

func (o *Order) record(eventType string, now time.Time) {
	o.events = append(o.events, Event{
		ID:         kernel.NewUUID(),
		Type:       eventType,
		OrderID:    o.id,
		BuyerID:    o.buyerID,
		CarrierID:  o.carrierID,
		Status:     o.status,
		OccurredAt: now,
	})
}

func (o *Order) touch(now time.Time) {
	if now.After(o.updatedAt) {
		o.updatedAt = now
	}
}

func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Order) setBuyerID(buyerID kernel.UUID) error {
	if err := buyerID.Validate(); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("buyer id", err)
	}
	o.buyerID = buyerID
	return nil
}

func (o *Order) setStoreName(storeName string) error {
	storeName = strings.TrimSpace(storeName)
	if storeName == "" {
		return errs.NewValueIsRequiredError("store name")
	}
	o.storeName = storeName
	return nil
}

func (o *Order) setItems(items []Item) error {
	if len(items) == 0 {
		return errs.NewValueIsRequiredError("items")
	}
	if len(items) > MaxItems {
		return errs.NewValueIsOutOfRangeError("item count", len(items), 1, MaxItems)
	}
	for i, item := range items {
		if err := item.Validate(); err != nil {
			return errs.NewValueIsInvalidErrorWithCause(fmt.Sprintf("item %d", i), err)
		}
	}
	o.items = make([]Item, len(items))
	copy(o.items, items)
	return nil
}

func (o *Order) setDeliveryAddress(address string) error {
	address = strings.TrimSpace(address)
	if address == "" {
		return errs.NewValueIsRequiredError("delivery address")
	}
	o.deliveryAddress = address
	return nil
}

func (o *Order) setExpiry(now time.Time, ttl time.Duration) error {
	if ttl < MinTTL || ttl > MaxTTL {
		return errs.NewValueIsOutOfRangeError("ttl", ttl, MinTTL, MaxTTL)
	}
	o.expiresAt = now.Add(ttl)
	return nil
}

func (o *Order) restoreStatusWithCarrier(status Status, carrierID *kernel.UUID) error {
	if err := status.Validate(); err != nil {
		return err
	}
	if carrierID != nil {
		if err := carrierID.Validate(); err != nil {
			return errs.NewValueIsInvalidErrorWithCause("carrier id", err)
		}
	}
	if err := status.ValidateCanHaveCarrier(carrierID != nil); err != nil {
		return err
	}
	o.status = status
	o.carrierID = carrierID
	return nil
}
