package order

import (
	"fmt"

	"grabbit/internal/pkg/errs"
)

// Status represents the lifecycle state of an order.
//
// State transitions:
//
//	Open ──> Assigned ──> InProgress ──> ReadyForPickup ──> Completed
//	  │
//	  ├──> Cancelled
//	  └──> Expired
//
// Completed, Cancelled and Expired are terminal. There is no edge back to Open,
// so an order never acquires a second carrier.
type Status int

const (
	// Unknown represents an invalid or undefined status.
	// This value (0) helps catch uninitialized Status values.
	Unknown Status = iota

	// Open is the initial status: the order is listed and waiting for a carrier.
	Open

	// Assigned indicates a carrier accepted the order.
	Assigned

	// InProgress indicates the carrier is shopping for the items.
	InProgress

	// ReadyForPickup indicates the carrier has the items and awaits the buyer's confirmation.
	ReadyForPickup

	// Completed indicates the buyer confirmed delivery. Terminal.
	Completed

	// Cancelled indicates the buyer withdrew the order before it was accepted. Terminal.
	Cancelled

	// Expired indicates the order was not accepted before its expiry time. Terminal.
	Expired
)

// getStatusStrings returns the wire representation of every valid status.
func getStatusStrings() map[Status]string {
	//nolint:exhaustive // Unknown is intentionally excluded as it's invalid
	return map[Status]string{
		Open:           "open",
		Assigned:       "assigned",
		InProgress:     "in_progress",
		ReadyForPickup: "ready_for_pickup",
		Completed:      "completed",
		Cancelled:      "cancelled",
		Expired:        "expired",
	}
}

// getForwardTransitions returns the edges a carrier may request through Advance.
func getForwardTransitions() map[Status]Status {
	//nolint:exhaustive // only carrier-driven edges are listed
	return map[Status]Status{
		Assigned:   InProgress,
		InProgress: ReadyForPickup,
	}
}

// ParseStatus converts the wire representation ("open", "in_progress", ...) into a Status.
func ParseStatus(s string) (Status, error) {
	for status, str := range getStatusStrings() {
		if str == s {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%q is not a known status", s))
}

// Validate checks if the Status value is one of the defined lifecycle states.
func (s Status) Validate() error {
	if _, ok := getStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the wire representation of the status, or "unknown".
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "unknown"
}

// IsTerminal reports whether no further transitions are possible.
func (s Status) IsTerminal() bool {
	return s == Completed || s == Cancelled || s == Expired
}

// HasCarrier reports whether an order in this status must have a bound carrier.
func (s Status) HasCarrier() bool {
	return s == Assigned || s == InProgress || s == ReadyForPickup || s == Completed
}

// ValidateCanHaveCarrier validates the consistency between order status and carrier binding.
//
// Business Rules:
//   - Assigned, InProgress, ReadyForPickup and Completed orders must have a carrier
//   - Open, Cancelled and Expired orders must not have one
func (s Status) ValidateCanHaveCarrier(carrier bool) error {
	if carrier && !s.HasCarrier() {
		return errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("%s is not a valid status to have a carrier", s.String()),
		)
	}

	if !carrier && s.HasCarrier() {
		return errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("%s is not a valid status to have no carrier", s.String()),
		)
	}

	return nil
}

// Advance checks the (current, target) pair against the forward transition table.
//
// Valid transitions:
//   - Assigned -> InProgress
//   - InProgress -> ReadyForPickup
//
// Any other pair, including skipping a state or moving backward, yields
// ErrInvalidTransition.
func (s Status) Advance(target Status) (Status, error) {
	if next, ok := getForwardTransitions()[s]; ok && next == target {
		return target, nil
	}
	return 0, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s, target)
}

// Assign transitions an Open status to Assigned.
func (s Status) Assign() (Status, error) {
	if s != Open {
		return 0, fmt.Errorf("%w: status is %s", ErrOrderAlreadyAssigned, s)
	}
	return Assigned, nil
}

// Complete transitions ReadyForPickup to Completed.
func (s Status) Complete() (Status, error) {
	if s != ReadyForPickup {
		return 0, fmt.Errorf("%w: cannot confirm delivery from %s", ErrInvalidState, s)
	}
	return Completed, nil
}

// Cancel transitions an Open status to Cancelled.
func (s Status) Cancel() (Status, error) {
	if s != Open {
		return 0, fmt.Errorf("%w: cannot cancel from %s", ErrInvalidState, s)
	}
	return Cancelled, nil
}
