// Package order provides the Order aggregate and the lifecycle state machine
// that governs it.
//
// The package includes:
//   - Order: aggregate root holding identity, buyer, items, expiry and the bound carrier
//   - Status: the lifecycle state machine and its forward transition table
//   - Item: a resolved line item (name, quantity, unit price in cents)
//   - Event: a domain event recorded by every state change, drained via PullEvents
//
// Key business rules:
//   - Lifecycle: Open -> Assigned -> InProgress -> ReadyForPickup -> Completed,
//     plus Open -> Cancelled and Open -> Expired; nothing returns to Open
//   - A carrier is bound iff the status is Assigned, InProgress, ReadyForPickup or Completed
//   - The expiry time is fixed at creation; an Open order at or past it is treated as Expired
//   - Only the bound carrier advances an order, only the buyer confirms or cancels it
package order
