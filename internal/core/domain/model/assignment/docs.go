// Package assignment provides the Assignment entity: the binding of one carrier
// to one order, created atomically with the order's move to Assigned.
//
// An order never has more than one Assignment. The Assignment's status mirrors
// the order from Assigned through Completed; ReadyAt and CompletedAt are
// stamped when the order reaches ReadyForPickup and Completed respectively.
package assignment
