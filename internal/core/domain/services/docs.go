// Package services provides domain services that coordinate more than one
// aggregate.
//
// The package includes:
//   - AssignmentArbiter: decides whether a carrier may take an order and, on
//     success, binds the order and creates its Assignment
//
// The arbiter is pure: callers run it inside a unit of work that holds the
// order locked, which makes the read-check-write sequence atomic.
package services
