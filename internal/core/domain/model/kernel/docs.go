// Package kernel provides the shared value objects of the order domain.
//
// The package includes:
//   - UUID: identifier for orders, assignments, buyers, carriers and events
//
// A zero-value UUID is never valid; identifiers come from NewUUID or are parsed
// with UUIDFromString / UUIDFromBytes, which reject the nil UUID.
package kernel
