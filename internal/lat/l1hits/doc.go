// Package l1hits owns Layer 1 of the tracker filter: the struck strip
// clusters of every tracker layer, organised per tower and per view.
//
// Responsibilities:
//   - Fixed-capacity cluster slot bookkeeping (Set, LayerHitSet)
//   - Tower and event containers filled by the unpacker
//   - Availability masks consumed by the projection finder
//
// A cluster slot, once claimed by a projection, stays claimed for the rest
// of the event. Claiming is the only mutation the finder performs here.
//
// Key types: Set, LayerHitSet, Tower, Event.
//
// Dependency rule: L1 depends on nothing else under internal/lat.
// No SQL/database code is allowed in this package.
package l1hits
