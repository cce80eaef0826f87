// Package l2projections owns Layer 2 of the tracker filter: finding
// straight-line projections through the layers of one tower view.
//
// Responsibilities:
//   - Seed finding over three consecutive layers (seed.go)
//   - Extending seeds up toward the ACD and down toward the calorimeter
//     (extend.go)
//   - The fixed-capacity per-event projection arena and its per-tower
//     directory (collection.go)
//
// Seeds are searched from the highest 3-in-a-row downward, X view before
// Y. Every accepted hit is claimed in its l1hits.LayerHitSet at once, so a
// later seed can never reuse it. That greedy order decides the result and
// must not be changed.
//
// All arithmetic is integer with ratios scaled by 2048 and rounding done by
// adding half the divisor, so results are bit-reproducible.
//
// Dependency rule: L2 may depend on l1hits and geometry, but never on
// l3veto or pipeline. No SQL/database code is allowed in this package.
package l2projections
