// Package geometry builds the integer lookup tables the tracker filter
// runs on.
//
// A Layout describes a tracker, its ACD shield and the skirt plane in
// millimetres. Build converts it into a Geometry: strip-unit offsets and
// edges, absolute Z in 0.1 mm units, and the 2048-scaled ratios used to
// predict hits and extrapolate projections. The conversions round by adding
// half the divisor, so a given Layout always yields the same tables.
//
// Built-in geometries are looked up by ID; IDDefault resolves to the flight
// geometry.
//
// Dependency rule: geometry depends on nothing else under internal/lat.
package geometry
