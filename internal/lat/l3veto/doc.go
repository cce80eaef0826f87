// Package l3veto projects finished track projections outward to the
// anti-coincidence detector (ACD) and down to the skirt plane below the
// tracker.
//
// AcdProject returns a packed word naming the first ACD face whose
// projected tiles coincide with struck tiles, and SkirtProject returns the
// skirt regions crossed by both an X and a Y projection of the tower.
// Both record the per-projection masks on the projections they are given.
package l3veto
