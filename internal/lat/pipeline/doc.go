// Package pipeline runs the tracker filter over whole events.
//
// A Context owns the per-event projection arena and is reused from event to
// event; it is not safe for concurrent use. Run one Context per goroutine.
// For every tower holding clusters, Run finds the X and Y projections,
// projects them to the ACD faces and the skirt plane, and Classify turns the
// per-tower words and the event energy into a Status.
package pipeline
