// Package sqlite contains SQLite repository implementations for filter
// runs and their per-event results.
//
// The pipeline packages never see SQL. A replay hands each
// pipeline.Result to EventStore.InsertResult, which copies what it needs
// before the next event overwrites the Result.
package sqlite
