// Package extract turns raw document bytes into a fragment-level
// [model.Document].
//
// A [Coordinator] opens the bytes with a source decoder, retrieves every page
// on a bounded worker pool, normalizes text runs into fragments and resolves
// each distinct font reference exactly once. Progress is tracked by three
// ordered counters (metadata, pages, fonts) and reported to an [Observer].
//
// Every call to [Coordinator.Extract] builds fresh per-file state, so nothing
// carries over between files of a batch.
package extract
