// package tasks implements the reconciliation engine that drives generation
// tasks from submission to settled song records.
//
// The core abstraction is Reconciler, which owns one poll loop per task id.
// Tracking a task writes placeholder records so the collection reflects the
// pending work immediately; each poll tick fetches the provider's view,
// merges record statuses monotonically into the store, and cleans up the
// placeholders once real records land. Loops stop when every record settles,
// on the first failure, or silently at the attempt ceiling. Outcomes are
// emitted via a non-blocking event channel for CLI/UI layers.
package tasks
