// Package engine holds the write-side interception point for the external
// query engine. GuardedUpdater asks the read-only gate before any update,
// delete or commit reaches the wrapped updater.
package engine
