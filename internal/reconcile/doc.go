// Package reconcile classifies requested item names against the remote
// shopping list and applies the matching mutations.
//
// Every operation takes one snapshot of the list, partitions the requested
// names in input order, mutates the gateway for the actionable subset, and
// returns the two ordered name sequences the response composer renders.
// The snapshot is never re-read mid-batch; a gateway failure aborts the
// batch without rolling back mutations already applied.
package reconcile
