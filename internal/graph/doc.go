// Package graph holds the structure of a task graph while it is being
// registered and freezes it into an index-based arena for execution.
//
// Registration is order-insensitive: edges may name nodes that are added
// later. Nothing is resolved until Finalize, which maps every edge to node
// indices and rejects edges whose endpoints were never registered, self
// edges and cycles. The resulting Arena is immutable and safe to share
// between goroutines without locking.
//
// Nodes in an Arena are ordered by name, so iterating indices in order
// yields a deterministic traversal.
package graph
