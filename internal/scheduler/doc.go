// Package scheduler executes a graph of tasks with bounded concurrency.
//
// Tasks and their dependency edges are registered first; Execute then
// freezes the graph, rejecting unknown endpoints and cycles, and runs it.
// A fixed pool of workers drains a buffered channel of ready node indices.
// Every state change (a status transition, a predecessor counter decrement
// or a push to the ready channel) happens under a single mutex, and the
// channel is closed once every node has reached a terminal status.
//
// A task that fails does not stop independent branches. Its transitive
// dependents are marked blocked-failed without running, and Execute
// reports every failed and blocked task once all work is done.
package scheduler
