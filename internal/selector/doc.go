// Package selector turns --to and --from filters into the set of projects a
// command runs for, together with the dependency edges between them.
//
// --to NAME selects NAME and everything it transitively depends on;
// --from NAME selects NAME and everything that transitively depends on it.
// Several filters are combined by union, and no filters at all select every
// project. Cyclic dependency exceptions declared by a project are removed
// from the graph before any closure is computed.
package selector
