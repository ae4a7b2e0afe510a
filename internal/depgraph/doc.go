// Package depgraph reads the persisted project dependency graph: a JSON or
// YAML document mapping each project name to the ordered list of local
// projects it depends on.
//
//	{
//	  "@acme/core": [],
//	  "@acme/app": ["@acme/core"]
//	}
//
// The graph is produced by a separate generation step. It is loaded once per
// invocation and never mutated, so a Graph may be shared between goroutines
// without synchronization.
package depgraph
