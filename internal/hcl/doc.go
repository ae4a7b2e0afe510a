// Package hcl provides the concrete HCL implementation of config.Loader.
// It is responsible for locating the repository manifest, parsing every
// manifest file and translating the decoded blocks into the
// format-agnostic config.Repository.
//
// A repository is described by a taskgrid.hcl file at its root and any
// additional *.hcl files under <root>/.taskgrid/:
//
//	dependency_graph = "common/temp/dependency-graph.json"
//	parallelism      = env.CI == "true" ? 4 : "max"
//
//	project "@acme/app" {
//	  folder                       = "apps/app"
//	  cyclic_dependency_exceptions = ["@acme/tools"]
//	}
//
//	command "test" {
//	  incremental           = true
//	  ignore_missing_script = true
//	}
//
// Attribute expressions may read the process environment through the
// env object.
package hcl
