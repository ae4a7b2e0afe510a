package hcl

import "github.com/hashicorp/hcl/v2"

// fileRoot is a struct used to decode all possible top-level content from
// any manifest file.
type fileRoot struct {
	DependencyGraph *string         `hcl:"dependency_graph,optional"`
	Parallelism     hcl.Expression  `hcl:"parallelism,optional"`
	Projects        []*projectBlock `hcl:"project,block"`
	Commands        []*commandBlock `hcl:"command,block"`
	Remain          hcl.Body        `hcl:",remain"`
}

// projectBlock is the HCL shape of a `project "<name>" {}` block.
type projectBlock struct {
	Name                       string            `hcl:"name,label"`
	Folder                     string            `hcl:"folder"`
	CyclicDependencyExceptions []string          `hcl:"cyclic_dependency_exceptions,optional"`
	Scripts                    map[string]string `hcl:"scripts,optional"`
}

// commandBlock is the HCL shape of a `command "<name>" {}` block.
type commandBlock struct {
	Name                  string   `hcl:"name,label"`
	Description           string   `hcl:"description,optional"`
	Incremental           *bool    `hcl:"incremental,optional"`
	Parallel              *bool    `hcl:"parallel,optional"`
	IgnoreMissingScript   bool     `hcl:"ignore_missing_script,optional"`
	IgnoreDependencyOrder bool     `hcl:"ignore_dependency_order,optional"`
	DefaultArgs           []string `hcl:"default_args,optional"`
}
