package config

import "context"

// Loader is the interface for a format-specific manifest loader.
type Loader interface {
	// Load locates the manifest for the repository at path (a directory or
	// the manifest file itself), translates it into the format-agnostic
	// model and validates it.
	Load(ctx context.Context, path string) (*Repository, error)
}
