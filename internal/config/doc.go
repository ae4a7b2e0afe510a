// Package config defines the format-agnostic model of a repository
// manifest: which projects exist, where they live and which commands can be
// run across them. Format-specific loaders (see internal/hcl) translate
// their input into this model so the rest of the application never sees
// the file format.
package config
