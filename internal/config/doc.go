// Package config defines release pipeline settings and provides helpers to
// load, validate and save them in YAML format.
//
// The Config type holds the manifest and pack file locations, the build
// toolchain invocation, and the publishing targets (mirror working copy or
// the primary branch of the current repository).
package config
