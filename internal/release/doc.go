// Package release describes published builds.
//
// It computes SHA-512 checksums for artifacts, names the bundler output for
// the current platform, and reads/writes the YAML manifest placed next to
// the published executable.
package release
