// Package config defines the YAML-backed settings shared by the packager
// commands: bundler input and output names, the publish folder, and bounds
// on bundler execution. Load falls back to defaults when no settings file
// exists so the zero-argument pipeline always runs.
package config
