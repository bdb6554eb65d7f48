// Package bundler wraps the external bundling tool that packages the entry
// script and its dependencies into a single standalone executable. Output of
// the tool is passed through to the terminal unchanged so failures read
// exactly as the tool reported them.
package bundler
