// Package watcher reruns the packaging pipeline whenever the entry script
// or icon changes on disk. Rapid saves are debounced into a single build.
package watcher
