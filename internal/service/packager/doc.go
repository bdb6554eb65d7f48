// Package packager implements the clean→build→publish pipeline.
//
// It removes bundler leftovers, invokes the external bundler to produce a
// single windowed executable, and copies the artifact to the publish folder
// atomically with SHA-512 checksum verification, writing a release manifest
// next to it. A marker file guards against overlapping runs and every full
// run is recorded in the local build history.
package packager
