// Package bundle produces a compressed archive of a source checkout for
// inclusion in a container image.
//
// A Bundler detects the source control backend of the checkout, brings a
// working directory up to date with the committed state, optionally overlays
// the uncommitted changes of the checkout, and archives the working directory
// with tar. Every step is sequential and any failure ends the run.
//
// Deleted files are not propagated by the overlay: a file removed from the
// checkout but still committed remains in the working directory and therefore
// in the archive.
package bundle
