// Package scm abstracts the source control systems a checkout can belong to.
//
// Each Backend detects repository roots, opens and clones repositories, and
// names the metadata directories it keeps inside a working copy. Backends are
// checked in a fixed order by Detect. Distributed systems additionally
// implement DistributedRepository so callers can fetch before updating.
package scm
