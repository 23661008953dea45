// Package setup declares how a repository is prepared for development: the
// repositories it depends on and the custom actions, symbolic links into a
// foundation checkout, that setting it up performs.
//
// The declaration is read from Setup.yaml at the repository root. Without
// that file the built-in declaration, DefaultConfiguration, is used.
package setup
