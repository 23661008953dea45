// Package internal contains shared types and utilities for dockerdev.
//
// It provides configuration parsing, working directory naming, cleanup
// orchestration, file copying, and the output abstractions used across the
// scm, bundle, docker, and setup packages.
package internal
