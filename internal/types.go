package internal

import "strings"

// ImageName represents a Docker image name.
type ImageName string

// Environment represents the process environment as KEY=VALUE pairs.
type Environment []string

// Lookup returns the environment as a map. Entries without an "=" are ignored.
func (e Environment) Lookup() map[string]string {
	lookup := make(map[string]string, len(e))
	for _, variable := range e {
		key, value, ok := strings.Cut(variable, "=")
		if ok {
			lookup[key] = value
		}
	}

	return lookup
}
