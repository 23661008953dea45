package internal

import (
	"fmt"
	"math/rand/v2"
	"path/filepath"
)

type Session struct {
	id int64
}

// GenerateSession creates a new session with a random numeric identifier.
// The session is used to name the default working directory of a bundle.
func GenerateSession() Session {
	return Session{id: rand.Int64N(10000)}
}

// String returns the string representation of the session, equivalent to calling ID().
func (s Session) String() string {
	return s.ID()
}

// ID returns the session identifier in the format "dockerdev-<number>".
func (s Session) ID() string {
	return fmt.Sprintf("dockerdev-%d", s.id)
}

// WorkingDir returns the default working directory for the session beneath
// tempRoot. The directory is not created.
func (s Session) WorkingDir(tempRoot string) string {
	return filepath.Join(tempRoot, s.ID())
}
