// Package docker builds container images around a repository bundle.
//
// The Client streams a build context holding a Dockerfile and the bundle to
// the Docker daemon and relays the build output. The daemon is reached
// through the DockerClient interface so tests can substitute a mock.
package docker
