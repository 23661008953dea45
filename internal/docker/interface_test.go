package docker_test

import (
	"github.com/moby/moby/client"

	"github.com/ryanmoran/dockerdev/internal/docker"
)

var _ docker.DockerClient = (*client.Client)(nil)
