package docker

import (
	"context"
	"io"

	"github.com/moby/moby/client"
)

// DockerClient is the subset of the Docker API used by Client.
//
// The real Docker client (*client.Client from moby/moby/client) implements this
// interface; tests inject a mock:
//
//	c := docker.NewClient(&mockDockerClient{})
type DockerClient interface {
	ImageBuild(ctx context.Context, buildContext io.Reader, options client.ImageBuildOptions) (client.ImageBuildResult, error)
	Ping(ctx context.Context, options client.PingOptions) (client.PingResult, error)
	Close() error
}
