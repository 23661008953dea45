package docker

import (
	"archive/tar"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/chainguard-dev/clog"
	"github.com/moby/moby/client"

	"github.com/ryanmoran/dockerdev/internal"
)

// BundleBuildArg is the build argument that carries the bundle's file name
// within the build context.
const BundleBuildArg = "BUNDLE"

type Image struct {
	Name string
}

type Client struct {
	client DockerClient
}

// NewClient creates a Client that wraps the provided Docker client interface.
func NewClient(dockerClient DockerClient) Client {
	return Client{
		client: dockerClient,
	}
}

// NewDefaultClient creates a Client with a real Docker client from the environment.
func NewDefaultClient() (Client, error) {
	cli, err := client.New(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return Client{}, fmt.Errorf("failed to create docker client: %w\nEnsure Docker is running and DOCKER_HOST is set correctly", err)
	}

	return NewClient(cli), nil
}

// Close closes the underlying Docker client connection.
func (c Client) Close() {
	c.client.Close()
}

// Ping checks that the Docker daemon is reachable and returns its API version.
func (c Client) Ping(ctx context.Context) (string, error) {
	ping, err := c.client.Ping(ctx, client.PingOptions{})
	if err != nil {
		return "", fmt.Errorf("failed to ping docker daemon: %w\nEnsure Docker is running and DOCKER_HOST is set correctly", err)
	}
	return ping.APIVersion, nil
}

// BuildImage builds an image tagged imageName from the Dockerfile at
// dockerfilePath. The build context holds the Dockerfile and the bundle under
// its base name, which is also passed as the BUNDLE build argument. Build
// output is streamed to w.
func (c Client) BuildImage(ctx context.Context, dockerfilePath, bundlePath string, imageName internal.ImageName, w internal.Writer) (Image, error) {
	dockerfile, err := os.ReadFile(dockerfilePath)
	if err != nil {
		return Image{}, fmt.Errorf("failed to read Dockerfile at %q: %w\nCheck that the file exists and is readable", dockerfilePath, err)
	}

	bundleName := filepath.Base(bundlePath)
	if bundleName == "Dockerfile" {
		return Image{}, fmt.Errorf("bundle %q conflicts with the Dockerfile in the build context", bundlePath)
	}

	clog.FromContext(ctx).With("image", string(imageName)).Debugf("Building image from %s with %s", dockerfilePath, bundleName)

	pr, pw := io.Pipe()
	defer pr.Close()

	errChan := make(chan error, 1)

	go func() {
		err := writeBuildContext(pw, dockerfile, bundlePath)
		pw.CloseWithError(err)
		errChan <- err
	}()

	response, err := c.client.ImageBuild(ctx, pr, client.ImageBuildOptions{
		Dockerfile: "Dockerfile",
		Tags:       []string{string(imageName)},
		Remove:     true,
		BuildArgs:  map[string]*string{BundleBuildArg: &bundleName},
	})
	if err != nil {
		return Image{}, fmt.Errorf("failed to build image %q: %w\nCheck Docker daemon logs for details", imageName, err)
	}
	defer response.Body.Close()

	decoder := json.NewDecoder(response.Body)
	for decoder.More() {
		select {
		case <-ctx.Done():
			return Image{}, ctx.Err()
		default:
		}

		var output struct {
			Stream      string `json:"stream"`
			ErrorDetail struct {
				Code    int    `json:"code"`
				Message string `json:"message"`
			} `json:"errorDetail"`
			Error string `json:"error"`
		}
		if err := decoder.Decode(&output); err != nil {
			return Image{}, fmt.Errorf("failed to decode build output: %w\nDocker may have returned malformed JSON", err)
		}

		if output.ErrorDetail.Code != 0 || output.ErrorDetail.Message != "" || output.Error != "" {
			message := output.ErrorDetail.Message
			if message == "" {
				message = output.Error
			}
			return Image{}, fmt.Errorf("docker build failed: %s\nCheck your Dockerfile syntax and base image availability", message)
		}

		w.Print(output.Stream)
	}

	// The daemon has consumed what it needs; a writer still blocked on the
	// pipe is released by closing the read side.
	pr.Close()
	if err := <-errChan; err != nil && !errors.Is(err, io.ErrClosedPipe) {
		return Image{}, err
	}

	return Image{
		Name: string(imageName),
	}, nil
}

func writeBuildContext(out io.Writer, dockerfile []byte, bundlePath string) error {
	tw := tar.NewWriter(out)

	header := &tar.Header{
		Name: "Dockerfile",
		Mode: 0644,
		Size: int64(len(dockerfile)),
	}
	if err := tw.WriteHeader(header); err != nil {
		return fmt.Errorf("failed to write tar header for Dockerfile: %w", err)
	}
	if _, err := tw.Write(dockerfile); err != nil {
		return fmt.Errorf("failed to write Dockerfile to tar archive: %w", err)
	}

	bundle, err := os.Open(bundlePath)
	if err != nil {
		return fmt.Errorf("failed to open bundle %q: %w", bundlePath, err)
	}
	defer bundle.Close()

	info, err := bundle.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat bundle %q: %w", bundlePath, err)
	}

	header = &tar.Header{
		Name:    filepath.Base(bundlePath),
		Mode:    0644,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}
	if err := tw.WriteHeader(header); err != nil {
		return fmt.Errorf("failed to write tar header for bundle: %w", err)
	}
	if _, err := io.Copy(tw, bundle); err != nil {
		return fmt.Errorf("failed to write bundle to tar archive: %w", err)
	}

	if err := tw.Close(); err != nil {
		return fmt.Errorf("failed to finish build context: %w", err)
	}

	return nil
}
