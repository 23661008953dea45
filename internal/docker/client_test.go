package docker_test

import (
	"archive/tar"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/moby/moby/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ryanmoran/dockerdev/internal"
	"github.com/ryanmoran/dockerdev/internal/docker"
)

func buildOutput(t *testing.T, messages ...map[string]interface{}) []byte {
	t.Helper()

	var out []byte
	for _, message := range messages {
		line, err := json.Marshal(message)
		require.NoError(t, err)
		out = append(out, line...)
		out = append(out, '\n')
	}
	return out
}

func writeBuildInputs(t *testing.T) (string, string) {
	t.Helper()

	dir := t.TempDir()
	dockerfilePath := filepath.Join(dir, "Dockerfile")
	require.NoError(t, os.WriteFile(dockerfilePath, []byte("FROM alpine:latest\nARG BUNDLE\nADD ${BUNDLE} /src/\n"), 0644))

	bundlePath := filepath.Join(dir, "out", "repo.tgz")
	require.NoError(t, os.MkdirAll(filepath.Dir(bundlePath), 0755))
	require.NoError(t, os.WriteFile(bundlePath, []byte("bundle bytes"), 0644))

	return dockerfilePath, bundlePath
}

func TestBuildImageWithMock(t *testing.T) {
	t.Run("streams the Dockerfile and bundle as the build context", func(t *testing.T) {
		dockerfilePath, bundlePath := writeBuildInputs(t)
		contextFiles := map[string]string{}
		var capturedOptions client.ImageBuildOptions

		mock := &mockDockerClient{
			imageBuildFunc: func(ctx context.Context, buildContext io.Reader, options client.ImageBuildOptions) (client.ImageBuildResult, error) {
				capturedOptions = options

				tr := tar.NewReader(buildContext)
				for {
					header, err := tr.Next()
					if errors.Is(err, io.EOF) {
						break
					}
					require.NoError(t, err)
					content, err := io.ReadAll(tr)
					require.NoError(t, err)
					contextFiles[header.Name] = string(content)
				}

				return client.ImageBuildResult{
					Body: io.NopCloser(bytes.NewReader(buildOutput(t,
						map[string]interface{}{"stream": "Step 1/3 : FROM alpine:latest\n"},
						map[string]interface{}{"stream": "Successfully built abc123\n"},
					))),
				}, nil
			},
		}

		var out bytes.Buffer
		c := docker.NewClient(mock)

		image, err := c.BuildImage(context.Background(), dockerfilePath, bundlePath, "test:latest", internal.NewCustomWriter(&out, &out))
		require.NoError(t, err)
		assert.Equal(t, "test:latest", image.Name)
		assert.Contains(t, out.String(), "Step 1/3")
		assert.Contains(t, out.String(), "Successfully built abc123")

		assert.Equal(t, map[string]string{
			"Dockerfile": "FROM alpine:latest\nARG BUNDLE\nADD ${BUNDLE} /src/\n",
			"repo.tgz":   "bundle bytes",
		}, contextFiles)

		assert.Equal(t, "Dockerfile", capturedOptions.Dockerfile)
		assert.Equal(t, []string{"test:latest"}, capturedOptions.Tags)
		assert.True(t, capturedOptions.Remove)
		require.NotNil(t, capturedOptions.BuildArgs[docker.BundleBuildArg])
		assert.Equal(t, "repo.tgz", *capturedOptions.BuildArgs[docker.BundleBuildArg])
	})

	t.Run("succeeds when the daemon does not read the whole context", func(t *testing.T) {
		dockerfilePath, bundlePath := writeBuildInputs(t)

		mock := &mockDockerClient{
			imageBuildFunc: func(ctx context.Context, buildContext io.Reader, options client.ImageBuildOptions) (client.ImageBuildResult, error) {
				return client.ImageBuildResult{
					Body: io.NopCloser(bytes.NewReader(buildOutput(t, map[string]interface{}{"stream": "done\n"}))),
				}, nil
			},
		}

		var out bytes.Buffer
		_, err := docker.NewClient(mock).BuildImage(context.Background(), dockerfilePath, bundlePath, "test:latest", internal.NewCustomWriter(&out, &out))
		require.NoError(t, err)
	})

	t.Run("fails when the Dockerfile is missing", func(t *testing.T) {
		_, bundlePath := writeBuildInputs(t)

		var out bytes.Buffer
		_, err := docker.NewClient(&mockDockerClient{}).BuildImage(context.Background(), filepath.Join(t.TempDir(), "Dockerfile"), bundlePath, "test:latest", internal.NewCustomWriter(&out, &out))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read Dockerfile")
	})

	t.Run("fails when the bundle is missing", func(t *testing.T) {
		dockerfilePath, _ := writeBuildInputs(t)

		mock := &mockDockerClient{
			imageBuildFunc: func(ctx context.Context, buildContext io.Reader, options client.ImageBuildOptions) (client.ImageBuildResult, error) {
				_, err := io.Copy(io.Discard, buildContext)
				return client.ImageBuildResult{}, err
			},
		}

		var out bytes.Buffer
		_, err := docker.NewClient(mock).BuildImage(context.Background(), dockerfilePath, filepath.Join(t.TempDir(), "missing.tgz"), "test:latest", internal.NewCustomWriter(&out, &out))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to open bundle")
	})

	t.Run("fails when ImageBuild returns error", func(t *testing.T) {
		dockerfilePath, bundlePath := writeBuildInputs(t)

		mock := &mockDockerClient{
			imageBuildFunc: func(ctx context.Context, buildContext io.Reader, options client.ImageBuildOptions) (client.ImageBuildResult, error) {
				return client.ImageBuildResult{}, errors.New("build failed")
			},
		}

		var out bytes.Buffer
		_, err := docker.NewClient(mock).BuildImage(context.Background(), dockerfilePath, bundlePath, "test:latest", internal.NewCustomWriter(&out, &out))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to build image")
	})

	t.Run("fails when build output contains error detail", func(t *testing.T) {
		dockerfilePath, bundlePath := writeBuildInputs(t)

		mock := &mockDockerClient{
			imageBuildFunc: func(ctx context.Context, buildContext io.Reader, options client.ImageBuildOptions) (client.ImageBuildResult, error) {
				return client.ImageBuildResult{
					Body: io.NopCloser(bytes.NewReader(buildOutput(t, map[string]interface{}{
						"errorDetail": map[string]interface{}{
							"code":    1,
							"message": "dockerfile parse error",
						},
					}))),
				}, nil
			},
		}

		var out bytes.Buffer
		_, err := docker.NewClient(mock).BuildImage(context.Background(), dockerfilePath, bundlePath, "test:latest", internal.NewCustomWriter(&out, &out))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "dockerfile parse error")
	})

	t.Run("fails when build output contains an error without a code", func(t *testing.T) {
		dockerfilePath, bundlePath := writeBuildInputs(t)

		mock := &mockDockerClient{
			imageBuildFunc: func(ctx context.Context, buildContext io.Reader, options client.ImageBuildOptions) (client.ImageBuildResult, error) {
				return client.ImageBuildResult{
					Body: io.NopCloser(bytes.NewReader(buildOutput(t, map[string]interface{}{
						"error": "ADD failed: file not found",
					}))),
				}, nil
			},
		}

		var out bytes.Buffer
		_, err := docker.NewClient(mock).BuildImage(context.Background(), dockerfilePath, bundlePath, "test:latest", internal.NewCustomWriter(&out, &out))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ADD failed: file not found")
	})

	t.Run("handles context cancellation", func(t *testing.T) {
		dockerfilePath, bundlePath := writeBuildInputs(t)

		mock := &mockDockerClient{
			imageBuildFunc: func(ctx context.Context, buildContext io.Reader, options client.ImageBuildOptions) (client.ImageBuildResult, error) {
				return client.ImageBuildResult{
					Body: io.NopCloser(bytes.NewReader(buildOutput(t, map[string]interface{}{"stream": "Step 1/1\n"}))),
				}, nil
			},
		}

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		var out bytes.Buffer
		_, err := docker.NewClient(mock).BuildImage(ctx, dockerfilePath, bundlePath, "test:latest", internal.NewCustomWriter(&out, &out))
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestPing(t *testing.T) {
	t.Run("returns the API version", func(t *testing.T) {
		mock := &mockDockerClient{
			pingFunc: func(ctx context.Context, options client.PingOptions) (client.PingResult, error) {
				return client.PingResult{APIVersion: "1.52"}, nil
			},
		}

		version, err := docker.NewClient(mock).Ping(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "1.52", version)
	})

	t.Run("explains an unreachable daemon", func(t *testing.T) {
		mock := &mockDockerClient{
			pingFunc: func(ctx context.Context, options client.PingOptions) (client.PingResult, error) {
				return client.PingResult{}, errors.New("connection refused")
			},
		}

		_, err := docker.NewClient(mock).Ping(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to ping docker daemon")
		assert.Contains(t, err.Error(), "connection refused")
	})
}

func TestClientClose(t *testing.T) {
	t.Run("calls close on underlying client", func(t *testing.T) {
		closeCalled := false
		mock := &mockDockerClient{
			closeFunc: func() error {
				closeCalled = true
				return nil
			},
		}

		docker.NewClient(mock).Close()

		assert.True(t, closeCalled)
	})

	t.Run("handles close error gracefully", func(t *testing.T) {
		mock := &mockDockerClient{
			closeFunc: func() error {
				return errors.New("close failed")
			},
		}

		assert.NotPanics(t, func() {
			docker.NewClient(mock).Close()
		})
	})
}
