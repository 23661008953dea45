package scm

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ryanmoran/dockerdev/internal/process"
)

// Mercurial is the mercurial backend, driven through the hg executable.
type Mercurial struct {
	runner process.Runner
}

// NewMercurial creates the mercurial backend.
func NewMercurial(runner process.Runner) Mercurial {
	return Mercurial{runner: runner}
}

func (Mercurial) Name() string {
	return "mercurial"
}

func (Mercurial) IsRoot(path string) bool {
	return isDir(filepath.Join(path, ".hg"))
}

func (m Mercurial) Open(path string) (Repository, error) {
	if !m.IsRoot(path) {
		return nil, fmt.Errorf("failed to open mercurial repository %q: no .hg directory", path)
	}

	return &mercurialRepository{root: path, runner: m.runner}, nil
}

func (m Mercurial) Clone(ctx context.Context, source, dest string) (Repository, error) {
	_, err := process.RunChecked(ctx, m.runner, process.Command{
		Name: "hg",
		Args: []string{"clone", source, dest},
	})
	if err != nil {
		return nil, err
	}

	return &mercurialRepository{root: dest, runner: m.runner}, nil
}

func (Mercurial) MetadataDirectories() []string {
	return []string{".hg"}
}

type mercurialRepository struct {
	root   string
	runner process.Runner
}

func (r *mercurialRepository) Root() string {
	return r.root
}

func (r *mercurialRepository) Update(ctx context.Context) (process.Result, error) {
	return r.runner.Run(ctx, r.command("update"))
}

func (r *mercurialRepository) PullAndUpdate(ctx context.Context) (process.Result, error) {
	return r.runner.Run(ctx, r.command("pull", "--update"))
}

func (r *mercurialRepository) WorkingChanges(ctx context.Context) ([]string, error) {
	return r.status(ctx, "--modified", "--added")
}

func (r *mercurialRepository) UntrackedChanges(ctx context.Context) ([]string, error) {
	return r.status(ctx, "--unknown")
}

func (r *mercurialRepository) status(ctx context.Context, filters ...string) ([]string, error) {
	args := append([]string{"status", "--no-status", "--print0"}, filters...)
	result, err := process.RunChecked(ctx, r.runner, r.command(args...))
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, path := range strings.Split(result.Output, "\x00") {
		if path == "" {
			continue
		}
		paths = append(paths, filepath.Join(r.root, filepath.FromSlash(path)))
	}
	sort.Strings(paths)

	return paths, nil
}

func (r *mercurialRepository) command(args ...string) process.Command {
	return process.Command{
		Dir:  r.root,
		Name: "hg",
		Args: args,
	}
}
