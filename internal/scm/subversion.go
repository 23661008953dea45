package scm

import (
	"bufio"
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ryanmoran/dockerdev/internal/process"
)

// svnStatusPathColumn is where the path begins in `svn status` output, after
// the seven status columns and a separator.
const svnStatusPathColumn = 8

// Subversion is the subversion backend, driven through the svn executable.
// Subversion is centralized: a clone is a second checkout of the source's URL.
type Subversion struct {
	runner process.Runner
}

// NewSubversion creates the subversion backend.
func NewSubversion(runner process.Runner) Subversion {
	return Subversion{runner: runner}
}

func (Subversion) Name() string {
	return "subversion"
}

func (Subversion) IsRoot(path string) bool {
	return isDir(filepath.Join(path, ".svn"))
}

func (s Subversion) Open(path string) (Repository, error) {
	if !s.IsRoot(path) {
		return nil, fmt.Errorf("failed to open subversion working copy %q: no .svn directory", path)
	}

	return &subversionRepository{root: path, runner: s.runner}, nil
}

func (s Subversion) Clone(ctx context.Context, source, dest string) (Repository, error) {
	info, err := process.RunChecked(ctx, s.runner, process.Command{
		Dir:  source,
		Name: "svn",
		Args: []string{"info", "--show-item", "url"},
	})
	if err != nil {
		return nil, err
	}

	url := strings.TrimSpace(info.Output)
	if url == "" {
		return nil, fmt.Errorf("failed to determine the repository url of %q", source)
	}

	_, err = process.RunChecked(ctx, s.runner, process.Command{
		Name: "svn",
		Args: []string{"checkout", url, dest},
	})
	if err != nil {
		return nil, err
	}

	return &subversionRepository{root: dest, runner: s.runner}, nil
}

func (Subversion) MetadataDirectories() []string {
	return []string{".svn"}
}

type subversionRepository struct {
	root   string
	runner process.Runner
}

func (r *subversionRepository) Root() string {
	return r.root
}

func (r *subversionRepository) Update(ctx context.Context) (process.Result, error) {
	return r.runner.Run(ctx, process.Command{
		Dir:  r.root,
		Name: "svn",
		Args: []string{"update"},
	})
}

func (r *subversionRepository) WorkingChanges(ctx context.Context) ([]string, error) {
	return r.status(ctx, "MAR")
}

func (r *subversionRepository) UntrackedChanges(ctx context.Context) ([]string, error) {
	return r.status(ctx, "?")
}

// status returns the paths whose item status (first column) is one of codes.
func (r *subversionRepository) status(ctx context.Context, codes string) ([]string, error) {
	result, err := process.RunChecked(ctx, r.runner, process.Command{
		Dir:  r.root,
		Name: "svn",
		Args: []string{"status"},
	})
	if err != nil {
		return nil, err
	}

	return parseSubversionStatus(r.root, result.Output, codes), nil
}

func parseSubversionStatus(root, output, codes string) []string {
	var paths []string

	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := scanner.Text()
		if len(line) <= svnStatusPathColumn {
			continue
		}
		if !strings.ContainsRune(codes, rune(line[0])) {
			continue
		}

		path := strings.TrimSpace(line[svnStatusPathColumn:])
		paths = append(paths, filepath.Join(root, filepath.FromSlash(path)))
	}
	sort.Strings(paths)

	return paths
}
