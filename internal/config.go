package internal

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sethvargo/go-envconfig"
	"github.com/spf13/pflag"
)

const (
	// BundleExtension is the suffix enforced on bundle filenames.
	BundleExtension = ".tgz"

	// ArchiveName is the name of the archive produced inside the working directory
	// before it is copied to the bundle filename.
	ArchiveName = "archive.tgz"

	// DefaultDockerfile is the Dockerfile name used, relative to the repository
	// root, when an image is requested without --dockerfile.
	DefaultDockerfile = "Dockerfile"
)

// EnvironmentConfig holds the settings read from the process environment.
type EnvironmentConfig struct {
	TempDir        string `env:"TMPDIR"`
	FoundationRoot string `env:"DE_FOUNDATION_ROOT"`
	Verbose        bool   `env:"DOCKERDEV_VERBOSE,default=false"`
	Debug          bool   `env:"DOCKERDEV_DEBUG,default=false"`
}

// ParseEnvironment reads the EnvironmentConfig from the given KEY=VALUE pairs
// rather than the live process environment. TempDir falls back to os.TempDir.
func ParseEnvironment(ctx context.Context, environment Environment) (EnvironmentConfig, error) {
	var cfg EnvironmentConfig
	err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: envconfig.MapLookuper(environment.Lookup()),
	})
	if err != nil {
		return EnvironmentConfig{}, fmt.Errorf("failed to process environment: %w", err)
	}

	if cfg.TempDir == "" {
		cfg.TempDir = os.TempDir()
	}

	return cfg, nil
}

// BundleFlags are the command-line flags of bundle-repo.
type BundleFlags struct {
	IncludeWorkingChanges bool
	PreserveWorkingDir    bool
	Verbose               bool
	Debug                 bool
	Image                 string
	Dockerfile            string
}

// Register adds the flags to fs.
func (f *BundleFlags) Register(fs *pflag.FlagSet) {
	fs.BoolVar(&f.IncludeWorkingChanges, "include-working-changes", false, "Include working changes when bundling the repository.")
	fs.BoolVar(&f.PreserveWorkingDir, "preserve-working-dir", false, "Do not delete the working directory upon program exit.")
	fs.BoolVar(&f.Verbose, "verbose", false, "Write verbose information to the terminal.")
	fs.BoolVar(&f.Debug, "debug", false, "Write additional debug information to the terminal.")
	fs.StringVar(&f.Image, "image", "", "Build a docker image with this name from the bundle.")
	fs.StringVar(&f.Dockerfile, "dockerfile", "", "Dockerfile used with --image (default: REPO_ROOT/Dockerfile).")
}

type BundleConfig struct {
	RepoRoot   string
	BundlePath string
	WorkingDir string

	IncludeWorkingChanges bool
	PreserveWorkingDir    bool
	Verbose               bool
	Debug                 bool

	Image ImageConfig
}

type ImageConfig struct {
	Name           ImageName
	DockerfilePath string
}

// Enabled reports whether an image build was requested.
func (c ImageConfig) Enabled() bool {
	return c.Name != ""
}

// NewBundleConfig resolves the positional arguments REPO_ROOT BUNDLE_FILENAME
// [WORKING_DIR] into absolute paths and combines them with flags and env.
// REPO_ROOT must be an existing directory. BUNDLE_FILENAME gets the .tgz suffix
// appended when it has another extension or none. WORKING_DIR defaults to a new
// name beneath the temporary directory.
func NewBundleConfig(args []string, flags BundleFlags, env EnvironmentConfig) (BundleConfig, error) {
	if len(args) < 2 || len(args) > 3 {
		return BundleConfig{}, fmt.Errorf("expected arguments REPO_ROOT BUNDLE_FILENAME [WORKING_DIR], got %d argument(s)", len(args))
	}

	root, err := filepath.Abs(args[0])
	if err != nil {
		return BundleConfig{}, fmt.Errorf("failed to resolve repository root %q: %w", args[0], err)
	}

	info, err := os.Stat(root)
	if err != nil {
		return BundleConfig{}, fmt.Errorf("repository root %q does not exist: %w", root, err)
	}
	if !info.IsDir() {
		return BundleConfig{}, fmt.Errorf("repository root %q is not a directory", root)
	}

	bundlePath, err := filepath.Abs(args[1])
	if err != nil {
		return BundleConfig{}, fmt.Errorf("failed to resolve bundle filename %q: %w", args[1], err)
	}
	if info, err := os.Stat(bundlePath); err == nil && info.IsDir() {
		return BundleConfig{}, fmt.Errorf("bundle filename %q is a directory", bundlePath)
	}
	bundlePath = EnsureBundleExtension(bundlePath)

	var workingDir string
	if len(args) == 3 {
		workingDir, err = filepath.Abs(args[2])
		if err != nil {
			return BundleConfig{}, fmt.Errorf("failed to resolve working directory %q: %w", args[2], err)
		}
		if info, err := os.Stat(workingDir); err == nil && !info.IsDir() {
			return BundleConfig{}, fmt.Errorf("working directory %q is not a directory", workingDir)
		}
	} else {
		workingDir = GenerateSession().WorkingDir(env.TempDir)
	}

	var image ImageConfig
	if flags.Image != "" {
		dockerfile := flags.Dockerfile
		if dockerfile == "" {
			dockerfile = filepath.Join(root, DefaultDockerfile)
		}
		dockerfile, err = filepath.Abs(dockerfile)
		if err != nil {
			return BundleConfig{}, fmt.Errorf("failed to resolve Dockerfile path %q: %w", flags.Dockerfile, err)
		}

		image = ImageConfig{
			Name:           ImageName(flags.Image),
			DockerfilePath: dockerfile,
		}
	} else if flags.Dockerfile != "" {
		return BundleConfig{}, fmt.Errorf("--dockerfile requires --image")
	}

	return BundleConfig{
		RepoRoot:              root,
		BundlePath:            bundlePath,
		WorkingDir:            workingDir,
		IncludeWorkingChanges: flags.IncludeWorkingChanges,
		PreserveWorkingDir:    flags.PreserveWorkingDir,
		Verbose:               flags.Verbose || env.Verbose,
		Debug:                 flags.Debug || env.Debug,
		Image:                 image,
	}, nil
}

// EnsureBundleExtension appends ".tgz" to path unless it already ends with it.
// The parent directory is left untouched.
func EnsureBundleExtension(path string) string {
	if filepath.Ext(path) == BundleExtension {
		return path
	}
	return filepath.Join(filepath.Dir(path), filepath.Base(path)+BundleExtension)
}

// ResolveRoot returns the absolute repository root named by the optional single
// argument, defaulting to the current working directory.
func ResolveRoot(args []string) (string, error) {
	root := "."
	if len(args) > 0 {
		root = args[0]
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("failed to resolve repository root %q: %w", root, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("repository root %q does not exist: %w", abs, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("repository root %q is not a directory", abs)
	}

	return abs, nil
}
