package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ryanmoran/dockerdev/internal"
	"github.com/ryanmoran/dockerdev/internal/bundle"
	"github.com/ryanmoran/dockerdev/internal/docker"
	"github.com/ryanmoran/dockerdev/internal/process"
	"github.com/ryanmoran/dockerdev/internal/scm"
	"github.com/ryanmoran/dockerdev/internal/setup"
)

// application carries what every command needs from run.
type application struct {
	env      internal.Environment
	writer   *internal.StandardWriter
	cleanup  *internal.CleanupManager
	logLevel *slog.LevelVar
}

func newRootCommand(app application) *cobra.Command {
	root := &cobra.Command{
		Use:           "dockerdev",
		Short:         "Bundle repositories for container images and set up development checkouts",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(app.writer.GetWriter())

	root.AddCommand(newBundleRepoCommand(app))
	root.AddCommand(newSetupCommand(app))

	return root
}

func newBundleRepoCommand(app application) *cobra.Command {
	var flags internal.BundleFlags

	cmd := &cobra.Command{
		Use:   "bundle-repo REPO_ROOT BUNDLE_FILENAME [WORKING_DIR]",
		Short: "Bundle a git, mercurial, or subversion repository into a .tgz archive",
		Long: `Clones or updates a working copy of the repository at REPO_ROOT, optionally
overlays its uncommitted changes, and archives the working copy into
BUNDLE_FILENAME. WORKING_DIR defaults to a new directory beneath TMPDIR.`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			env, err := internal.ParseEnvironment(ctx, app.env)
			if err != nil {
				return err
			}

			cfg, err := internal.NewBundleConfig(args, flags, env)
			if err != nil {
				return err
			}

			app.writer.SetVerbosity(cfg.Verbose, cfg.Debug)
			switch {
			case cfg.Debug:
				app.logLevel.Set(slog.LevelDebug)
			case cfg.Verbose:
				app.logLevel.Set(slog.LevelInfo)
			}

			runner := process.NewExecRunner()
			bundler := bundle.NewBundler(scm.All(runner), runner, app.writer)
			if err := bundler.Run(ctx, cfg, app.cleanup); err != nil {
				return err
			}

			if !cfg.Image.Enabled() {
				return nil
			}

			return buildImage(cmd, app, cfg)
		},
	}
	flags.Register(cmd.Flags())

	return cmd
}

func buildImage(cmd *cobra.Command, app application, cfg internal.BundleConfig) error {
	ctx := cmd.Context()

	client, err := docker.NewDefaultClient()
	if err != nil {
		return fmt.Errorf("failed to create docker client: %w\nMake sure Docker is installed and running (try 'docker ps')", err)
	}
	app.cleanup.Add("docker-client", func() error {
		client.Close()
		return nil
	})

	if _, err := client.Ping(ctx); err != nil {
		return err
	}

	step := app.writer.Step(fmt.Sprintf("Building image '%s'...", cfg.Image.Name))
	image, err := client.BuildImage(ctx, cfg.Image.DockerfilePath, cfg.BundlePath, cfg.Image.Name, app.writer)
	if err != nil {
		step.Fail(err)
		return fmt.Errorf("failed to build docker image %q from %q: %w", cfg.Image.Name, cfg.Image.DockerfilePath, err)
	}
	step.Done(image.Name)

	return nil
}

func newSetupCommand(app application) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Show or apply the repository setup declaration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show [REPO_ROOT]",
		Short: "Print the dependencies and custom actions of the repository",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadSetup(app, args)
			if err != nil {
				return err
			}

			return setup.Show(cfg, app.writer.GetWriter())
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "apply [REPO_ROOT]",
		Short: "Perform the custom setup actions of the repository",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadSetup(app, args)
			if err != nil {
				return err
			}

			return setup.Apply(cmd.Context(), cfg, app.writer)
		},
	})

	return cmd
}

func loadSetup(app application, args []string) (setup.Configuration, error) {
	root, err := internal.ResolveRoot(args)
	if err != nil {
		return setup.Configuration{}, err
	}

	return setup.Load(root, app.env)
}
