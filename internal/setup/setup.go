package setup

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/ryanmoran/dockerdev/internal"
)

// FileName is the declaration file read from the repository root.
const FileName = "Setup.yaml"

// Configuration is a repository's setup declaration.
type Configuration struct {
	Name         string       `yaml:"name,omitempty"`
	Dependencies []Dependency `yaml:"dependencies"`
	VersionSpecs VersionSpecs `yaml:"version_specs"`
	Links        []Link       `yaml:"links"`
}

// Dependency is another repository that must be set up first.
type Dependency struct {
	ID            string `yaml:"id"`
	Name          string `yaml:"name"`
	Configuration string `yaml:"configuration"`
	URL           string `yaml:"url"`
}

type VersionSpecs struct {
	Tools     []VersionSpec            `yaml:"tools"`
	Libraries map[string][]VersionSpec `yaml:"libraries"`
}

type VersionSpec struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

// Link is a symbolic link created at Link pointing to Target. Both may refer
// to environment variables as ${NAME} and are resolved against the repository
// root when relative.
type Link struct {
	Link           string `yaml:"link"`
	Target         string `yaml:"target"`
	RemoveExisting bool   `yaml:"remove_existing"`
	Relative       bool   `yaml:"relative"`
}

// DefaultConfiguration depends on Common_Foundation and links the foundation's
// shared .pylintrc into the repository root.
func DefaultConfiguration() Configuration {
	return Configuration{
		Dependencies: []Dependency{
			{
				ID:            "DD6FCD30-B043-4058-B0D5-A6C8BC0374F4",
				Name:          "Common_Foundation",
				Configuration: "python310",
				URL:           "https://github.com/davidbrownell/v4-Common_Foundation.git",
			},
		},
		Links: []Link{
			{
				Link:           ".pylintrc",
				Target:         "${DE_FOUNDATION_ROOT}/.pylintrc",
				RemoveExisting: true,
				Relative:       true,
			},
		},
	}
}

// Load reads the declaration for the repository at root, expands environment
// references in its links, and validates it.
func Load(root string, environment internal.Environment) (Configuration, error) {
	cfg, err := read(filepath.Join(root, FileName))
	if err != nil {
		return Configuration{}, err
	}

	if err := cfg.resolve(root, environment.Lookup()); err != nil {
		return Configuration{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Configuration{}, fmt.Errorf("invalid setup declaration for %q: %w", root, err)
	}

	return cfg, nil
}

func read(path string) (Configuration, error) {
	content, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultConfiguration(), nil
	}
	if err != nil {
		return Configuration{}, fmt.Errorf("failed to read %q: %w", path, err)
	}

	var cfg Configuration
	decoder := yaml.NewDecoder(bytes.NewReader(content))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return Configuration{}, fmt.Errorf("failed to parse %q: %w\nCheck the file against the documented Setup.yaml fields", path, err)
	}

	return cfg, nil
}

func (c *Configuration) resolve(root string, env map[string]string) error {
	for i, link := range c.Links {
		path, err := expand(link.Link, env)
		if err != nil {
			return fmt.Errorf("failed to expand link %q: %w", link.Link, err)
		}
		if path != "" && !filepath.IsAbs(path) {
			path = filepath.Join(root, path)
		}

		target, err := expand(link.Target, env)
		if err != nil {
			return fmt.Errorf("failed to expand target %q: %w", link.Target, err)
		}
		if target != "" && !filepath.IsAbs(target) {
			target = filepath.Join(root, target)
		}

		c.Links[i].Link = filepath.Clean(path)
		c.Links[i].Target = filepath.Clean(target)
	}

	return nil
}

func expand(value string, env map[string]string) (string, error) {
	var missing []string
	expanded := os.Expand(value, func(name string) string {
		v, ok := env[name]
		if !ok || v == "" {
			missing = append(missing, name)
		}
		return v
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("environment variable %s is not set\nExport it before running setup", strings.Join(missing, ", "))
	}

	return expanded, nil
}

// Validate reports the first malformed dependency or link.
func (c Configuration) Validate() error {
	for i, dep := range c.Dependencies {
		if _, err := uuid.Parse(dep.ID); err != nil {
			return fmt.Errorf("dependency %d: invalid id %q: %w", i, dep.ID, err)
		}
		if dep.Name == "" {
			return fmt.Errorf("dependency %d: name is required", i)
		}
		if dep.URL == "" {
			return fmt.Errorf("dependency %d (%s): url is required", i, dep.Name)
		}
	}

	for i, spec := range c.VersionSpecs.Tools {
		if spec.Name == "" || spec.Version == "" {
			return fmt.Errorf("tool version spec %d: name and version are required", i)
		}
	}

	for language, specs := range c.VersionSpecs.Libraries {
		for i, spec := range specs {
			if spec.Name == "" || spec.Version == "" {
				return fmt.Errorf("%s library version spec %d: name and version are required", language, i)
			}
		}
	}

	for i, link := range c.Links {
		if link.Link == "" || link.Link == "." {
			return fmt.Errorf("link %d: link path is required", i)
		}
		if link.Target == "" || link.Target == "." {
			return fmt.Errorf("link %d: target is required", i)
		}
	}

	return nil
}
