package setup_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ryanmoran/dockerdev/internal/setup"
)

func TestShow(t *testing.T) {
	t.Run("renders every section", func(t *testing.T) {
		cfg := setup.DefaultConfiguration()
		cfg.Links[0].Link = "/repo/.pylintrc"
		cfg.Links[0].Target = "/foundation/.pylintrc"
		cfg.VersionSpecs.Libraries = map[string][]setup.VersionSpec{
			"python": {{Name: "requests", Version: "2.31"}},
		}

		var out bytes.Buffer
		require.NoError(t, setup.Show(cfg, &out))

		output := out.String()
		assert.Contains(t, output, "Configuration: (default)")
		assert.Contains(t, output, "Dependencies:")
		assert.Contains(t, output, "DD6FCD30-B043-4058-B0D5-A6C8BC0374F4")
		assert.Contains(t, output, "Common_Foundation")
		assert.Contains(t, output, "python310")
		assert.Contains(t, output, "https://github.com/davidbrownell/v4-Common_Foundation.git")
		assert.Contains(t, output, "Tool versions:\n  (none)")
		assert.Contains(t, output, "requests")
		assert.Contains(t, output, "/repo/.pylintrc")
		assert.Contains(t, output, "/foundation/.pylintrc")
		assert.Contains(t, output, "remove existing, relative")
	})

	t.Run("renders an empty declaration", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, setup.Show(setup.Configuration{Name: "empty"}, &out))

		assert.Equal(t, "Configuration: empty\n"+
			"\nDependencies:\n  (none)\n"+
			"\nTool versions:\n  (none)\n"+
			"\nLibrary versions:\n  (none)\n"+
			"\nCustom actions:\n  (none)\n", out.String())
	})
}
