package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootHasApply(t *testing.T) {
	root := Root()

	apply, _, err := root.Find([]string{"apply"})
	require.NoError(t, err)
	assert.Equal(t, "apply <environment-name>", apply.Use)
}

func TestApplyFlags(t *testing.T) {
	cmd := Apply()

	for _, name := range []string{"config", "region", "profile"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "flag %s", name)
	}

	// The environment name argument is mandatory.
	require.Error(t, cmd.Args(cmd, nil))
	require.NoError(t, cmd.Args(cmd, []string{"staging"}))
}

func TestVersionInfo(t *testing.T) {
	SetVersionInfo("1.2.3", "abcdef0")
	assert.Equal(t, "1.2.3 (abcdef0)", Root().Version)
}
