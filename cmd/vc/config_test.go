package main

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFileReturnsEmpty(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	conf, err := loadConfig()
	require.NoError(t, err)
	assert.Empty(t, conf.Current)
	assert.Empty(t, conf.Contexts)
}

func TestSaveLoadConfigRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	conf := newConfig()
	conf.Current = "prod"
	conf.Contexts["prod"] = Context{
		URI:      "mongodb://prod.example.net",
		Database: "catalog",
		Target:   "items",
		Branch:   "main",
	}

	require.NoError(t, saveConfig(conf))

	loaded, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "prod", loaded.Current)
	assert.Equal(t, conf.Contexts["prod"], loaded.Contexts["prod"])
}

func TestCurrentContextPrefersContextFlagOverDefault(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	conf := newConfig()
	conf.Current = "prod"
	conf.Contexts["prod"] = Context{URI: "mongodb://prod", Database: "d", Target: "t"}
	conf.Contexts["staging"] = Context{URI: "mongodb://staging", Database: "d", Target: "t"}
	require.NoError(t, saveConfig(conf))

	cmd := &cobra.Command{}
	cmd.Flags().String("context", "staging", "")

	name, ctx, err := currentContext(cmd)
	require.NoError(t, err)
	assert.Equal(t, "staging", name)
	assert.Equal(t, "mongodb://staging", ctx.URI)
}

func TestCurrentContextFallsBackToSavedCurrent(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	conf := newConfig()
	conf.Current = "prod"
	conf.Contexts["prod"] = Context{URI: "mongodb://prod", Database: "d", Target: "t"}
	require.NoError(t, saveConfig(conf))

	cmd := &cobra.Command{}
	cmd.Flags().String("context", "", "")

	name, _, err := currentContext(cmd)
	require.NoError(t, err)
	assert.Equal(t, "prod", name)
}

func TestCurrentContextErrorsWithNoSelection(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cmd := &cobra.Command{}
	cmd.Flags().String("context", "", "")

	_, _, err := currentContext(cmd)
	assert.Error(t, err)
}

func TestCurrentContextErrorsOnUnknownName(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	conf := newConfig()
	require.NoError(t, saveConfig(conf))

	cmd := &cobra.Command{}
	cmd.Flags().String("context", "ghost", "")

	_, _, err := currentContext(cmd)
	assert.Error(t, err)
}
