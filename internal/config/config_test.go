package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "tola.toml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadFillsDefaultsForOmittedFields(t *testing.T) {
	path := writeConfig(t, `
[site]
title = "My Site"
`)
	cfg, warnings, err := Load(path)
	require.NoError(t, err)
	require.Empty(t, warnings)
	require.Equal(t, "My Site", cfg.Site.Title)
	require.Equal(t, "en", cfg.Site.Language) // default preserved
	require.Equal(t, "content", cfg.Build.ContentDir)
	require.Equal(t, "public", cfg.Build.OutputDir)
	require.Equal(t, "127.0.0.1:1732", cfg.Serve.Addr)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[build]
content_dir = "posts"
output_dir = "dist"

[serve]
addr = "0.0.0.0:8080"
`)
	cfg, _, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "posts", cfg.Build.ContentDir)
	require.Equal(t, "dist", cfg.Build.OutputDir)
	require.Equal(t, "0.0.0.0:8080", cfg.Serve.Addr)
}

func TestLoadWarnsOnUnknownTopLevelSection(t *testing.T) {
	path := writeConfig(t, `
[site]
title = "My Site"

[not_a_real_section]
foo = "bar"
`)
	_, warnings, err := Load(path)
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	require.Contains(t, warnings[0], "not_a_real_section")
}

func TestLoadReturnsErrorForMissingFile(t *testing.T) {
	_, _, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
}

func TestLoadReturnsErrorForMalformedTOML(t *testing.T) {
	path := writeConfig(t, `this is not = = valid toml [[[`)
	_, _, err := Load(path)
	require.Error(t, err)
}

func TestDefaultValidateEnablesLocalChecksOnly(t *testing.T) {
	cfg := Default()
	require.True(t, cfg.Validate.CheckInternalLinks)
	require.True(t, cfg.Validate.CheckConflicts)
	require.True(t, cfg.Validate.CheckOrphanAliases)
	require.False(t, cfg.Validate.CheckExternalLinks)
}
