package main

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *log.Logger {
	return log.New(io.Discard)
}

func TestConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kostore.toml")

	config := defaultConfig()
	config.Device.Path = "/media/reader/.adds/koreader"
	config.GitHub.MetaTimeoutSec = 5
	require.NoError(t, saveConfig(path, config))

	loaded, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, config, loaded)
	assert.Equal(t, filepath.Join("/media/reader/.adds/koreader", "plugins"), loaded.pluginsPath())
	assert.Equal(t, filepath.Join("/media/reader/.adds/koreader", "patches"), loaded.patchesPath())
}

func TestLoadConfigAppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kostore.toml")
	require.NoError(t, os.WriteFile(path, []byte("[device]\npath = \"/tmp/koreader\"\n"), 0644))

	config, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/koreader", config.Device.Path)
	assert.Equal(t, "plugins", config.Device.PluginsDir)
	assert.Equal(t, "GITHUB_TOKEN", config.GitHub.TokenEnv)
	assert.Equal(t, 10, config.GitHub.MetaTimeoutSec)
}

func TestReadSources(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sources.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`
source "topic" {
  values = ["koreader-plugin", "koreader-user-patch"]
}

source "name" {
  values = ["koplugin"]
}
`), 0644))

	sources, err := readSources(discardLogger(), path)
	require.NoError(t, err)
	assert.Equal(t, []string{"koreader-plugin", "koreader-user-patch"}, sources.Topics)
	assert.Equal(t, []string{"koplugin"}, sources.NamePatterns)
}

func TestReadSourcesMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sources.hcl")
	require.NoError(t, os.WriteFile(path, []byte("source {{{"), 0644))

	_, err := readSources(discardLogger(), path)
	assert.Error(t, err)
}

func makeKOReaderInstall(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "koreader.sh"), []byte("#!/bin/sh\n"), 0755))
	for _, dir := range []string{"frontend", "plugins", "data"} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, dir), 0755))
	}
	return root
}

func TestValidKOReaderInstallation(t *testing.T) {
	root := makeKOReaderInstall(t)
	assert.True(t, validKOReaderInstallation(root))
	assert.True(t, hasKOReader(root))

	require.NoError(t, os.RemoveAll(filepath.Join(root, "frontend")))
	assert.False(t, validKOReaderInstallation(root))
	assert.True(t, hasKOReader(root), "launcher alone still marks a candidate")
}

func TestGetDeviceInfo(t *testing.T) {
	root := makeKOReaderInstall(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, "git-rev"), []byte("v2024.07-12-gabcdef\n"), 0644))

	info := GetDeviceInfo(discardLogger(), root)
	assert.True(t, info.Valid)
	assert.Equal(t, "v2024.07-12-gabcdef", info.Version)
	assert.True(t, info.PluginsExist)
	assert.False(t, info.PatchesExist)
}

func TestGetDeviceInfoInvalidPath(t *testing.T) {
	info := GetDeviceInfo(discardLogger(), filepath.Join(t.TempDir(), "nope"))
	assert.False(t, info.Valid)
	assert.Equal(t, "Unknown", info.Version)
}
