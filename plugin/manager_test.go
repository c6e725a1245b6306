package plugin

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

func TestCanonicalName(t *testing.T) {
	assert.Equal(t, "foo.koplugin", CanonicalName("foo"))
	assert.Equal(t, "foo.koplugin", CanonicalName("foo.koplugin"))
}

func TestScanInstalled(t *testing.T) {
	pluginsDir := t.TempDir()

	writeFiles(t, pluginsDir,
		"versioned.koplugin/main.lua",
		"noversion.koplugin/main.lua",
	)
	require.NoError(t, os.WriteFile(
		filepath.Join(pluginsDir, "versioned.koplugin", "_meta.lua"),
		[]byte("local _ = {}\nreturn {\n    name = \"versioned\",\n    version = \"1.2.3\",\n}\n"), 0644))
	require.NoError(t, os.WriteFile(
		filepath.Join(pluginsDir, "noversion.koplugin", "_meta.lua"),
		[]byte("return { name = \"noversion\" }\n"), 0644))

	// Not plugins: a stray file and an unsuffixed directory.
	require.NoError(t, os.WriteFile(filepath.Join(pluginsDir, "notes.txt"), []byte("x"), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(pluginsDir, "random"), 0755))

	installed, err := ScanInstalled(discardLogger(), pluginsDir)
	require.NoError(t, err)
	require.Len(t, installed, 2)

	byName := map[string]Installed{}
	for _, p := range installed {
		byName[p.Name] = p
	}

	versioned := byName["versioned.koplugin"]
	assert.Equal(t, "1.2.3", versioned.Version)
	assert.True(t, versioned.HasMeta)

	noVersion := byName["noversion.koplugin"]
	assert.Equal(t, UnknownVersion, noVersion.Version)
	assert.True(t, noVersion.HasMeta)
}

func TestScanInstalledMissingDir(t *testing.T) {
	installed, err := ScanInstalled(discardLogger(), filepath.Join(t.TempDir(), "nope"))
	assert.NoError(t, err)
	assert.Empty(t, installed)
}

func TestReadVersionAlternateMetaName(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "manifest.lua"),
		[]byte("version = '2.0'"), 0644))

	version, hasMeta := readVersion(dir)
	assert.Equal(t, "2.0", version)
	assert.True(t, hasMeta)
}

func TestReadVersionNoMeta(t *testing.T) {
	version, hasMeta := readVersion(t.TempDir())
	assert.Equal(t, UnknownVersion, version)
	assert.False(t, hasMeta)
}

func TestUninstall(t *testing.T) {
	pluginsDir := t.TempDir()
	writeFiles(t, pluginsDir, "gone.koplugin/main.lua", "gone.koplugin/_meta.lua")

	result := Uninstall(discardLogger(), pluginsDir, "gone")
	assert.True(t, result.Success)
	assert.NoDirExists(t, filepath.Join(pluginsDir, "gone.koplugin"))
}

func TestUninstallNotInstalled(t *testing.T) {
	result := Uninstall(discardLogger(), t.TempDir(), "absent")
	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "not installed")
}
