package plugin

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/charmbracelet/log"
)

var versionPattern = regexp.MustCompile(`version\s*=\s*["']([^"']+)["']`)

// ScanInstalled lists the plugins present in the device's plugins
// directory. A missing directory yields an empty result, not an error.
func ScanInstalled(logger *log.Logger, pluginsDir string) ([]Installed, error) {
	entries, err := os.ReadDir(pluginsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read plugins directory: %w", err)
	}

	var installed []Installed
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasSuffix(entry.Name(), DirSuffix) {
			continue
		}

		path := filepath.Join(pluginsDir, entry.Name())
		version, hasMeta := readVersion(path)
		installed = append(installed, Installed{
			Name:    entry.Name(),
			Path:    path,
			Version: version,
			HasMeta: hasMeta,
		})
	}

	logger.Debug("Scanned installed plugins", "dir", pluginsDir, "count", len(installed))
	return installed, nil
}

// readVersion extracts the version assignment from the plugin's metadata
// file. Absence of the file or of the assignment yields UnknownVersion.
func readVersion(pluginDir string) (version string, hasMeta bool) {
	for _, name := range []string{MetaFile, MetaFileAlt} {
		data, err := os.ReadFile(filepath.Join(pluginDir, name))
		if err != nil {
			continue
		}
		hasMeta = true
		if m := versionPattern.FindSubmatch(data); m != nil {
			return string(m[1]), true
		}
	}
	return UnknownVersion, hasMeta
}

// MetaModTime returns the modification time of the plugin's metadata
// file, used as a proxy for the installation time.
func MetaModTime(pluginDir string) (os.FileInfo, error) {
	return os.Stat(filepath.Join(pluginDir, MetaFile))
}

// CanonicalName appends the plugin directory suffix when absent.
func CanonicalName(name string) string {
	if strings.HasSuffix(name, DirSuffix) {
		return name
	}
	return name + DirSuffix
}

// Uninstall removes an installed plugin's directory tree. An absent
// plugin reports "not installed" without an error.
func Uninstall(logger *log.Logger, pluginsDir, name string) Result {
	name = CanonicalName(name)
	target := filepath.Join(pluginsDir, name)

	if _, err := os.Stat(target); os.IsNotExist(err) {
		return Result{Success: false, Message: fmt.Sprintf("%s is not installed", name), PluginName: name}
	}

	if err := os.RemoveAll(target); err != nil {
		return Result{Success: false, Message: fmt.Sprintf("failed to remove %s: %v", name, err), PluginName: name}
	}

	logger.Info("Plugin uninstalled successfully", "name", name)
	return Result{Success: true, Message: fmt.Sprintf("%s uninstalled successfully!", name), PluginName: name}
}
