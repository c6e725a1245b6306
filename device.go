package main

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/mitchellh/go-homedir"
)

// DeviceInfo describes a KOReader installation found on a mounted device.
type DeviceInfo struct {
	Path         string
	Valid        bool
	Version      string
	Platform     string
	PluginsExist bool
	PatchesExist bool
}

// Relative locations KOReader lives at under a device mount.
var deviceSubpaths = []string{
	".adds/koreader",
	".adds",
	"koreader",
	"extensions/koreader",
	"documents/koreader",
	".kobo/koreader",
	"applications/koreader",
}

// koreaderPaths lists candidate installation paths for the current OS.
func koreaderPaths() []string {
	var paths []string
	home, _ := homedir.Dir()

	switch runtime.GOOS {
	case "windows":
		for drive := 'E'; drive <= 'Z'; drive++ {
			root := string(drive) + ":"
			if _, err := os.Stat(root + string(os.PathSeparator)); err != nil {
				continue
			}
			for _, sub := range deviceSubpaths {
				candidate := filepath.Join(root, sub)
				if hasKOReader(candidate) {
					paths = append(paths, candidate)
				}
			}
		}
		for _, p := range []string{
			filepath.Join(home, "koreader"),
			`C:\koreader`,
			`C:\Program Files\koreader`,
			`C:\Program Files (x86)\koreader`,
		} {
			if hasKOReader(p) {
				paths = append(paths, p)
			}
		}

	case "darwin":
		for _, p := range []string{
			"/Volumes/koreader",
			"/Volumes/KOReader",
			filepath.Join(home, "koreader"),
			"/Applications/koreader",
		} {
			if hasKOReader(p) {
				paths = append(paths, p)
			}
		}

	default: // linux and friends
		for _, pattern := range []string{"/media/*/koreader", "/media/*/*/koreader", "/mnt/*/koreader"} {
			matches, _ := filepath.Glob(pattern)
			for _, m := range matches {
				if hasKOReader(m) {
					paths = append(paths, m)
				}
			}
		}
		for _, p := range []string{filepath.Join(home, "koreader"), "/opt/koreader"} {
			if hasKOReader(p) {
				paths = append(paths, p)
			}
		}
	}

	return paths
}

// hasKOReader detects KOReader by its launcher script.
func hasKOReader(path string) bool {
	_, err := os.Stat(filepath.Join(path, "koreader.sh"))
	return err == nil
}

// validKOReaderInstallation checks for the essential files and
// directories of a complete installation.
func validKOReaderInstallation(path string) bool {
	for _, item := range []string{"koreader.sh", "frontend", "plugins", "data"} {
		if _, err := os.Stat(filepath.Join(path, item)); err != nil {
			return false
		}
	}
	return true
}

// DetectDevice probes the OS-specific candidate paths and returns the
// first valid KOReader installation, or "" when none is found.
func DetectDevice(logger *log.Logger) string {
	logger.Debug("Starting KOReader device detection", "platform", runtime.GOOS)

	for _, path := range koreaderPaths() {
		if validKOReaderInstallation(path) {
			logger.Info("Detected KOReader device", "path", path)
			return path
		}
	}

	logger.Debug("No KOReader device detected")
	return ""
}

// GetDeviceInfo inspects a KOReader installation path.
func GetDeviceInfo(logger *log.Logger, path string) DeviceInfo {
	info := DeviceInfo{
		Path:     path,
		Version:  "Unknown",
		Platform: runtime.GOOS,
	}

	if !validKOReaderInstallation(path) {
		return info
	}
	info.Valid = true

	if data, err := os.ReadFile(filepath.Join(path, "git-rev")); err == nil {
		info.Version = strings.TrimSpace(string(data))
	} else {
		logger.Debug("Could not read device version file", "error", err)
	}

	if _, err := os.Stat(filepath.Join(path, "plugins")); err == nil {
		info.PluginsExist = true
	}
	if _, err := os.Stat(filepath.Join(path, "patches")); err == nil {
		info.PatchesExist = true
	}

	return info
}
