package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/log"
	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml"
)

type Config struct {
	Device struct {
		Path       string `toml:"path"`
		PluginsDir string `toml:"plugins_dir"`
		PatchesDir string `toml:"patches_dir"`
	} `toml:"device"`
	GitHub struct {
		TokenEnv          string `toml:"token_env"`
		MetaTimeoutSec    int    `toml:"meta_timeout_seconds"`
		ArchiveTimeoutSec int    `toml:"archive_timeout_seconds"`
	} `toml:"github"`
}

const (
	configDirName  = ".kostore"
	configFileName = "kostore.toml"
)

func defaultConfig() Config {
	var config Config
	config.Device.PluginsDir = "plugins"
	config.Device.PatchesDir = "patches"
	config.GitHub.TokenEnv = "GITHUB_TOKEN"
	config.GitHub.MetaTimeoutSec = 10
	config.GitHub.ArchiveTimeoutSec = 30
	return config
}

func configDir() (string, error) {
	homeDir, err := homedir.Dir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	dir := filepath.Join(homeDir, configDirName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	return dir, nil
}

func loadConfig(path string) (Config, error) {
	config := defaultConfig()

	tree, err := toml.LoadFile(path)
	if err != nil {
		return config, err
	}
	if err := tree.Unmarshal(&config); err != nil {
		return config, fmt.Errorf("failed to decode config: %w", err)
	}
	return config, nil
}

func saveConfig(path string, config Config) error {
	data, err := toml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// getConfig loads the saved config, prompting for the device path on
// first run. Device auto-detection pre-fills the prompt when it finds a
// mounted KOReader installation.
func getConfig(logger *log.Logger) (Config, error) {
	dir, err := configDir()
	if err != nil {
		return Config{}, err
	}
	path := filepath.Join(dir, configFileName)

	config, err := loadConfig(path)
	if err == nil && config.Device.Path != "" {
		logger.Debug("Loaded config", "path", path)
		return config, nil
	}
	if err != nil && !os.IsNotExist(err) {
		logger.Warn("Error reading config file, starting fresh", "error", err, "path", path)
	}

	config = defaultConfig()

	devicePath := DetectDevice(logger)
	err = huh.NewInput().
		Title("Path to your KOReader installation").
		Description("The directory containing koreader.sh (auto-detected value pre-filled when found)").
		Placeholder("/media/user/KOBOeReader/.adds/koreader").
		Value(&devicePath).
		Run()
	if err != nil {
		return Config{}, fmt.Errorf("error getting device path: %w", err)
	}
	if devicePath == "" {
		return Config{}, fmt.Errorf("no device path configured")
	}

	config.Device.Path = devicePath
	if err := saveConfig(path, config); err != nil {
		logger.Warn("Failed to persist config", "error", err, "path", path)
	} else {
		logger.Info("Config saved", "path", path)
	}

	return config, nil
}

func (c Config) pluginsPath() string {
	return filepath.Join(c.Device.Path, c.Device.PluginsDir)
}

func (c Config) patchesPath() string {
	return filepath.Join(c.Device.Path, c.Device.PatchesDir)
}

func (c Config) token() string {
	return os.Getenv(c.GitHub.TokenEnv)
}

func (c Config) metaTimeout() time.Duration {
	return time.Duration(c.GitHub.MetaTimeoutSec) * time.Second
}

func (c Config) archiveTimeout() time.Duration {
	return time.Duration(c.GitHub.ArchiveTimeoutSec) * time.Second
}
