package main

import (
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/hcl/v2/hclsimple"

	"github.com/kostore/kostore/catalog"
)

// sourcesFile is the optional sources.hcl registry next to the config
// file, letting users add search queries beyond the built-in defaults:
//
//	source "topic" {
//	  values = ["koreader-plugin"]
//	}
//	source "name" {
//	  values = ["koplugin"]
//	}
type sourcesFile struct {
	Sources []sourceBlock `hcl:"source,block"`
}

type sourceBlock struct {
	Type   string   `hcl:"type,label"`
	Values []string `hcl:"values"`
}

const sourcesFileName = "sources.hcl"

func defaultSources() catalog.Sources {
	return catalog.Sources{
		Topics:       []string{"koreader-plugin", "koreader-user-patch"},
		NamePatterns: []string{"koplugin", "koreader plugin", "koreader patch"},
	}
}

// loadSources reads the registry from the config directory, falling back
// to the defaults when the file is absent or malformed.
func loadSources(logger *log.Logger) catalog.Sources {
	dir, err := configDir()
	if err != nil {
		return defaultSources()
	}

	path := filepath.Join(dir, sourcesFileName)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return defaultSources()
	}

	sources, err := readSources(logger, path)
	if err != nil {
		logger.Warn("Failed to decode sources registry, using defaults", "path", path, "error", err)
		return defaultSources()
	}
	logger.Debug("Loaded sources registry", "path", path,
		"topics", len(sources.Topics), "patterns", len(sources.NamePatterns))
	return sources
}

func readSources(logger *log.Logger, path string) (catalog.Sources, error) {
	var file sourcesFile
	if err := hclsimple.DecodeFile(path, nil, &file); err != nil {
		return catalog.Sources{}, err
	}

	var sources catalog.Sources
	for _, block := range file.Sources {
		switch block.Type {
		case "topic":
			sources.Topics = append(sources.Topics, block.Values...)
		case "name":
			sources.NamePatterns = append(sources.NamePatterns, block.Values...)
		default:
			logger.Warn("Unknown source type in registry", "type", block.Type)
		}
	}

	if len(sources.Topics) == 0 && len(sources.NamePatterns) == 0 {
		return defaultSources(), nil
	}
	return sources, nil
}
