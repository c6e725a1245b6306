package main

import (
	"encoding/json"
	"io"
	"net/http"
	"os/exec"
	"runtime/debug"
	"strings"

	"github.com/go-git/go-git/v5"

	"github.com/kostore/kostore/logger"
)

type ReleaseInfo struct {
	TagName string `json:"tag_name"`
	ID      int    `json:"id"`
}

// Version is injected at build time via ldflags.
var Version string

const projectRepo = "kostore/kostore"

func getCurrentVersion() (string, string) {
	if Version != "" {
		return Version, ""
	}

	hash, err := getGitCommitHash()
	if err == nil && hash != "" {
		return hash[:7], hash
	}

	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			if setting.Key == "vcs.revision" {
				return setting.Value[:7], setting.Value
			}
		}
	}

	return "unknown", ""
}

func getGitCommitHash() (string, error) {
	cmd := exec.Command("git", "rev-parse", "HEAD")
	output, err := cmd.Output()
	if err == nil {
		return strings.TrimSpace(string(output)), nil
	}

	repo, err := git.PlainOpen(".")
	if err != nil {
		return "", err
	}

	ref, err := repo.Head()
	if err != nil {
		return "", err
	}

	return ref.Hash().String(), nil
}

func fetchLatestReleaseInfo(repo string) (*ReleaseInfo, error) {
	url := "https://api.github.com/repos/" + repo + "/releases/latest"
	resp, err := http.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var releaseInfo ReleaseInfo
	err = json.Unmarshal(body, &releaseInfo)
	if err != nil {
		return nil, err
	}

	return &releaseInfo, nil
}

func printVersionInfo(logger *logger.RateLimitedLogger) {
	version, commitHash := getCurrentVersion()
	logger.Info("Current version", "version", version)
	if commitHash != "" {
		logger.Info("Commit hash", "hash", commitHash)
	}

	releaseInfo, err := fetchLatestReleaseInfo(projectRepo)
	if err != nil {
		logger.Error("Failed to fetch latest release information", "error", err)
		return
	}

	logger.Info("Latest version", "version", releaseInfo.TagName)
}
