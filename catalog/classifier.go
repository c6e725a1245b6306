package catalog

import (
	"context"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/kostore/kostore/lib"
	"github.com/kostore/kostore/plugin"
)

// RepoType labels what a repository offers the device.
type RepoType string

const (
	RepoTypePlugin RepoType = "plugin"
	RepoTypePatch  RepoType = "patch"
)

// Candidate is a classified, accepted search result.
type Candidate struct {
	lib.Repository
	RepoType RepoType
}

// Topics that mark a repository as KOReader-related regardless of name.
var acceptedTopics = []string{"koreader-plugin", "koreader-user-patch", "koreader"}

// Classifier turns raw search results into typed candidates.
type Classifier struct {
	logger *log.Logger
}

func NewClassifier(logger *log.Logger) *Classifier {
	return &Classifier{logger: logger}
}

// Classify assigns a RepoType from the lower-cased name and applies the
// cheap acceptance filter to plugin-typed candidates. Repositories that
// match neither shape are dropped, as are name-only plugin matches with no
// other KOReader signal.
func (c *Classifier) Classify(repos []lib.Repository) []Candidate {
	var out []Candidate
	for _, repo := range repos {
		name := strings.ToLower(repo.Name)

		var repoType RepoType
		switch {
		case strings.Contains(name, "koplugin") ||
			strings.HasSuffix(name, "plugin") ||
			strings.HasSuffix(name, "plugins"):
			repoType = RepoTypePlugin
		case strings.Contains(name, "patch") || strings.Contains(name, "patches"):
			repoType = RepoTypePatch
		default:
			c.logger.Info("Discarding unclassified repository", "repo", repo.Owner+"/"+repo.Name)
			continue
		}

		if repoType == RepoTypePlugin && !c.accept(repo) {
			c.logger.Info("Filtering out plugin", "repo", repo.Owner+"/"+repo.Name, "reason", "not KOReader-related")
			continue
		}

		out = append(out, Candidate{Repository: repo, RepoType: repoType})
	}
	return out
}

// accept is the cheap false-positive suppressor for plugin-typed
// candidates, checked in priority order: name pattern, topics,
// description.
func (c *Classifier) accept(repo lib.Repository) bool {
	name := strings.ToLower(repo.Name)

	if strings.HasSuffix(name, plugin.DirSuffix) ||
		strings.Contains(name, "koplugin") ||
		strings.HasSuffix(name, plugin.PatchSuffix) ||
		strings.Contains(name, "koreader") {
		c.logger.Debug("Accepted plugin candidate", "name", name, "reason", "name pattern")
		return true
	}

	for _, topic := range repo.Topics {
		for _, accepted := range acceptedTopics {
			if topic == accepted {
				c.logger.Debug("Accepted plugin candidate", "name", name, "topic", topic)
				return true
			}
		}
	}

	if strings.Contains(strings.ToLower(repo.Description), "koreader") {
		c.logger.Debug("Accepted plugin candidate", "name", name, "reason", "description mentions KOReader")
		return true
	}

	return false
}

// VerifyStructure is the expensive opt-in acceptance path: it inspects the
// repository's root listing and one level of subdirectories for a valid
// plugin layout. Costs one to N extra round trips per candidate; callers
// should reserve it for candidates the cheap filter left ambiguous.
func (c *Classifier) VerifyStructure(ctx context.Context, provider lib.Provider, cand Candidate) bool {
	tree, err := provider.FetchTree(ctx, cand.Owner, cand.Name, 1)
	if err != nil {
		c.logger.Debug("Structure check failed", "repo", cand.Owner+"/"+cand.Name, "error", err)
		return false
	}
	_, ok := plugin.Locate(tree)
	return ok
}
