package lib

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// NoReadmeMessage is returned when every lookup strategy comes up empty.
// Callers display it as-is; a missing README is not an error.
const NoReadmeMessage = "No README file found in this repository"

var readmeNames = []string{"README.md", "README", "readme.md", "readme", "README.rst", "README.txt"}

var markdownImagePattern = regexp.MustCompile(`!\[([^\]]*)\]\(([^)]+)\)`)

// ReadmeMarkdown fetches a repository's README, trying the conventional
// filenames in order before falling back to the API readme endpoint.
// Relative markdown image paths are rewritten to raw.githubusercontent
// URLs so the text renders standalone.
func (g *GitHubClient) ReadmeMarkdown(ctx context.Context, owner, repo string) string {
	for _, name := range readmeNames {
		entries, err := g.ListContents(ctx, owner, repo, name)
		if err != nil || len(entries) == 0 {
			continue
		}
		if entries[0].DownloadURL == "" {
			continue
		}
		content, err := g.DownloadRawFile(ctx, entries[0].DownloadURL)
		if err != nil {
			g.logger.Warn("Failed to download README", "repo", owner+"/"+repo, "name", name, "error", err)
			continue
		}
		g.logger.Debug("Fetched README", "repo", owner+"/"+repo, "name", name)
		return rewriteImagePaths(string(content), owner, repo)
	}

	readme, _, err := g.client.Repositories.GetReadme(ctx, owner, repo, nil)
	if err == nil {
		if content, cerr := readme.GetContent(); cerr == nil && content != "" {
			return rewriteImagePaths(content, owner, repo)
		}
	}

	g.logger.Debug("No README found", "repo", owner+"/"+repo)
	return NoReadmeMessage
}

func rewriteImagePaths(content, owner, repo string) string {
	base := fmt.Sprintf("https://raw.githubusercontent.com/%s/%s/main/", owner, repo)
	return markdownImagePattern.ReplaceAllStringFunc(content, func(match string) string {
		groups := markdownImagePattern.FindStringSubmatch(match)
		alt, path := groups[1], groups[2]
		if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
			return match
		}
		return fmt.Sprintf("![%s](%s%s)", alt, base, strings.TrimLeft(path, "/"))
	})
}
