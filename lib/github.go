package lib

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/go-github/v39/github"
	"golang.org/x/oauth2"
)

// GitHubClient implements Provider against the GitHub REST API. Metadata
// calls use the short timeout, archive and raw downloads the long one.
type GitHubClient struct {
	client   *github.Client
	download *http.Client
	logger   *log.Logger
}

func NewGitHubClient(logger *log.Logger, token string, metaTimeout, downloadTimeout time.Duration) *GitHubClient {
	var hc *http.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		hc = oauth2.NewClient(context.Background(), ts)
		logger.Info("GitHub client initialized with authentication token")
	} else {
		hc = &http.Client{}
		logger.Info("GitHub client initialized without authentication token")
	}
	hc.Timeout = metaTimeout

	return &GitHubClient{
		client:   github.NewClient(hc),
		download: &http.Client{Timeout: downloadTimeout},
		logger:   logger,
	}
}

// SearchRepositories runs a single search query, sorted by stars
// descending, one page of up to 100 results.
func (g *GitHubClient) SearchRepositories(ctx context.Context, query string) ([]Repository, error) {
	opts := &github.SearchOptions{
		Sort:        "stars",
		Order:       "desc",
		ListOptions: github.ListOptions{PerPage: 100},
	}

	result, _, err := g.client.Search.Repositories(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("searching repositories for %q: %w", query, err)
	}

	repos := make([]Repository, 0, len(result.Repositories))
	for _, r := range result.Repositories {
		repos = append(repos, Repository{
			ID:          r.GetID(),
			Name:        r.GetName(),
			Owner:       r.GetOwner().GetLogin(),
			Description: r.GetDescription(),
			Topics:      r.Topics,
			UpdatedAt:   r.GetUpdatedAt().Time,
		})
	}
	return repos, nil
}

// ListContents fetches a single directory level of a repository.
func (g *GitHubClient) ListContents(ctx context.Context, owner, repo, path string) ([]DirEntry, error) {
	fileContent, dirContent, _, err := g.client.Repositories.GetContents(ctx, owner, repo, path, nil)
	if err != nil {
		return nil, fmt.Errorf("listing contents of %s/%s at %q: %w", owner, repo, path, err)
	}

	// A path naming a single file comes back as file content.
	if fileContent != nil {
		return []DirEntry{{
			Name:        fileContent.GetName(),
			Type:        fileContent.GetType(),
			DownloadURL: fileContent.GetDownloadURL(),
			Size:        fileContent.GetSize(),
		}}, nil
	}

	entries := make([]DirEntry, 0, len(dirContent))
	for _, item := range dirContent {
		entries = append(entries, DirEntry{
			Name:        item.GetName(),
			Type:        item.GetType(),
			DownloadURL: item.GetDownloadURL(),
			Size:        item.GetSize(),
		})
	}
	return entries, nil
}

// FetchTree materializes a repository's directory structure down to
// maxDepth levels below the root. A subdirectory whose listing fails is
// logged and left as an empty subtree so callers see a tree, not an error.
func (g *GitHubClient) FetchTree(ctx context.Context, owner, repo string, maxDepth int) (*DirTree, error) {
	return g.fetchTree(ctx, owner, repo, "", maxDepth)
}

func (g *GitHubClient) fetchTree(ctx context.Context, owner, repo, path string, depth int) (*DirTree, error) {
	entries, err := g.ListContents(ctx, owner, repo, path)
	if err != nil {
		if path != "" {
			g.logger.Warn("Failed to list subdirectory", "repo", owner+"/"+repo, "path", path, "error", err)
			return &DirTree{}, nil
		}
		return nil, err
	}

	tree := &DirTree{Entries: entries, Subdirs: make(map[string]*DirTree)}
	if depth <= 0 {
		return tree, nil
	}

	for _, e := range entries {
		if e.Type != "dir" {
			continue
		}
		subPath := e.Name
		if path != "" {
			subPath = path + "/" + e.Name
		}
		sub, err := g.fetchTree(ctx, owner, repo, subPath, depth-1)
		if err != nil {
			g.logger.Warn("Failed to fetch subtree", "repo", owner+"/"+repo, "path", subPath, "error", err)
			sub = &DirTree{}
		}
		tree.Subdirs[e.Name] = sub
	}
	return tree, nil
}

// LatestRelease returns the newest tagged release, or (nil, nil) when the
// repository has none.
func (g *GitHubClient) LatestRelease(ctx context.Context, owner, repo string) (*Release, error) {
	release, resp, err := g.client.Repositories.GetLatestRelease(ctx, owner, repo)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			g.logger.Debug("No releases found", "repo", owner+"/"+repo)
			return nil, nil
		}
		return nil, fmt.Errorf("getting latest release for %s/%s: %w", owner, repo, err)
	}

	out := &Release{
		TagName:     release.GetTagName(),
		Name:        release.GetName(),
		PublishedAt: release.GetPublishedAt().Time,
		Body:        release.GetBody(),
		HTMLURL:     release.GetHTMLURL(),
	}
	for _, asset := range release.Assets {
		out.Assets = append(out.Assets, ReleaseAsset{
			Name:        asset.GetName(),
			DownloadURL: asset.GetBrowserDownloadURL(),
		})
	}
	return out, nil
}

// RecentCommits returns up to 10 of the newest commits, optionally only
// those after since. An empty history yields nil, nil.
func (g *GitHubClient) RecentCommits(ctx context.Context, owner, repo string, since time.Time) ([]Commit, error) {
	opts := &github.CommitsListOptions{
		ListOptions: github.ListOptions{PerPage: 10},
	}
	if !since.IsZero() {
		opts.Since = since
	}

	commits, _, err := g.client.Repositories.ListCommits(ctx, owner, repo, opts)
	if err != nil {
		return nil, fmt.Errorf("listing commits for %s/%s: %w", owner, repo, err)
	}

	out := make([]Commit, 0, len(commits))
	for _, c := range commits {
		out = append(out, Commit{
			SHA:         c.GetSHA(),
			CommittedAt: c.GetCommit().GetCommitter().GetDate(),
		})
	}
	return out, nil
}

// PatchFiles lists the user-patch candidates in a patch repository's root:
// .lua files whose name starts with a digit, KOReader's numbered
// user-patch convention.
func (g *GitHubClient) PatchFiles(ctx context.Context, owner, repo string) ([]PatchFile, error) {
	entries, err := g.ListContents(ctx, owner, repo, "")
	if err != nil {
		return nil, err
	}

	var patches []PatchFile
	for _, e := range entries {
		if e.Type != "file" || !isPatchFileName(e.Name) {
			continue
		}
		patches = append(patches, PatchFile{
			Name:        e.Name,
			DownloadURL: e.DownloadURL,
		})
	}
	return patches, nil
}

func isPatchFileName(name string) bool {
	if len(name) == 0 || name[0] < '0' || name[0] > '9' {
		return false
	}
	return len(name) > 4 && name[len(name)-4:] == ".lua"
}
