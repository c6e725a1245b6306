package lib

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// DownloadRawFile fetches the bytes behind a direct download URL.
func (g *GitHubClient) DownloadRawFile(ctx context.Context, url string) ([]byte, error) {
	return g.fetchBytes(ctx, url)
}

// DownloadArchive fetches the source zip of the named branch.
func (g *GitHubClient) DownloadArchive(ctx context.Context, owner, repo, branch string) ([]byte, error) {
	url := fmt.Sprintf("https://github.com/%s/%s/archive/refs/heads/%s.zip", owner, repo, branch)
	g.logger.Debug("Downloading source archive", "url", url)
	return g.fetchBytes(ctx, url)
}

func (g *GitHubClient) fetchBytes(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := g.download.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bad status for %s: %s", url, resp.Status)
	}

	return io.ReadAll(resp.Body)
}
