package lib

import (
	"context"
	"time"
)

// Provider is the remote-platform capability the store is built against.
// The concrete implementation talks to GitHub; tests substitute stubs.
type Provider interface {
	SearchRepositories(ctx context.Context, query string) ([]Repository, error)
	ListContents(ctx context.Context, owner, repo, path string) ([]DirEntry, error)
	FetchTree(ctx context.Context, owner, repo string, maxDepth int) (*DirTree, error)
	LatestRelease(ctx context.Context, owner, repo string) (*Release, error)
	RecentCommits(ctx context.Context, owner, repo string, since time.Time) ([]Commit, error)
	DownloadRawFile(ctx context.Context, url string) ([]byte, error)
	DownloadArchive(ctx context.Context, owner, repo, branch string) ([]byte, error)
	PatchFiles(ctx context.Context, owner, repo string) ([]PatchFile, error)
}
