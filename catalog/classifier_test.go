package catalog

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kostore/kostore/lib"
)

func testClassifier() *Classifier {
	return NewClassifier(log.New(io.Discard))
}

func TestClassify(t *testing.T) {
	testCases := []struct {
		name     string
		repo     lib.Repository
		admitted bool
		expected RepoType
	}{
		{
			name:     "koplugin name",
			repo:     lib.Repository{Name: "coverimage.koplugin"},
			admitted: true,
			expected: RepoTypePlugin,
		},
		{
			name:     "plugin suffix with koreader description",
			repo:     lib.Repository{Name: "askgpt-plugin", Description: "A KOReader plugin"},
			admitted: true,
			expected: RepoTypePlugin,
		},
		{
			name:     "plugin suffix with accepted topic",
			repo:     lib.Repository{Name: "weather-plugin", Topics: []string{"koreader-plugin"}},
			admitted: true,
			expected: RepoTypePlugin,
		},
		{
			name:     "generic plugin rejected by acceptance filter",
			repo:     lib.Repository{Name: "jenkins-plugin", Description: "A Jenkins CI plugin"},
			admitted: false,
		},
		{
			name:     "patch repository",
			repo:     lib.Repository{Name: "koreader.patches"},
			admitted: true,
			expected: RepoTypePatch,
		},
		{
			name:     "unrelated repository discarded",
			repo:     lib.Repository{Name: "dotfiles"},
			admitted: false,
		},
		{
			name:     "plugins suffix",
			repo:     lib.Repository{Name: "koreader-plugins"},
			admitted: true,
			expected: RepoTypePlugin,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := testClassifier().Classify([]lib.Repository{tc.repo})
			if !tc.admitted {
				assert.Empty(t, got)
				return
			}
			require.Len(t, got, 1)
			assert.Equal(t, tc.expected, got[0].RepoType)
		})
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	repos := []lib.Repository{
		{ID: 1, Name: "coverimage.koplugin"},
		{ID: 2, Name: "generic-plugin"},
		{ID: 3, Name: "night-mode-patch", Description: "patches for koreader"},
	}

	first := testClassifier().Classify(repos)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, testClassifier().Classify(repos))
	}
}

type searchStub struct {
	results map[string][]lib.Repository
	errs    map[string]error
	queries []string
}

func (s *searchStub) SearchRepositories(ctx context.Context, query string) ([]lib.Repository, error) {
	s.queries = append(s.queries, query)
	if err := s.errs[query]; err != nil {
		return nil, err
	}
	return s.results[query], nil
}

func (s *searchStub) ListContents(ctx context.Context, owner, repo, path string) ([]lib.DirEntry, error) {
	return nil, nil
}

func (s *searchStub) FetchTree(ctx context.Context, owner, repo string, maxDepth int) (*lib.DirTree, error) {
	return nil, nil
}

func (s *searchStub) LatestRelease(ctx context.Context, owner, repo string) (*lib.Release, error) {
	return nil, nil
}

func (s *searchStub) RecentCommits(ctx context.Context, owner, repo string, since time.Time) ([]lib.Commit, error) {
	return nil, nil
}

func (s *searchStub) DownloadRawFile(ctx context.Context, url string) ([]byte, error) {
	return nil, nil
}

func (s *searchStub) DownloadArchive(ctx context.Context, owner, repo, branch string) ([]byte, error) {
	return nil, nil
}

func (s *searchStub) PatchFiles(ctx context.Context, owner, repo string) ([]lib.PatchFile, error) {
	return nil, nil
}

func TestSearchDeduplicatesAcrossQueries(t *testing.T) {
	shared := lib.Repository{ID: 42, Name: "shared.koplugin"}
	stub := &searchStub{
		results: map[string][]lib.Repository{
			"topic:koreader-plugin": {shared, {ID: 1, Name: "first.koplugin"}},
			"koplugin in:name":      {shared, {ID: 2, Name: "second.koplugin"}},
		},
	}

	sources := Sources{Topics: []string{"koreader-plugin"}, NamePatterns: []string{"koplugin"}}
	cat := testClassifier().Search(context.Background(), stub, sources)

	var ids []int64
	for _, c := range cat {
		ids = append(ids, c.ID)
	}
	assert.ElementsMatch(t, []int64{42, 1, 2}, ids)
}

func TestSearchPartialResultsOnQueryFailure(t *testing.T) {
	stub := &searchStub{
		results: map[string][]lib.Repository{
			"topic:koreader-plugin": {{ID: 1, Name: "survivor.koplugin"}},
		},
		errs: map[string]error{
			"koplugin in:name": fmt.Errorf("rate limited"),
		},
	}

	sources := Sources{Topics: []string{"koreader-plugin"}, NamePatterns: []string{"koplugin"}}
	cat := testClassifier().Search(context.Background(), stub, sources)

	require.Len(t, cat, 1)
	assert.Equal(t, "survivor.koplugin", cat[0].Name)
	assert.Len(t, stub.queries, 2, "a failing query must not abort the rest")
}

func TestSourcesQueriesOrder(t *testing.T) {
	sources := Sources{
		Topics:       []string{"koreader-plugin", "koreader-user-patch"},
		NamePatterns: []string{"koplugin"},
	}
	assert.Equal(t, []string{
		"topic:koreader-plugin",
		"topic:koreader-user-patch",
		"koplugin in:name",
	}, sources.Queries())
}
