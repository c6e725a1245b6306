package catalog

import (
	"context"
	"fmt"

	"github.com/kostore/kostore/lib"
)

// Sources defines the search queries used to build the catalog.
type Sources struct {
	Topics       []string
	NamePatterns []string
}

// Queries renders the source definitions as search query strings, topics
// first.
func (s Sources) Queries() []string {
	var queries []string
	for _, t := range s.Topics {
		queries = append(queries, fmt.Sprintf("topic:%s", t))
	}
	for _, p := range s.NamePatterns {
		queries = append(queries, fmt.Sprintf("%s in:name", p))
	}
	return queries
}

// Search runs every configured query, deduplicates results by repository
// ID (first seen wins), and classifies the rest into the catalog. A
// failing query is logged and skipped; partial results are still returned.
func (c *Classifier) Search(ctx context.Context, provider lib.Provider, sources Sources) []Candidate {
	var catalog []Candidate
	seen := make(map[int64]bool)

	for _, query := range sources.Queries() {
		repos, err := provider.SearchRepositories(ctx, query)
		if err != nil {
			c.logger.Error("Search query failed", "query", query, "error", err)
			continue
		}

		var fresh []lib.Repository
		for _, repo := range repos {
			if seen[repo.ID] {
				continue
			}
			seen[repo.ID] = true
			fresh = append(fresh, repo)
		}

		catalog = append(catalog, c.Classify(fresh)...)
	}

	c.logger.Info("Catalog built", "candidates", len(catalog))
	return catalog
}
