// Package retrieval defines the knowledge-base search collaborator
// contract. The production backend (a managed search service) lives
// outside this module and is injected at process start; Static provides
// a deterministic in-memory searcher for tests and offline runs.
package retrieval

import (
	"context"
	"strings"

	"github.com/urbannexus/core/finding"
)

// Doc is one ranked retrieval result.
type Doc struct {
	Title   string `json:"title"`
	URI     string `json:"uri"`
	Snippet string `json:"snippet"`
	Source  string `json:"source"`
}

// Searcher performs a best-effort ranked search over the knowledge base.
//
// Contract: an empty result list is a valid, non-error response. Errors
// are reserved for invalid requests; backend outages surface as empty
// results so callers degrade rather than fail.
type Searcher interface {
	Search(ctx context.Context, query string, topK int) ([]Doc, error)
}

// Evidence converts retrieval results into finding evidence.
func Evidence(docs []Doc) []finding.Evidence {
	out := make([]finding.Evidence, 0, len(docs))
	for _, d := range docs {
		out = append(out, finding.Evidence{
			Title:   d.Title,
			URI:     d.URI,
			Snippet: d.Snippet,
			Source:  d.Source,
		})
	}
	return out
}

// Static is an in-memory Searcher matching documents whose title or
// snippet shares a term with the query. Ranking is declaration order.
type Static struct {
	Docs []Doc
}

// Search implements Searcher.
func (s Static) Search(ctx context.Context, query string, topK int) ([]Doc, error) {
	if topK <= 0 {
		topK = 5
	}
	terms := strings.Fields(strings.ToLower(query))
	var out []Doc
	for _, d := range s.Docs {
		if len(out) >= topK {
			break
		}
		haystack := strings.ToLower(d.Title + " " + d.Snippet)
		for _, term := range terms {
			if strings.Contains(haystack, term) {
				out = append(out, d)
				break
			}
		}
	}
	return out, nil
}

// Empty is a Searcher that always returns no results, exercising the
// low-evidence degradation paths.
type Empty struct{}

// Search implements Searcher.
func (Empty) Search(ctx context.Context, query string, topK int) ([]Doc, error) {
	return nil, nil
}
