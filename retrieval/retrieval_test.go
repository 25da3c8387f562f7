package retrieval

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatic_Search(t *testing.T) {
	s := Static{Docs: []Doc{
		{Title: "Sunshine Law video retention", Snippet: "Records must be retained.", Source: "kb"},
		{Title: "CJIS Security Policy", Snippet: "ALPR data handling requirements.", Source: "kb"},
		{Title: "Streetlight catalog", Snippet: "Pole-mounted controllers.", Source: "kb"},
	}}

	docs, err := s.Search(context.Background(), "video retention policy", 5)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "Sunshine Law video retention", docs[0].Title)

	docs, err = s.Search(context.Background(), "nothing matches this", 5)
	require.NoError(t, err)
	assert.Empty(t, docs, "empty result is a valid, non-error response")
}

func TestStatic_TopK(t *testing.T) {
	s := Static{Docs: []Doc{
		{Title: "doc one", Snippet: "term"},
		{Title: "doc two", Snippet: "term"},
		{Title: "doc three", Snippet: "term"},
	}}
	docs, err := s.Search(context.Background(), "term", 2)
	require.NoError(t, err)
	assert.Len(t, docs, 2)
}

func TestEvidence_Conversion(t *testing.T) {
	docs := []Doc{{Title: "t", URI: "u", Snippet: "s", Source: "src"}}
	ev := Evidence(docs)
	require.Len(t, ev, 1)
	assert.Equal(t, "t", ev[0].Title)
	assert.Equal(t, "src", ev[0].Source)

	assert.Empty(t, Evidence(nil))
}
