package projection

import (
	"testing"

	language "github.com/hanpama/mongograph/internal/language"
)

// mustParseQuery parses a GraphQL query and fails the test on error.
func mustParseQuery(t *testing.T, q string) *language.QueryDocument {
	t.Helper()
	d, err := language.ParseQuery(q)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	return d
}

// mustBuildForest flattens the document's single operation into a forest,
// resolving spreads against the document's own fragments.
func mustBuildForest(t *testing.T, doc *language.QueryDocument) []fieldGraph {
	t.Helper()
	forest, err := buildFieldGraphs(doc.Operations[0].SelectionSet, newFragmentCache(doc.Fragments))
	if err != nil {
		t.Fatalf("build forest: %v", err)
	}
	return forest
}

// mustMergeQuery parses q and returns its canonical merged tree.
func mustMergeQuery(t *testing.T, q string) Tree {
	t.Helper()
	return mergeForest(mustBuildForest(t, mustParseQuery(t, q)))
}
