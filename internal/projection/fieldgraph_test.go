package projection

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// Pattern: Result comparison
func TestBuildFieldGraphs_Result(t *testing.T) {
	t.Run("Direct selection first, fragment branches after", func(t *testing.T) {
		doc := mustParseQuery(t, `{
			a
			...F
		}
		fragment F on User { b }
		`)
		forest := mustBuildForest(t, doc)
		if len(forest) != 2 {
			t.Fatalf("expected 2 branches, got %d", len(forest))
		}
		if n := forest[0]["a"]; n == nil || !n.leaf {
			t.Fatalf("direct branch should mark a as leaf: %+v", forest[0])
		}
		if n := forest[1]["b"]; n == nil || !n.leaf {
			t.Fatalf("fragment branch should mark b as leaf: %+v", forest[1])
		}
	})

	t.Run("Repeated leaf request is idempotent", func(t *testing.T) {
		doc := mustParseQuery(t, `{ a a }`)
		forest := mustBuildForest(t, doc)
		if len(forest) != 1 {
			t.Fatalf("expected 1 branch, got %d", len(forest))
		}
		if n := forest[0]["a"]; n == nil || !n.leaf {
			t.Fatalf("a should be leaf: %+v", forest[0])
		}
	})

	t.Run("Leaf request is never refined into a sub-selection", func(t *testing.T) {
		doc := mustParseQuery(t, `{ a a { x } }`)
		forest := mustBuildForest(t, doc)
		if n := forest[0]["a"]; n == nil || !n.leaf || len(n.subs) != 0 {
			t.Fatalf("a should stay leaf: %+v", forest[0]["a"])
		}
	})

	t.Run("Same field in two occurrences concatenates sub-forests", func(t *testing.T) {
		doc := mustParseQuery(t, `{ a { x } a { y } }`)
		forest := mustBuildForest(t, doc)
		n := forest[0]["a"]
		if n == nil || n.leaf || len(n.subs) != 2 {
			t.Fatalf("a should hold two sub-graphs: %+v", n)
		}
	})

	t.Run("Aliases are dropped", func(t *testing.T) {
		doc := mustParseQuery(t, `{ renamed: a }`)
		forest := mustBuildForest(t, doc)
		if forest[0]["a"] == nil || forest[0]["renamed"] != nil {
			t.Fatalf("selection should be keyed by field name: %+v", forest[0])
		}
	})

	t.Run("Inline fragment contributes an independent branch", func(t *testing.T) {
		doc := mustParseQuery(t, `{ a ... on User { b } }`)
		forest := mustBuildForest(t, doc)
		if len(forest) != 2 {
			t.Fatalf("expected 2 branches, got %d", len(forest))
		}
		if n := forest[1]["b"]; n == nil || !n.leaf {
			t.Fatalf("inline fragment branch should mark b as leaf: %+v", forest[1])
		}
	})
}

func TestFragmentCache_Memoization(t *testing.T) {
	doc := mustParseQuery(t, `{
		...F
		...F
		x { ...F }
	}
	fragment F on User { a }
	`)
	cache := newFragmentCache(doc.Fragments)
	forest, err := buildFieldGraphs(doc.Operations[0].SelectionSet, cache)
	if err != nil {
		t.Fatalf("build forest: %v", err)
	}
	if len(cache.expanded) != 1 {
		t.Fatalf("fragment should be expanded once, cache holds %d entries", len(cache.expanded))
	}
	// Three references, one expansion: branches 1 and 2 are the same graphs.
	if len(forest) != 3 {
		t.Fatalf("expected 3 branches, got %d", len(forest))
	}
}

func TestBuildFieldGraphs_Errors(t *testing.T) {
	t.Run("Missing fragment definition", func(t *testing.T) {
		doc := mustParseQuery(t, `{ ...Missing }`)
		_, err := buildFieldGraphs(doc.Operations[0].SelectionSet, newFragmentCache(doc.Fragments))
		if !IsKind(err, KindFragmentNotFound) {
			t.Fatalf("expected fragment-not-found, got %v", err)
		}
	})

	t.Run("Fragment spread cycle", func(t *testing.T) {
		doc := mustParseQuery(t, `{ ...A }
		fragment A on User { x ...B }
		fragment B on User { y ...A }
		`)
		_, err := buildFieldGraphs(doc.Operations[0].SelectionSet, newFragmentCache(doc.Fragments))
		if !IsKind(err, KindFragmentCycle) {
			t.Fatalf("expected fragment-cycle, got %v", err)
		}
	})

	t.Run("Self-referential fragment", func(t *testing.T) {
		doc := mustParseQuery(t, `{ ...A }
		fragment A on User { x ...A }
		`)
		_, err := buildFieldGraphs(doc.Operations[0].SelectionSet, newFragmentCache(doc.Fragments))
		if !IsKind(err, KindFragmentCycle) {
			t.Fatalf("expected fragment-cycle, got %v", err)
		}
	})
}

// Pattern: Result comparison
func TestMergeForest_Result(t *testing.T) {
	t.Run("Fragments selecting sibling fields merge into one subtree", func(t *testing.T) {
		got := mustMergeQuery(t, `{
			...X
			...Y
		}
		fragment X on User { a { x } }
		fragment Y on User { a { y } }
		`)
		want := Tree{"a": {Children: Tree{"x": {Leaf: true}, "y": {Leaf: true}}}}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("merged tree mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("Leaf dominates sub-selections from other branches", func(t *testing.T) {
		got := mustMergeQuery(t, `{
			a { x }
			...F
		}
		fragment F on User { a }
		`)
		want := Tree{"a": {Leaf: true}}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("merged tree mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("Leaf dominates regardless of arrival order", func(t *testing.T) {
		got := mustMergeQuery(t, `{
			...F
			a { x }
		}
		fragment F on User { a }
		`)
		want := Tree{"a": {Leaf: true}}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("merged tree mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestMergeForest_Commutative(t *testing.T) {
	forest := mustBuildForest(t, mustParseQuery(t, `{
		a { x }
		...X
		...Y
		b
	}
	fragment X on User { a { y } c { m } }
	fragment Y on User { c { n } b }
	`))

	want := mergeForest(forest)
	reversed := make([]fieldGraph, len(forest))
	for i, g := range forest {
		reversed[len(forest)-1-i] = g
	}
	got := mergeForest(reversed)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("merge is not commutative (-want +got):\n%s", diff)
	}
}
