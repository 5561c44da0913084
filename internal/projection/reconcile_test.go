package projection

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// Pattern: Result comparison
func TestReconcile_Result(t *testing.T) {
	cases := []struct {
		name string
		proj Projection
		deps []string
		want Projection
	}{
		{
			name: "Missing dependency is added",
			proj: Projection{"a": true},
			deps: []string{"c"},
			want: Projection{"a": true, "c": true},
		},
		{
			name: "Dependency already projected is skipped",
			proj: Projection{"a": true, "b": true},
			deps: []string{"b"},
			want: Projection{"a": true, "b": true},
		},
		{
			name: "Ancestor key already covers the dependency",
			proj: Projection{"a": true},
			deps: []string{"a.x"},
			want: Projection{"a": true},
		},
		{
			name: "Ancestor dependency replaces projected descendants",
			proj: Projection{"a.x": true, "a.y": true},
			deps: []string{"a"},
			want: Projection{"a": true},
		},
		{
			name: "Prefix match is per path segment, not per character",
			proj: Projection{"ab.x": true},
			deps: []string{"a"},
			want: Projection{"ab.x": true, "a": true},
		},
		{
			name: "Duplicate dependencies deduplicate",
			proj: Projection{},
			deps: []string{"a.x", "a.x"},
			want: Projection{"a.x": true},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := reconcile(tc.proj, tc.deps)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("reconciled projection mismatch (-want +got):\n%s", diff)
			}
			assertNoPrefixPairs(t, got)
		})
	}
}

func TestReconcile_Idempotent(t *testing.T) {
	proj := Projection{"a.x": true, "a.y": true, "b": true}
	deps := []string{"a", "c.z"}

	once := reconcile(proj, deps)
	twice := reconcile(once, deps)
	if diff := cmp.Diff(once, twice); diff != "" {
		t.Fatalf("reconciliation is not idempotent (-once +twice):\n%s", diff)
	}
}

func TestReconcile_DoesNotMutateInput(t *testing.T) {
	proj := Projection{"a.x": true}
	_ = reconcile(proj, []string{"a"})
	if diff := cmp.Diff(Projection{"a.x": true}, proj); diff != "" {
		t.Fatalf("input projection was mutated (-want +got):\n%s", diff)
	}
}

// assertNoPrefixPairs enforces the reconciler invariant: no key is a strict
// dot-prefix of another key.
func assertNoPrefixPairs(t *testing.T, p Projection) {
	t.Helper()
	for a := range p {
		for b := range p {
			if a != b && strings.HasPrefix(b, a+".") {
				t.Fatalf("key %q is a strict prefix of %q", a, b)
			}
		}
	}
}
