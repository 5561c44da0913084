package projection

import (
	"sort"
	"strings"
)

// Projection maps dot-joined storage paths to an inclusion marker. It is
// consumed directly as a document-store projection specification.
type Projection map[string]bool

// Paths returns the projected storage paths in sorted order.
func (p Projection) Paths() []string {
	paths := make([]string, 0, len(p))
	for path := range p {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// reconcile merges dependency paths into a copy of proj under the prefix
// subsumption rule, processing deps in input order:
//
//  1. a path already present is skipped;
//  2. a path covered by an existing strict ancestor is skipped, since the
//     ancestor fetches the whole sub-document;
//  3. otherwise existing strict descendants of the path are removed and the
//     path is inserted.
//
// The result contains no key that is a strict dot-prefix of another key.
func reconcile(proj Projection, deps []string) Projection {
	out := make(Projection, len(proj))
	for path := range proj {
		out[path] = true
	}
	for _, dep := range deps {
		if out[dep] {
			continue
		}
		if coveredByAncestor(out, dep) {
			continue
		}
		for path := range out {
			if strings.HasPrefix(path, dep+".") {
				delete(out, path)
			}
		}
		out[dep] = true
	}
	return out
}

func coveredByAncestor(p Projection, path string) bool {
	for key := range p {
		if strings.HasPrefix(path, key+".") {
			return true
		}
	}
	return false
}
