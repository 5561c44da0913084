package projection

import (
	language "github.com/hanpama/mongograph/internal/language"
)

// graphNode is one entry of an unmerged field graph: either a leaf request or
// an ordered list of sub-selection graphs still awaiting merge.
type graphNode struct {
	leaf bool
	subs []fieldGraph
}

// fieldGraph maps field names to their unmerged selection state for one
// independent branch of a selection.
type fieldGraph map[string]*graphNode

// fragmentCache memoizes fragment expansion within one compilation call.
// inFlight tracks fragments currently being expanded so a spread cycle is
// reported instead of recursing forever.
type fragmentCache struct {
	fragments language.FragmentDefinitionList
	expanded  map[string][]fieldGraph
	inFlight  map[string]bool
}

func newFragmentCache(fragments language.FragmentDefinitionList) *fragmentCache {
	return &fragmentCache{
		fragments: fragments,
		expanded:  make(map[string][]fieldGraph),
		inFlight:  make(map[string]bool),
	}
}

// resolve returns the expanded graphs for the named fragment, building them
// on first reference and serving the cached forest on every later one.
func (c *fragmentCache) resolve(name string) ([]fieldGraph, error) {
	if graphs, ok := c.expanded[name]; ok {
		return graphs, nil
	}
	if c.inFlight[name] {
		return nil, errFragmentCycle(name)
	}
	def := c.fragments.ForName(name)
	if def == nil {
		return nil, errFragmentNotFound(name)
	}
	c.inFlight[name] = true
	graphs, err := buildFieldGraphs(def.SelectionSet, c)
	delete(c.inFlight, name)
	if err != nil {
		return nil, err
	}
	c.expanded[name] = graphs
	return graphs, nil
}

// buildFieldGraphs flattens a selection set into independent branches: the
// direct-selection graph first, fragment contributions after it. Projection
// paths always use the field name, so aliases are dropped here.
func buildFieldGraphs(sel language.SelectionSet, cache *fragmentCache) ([]fieldGraph, error) {
	direct := fieldGraph{}
	forest := []fieldGraph{direct}

	for _, selection := range sel {
		switch node := selection.(type) {
		case *language.Field:
			existing := direct[node.Name]
			if len(node.SelectionSet) == 0 {
				// Repeated leaf requests are idempotent; first write wins.
				if existing == nil {
					direct[node.Name] = &graphNode{leaf: true}
				}
				continue
			}
			// A field already requested as a leaf stays a leaf.
			if existing != nil && existing.leaf {
				continue
			}
			subs, err := buildFieldGraphs(node.SelectionSet, cache)
			if err != nil {
				return nil, err
			}
			if existing == nil {
				existing = &graphNode{}
				direct[node.Name] = existing
			}
			existing.subs = append(existing.subs, subs...)

		case *language.FragmentSpread:
			graphs, err := cache.resolve(node.Name)
			if err != nil {
				return nil, err
			}
			forest = append(forest, graphs...)

		case *language.InlineFragment:
			// Type conditions are not evaluated: polymorphic dispatch is out
			// of scope, so an inline fragment contributes unconditionally.
			graphs, err := buildFieldGraphs(node.SelectionSet, cache)
			if err != nil {
				return nil, err
			}
			forest = append(forest, graphs...)
		}
	}
	return forest, nil
}
