package projection

import (
	"sort"

	language "github.com/hanpama/mongograph/internal/language"
	schema "github.com/hanpama/mongograph/internal/schema"
)

// Compiler compiles selection sets against one schema. It holds no per-call
// state and is safe for concurrent use.
type Compiler struct {
	schema *schema.Schema
}

func NewCompiler(s *schema.Schema) *Compiler {
	return &Compiler{schema: s}
}

// Compile turns the selection set, resolved against the named object type,
// into the final flat projection. fragments supplies the definitions that
// spreads in sel (and in other fragments) may reference; exclude names
// top-level fields to leave out of the projection even when requested.
//
// Compilation is all-or-nothing: on error no partial projection is returned.
func (c *Compiler) Compile(typeName string, sel language.SelectionSet, fragments language.FragmentDefinitionList, exclude []string) (Projection, error) {
	if len(sel) == 0 {
		return nil, errContract("empty selection set")
	}
	objectType := c.schema.GetType(typeName)
	if objectType == nil {
		return nil, errContract("unknown type %q", typeName)
	}
	if objectType.Kind != schema.TypeKindObject {
		return nil, errContract("type %q is not an object type", typeName)
	}

	// The cache lives and dies with this call; concurrent compilations never
	// share memoization state.
	cache := newFragmentCache(fragments)
	forest, err := buildFieldGraphs(sel, cache)
	if err != nil {
		return nil, err
	}
	tree := mergeForest(forest)

	var excluded map[string]bool
	if len(exclude) > 0 {
		excluded = make(map[string]bool, len(exclude))
		for _, name := range exclude {
			excluded[name] = true
		}
	}
	proj, err := c.lower(objectType, tree, excluded)
	if err != nil {
		return nil, err
	}
	deps, err := c.collectDependencies(objectType, tree)
	if err != nil {
		return nil, err
	}
	// Subsumption is order-independent; sorting just keeps runs reproducible.
	sort.Strings(deps)
	return reconcile(proj, deps), nil
}
