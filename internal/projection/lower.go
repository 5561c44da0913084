package projection

import (
	schema "github.com/hanpama/mongograph/internal/schema"
)

const typenameField = "__typename"

// lower walks the merged tree alongside the owning type's metadata and emits
// the flat storage projection for exactly that subtree. exclude applies only
// at the call's own level; recursion passes nil.
func (c *Compiler) lower(objectType *schema.Type, tree Tree, exclude map[string]bool) (Projection, error) {
	out := Projection{}
	for name, node := range tree {
		if name == typenameField {
			continue
		}
		if exclude[name] {
			continue
		}
		fd := objectType.GetField(name)
		if fd == nil {
			return nil, errSchemaMismatch("field %q is not defined on type %s", name, objectType.Name)
		}
		if fd.Computed {
			// Backed only through declared dependencies, handled by the collector.
			continue
		}
		if node.Leaf {
			out[name] = true
			continue
		}
		inner, err := c.innerObjectType(objectType, fd)
		if err != nil {
			return nil, err
		}
		nested, err := c.lower(inner, node.Children, nil)
		if err != nil {
			return nil, err
		}
		for path := range nested {
			out[name+"."+path] = true
		}
	}
	return out, nil
}

// collectDependencies gathers the storage paths computed fields in this
// subtree need, each re-rooted under the computed field's location. The
// returned list is unordered and may contain duplicates; the reconciler
// deduplicates implicitly.
func (c *Compiler) collectDependencies(objectType *schema.Type, tree Tree) ([]string, error) {
	var deps []string
	for name, node := range tree {
		if name == typenameField {
			continue
		}
		fd := objectType.GetField(name)
		if fd == nil {
			return nil, errSchemaMismatch("field %q is not defined on type %s", name, objectType.Name)
		}
		if fd.Computed {
			deps = append(deps, fd.Dependencies...)
			continue
		}
		if node.Leaf {
			continue
		}
		inner, err := c.innerObjectType(objectType, fd)
		if err != nil {
			return nil, err
		}
		nested, err := c.collectDependencies(inner, node.Children)
		if err != nil {
			return nil, err
		}
		for _, dep := range nested {
			deps = append(deps, name+"."+dep)
		}
	}
	return deps, nil
}

func (c *Compiler) innerObjectType(owner *schema.Type, fd *schema.Field) (*schema.Type, error) {
	name := fd.Type.GetNamedType()
	inner := c.schema.GetType(name)
	if inner == nil || inner.Kind != schema.TypeKindObject {
		return nil, errSchemaMismatch("field %s.%s carries a sub-selection but %s is not an object type", owner.Name, fd.Name, name)
	}
	return inner, nil
}
