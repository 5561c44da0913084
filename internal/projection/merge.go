package projection

// Tree is a fully merged selection tree: every field name maps to either a
// leaf request or a merged subtree, with no residual branch lists.
type Tree map[string]*TreeNode

// TreeNode is the merged state for one field name.
type TreeNode struct {
	Leaf     bool
	Children Tree
}

// mergeForest folds a forest of unmerged field graphs into one Tree.
//
// Per field name: a leaf request dominates regardless of arrival order, and
// non-leaf contributions concatenate their sub-forests, which are then merged
// recursively. The fold is associative and commutative, so the order of the
// forest only affects work, never the result.
func mergeForest(forest []fieldGraph) Tree {
	acc := fieldGraph{}
	for _, graph := range forest {
		for name, node := range graph {
			cur := acc[name]
			if cur == nil {
				// Copy so later concatenation never mutates cached fragment graphs.
				acc[name] = &graphNode{leaf: node.leaf, subs: append([]fieldGraph(nil), node.subs...)}
				continue
			}
			if cur.leaf {
				continue
			}
			if node.leaf {
				acc[name] = &graphNode{leaf: true}
				continue
			}
			cur.subs = append(cur.subs, node.subs...)
		}
	}

	out := Tree{}
	for name, node := range acc {
		if node.leaf {
			out[name] = &TreeNode{Leaf: true}
			continue
		}
		out[name] = &TreeNode{Children: mergeForest(node.subs)}
	}
	return out
}
