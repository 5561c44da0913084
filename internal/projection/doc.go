// Package projection compiles a GraphQL selection set, resolved against a
// single object type, into a flat MongoDB projection: the set of dot-joined
// storage paths that must be fetched so that every requested field, plus
// every input of every requested computed field, is available and nothing
// else is.
//
// Compilation runs in three stages:
//
//  1. Building. The selection set is flattened into a forest of unmerged
//     field graphs. Fragment spreads are expanded through a per-call cache so
//     a fragment referenced N times is parsed once; each expanded fragment
//     contributes its graphs as independent branches of the forest. Aliases
//     are discarded: projection paths always use storage field names.
//
//  2. Merging. The forest is folded into one canonical tree where every
//     field name maps to either a leaf request or a merged subtree. A leaf
//     request dominates: once a name is marked leaf, sub-selections for that
//     name from other branches are ignored.
//
//  3. Lowering and reconciliation. The merged tree is walked twice against
//     the schema metadata. The first walk emits the flat projection, skipping
//     __typename, caller-excluded top-level fields, and computed fields; it
//     recurses into nested object types with dot-prefixing. The second walk
//     gathers the storage-path dependencies declared by computed fields,
//     re-rooted under each computed field's location. The reconciler then
//     merges both sets under prefix subsumption: a path is skipped when an
//     ancestor already covers it, and adding an ancestor removes the
//     descendants it makes redundant. The result never contains a key that
//     is a strict dot-prefix of another key.
//
// Compilation is pure: all state, including the fragment cache, lives in one
// Compile call, so a single Compiler is safe for concurrent use.
package projection
