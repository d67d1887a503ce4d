package tmlanguage

import (
	"fmt"
	"sort"
)

// walk visits every pattern node in the grammar in document order: top-level
// patterns first, then repository entries sorted by key, descending into
// nested begin/end patterns. The path identifies the node for diagnostics,
// e.g. "patterns[1].patterns[0]" or "repository.comment".
//
// Traversal follows the tree structure only. Includes are not resolved, so
// reference cycles through the repository cannot cause walk to loop.
func walk(g *Grammar, visit func(p Pattern, path string)) {
	var descend func(p Pattern, path string)
	descend = func(p Pattern, path string) {
		visit(p, path)
		if be, ok := p.(*BeginEndPattern); ok {
			for i, child := range be.Patterns {
				descend(child, fmt.Sprintf("%s.patterns[%d]", path, i))
			}
		}
	}

	for i, p := range g.Patterns {
		descend(p, fmt.Sprintf("patterns[%d]", i))
	}

	keys := make([]string, 0, len(g.Repository))
	for name := range g.Repository {
		keys = append(keys, name)
	}
	sort.Strings(keys)
	for _, name := range keys {
		descend(g.Repository[name], "repository."+name)
	}
}
