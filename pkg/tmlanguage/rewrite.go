package tmlanguage

import "strings"

// RewriteIncludes returns a copy of g with the authoring-time external-grammar
// marker removed from every include reference: "!name" becomes "name", while
// "#name", "$self", and any other value pass through verbatim. Exactly one
// leading "!" is removed, which makes the rewrite idempotent.
//
// The input grammar is not modified. Every pattern node in the result is a
// fresh value; capture maps are shared with the input, which is safe because
// the pipeline never mutates them.
func RewriteIncludes(g *Grammar) *Grammar {
	out := *g
	out.Patterns = rewritePatterns(g.Patterns)
	if g.Repository != nil {
		out.Repository = make(map[string]Pattern, len(g.Repository))
		for name, p := range g.Repository {
			out.Repository[name] = rewritePattern(p)
		}
	}
	return &out
}

func rewriteInclude(p *IncludePattern) *IncludePattern {
	if rest, ok := strings.CutPrefix(p.Include, "!"); ok {
		return &IncludePattern{Include: rest}
	}
	out := *p
	return &out
}

func rewritePattern(p Pattern) Pattern {
	switch p := p.(type) {
	case *MatchPattern:
		out := *p
		return &out
	case *BeginEndPattern:
		out := *p
		out.Patterns = rewritePatterns(p.Patterns)
		return &out
	case *IncludePattern:
		return rewriteInclude(p)
	default:
		// non-variant values are caught by Validate before rewrite runs
		return p
	}
}

func rewritePatterns(ps []Pattern) []Pattern {
	if ps == nil {
		return nil
	}
	out := make([]Pattern, len(ps))
	for i, p := range ps {
		out[i] = rewritePattern(p)
	}
	return out
}
