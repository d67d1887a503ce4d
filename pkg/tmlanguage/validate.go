package tmlanguage

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// ReferenceError reports a "#name" include whose name has no repository entry.
type ReferenceError struct {
	// Include is the offending reference as authored, e.g. "#missing".
	Include string

	// Path locates the offending node, e.g. "patterns[0].patterns[2]".
	Path string
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("%s: include %q does not resolve to a repository entry", e.Path, e.Include)
}

// ShapeError reports a value that is none of the pattern variants. It cannot
// occur for graphs built from this package's constructors and exists to guard
// the variant dispatch.
type ShapeError struct {
	Path  string
	Value any
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("%s: %T is not a pattern variant", e.Path, e.Value)
}

// Validate checks every "#name" include anywhere in the grammar against the
// repository key set: top-level patterns, repository values, and patterns
// nested inside begin/end spans. Only name existence is checked; references
// are never expanded, so self-references and cycles through the repository
// are legal and terminate.
//
// All dangling references are reported, not just the first.
func Validate(g *Grammar) error {
	var errs *multierror.Error

	walk(g, func(p Pattern, path string) {
		switch p := p.(type) {
		case *MatchPattern, *BeginEndPattern:
		case *IncludePattern:
			if name, ok := strings.CutPrefix(p.Include, "#"); ok {
				if _, exists := g.Repository[name]; !exists {
					errs = multierror.Append(errs, &ReferenceError{Include: p.Include, Path: path})
				}
			}
		default:
			errs = multierror.Append(errs, &ShapeError{Path: path, Value: p})
		}
	})

	return errs.ErrorOrNil()
}
