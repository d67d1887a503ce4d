// Package tmlanguage defines a typed model for TextMate syntax-highlighting
// grammars and the pipeline that renders a grammar to its on-disk form.
//
// A grammar is built in memory (directly or via an authoring loader), then
// handed to Render, which validates repository references, rewrites include
// values from their authoring form, prunes empty optional fields, and emits a
// YAML or JSON document. The pipeline never mutates its input; every step
// produces new values.
package tmlanguage

import "github.com/google/uuid"

// Grammar is the complete syntax-highlighting definition for one language or
// document type. ScopeName and UUID are required by the format; the remaining
// fields are optional, with the empty value standing in for "absent" until the
// render step decides what to emit.
type Grammar struct {
	// Schema is the JSON-schema URL some editors attach as "$schema".
	Schema string

	// Name is the human-readable grammar name shown in language pickers.
	Name string

	// ScopeName is the dot-separated identifier for this grammar, e.g.
	// "source.go" or "text.html.markdown".
	ScopeName string

	// FileTypes lists file extensions the grammar applies to by default.
	// Order is preserved as authored.
	FileTypes []string

	FoldingStartMarker string
	FoldingStopMarker  string

	// FirstLineMatch is matched against the first line of a document to
	// detect its type. Always emitted, even when empty.
	FirstLineMatch string

	// InjectionSelector positions an injection grammar relative to the
	// scopes of a host grammar. Always emitted, even when empty.
	InjectionSelector string

	UUID string

	// Patterns are the grammar's top-level rules, tried in order by the
	// consuming editor. Order is semantically significant and is never
	// reordered or deduplicated.
	Patterns []Pattern

	// Repository maps names to reusable patterns referenced elsewhere via
	// "#name" includes.
	Repository map[string]Pattern
}

// NewGrammar returns a grammar with a freshly assigned UUID.
func NewGrammar(name, scopeName string) *Grammar {
	return &Grammar{
		Name:      name,
		ScopeName: scopeName,
		UUID:      uuid.NewString(),
	}
}

// Pattern is a single matching rule: a leaf match (MatchPattern), a multi-line
// begin/end block (BeginEndPattern), or an include reference (IncludePattern).
// A node is exactly one of the three variants; the interface is sealed.
type Pattern interface {
	pattern()
}

// Named is the capability shared by the pattern variants that assign a scope
// name to the text they match.
type Named interface {
	Pattern

	// Scope returns the scope name assigned to matched text, or "" when
	// none is assigned.
	Scope() string
}

// Capture assigns a scope name to a numbered capture group.
type Capture struct {
	Name string
}

// MatchPattern matches a single regular expression and optionally assigns
// scopes to its capture groups.
type MatchPattern struct {
	Name     string
	Match    string
	Captures map[string]Capture
}

// BeginEndPattern matches a span between a begin and an end regular
// expression, possibly spanning lines, with rules of its own applied inside
// the span.
type BeginEndPattern struct {
	Name          string
	Begin         string
	BeginCaptures map[string]Capture
	End           string
	EndCaptures   map[string]Capture

	// Captures is shorthand for giving beginCaptures and endCaptures the
	// same value.
	Captures map[string]Capture

	// ContentName is the scope assigned to the text strictly between the
	// begin and end matches.
	ContentName string

	Patterns []Pattern
}

// IncludePattern references rules defined elsewhere. Three forms:
//
//   - "#name" references this grammar's own repository (validated by Validate)
//   - "!name" references an externally defined grammar; the authoring-time
//     "!" marker is stripped before emission
//   - "$self" references the grammar being defined
type IncludePattern struct {
	Include string
}

func (*MatchPattern) pattern()    {}
func (*BeginEndPattern) pattern() {}
func (*IncludePattern) pattern()  {}

var (
	_ Named = (*MatchPattern)(nil)
	_ Named = (*BeginEndPattern)(nil)
)

func (p *MatchPattern) Scope() string    { return p.Name }
func (p *BeginEndPattern) Scope() string { return p.Name }
