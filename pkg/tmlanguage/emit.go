package tmlanguage

// The on-disk shapes below mirror what editors consume. Optional fields carry
// omitempty tags; the required fields (scopeName, uuid, firstLineMatch,
// injectionSelector, begin, end, match) are emitted verbatim even when empty.
// Struct field order is the emission order for both YAML and JSON.

type document struct {
	Schema             string          `yaml:"$schema,omitempty" json:"$schema,omitempty"`
	Name               string          `yaml:"name,omitempty" json:"name,omitempty"`
	ScopeName          string          `yaml:"scopeName" json:"scopeName"`
	FileTypes          []string        `yaml:"fileTypes,omitempty" json:"fileTypes,omitempty"`
	FoldingStartMarker string          `yaml:"foldingStartMarker,omitempty" json:"foldingStartMarker,omitempty"`
	FoldingStopMarker  string          `yaml:"foldingStopMarker,omitempty" json:"foldingStopMarker,omitempty"`
	FirstLineMatch     string          `yaml:"firstLineMatch" json:"firstLineMatch"`
	InjectionSelector  string          `yaml:"injectionSelector" json:"injectionSelector"`
	UUID               string          `yaml:"uuid" json:"uuid"`
	Patterns           []rule          `yaml:"patterns,omitempty" json:"patterns,omitempty"`
	Repository         map[string]rule `yaml:"repository,omitempty" json:"repository,omitempty"`
}

// rule is the wire form of any pattern variant. Match, Begin and End are
// pointers because they must be emitted even when empty, but only for the
// variant they belong to.
type rule struct {
	Include       string          `yaml:"include,omitempty" json:"include,omitempty"`
	Name          string          `yaml:"name,omitempty" json:"name,omitempty"`
	Match         *string         `yaml:"match,omitempty" json:"match,omitempty"`
	Begin         *string         `yaml:"begin,omitempty" json:"begin,omitempty"`
	BeginCaptures map[string]rule `yaml:"beginCaptures,omitempty" json:"beginCaptures,omitempty"`
	End           *string         `yaml:"end,omitempty" json:"end,omitempty"`
	EndCaptures   map[string]rule `yaml:"endCaptures,omitempty" json:"endCaptures,omitempty"`
	Captures      map[string]rule `yaml:"captures,omitempty" json:"captures,omitempty"`
	ContentName   string          `yaml:"contentName,omitempty" json:"contentName,omitempty"`
	Patterns      []rule          `yaml:"patterns,omitempty" json:"patterns,omitempty"`
}

// Converter table: one omission rule per shape, consulted while lowering the
// model to its wire form. A value an omission rule reports as empty is dropped
// from the document entirely rather than emitted as null or as an empty
// string/mapping.

func omitString(s string) bool { return len(s) == 0 }

func omitCaptures(m map[string]Capture) bool { return len(m) == 0 }

// omitRule applies the emptiness check to a whole pattern instance by
// inspecting its lowered field set. Match and begin/end patterns always carry
// at least their required fields, so this triggers only for degenerate
// includes; it keeps the dispatch uniform across shapes.
func omitRule(r rule) bool {
	return r.Include == "" && r.Name == "" &&
		r.Match == nil && r.Begin == nil && r.End == nil &&
		len(r.BeginCaptures) == 0 && len(r.EndCaptures) == 0 && len(r.Captures) == 0 &&
		r.ContentName == "" && len(r.Patterns) == 0
}

func lowerGrammar(g *Grammar) (document, error) {
	doc := document{
		Schema:             g.Schema,
		Name:               g.Name,
		ScopeName:          g.ScopeName,
		FoldingStartMarker: g.FoldingStartMarker,
		FoldingStopMarker:  g.FoldingStopMarker,
		FirstLineMatch:     g.FirstLineMatch,
		InjectionSelector:  g.InjectionSelector,
		UUID:               g.UUID,
	}

	if len(g.FileTypes) > 0 {
		doc.FileTypes = g.FileTypes
	}

	if len(g.Patterns) > 0 {
		rules, err := lowerPatterns(g.Patterns)
		if err != nil {
			return document{}, err
		}
		doc.Patterns = rules
	}

	if len(g.Repository) > 0 {
		doc.Repository = make(map[string]rule, len(g.Repository))
		for name, p := range g.Repository {
			r, err := lowerPattern(p)
			if err != nil {
				return document{}, err
			}
			if omitRule(r) {
				continue
			}
			doc.Repository[name] = r
		}
	}

	return doc, nil
}

func lowerPattern(p Pattern) (rule, error) {
	switch p := p.(type) {
	case *MatchPattern:
		r := rule{Match: &p.Match}
		if !omitString(p.Name) {
			r.Name = p.Name
		}
		if !omitCaptures(p.Captures) {
			r.Captures = lowerCaptures(p.Captures)
		}
		return r, nil

	case *BeginEndPattern:
		r := rule{Begin: &p.Begin, End: &p.End}
		if !omitString(p.Name) {
			r.Name = p.Name
		}
		if !omitCaptures(p.BeginCaptures) {
			r.BeginCaptures = lowerCaptures(p.BeginCaptures)
		}
		if !omitCaptures(p.EndCaptures) {
			r.EndCaptures = lowerCaptures(p.EndCaptures)
		}
		if !omitCaptures(p.Captures) {
			r.Captures = lowerCaptures(p.Captures)
		}
		if !omitString(p.ContentName) {
			r.ContentName = p.ContentName
		}
		if len(p.Patterns) > 0 {
			nested, err := lowerPatterns(p.Patterns)
			if err != nil {
				return rule{}, err
			}
			r.Patterns = nested
		}
		return r, nil

	case *IncludePattern:
		return rule{Include: p.Include}, nil

	default:
		return rule{}, &ShapeError{Value: p}
	}
}

func lowerPatterns(ps []Pattern) ([]rule, error) {
	out := make([]rule, 0, len(ps))
	for _, p := range ps {
		r, err := lowerPattern(p)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// captures are emitted as {name: scope} objects keyed by group number.
func lowerCaptures(m map[string]Capture) map[string]rule {
	out := make(map[string]rule, len(m))
	for group, c := range m {
		out[group] = rule{Name: c.Name}
	}
	return out
}
