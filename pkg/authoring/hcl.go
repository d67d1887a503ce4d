package authoring

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/walteh/tmgen/pkg/tmlanguage"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
)

// HCL authoring schema. Rules are blocks; repository entries are labeled
// blocks whose body is a rule:
//
//	scope_name = "source.demo"
//	uuid       = "..."
//
//	pattern {
//	  include = "#main"
//	}
//
//	repository "main" {
//	  match = "\\bif\\b"
//	  name  = "keyword.control.demo"
//	}
type hclGrammar struct {
	Schema             *string         `hcl:"schema,optional"`
	Name               *string         `hcl:"name,optional"`
	ScopeName          string          `hcl:"scope_name"`
	FileTypes          []string        `hcl:"file_types,optional"`
	FoldingStartMarker *string         `hcl:"folding_start_marker,optional"`
	FoldingStopMarker  *string         `hcl:"folding_stop_marker,optional"`
	FirstLineMatch     *string         `hcl:"first_line_match,optional"`
	InjectionSelector  *string         `hcl:"injection_selector,optional"`
	UUID               *string         `hcl:"uuid,optional"`
	Patterns           []*hclRule      `hcl:"pattern,block"`
	Repository         []*hclNamedRule `hcl:"repository,block"`
}

type hclNamedRule struct {
	Key  string   `hcl:"key,label"`
	Body hcl.Body `hcl:",remain"`
}

type hclRule struct {
	Include       *string           `hcl:"include,optional"`
	Name          *string           `hcl:"name,optional"`
	Match         *string           `hcl:"match,optional"`
	Begin         *string           `hcl:"begin,optional"`
	BeginCaptures map[string]string `hcl:"begin_captures,optional"`
	End           *string           `hcl:"end,optional"`
	EndCaptures   map[string]string `hcl:"end_captures,optional"`
	Captures      map[string]string `hcl:"captures,optional"`
	ContentName   *string           `hcl:"content_name,optional"`
	Patterns      []*hclRule        `hcl:"pattern,block"`
}

func loadHCL(path string, data []byte) (*tmlanguage.Grammar, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, path)
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL grammar source: %s", diags.Error())
	}

	evalCtx := &hcl.EvalContext{Variables: map[string]cty.Value{}}

	var src hclGrammar
	if diags := gohcl.DecodeBody(file.Body, evalCtx, &src); diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL grammar source: %s", diags.Error())
	}
	if src.ScopeName == "" {
		return nil, errors.New("grammar source has no scope_name")
	}

	g := &tmlanguage.Grammar{
		Schema:             deref(src.Schema),
		Name:               deref(src.Name),
		ScopeName:          src.ScopeName,
		FileTypes:          src.FileTypes,
		FoldingStartMarker: deref(src.FoldingStartMarker),
		FoldingStopMarker:  deref(src.FoldingStopMarker),
		FirstLineMatch:     deref(src.FirstLineMatch),
		InjectionSelector:  deref(src.InjectionSelector),
		UUID:               deref(src.UUID),
	}

	for i, r := range src.Patterns {
		p, err := convertHCLRule(r, fmt.Sprintf("pattern[%d]", i))
		if err != nil {
			return nil, err
		}
		g.Patterns = append(g.Patterns, p)
	}

	if len(src.Repository) > 0 {
		g.Repository = make(map[string]tmlanguage.Pattern, len(src.Repository))
		for _, entry := range src.Repository {
			if _, ok := g.Repository[entry.Key]; ok {
				return nil, errors.Errorf("duplicate repository entry %q", entry.Key)
			}
			var r hclRule
			if diags := gohcl.DecodeBody(entry.Body, evalCtx, &r); diags.HasErrors() {
				return nil, errors.Errorf("decoding repository entry %q: %s", entry.Key, diags.Error())
			}
			p, err := convertHCLRule(&r, "repository."+entry.Key)
			if err != nil {
				return nil, err
			}
			g.Repository[entry.Key] = p
		}
	}

	return g, nil
}

// convertHCLRule reuses the YAML/JSON classification by lowering the HCL rule
// to the shared source form first.
func convertHCLRule(r *hclRule, path string) (tmlanguage.Pattern, error) {
	src := hclRuleFile(r)
	return convertRule(&src, path)
}

func hclRuleFile(r *hclRule) ruleFile {
	src := ruleFile{
		Include:       r.Include,
		Name:          deref(r.Name),
		Match:         r.Match,
		Begin:         r.Begin,
		BeginCaptures: hclCaptures(r.BeginCaptures),
		End:           r.End,
		EndCaptures:   hclCaptures(r.EndCaptures),
		Captures:      hclCaptures(r.Captures),
		ContentName:   deref(r.ContentName),
	}
	for _, nested := range r.Patterns {
		src.Patterns = append(src.Patterns, hclRuleFile(nested))
	}
	return src
}

// hclCaptures converts the HCL shorthand (group number to scope name) to the
// source capture form.
func hclCaptures(m map[string]string) map[string]captureFile {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]captureFile, len(m))
	for group, name := range m {
		out[group] = captureFile{Name: name}
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
