// Package authoring loads grammar source files into the tmlanguage model.
// Grammars are authored in YAML, JSON, or HCL; the loader is strict about
// unknown fields and rejects rule nodes that mix the discriminant keys of
// different pattern variants.
package authoring

import (
	"bytes"
	"fmt"
	"path/filepath"

	json "github.com/goccy/go-json"
	"github.com/walteh/tmgen/pkg/tmlanguage"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

// Load decodes a grammar source file. The format is chosen by file extension:
// .yaml/.yml, .json, or .hcl.
func Load(path string, data []byte) (*tmlanguage.Grammar, error) {
	switch ext := filepath.Ext(path); ext {
	case ".yaml", ".yml":
		return loadYAML(data)
	case ".json":
		return loadJSON(data)
	case ".hcl":
		return loadHCL(path, data)
	default:
		return nil, errors.Errorf("unsupported grammar source extension %q (want .yaml, .yml, .json, or .hcl)", ext)
	}
}

// grammarFile is the YAML/JSON source schema. It uses the on-disk key names,
// so a rendered grammar is itself loadable.
type grammarFile struct {
	Schema             string              `yaml:"$schema" json:"$schema"`
	Name               string              `yaml:"name" json:"name"`
	ScopeName          string              `yaml:"scopeName" json:"scopeName"`
	FileTypes          []string            `yaml:"fileTypes" json:"fileTypes"`
	FoldingStartMarker string              `yaml:"foldingStartMarker" json:"foldingStartMarker"`
	FoldingStopMarker  string              `yaml:"foldingStopMarker" json:"foldingStopMarker"`
	FirstLineMatch     string              `yaml:"firstLineMatch" json:"firstLineMatch"`
	InjectionSelector  string              `yaml:"injectionSelector" json:"injectionSelector"`
	UUID               string              `yaml:"uuid" json:"uuid"`
	Patterns           []ruleFile          `yaml:"patterns" json:"patterns"`
	Repository         map[string]ruleFile `yaml:"repository" json:"repository"`
}

type ruleFile struct {
	Include       *string                `yaml:"include" json:"include"`
	Name          string                 `yaml:"name" json:"name"`
	Match         *string                `yaml:"match" json:"match"`
	Begin         *string                `yaml:"begin" json:"begin"`
	BeginCaptures map[string]captureFile `yaml:"beginCaptures" json:"beginCaptures"`
	End           *string                `yaml:"end" json:"end"`
	EndCaptures   map[string]captureFile `yaml:"endCaptures" json:"endCaptures"`
	Captures      map[string]captureFile `yaml:"captures" json:"captures"`
	ContentName   string                 `yaml:"contentName" json:"contentName"`
	Patterns      []ruleFile             `yaml:"patterns" json:"patterns"`
}

type captureFile struct {
	Name string `yaml:"name" json:"name"`
}

func loadYAML(data []byte) (*tmlanguage.Grammar, error) {
	var src grammarFile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&src); err != nil {
		return nil, errors.Errorf("parsing YAML grammar source: %w", err)
	}
	return convert(&src)
}

func loadJSON(data []byte) (*tmlanguage.Grammar, error) {
	var src grammarFile
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&src); err != nil {
		return nil, errors.Errorf("parsing JSON grammar source: %w", err)
	}
	return convert(&src)
}

func convert(src *grammarFile) (*tmlanguage.Grammar, error) {
	g := &tmlanguage.Grammar{
		Schema:             src.Schema,
		Name:               src.Name,
		ScopeName:          src.ScopeName,
		FileTypes:          src.FileTypes,
		FoldingStartMarker: src.FoldingStartMarker,
		FoldingStopMarker:  src.FoldingStopMarker,
		FirstLineMatch:     src.FirstLineMatch,
		InjectionSelector:  src.InjectionSelector,
		UUID:               src.UUID,
	}

	if g.ScopeName == "" {
		return nil, errors.New("grammar source has no scopeName")
	}

	for i, r := range src.Patterns {
		p, err := convertRule(&r, fmt.Sprintf("patterns[%d]", i))
		if err != nil {
			return nil, err
		}
		g.Patterns = append(g.Patterns, p)
	}

	if len(src.Repository) > 0 {
		g.Repository = make(map[string]tmlanguage.Pattern, len(src.Repository))
		for name, r := range src.Repository {
			p, err := convertRule(&r, "repository."+name)
			if err != nil {
				return nil, err
			}
			g.Repository[name] = p
		}
	}

	return g, nil
}

// convertRule classifies a source rule by its discriminant keys, rejecting
// nodes that belong to more than one variant at once.
func convertRule(r *ruleFile, path string) (tmlanguage.Pattern, error) {
	switch {
	case r.Include != nil:
		if r.Match != nil || r.Begin != nil || r.End != nil || r.Name != "" ||
			len(r.Captures) != 0 || len(r.BeginCaptures) != 0 || len(r.EndCaptures) != 0 ||
			r.ContentName != "" || len(r.Patterns) != 0 {
			return nil, errors.Errorf("%s: include rule carries keys of another variant", path)
		}
		return &tmlanguage.IncludePattern{Include: *r.Include}, nil

	case r.Begin != nil || r.End != nil:
		if r.Match != nil {
			return nil, errors.Errorf("%s: begin/end rule also sets match", path)
		}
		if r.Begin == nil || r.End == nil {
			return nil, errors.Errorf("%s: begin/end rule needs both begin and end", path)
		}
		p := &tmlanguage.BeginEndPattern{
			Name:          r.Name,
			Begin:         *r.Begin,
			BeginCaptures: convertCaptures(r.BeginCaptures),
			End:           *r.End,
			EndCaptures:   convertCaptures(r.EndCaptures),
			Captures:      convertCaptures(r.Captures),
			ContentName:   r.ContentName,
		}
		for i, nested := range r.Patterns {
			child, err := convertRule(&nested, fmt.Sprintf("%s.patterns[%d]", path, i))
			if err != nil {
				return nil, err
			}
			p.Patterns = append(p.Patterns, child)
		}
		return p, nil

	default:
		if len(r.BeginCaptures) != 0 || len(r.EndCaptures) != 0 || r.ContentName != "" || len(r.Patterns) != 0 {
			return nil, errors.Errorf("%s: match rule carries begin/end keys", path)
		}
		var match string
		if r.Match != nil {
			match = *r.Match
		}
		return &tmlanguage.MatchPattern{
			Name:     r.Name,
			Match:    match,
			Captures: convertCaptures(r.Captures),
		}, nil
	}
}

func convertCaptures(m map[string]captureFile) map[string]tmlanguage.Capture {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]tmlanguage.Capture, len(m))
	for group, c := range m {
		out[group] = tmlanguage.Capture{Name: c.Name}
	}
	return out
}