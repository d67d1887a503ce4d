package tmlanguage

import (
	"context"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

// Format selects the textual representation Render produces.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// ParseFormat converts a user-supplied format name to a Format.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatYAML, FormatJSON:
		return Format(s), nil
	default:
		return "", errors.Errorf("unknown output format %q (want yaml or json)", s)
	}
}

// Render converts a grammar to its on-disk form: validate repository
// references, rewrite include values, prune empty optional fields, marshal.
// It is a pure function of its input; the grammar is not modified, and no
// output is produced when validation fails.
//
// Independent calls are safe to run concurrently since no state is shared
// across them.
func Render(ctx context.Context, g *Grammar, format Format) ([]byte, error) {
	zerolog.Ctx(ctx).Debug().
		Str("scope_name", g.ScopeName).
		Str("format", string(format)).
		Msg("rendering grammar")

	if err := Validate(g); err != nil {
		return nil, errors.Errorf("validating grammar %q: %w", g.ScopeName, err)
	}

	doc, err := lowerGrammar(RewriteIncludes(g))
	if err != nil {
		return nil, errors.Errorf("lowering grammar %q: %w", g.ScopeName, err)
	}

	switch format {
	case FormatYAML:
		out, err := yaml.Marshal(doc)
		if err != nil {
			return nil, errors.Errorf("marshaling grammar %q to yaml: %w", g.ScopeName, err)
		}
		return out, nil
	case FormatJSON:
		out, err := json.MarshalIndent(doc, "", "\t")
		if err != nil {
			return nil, errors.Errorf("marshaling grammar %q to json: %w", g.ScopeName, err)
		}
		return append(out, '\n'), nil
	default:
		return nil, errors.Errorf("unknown output format %q", format)
	}
}
