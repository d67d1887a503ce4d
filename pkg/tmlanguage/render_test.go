package tmlanguage_test

import (
	"context"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/tmgen/pkg/tmlanguage"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

func renderToMap(t *testing.T, g *tmlanguage.Grammar, format tmlanguage.Format) map[string]any {
	t.Helper()

	out, err := tmlanguage.Render(context.Background(), g, format)
	require.NoError(t, err, "render should succeed")

	doc := make(map[string]any)
	switch format {
	case tmlanguage.FormatYAML:
		require.NoError(t, yaml.Unmarshal(out, &doc))
	case tmlanguage.FormatJSON:
		require.NoError(t, json.Unmarshal(out, &doc))
	}
	return doc
}

func TestRender(t *testing.T) {
	t.Run("test_empty_optional_fields_are_omitted", func(t *testing.T) {
		g := &tmlanguage.Grammar{
			ScopeName: "source.demo",
			UUID:      "u1",
			FileTypes: []string{},
		}

		doc := renderToMap(t, g, tmlanguage.FormatYAML)

		assert.NotContains(t, doc, "fileTypes", "empty fileTypes should not be emitted")
		assert.NotContains(t, doc, "name")
		assert.NotContains(t, doc, "$schema")
		assert.NotContains(t, doc, "foldingStartMarker")
		assert.NotContains(t, doc, "foldingStopMarker")
		assert.NotContains(t, doc, "patterns")
		assert.NotContains(t, doc, "repository")
	})

	t.Run("test_populated_optional_fields_are_emitted", func(t *testing.T) {
		g := &tmlanguage.Grammar{
			Name:      "Demo",
			ScopeName: "source.demo",
			UUID:      "u1",
			FileTypes: []string{"py"},
		}

		doc := renderToMap(t, g, tmlanguage.FormatYAML)

		assert.Equal(t, "Demo", doc["name"])
		assert.Equal(t, []any{"py"}, doc["fileTypes"])
	})

	t.Run("test_required_fields_survive_even_when_empty", func(t *testing.T) {
		g := &tmlanguage.Grammar{}

		doc := renderToMap(t, g, tmlanguage.FormatYAML)

		assert.Contains(t, doc, "scopeName", "scopeName is emitted even as an empty string")
		assert.Contains(t, doc, "uuid")
		assert.Contains(t, doc, "firstLineMatch")
		assert.Contains(t, doc, "injectionSelector")
		assert.Equal(t, "", doc["scopeName"])
	})

	t.Run("test_empty_captures_are_omitted", func(t *testing.T) {
		g := &tmlanguage.Grammar{
			ScopeName: "source.demo",
			UUID:      "u1",
			Patterns: []tmlanguage.Pattern{
				&tmlanguage.MatchPattern{Match: "x", Captures: map[string]tmlanguage.Capture{}},
			},
		}

		doc := renderToMap(t, g, tmlanguage.FormatYAML)

		patterns := doc["patterns"].([]any)
		first := patterns[0].(map[string]any)
		assert.NotContains(t, first, "captures", "empty captures mapping should be dropped")
		assert.Contains(t, first, "match", "match is emitted even when the captures are dropped")
	})

	t.Run("test_populated_captures_are_emitted", func(t *testing.T) {
		g := &tmlanguage.Grammar{
			ScopeName: "source.demo",
			UUID:      "u1",
			Patterns: []tmlanguage.Pattern{
				&tmlanguage.MatchPattern{
					Match:    `(\w+)`,
					Captures: map[string]tmlanguage.Capture{"1": {Name: "entity.name"}},
				},
			},
		}

		doc := renderToMap(t, g, tmlanguage.FormatYAML)

		first := doc["patterns"].([]any)[0].(map[string]any)
		captures := first["captures"].(map[string]any)
		group := captures["1"].(map[string]any)
		assert.Equal(t, "entity.name", group["name"])
	})

	t.Run("test_pattern_order_is_preserved", func(t *testing.T) {
		g := &tmlanguage.Grammar{
			ScopeName: "source.demo",
			UUID:      "u1",
			Patterns: []tmlanguage.Pattern{
				&tmlanguage.MatchPattern{Name: "a", Match: "a"},
				&tmlanguage.MatchPattern{Name: "b", Match: "b"},
				&tmlanguage.MatchPattern{Name: "c", Match: "c"},
			},
		}

		for i := 0; i < 3; i++ {
			doc := renderToMap(t, g, tmlanguage.FormatYAML)
			patterns := doc["patterns"].([]any)
			require.Len(t, patterns, 3)

			var names []string
			for _, p := range patterns {
				names = append(names, p.(map[string]any)["name"].(string))
			}
			assert.Equal(t, []string{"a", "b", "c"}, names, "patterns must render in authored order")
		}
	})

	t.Run("test_validation_failure_produces_no_output", func(t *testing.T) {
		g := &tmlanguage.Grammar{
			ScopeName: "source.demo",
			UUID:      "u1",
			Patterns: []tmlanguage.Pattern{
				&tmlanguage.IncludePattern{Include: "#missing"},
			},
		}

		out, err := tmlanguage.Render(context.Background(), g, tmlanguage.FormatYAML)
		require.Error(t, err)
		assert.Nil(t, out, "no partial document on validation failure")

		var refErr *tmlanguage.ReferenceError
		assert.True(t, errors.As(err, &refErr), "caller should be able to identify the dangling reference")
	})

	t.Run("test_external_marker_is_stripped_in_output", func(t *testing.T) {
		g := &tmlanguage.Grammar{
			ScopeName: "source.demo",
			UUID:      "u1",
			Patterns: []tmlanguage.Pattern{
				&tmlanguage.IncludePattern{Include: "!foo.bar"},
			},
		}

		doc := renderToMap(t, g, tmlanguage.FormatYAML)

		first := doc["patterns"].([]any)[0].(map[string]any)
		assert.Equal(t, "foo.bar", first["include"])
	})

	t.Run("test_json_output", func(t *testing.T) {
		g := &tmlanguage.Grammar{
			Name:      "Demo",
			ScopeName: "source.demo",
			UUID:      "u1",
			Patterns: []tmlanguage.Pattern{
				&tmlanguage.BeginEndPattern{
					Name:        "string.quoted.double.demo",
					Begin:       `"`,
					End:         `"`,
					ContentName: "meta.string-contents.demo",
				},
			},
		}

		doc := renderToMap(t, g, tmlanguage.FormatJSON)

		assert.Equal(t, "source.demo", doc["scopeName"])
		first := doc["patterns"].([]any)[0].(map[string]any)
		assert.Equal(t, `"`, first["begin"])
		assert.Equal(t, `"`, first["end"])
		assert.Equal(t, "meta.string-contents.demo", first["contentName"])
	})

	t.Run("test_unknown_format_is_rejected", func(t *testing.T) {
		g := &tmlanguage.Grammar{ScopeName: "source.demo", UUID: "u1"}

		_, err := tmlanguage.Render(context.Background(), g, tmlanguage.Format("toml"))
		require.Error(t, err, "only yaml and json are supported")
	})

	t.Run("test_end_to_end_example", func(t *testing.T) {
		g := &tmlanguage.Grammar{
			ScopeName: "source.demo",
			UUID:      "u1",
			Patterns: []tmlanguage.Pattern{
				&tmlanguage.IncludePattern{Include: "#main"},
			},
			Repository: map[string]tmlanguage.Pattern{
				"main": &tmlanguage.MatchPattern{Name: "keyword", Match: `\bif\b`},
			},
		}

		doc := renderToMap(t, g, tmlanguage.FormatYAML)

		assert.Equal(t, "source.demo", doc["scopeName"])
		assert.Equal(t, "u1", doc["uuid"])

		patterns := doc["patterns"].([]any)
		require.Len(t, patterns, 1)
		assert.Equal(t, map[string]any{"include": "#main"}, patterns[0])

		repository := doc["repository"].(map[string]any)
		main := repository["main"].(map[string]any)
		assert.Equal(t, "keyword", main["name"])
		assert.Equal(t, `\bif\b`, main["match"])

		assert.NotContains(t, doc, "fileTypes")
		assert.NotContains(t, doc, "name")
		assert.NotContains(t, doc, "$schema")
		assert.NotContains(t, doc, "foldingStartMarker")
		assert.NotContains(t, doc, "foldingStopMarker")
	})
}

func TestParseFormat(t *testing.T) {
	t.Run("test_known_formats", func(t *testing.T) {
		f, err := tmlanguage.ParseFormat("yaml")
		require.NoError(t, err)
		assert.Equal(t, tmlanguage.FormatYAML, f)

		f, err = tmlanguage.ParseFormat("json")
		require.NoError(t, err)
		assert.Equal(t, tmlanguage.FormatJSON, f)
	})

	t.Run("test_unknown_format", func(t *testing.T) {
		_, err := tmlanguage.ParseFormat("xml")
		require.Error(t, err)
	})
}
