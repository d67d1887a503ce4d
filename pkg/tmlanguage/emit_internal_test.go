package tmlanguage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"
)

// bogusPattern satisfies the Pattern interface without being one of the
// variants, to exercise the shape guard.
type bogusPattern struct{}

func (bogusPattern) pattern() {}

func TestOmissionRules(t *testing.T) {
	t.Run("test_string_rule", func(t *testing.T) {
		assert.True(t, omitString(""))
		assert.False(t, omitString("x"))
	})

	t.Run("test_captures_rule", func(t *testing.T) {
		assert.True(t, omitCaptures(nil))
		assert.True(t, omitCaptures(map[string]Capture{}))
		assert.False(t, omitCaptures(map[string]Capture{"1": {Name: "x"}}))
	})

	t.Run("test_rule_instances_are_never_empty_in_practice", func(t *testing.T) {
		// match and begin/end rules always carry their required fields,
		// so the whole-instance check stays quiet for them
		r, err := lowerPattern(&MatchPattern{})
		require.NoError(t, err)
		assert.False(t, omitRule(r), "a match rule always emits its match field")

		r, err = lowerPattern(&BeginEndPattern{})
		require.NoError(t, err)
		assert.False(t, omitRule(r), "a begin/end rule always emits begin and end")

		r, err = lowerPattern(&IncludePattern{})
		require.NoError(t, err)
		assert.True(t, omitRule(r), "only a degenerate empty include lowers to an empty rule")
	})

	t.Run("test_empty_repository_value_is_dropped", func(t *testing.T) {
		g := &Grammar{
			ScopeName: "source.demo",
			UUID:      "u1",
			Repository: map[string]Pattern{
				"degenerate": &IncludePattern{},
				"real":       &MatchPattern{Match: "x"},
			},
		}

		doc, err := lowerGrammar(g)
		require.NoError(t, err)
		assert.NotContains(t, doc.Repository, "degenerate")
		assert.Contains(t, doc.Repository, "real")
	})
}

func TestShapeGuard(t *testing.T) {
	t.Run("test_non_variant_value_fails_validation", func(t *testing.T) {
		g := &Grammar{
			ScopeName: "source.demo",
			UUID:      "u1",
			Patterns:  []Pattern{bogusPattern{}},
		}

		err := Validate(g)
		require.Error(t, err)

		var shapeErr *ShapeError
		require.True(t, errors.As(err, &shapeErr))
		assert.Equal(t, "patterns[0]", shapeErr.Path)
	})

	t.Run("test_non_variant_value_fails_lowering", func(t *testing.T) {
		_, err := lowerPattern(bogusPattern{})
		require.Error(t, err)

		var shapeErr *ShapeError
		require.True(t, errors.As(err, &shapeErr))
	})
}
