package validate_cmd

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRun(t *testing.T) {
	t.Run("test_valid_grammar", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		src := []byte("scopeName: source.demo\nuuid: u1\npatterns:\n  - match: x\n")
		require.NoError(t, afero.WriteFile(fs, "demo.yaml", src, 0o644))

		me := &Handler{}
		require.NoError(t, me.Run(context.Background(), fs, []string{"*.yaml"}))
	})

	t.Run("test_dangling_reference_is_reported", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		src := []byte("scopeName: source.demo\npatterns:\n  - include: \"#missing\"\n")
		require.NoError(t, afero.WriteFile(fs, "demo.yaml", src, 0o644))

		me := &Handler{}
		err := me.Run(context.Background(), fs, []string{"*.yaml"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "#missing")
	})

	t.Run("test_all_failures_are_collected", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, "a.yaml", []byte("scopeName: source.a\npatterns:\n  - include: \"#one\"\n"), 0o644))
		require.NoError(t, afero.WriteFile(fs, "b.yaml", []byte("scopeName: source.b\npatterns:\n  - include: \"#two\"\n"), 0o644))

		me := &Handler{}
		err := me.Run(context.Background(), fs, []string{"*.yaml"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "a.yaml")
		assert.Contains(t, err.Error(), "b.yaml")
	})

	t.Run("test_no_matches", func(t *testing.T) {
		fs := afero.NewMemMapFs()

		me := &Handler{}
		require.Error(t, me.Run(context.Background(), fs, []string{"*.yaml"}))
	})
}
