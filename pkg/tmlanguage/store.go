package tmlanguage

import (
	"context"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// Store holds the grammars of a multi-grammar build, keyed by scope name. It
// lets callers check which external-grammar references ("!name" includes)
// resolve within the build before the grammars are rendered.
type Store struct {
	grammars map[string]*Grammar
}

// NewStore creates an empty grammar store.
func NewStore() *Store {
	return &Store{grammars: make(map[string]*Grammar)}
}

// Add registers a grammar under its scope name.
func (s *Store) Add(ctx context.Context, g *Grammar) error {
	if g.ScopeName == "" {
		return errors.New("grammar has no scope name")
	}
	if _, ok := s.grammars[g.ScopeName]; ok {
		return errors.Errorf("duplicate grammar scope name: %s", g.ScopeName)
	}

	zerolog.Ctx(ctx).Debug().Str("scope_name", g.ScopeName).Msg("adding grammar to store")
	s.grammars[g.ScopeName] = g
	return nil
}

// Get retrieves a grammar by scope name.
func (s *Store) Get(scopeName string) (*Grammar, error) {
	g, ok := s.grammars[scopeName]
	if !ok {
		return nil, errors.Errorf("grammar not found: %s", scopeName)
	}
	return g, nil
}

// ScopeNames returns the registered scope names in sorted order.
func (s *Store) ScopeNames() []string {
	names := make([]string, 0, len(s.grammars))
	for name := range s.grammars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// UnresolvedExternals returns the scope names of external grammars referenced
// by g ("!name" includes) that are not registered in the store, sorted and
// deduplicated. External references resolve at editor runtime, so a non-empty
// result is worth a warning but is not an error.
func (s *Store) UnresolvedExternals(g *Grammar) []string {
	seen := make(map[string]bool)
	walk(g, func(p Pattern, path string) {
		inc, ok := p.(*IncludePattern)
		if !ok {
			return
		}
		name, ok := strings.CutPrefix(inc.Include, "!")
		if !ok || name == "" {
			return
		}
		if _, err := s.Get(name); err != nil {
			seen[name] = true
		}
	})

	missing := make([]string, 0, len(seen))
	for name := range seen {
		missing = append(missing, name)
	}
	sort.Strings(missing)
	return missing
}
