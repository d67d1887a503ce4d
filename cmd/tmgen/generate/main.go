package generate

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/walteh/tmgen/pkg/authoring"
	"github.com/walteh/tmgen/pkg/tmlanguage"
	"gitlab.com/tozd/go/errors"
	"go.uber.org/multierr"
)

type Handler struct {
	format     string
	outDir     string
	assignUUID bool
	debug      bool
}

func NewGenerateCommand() *cobra.Command {
	me := &Handler{}

	cmd := &cobra.Command{
		Use:   "generate [glob...]",
		Short: "render grammar source files to tmLanguage documents",
		Args:  cobra.MinimumNArgs(1),
	}

	cmd.Flags().StringVar(&me.format, "format", "yaml", "output format (yaml or json)")
	cmd.Flags().StringVar(&me.outDir, "out-dir", "", "directory to write generated files to (default: next to each source)")
	cmd.Flags().BoolVar(&me.assignUUID, "assign-uuid", false, "assign a fresh uuid to grammars that have none")
	cmd.Flags().BoolVar(&me.debug, "debug", false, "enable debug logging")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return me.Run(cmd.Context(), afero.NewOsFs(), args)
	}

	return cmd
}

type buildEntry struct {
	source  string
	grammar *tmlanguage.Grammar
}

func (me *Handler) Run(ctx context.Context, fs afero.Fs, globs []string) error {
	level := zerolog.InfoLevel
	if me.debug {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
	ctx = logger.WithContext(ctx)

	format, err := tmlanguage.ParseFormat(me.format)
	if err != nil {
		return err
	}

	sources, err := expandGlobs(fs, globs)
	if err != nil {
		return err
	}
	if len(sources) == 0 {
		return errors.New("no grammar source files matched")
	}

	// Load everything before rendering anything so external references
	// resolve regardless of file order, and a broken grammar aborts the
	// build before any file is written.
	store := tmlanguage.NewStore()
	entries := make([]buildEntry, 0, len(sources))
	for _, source := range sources {
		data, err := afero.ReadFile(fs, source)
		if err != nil {
			return errors.Errorf("reading %s: %w", source, err)
		}

		g, err := authoring.Load(source, data)
		if err != nil {
			return errors.Errorf("loading %s: %w", source, err)
		}
		if me.assignUUID && g.UUID == "" {
			g.UUID = uuid.NewString()
		}

		if err := store.Add(ctx, g); err != nil {
			return errors.Errorf("registering %s: %w", source, err)
		}
		entries = append(entries, buildEntry{source: source, grammar: g})
	}

	for _, entry := range entries {
		for _, scope := range store.UnresolvedExternals(entry.grammar) {
			logger.Warn().
				Str("source", entry.source).
				Str("external", scope).
				Msg("external grammar reference not part of this build")
		}

		out, err := tmlanguage.Render(ctx, entry.grammar, format)
		if err != nil {
			return errors.Errorf("rendering %s: %w", entry.source, err)
		}

		target := me.targetPath(entry.source, format)
		if err := writeFile(fs, target, out); err != nil {
			return errors.Errorf("writing %s: %w", target, err)
		}
		logger.Info().Str("source", entry.source).Str("target", target).Msg("generated grammar")
	}

	return nil
}

func (me *Handler) targetPath(source string, format tmlanguage.Format) string {
	base := filepath.Base(source)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	name := base + ".tmLanguage." + string(format)

	if me.outDir != "" {
		return filepath.Join(me.outDir, name)
	}
	return filepath.Join(filepath.Dir(source), name)
}

func expandGlobs(fs afero.Fs, globs []string) ([]string, error) {
	var sources []string
	seen := make(map[string]bool)
	for _, glob := range globs {
		matches, err := doublestar.Glob(afero.NewIOFS(fs), glob)
		if err != nil {
			return nil, errors.Errorf("bad glob %q: %w", glob, err)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				sources = append(sources, m)
			}
		}
	}
	return sources, nil
}

func writeFile(fs afero.Fs, path string, data []byte) (err error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return errors.Errorf("creating output directory: %w", err)
		}
	}

	f, err := fs.Create(path)
	if err != nil {
		return errors.Errorf("creating output file: %w", err)
	}
	defer func() {
		err = multierr.Append(err, f.Close())
	}()

	if _, err := f.Write(data); err != nil {
		return errors.Errorf("writing output file: %w", err)
	}
	return nil
}
