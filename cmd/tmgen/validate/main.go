package validate_cmd

import (
	"context"
	"os"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/walteh/tmgen/pkg/authoring"
	"github.com/walteh/tmgen/pkg/tmlanguage"
	"gitlab.com/tozd/go/errors"
	"go.uber.org/multierr"
)

type Handler struct {
	debug bool
}

func NewValidateCommand() *cobra.Command {
	me := &Handler{}

	cmd := &cobra.Command{
		Use:   "validate [glob...]",
		Short: "check grammar source files without writing anything",
		Args:  cobra.MinimumNArgs(1),
	}

	cmd.Flags().BoolVar(&me.debug, "debug", false, "enable debug logging")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return me.Run(cmd.Context(), afero.NewOsFs(), args)
	}

	return cmd
}

func (me *Handler) Run(ctx context.Context, fs afero.Fs, globs []string) error {
	level := zerolog.InfoLevel
	if me.debug {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
	ctx = logger.WithContext(ctx)

	var sources []string
	for _, glob := range globs {
		matches, err := doublestar.Glob(afero.NewIOFS(fs), glob)
		if err != nil {
			return errors.Errorf("bad glob %q: %w", glob, err)
		}
		sources = append(sources, matches...)
	}
	if len(sources) == 0 {
		return errors.New("no grammar source files matched")
	}

	var failures error
	for _, source := range sources {
		data, err := afero.ReadFile(fs, source)
		if err != nil {
			return errors.Errorf("reading %s: %w", source, err)
		}

		g, err := authoring.Load(source, data)
		if err != nil {
			failures = multierr.Append(failures, errors.Errorf("%s: %w", source, err))
			continue
		}
		if err := tmlanguage.Validate(g); err != nil {
			failures = multierr.Append(failures, errors.Errorf("%s: %w", source, err))
			continue
		}
		logger.Info().Str("source", source).Str("scope_name", g.ScopeName).Msg("grammar is valid")
	}

	return failures
}
