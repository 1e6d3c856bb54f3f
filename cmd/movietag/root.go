package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/tagrs/movietagger/internal/collection"
	"github.com/tagrs/movietagger/internal/config"
	"github.com/tagrs/movietagger/internal/logger"
	"github.com/tagrs/movietagger/internal/validation"
)

// rootsConfig names the two directories every command operates on.
type rootsConfig struct {
	MovieDir string `env:"MOVIE_DIR" validate:"required,dir"`
	TagDir   string `env:"TAG_DIR" validate:"required,dir"`
}

// commandContext carries persistent flag values and loads the collection on
// first use.
type commandContext struct {
	roots    rootsConfig
	jsonOut  bool
	verbose  bool
	loaded   *collection.Collection
	validate *validation.Validator
}

func (c *commandContext) newLogger(cmd *cobra.Command) *logger.Logger {
	level := slog.LevelWarn
	if c.verbose {
		level = slog.LevelDebug
	}
	return logger.New(logger.Config{
		Writer: cmd.ErrOrStderr(),
		Format: logger.FormatPretty,
		Level:  level,
	})
}

func (c *commandContext) loadCollection(cmd *cobra.Command) (*collection.Collection, error) {
	if c.loaded != nil {
		return c.loaded, nil
	}
	if err := c.validate.Validate(c.roots); err != nil {
		return nil, err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	coll, err := collection.New(ctx, c.roots.MovieDir, c.roots.TagDir,
		collection.WithLogger(c.newLogger(cmd).Logger))
	if err != nil {
		return nil, err
	}
	c.loaded = coll
	return coll, nil
}

func newRootCommand() *cobra.Command {
	ctx := &commandContext{validate: validation.New()}

	rootCmd := &cobra.Command{
		Use:           "movietag",
		Short:         "Inspect and edit movie tags on disk",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if ctx.roots.MovieDir, err = config.ExpandPath(ctx.roots.MovieDir); err != nil {
				return err
			}
			ctx.roots.TagDir, err = config.ExpandPath(ctx.roots.TagDir)
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&ctx.roots.MovieDir, "movie-dir", os.Getenv("MOVIE_DIR"), "Directory holding one subdirectory per movie")
	flags.StringVar(&ctx.roots.TagDir, "tag-dir", os.Getenv("TAG_DIR"), "Directory holding one subdirectory per tag")
	flags.BoolVar(&ctx.jsonOut, "json", false, "Print JSON instead of a table")
	flags.BoolVarP(&ctx.verbose, "verbose", "v", false, "Log scan details to stderr")

	rootCmd.AddCommand(newTagsCommand(ctx))
	rootCmd.AddCommand(newMoviesCommand(ctx))
	rootCmd.AddCommand(newToggleCommand(ctx))
	rootCmd.AddCommand(newIDCommand())

	return rootCmd
}
