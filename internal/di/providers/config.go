// Package providers contains dependency injection providers for the movie tagger server.
package providers

import (
	"os"

	"github.com/samber/do/v2"

	"github.com/tagrs/movietagger/internal/config"
	"github.com/tagrs/movietagger/internal/logger"
)

// ProvideConfig provides the application configuration.
func ProvideConfig(i do.Injector) (*config.Config, error) {
	return config.LoadConfig(os.Args[1:])
}

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	level, ok := logger.ParseLevel(cfg.Logger.Level)
	log := logger.New(logger.Config{
		Level:       level,
		AddSource:   cfg.App.Environment == "development",
		Environment: cfg.App.Environment,
	})
	if !ok {
		log.Warn("Unknown log level, using info", "log_level", cfg.Logger.Level)
	}

	log.Info("Starting movie tagger",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"movie_dir", cfg.Library.MovieDir,
		"tag_dir", cfg.Library.TagDir,
		"jellyfin", cfg.Jellyfin.Enabled(),
	)

	return log, nil
}
