// Package config provides application configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tagrs/movietagger/internal/validation"
)

// Config holds the application configuration.
type Config struct {
	App      AppConfig
	Logger   LoggerConfig
	Server   ServerConfig
	Library  LibraryConfig
	Jellyfin JellyfinConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string `env:"ENV" validate:"required,oneof=development staging production"`
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string `env:"LOG_LEVEL" validate:"required,oneof=debug info warn error"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Bind         string        `env:"BIND" validate:"required,hostname_port"`
	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" validate:"gt=0"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" validate:"gt=0"`
	IdleTimeout  time.Duration `env:"SERVER_IDLE_TIMEOUT" validate:"gt=0"`
	StaticDir    string        `env:"STATIC_DIR"`

	// AdminPasswordHash is a bcrypt hash. Empty disables basic auth.
	AdminPasswordHash string `env:"ADMIN_PASSWORD_HASH"`
	// MutationRate limits mutating requests per client IP per minute. Zero disables it.
	MutationRate int `env:"MUTATION_RATE_PER_MINUTE" validate:"gte=0"`
}

// LibraryConfig holds the two filesystem roots.
type LibraryConfig struct {
	MovieDir    string        `env:"MOVIE_DIR" validate:"required,dir"`
	TagDir      string        `env:"TAG_DIR" validate:"required,dir"`
	Watch       bool          `env:"WATCH"`
	WatchSettle time.Duration `env:"WATCH_SETTLE" validate:"gt=0"`
}

// JellyfinConfig holds the optional media server connection.
type JellyfinConfig struct {
	URL    string `env:"JELLYFIN_URL" validate:"omitempty,http_url"`
	APIKey string `env:"JELLYFIN_API_KEY" validate:"required_with=URL"`
}

// Enabled reports whether a Jellyfin server is configured.
func (j JellyfinConfig) Enabled() bool {
	return j.URL != ""
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig(args []string) (*Config, error) {
	fs := flag.NewFlagSet("movietagger", flag.ContinueOnError)

	env := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")

	// Server flags
	bind := fs.String("bind", "", "Listen address (default: 127.0.0.1:3000)")
	readTimeout := fs.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := fs.String("write-timeout", "", "HTTP write timeout (default: 15s)")
	idleTimeout := fs.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	staticDir := fs.String("static-dir", "", "Directory served under /static (default: ./static)")

	// Library flags
	movieDir := fs.String("movie-dir", "", "Directory holding one subdirectory per movie")
	tagDir := fs.String("tag-dir", "", "Directory holding one subdirectory per tag")
	watch := fs.String("watch", "", "Reload automatically when the roots change (default: false)")
	watchSettle := fs.String("watch-settle", "", "Quiet period before an automatic reload (default: 2s)")

	// Jellyfin flags
	jellyfinURL := fs.String("jellyfin-url", "", "Jellyfin server URL")
	jellyfinAPIKey := fs.String("jellyfin-api-key", "", "Jellyfin API key")

	envFile := fs.String("env-file", ".env", "Path to .env file")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: strings.ToLower(getConfigValue(*logLevel, "LOG_LEVEL", "info")),
		},
		Server: ServerConfig{
			Bind:              getConfigValue(*bind, "BIND", "127.0.0.1:3000"),
			StaticDir:         getConfigValue(*staticDir, "STATIC_DIR", "./static"),
			AdminPasswordHash: getConfigValue("", "ADMIN_PASSWORD_HASH", ""),
			MutationRate:      getIntConfigValue("", "MUTATION_RATE_PER_MINUTE", 120),
		},
		Library: LibraryConfig{
			MovieDir: getConfigValue(*movieDir, "MOVIE_DIR", ""),
			TagDir:   getConfigValue(*tagDir, "TAG_DIR", ""),
			Watch:    getBoolConfigValue(*watch, "WATCH", false),
		},
		Jellyfin: JellyfinConfig{
			URL:    strings.TrimRight(getConfigValue(*jellyfinURL, "JELLYFIN_URL", ""), "/"),
			APIKey: getConfigValue(*jellyfinAPIKey, "JELLYFIN_API_KEY", ""),
		},
	}

	durations := []struct {
		target *time.Duration
		flag   string
		envKey string
		def    string
	}{
		{&cfg.Server.ReadTimeout, *readTimeout, "SERVER_READ_TIMEOUT", "15s"},
		{&cfg.Server.WriteTimeout, *writeTimeout, "SERVER_WRITE_TIMEOUT", "15s"},
		{&cfg.Server.IdleTimeout, *idleTimeout, "SERVER_IDLE_TIMEOUT", "60s"},
		{&cfg.Library.WatchSettle, *watchSettle, "WATCH_SETTLE", "2s"},
	}
	for _, d := range durations {
		raw := getConfigValue(d.flag, d.envKey, d.def)
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", d.envKey, raw, err)
		}
		*d.target = parsed
	}

	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	return validation.New().Validate(c)
}

// expandPaths expands ~ and makes the library and static paths absolute.
func (c *Config) expandPaths() error {
	for _, p := range []struct {
		name   string
		target *string
	}{
		{"movie dir", &c.Library.MovieDir},
		{"tag dir", &c.Library.TagDir},
		{"static dir", &c.Server.StaticDir},
	} {
		expanded, err := ExpandPath(*p.target)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", p.name, err)
		}
		*p.target = expanded
	}
	return nil
}

// ExpandPath expands ~ and makes the path absolute. Empty stays empty.
func ExpandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}

	// Expand tilde.
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	// Make absolute if needed.
	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getBoolConfigValue returns a bool from flag, env var, or default.
// Accepts: "true", "1", "yes" (case-insensitive) as true; anything else is false.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	strValue = strings.ToLower(strValue)
	return strValue == "true" || strValue == "1" || strValue == "yes"
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	var result int
	if _, err := fmt.Sscanf(strValue, "%d", &result); err != nil {
		return defaultValue
	}
	return result
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}
		key = strings.TrimSpace(strings.TrimPrefix(key, "export "))
		value = strings.Trim(strings.TrimSpace(value), `"'`)

		// Only set if not already set (env vars take precedence over .env file).
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
