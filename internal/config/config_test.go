package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"ENV", "LOG_LEVEL", "BIND", "STATIC_DIR",
	"SERVER_READ_TIMEOUT", "SERVER_WRITE_TIMEOUT", "SERVER_IDLE_TIMEOUT",
	"ADMIN_PASSWORD_HASH", "MUTATION_RATE_PER_MINUTE",
	"MOVIE_DIR", "TAG_DIR", "WATCH", "WATCH_SETTLE",
	"JELLYFIN_URL", "JELLYFIN_API_KEY",
}

// clearEnv blanks every key LoadConfig reads so the host environment
// cannot leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configKeys {
		t.Setenv(key, "")
	}
}

type roots struct {
	movies, tags string
}

func newRoots(t *testing.T) roots {
	t.Helper()
	base := t.TempDir()
	r := roots{movies: filepath.Join(base, "movies"), tags: filepath.Join(base, "tags")}
	require.NoError(t, os.Mkdir(r.movies, 0o755))
	require.NoError(t, os.Mkdir(r.tags, 0o755))
	return r
}

func load(t *testing.T, args ...string) (*Config, error) {
	t.Helper()
	args = append([]string{"-env-file", filepath.Join(t.TempDir(), "missing.env")}, args...)
	return LoadConfig(args)
}

func validConfig(r roots) *Config {
	return &Config{
		App:    AppConfig{Environment: "development"},
		Logger: LoggerConfig{Level: "info"},
		Server: ServerConfig{
			Bind:         "127.0.0.1:3000",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Library: LibraryConfig{
			MovieDir:    r.movies,
			TagDir:      r.tags,
			WatchSettle: 2 * time.Second,
		},
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnv(t)
	r := newRoots(t)

	cfg, err := load(t, "-movie-dir", r.movies, "-tag-dir", r.tags)
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Environment)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "127.0.0.1:3000", cfg.Server.Bind)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 15*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, 60*time.Second, cfg.Server.IdleTimeout)
	assert.True(t, filepath.IsAbs(cfg.Server.StaticDir))
	assert.Equal(t, "static", filepath.Base(cfg.Server.StaticDir))
	assert.Empty(t, cfg.Server.AdminPasswordHash)
	assert.Equal(t, 120, cfg.Server.MutationRate)
	assert.Equal(t, r.movies, cfg.Library.MovieDir)
	assert.Equal(t, r.tags, cfg.Library.TagDir)
	assert.False(t, cfg.Library.Watch)
	assert.Equal(t, 2*time.Second, cfg.Library.WatchSettle)
	assert.False(t, cfg.Jellyfin.Enabled())
}

func TestLoadConfig_Precedence(t *testing.T) {
	clearEnv(t)
	r := newRoots(t)
	other := newRoots(t)

	t.Setenv("MOVIE_DIR", other.movies)
	t.Setenv("TAG_DIR", r.tags)
	t.Setenv("LOG_LEVEL", "WARN")
	t.Setenv("WATCH", "yes")
	t.Setenv("WATCH_SETTLE", "500ms")

	cfg, err := load(t, "-movie-dir", r.movies, "-log-level", "debug")
	require.NoError(t, err)

	assert.Equal(t, r.movies, cfg.Library.MovieDir, "flag wins over env")
	assert.Equal(t, r.tags, cfg.Library.TagDir, "env wins over default")
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.True(t, cfg.Library.Watch)
	assert.Equal(t, 500*time.Millisecond, cfg.Library.WatchSettle)
}

func TestLoadConfig_EnvFile(t *testing.T) {
	clearEnv(t)
	r := newRoots(t)

	envFile := filepath.Join(t.TempDir(), ".env")
	content := "# library\nMOVIE_DIR=" + r.movies + "\nTAG_DIR='" + r.tags + "'\nJELLYFIN_URL=http://jellyfin:8096/\nJELLYFIN_API_KEY=\"secret\"\n"
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o644))

	cfg, err := LoadConfig([]string{"-env-file", envFile})
	require.NoError(t, err)

	assert.Equal(t, r.movies, cfg.Library.MovieDir)
	assert.Equal(t, r.tags, cfg.Library.TagDir)
	assert.Equal(t, "http://jellyfin:8096", cfg.Jellyfin.URL)
	assert.Equal(t, "secret", cfg.Jellyfin.APIKey)
	assert.True(t, cfg.Jellyfin.Enabled())
}

func TestLoadConfig_MissingRoots(t *testing.T) {
	clearEnv(t)

	_, err := load(t)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MOVIE_DIR is required")
	assert.Contains(t, err.Error(), "TAG_DIR is required")
}

func TestLoadConfig_InvalidDuration(t *testing.T) {
	clearEnv(t)
	r := newRoots(t)

	_, err := load(t, "-movie-dir", r.movies, "-tag-dir", r.tags, "-read-timeout", "soon")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SERVER_READ_TIMEOUT")
}

func TestLoadConfig_UnknownFlag(t *testing.T) {
	clearEnv(t)

	_, err := load(t, "-audiobook-path", "/x")
	assert.Error(t, err)
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig(newRoots(t)).Validate())
}

func TestValidate_AllEnvironments(t *testing.T) {
	r := newRoots(t)
	tests := []struct {
		env   string
		valid bool
	}{
		{"development", true},
		{"staging", true},
		{"production", true},
		{"test", false},
		{"", false},
		{"DEVELOPMENT", false}, // case sensitive
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			cfg := validConfig(r)
			cfg.App.Environment = tt.env

			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidate_AllLogLevels(t *testing.T) {
	r := newRoots(t)
	tests := []struct {
		level string
		valid bool
	}{
		{"debug", true},
		{"info", true},
		{"warn", true},
		{"error", true},
		{"trace", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			cfg := validConfig(r)
			cfg.Logger.Level = tt.level

			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidate_Fields(t *testing.T) {
	r := newRoots(t)

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantMsg string
	}{
		{"missing movie dir", func(c *Config) { c.Library.MovieDir = filepath.Join(r.movies, "nope") }, "MOVIE_DIR"},
		{"tag dir is a file", func(c *Config) {
			file := filepath.Join(r.tags, "file")
			require.NoError(t, os.WriteFile(file, nil, 0o644))
			c.Library.TagDir = file
		}, "TAG_DIR"},
		{"bad bind", func(c *Config) { c.Server.Bind = "localhost" }, "BIND"},
		{"zero timeout", func(c *Config) { c.Server.IdleTimeout = 0 }, "SERVER_IDLE_TIMEOUT"},
		{"negative rate", func(c *Config) { c.Server.MutationRate = -1 }, "MUTATION_RATE_PER_MINUTE"},
		{"jellyfin url", func(c *Config) { c.Jellyfin.URL = "jellyfin"; c.Jellyfin.APIKey = "k" }, "JELLYFIN_URL"},
		{"jellyfin key", func(c *Config) { c.Jellyfin.URL = "http://jellyfin:8096" }, "JELLYFIN_API_KEY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(r)
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestValidate_SameRootAllowed(t *testing.T) {
	r := newRoots(t)
	cfg := validConfig(r)
	cfg.Library.TagDir = cfg.Library.MovieDir

	assert.NoError(t, cfg.Validate())
}

func TestExpandPath(t *testing.T) {
	homeDir, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := ExpandPath("~/movies")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(homeDir, "movies"), got)

	got, err = ExpandPath("/absolute/path/../movies")
	require.NoError(t, err)
	assert.Equal(t, "/absolute/movies", got)

	got, err = ExpandPath("relative/path")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(got))
	assert.Contains(t, got, "relative/path")

	got, err = ExpandPath("")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestGetConfigValue_Precedence(t *testing.T) {
	t.Setenv("TEST_ENV_KEY", "env-value")

	assert.Equal(t, "flag-value", getConfigValue("flag-value", "TEST_ENV_KEY", "default-value"))
	assert.Equal(t, "env-value", getConfigValue("", "TEST_ENV_KEY", "default-value"))
	assert.Equal(t, "default-value", getConfigValue("", "NONEXISTENT_KEY", "default-value"))
}

func TestGetBoolAndIntConfigValue(t *testing.T) {
	t.Setenv("TEST_BOOL", "TRUE")
	t.Setenv("TEST_INT", "abc")

	assert.True(t, getBoolConfigValue("", "TEST_BOOL", false))
	assert.False(t, getBoolConfigValue("no", "TEST_BOOL", true))
	assert.True(t, getBoolConfigValue("", "UNSET_BOOL", true))
	assert.Equal(t, 7, getIntConfigValue("", "TEST_INT", 7), "unparsable falls back to default")
	assert.Equal(t, 30, getIntConfigValue("30", "TEST_INT", 7))
}

func TestLoadEnvFile_ValidFile(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	content := `# Test env file
MT_LEVEL=debug
export MT_EXPORTED=yes
# Comment line
MT_QUOTED="some value"
MT_SINGLE='another value'
`
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o644))

	keys := []string{"MT_LEVEL", "MT_EXPORTED", "MT_QUOTED", "MT_SINGLE"}
	for _, key := range keys {
		t.Setenv(key, "")
	}

	require.NoError(t, loadEnvFile(envFile))

	assert.Equal(t, "debug", os.Getenv("MT_LEVEL"))
	assert.Equal(t, "yes", os.Getenv("MT_EXPORTED"))
	assert.Equal(t, "some value", os.Getenv("MT_QUOTED"))
	assert.Equal(t, "another value", os.Getenv("MT_SINGLE"))
}

func TestLoadEnvFile_InvalidFormat(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	content := `VALID_KEY=valid_value
INVALID LINE WITHOUT EQUALS
`
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o644))
	t.Setenv("VALID_KEY", "")

	err := loadEnvFile(envFile)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format at line 2")
}

func TestLoadEnvFile_NonExistentFile(t *testing.T) {
	assert.Error(t, loadEnvFile("/nonexistent/file/.env"))
}

func TestLoadEnvFile_ExistingEnvVarsNotOverwritten(t *testing.T) {
	t.Setenv("TEST_VAR", "original-value")

	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte(`TEST_VAR=new-value`), 0o644))

	require.NoError(t, loadEnvFile(envFile))
	assert.Equal(t, "original-value", os.Getenv("TEST_VAR"))
}
