package config

import (
	"fmt"
	"log/slog"
	"strings"

	gconfig "github.com/golobby/config/v3"
	"github.com/golobby/config/v3/pkg/feeder"
)

type Config struct {
	Admin    AdminConfig
	Dronemap DronemapConfig
	Media    MediaConfig
	Pushover PushoverConfig
	Session  SessionConfig
}

type AdminConfig struct {
	Username     string `env:"ADMIN_USERNAME"`
	Password     string `env:"ADMIN_PASSWORD"`
	PasswordHash string `env:"ADMIN_PASSWORD_HASH"`
}

type DronemapConfig struct {
	Addr                  string `env:"ADDR"`
	AllowedOrigins        string `env:"ALLOWED_ORIGINS"`
	BackgroundJobsEnabled bool   `env:"BACKGROUND_JOBS_ENABLED"`
	DataFile              string `env:"DATA_FILE"`
	DbPath                string `env:"DB_PATH"`
	LogLevel              string `env:"LOG_LEVEL"`
	UploadDir             string `env:"UPLOAD_DIR"`
}

type MediaConfig struct {
	ExiftoolEnabled bool   `env:"EXIFTOOL_ENABLED"`
	FFmpegPath      string `env:"FFMPEG_PATH"`
}

type PushoverConfig struct {
	Recipient string `env:"PUSHOVER_RECIPIENT"`
	Token     string `env:"PUSHOVER_TOKEN"`
}

type SessionConfig struct {
	Secret   string `env:"SESSION_SECRET"`
	TTLHours int    `env:"SESSION_TTL_HOURS"`
}

// Default returns a Config with the values used when nothing is set in the environment
func Default() Config {
	return Config{
		Admin: AdminConfig{
			Username: "farouk",
		},
		Dronemap: DronemapConfig{
			Addr:                  ":8080",
			AllowedOrigins:        "http://localhost:8080",
			BackgroundJobsEnabled: true,
			DataFile:              "media_data.json",
			DbPath:                "dronemap.db",
			LogLevel:              "info",
			UploadDir:             "uploads",
		},
		Media: MediaConfig{
			ExiftoolEnabled: true,
			FFmpegPath:      "ffmpeg",
		},
		Session: SessionConfig{
			TTLHours: 168,
		},
	}
}

// Load starts from the defaults and overlays anything found in the environment
func Load() (Config, error) {
	cfg := Default()
	c := gconfig.New().AddFeeder(feeder.Env{}).AddStruct(&cfg)
	if err := c.Feed(); err != nil {
		return cfg, fmt.Errorf("failed to load config: %w", err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	d := Default()
	if c.Admin.Username == "" {
		c.Admin.Username = d.Admin.Username
	}
	if c.Dronemap.Addr == "" {
		c.Dronemap.Addr = d.Dronemap.Addr
	}
	if c.Dronemap.DataFile == "" {
		c.Dronemap.DataFile = d.Dronemap.DataFile
	}
	if c.Dronemap.DbPath == "" {
		c.Dronemap.DbPath = d.Dronemap.DbPath
	}
	if c.Dronemap.UploadDir == "" {
		c.Dronemap.UploadDir = d.Dronemap.UploadDir
	}
	if c.Media.FFmpegPath == "" {
		c.Media.FFmpegPath = d.Media.FFmpegPath
	}
	if c.Session.TTLHours <= 0 {
		c.Session.TTLHours = d.Session.TTLHours
	}
}

// Origins splits the comma separated ALLOWED_ORIGINS value
func (c *Config) Origins() []string {
	origins := []string{}
	for _, o := range strings.Split(c.Dronemap.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func (c *Config) GetLogLevel() slog.Leveler {
	logLevel := strings.ToLower(c.Dronemap.LogLevel)
	if logLevel == "error" {
		return slog.LevelError
	}
	if logLevel == "warning" {
		return slog.LevelWarn
	}
	if logLevel == "info" {
		return slog.LevelInfo
	}
	if logLevel == "debug" {
		return slog.LevelDebug
	}
	// default to info if unknown
	slog.With(slog.String("log_level", logLevel)).Info("Received invalid log level. Defaulting to INFO.")
	return slog.LevelInfo
}
