package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

type Config struct {
	User          UserConfig     `toml:"user"`
	Schedule      ScheduleConfig `toml:"schedule"`
	Notifications NotifyConfig   `toml:"notifications"`
	Reminders     ReminderConfig `toml:"reminders"`
	Log           LogConfig      `toml:"log"`
}

type UserConfig struct {
	ID int64 `toml:"id"`
}

type ScheduleConfig struct {
	WorkStart string `toml:"work_start"`
	WorkEnd   string `toml:"work_end"`
}

type NotifyConfig struct {
	Enabled bool `toml:"enabled"`
}

type ReminderConfig struct {
	PollSeconds int `toml:"poll_seconds"`
}

type LogConfig struct {
	Level string `toml:"level"` // debug, info, warn, error
	File  string `toml:"file"`  // empty means stderr
}

func DefaultConfig() Config {
	return Config{
		Schedule: ScheduleConfig{
			WorkStart: "09:00",
			WorkEnd:   "17:00",
		},
		Notifications: NotifyConfig{
			Enabled: true,
		},
		Reminders: ReminderConfig{
			PollSeconds: 60,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// ConfigDir honours PLANR_HOME, falling back to ~/.config/planr.
func ConfigDir() (string, error) {
	if dir := os.Getenv("PLANR_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, ".config", "planr"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

// LoadFile reads the config at path. A missing file yields the defaults.
func LoadFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnvOverrides(&cfg)
			return &cfg, nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PLANR_USER_ID"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.User.ID = id
		}
	}
	if v := os.Getenv("PLANR_WORK_START"); v != "" {
		cfg.Schedule.WorkStart = v
	}
	if v := os.Getenv("PLANR_WORK_END"); v != "" {
		cfg.Schedule.WorkEnd = v
	}
	if v := os.Getenv("PLANR_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}

// SlogLevel maps the configured level name; unknown names mean info.
func (c LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(c.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// SaveUserID persists the default user id to the config file using a
// read-modify-write approach to preserve other settings.
func SaveUserID(id int64) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}

	cfg := make(map[string]any)

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading config: %w", err)
	}
	if len(data) > 0 {
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return fmt.Errorf("parsing config: %w", err)
		}
	}

	user, ok := cfg["user"].(map[string]any)
	if !ok {
		user = make(map[string]any)
	}
	user["id"] = id
	cfg["user"] = user

	if err := EnsureConfigDir(); err != nil {
		return err
	}

	out, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, out, 0644)
}
