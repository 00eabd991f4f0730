package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config captures Tuner's settings.
type Config struct {
	APIBind       string
	LogDir        string
	StationsFile  string
	PollInterval  time.Duration
	Notifications bool
}

const (
	defaultConfigPath   = "~/.config/tuner/config.toml"
	defaultLogDir       = "~/.local/share/tuner/logs"
	defaultStationsFile = "~/.config/tuner/stations.toml"
	defaultAPIBind      = "127.0.0.1:7491"
	defaultPollInterval = 2 * time.Second
)

// Load locates and parses the config, falling back to defaults when missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		APIBind:       defaultAPIBind,
		LogDir:        mustExpand(defaultLogDir),
		StationsFile:  mustExpand(defaultStationsFile),
		PollInterval:  defaultPollInterval,
		Notifications: true,
	}

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		APIBind       string `toml:"api_bind"`
		LogDir        string `toml:"log_dir"`
		StationsFile  string `toml:"stations_file"`
		PollSeconds   int    `toml:"poll_seconds"`
		Notifications *bool  `toml:"notifications"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if bind := strings.TrimSpace(raw.APIBind); bind != "" {
		cfg.APIBind = bind
	}
	if dir := strings.TrimSpace(raw.LogDir); dir != "" {
		cfg.LogDir = mustExpand(dir)
	}
	if stations := strings.TrimSpace(raw.StationsFile); stations != "" {
		cfg.StationsFile = mustExpand(stations)
	}
	if raw.PollSeconds > 0 {
		cfg.PollInterval = time.Duration(raw.PollSeconds) * time.Second
	}
	if raw.Notifications != nil {
		cfg.Notifications = *raw.Notifications
	}

	return cfg, nil
}

// PlayerLogPath returns the log file written by the playback process.
func (c Config) PlayerLogPath() string {
	return c.logFile("player.log")
}

// LogPath returns Tuner's own log file.
func (c Config) LogPath() string {
	return c.logFile("tuner.log")
}

func (c Config) logFile(name string) string {
	if strings.TrimSpace(c.LogDir) == "" {
		return mustExpand(defaultLogDir + "/" + name)
	}
	return filepath.Join(c.LogDir, name)
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

// ExpandPath resolves a leading ~ and returns an absolute path.
func ExpandPath(path string) (string, error) {
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
