package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

const (
	xdgAppName = "todo"
	configFile = "config.json"
	tasksFile  = "tasks.csv"

	DefaultCalendar = "Tasks"

	EnvFile      = "TODO_FILE"
	EnvCalendar  = "TODO_CALENDAR"
	EnvConfigDir = "TODO_CONFIG_DIR"
)

type Config struct {
	File     string            `json:"file,omitempty"`
	Calendar string            `json:"calendar,omitempty"`
	Colors   map[string]string `json:"colors,omitempty"`
}

// LoadEnv reads a .env file from the working directory, if present.
// Variables already set in the environment win.
func LoadEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}

// Dir returns the directory holding config, tokens and the default task file.
func Dir() (string, error) {
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", xdgAppName), nil
}

func GetConfigPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFile), nil
}

// Load reads the config file and applies environment overrides.
func Load() (*Config, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	f, err := os.Open(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
	} else {
		defer f.Close()
		if err := json.NewDecoder(f).Decode(cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config: %w", err)
		}
	}

	if v := os.Getenv(EnvFile); v != "" {
		cfg.File = v
	}
	if v := os.Getenv(EnvCalendar); v != "" {
		cfg.Calendar = v
	}
	if cfg.Calendar == "" {
		cfg.Calendar = DefaultCalendar
	}
	if cfg.File == "" {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		cfg.File = filepath.Join(dir, tasksFile)
	}
	return cfg, nil
}

// Save merges cfg into the stored config file. Empty fields keep their stored value.
func Save(cfg *Config) error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}

	stored := &Config{}
	if b, err := os.ReadFile(path); err == nil {
		if err := json.Unmarshal(b, stored); err != nil {
			return fmt.Errorf("failed to decode config: %w", err)
		}
	}
	if cfg.File != "" {
		stored.File = cfg.File
	}
	if cfg.Calendar != "" {
		stored.Calendar = cfg.Calendar
	}
	if cfg.Colors != nil {
		stored.Colors = cfg.Colors
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to open config file for writing: %w", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	return encoder.Encode(stored)
}
