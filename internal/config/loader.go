package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Loader locates and reads the configuration file.
type Loader struct {
	Version      string // "dev" enables the working directory rc file
	OverridePath string // from -config
}

// NewLoader creates a new Loader.
func NewLoader(version, overridePath string) *Loader {
	return &Loader{
		Version:      version,
		OverridePath: overridePath,
	}
}

// Load reads the first configuration file found. Defaults are returned when
// there is none.
func (l *Loader) Load() (*Config, error) {
	path, err := l.ConfigPath()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return New(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	cfg, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// ConfigPath returns the file Load would read, or "" when none exists. An
// override path that does not exist is an error.
func (l *Loader) ConfigPath() (string, error) {
	if l.OverridePath != "" {
		if _, err := os.Stat(l.OverridePath); err != nil {
			return "", fmt.Errorf("config file: %w", err)
		}
		return l.OverridePath, nil
	}

	if l.Version == "dev" {
		if wd, err := os.Getwd(); err == nil {
			local := filepath.Join(wd, ".pixeleditrc")
			if exists(local) {
				return local, nil
			}
		}
	}

	if p := l.UserPath(); p != "" && exists(p) {
		return p, nil
	}
	return "", nil
}

// UserPath is where "config save" writes.
func (l *Loader) UserPath() string {
	if l.OverridePath != "" {
		return l.OverridePath
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "pixeledit", "config.rc")
}

// Save writes cfg to UserPath, creating its directory.
func (l *Loader) Save(cfg *Config) (string, error) {
	path := l.UserPath()
	if path == "" {
		return "", errors.New("no user configuration directory")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(cfg.String()), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func exists(path string) bool {
	st, err := os.Stat(path)
	return err == nil && !st.IsDir()
}
