package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

const (
	configDir  = ".repolens"
	configFile = "config.json"
	historyDB  = "history.db"
)

// Loader manages reading and writing the config file.
type Loader struct {
	mu       sync.Mutex
	filePath string
}

// NewLoader creates a loader for path. An empty path means
// ~/.repolens/config.json. Files ending in .yaml or .yml are read and
// written as YAML, everything else as JSON.
func NewLoader(path string) (*Loader, error) {
	if path == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(dir, configFile)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, err
	}
	return &Loader{filePath: path}, nil
}

// DefaultDir returns ~/.repolens.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, configDir), nil
}

// Load reads the config from disk and applies environment overrides.
// If the file doesn't exist, defaults are used.
func (l *Loader) Load() (*Config, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	cfg := Defaults()

	data, err := os.ReadFile(l.filePath)
	switch {
	case err == nil:
		if err := l.unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", l.filePath, err)
		}
	case os.IsNotExist(err):
	default:
		return nil, err
	}

	ApplyEnv(cfg)
	if cfg.History.DBPath == "" {
		cfg.History.DBPath = filepath.Join(filepath.Dir(l.filePath), historyDB)
	}

	return cfg, nil
}

// Save writes cfg to disk.
func (l *Loader) Save(cfg *Config) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	data, err := l.marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(l.filePath, data, 0600)
}

// Update rewrites the config file through fn. fn sees only what is on
// disk (plus defaults), never environment overrides, so secrets taken
// from the environment are not persisted.
func (l *Loader) Update(fn func(*Config)) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	cfg := Defaults()
	data, err := os.ReadFile(l.filePath)
	switch {
	case err == nil:
		if err := l.unmarshal(data, cfg); err != nil {
			return fmt.Errorf("parse %s: %w", l.filePath, err)
		}
	case os.IsNotExist(err):
	default:
		return err
	}

	fn(cfg)

	out, err := l.marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(l.filePath, out, 0600)
}

// FilePath returns the config file path.
func (l *Loader) FilePath() string {
	return l.filePath
}

func (l *Loader) isYAML() bool {
	ext := strings.ToLower(filepath.Ext(l.filePath))
	return ext == ".yaml" || ext == ".yml"
}

func (l *Loader) unmarshal(data []byte, cfg *Config) error {
	if l.isYAML() {
		return yaml.Unmarshal(data, cfg)
	}
	return json.Unmarshal(data, cfg)
}

func (l *Loader) marshal(cfg *Config) ([]byte, error) {
	if l.isYAML() {
		return yaml.Marshal(cfg)
	}
	return json.MarshalIndent(cfg, "", "  ")
}
