// Package config loads the optional .slashcmd.yaml project file.
//
// Every field has a default, so a missing file is not an error. Relative
// paths in the file are resolved against the directory holding it.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// FileName is the config file looked up in the working directory.
	FileName = ".slashcmd.yaml"

	defaultCatalogDir = "commands"
	defaultHistoryDB  = ".slashcmd-history.db"
	defaultSession    = "default"
	defaultDebounce   = 200 * time.Millisecond
)

// fileConfig models .slashcmd.yaml.
type fileConfig struct {
	CatalogDir        string   `yaml:"catalog_dir"`
	HistoryDB         string   `yaml:"history_db"`
	Session           string   `yaml:"session"`
	Debounce          string   `yaml:"debounce"`
	EnvAllowlistExtra []string `yaml:"env_allowlist_extra"`
}

// Config holds the resolved settings.
type Config struct {
	// Path is the file the settings came from, empty when none was found.
	Path string

	CatalogDir        string
	HistoryDB         string
	Session           string
	Debounce          time.Duration
	EnvAllowlistExtra []string
}

// Default returns the settings used when no file is present, with paths
// resolved against baseDir.
func Default(baseDir string) Config {
	return Config{
		CatalogDir: resolvePath(baseDir, defaultCatalogDir),
		HistoryDB:  resolvePath(baseDir, defaultHistoryDB),
		Session:    defaultSession,
		Debounce:   defaultDebounce,
	}
}

// Load reads explicit when it is set, otherwise baseDir/.slashcmd.yaml if it
// exists. An explicit path that does not exist is an error.
func Load(baseDir, explicit string) (Config, error) {
	path := explicit
	if path == "" {
		path = filepath.Join(baseDir, FileName)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if explicit == "" && errors.Is(err, fs.ErrNotExist) {
			return Default(baseDir), nil
		}
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg, err := parse(data, filepath.Dir(path))
	if err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.Path = path
	return cfg, nil
}

func parse(data []byte, base string) (Config, error) {
	var parsed fileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&parsed); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, err
	}

	cfg := Default(base)
	if v := strings.TrimSpace(parsed.CatalogDir); v != "" {
		cfg.CatalogDir = resolvePath(base, v)
	}
	if v := strings.TrimSpace(parsed.HistoryDB); v != "" {
		cfg.HistoryDB = resolvePath(base, v)
	}
	if v := strings.TrimSpace(parsed.Session); v != "" {
		cfg.Session = v
	}
	if v := strings.TrimSpace(parsed.Debounce); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("debounce: %w", err)
		}
		if d <= 0 {
			return Config{}, fmt.Errorf("debounce must be positive, got %s", v)
		}
		cfg.Debounce = d
	}
	for _, name := range parsed.EnvAllowlistExtra {
		if name = strings.TrimSpace(name); name != "" {
			cfg.EnvAllowlistExtra = append(cfg.EnvAllowlistExtra, name)
		}
	}
	return cfg, nil
}

func resolvePath(base, candidate string) string {
	trimmed := strings.TrimSpace(candidate)
	if trimmed == "" {
		return ""
	}
	if filepath.IsAbs(trimmed) {
		return filepath.Clean(trimmed)
	}
	return filepath.Clean(filepath.Join(base, trimmed))
}
