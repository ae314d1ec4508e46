// Package config loads pagemark configuration from a YAML file, a .env file
// and PAGEMARK_* environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/tsawler/pagemark/extract"
	"github.com/tsawler/pagemark/layout"
	"github.com/tsawler/pagemark/logging"
	"github.com/tsawler/pagemark/markdown"
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "PAGEMARK_"

// Config holds all configuration
type Config struct {
	Extraction extract.Config `yaml:"extraction"`
	Layout     layout.Config  `yaml:"layout"`
	Render     RenderConfig   `yaml:"render"`
	Log        logging.Config `yaml:"log"`
	Server     ServerConfig   `yaml:"server"`
}

// RenderConfig holds output settings
type RenderConfig struct {
	Markdown    markdown.Options `yaml:",inline"`
	FrontMatter bool             `yaml:"front_matter"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Addr             string        `yaml:"addr"`
	MaxUploadBytes   int64         `yaml:"max_upload_bytes"`
	ReadTimeout      time.Duration `yaml:"read_timeout"`
	WriteTimeout     time.Duration `yaml:"write_timeout"`
	GracefulShutdown time.Duration `yaml:"graceful_shutdown"`
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Extraction: extract.DefaultConfig(),
		Layout:     layout.DefaultConfig(),
		Render:     RenderConfig{Markdown: markdown.DefaultOptions()},
		Log:        logging.DefaultConfig(),
		Server: ServerConfig{
			Addr:             ":8080",
			MaxUploadBytes:   64 << 20,
			ReadTimeout:      60 * time.Second,
			WriteTimeout:     120 * time.Second,
			GracefulShutdown: 10 * time.Second,
		},
	}
}

// Load builds the configuration: defaults, then the YAML file at path (if
// any), then env files, then PAGEMARK_* overrides. Without envFiles a .env in
// the working directory is loaded when present. Variables already set in the
// environment win over env files.
func Load(path string, envFiles ...string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if len(envFiles) == 0 {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load .env: %w", err)
		}
	} else if err := godotenv.Load(envFiles...); err != nil {
		return nil, fmt.Errorf("load env files: %w", err)
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration for errors
func (c *Config) Validate() error {
	if c.Extraction.PageWorkers < 0 || c.Extraction.FontWorkers < 0 {
		return fmt.Errorf("worker counts must not be negative")
	}
	if c.Extraction.MaxPages < 0 {
		return fmt.Errorf("max_pages must not be negative: %d", c.Extraction.MaxPages)
	}

	l := c.Layout
	for name, v := range map[string]float64{
		"baseline_ratio":      l.BaselineRatio,
		"space_gap_ratio":     l.SpaceGapRatio,
		"position_tolerance":  l.PositionTolerance,
		"heading_min_ratio":   l.HeadingMinRatio,
		"paragraph_gap_ratio": l.ParagraphGapRatio,
	} {
		if v <= 0 {
			return fmt.Errorf("layout %s must be positive: %g", name, v)
		}
	}
	if l.MinPageFraction <= 0 || l.MinPageFraction > 1 {
		return fmt.Errorf("layout min_page_fraction must be in (0, 1]: %g", l.MinPageFraction)
	}
	if l.MinPages < 1 {
		return fmt.Errorf("layout min_pages must be at least 1: %d", l.MinPages)
	}

	if !logging.ValidLevel(c.Log.Level) {
		return fmt.Errorf("invalid log level: %s", c.Log.Level)
	}
	if f := strings.ToLower(c.Log.Format); f != "json" && f != "console" {
		return fmt.Errorf("invalid log format: %s", c.Log.Format)
	}

	if c.Server.Addr == "" {
		return fmt.Errorf("server addr is required")
	}
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("server max_upload_bytes must be positive")
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides to cfg
func applyEnvOverrides(cfg *Config) error {
	ints := []struct {
		key string
		dst *int
	}{
		{"PAGE_WORKERS", &cfg.Extraction.PageWorkers},
		{"FONT_WORKERS", &cfg.Extraction.FontWorkers},
		{"MAX_PAGES", &cfg.Extraction.MaxPages},
	}
	for _, o := range ints {
		if v, ok := lookup(o.key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s%s: %w", EnvPrefix, o.key, err)
			}
			*o.dst = n
		}
	}

	bools := []struct {
		key string
		dst *bool
	}{
		{"KEEP_BOILERPLATE", &cfg.Layout.KeepBoilerplate},
		{"JOIN_PARAGRAPHS", &cfg.Render.Markdown.JoinParagraphLines},
		{"EMPHASIS", &cfg.Render.Markdown.Emphasis},
		{"FRONT_MATTER", &cfg.Render.FrontMatter},
	}
	for _, o := range bools {
		if v, ok := lookup(o.key); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("%s%s: %w", EnvPrefix, o.key, err)
			}
			*o.dst = b
		}
	}

	if v, ok := lookup("TOC_STYLE"); ok {
		style, err := markdown.ParseTOCStyle(v)
		if err != nil {
			return fmt.Errorf("%sTOC_STYLE: %w", EnvPrefix, err)
		}
		cfg.Render.Markdown.TOCStyle = style
	}
	if v, ok := lookup("FONT_REF_PATTERN"); ok {
		cfg.Extraction.FontRefPattern = v
	}
	if v, ok := lookup("LOG_LEVEL"); ok {
		cfg.Log.Level = v
	}
	if v, ok := lookup("LOG_FORMAT"); ok {
		cfg.Log.Format = v
	}
	if v, ok := lookup("SERVER_ADDR"); ok {
		cfg.Server.Addr = v
	}
	if v, ok := lookup("MAX_UPLOAD_BYTES"); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%sMAX_UPLOAD_BYTES: %w", EnvPrefix, err)
		}
		cfg.Server.MaxUploadBytes = n
	}
	return nil
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(EnvPrefix + key)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return strings.TrimSpace(v), true
}
