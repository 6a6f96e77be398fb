package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Project struct {
		Snapshot string `yaml:"snapshot"`
	} `yaml:"project"`
	Output struct {
		Dir    string `yaml:"dir"`
		Luis   bool   `yaml:"luis"`
		Report string `yaml:"report"`
	} `yaml:"output"`
	Compile struct {
		Delimiter     string `yaml:"delimiter"`
		MinUtterances int    `yaml:"min_utterances"`
		Culture       string `yaml:"culture"`
	} `yaml:"compile"`
	History struct {
		DB string `yaml:"db"`
	} `yaml:"history"`
	Log struct {
		Mode string `yaml:"mode"`
	} `yaml:"log"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	var cfg Config
	cfg.Project.Snapshot = "project.json"
	cfg.Output.Dir = "output"
	cfg.Compile.Delimiter = "{"
	cfg.Compile.MinUtterances = 10
	cfg.Compile.Culture = "en-us"
	cfg.History.DB = "lgexport.db"
	cfg.Log.Mode = "dev"
	return &cfg
}

// LoadConfig layers path over the defaults and applies LGEXPORT_* environment
// overrides. A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	// 1. Load .env if exists
	_ = godotenv.Load()

	cfg := Default()

	// 2. Load YAML config
	file, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(file, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	// 3. Override with Environment Variables if present
	if v := os.Getenv("LGEXPORT_SNAPSHOT"); v != "" {
		cfg.Project.Snapshot = v
	}
	if v := os.Getenv("LGEXPORT_OUTPUT_DIR"); v != "" {
		cfg.Output.Dir = v
	}
	if v, ok := os.LookupEnv("LGEXPORT_HISTORY_DB"); ok {
		cfg.History.DB = v
	}
	if v := os.Getenv("LGEXPORT_LOG_MODE"); v != "" {
		cfg.Log.Mode = v
	}
	if v := os.Getenv("LGEXPORT_MIN_UTTERANCES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid LGEXPORT_MIN_UTTERANCES %q: %w", v, err)
		}
		cfg.Compile.MinUtterances = n
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Delimiter returns the entity delimiter rune.
func (c *Config) Delimiter() rune {
	for _, r := range c.Compile.Delimiter {
		return r
	}
	return '{'
}

func (c *Config) Validate() error {
	if n := len([]rune(c.Compile.Delimiter)); n > 1 {
		return fmt.Errorf("compile.delimiter must be a single character, got %q", c.Compile.Delimiter)
	}
	return nil
}
