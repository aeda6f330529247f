package driver

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"quoth/engine-go/pkg/interpreter"
)

// Config represents the parsed contents of engine.yml.
type Config struct {
	Path           string
	RecursionLimit int
	NodeBudget     int
	TraceLevel     string
	Forbidden      []string
}

// ValidationError aggregates configuration validation failures.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "config: invalid configuration"
	}
	var b strings.Builder
	b.WriteString("config validation failed:")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

var traceLevels = map[string]struct{}{
	"": {}, "debug": {}, "info": {}, "error": {},
}

// DefaultConfig returns the configuration used when no engine.yml exists.
func DefaultConfig() *Config {
	return &Config{
		RecursionLimit: interpreter.DefaultRecursionLimit,
		TraceLevel:     "error",
	}
}

type configFile struct {
	RecursionLimit *int     `yaml:"recursion_limit"`
	NodeBudget     *int     `yaml:"node_budget"`
	TraceLevel     string   `yaml:"trace_level"`
	Forbidden      []string `yaml:"forbidden"`
}

// LoadConfig parses engine.yml from disk, returning a validated config.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config: empty path")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("config: resolve %s: %w", path, err)
	}
	file, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("config: open %s: %w", absPath, err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)

	var raw configFile
	if err := decoder.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("config: %s is empty", absPath)
		}
		return nil, fmt.Errorf("config: parse %s: %w", absPath, err)
	}

	cfg := DefaultConfig()
	cfg.Path = absPath
	if raw.RecursionLimit != nil {
		cfg.RecursionLimit = *raw.RecursionLimit
	}
	if raw.NodeBudget != nil {
		cfg.NodeBudget = *raw.NodeBudget
	}
	if raw.TraceLevel != "" {
		cfg.TraceLevel = strings.ToLower(strings.TrimSpace(raw.TraceLevel))
	}
	for _, name := range raw.Forbidden {
		cfg.Forbidden = append(cfg.Forbidden, strings.TrimSpace(name))
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	tracer().Infof("loaded config from %s", absPath)
	return cfg, nil
}

func (c *Config) validate() error {
	var errs ValidationError
	if c.RecursionLimit <= 0 {
		errs.Issues = append(errs.Issues, "recursion_limit must be positive")
	}
	if c.NodeBudget < 0 {
		errs.Issues = append(errs.Issues, "node_budget must not be negative")
	}
	if _, ok := traceLevels[c.TraceLevel]; !ok {
		errs.Issues = append(errs.Issues, fmt.Sprintf("unsupported trace_level %q", c.TraceLevel))
	}
	for i, name := range c.Forbidden {
		if name == "" {
			errs.Issues = append(errs.Issues, fmt.Sprintf("forbidden[%d] must be a non-empty symbol name", i))
		}
	}
	if len(errs.Issues) > 0 {
		return &errs
	}
	return nil
}

// Options translates the configuration into interpreter options.
func (c *Config) Options() []interpreter.Option {
	opts := []interpreter.Option{
		interpreter.WithRecursionLimit(c.RecursionLimit),
	}
	if c.NodeBudget > 0 {
		opts = append(opts, interpreter.WithNodeBudget(c.NodeBudget))
	}
	return opts
}
