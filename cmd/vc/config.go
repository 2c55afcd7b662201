package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Context names one tracked collection: where to dial it, and which branch
// operations default to when none is given explicitly.
type Context struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
	Target   string `yaml:"target"`
	Branch   string `yaml:"branch"`
}

// Config is the CLI's persisted state: every context the user has defined,
// and which one `use` last selected.
type Config struct {
	Current  string             `yaml:"current"`
	Contexts map[string]Context `yaml:"contexts"`
}

func newConfig() *Config {
	return &Config{Contexts: make(map[string]Context)}
}

// configDir ensures $HOME/.mongovc exists and returns its path.
func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	dir := filepath.Join(home, ".mongovc")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return dir, nil
}

func configPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// loadConfig reads config.yaml, returning an empty Config if it doesn't
// exist yet.
func loadConfig() (*Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if os.IsNotExist(err) {
			return newConfig(), nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	conf := newConfig()
	if err := yaml.Unmarshal(data, conf); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	if conf.Contexts == nil {
		conf.Contexts = make(map[string]Context)
	}
	return conf, nil
}

func saveConfig(conf *Config) error {
	path, err := configPath()
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(conf)
	if err != nil {
		return fmt.Errorf("encode config file: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// currentContext resolves the named context a command should run against:
// the --context flag if given, else the config file's current selection.
func currentContext(cmd *cobra.Command) (string, Context, error) {
	conf, err := loadConfig()
	if err != nil {
		return "", Context{}, err
	}

	name, _ := cmd.Flags().GetString("context")
	if name == "" {
		name = conf.Current
	}
	if name == "" {
		return "", Context{}, fmt.Errorf("no context selected: run `vc use <name>` first, or pass --context")
	}
	ctx, ok := conf.Contexts[name]
	if !ok {
		return "", Context{}, fmt.Errorf("unknown context %q", name)
	}
	return name, ctx, nil
}
