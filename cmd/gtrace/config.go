package main

import (
	"fmt"
	"os"

	"github.com/kballard/go-shellquote"
	"gopkg.in/yaml.v3"
)

// Config mirrors the command line flags. Flags given explicitly win over
// values from the file.
type Config struct {
	LogLevel   string `yaml:"log_level"`
	Output     string `yaml:"output"`
	MaxCapture uint64 `yaml:"max_capture"`
	DecodeFDs  bool   `yaml:"decode_fds"`
	Pids       []int  `yaml:"pids"`
	// Command is split with shell quoting rules.
	Command string `yaml:"command"`
}

func loadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return &cfg, nil
}

func (c *Config) commandArgs() ([]string, error) {
	if c.Command == "" {
		return nil, nil
	}
	args, err := shellquote.Split(c.Command)
	if err != nil {
		return nil, fmt.Errorf("invalid command %q: %w", c.Command, err)
	}
	return args, nil
}
