package app

import (
	"errors"
	"fmt"
	"time"
)

// Command selects what an App run does.
type Command string

const (
	CommandCompile     Command = "compile"
	CommandClean       Command = "clean"
	CommandCollectAPKs Command = "collect-apks"
	CommandManifest    Command = "manifest"
)

// Strategy names accepted by Config.Strategy.
const (
	StrategyPath     = "path"
	StrategyPlatform = "platform"
)

// Config holds all the necessary configuration for an App instance to run.
// Process state (working directory, PATH, GOOS) is captured by the caller
// and passed in here, so an App never consults the environment itself.
type Config struct {
	Command Command

	Root     string // directory to scan, clean or collect from
	WorkDir  string // anchor lookup for the platform strategy and `root` in manifests
	PathList string // executable search path, e.g. $PATH
	GOOS     string

	// compile
	Manifest     string
	Strategy     string
	Anchor       string
	CompilerPath string
	Timeout      time.Duration
	Workers      int
	Strict       bool

	// collect-apks
	Dest string
	// manifest; empty writes to the App's output
	Out string

	LogFormat string
	LogLevel  string
}

// NewConfig validates cfg and returns a copy with defaults applied.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.Command == "" {
		cfg.Command = CommandCompile
	}
	switch cfg.Command {
	case CommandCompile, CommandClean, CommandCollectAPKs, CommandManifest:
	default:
		return nil, fmt.Errorf("unknown command %q", cfg.Command)
	}

	if cfg.Root == "" {
		return nil, errors.New("Root is a required configuration field and cannot be empty")
	}

	if cfg.Strategy == "" {
		cfg.Strategy = StrategyPath
	}
	if cfg.Strategy != StrategyPath && cfg.Strategy != StrategyPlatform {
		return nil, fmt.Errorf("invalid strategy %q: must be %q or %q", cfg.Strategy, StrategyPath, StrategyPlatform)
	}
	if cfg.Workers == 0 {
		cfg.Workers = 1
	}
	if cfg.Workers < 1 {
		return nil, fmt.Errorf("workers must be at least 1, got %d", cfg.Workers)
	}
	if cfg.Timeout < 0 {
		return nil, fmt.Errorf("timeout must not be negative, got %s", cfg.Timeout)
	}

	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	return &cfg, nil
}
