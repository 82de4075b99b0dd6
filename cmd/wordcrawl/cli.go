package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/fwojciec/wordcrawl"
	"github.com/fwojciec/wordcrawl/yaml"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx     context.Context
	Stdout  io.Writer
	Stderr  io.Writer
	Logger  *slog.Logger
	Fetcher wordcrawl.Fetcher
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	LogLevel string `name:"log-level" default:"info" enum:"debug,info,warn,error" help:"Log level (debug, info, warn, error)"`

	Crawl  CrawlCmd  `cmd:"" help:"Crawl from the seed URLs, resuming saved progress"`
	Status StatusCmd `cmd:"" help:"Show saved frontier totals"`
	Check  CheckCmd  `cmd:"" help:"Show whether URLs would be crawled"`
	Config ConfigCmd `cmd:"" help:"Print the effective configuration"`
}

// ConfigFlags are shared by commands that read the configuration.
type ConfigFlags struct {
	Config string `short:"C" type:"path" help:"Configuration file (default: $XDG_CONFIG_HOME/wordcrawl/config.yaml if present)"`
	Store  string `type:"path" help:"Frontier database path (overrides configuration)"`
}

// CrawlCmd is the "crawl" subcommand.
type CrawlCmd struct {
	ConfigFlags

	Restart        bool          `help:"Discard saved progress and start from the seeds"`
	Workers        int           `short:"w" help:"Number of workers (overrides configuration)"`
	ReportDir      string        `name:"report-dir" type:"path" help:"Directory for reports (overrides configuration)"`
	ReportInterval time.Duration `name:"report-interval" default:"1m" help:"Write an interim report this often (0 disables)"`
	MaxPages       int           `name:"max-pages" help:"Stop after this many URLs (0 means no limit)"`
	Quiet          bool          `short:"q" help:"Do not print per-page progress"`
}

// StatusCmd is the "status" subcommand.
type StatusCmd struct {
	ConfigFlags
}

// CheckCmd is the "check" subcommand.
type CheckCmd struct {
	ConfigFlags

	URLs []string `arg:"" name:"url" help:"URLs to check"`
}

// ConfigCmd is the "config" subcommand.
type ConfigCmd struct {
	ConfigFlags
}

const (
	appName         = "wordcrawl"
	configFileName  = "config.yaml"
	storeFileName   = "frontier.db"
	reportDirectory = "report"
)

// load returns the configuration from the --config file, the XDG config
// file, or the defaults, in that order.
func (f *ConfigFlags) load() (wordcrawl.Config, error) {
	path := f.Config
	if path == "" {
		found, err := xdg.SearchConfigFile(filepath.Join(appName, configFileName))
		if err != nil {
			return wordcrawl.DefaultConfig(), nil
		}
		path = found
	}
	return yaml.LoadConfig(path)
}

// storePath resolves the frontier database path.
func (f *ConfigFlags) storePath(cfg wordcrawl.Config) (string, error) {
	switch {
	case f.Store != "":
		return f.Store, nil
	case cfg.StorePath != "":
		return cfg.StorePath, nil
	}
	path, err := xdg.DataFile(filepath.Join(appName, storeFileName))
	if err != nil {
		return "", fmt.Errorf("resolve default store path: %w", err)
	}
	return path, nil
}
