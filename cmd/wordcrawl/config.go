package main

import (
	"fmt"

	"github.com/fwojciec/wordcrawl"
	"github.com/fwojciec/wordcrawl/yaml"
)

// Run executes the config command.
func (c *ConfigCmd) Run(deps *Dependencies) error {
	cfg, err := c.load()
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", wordcrawl.ErrorMessage(err))
		return err
	}
	if c.Store != "" {
		cfg.StorePath = c.Store
	}
	return yaml.EncodeConfig(deps.Stdout, cfg)
}
