package main

import (
	"fmt"

	"github.com/fwojciec/wordcrawl"
)

// Run executes the check command.
func (c *CheckCmd) Run(deps *Dependencies) error {
	cfg, err := c.load()
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", wordcrawl.ErrorMessage(err))
		return err
	}
	policy, err := cfg.Policy()
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", wordcrawl.ErrorMessage(err))
		return err
	}

	for _, raw := range c.URLs {
		normalized, err := wordcrawl.Normalize(raw)
		if err != nil {
			fmt.Fprintf(deps.Stdout, "invalid  %s: malformed URL\n", raw)
			continue
		}
		if err := policy.Admit(normalized); err != nil {
			fmt.Fprintf(deps.Stdout, "reject   %s: %s\n", normalized, wordcrawl.ErrorMessage(err))
			continue
		}
		if policy.IsTrap(normalized) {
			fmt.Fprintf(deps.Stdout, "trap     %s\n", normalized)
			continue
		}
		fmt.Fprintf(deps.Stdout, "ok       %s\n", normalized)
	}
	return nil
}
