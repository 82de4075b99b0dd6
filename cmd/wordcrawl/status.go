package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/fwojciec/wordcrawl"
	"github.com/fwojciec/wordcrawl/sqlite"
)

// Run executes the status command.
func (c *StatusCmd) Run(deps *Dependencies) error {
	cfg, err := c.load()
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", wordcrawl.ErrorMessage(err))
		return err
	}

	path, err := c.storePath(cfg)
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(deps.Stdout, "No saved crawl at %s. Use 'wordcrawl crawl' to start one.\n", path)
		return nil
	}

	db := sqlite.NewDB(path)
	if err := db.Open(); err != nil {
		return fmt.Errorf("failed to open frontier database at %q: %w", path, err)
	}
	store := sqlite.NewEntryStore(db)
	defer store.Close()

	counts, err := store.Count(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", wordcrawl.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Store:      %s\n", path)
	fmt.Fprintf(deps.Stdout, "Discovered: %d\n", counts.Total)
	fmt.Fprintf(deps.Stdout, "Completed:  %d\n", counts.Completed)
	fmt.Fprintf(deps.Stdout, "Pending:    %d\n", counts.Pending())
	if !counts.LastUpdated.IsZero() {
		fmt.Fprintf(deps.Stdout, "Updated:    %s\n", counts.LastUpdated.Local().Format(time.DateTime))
	}
	return nil
}
