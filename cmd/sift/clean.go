package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"sift/internal/cache"
)

func newCleanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove cached analysis results",
		Args:  cobra.NoArgs,
		RunE:  runClean,
	}
	cmd.Flags().String("build-dir", "", "cache directory to remove (auto for the user cache; defaults to sift.toml's build-dir)")
	cmd.Flags().String("config", "", "path to sift.toml")
	return cmd
}

func runClean(cmd *cobra.Command, _ []string) error {
	dir, err := cmd.Flags().GetString("build-dir")
	if err != nil {
		return fmt.Errorf("failed to get build-dir flag: %w", err)
	}
	if dir == "" {
		configPath, err := cmd.Flags().GetString("config")
		if err != nil {
			return fmt.Errorf("failed to get config flag: %w", err)
		}
		m, err := loadManifest(configPath)
		if err != nil {
			return err
		}
		if m != nil {
			dir = m.Check.BuildDir
		}
	}
	if dir == "" {
		return errors.New("no build directory configured; pass --build-dir")
	}
	if dir == "auto" {
		if dir, err = cache.DefaultDir("sift"); err != nil {
			return err
		}
	}

	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(cmd.OutOrStdout(), "nothing to clean at %s\n", dir)
		return nil
	}
	c, err := cache.Open(dir)
	if err != nil {
		return err
	}
	if err := c.Clear(); err != nil {
		return fmt.Errorf("failed to clean %s: %w", dir, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", dir)
	return nil
}
