package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sofmeright/coffeefreight/src/filter"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the artifact cache",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every persisted artifact",
	RunE: func(cmd *cobra.Command, args []string) error {
		rootDir, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting working directory: %w", err)
		}
		o := *opts
		o.Persist = true
		store, err := filter.OpenStore(o, rootDir, logger)
		if err != nil {
			return fmt.Errorf("opening artifact cache: %w", err)
		}
		defer store.Close()
		if err := store.Clear(); err != nil {
			return fmt.Errorf("clearing artifact cache: %w", err)
		}
		logger.Info().Str("backend", string(o.CacheBackend)).Msg("artifact cache cleared")
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}
