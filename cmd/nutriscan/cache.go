// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/nutriscan/internal/usda"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the FoodData Central response cache",
}

var cachePurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Remove expired cache entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := appConfig()
		c, err := usda.NewCache(cfg.USDA.CacheDir, cfg.USDA.CacheTTL)
		if err != nil {
			return err
		}
		n, err := c.Purge()
		if err != nil {
			return err
		}
		fmt.Printf("Removed %d expired entries from %s\n", n, cfg.USDA.CacheDir)
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cachePurgeCmd)
	rootCmd.AddCommand(cacheCmd)
}
