// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the nutriscan CLI: a local food
// catalog, meal log, and macro-driven meal planner backed by SQLite and
// USDA FoodData Central.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/nutriscan/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ and .env at startup.
var loadedSecrets map[string]string

// rootCmd is the base command for the nutriscan CLI.
var rootCmd = &cobra.Command{
	Use:   "nutriscan",
	Short: "Track meals and generate macro-balanced meal plans",
	Long: `nutriscan keeps a local food catalog imported from USDA FoodData Central,
logs what you eat against daily macro targets, and generates day and week
meal plans that split your targets across breakfast, lunch, dinner, and a
snack.

Start with "nutriscan seed common" or "nutriscan seed load <file>" to fill
the catalog, then "nutriscan user init" to create a tracking session.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		env, err := secrets.LoadDotEnv(".env")
		if err != nil {
			return err
		}
		loadedSecrets = secrets.Merge(s, env)
		if len(loadedSecrets) > 0 {
			keys := make([]string, 0, len(loadedSecrets))
			for k := range loadedSecrets {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./nutriscan.yaml or ~/.config/nutriscan/nutriscan.yaml)")
	rootCmd.PersistentFlags().String("data-dir", "", "directory holding nutriscan.db and the API cache (default data)")
	rootCmd.PersistentFlags().String("user", "", "session id of the tracking user (default: the session saved by user init)")

	viper.BindPFlag("data_dir", rootCmd.PersistentFlags().Lookup("data-dir"))
	viper.BindPFlag("user", rootCmd.PersistentFlags().Lookup("user"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("nutriscan")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "nutriscan"))
		}
	}

	viper.SetEnvPrefix("NUTRISCAN")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
