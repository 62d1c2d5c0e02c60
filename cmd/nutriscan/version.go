package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/nutriscan/internal/store"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the nutriscan and database schema versions",
	RunE: func(cmd *cobra.Command, args []string) error {
		schema, err := store.SchemaVersion()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "nutriscan %s (schema %d)\n", version, schema)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
