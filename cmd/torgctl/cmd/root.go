// Package cmd contains the CLI commands for torgctl.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/viken-labs/ressurstorg/internal/storage"
)

var (
	// Used for flags
	verbose bool
	output  string
	dbPath  string
)

// defaultDBPath is the default database path, can be overridden via
// RESSURSTORG_DB_PATH env var.
var defaultDBPath = "data/ressurstorg.db"

func init() {
	if envPath := os.Getenv("RESSURSTORG_DB_PATH"); envPath != "" {
		defaultDBPath = envPath
	}
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "torgctl",
	Short: "torgctl - Ressurstorg administration tool",
	Long: `torgctl manages a Ressurstorg marketplace installation.

The commands operate directly on the database file and are intended
for system administrators working outside of the HTTP API.

Examples:
  # List all registered companies
  torgctl company list

  # Create a company account
  torgctl company create --username byggco --email post@byggco.no

  # Reset a company's password
  torgctl company passwd --username byggco

  # List all resources on the marketplace
  torgctl resource list`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "table", "output format (table, json)")
}

// GetOutput returns the output format.
func GetOutput() string {
	return output
}

// PrintVerbose prints a message only if verbose mode is enabled.
func PrintVerbose(format string, args ...interface{}) {
	if verbose {
		fmt.Printf(format+"\n", args...)
	}
}

// openDatabase opens the SQLite database.
func openDatabase(path string) (*storage.SQLiteStorage, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("database file not found: %s", path)
	}

	store := storage.NewSQLiteStorage(path)
	if err := store.Open(); err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	return store, nil
}
