package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var resourceDBPath string

// resourceCmd represents the resource command group
var resourceCmd = &cobra.Command{
	Use:   "resource",
	Short: "Resource listing commands",
	Long: `Commands for inspecting resources on the marketplace.

Examples:
  # List all resources
  torgctl resource list

  # List resources as JSON
  torgctl resource list -o json`,
}

// resourceListCmd lists all resources
var resourceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all resources",
	Long: `List all resources on the marketplace, newest first.

Owners are shown by pseudonym, matching what marketplace users see.

Example:
  torgctl resource list`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openDatabase(resourceDBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		ctx := context.Background()
		resources, err := store.Resources().List(ctx)
		if err != nil {
			return fmt.Errorf("list resources: %w", err)
		}

		if len(resources) == 0 {
			fmt.Println("No resources found.")
			return nil
		}

		if GetOutput() == "json" {
			data, err := json.MarshalIndent(resources, "", "  ")
			if err != nil {
				return fmt.Errorf("marshal resources: %w", err)
			}
			fmt.Println(string(data))
			return nil
		}

		// Resolve owner pseudonyms once per owner.
		pseudonyms := make(map[string]string)
		for _, res := range resources {
			if _, ok := pseudonyms[res.CompanyID]; ok {
				continue
			}
			owner, err := store.Companies().GetByID(ctx, res.CompanyID)
			if err != nil {
				return fmt.Errorf("resolve owner: %w", err)
			}
			if owner != nil {
				pseudonyms[res.CompanyID] = owner.AnonymousID
			}
		}

		now := time.Now()

		fmt.Printf("\n%-36s  %-24s  %-16s  %10s  %-8s  %s\n",
			"ID", "COMPETENCE", "OWNER", "PRICE", "TYPE", "STATE")
		fmt.Println(strings.Repeat("-", 110))

		for _, res := range resources {
			state := "available"
			switch {
			case res.IsTaken:
				state = "taken"
			case res.IsExpired(now):
				state = "expired"
			}

			fmt.Printf("%-36s  %-24s  %-16s  %10.2f  %-8s  %s\n",
				res.ID,
				truncate(res.Competence, 24),
				pseudonyms[res.CompanyID],
				res.Price,
				res.PriceType,
				state,
			)
		}
		fmt.Printf("\nTotal: %d resource(s)\n", len(resources))

		return nil
	},
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

func init() {
	rootCmd.AddCommand(resourceCmd)
	resourceCmd.AddCommand(resourceListCmd)

	resourceListCmd.Flags().StringVar(&resourceDBPath, "db", defaultDBPath, "path to SQLite database file")
}
