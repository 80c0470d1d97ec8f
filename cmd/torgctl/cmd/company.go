package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"

	"github.com/viken-labs/ressurstorg/internal/api/auth"
	"github.com/viken-labs/ressurstorg/internal/api/companies"
	"github.com/viken-labs/ressurstorg/internal/models"
)

var (
	companyDBPath   string
	companyUsername string
	companyEmail    string
	companyName     string
)

// companyCmd represents the company command group
var companyCmd = &cobra.Command{
	Use:   "company",
	Short: "Company account management commands",
	Long: `Commands for managing Ressurstorg company accounts.

These commands operate directly on the database file and are intended
for system administrators to manage accounts outside of the HTTP API.

Examples:
  # List all companies
  torgctl company list

  # Create a company account
  torgctl company create --username byggco --email post@byggco.no --name "Bygg AS"

  # Reset a company's password
  torgctl company passwd --username byggco`,
}

// companyListCmd lists all companies
var companyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all companies",
	Long: `List all company accounts in the database.

Displays username, pseudonym, email, and creation date for each
company. Password hashes are never displayed.

Example:
  torgctl company list`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openDatabase(companyDBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		ctx := context.Background()
		companyList, err := store.Companies().List(ctx)
		if err != nil {
			return fmt.Errorf("list companies: %w", err)
		}

		if len(companyList) == 0 {
			fmt.Println("No companies found.")
			return nil
		}

		fmt.Printf("\n%-36s  %-20s  %-16s  %-30s  %s\n",
			"ID", "USERNAME", "PSEUDONYM", "EMAIL", "CREATED")
		fmt.Println(strings.Repeat("-", 120))

		for _, c := range companyList {
			fmt.Printf("%-36s  %-20s  %-16s  %-30s  %s\n",
				c.ID,
				c.Username,
				c.AnonymousID,
				c.Email,
				c.CreatedAt.Format("2006-01-02 15:04:05"),
			)
		}
		fmt.Printf("\nTotal: %d company(ies)\n", len(companyList))

		return nil
	},
}

// companyCreateCmd creates a new company account
var companyCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new company account",
	Long: `Create a new company account in the database.

The password will be prompted interactively for security reasons
(to avoid exposing it in shell history).

Password requirements:
  - Minimum 10 characters
  - At least 1 uppercase letter (A-Z)
  - At least 1 lowercase letter (a-z)
  - At least 1 digit (0-9)

Example:
  torgctl company create --username byggco --email post@byggco.no --name "Bygg AS"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if companyUsername == "" {
			return fmt.Errorf("--username is required")
		}
		if companyEmail == "" {
			return fmt.Errorf("--email is required")
		}

		if err := companies.ValidateUsername(companyUsername); err != nil {
			return fmt.Errorf("invalid username: %w", err)
		}
		if err := companies.ValidateEmail(companyEmail); err != nil {
			return fmt.Errorf("invalid email: %w", err)
		}
		if companyName != "" {
			if err := companies.ValidateCompanyName(companyName); err != nil {
				return fmt.Errorf("invalid company name: %w", err)
			}
		}

		password, err := promptPassword("Enter password: ")
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		if err := auth.ValidatePasswordOrError(password); err != nil {
			return fmt.Errorf("invalid password: %w", err)
		}

		confirmPassword, err := promptPassword("Confirm password: ")
		if err != nil {
			return fmt.Errorf("read password confirmation: %w", err)
		}
		if password != confirmPassword {
			return fmt.Errorf("passwords do not match")
		}

		store, err := openDatabase(companyDBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		ctx := context.Background()

		existing, err := store.Companies().GetByUsername(ctx, companyUsername)
		if err != nil {
			return fmt.Errorf("check username: %w", err)
		}
		if existing != nil {
			return fmt.Errorf("username '%s' already exists", companyUsername)
		}

		existing, err = store.Companies().GetByEmail(ctx, companyEmail)
		if err != nil {
			return fmt.Errorf("check email: %w", err)
		}
		if existing != nil {
			return fmt.Errorf("email '%s' already exists", companyEmail)
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}

		company := models.NewCompany(strings.TrimSpace(companyUsername), strings.TrimSpace(companyEmail))
		company.ID = uuid.New().String()
		company.PasswordHash = string(hash)
		company.CompanyName = strings.TrimSpace(companyName)
		company.ContactEmail = company.Email

		if err := store.Companies().Create(ctx, company); err != nil {
			return fmt.Errorf("create company: %w", err)
		}

		fmt.Printf("\nCompany created successfully:\n")
		fmt.Printf("  ID:        %s\n", company.ID)
		fmt.Printf("  Username:  %s\n", company.Username)
		fmt.Printf("  Pseudonym: %s\n", company.AnonymousID)
		fmt.Printf("  Email:     %s\n", company.Email)

		return nil
	},
}

// companyPasswdCmd changes a company's password
var companyPasswdCmd = &cobra.Command{
	Use:   "passwd",
	Short: "Change a company's password",
	Long: `Change the password for an existing company account.

The new password will be prompted interactively for security reasons
(to avoid exposing it in shell history).

Example:
  torgctl company passwd --username byggco`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if companyUsername == "" {
			return fmt.Errorf("--username is required")
		}

		store, err := openDatabase(companyDBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		ctx := context.Background()

		company, err := store.Companies().GetByUsername(ctx, companyUsername)
		if err != nil {
			return fmt.Errorf("find company: %w", err)
		}
		if company == nil {
			return fmt.Errorf("company '%s' not found", companyUsername)
		}

		password, err := promptPassword("Enter new password: ")
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		if err := auth.ValidatePasswordOrError(password); err != nil {
			return fmt.Errorf("invalid password: %w", err)
		}

		confirmPassword, err := promptPassword("Confirm new password: ")
		if err != nil {
			return fmt.Errorf("read password confirmation: %w", err)
		}
		if password != confirmPassword {
			return fmt.Errorf("passwords do not match")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}

		company.PasswordHash = string(hash)

		if err := store.Companies().Update(ctx, company); err != nil {
			return fmt.Errorf("update company: %w", err)
		}

		// Revoke all refresh tokens for this company (force re-login)
		if err := store.Tokens().RevokeAllForCompany(ctx, company.ID); err != nil {
			PrintVerbose("Warning: could not revoke existing sessions: %v", err)
		}

		fmt.Printf("\nPassword changed successfully for company '%s'.\n", company.Username)
		fmt.Println("All existing sessions have been revoked.")

		return nil
	},
}

func init() {
	rootCmd.AddCommand(companyCmd)
	companyCmd.AddCommand(companyListCmd)
	companyCmd.AddCommand(companyCreateCmd)
	companyCmd.AddCommand(companyPasswdCmd)

	for _, cmd := range []*cobra.Command{companyListCmd, companyCreateCmd, companyPasswdCmd} {
		cmd.Flags().StringVar(&companyDBPath, "db", defaultDBPath, "path to SQLite database file")
	}

	companyCreateCmd.Flags().StringVar(&companyUsername, "username", "", "username for the new account (required)")
	companyCreateCmd.Flags().StringVar(&companyEmail, "email", "", "email for the new account (required)")
	companyCreateCmd.Flags().StringVar(&companyName, "name", "", "legal company name")
	companyCreateCmd.MarkFlagRequired("username")
	companyCreateCmd.MarkFlagRequired("email")

	companyPasswdCmd.Flags().StringVar(&companyUsername, "username", "", "username of the account to update (required)")
	companyPasswdCmd.MarkFlagRequired("username")
}

// promptPassword prompts for a password without echoing to the terminal.
func promptPassword(prompt string) (string, error) {
	fmt.Print(prompt)

	fd := syscall.Stdin
	if term.IsTerminal(fd) {
		passwordBytes, err := term.ReadPassword(fd)
		fmt.Println()
		if err != nil {
			return "", err
		}
		return string(passwordBytes), nil
	}

	// Fallback for non-terminal input (e.g., piped input)
	reader := bufio.NewReader(os.Stdin)
	password, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(password), nil
}
