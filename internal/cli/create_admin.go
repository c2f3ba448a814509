// Package cli implements the command-line subcommands.
package cli

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"pressroom/internal/auth"
	"pressroom/internal/config"
	"pressroom/internal/database"
	"pressroom/internal/database/users"
	"pressroom/internal/entities"
)

// CreateAdminCommand creates an administrator account directly in the
// database. Administrators cannot be created through the web UI.
type CreateAdminCommand struct {
	Username     string
	Password     string
	DatabasePath string
	BcryptCost   int
}

func NewCreateAdminCommand() *CreateAdminCommand {
	return &CreateAdminCommand{}
}

func (cmd *CreateAdminCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("create-admin", flag.ExitOnError)

	fs.StringVar(&cmd.Username, "username", "", "Username for the administrator account (required)")
	fs.StringVar(&cmd.Password, "password", "", "Password for the administrator account (required)")
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the database file")
	fs.IntVar(&cmd.BcryptCost, "bcrypt-cost", auth.DefaultBcryptCost, "bcrypt cost factor for the password hash")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s create-admin -username <name> -password <password> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Create an administrator account. Administrators can delete any post.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExample:\n")
		fmt.Fprintf(os.Stderr, "  %s create-admin -username admin -password 'a long passphrase'\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.Username == "" {
		return fmt.Errorf("required flag -username not provided")
	}
	if cmd.Password == "" {
		return fmt.Errorf("required flag -password not provided")
	}
	if len(cmd.Password) < auth.MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters", auth.MinPasswordLength)
	}

	return nil
}

func (cmd *CreateAdminCommand) Run() error {
	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	hash, err := auth.HashPassword(cmd.Password, cmd.BcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	repo := users.NewRepository(db.DB)
	user := &entities.User{
		Username:     cmd.Username,
		PasswordHash: hash,
		IsAdmin:      true,
	}
	if err := repo.Create(user); err != nil {
		if errors.Is(err, users.ErrUserExists) {
			return fmt.Errorf("user %q already exists", cmd.Username)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	fmt.Printf("Administrator %q created (id %d)\n", user.Username, user.ID)
	return nil
}
