package main

import (
	"context"
	"errors"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/newsletter/internal/newsletter/app"
	"github.com/aussiebroadwan/newsletter/internal/newsletter/service"
)

// NewAdminCmd creates the admin subcommand group.
func NewAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage administrator accounts",
	}

	cmd.AddCommand(newAdminCreateCmd())
	cmd.AddCommand(newAdminSetPasswordCmd())

	return cmd
}

func newAdminCreateCmd() *cobra.Command {
	var username string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an administrator with a generated password",
		Long: `Create an administrator account. The generated password is printed once
and cannot be recovered afterwards.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withUserService(cmd.Context(), func(users *service.UserService) error {
				acct, password, err := users.CreateAccount(cmd.Context(), username)
				if err != nil {
					return userCommandError(err, username)
				}
				cmd.Printf("Created administrator %s (%s)\n", acct.Username, acct.ID)
				cmd.Printf("Password: %s\n", password)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "administrator username")
	_ = cmd.MarkFlagRequired("username")

	return cmd
}

func newAdminSetPasswordCmd() *cobra.Command {
	var username string

	cmd := &cobra.Command{
		Use:   "set-password",
		Short: "Replace an administrator's password with a generated one",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withUserService(cmd.Context(), func(users *service.UserService) error {
				password, err := users.ResetPassword(cmd.Context(), username)
				if err != nil {
					return userCommandError(err, username)
				}
				cmd.Printf("New password for %s: %s\n", username, password)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "administrator username")
	_ = cmd.MarkFlagRequired("username")

	return cmd
}

// withUserService opens and migrates the configured store for the duration of fn.
func withUserService(ctx context.Context, fn func(*service.UserService) error) error {
	cfg := app.LoadConfig()
	if err := cfg.Validate(); err != nil {
		return oops.Code("CONFIG_INVALID").Wrap(err)
	}

	st, err := app.OpenStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.ApplyMigrations(); err != nil {
		return oops.Code("MIGRATION_FAILED").With("operation", "run migrations").Wrap(err)
	}

	return fn(&service.UserService{Store: st})
}

func userCommandError(err error, username string) error {
	switch {
	case errors.Is(err, service.ErrUsernameRequired):
		return oops.Code("INVALID_ARGUMENT").Wrap(err)
	case errors.Is(err, service.ErrUsernameAlreadyTaken):
		return oops.Code("USER_EXISTS").With("username", username).Wrap(err)
	case errors.Is(err, service.ErrUserNotFound):
		return oops.Code("USER_NOT_FOUND").With("username", username).Wrap(err)
	default:
		return oops.Code("USER_COMMAND_FAILED").With("username", username).Wrap(err)
	}
}
