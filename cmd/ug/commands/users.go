package commands

import (
	"fmt"

	"github.com/fivetwenty-io/usergrid-client/internal/constants"
	"github.com/fivetwenty-io/usergrid-client/pkg/usergrid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewUsersCommand creates the users command group.
func NewUsersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "users",
		Aliases: []string{"user"},
		Short:   "Manage application users",
		Long:    "Create users and check whether a username or email is taken",
	}

	cmd.AddCommand(newUsersCreateCommand())
	cmd.AddCommand(newUsersAvailableCommand())

	return cmd
}

func newUsersCreateCommand() *cobra.Command {
	var (
		email string
		name  string
	)

	cmd := &cobra.Command{
		Use:   "create USERNAME",
		Short: "Create a user",
		Long:  "Create an application user, prompting for the password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			password, err := promptPassword(out, "Password: ")
			if err != nil {
				return err
			}

			confirm, err := promptPassword(out, "Confirm password: ")
			if err != nil {
				return err
			}

			if password != confirm {
				return constants.ErrPasswordMismatch
			}

			client, closeClient, err := CreateClient(ctx)
			if err != nil {
				return err
			}
			defer closeClient()

			user := usergrid.NewUser()
			user.SetUsername(args[0])
			user.SetPassword(password)

			if email != "" {
				user.SetEmail(email)
			}

			if name != "" {
				user.SetName(name)
			}

			resp, err := client.CreateUser(ctx, user)
			if err != nil {
				return fmt.Errorf("failed to create user %s: %w", args[0], err)
			}

			return renderResponse(out, resp, viper.GetString("output"))
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "email address")
	cmd.Flags().StringVarP(&name, "name", "n", "", "display name")

	return cmd
}

func newUsersAvailableCommand() *cobra.Command {
	var (
		email    string
		username string
	)

	cmd := &cobra.Command{
		Use:   "available",
		Short: "Check whether a username or email is free",
		Long:  "Report whether no existing user has the given username or email",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			client, closeClient, err := CreateClient(ctx)
			if err != nil {
				return err
			}
			defer closeClient()

			available, err := client.CheckAvailable(ctx, email, username)
			if err != nil {
				return fmt.Errorf("failed to check availability: %w", err)
			}

			if available {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Available")
			} else {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Taken")
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "email address")
	cmd.Flags().StringVarP(&username, "username", "u", "", "username")
	cmd.MarkFlagsOneRequired("email", "username")

	return cmd
}
